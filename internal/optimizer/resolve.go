package optimizer

import "time"

const reasonConflict = "Resolved scheduling conflict"

// pickMover decides which side of a conflict gets rescheduled. A study
// event stays fixed when the other side is not one; otherwise the shorter
// event moves. Equal durations fall back to the lexicographically lower
// event id so the outcome never depends on container order.
func pickMover(c eventConflict) (mover, keeper *processedEvent) {
	a, b := c.first, c.second
	if a.isStudy != b.isStudy {
		if a.isStudy {
			return b, a
		}
		return a, b
	}
	if a.duration != b.duration {
		if a.duration < b.duration {
			return a, b
		}
		return b, a
	}
	if a.id <= b.id {
		return a, b
	}
	return b, a
}

// resolveConflicts reschedules one party of every recorded overlap to start
// after the other plus the spacing buffer. Events that would spill past the
// workday end are handed to the balancer's relocation routine instead.
func (r *run) resolveConflicts(date string) {
	analysis := r.analysis[date]
	if analysis == nil {
		return
	}
	_, dayEnd := r.dayWindow(date)

	for _, conflict := range analysis.conflicts {
		if conflict.first.isImmovable || conflict.second.isImmovable {
			continue
		}
		mover, keeper := pickMover(conflict)
		newStart := keeper.end.Add(time.Duration(r.params.SpacingBufferSec) * time.Second)
		newEnd := newStart.Add(time.Duration(mover.duration) * time.Second)

		if newEnd.After(dayEnd) {
			if r.relocate(mover, date, "") {
				r.metrics.ConflictsResolved++
			}
			continue
		}

		r.addChange(Change{
			Action:      ActionMove,
			EventID:     mover.id,
			NewStart:    newStart,
			DurationMin: mover.duration / 60,
			Reason:      reasonConflict,
		})
		mover.processed = true
		r.metrics.ConflictsResolved++
		r.metrics.EventsMoved++
	}
}
