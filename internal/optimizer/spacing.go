package optimizer

import "time"

const (
	reasonSpacing = "Optimized event spacing"
	reasonCompact = "Filled schedule gap"

	// Events within this distance of their ideal slot stay put.
	spacingTolerance = 15 * time.Minute

	// Gaps below this size are left alone by the compactor.
	compactThreshold = 30 * time.Minute
)

// optimizeSpacing re-flows one date so consecutive events sit a spacing
// buffer apart. A single forward pass tracks the running end time; events
// already within tolerance of their ideal slot only advance the cursor.
// Immovable events advance the cursor but are never rescheduled.
func (r *run) optimizeSpacing(date string) {
	dayStart, dayEnd := r.dayWindow(date)
	buffer := time.Duration(r.params.SpacingBufferSec) * time.Second
	lastEnd := dayStart

	for _, ev := range r.buckets[date] {
		if ev.isImmovable {
			if ev.end.After(lastEnd) {
				lastEnd = ev.end
			}
			continue
		}

		ideal := lastEnd.Add(buffer)
		drift := ev.start.Sub(ideal)
		if drift < 0 {
			drift = -drift
		}
		if drift <= spacingTolerance {
			ev.processed = true
			if ev.end.After(lastEnd) {
				lastEnd = ev.end
			}
			continue
		}

		duration := time.Duration(ev.duration) * time.Second
		if ideal.Add(duration).After(dayEnd) {
			r.relocate(ev, date, "")
			continue
		}

		r.addChange(Change{
			Action:      ActionMove,
			EventID:     ev.id,
			NewStart:    ideal,
			DurationMin: ev.duration / 60,
			Reason:      reasonSpacing,
		})
		r.metrics.EventsMoved++
		ev.processed = true
		lastEnd = ideal.Add(duration)
	}
}

// compactGaps pulls the event after every oversized recorded gap forward to
// gap start plus the spacing buffer. Gap analysis predates the strategy
// passes, so events an earlier pass already rescheduled are skipped via the
// processed marker. One change per gap; new gaps created by the moves are
// not re-detected within the same pass.
func (r *run) compactGaps(date string) {
	analysis := r.analysis[date]
	if analysis == nil {
		return
	}
	buffer := time.Duration(r.params.SpacingBufferSec) * time.Second

	for _, gap := range analysis.gaps {
		if gap.next.isImmovable || gap.next.processed {
			continue
		}
		if gap.end.Sub(gap.start) <= compactThreshold {
			continue
		}
		r.addChange(Change{
			Action:      ActionMove,
			EventID:     gap.next.id,
			NewStart:    gap.start.Add(buffer),
			DurationMin: gap.next.duration / 60,
			Reason:      reasonCompact,
		})
		r.metrics.EventsMoved++
	}
}
