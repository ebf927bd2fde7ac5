package optimizer

import "time"

// eventConflict records an overlapping adjacent pair for one date.
type eventConflict struct {
	first   *processedEvent
	second  *processedEvent
	overlap time.Duration
}

// eventGap records idle time between consecutive events that exceeds the
// gap threshold.
type eventGap struct {
	start time.Time
	end   time.Time
	next  *processedEvent
}

// dayAnalysis keeps conflict and gap findings for one date. It lives in a
// side-table keyed by date, separate from the event sequence itself.
type dayAnalysis struct {
	conflicts    []eventConflict
	gaps         []eventGap
	outsideHours []*processedEvent
}

// dayWindow derives the workday span for a calendar date. The location of
// the first event on that date anchors the window so zone-aware input stays
// consistent.
func (r *run) dayWindow(date string) (time.Time, time.Time) {
	loc := time.UTC
	if events := r.buckets[date]; len(events) > 0 {
		loc = events[0].start.Location()
	}
	start, err := time.ParseInLocation(dateLayout+" 15:04", date+" "+r.params.DayStart, loc)
	if err != nil {
		start, _ = time.ParseInLocation(dateLayout, date, loc)
	}
	end, err := time.ParseInLocation(dateLayout+" 15:04", date+" "+r.params.DayEnd, loc)
	if err != nil {
		end = start.Add(12 * time.Hour)
	}
	return start, end
}

// analyze walks one date bucket and records overlaps, oversized gaps and
// out-of-workday events. Outside-hours findings are informational only and
// never produce a Change on their own.
func (r *run) analyze(date string) *dayAnalysis {
	analysis := &dayAnalysis{}
	events := r.buckets[date]
	dayStart, dayEnd := r.dayWindow(date)
	gapThreshold := time.Duration(3*r.params.SpacingBufferSec) * time.Second

	for _, ev := range events {
		if ev.isImmovable {
			continue
		}
		if ev.start.Before(dayStart) || ev.end.After(dayEnd) {
			analysis.outsideHours = append(analysis.outsideHours, ev)
		}
	}

	for i := 0; i < len(events)-1; i++ {
		current, next := events[i], events[i+1]
		if current.end.After(next.start) {
			analysis.conflicts = append(analysis.conflicts, eventConflict{
				first:   current,
				second:  next,
				overlap: current.end.Sub(next.start),
			})
			continue
		}
		if gap := next.start.Sub(current.end); gap > gapThreshold {
			analysis.gaps = append(analysis.gaps, eventGap{
				start: current.end,
				end:   next.start,
				next:  next,
			})
		}
	}
	return analysis
}
