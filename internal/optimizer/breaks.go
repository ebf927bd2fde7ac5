package optimizer

import (
	"sort"
	"time"
)

const (
	reasonBreak = "Added recovery break"
	breakTitle  = "Break"

	// Inserted breaks start this long after the triggering event and must
	// clear the next event (or the workday end) by the same margin.
	breakClearance = 5 * time.Minute
)

type timeSpan struct {
	start   time.Time
	end     time.Time
	isBreak bool
}

// collectSpans assembles all known time spans for a date: the original
// event spans, overridden by any move already proposed this run, events
// moved onto this date from another one, plus every created event (breaks,
// split chunks) proposed so far.
func (r *run) collectSpans(date string) []timeSpan {
	latestIdx := make(map[string]int)
	for i, c := range r.changes {
		if c.Action == ActionMove && c.EventID != NewEventID {
			latestIdx[c.EventID] = i
		}
	}

	var spans []timeSpan
	seen := make(map[string]bool)
	for _, ev := range r.buckets[date] {
		seen[ev.id] = true
		start, end, isBreak := ev.start, ev.end, ev.isBreak
		if i, ok := latestIdx[ev.id]; ok {
			c := r.changes[i]
			start = c.NewStart
			end = start.Add(time.Duration(c.DurationMin) * time.Minute)
		}
		if start.Format(dateLayout) != date {
			continue
		}
		spans = append(spans, timeSpan{start: start, end: end, isBreak: isBreak})
	}
	for i, c := range r.changes {
		switch c.Action {
		case ActionMove:
			// Events bucketed elsewhere but relocated onto this date.
			if c.EventID == NewEventID || seen[c.EventID] || latestIdx[c.EventID] != i {
				continue
			}
			if c.NewStart.Format(dateLayout) != date {
				continue
			}
			ev := r.findEvent(c.EventID)
			if ev == nil {
				continue
			}
			spans = append(spans, timeSpan{
				start:   c.NewStart,
				end:     c.NewStart.Add(time.Duration(c.DurationMin) * time.Minute),
				isBreak: ev.isBreak,
			})
		case ActionCreate:
			if c.NewStart.Format(dateLayout) != date {
				continue
			}
			spans = append(spans, timeSpan{
				start:   c.NewStart,
				end:     c.NewStart.Add(time.Duration(c.DurationMin) * time.Minute),
				isBreak: classifyBreak(c.Title),
			})
		}
	}

	sort.Slice(spans, func(i, j int) bool {
		return spans[i].start.Before(spans[j].start)
	})
	return spans
}

// insertBreaks walks a date's spans counting consecutive non-break events
// and proposes a mandatory break whenever the run reaches the configured
// threshold. A failed insertion keeps the consecutive counter running so a
// later slot can still trigger one.
func (r *run) insertBreaks(date string) {
	spans := r.collectSpans(date)
	if len(spans) == 0 {
		return
	}
	_, dayEnd := r.dayWindow(date)
	breakLen := time.Duration(r.params.MinBreakSec) * time.Second

	consecutive := 0
	for i, span := range spans {
		if span.isBreak {
			consecutive = 0
			continue
		}
		consecutive++
		if consecutive < r.params.MaxConsecutive {
			continue
		}

		breakStart := span.end.Add(breakClearance)
		breakEnd := breakStart.Add(breakLen)
		limit := dayEnd
		if i+1 < len(spans) {
			limit = spans[i+1].start
		}
		if breakEnd.Add(breakClearance).After(limit) {
			continue
		}

		r.addChange(Change{
			Action:      ActionCreate,
			EventID:     NewEventID,
			Title:       breakTitle,
			NewStart:    breakStart,
			DurationMin: r.params.MinBreakMin,
			Reason:      reasonBreak,
		})
		r.metrics.BreaksAdded++
		consecutive = 0
	}
}
