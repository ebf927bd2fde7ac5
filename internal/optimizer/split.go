package optimizer

import "time"

const (
	reasonShorten  = "Adjusted duration for optimal focus"
	reasonSplit    = "Split into focused study blocks"
	reasonContinue = "Continued study session"

	continuedSuffix = " (continued)"
)

// splitOversized applies the splitter to every study event on a date whose
// duration exceeds the ideal focus block.
func (r *run) splitOversized(date string) {
	for _, ev := range r.buckets[date] {
		if !ev.isStudy || ev.isImmovable {
			continue
		}
		if ev.duration <= r.params.IdealFocusSec {
			continue
		}
		r.splitEvent(ev, date)
	}
}

// splitEvent breaks one oversized study session into bounded chunks. Events
// up to 1.5x the ideal block are shortened in place; longer ones are carved
// into ideal-sized chunks with a mandatory break between them. The first
// chunk rewrites the original event, subsequent chunks become new child
// events, spilling to the next day's workday start when they would overrun
// the workday end.
func (r *run) splitEvent(ev *processedEvent, date string) {
	ideal := r.params.IdealFocusSec

	if float64(ev.duration) <= 1.5*float64(ideal) {
		r.addChange(Change{
			Action:      ActionMove,
			EventID:     ev.id,
			NewStart:    ev.start,
			DurationMin: ideal / 60,
			Reason:      reasonShorten,
		})
		r.metrics.EventsShortened++
		r.load[date] -= float64(ev.duration-ideal) / 3600
		return
	}

	interBreak := time.Duration(r.params.MinBreakSec) * time.Second
	_, dayEnd := r.dayWindow(date)

	remaining := ev.duration
	chunk := min(ideal, remaining)
	r.addChange(Change{
		Action:      ActionMove,
		EventID:     ev.id,
		NewStart:    ev.start,
		DurationMin: chunk / 60,
		Reason:      reasonSplit,
	})
	r.metrics.EventsSplit++
	remaining -= chunk
	cursor := ev.start.Add(time.Duration(chunk) * time.Second)
	spillDate := date
	spillEnd := dayEnd

	for remaining > 0 {
		chunk = min(ideal, remaining)
		next := cursor.Add(interBreak)
		if next.Add(time.Duration(chunk) * time.Second).After(spillEnd) {
			// Spill into the next day's workday window.
			spillDate = nextDate(spillDate)
			nextStart, nextEnd := r.dayWindow(spillDate)
			next = nextStart
			spillEnd = nextEnd
		}
		if spillDate != date {
			// Daily load follows the chunk to whichever date it lands on,
			// not just the chunk that opened the spill window.
			r.load[date] -= float64(chunk) / 3600
			r.load[spillDate] += float64(chunk) / 3600
		}
		r.addChange(Change{
			Action:      ActionCreate,
			EventID:     NewEventID,
			ParentID:    ev.id,
			Title:       ev.title + continuedSuffix,
			NewStart:    next,
			DurationMin: chunk / 60,
			Reason:      reasonContinue,
		})
		r.metrics.EventsSplit++
		remaining -= chunk
		cursor = next.Add(time.Duration(chunk) * time.Second)
	}
}

func nextDate(date string) string {
	ts, err := time.Parse(dateLayout, date)
	if err != nil {
		return date
	}
	return ts.AddDate(0, 0, 1).Format(dateLayout)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
