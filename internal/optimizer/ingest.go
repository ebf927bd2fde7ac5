package optimizer

import (
	"sort"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

func parseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// processedEvent wraps a raw event with computed fields. It is created once
// during ingestion and never mutated afterwards, except for the transient
// processed marker, set once a pass has rescheduled the event or accepted
// its current slot within the run.
type processedEvent struct {
	id          string
	title       string
	description string
	category    string
	start       time.Time
	end         time.Time
	duration    int // seconds
	isStudy     bool
	isBreak     bool
	isImmovable bool

	processed bool
}

func (e *processedEvent) date() string {
	return e.start.Format(dateLayout)
}

func classifyStudy(title, category, description string) bool {
	needle := "study"
	return strings.Contains(strings.ToLower(title), needle) ||
		strings.Contains(strings.ToLower(category), needle) ||
		strings.Contains(strings.ToLower(description), needle)
}

func classifyBreak(title string) bool {
	return strings.Contains(strings.ToLower(title), "break")
}

// ingest validates raw events, computes derived fields and buckets them by
// the start date. Records without a parsable start time are skipped; that
// is a tolerated data-quality gap, not an error.
func (r *run) ingest(events []RawEvent) {
	for _, raw := range events {
		start, ok := parseTimestamp(raw.Start)
		if !ok {
			continue
		}
		end, ok := parseTimestamp(raw.End)
		if !ok {
			end = start.Add(time.Hour)
		}
		if !end.After(start) {
			end = start.Add(time.Hour)
		}

		ev := &processedEvent{
			id:          raw.ID,
			title:       raw.Title,
			description: raw.Description,
			category:    raw.Category,
			start:       start,
			end:         end,
			duration:    int(end.Sub(start).Seconds()),
			isStudy:     classifyStudy(raw.Title, raw.Category, raw.Description),
			isBreak:     classifyBreak(raw.Title),
			isImmovable: raw.IsImmovable,
		}

		date := ev.date()
		r.buckets[date] = append(r.buckets[date], ev)
		r.load[date] += float64(ev.duration) / 3600
		r.total++
	}

	for date, events := range r.buckets {
		sort.SliceStable(events, func(i, j int) bool {
			return events[i].start.Before(events[j].start)
		})
		r.buckets[date] = events
	}
}

// sortedDates returns bucket keys in ascending calendar order so that every
// pass iterates deterministically.
func (r *run) sortedDates() []string {
	dates := make([]string, 0, len(r.buckets))
	for date := range r.buckets {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}
