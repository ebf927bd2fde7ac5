package optimizer

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	reasonRebalance = "Rebalanced daily workload"

	// Daily load ceiling the balancer sheds towards, and the heavier load
	// at which the busy_week strategy triggers the balancer early.
	overloadThresholdHours = 7.0
	busyDayTriggerHours    = 8.0

	// Relocation targets are drawn from this many following calendar days.
	lookaheadDays = 3

	// Similarity groups are capped for readability of the paired animation.
	groupCap = 3

	animationStyle      = "slide"
	animationDurationMS = 400
)

var animationColors = []string{"#4F46E5", "#059669", "#D97706", "#DB2777", "#0EA5E9"}

// balanceWorkload sheds movable events from every overloaded date, heaviest
// date first, until each sits at or below the overload threshold or runs
// out of candidates.
func (r *run) balanceWorkload() {
	dates := r.sortedDates()
	sort.SliceStable(dates, func(i, j int) bool {
		return r.load[dates[i]] > r.load[dates[j]]
	})
	for _, date := range dates {
		if r.load[date] > overloadThresholdHours {
			r.balanceDate(date)
		}
	}
}

// balanceDate relocates events away from one overloaded date. Whole
// similarity groups move first, tagged with a shared pair id, then
// remaining events move individually.
func (r *run) balanceDate(date string) {
	if r.load[date] <= overloadThresholdHours {
		return
	}
	movable := r.movableEvents(date)
	if len(movable) == 0 {
		return
	}

	for _, group := range similarityGroups(movable) {
		if r.load[date] <= overloadThresholdHours {
			return
		}
		pairID := uuid.NewString()
		for _, ev := range group {
			if r.relocate(ev, date, pairID) {
				r.metrics.PairedMoves++
			}
		}
	}
	for _, ev := range movable {
		if r.load[date] <= overloadThresholdHours {
			return
		}
		r.relocate(ev, date, "")
	}
}

// movableEvents returns relocation candidates for a date: non-study before
// study, then shorter before longer, then lower id.
func (r *run) movableEvents(date string) []*processedEvent {
	var movable []*processedEvent
	for _, ev := range r.buckets[date] {
		if ev.isImmovable || r.moved[ev.id] {
			continue
		}
		movable = append(movable, ev)
	}
	sort.SliceStable(movable, func(i, j int) bool {
		a, b := movable[i], movable[j]
		if a.isStudy != b.isStudy {
			return !a.isStudy
		}
		if a.duration != b.duration {
			return a.duration < b.duration
		}
		return a.id < b.id
	})
	return movable
}

// relocate moves one event to the least-loaded of the next three calendar
// days, starting at that day's workday start. When no candidate day is
// strictly less loaded than the source the event stays put and no change is
// emitted.
func (r *run) relocate(ev *processedEvent, fromDate, pairID string) bool {
	if r.moved[ev.id] {
		return false
	}

	target := ""
	for i := 1; i <= lookaheadDays; i++ {
		candidate := fromDate
		for j := 0; j < i; j++ {
			candidate = nextDate(candidate)
		}
		if target == "" || r.load[candidate] < r.load[target] {
			target = candidate
		}
	}
	if target == "" || r.load[target] >= r.load[fromDate] {
		return false
	}

	dayStart, err := time.ParseInLocation(dateLayout+" 15:04", target+" "+r.params.DayStart, ev.start.Location())
	if err != nil {
		return false
	}

	if pairID == "" {
		pairID = uuid.NewString()
	}
	color := animationColors[r.pairSeq%len(animationColors)]
	r.pairSeq++

	hours := float64(ev.duration) / 3600
	r.load[fromDate] -= hours
	r.load[target] += hours
	r.moved[ev.id] = true
	ev.processed = true

	r.addChange(Change{
		Action:      ActionMove,
		EventID:     ev.id,
		NewStart:    dayStart,
		DurationMin: ev.duration / 60,
		Reason:      reasonRebalance,
		Animation: &Animation{
			PairID:     pairID,
			FromDate:   fromDate,
			ToDate:     target,
			Style:      animationStyle,
			DurationMS: animationDurationMS,
			Color:      color,
		},
	})
	r.metrics.EventsMoved++
	return true
}

// similarityGroups partitions events into greedy groups of lookalikes. Two
// events are similar when at least two of three signals hold: matching
// category (or both study), duration within 20%, or a shared non-trivial
// title word. Singletons are dropped; callers move those individually.
func similarityGroups(events []*processedEvent) [][]*processedEvent {
	assigned := make(map[string]bool)
	var groups [][]*processedEvent

	for i, seed := range events {
		if assigned[seed.id] {
			continue
		}
		group := []*processedEvent{seed}
		for _, candidate := range events[i+1:] {
			if len(group) >= groupCap {
				break
			}
			if assigned[candidate.id] || !similar(seed, candidate) {
				continue
			}
			group = append(group, candidate)
		}
		if len(group) < 2 {
			continue
		}
		for _, member := range group {
			assigned[member.id] = true
		}
		groups = append(groups, group)
	}
	return groups
}

func similar(a, b *processedEvent) bool {
	signals := 0
	if (a.category != "" && a.category == b.category) || (a.isStudy && b.isStudy) {
		signals++
	}
	longer := a.duration
	if b.duration > longer {
		longer = b.duration
	}
	diff := a.duration - b.duration
	if diff < 0 {
		diff = -diff
	}
	if longer > 0 && float64(diff) <= 0.2*float64(longer) {
		signals++
	}
	if sharesTitleWord(a.title, b.title) {
		signals++
	}
	return signals >= 2
}

func sharesTitleWord(a, b string) bool {
	words := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(a)) {
		if len(word) > 3 {
			words[word] = true
		}
	}
	for _, word := range strings.Fields(strings.ToLower(b)) {
		if len(word) > 3 && words[word] {
			return true
		}
	}
	return false
}
