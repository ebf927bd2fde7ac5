package optimizer

import (
	"fmt"
	"math"
)

func clampScore(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// computeHealth derives the four health scores from the run's counters and
// daily loads. An empty schedule reports perfect health rather than
// dividing by zero.
func computeHealth(m Metrics, load map[string]float64, totalEvents int, params Params) ScheduleHealth {
	if totalEvents == 0 {
		return ScheduleHealth{
			FocusUtilization: 100,
			BreakCompliance:  100,
			ConflictScore:    0,
			BalanceScore:     100,
		}
	}

	focus := clampScore(float64(totalEvents-m.ConflictsResolved) / float64(totalEvents) * 100)

	expectedBreaks := int(math.Ceil(float64(totalEvents) / float64(params.MaxConsecutive)))
	compliance := 100.0
	if expectedBreaks > 0 {
		compliance = clampScore(float64(m.BreaksAdded) / float64(expectedBreaks) * 100)
	}

	balance := clampScore(100 - 25*loadVariance(load))

	return ScheduleHealth{
		FocusUtilization: focus,
		BreakCompliance:  compliance,
		ConflictScore:    clampScore(float64(m.ConflictsResolved)),
		BalanceScore:     balance,
	}
}

func loadVariance(load map[string]float64) float64 {
	if len(load) == 0 {
		return 0
	}
	var sum float64
	for _, hours := range load {
		sum += hours
	}
	mean := sum / float64(len(load))
	var variance float64
	for _, hours := range load {
		variance += (hours - mean) * (hours - mean)
	}
	return variance / float64(len(load))
}

// buildInsights renders short, ordered observations about a finished run.
// It is a pure function of its inputs; the wording is a UI concern.
func buildInsights(preset string, m Metrics, health ScheduleHealth, outsideHours int) []string {
	insights := make([]string, 0, 6)

	if m.ConflictsResolved > 0 {
		insights = append(insights, fmt.Sprintf("Resolved %d scheduling conflicts to keep your days flowing.", m.ConflictsResolved))
	}
	if m.BreaksAdded > 0 {
		insights = append(insights, fmt.Sprintf("Added %d recovery breaks between long stretches of events.", m.BreaksAdded))
	}
	if m.EventsSplit > 0 {
		insights = append(insights, fmt.Sprintf("Split long study sessions into %d focused blocks.", m.EventsSplit))
	}
	if m.EventsShortened > 0 {
		insights = append(insights, fmt.Sprintf("Trimmed %d sessions down to your ideal focus length.", m.EventsShortened))
	}
	if m.PairedMoves > 0 {
		insights = append(insights, fmt.Sprintf("Moved %d similar events together to lighter days.", m.PairedMoves))
	}
	if outsideHours > 0 {
		insights = append(insights, fmt.Sprintf("%d events fall outside your preferred focus window.", outsideHours))
	}
	if health.BalanceScore < 70 {
		insights = append(insights, "Your workload is unevenly spread; consider shifting sessions to lighter days.")
	}

	switch preset {
	case PresetBusyWeek:
		insights = append(insights, "Compressed spacing to fit a packed week.")
	case PresetConflicts:
		insights = append(insights, "Focused this pass on clearing overlaps only.")
	case PresetOptimized:
		insights = append(insights, "Re-flowed events toward ideal spacing.")
	}

	if len(insights) == 0 {
		insights = append(insights, "Your schedule already looks well balanced.")
	}
	return insights
}
