package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeHealthZeroEventsIsPerfect(t *testing.T) {
	health := computeHealth(Metrics{}, map[string]float64{}, 0, ResolveParams(PresetDefault, nil))
	assert.Equal(t, ScheduleHealth{FocusUtilization: 100, BreakCompliance: 100, ConflictScore: 0, BalanceScore: 100}, health)
}

func TestComputeHealthFormulas(t *testing.T) {
	params := ResolveParams(PresetDefault, nil)
	load := map[string]float64{"2024-01-01": 4, "2024-01-02": 4}

	health := computeHealth(Metrics{ConflictsResolved: 2, BreaksAdded: 1}, load, 8, params)

	assert.InDelta(t, 75.0, health.FocusUtilization, 0.001)
	// ceil(8/4) = 2 expected breaks, 1 added.
	assert.InDelta(t, 50.0, health.BreakCompliance, 0.001)
	assert.Equal(t, 2.0, health.ConflictScore)
	// Equal loads mean zero variance.
	assert.Equal(t, 100.0, health.BalanceScore)
}

func TestComputeHealthBalancePenalisesVariance(t *testing.T) {
	params := ResolveParams(PresetDefault, nil)
	// Loads 2 and 4: variance 1, so the score drops by 25.
	health := computeHealth(Metrics{}, map[string]float64{"a": 2, "b": 4}, 2, params)
	assert.InDelta(t, 75.0, health.BalanceScore, 0.001)

	// Extreme spread floors at zero instead of going negative.
	skewed := computeHealth(Metrics{}, map[string]float64{"a": 0, "b": 12}, 2, params)
	assert.Equal(t, 0.0, skewed.BalanceScore)
}

func TestBuildInsightsCoversConditions(t *testing.T) {
	health := ScheduleHealth{BalanceScore: 60}
	insights := buildInsights(PresetBusyWeek, Metrics{
		ConflictsResolved: 2,
		BreaksAdded:       1,
		EventsSplit:       3,
		EventsShortened:   1,
		PairedMoves:       2,
	}, health, 1)

	assert.Len(t, insights, 8)
	assert.Contains(t, insights[0], "2 scheduling conflicts")
	assert.Contains(t, insights[len(insights)-1], "packed week")
}

func TestBuildInsightsQuietSchedule(t *testing.T) {
	insights := buildInsights(PresetDefault, Metrics{}, ScheduleHealth{BalanceScore: 100}, 0)
	assert.Equal(t, []string{"Your schedule already looks well balanced."}, insights)
}
