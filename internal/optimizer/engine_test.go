package optimizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEngine() *Engine {
	return New(zap.NewNop())
}

func TestOptimizeEmptyInput(t *testing.T) {
	result := newTestEngine().Optimize(nil, nil, PresetDefault)

	assert.Empty(t, result.Changes)
	assert.Equal(t, Metrics{}, result.Metrics)
	assert.Equal(t, ScheduleHealth{
		FocusUtilization: 100,
		BreakCompliance:  100,
		ConflictScore:    0,
		BalanceScore:     100,
	}, result.Health)
	assert.NotEmpty(t, result.Insights)
}

func TestOptimizeSkipsUnparsableStart(t *testing.T) {
	result := newTestEngine().Optimize([]RawEvent{
		{ID: "e1", Title: "Broken", Start: "not-a-timestamp"},
		{ID: "e2", Title: "Missing"},
	}, nil, PresetDefault)

	assert.Empty(t, result.Changes)
	assert.Equal(t, float64(100), result.Health.FocusUtilization)
}

func TestOptimizeResolvesConflict(t *testing.T) {
	result := newTestEngine().Optimize([]RawEvent{
		{ID: "a", Title: "Team sync", Start: "2024-01-01T09:00:00Z", End: "2024-01-01T10:30:00Z"},
		{ID: "b", Title: "Quick call", Start: "2024-01-01T10:00:00Z", End: "2024-01-01T11:00:00Z"},
	}, nil, PresetDefault)

	require.Len(t, result.Changes, 1)
	change := result.Changes[0]
	assert.Equal(t, ActionMove, change.Action)
	assert.Equal(t, "b", change.EventID)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 45, 0, 0, time.UTC), change.NewStart)
	assert.Equal(t, 60, change.DurationMin)
	assert.Equal(t, 1, result.Metrics.ConflictsResolved)
	assert.Equal(t, 1, result.Metrics.EventsMoved)
}

func TestOptimizeConflictKeepsStudyEventFixed(t *testing.T) {
	result := newTestEngine().Optimize([]RawEvent{
		{ID: "a", Title: "Short errand", Start: "2024-01-01T09:00:00Z", End: "2024-01-01T09:30:00Z"},
		{ID: "b", Title: "Study algebra", Start: "2024-01-01T09:15:00Z", End: "2024-01-01T11:15:00Z"},
	}, nil, PresetConflicts)

	require.Len(t, result.Changes, 1)
	// The study event stays put even though it is the longer one.
	assert.Equal(t, "a", result.Changes[0].EventID)
}

func TestOptimizeConflictSkipsImmovable(t *testing.T) {
	result := newTestEngine().Optimize([]RawEvent{
		{ID: "a", Title: "Doctor", Start: "2024-01-01T09:00:00Z", End: "2024-01-01T10:00:00Z", IsImmovable: true},
		{ID: "b", Title: "Errand", Start: "2024-01-01T09:30:00Z", End: "2024-01-01T10:30:00Z", IsImmovable: true},
	}, nil, PresetConflicts)

	assert.Empty(t, result.Changes)
	assert.Zero(t, result.Metrics.ConflictsResolved)
}

func TestOptimizeEqualDurationTieBreaksOnID(t *testing.T) {
	result := newTestEngine().Optimize([]RawEvent{
		{ID: "zz", Title: "First", Start: "2024-01-01T09:00:00Z", End: "2024-01-01T10:00:00Z"},
		{ID: "aa", Title: "Second", Start: "2024-01-01T09:30:00Z", End: "2024-01-01T10:30:00Z"},
	}, nil, PresetConflicts)

	require.Len(t, result.Changes, 1)
	assert.Equal(t, "aa", result.Changes[0].EventID)
}

func TestOptimizeSplitsLongStudySession(t *testing.T) {
	result := newTestEngine().Optimize([]RawEvent{
		{ID: "s1", Title: "Study physics", Start: "2024-01-01T09:00:00Z", End: "2024-01-01T12:00:00Z"},
	}, nil, PresetDefault)

	require.Len(t, result.Changes, 3)
	assert.Equal(t, 3, result.Metrics.EventsSplit)

	first := result.Changes[0]
	assert.Equal(t, ActionMove, first.Action)
	assert.Equal(t, "s1", first.EventID)
	assert.Equal(t, 60, first.DurationMin)

	prevEnd := first.NewStart.Add(time.Duration(first.DurationMin) * time.Minute)
	for _, chunk := range result.Changes[1:] {
		assert.Equal(t, ActionCreate, chunk.Action)
		assert.Equal(t, NewEventID, chunk.EventID)
		assert.Equal(t, "s1", chunk.ParentID)
		assert.Contains(t, chunk.Title, "(continued)")
		assert.False(t, chunk.NewStart.Before(prevEnd.Add(15*time.Minute)),
			"chunk must start at least one break after the previous chunk")
		prevEnd = chunk.NewStart.Add(time.Duration(chunk.DurationMin) * time.Minute)
	}
}

func TestOptimizeShortensSlightlyOversizedStudySession(t *testing.T) {
	// 80 minutes against a 60-minute ideal block is within the 1.5x bound.
	result := newTestEngine().Optimize([]RawEvent{
		{ID: "s1", Title: "Study history", Start: "2024-01-01T09:00:00Z", End: "2024-01-01T10:20:00Z"},
	}, nil, PresetDefault)

	require.Len(t, result.Changes, 1)
	assert.Equal(t, 60, result.Changes[0].DurationMin)
	assert.Equal(t, 1, result.Metrics.EventsShortened)
	assert.Zero(t, result.Metrics.EventsSplit)
}

func TestOptimizeSpacingPass(t *testing.T) {
	result := newTestEngine().Optimize([]RawEvent{
		{ID: "a", Title: "Morning review", Start: "2024-01-01T09:00:00Z", End: "2024-01-01T10:00:00Z"},
		{ID: "b", Title: "Afternoon errand", Start: "2024-01-01T14:00:00Z", End: "2024-01-01T15:00:00Z"},
	}, nil, PresetOptimized)

	require.Len(t, result.Changes, 2)
	// Both events re-flow to day start plus the 20-minute optimized buffer.
	assert.Equal(t, time.Date(2024, 1, 1, 8, 20, 0, 0, time.UTC), result.Changes[0].NewStart)
	assert.Equal(t, time.Date(2024, 1, 1, 9, 40, 0, 0, time.UTC), result.Changes[1].NewStart)
	assert.Equal(t, 2, result.Metrics.EventsMoved)
}

func TestOptimizeSpacingLeavesImmovable(t *testing.T) {
	result := newTestEngine().Optimize([]RawEvent{
		{ID: "a", Title: "Fixed meeting", Start: "2024-01-01T11:00:00Z", End: "2024-01-01T12:00:00Z", IsImmovable: true},
	}, nil, PresetOptimized)

	assert.Empty(t, result.Changes)
}

func TestBusyWeekCompactorSkipsRescheduledEvent(t *testing.T) {
	// "a" both trails a 9-hour gap and loses a conflict whose resolution
	// overflows the workday, so the resolver relocates it to the next day.
	// The compactor works from gap analysis taken before any pass ran and
	// must not drag the already-relocated event back.
	result := newTestEngine().Optimize([]RawEvent{
		{ID: "e1", Title: "Morning sync", Start: "2024-01-01T08:00:00Z", End: "2024-01-01T09:00:00Z"},
		{ID: "a", Title: "Afternoon errand", Start: "2024-01-01T18:00:00Z", End: "2024-01-01T19:00:00Z"},
		{ID: "b", Title: "Client call", Start: "2024-01-01T18:30:00Z", End: "2024-01-01T19:30:00Z"},
	}, nil, PresetBusyWeek)

	require.Len(t, result.Changes, 1)
	change := result.Changes[0]
	assert.Equal(t, "a", change.EventID)
	assert.Equal(t, time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC), change.NewStart)
	require.NotNil(t, change.Animation)
	assert.Equal(t, "2024-01-02", change.Animation.ToDate)
	assert.Equal(t, 1, result.Metrics.ConflictsResolved)
	assert.Equal(t, 1, result.Metrics.EventsMoved)
}

func TestIngestSortsBuckets(t *testing.T) {
	r := &run{
		params:  ResolveParams(PresetDefault, nil),
		buckets: make(map[string][]*processedEvent),
		load:    make(map[string]float64),
	}
	r.ingest([]RawEvent{
		{ID: "c", Title: "Late", Start: "2024-01-01T15:00:00Z"},
		{ID: "a", Title: "Early", Start: "2024-01-01T08:00:00Z"},
		{ID: "b", Title: "Mid", Start: "2024-01-01T11:00:00Z"},
		{ID: "d", Title: "Other day", Start: "2024-01-02T09:00:00Z"},
	})

	require.Len(t, r.buckets, 2)
	events := r.buckets["2024-01-01"]
	require.Len(t, events, 3)
	for i := 0; i < len(events)-1; i++ {
		assert.False(t, events[i+1].start.Before(events[i].start))
	}
	// Default end is one hour after start.
	assert.Equal(t, 3600, events[0].duration)
	assert.InDelta(t, 3.0, r.load["2024-01-01"], 0.001)
}

func TestClassificationIsStable(t *testing.T) {
	for i := 0; i < 2; i++ {
		assert.True(t, classifyStudy("Deep Study", "", ""))
		assert.True(t, classifyStudy("Review", "study", ""))
		assert.True(t, classifyStudy("Review", "", "study group"))
		assert.False(t, classifyStudy("Gym", "fitness", "cardio"))
		assert.True(t, classifyBreak("Lunch Break"))
		assert.False(t, classifyBreak("Lunch"))
	}
}

func TestOptimizeHealthBounds(t *testing.T) {
	events := []RawEvent{
		{ID: "a", Title: "One", Start: "2024-01-01T09:00:00Z", End: "2024-01-01T10:00:00Z"},
		{ID: "b", Title: "Two", Start: "2024-01-01T09:30:00Z", End: "2024-01-01T10:30:00Z"},
		{ID: "c", Title: "Study marathon", Start: "2024-01-02T08:00:00Z", End: "2024-01-02T16:00:00Z"},
	}
	for _, preset := range []string{PresetDefault, PresetBusyWeek, PresetConflicts, PresetOptimized} {
		result := newTestEngine().Optimize(events, nil, preset)
		for _, score := range []float64{
			result.Health.FocusUtilization,
			result.Health.BreakCompliance,
			result.Health.ConflictScore,
			result.Health.BalanceScore,
		} {
			assert.GreaterOrEqual(t, score, 0.0, "preset %s", preset)
			assert.LessOrEqual(t, score, 100.0, "preset %s", preset)
		}
	}
}
