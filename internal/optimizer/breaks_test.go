package optimizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func packedDay() []RawEvent {
	// Five back-to-back sessions with 10-minute gaps; too tight for a break
	// until after the final one.
	return []RawEvent{
		{ID: "e1", Title: "Session one", Start: "2024-01-01T08:00:00Z", End: "2024-01-01T09:00:00Z"},
		{ID: "e2", Title: "Session two", Start: "2024-01-01T09:10:00Z", End: "2024-01-01T10:10:00Z"},
		{ID: "e3", Title: "Session three", Start: "2024-01-01T10:20:00Z", End: "2024-01-01T11:20:00Z"},
		{ID: "e4", Title: "Session four", Start: "2024-01-01T11:30:00Z", End: "2024-01-01T12:30:00Z"},
		{ID: "e5", Title: "Session five", Start: "2024-01-01T12:40:00Z", End: "2024-01-01T13:40:00Z"},
	}
}

func TestBreakInserterFailureKeepsCounting(t *testing.T) {
	result := newTestEngine().Optimize(packedDay(), nil, PresetDefault)

	require.Len(t, result.Changes, 1)
	change := result.Changes[0]
	assert.Equal(t, ActionCreate, change.Action)
	assert.Equal(t, NewEventID, change.EventID)
	assert.Equal(t, breakTitle, change.Title)
	assert.Equal(t, 15, change.DurationMin)
	// The slot after the fourth session is too tight, so the run keeps
	// counting and the break lands after the fifth.
	assert.Equal(t, time.Date(2024, 1, 1, 13, 45, 0, 0, time.UTC), change.NewStart)
	assert.Equal(t, 1, result.Metrics.BreaksAdded)
}

func TestBreakInserterResetsOnExistingBreak(t *testing.T) {
	events := []RawEvent{
		{ID: "e1", Title: "Session one", Start: "2024-01-01T08:00:00Z", End: "2024-01-01T09:00:00Z"},
		{ID: "e2", Title: "Session two", Start: "2024-01-01T09:10:00Z", End: "2024-01-01T10:10:00Z"},
		{ID: "e3", Title: "Coffee break", Start: "2024-01-01T10:20:00Z", End: "2024-01-01T10:40:00Z"},
		{ID: "e4", Title: "Session three", Start: "2024-01-01T10:50:00Z", End: "2024-01-01T11:50:00Z"},
		{ID: "e5", Title: "Session four", Start: "2024-01-01T12:00:00Z", End: "2024-01-01T13:00:00Z"},
	}
	result := newTestEngine().Optimize(events, nil, PresetDefault)

	assert.Empty(t, result.Changes)
	assert.Zero(t, result.Metrics.BreaksAdded)
}

func TestCollectSpansMergesProposedChanges(t *testing.T) {
	r := newRunForTest([]RawEvent{
		{ID: "a", Title: "Session", Start: "2024-01-01T09:00:00Z", End: "2024-01-01T10:00:00Z"},
	}, PresetDefault)
	r.addChange(Change{
		Action:      ActionMove,
		EventID:     "a",
		NewStart:    time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC),
		DurationMin: 60,
	})
	r.addChange(Change{
		Action:      ActionCreate,
		EventID:     NewEventID,
		Title:       breakTitle,
		NewStart:    time.Date(2024, 1, 1, 12, 15, 0, 0, time.UTC),
		DurationMin: 15,
	})

	spans := r.collectSpans("2024-01-01")
	require.Len(t, spans, 2)
	assert.Equal(t, time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC), spans[0].start)
	assert.False(t, spans[0].isBreak)
	assert.True(t, spans[1].isBreak)
}

func TestCollectSpansSeesCrossDateMoves(t *testing.T) {
	// An event bucketed on one date but relocated to another must count
	// towards the destination date's consecutive-event runs.
	r := newRunForTest([]RawEvent{
		{ID: "a", Title: "Session", Start: "2024-01-01T09:00:00Z", End: "2024-01-01T10:00:00Z"},
	}, PresetBusyWeek)
	r.addChange(Change{
		Action:      ActionMove,
		EventID:     "a",
		NewStart:    time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC),
		DurationMin: 60,
	})

	assert.Empty(t, r.collectSpans("2024-01-01"))

	spans := r.collectSpans("2024-01-02")
	require.Len(t, spans, 1)
	assert.Equal(t, time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC), spans[0].start)
	assert.Equal(t, time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC), spans[0].end)
	assert.False(t, spans[0].isBreak)
}
