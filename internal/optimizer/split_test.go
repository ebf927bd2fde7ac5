package optimizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSpillMovesLoadWithEachChunk(t *testing.T) {
	// Four hours starting at 18:00 leave room for one chunk before the
	// workday ends; the other three land on the next morning.
	r := newRunForTest([]RawEvent{
		{ID: "s1", Title: "Study marathon", Start: "2024-01-01T18:00:00Z", End: "2024-01-01T22:00:00Z"},
	}, PresetDefault)
	require.InDelta(t, 4.0, r.load["2024-01-01"], 0.001)

	r.splitOversized("2024-01-01")

	require.Len(t, r.changes, 4)
	assert.Equal(t, time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC), r.changes[1].NewStart)
	assert.Equal(t, time.Date(2024, 1, 2, 9, 15, 0, 0, time.UTC), r.changes[2].NewStart)
	assert.Equal(t, time.Date(2024, 1, 2, 10, 30, 0, 0, time.UTC), r.changes[3].NewStart)

	// Every spilled chunk carries its hours to the date it landed on.
	assert.InDelta(t, 1.0, r.load["2024-01-01"], 0.001)
	assert.InDelta(t, 3.0, r.load["2024-01-02"], 0.001)
}

func TestSplitShortenReducesLoadInPlace(t *testing.T) {
	r := newRunForTest([]RawEvent{
		{ID: "s1", Title: "Study history", Start: "2024-01-01T09:00:00Z", End: "2024-01-01T10:20:00Z"},
	}, PresetDefault)

	r.splitOversized("2024-01-01")

	require.Len(t, r.changes, 1)
	assert.InDelta(t, 1.0, r.load["2024-01-01"], 0.001)
	assert.NotContains(t, r.load, "2024-01-02")
}
