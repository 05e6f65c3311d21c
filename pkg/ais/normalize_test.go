package ais

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizer_Timestamps(t *testing.T) {
	n := NewNormalizer()
	want := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)

	for _, raw := range []any{
		"2024-05-01T08:30:00Z",
		"2024-05-01 08:30:00 UTC",
		float64(want.Unix()),
		float64(want.UnixMilli()),
	} {
		candidates := n.Candidates(map[string]any{"MMSI": "1", "TIMESTAMP": raw})
		require.Len(t, candidates, 1)
		require.NotNil(t, candidates[0].UpdatedAt, "raw=%v", raw)
		assert.True(t, want.Equal(*candidates[0].UpdatedAt), "raw=%v", raw)
	}
}

func TestNormalizer_SkipsNonVesselRecords(t *testing.T) {
	n := NewNormalizer()

	assert.Empty(t, n.Candidates(nil))
	assert.Empty(t, n.Candidates("not json object"))
	assert.Empty(t, n.Candidates(map[string]any{"message": "no vessel"}))
	assert.Empty(t, n.Candidates([]any{"x", 1.0}))
}

func TestNormalizer_EmptyStringsFallThroughToNextAlias(t *testing.T) {
	n := NewNormalizer()

	candidates := n.Candidates(map[string]any{"MMSI": "", "mmsi": "440176000", "LATITUDE": 0.0, "LONGITUDE": 0.0})
	require.Len(t, candidates, 1)
	assert.Equal(t, "440176000", candidates[0].TrackingID)
	assert.True(t, candidates[0].HasPosition(), "zero coordinates are still coordinates")
}
