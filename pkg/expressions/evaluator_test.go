package expressions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluator_Evaluate(t *testing.T) {
	e := NewEvaluator()
	data := map[string]any{
		"AIS":  map[string]any{"MMSI": "440176000"},
		"mmsi": "",
	}

	result, err := e.Evaluate("mmsi || AIS.MMSI", data)
	require.NoError(t, err)
	assert.Equal(t, "440176000", result)

	result, err = e.Evaluate("missing", data)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestEvaluator_EvaluateSlice(t *testing.T) {
	e := NewEvaluator()

	got, err := e.EvaluateSlice("results", map[string]any{"results": []any{1.0, 2.0}})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = e.EvaluateSlice("@", map[string]any{"MMSI": "1"})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = e.EvaluateSlice("results", map[string]any{})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestEvaluator_InvalidExpression(t *testing.T) {
	e := NewEvaluator()

	assert.Error(t, e.Validate("a ||"))
	_, err := e.Evaluate("[?", nil)
	assert.Error(t, err)
}
