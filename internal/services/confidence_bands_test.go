package services

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyConfidenceBands_Ordering(t *testing.T) {
	last := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	predicted := []float64{100, 110, 120, 130, 140}

	points := applyConfidenceBands(last, predicted, 10, 1.96, true)
	require.Len(t, points, 5)

	for i, p := range points {
		assert.LessOrEqual(t, p.LowerBound, p.Predicted, "point %d", i)
		assert.LessOrEqual(t, p.Predicted, p.UpperBound, "point %d", i)
		assert.GreaterOrEqual(t, p.LowerBound, 0.0, "point %d", i)
		assert.Equal(t, last.AddDate(0, 0, i+1), p.Date)
	}
}

func TestApplyConfidenceBands_MonotoneWidth(t *testing.T) {
	last := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	predicted := make([]float64, 30)
	for i := range predicted {
		predicted[i] = 50
	}

	points := applyConfidenceBands(last, predicted, 8, 1.96, true)

	prevWidth := -1.0
	for i, p := range points {
		width := p.UpperBound - p.LowerBound
		assert.Greater(t, width, prevWidth, "band width must widen with horizon, point %d", i)
		prevWidth = width
	}

	// Half-width at step h is z * sigma * sqrt(h)
	assert.InDelta(t, 2*1.96*8*math.Sqrt(1), points[0].UpperBound-points[0].LowerBound, 1e-9)
	assert.InDelta(t, 2*1.96*8*math.Sqrt(9), points[8].UpperBound-points[8].LowerBound, 1e-9)
}

func TestApplyConfidenceBands_NonNegativeClamp(t *testing.T) {
	last := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	// Small predicted value with a wide band: the naive lower bound would go
	// deeply negative.
	points := applyConfidenceBands(last, []float64{5}, 20, 1.96, true)
	require.Len(t, points, 1)

	p := points[0]
	assert.Equal(t, 0.0, p.LowerBound)
	assert.LessOrEqual(t, p.LowerBound, p.Predicted)
	assert.LessOrEqual(t, p.Predicted, p.UpperBound)
	// Shifting, not truncating, preserves the full band width
	assert.InDelta(t, 2*1.96*20, p.UpperBound-p.LowerBound, 1e-9)
}

func TestApplyConfidenceBands_NegativePredictionClamped(t *testing.T) {
	last := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	points := applyConfidenceBands(last, []float64{-42}, 0, 1.96, true)
	require.Len(t, points, 1)
	assert.Equal(t, 0.0, points[0].Predicted)
	assert.Equal(t, 0.0, points[0].LowerBound)
}

func TestApplyConfidenceBands_UnboundedMetric(t *testing.T) {
	last := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	points := applyConfidenceBands(last, []float64{-10}, 5, 1.96, false)
	require.Len(t, points, 1)
	assert.Equal(t, -10.0, points[0].Predicted)
	assert.Less(t, points[0].LowerBound, -10.0)
}

func TestApplyConfidenceBands_DegenerateInputs(t *testing.T) {
	last := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	t.Run("zero sigma collapses the band", func(t *testing.T) {
		points := applyConfidenceBands(last, []float64{100}, 0, 1.96, true)
		assert.Equal(t, 100.0, points[0].LowerBound)
		assert.Equal(t, 100.0, points[0].UpperBound)
	})

	t.Run("nan sigma treated as zero", func(t *testing.T) {
		points := applyConfidenceBands(last, []float64{100}, math.NaN(), 1.96, true)
		assert.Equal(t, 100.0, points[0].LowerBound)
		assert.Equal(t, 100.0, points[0].UpperBound)
	})

	t.Run("non-positive z falls back to default", func(t *testing.T) {
		points := applyConfidenceBands(last, []float64{100}, 10, 0, true)
		assert.InDelta(t, 2*1.96*10, points[0].UpperBound-points[0].LowerBound, 1e-9)
	})
}
