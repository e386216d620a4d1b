package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/modaflow/retail-insights/internal/models"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		expected float64
	}{
		{name: "regular value", value: 42.5, expected: 42.5},
		{name: "zero", value: 0, expected: 0},
		{name: "NaN", value: math.NaN(), expected: 0},
		{name: "positive infinity", value: math.Inf(1), expected: 0},
		{name: "negative infinity", value: math.Inf(-1), expected: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, sanitize(tc.value))
		})
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		lo, hi   float64
		expected float64
	}{
		{name: "inside range", value: 50, lo: 0, hi: 100, expected: 50},
		{name: "below range", value: -3, lo: 0, hi: 100, expected: 0},
		{name: "above range", value: 120, lo: 0, hi: 100, expected: 100},
		{name: "at lower edge", value: 0, lo: 0, hi: 100, expected: 0},
		{name: "at upper edge", value: 100, lo: 0, hi: 100, expected: 100},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, clamp(tc.value, tc.lo, tc.hi))
		})
	}
}

func TestMeanOf(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{name: "empty slice", values: []float64{}, expected: 0},
		{name: "single value", values: []float64{5.0}, expected: 5.0},
		{name: "multiple values", values: []float64{1.0, 2.0, 3.0, 4.0, 5.0}, expected: 3.0},
		{name: "all zeros", values: []float64{0, 0, 0}, expected: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, meanOf(tc.values), 1e-10)
		})
	}
}

func TestStdDevOf(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{name: "empty slice", values: []float64{}, expected: 0},
		{name: "single value", values: []float64{5.0}, expected: 0},
		{name: "two identical values", values: []float64{5.0, 5.0}, expected: 0},
		{name: "uniform spread", values: []float64{1.0, 2.0, 3.0, 4.0, 5.0}, expected: math.Sqrt(2.5)},
		{name: "large spread", values: []float64{0.0, 100.0}, expected: math.Sqrt(5000)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, stdDevOf(tc.values), 1e-10)
		})
	}
}

func TestRollingStats(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6}
	means, stds := rollingStats(values, 3)

	assert.Len(t, means, len(values))
	assert.Len(t, stds, len(values))

	for i := 0; i < 3; i++ {
		assert.True(t, math.IsNaN(means[i]), "index %d should have no full window", i)
	}

	// Index 3 looks back at {1,2,3}
	assert.InDelta(t, 2.0, means[3], 1e-10)
	assert.InDelta(t, 1.0, stds[3], 1e-10)
	// Index 5 looks back at {3,4,5}
	assert.InDelta(t, 4.0, means[5], 1e-10)
}

func TestSeriesValues(t *testing.T) {
	points := []models.HistoricalPoint{
		{Value: 10},
		{Value: 20},
		{Value: 30},
	}
	assert.Equal(t, []float64{10, 20, 30}, seriesValues(points))
	assert.Empty(t, seriesValues(nil))
}
