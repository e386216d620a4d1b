package services

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/modaflow/retail-insights/internal/models"
)

const epsilon = 1e-9

// sanitize coerces NaN and infinities to zero so a single degenerate
// division never propagates out of a metric computation.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// clamp limits v to the [lo, hi] interval.
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean, err := stats.Mean(values)
	if err != nil {
		return 0
	}
	return sanitize(mean)
}

func stdDevOf(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sd, err := stats.StandardDeviationSample(values)
	if err != nil {
		return 0
	}
	return sanitize(sd)
}

// rollingStats computes, for each index i, the mean and sample standard
// deviation of the `window` values preceding i. Indexes without a full
// preceding window get NaN and must be skipped by the caller.
func rollingStats(values []float64, window int) (means, stds []float64) {
	means = make([]float64, len(values))
	stds = make([]float64, len(values))
	for i := range values {
		if i < window {
			means[i] = math.NaN()
			stds[i] = math.NaN()
			continue
		}
		prev := values[i-window : i]
		means[i] = meanOf(prev)
		stds[i] = stdDevOf(prev)
	}
	return means, stds
}

func seriesValues(points []models.HistoricalPoint) []float64 {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	return values
}
