package models

import "time"

// Metric identifies which daily business measure a series tracks.
type Metric string

const (
	MetricRevenue    Metric = "revenue"
	MetricQuantity   Metric = "quantity"
	MetricOrderCount Metric = "orders"
)

// Valid reports whether the metric is one of the supported series types.
func (m Metric) Valid() bool {
	switch m {
	case MetricRevenue, MetricQuantity, MetricOrderCount:
		return true
	}
	return false
}

// NonNegative reports whether the metric can never go below zero.
// All currently supported metrics are counts or money amounts.
func (m Metric) NonNegative() bool {
	return true
}

// HistoricalPoint is a single day of an ordered, gap-free daily series.
type HistoricalPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// ForecastPoint is a predicted future day with its uncertainty envelope.
// LowerBound <= Predicted <= UpperBound always holds.
type ForecastPoint struct {
	Date       time.Time `json:"date"`
	Predicted  float64   `json:"predicted"`
	LowerBound float64   `json:"lower_bound"`
	UpperBound float64   `json:"upper_bound"`
}

// AccuracyMetrics summarizes how well the selected model reproduced
// held-out history, plus the derived 0-100 quality and confidence scores.
type AccuracyMetrics struct {
	MAPE         float64 `json:"mape"`
	MAE          float64 `json:"mae"`
	RMSE         float64 `json:"rmse"`
	RSquared     float64 `json:"r_squared"`
	Confidence   float64 `json:"confidence"`
	QualityScore float64 `json:"quality_score"`
}

// ModelComparison is the per-candidate backtest summary included in the
// forecast result so callers can see how the ensemble ranked.
type ModelComparison struct {
	Name     string  `json:"name"`
	MAPE     float64 `json:"mape"`
	MAE      float64 `json:"mae"`
	RMSE     float64 `json:"rmse"`
	RSquared float64 `json:"r_squared"`
}

// ForecastResult is the full output of a forecast computation. It is a
// pure function of the input series and horizon: identical inputs yield
// identical results, which is what makes it safe to cache. Wall-clock
// timestamps belong to the transport and cache layers.
type ForecastResult struct {
	Forecasts       []ForecastPoint   `json:"forecasts"`
	Metrics         AccuracyMetrics   `json:"metrics"`
	BestModel       string            `json:"best_model"`
	ModelComparison []ModelComparison `json:"model_comparison"`
	HorizonDays     int               `json:"horizon_days"`
}

// ForecastSnapshot bundles a forecast result with the normalized history
// it was computed from, so a cache hit can serve the same payload as a
// fresh computation.
type ForecastSnapshot struct {
	Result  ForecastResult    `json:"result"`
	History []HistoricalPoint `json:"history"`
	Skipped int               `json:"skipped"`
}
