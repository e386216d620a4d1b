package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modaflow/retail-insights/internal/models"
	"github.com/modaflow/retail-insights/internal/utils"
)

func outcomeFor(name string, mape, rmse, r2 float64) backtestOutcome {
	return backtestOutcome{
		model:   &namedModel{name: name},
		metrics: models.AccuracyMetrics{MAPE: mape, RMSE: rmse, RSquared: r2},
	}
}

// namedModel is a selector-test stand-in; it never forecasts.
type namedModel struct{ name string }

func (m *namedModel) Name() string { return m.name }

func (m *namedModel) Forecast(_ []models.HistoricalPoint, _ int) ([]float64, error) {
	return nil, errors.New("not implemented")
}

func TestSelectBestModel(t *testing.T) {
	tests := []struct {
		name     string
		outcomes []backtestOutcome
		want     string
	}{
		{
			name: "lowest mape wins",
			outcomes: []backtestOutcome{
				outcomeFor("a", 12, 5, 0.8),
				outcomeFor("b", 8, 9, 0.5),
				outcomeFor("c", 15, 3, 0.9),
			},
			want: "b",
		},
		{
			name: "mape tie breaks on r squared",
			outcomes: []backtestOutcome{
				outcomeFor("a", 10, 5, 0.6),
				outcomeFor("b", 10, 5, 0.9),
			},
			want: "b",
		},
		{
			name: "full tie breaks on rmse",
			outcomes: []backtestOutcome{
				outcomeFor("a", 10, 8, 0.7),
				outcomeFor("b", 10, 4, 0.7),
			},
			want: "b",
		},
		{
			name: "identical metrics keep ensemble order",
			outcomes: []backtestOutcome{
				outcomeFor("first", 10, 5, 0.7),
				outcomeFor("second", 10, 5, 0.7),
			},
			want: "first",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sel, err := selectBestModel(tc.outcomes)
			require.NoError(t, err)
			assert.Equal(t, tc.want, sel.winner.model.Name())
		})
	}
}

func TestSelectBestModel_FailedCandidatesDropped(t *testing.T) {
	outcomes := []backtestOutcome{
		{model: &namedModel{name: "broken"}, err: errors.New("boom")},
		outcomeFor("survivor", 20, 10, 0.3),
	}

	sel, err := selectBestModel(outcomes)
	require.NoError(t, err)
	assert.Equal(t, "survivor", sel.winner.model.Name())
	require.Len(t, sel.comparison, 1, "failed candidates must not appear in the comparison")
	assert.Equal(t, "survivor", sel.comparison[0].Name)
}

func TestSelectBestModel_NoSurvivors(t *testing.T) {
	outcomes := []backtestOutcome{
		{model: &namedModel{name: "a"}, err: errors.New("a failed")},
		{model: &namedModel{name: "b"}, err: errors.New("b failed")},
	}

	_, err := selectBestModel(outcomes)
	require.Error(t, err)

	var noViable *utils.NoViableModelError
	assert.True(t, errors.As(err, &noViable))
}

func TestQualityScore(t *testing.T) {
	tests := []struct {
		name        string
		metrics     models.AccuracyMetrics
		holdoutMean float64
		want        float64
	}{
		{
			name:        "perfect fit",
			metrics:     models.AccuracyMetrics{MAPE: 0, RMSE: 0, RSquared: 1},
			holdoutMean: 100,
			want:        100,
		},
		{
			name:        "useless fit",
			metrics:     models.AccuracyMetrics{MAPE: 200, RMSE: 500, RSquared: -2},
			holdoutMean: 100,
			want:        0,
		},
		{
			name:        "mid range composite",
			metrics:     models.AccuracyMetrics{MAPE: 20, RMSE: 10, RSquared: 0.5},
			holdoutMean: 100,
			// 0.5*80 + 0.3*50 + 0.2*90
			want: 73,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := qualityScore(tc.metrics, tc.holdoutMean)
			assert.InDelta(t, tc.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 100.0)
		})
	}
}

func TestQualityScore_ZeroHoldoutMean(t *testing.T) {
	m := models.AccuracyMetrics{MAPE: 0, RMSE: 50, RSquared: 1}
	got := qualityScore(m, 0)
	// NRMSE cannot be computed, so the RMSE component stays at full marks
	assert.InDelta(t, 100.0, got, 1e-9)
}

func TestConfidenceScore(t *testing.T) {
	tests := []struct {
		name       string
		quality    float64
		dataPoints int
		fullDays   int
		want       float64
	}{
		{name: "full history keeps quality", quality: 90, dataPoints: 60, fullDays: 60, want: 90},
		{name: "long history caps at quality", quality: 90, dataPoints: 365, fullDays: 60, want: 90},
		{name: "half history discounts", quality: 100, dataPoints: 30, fullDays: 60, want: 70},
		{name: "minimum viable history floors near forty percent", quality: 100, dataPoints: 7, fullDays: 60, want: 47},
		{name: "bad full days falls back to sixty", quality: 100, dataPoints: 60, fullDays: 0, want: 100},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := confidenceScore(tc.quality, tc.dataPoints, tc.fullDays)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}
