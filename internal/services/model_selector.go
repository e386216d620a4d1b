package services

import (
	"math"
	"sort"

	"github.com/modaflow/retail-insights/internal/models"
	"github.com/modaflow/retail-insights/internal/utils"
)

// selection is the winning candidate plus the full ensemble comparison.
type selection struct {
	winner     backtestOutcome
	comparison []models.ModelComparison
}

// selectBestModel picks the candidate with the lowest MAPE; ties break on
// higher R-squared, then lower RMSE, then ensemble order. Failed candidates
// are dropped silently; if none survive the result is NoViableModelError.
func selectBestModel(outcomes []backtestOutcome) (*selection, error) {
	viable := make([]backtestOutcome, 0, len(outcomes))
	comparison := make([]models.ModelComparison, 0, len(outcomes))
	for _, o := range outcomes {
		if o.err != nil {
			continue
		}
		viable = append(viable, o)
		comparison = append(comparison, models.ModelComparison{
			Name:     o.model.Name(),
			MAPE:     o.metrics.MAPE,
			MAE:      o.metrics.MAE,
			RMSE:     o.metrics.RMSE,
			RSquared: o.metrics.RSquared,
		})
	}
	if len(viable) == 0 {
		return nil, utils.NewNoViableModelError("every ensemble candidate failed")
	}

	sort.SliceStable(viable, func(i, j int) bool {
		a, b := viable[i].metrics, viable[j].metrics
		if a.MAPE != b.MAPE {
			return a.MAPE < b.MAPE
		}
		if a.RSquared != b.RSquared {
			return a.RSquared > b.RSquared
		}
		return a.RMSE < b.RMSE
	})

	return &selection{winner: viable[0], comparison: comparison}, nil
}

// qualityScore folds the winner's accuracy metrics into a 0-100 composite:
// inverse-scaled MAPE and normalized RMSE combined with R-squared.
func qualityScore(m models.AccuracyMetrics, holdoutMean float64) float64 {
	mapeComponent := clamp(100-m.MAPE, 0, 100)

	r2Component := clamp(m.RSquared, 0, 1) * 100

	nrmse := 0.0
	if holdoutMean > epsilon {
		nrmse = m.RMSE / holdoutMean
	}
	rmseComponent := clamp(100-nrmse*100, 0, 100)

	score := 0.5*mapeComponent + 0.3*r2Component + 0.2*rmseComponent
	return clamp(sanitize(score), 0, 100)
}

// confidenceScore discounts quality by data volume: even a perfect fit on a
// short series gets a lowered confidence ceiling.
func confidenceScore(quality float64, dataPoints, fullConfidenceDays int) float64 {
	if fullConfidenceDays <= 0 {
		fullConfidenceDays = 60
	}
	volume := math.Min(1, float64(dataPoints)/float64(fullConfidenceDays))
	ceiling := 0.4 + 0.6*volume
	return clamp(sanitize(quality*ceiling), 0, 100)
}
