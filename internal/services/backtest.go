package services

import (
	"math"

	"github.com/modaflow/retail-insights/internal/models"
	"github.com/modaflow/retail-insights/internal/utils"
)

const (
	defaultBacktestFraction = 0.25
	defaultMinHoldout       = 3
)

// backtestOutcome is the scored result of re-running one candidate against
// the held-out trailing window.
type backtestOutcome struct {
	model          ForecastModel
	metrics        models.AccuracyMetrics
	residualStdDev float64
	holdoutMean    float64
	err            error
}

// splitBacktest reserves the trailing fraction of the series (at least
// minHoldout points) as held-out actuals.
func splitBacktest(points []models.HistoricalPoint, fraction float64, minHoldout int) (train, holdout []models.HistoricalPoint, err error) {
	if fraction <= 0 || fraction >= 1 {
		fraction = defaultBacktestFraction
	}
	if minHoldout <= 0 {
		minHoldout = defaultMinHoldout
	}

	holdoutLen := int(math.Round(float64(len(points)) * fraction))
	if holdoutLen < minHoldout {
		holdoutLen = minHoldout
	}
	if len(points)-holdoutLen < 2 {
		return nil, nil, utils.NewValidationErrorf(
			"series of %d points too short to hold out %d", len(points), holdoutLen)
	}

	cut := len(points) - holdoutLen
	return points[:cut], points[cut:], nil
}

// runBacktest scores one candidate: forecast the held-out window from the
// leading portion only, then compare point-wise.
func runBacktest(model ForecastModel, train, holdout []models.HistoricalPoint) backtestOutcome {
	predicted, err := model.Forecast(train, len(holdout))
	if err != nil {
		return backtestOutcome{model: model, err: err}
	}
	if len(predicted) != len(holdout) {
		return backtestOutcome{model: model, err: utils.NewValidationErrorf(
			"model %s returned %d points for a %d-point holdout", model.Name(), len(predicted), len(holdout))}
	}

	actuals := seriesValues(holdout)
	outcome := backtestOutcome{
		model:       model,
		metrics:     scoreForecast(actuals, predicted),
		holdoutMean: meanOf(actuals),
	}

	residuals := make([]float64, len(actuals))
	for i := range actuals {
		residuals[i] = actuals[i] - predicted[i]
	}
	outcome.residualStdDev = stdDevOf(residuals)
	return outcome
}

// scoreForecast computes MAPE, MAE, RMSE and R-squared for predicted vs
// actual values. Degenerate divisions are coerced to safe values rather
// than propagated.
func scoreForecast(actuals, predicted []float64) models.AccuracyMetrics {
	n := len(actuals)
	if n == 0 || len(predicted) != n {
		return models.AccuracyMetrics{}
	}

	var absPctSum, absSum, sqSum float64
	for i := range actuals {
		diff := actuals[i] - predicted[i]
		absSum += math.Abs(diff)
		sqSum += diff * diff
		absPctSum += math.Abs(diff) / math.Max(actuals[i], epsilon)
	}

	metrics := models.AccuracyMetrics{
		MAPE: sanitize(absPctSum / float64(n) * 100),
		MAE:  sanitize(absSum / float64(n)),
		RMSE: sanitize(math.Sqrt(sqSum / float64(n))),
	}
	metrics.RSquared = rSquared(actuals, sqSum)
	return metrics
}

// rSquared computes the coefficient of determination given the actuals and
// the already-summed squared residuals. A constant actual series has no
// variance to explain: a perfect fit scores 1, anything else 0.
func rSquared(actuals []float64, ssr float64) float64 {
	mean := meanOf(actuals)
	var sst float64
	for _, a := range actuals {
		d := a - mean
		sst += d * d
	}
	if sst < epsilon {
		if ssr < epsilon {
			return 1
		}
		return 0
	}
	r2 := 1 - ssr/sst
	if r2 > 1 {
		r2 = 1
	}
	return sanitize(r2)
}
