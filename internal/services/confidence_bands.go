package services

import (
	"math"
	"time"

	"github.com/modaflow/retail-insights/internal/models"
)

const defaultConfidenceZ = 1.96 // ~95% interval

// applyConfidenceBands attaches a widening uncertainty envelope to the
// selected forecast. The half-width at step h is z * sigma * sqrt(h), so
// bounds widen monotonically with distance into the future. For
// non-negative metrics the envelope is shifted rather than truncated, which
// keeps the band width itself monotone.
func applyConfidenceBands(lastDate time.Time, predicted []float64, sigma, z float64, nonNegative bool) []models.ForecastPoint {
	if z <= 0 {
		z = defaultConfidenceZ
	}
	if sigma < 0 || math.IsNaN(sigma) || math.IsInf(sigma, 0) {
		sigma = 0
	}

	points := make([]models.ForecastPoint, len(predicted))
	for i, p := range predicted {
		h := float64(i + 1)
		halfWidth := z * sigma * math.Sqrt(h)

		value := sanitize(p)
		if nonNegative && value < 0 {
			value = 0
		}

		lower := value - halfWidth
		if nonNegative && lower < 0 {
			lower = 0
		}
		upper := lower + 2*halfWidth
		if upper < value {
			upper = value
		}

		points[i] = models.ForecastPoint{
			Date:       lastDate.AddDate(0, 0, i+1),
			Predicted:  value,
			LowerBound: lower,
			UpperBound: upper,
		}
	}
	return points
}
