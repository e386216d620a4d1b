package services

import (
	"time"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
	"gonum.org/v1/gonum/stat"

	"github.com/modaflow/retail-insights/internal/models"
	"github.com/modaflow/retail-insights/internal/utils"
)

// ForecastModel is one deterministic forecasting strategy. Given a
// normalized series it predicts one unbounded value per future day;
// confidence bounds are attached later by the selector pipeline.
type ForecastModel interface {
	Name() string
	Forecast(series []models.HistoricalPoint, horizon int) ([]float64, error)
}

// DefaultEnsemble returns the fixed, ordered candidate set. Adding a
// strategy here is the only change needed for it to be backtested and
// selectable.
func DefaultEnsemble() []ForecastModel {
	return []ForecastModel{
		&naiveModel{},
		&linearTrendModel{},
		&seasonalMovingAverageModel{window: 7},
		&expSmoothingModel{period: 5},
	}
}

func validateForecastInput(series []models.HistoricalPoint, horizon int) error {
	if len(series) == 0 {
		return utils.NewValidationError("series is empty")
	}
	if horizon <= 0 {
		return utils.NewValidationErrorf("horizon must be positive, got %d", horizon)
	}
	return nil
}

// naiveModel repeats a short trailing average across the horizon.
type naiveModel struct{}

func (m *naiveModel) Name() string { return "naive" }

func (m *naiveModel) Forecast(series []models.HistoricalPoint, horizon int) ([]float64, error) {
	if err := validateForecastInput(series, horizon); err != nil {
		return nil, err
	}
	values := seriesValues(series)
	tail := 3
	if len(values) < tail {
		tail = len(values)
	}
	level := meanOf(values[len(values)-tail:])

	out := make([]float64, horizon)
	for i := range out {
		out[i] = level
	}
	return out, nil
}

// linearTrendModel fits a least-squares line over the full series and
// extrapolates it.
type linearTrendModel struct{}

func (m *linearTrendModel) Name() string { return "linear_trend" }

func (m *linearTrendModel) Forecast(series []models.HistoricalPoint, horizon int) ([]float64, error) {
	if err := validateForecastInput(series, horizon); err != nil {
		return nil, err
	}
	values := seriesValues(series)
	if len(values) < 2 {
		return nil, utils.NewValidationError("linear trend requires at least two points")
	}

	xs := make([]float64, len(values))
	for i := range xs {
		xs[i] = float64(i)
	}
	alpha, beta := stat.LinearRegression(xs, values, nil, false)

	out := make([]float64, horizon)
	last := float64(len(values) - 1)
	for h := 1; h <= horizon; h++ {
		out[h-1] = sanitize(alpha + beta*(last+float64(h)))
	}
	return out, nil
}

// seasonalMovingAverageModel projects the trailing moving average forward,
// reapplying weekly seasonality when enough history exists to estimate it.
type seasonalMovingAverageModel struct {
	window int
}

func (m *seasonalMovingAverageModel) Name() string { return "seasonal_ma" }

func (m *seasonalMovingAverageModel) Forecast(series []models.HistoricalPoint, horizon int) ([]float64, error) {
	if err := validateForecastInput(series, horizon); err != nil {
		return nil, err
	}
	values := seriesValues(series)

	base := meanOf(values)
	if len(values) >= m.window {
		sma := trend.NewSmaWithPeriod[float64](m.window)
		smoothed := helper.ChanToSlice(sma.Compute(helper.SliceToChan(values)))
		if len(smoothed) > 0 {
			base = smoothed[len(smoothed)-1]
		}
	}

	factors := weeklyFactors(series)
	lastDate := series[len(series)-1].Date

	out := make([]float64, horizon)
	for h := 1; h <= horizon; h++ {
		weekday := lastDate.AddDate(0, 0, h).Weekday()
		out[h-1] = sanitize(base * factors[weekday])
	}
	return out, nil
}

// weeklyFactors estimates a multiplicative factor per weekday. With less
// than two full weeks of history the factors stay flat at 1.
func weeklyFactors(series []models.HistoricalPoint) map[time.Weekday]float64 {
	factors := map[time.Weekday]float64{}
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		factors[wd] = 1
	}
	if len(series) < 14 {
		return factors
	}

	overall := meanOf(seriesValues(series))
	if overall < epsilon {
		return factors
	}

	byWeekday := map[time.Weekday][]float64{}
	for _, p := range series {
		wd := p.Date.Weekday()
		byWeekday[wd] = append(byWeekday[wd], p.Value)
	}
	for wd, vals := range byWeekday {
		if len(vals) == 0 {
			continue
		}
		factors[wd] = sanitize(meanOf(vals) / overall)
	}
	return factors
}

// expSmoothingModel holds the recency-weighted level of the series flat
// across the horizon.
type expSmoothingModel struct {
	period int
}

func (m *expSmoothingModel) Name() string { return "exp_smoothing" }

func (m *expSmoothingModel) Forecast(series []models.HistoricalPoint, horizon int) ([]float64, error) {
	if err := validateForecastInput(series, horizon); err != nil {
		return nil, err
	}
	values := seriesValues(series)

	level := meanOf(values)
	if len(values) >= m.period {
		ema := trend.NewEmaWithPeriod[float64](m.period)
		smoothed := helper.ChanToSlice(ema.Compute(helper.SliceToChan(values)))
		if len(smoothed) > 0 {
			level = smoothed[len(smoothed)-1]
		}
	}

	out := make([]float64, horizon)
	for i := range out {
		out[i] = sanitize(level)
	}
	return out, nil
}
