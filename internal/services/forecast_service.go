package services

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/modaflow/retail-insights/internal/config"
	"github.com/modaflow/retail-insights/internal/models"
	"github.com/modaflow/retail-insights/internal/utils"
)

// ForecastService turns a normalized daily series into a multi-period
// forecast with uncertainty bounds and accuracy metrics. Every invocation
// is a pure computation over the supplied snapshot: the service holds no
// mutable state and is safe for concurrent use.
type ForecastService struct {
	ensemble []ForecastModel
	cfg      config.AnalyticsConfig
	logger   *slog.Logger
}

// NewForecastService creates a forecast service backed by the default
// model ensemble.
func NewForecastService(cfg config.AnalyticsConfig, logger *slog.Logger) *ForecastService {
	return &ForecastService{
		ensemble: DefaultEnsemble(),
		cfg:      cfg,
		logger:   logger,
	}
}

// ComputeForecast backtests every ensemble candidate against held-out
// recent history, selects the best one, and returns its forecast over the
// requested horizon with confidence bands attached.
//
// Fatal errors are limited to InsufficientDataError (series below the
// minimum history) and NoViableModelError (every candidate failed); all
// other anomalies are absorbed into lowered confidence.
func (s *ForecastService) ComputeForecast(ctx context.Context, series []models.HistoricalPoint, horizonDays int) (*models.ForecastResult, error) {
	minHistory := s.cfg.MinHistoryDays
	if minHistory <= 0 {
		minHistory = MinHistoryDays
	}
	if len(series) < minHistory {
		return nil, utils.NewInsufficientDataError(minHistory, len(series))
	}
	if horizonDays <= 0 {
		return nil, utils.NewValidationErrorf("horizon must be positive, got %d", horizonDays)
	}
	if max := s.cfg.MaxHorizonDays; max > 0 && horizonDays > max {
		return nil, utils.NewValidationErrorf("horizon %d exceeds maximum of %d days", horizonDays, max)
	}

	train, holdout, err := splitBacktest(series, s.cfg.BacktestFraction, s.cfg.MinHoldoutPoints)
	if err != nil {
		return nil, err
	}

	// Candidates are independent pure functions of (train, holdout), so
	// they backtest concurrently. Each goroutine writes only its own slot.
	outcomes := make([]backtestOutcome, len(s.ensemble))
	g, _ := errgroup.WithContext(ctx)
	for i := range s.ensemble {
		g.Go(func() error {
			outcomes[i] = runBacktest(s.ensemble[i], train, holdout)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, o := range outcomes {
		if o.err != nil {
			s.logger.Debug("forecast candidate dropped",
				"model", o.model.Name(), "error", o.err.Error())
		}
	}

	sel, err := selectBestModel(outcomes)
	if err != nil {
		return nil, err
	}

	predicted, err := sel.winner.model.Forecast(series, horizonDays)
	if err != nil {
		// The winner scored on the training split but failed on the full
		// series; nothing better is available.
		return nil, utils.NewNoViableModelError(err.Error())
	}

	metrics := sel.winner.metrics
	metrics.QualityScore = qualityScore(metrics, sel.winner.holdoutMean)
	metrics.Confidence = confidenceScore(metrics.QualityScore, len(series), s.cfg.FullConfidenceDays)

	lastDate := series[len(series)-1].Date
	forecasts := applyConfidenceBands(lastDate, predicted, sel.winner.residualStdDev, s.cfg.ConfidenceZ, true)

	s.logger.Info("forecast computed",
		"best_model", sel.winner.model.Name(),
		"horizon_days", horizonDays,
		"history_days", len(series),
		"mape", metrics.MAPE,
		"quality_score", metrics.QualityScore,
	)

	return &models.ForecastResult{
		Forecasts:       forecasts,
		Metrics:         metrics,
		BestModel:       sel.winner.model.Name(),
		ModelComparison: sel.comparison,
		HorizonDays:     horizonDays,
	}, nil
}
