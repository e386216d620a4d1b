package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/modaflow/retail-insights/internal/config"
	"github.com/modaflow/retail-insights/internal/models"
	"github.com/modaflow/retail-insights/internal/utils"
)

// InsightService scans a business data snapshot for statistically notable
// signals and converts them into ranked, structured insights. Stateless;
// every call is a pure computation over its inputs.
type InsightService struct {
	cfg    config.AnalyticsConfig
	logger *slog.Logger
}

// NewInsightService creates an insight service.
func NewInsightService(cfg config.AnalyticsConfig, logger *slog.Logger) *InsightService {
	return &InsightService{cfg: cfg, logger: logger}
}

// ComputeInsights runs every detector over the bundle and synthesizes the
// results. A sparse or missing dimension silences its detectors, it never
// fails the call: with zero signals the result is simply empty.
func (s *InsightService) ComputeInsights(ctx context.Context, bundle models.BusinessDataBundle, settings models.AnalyticsSettings) ([]models.Insight, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	settings = s.applyDefaults(settings)

	var detections []Detection

	detections = append(detections, s.seriesDetections(bundle, settings)...)
	detections = append(detections, detectChannelConcentration(
		bundle.Sales, settings.Threshold(models.ThresholdChannelConcentration))...)
	detections = append(detections, detectCustomerValueGaps(
		bundle.Customers, settings.Threshold(models.ThresholdLTVCACFloor))...)
	detections = append(detections, detectAdvertisingEfficiency(
		bundle.Advertising,
		settings.Threshold(models.ThresholdROASFloor),
		settings.Threshold(models.ThresholdROASScaleTarget))...)

	insights := synthesizeInsights(detections, settings, settings.MaxInsights)

	s.logger.Info("insights computed",
		"detections", len(detections),
		"insights", len(insights),
		"sensitivity", string(settings.Sensitivity),
	)
	return insights, nil
}

// seriesDetections normalizes the sales dimension into a daily revenue
// series and scans it for anomalies. Too little history to normalize is
// not an error here; the series detectors just stay silent.
func (s *InsightService) seriesDetections(bundle models.BusinessDataBundle, settings models.AnalyticsSettings) []Detection {
	if len(bundle.Sales) == 0 {
		return nil
	}

	normalized, err := NormalizeSeries(SalesToRawRecords(bundle.Sales), models.MetricRevenue)
	if err != nil {
		var insufficient *utils.InsufficientDataError
		if !errors.As(err, &insufficient) {
			s.logger.Warn("sales series normalization failed", "error", err.Error())
		}
		return nil
	}
	if normalized.Skipped > 0 {
		s.logger.Debug("sales records skipped during normalization", "skipped", normalized.Skipped)
	}

	window := int(settings.Threshold(models.ThresholdAnomalyWindow))
	return detectSeriesAnomalies(normalized.Points, settings.Sensitivity, window)
}

func (s *InsightService) applyDefaults(settings models.AnalyticsSettings) models.AnalyticsSettings {
	if settings.Sensitivity == "" {
		if s.cfg.DefaultSensitivity != "" {
			settings.Sensitivity = models.Sensitivity(s.cfg.DefaultSensitivity)
		} else {
			settings.Sensitivity = models.SensitivityMedium
		}
	}
	if settings.MaxInsights <= 0 {
		settings.MaxInsights = s.cfg.MaxInsights
	}
	return settings
}
