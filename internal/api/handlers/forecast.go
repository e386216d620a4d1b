package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/modaflow/retail-insights/internal/config"
	"github.com/modaflow/retail-insights/internal/models"
	"github.com/modaflow/retail-insights/internal/services"
	"github.com/modaflow/retail-insights/internal/utils"
)

// SeriesLoader is the data-fetch collaborator producing raw daily records.
type SeriesLoader interface {
	LoadMetricSeries(ctx context.Context, lookbackDays int) ([]models.RawRecord, error)
}

// Forecaster is the forecast engine entry point.
type Forecaster interface {
	ComputeForecast(ctx context.Context, series []models.HistoricalPoint, horizonDays int) (*models.ForecastResult, error)
}

// ForecastCache holds recently computed snapshots keyed by metric and
// horizon. The snapshot carries the normalized history alongside the
// result, so cached and fresh responses are identical in shape.
type ForecastCache interface {
	Get(ctx context.Context, metric models.Metric, horizonDays int) (*models.ForecastSnapshot, bool)
	Set(ctx context.Context, metric models.Metric, horizonDays int, snapshot *models.ForecastSnapshot)
}

type ForecastHandler struct {
	repo       SeriesLoader
	forecaster Forecaster
	cache      ForecastCache
	cfg        config.AnalyticsConfig
	logger     *slog.Logger
}

// ForecastResponse is the transport shape the dashboard charts consume.
type ForecastResponse struct {
	HistoricalData []models.HistoricalPoint `json:"historical_data"`
	ForecastData   []models.ForecastPoint   `json:"forecast_data"`
	ModelAccuracy  models.AccuracyMetrics   `json:"model_accuracy"`
	Parameters     ForecastParameters       `json:"parameters"`
}

// ForecastParameters echoes what was computed and how.
type ForecastParameters struct {
	Metric          string                   `json:"metric"`
	HorizonDays     int                      `json:"horizon_days"`
	BestModel       string                   `json:"best_model"`
	ModelComparison []models.ModelComparison `json:"model_comparison"`
	SkippedRecords  int                      `json:"skipped_records"`
	Cached          bool                     `json:"cached"`
	GeneratedAt     time.Time                `json:"generated_at"`
}

func NewForecastHandler(repo SeriesLoader, forecaster Forecaster, cache ForecastCache, cfg config.AnalyticsConfig, logger *slog.Logger) *ForecastHandler {
	return &ForecastHandler{
		repo:       repo,
		forecaster: forecaster,
		cache:      cache,
		cfg:        cfg,
		logger:     logger,
	}
}

// GetForecast computes (or serves from cache) the forecast for one metric.
func (h *ForecastHandler) GetForecast(c *gin.Context) {
	metric := models.Metric(c.Param("metric"))
	if !metric.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown metric: " + string(metric)})
		return
	}

	horizonDays, err := strconv.Atoi(c.DefaultQuery("horizon", "30"))
	if err != nil || horizonDays <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "horizon must be a positive integer"})
		return
	}

	ctx := c.Request.Context()

	if h.cache != nil {
		if cached, ok := h.cache.Get(ctx, metric, horizonDays); ok {
			c.JSON(http.StatusOK, h.buildResponse(metric, &cached.Result, cached.History, cached.Skipped, true))
			return
		}
	}

	records, err := h.repo.LoadMetricSeries(ctx, h.cfg.LookbackDays)
	if err != nil {
		h.logger.Error("failed to load metric series", "metric", string(metric), "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load historical data"})
		return
	}

	normalized, err := services.NormalizeSeries(records, metric)
	if err != nil {
		h.writeEngineError(c, err)
		return
	}

	result, err := h.forecaster.ComputeForecast(ctx, normalized.Points, horizonDays)
	if err != nil {
		h.writeEngineError(c, err)
		return
	}

	if h.cache != nil {
		h.cache.Set(ctx, metric, horizonDays, &models.ForecastSnapshot{
			Result:  *result,
			History: normalized.Points,
			Skipped: normalized.Skipped,
		})
	}

	c.JSON(http.StatusOK, h.buildResponse(metric, result, normalized.Points, normalized.Skipped, false))
}

func (h *ForecastHandler) buildResponse(metric models.Metric, result *models.ForecastResult, history []models.HistoricalPoint, skipped int, cached bool) ForecastResponse {
	return ForecastResponse{
		HistoricalData: history,
		ForecastData:   result.Forecasts,
		ModelAccuracy:  result.Metrics,
		Parameters: ForecastParameters{
			Metric:          string(metric),
			HorizonDays:     result.HorizonDays,
			BestModel:       result.BestModel,
			ModelComparison: result.ModelComparison,
			SkippedRecords:  skipped,
			Cached:          cached,
			GeneratedAt:     time.Now().UTC(),
		},
	}
}

// writeEngineError maps the engine's error taxonomy onto HTTP statuses:
// the two fatal analytical errors are 422 (the dashboard shows a neutral
// empty state), bad input is 400.
func (h *ForecastHandler) writeEngineError(c *gin.Context, err error) {
	var insufficient *utils.InsufficientDataError
	var noModel *utils.NoViableModelError
	var validation *utils.ValidationError

	switch {
	case errors.As(err, &insufficient), errors.As(err, &noModel):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("forecast computation failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "forecast computation failed"})
	}
}
