package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/modaflow/retail-insights/internal/config"
	"github.com/modaflow/retail-insights/internal/models"
)

// SnapshotLoader is the data-fetch collaborator producing the business
// bundle the insight engine scans.
type SnapshotLoader interface {
	LoadBusinessSnapshot(ctx context.Context, lookbackDays int) (*models.BusinessDataBundle, error)
}

// InsightComputer is the insight engine entry point.
type InsightComputer interface {
	ComputeInsights(ctx context.Context, bundle models.BusinessDataBundle, settings models.AnalyticsSettings) ([]models.Insight, error)
}

type InsightsHandler struct {
	repo     SnapshotLoader
	computer InsightComputer
	cfg      config.AnalyticsConfig
	logger   *slog.Logger
}

// InsightsResponse is the ranked insight list plus request metadata.
type InsightsResponse struct {
	Insights    []models.Insight `json:"insights"`
	Count       int              `json:"count"`
	Sensitivity string           `json:"sensitivity"`
	GeneratedAt time.Time        `json:"generated_at"`
}

func NewInsightsHandler(repo SnapshotLoader, computer InsightComputer, cfg config.AnalyticsConfig, logger *slog.Logger) *InsightsHandler {
	return &InsightsHandler{
		repo:     repo,
		computer: computer,
		cfg:      cfg,
		logger:   logger,
	}
}

// GetInsights loads the business snapshot and returns the ranked insights
// for the caller's sensitivity and focus-area filter.
func (h *InsightsHandler) GetInsights(c *gin.Context) {
	settings := models.DefaultAnalyticsSettings()
	settings.MaxInsights = h.cfg.MaxInsights

	if raw := c.Query("sensitivity"); raw != "" {
		switch models.Sensitivity(raw) {
		case models.SensitivityLow, models.SensitivityMedium, models.SensitivityHigh:
			settings.Sensitivity = models.Sensitivity(raw)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "sensitivity must be low, medium or high"})
			return
		}
	}

	if raw := c.Query("focus"); raw != "" {
		settings.FocusAreas = strings.Split(raw, ",")
	}

	if raw := c.Query("max"); raw != "" {
		max, err := strconv.Atoi(raw)
		if err != nil || max <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "max must be a positive integer"})
			return
		}
		settings.MaxInsights = max
	}

	ctx := c.Request.Context()

	bundle, err := h.repo.LoadBusinessSnapshot(ctx, h.cfg.LookbackDays)
	if err != nil {
		h.logger.Error("failed to load business snapshot", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load business data"})
		return
	}

	insights, err := h.computer.ComputeInsights(ctx, *bundle, settings)
	if err != nil {
		h.logger.Error("insight computation failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "insight computation failed"})
		return
	}

	c.JSON(http.StatusOK, InsightsResponse{
		Insights:    insights,
		Count:       len(insights),
		Sensitivity: string(settings.Sensitivity),
		GeneratedAt: time.Now().UTC(),
	})
}
