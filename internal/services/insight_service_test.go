package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modaflow/retail-insights/internal/models"
)

func testInsightService() *InsightService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := testAnalyticsConfig()
	cfg.DefaultSensitivity = "medium"
	cfg.MaxInsights = 10
	return NewInsightService(cfg, logger)
}

// balancedSales spreads each day's revenue evenly across two marketplaces
// so the concentration detector has nothing to flag.
func balancedSales(days int, dailyRevenue float64) []models.SalesRecord {
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	var sales []models.SalesRecord
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)
		sales = append(sales,
			salesFor(day, "zalando", dailyRevenue/2),
			salesFor(day, "aboutyou", dailyRevenue/2),
		)
	}
	return sales
}

func TestComputeInsights_SalesSpikeSurfaced(t *testing.T) {
	svc := testInsightService()

	sales := balancedSales(30, 100)
	// Quadruple day 20 on both channels
	spikeDay := time.Date(2026, 2, 21, 0, 0, 0, 0, time.UTC)
	sales = append(sales,
		salesFor(spikeDay, "zalando", 150),
		salesFor(spikeDay, "aboutyou", 150),
	)

	insights, err := svc.ComputeInsights(context.Background(), models.BusinessDataBundle{Sales: sales}, models.AnalyticsSettings{})
	require.NoError(t, err)
	require.Len(t, insights, 1)

	in := insights[0]
	assert.Equal(t, models.CategoryAnomaly, in.Category)
	assert.Equal(t, FocusSales, in.FocusArea)
	assert.Contains(t, in.Title, "spike")
	assert.Contains(t, in.Title, "2026-02-21")
	assert.NotEmpty(t, in.Evidence)
}

func TestComputeInsights_HealthyBusinessIsQuiet(t *testing.T) {
	svc := testInsightService()

	bundle := models.BusinessDataBundle{
		Sales: balancedSales(30, 100),
		Advertising: []models.AdvertisingRecord{
			adChannel("google", 1000, 3000), // ROAS 3.0, between floor and scale target
			adChannel("meta", 1000, 2500),   // ROAS 2.5
		},
		Customers: []models.CustomerRecord{
			customerSegment("returning", 500, 300, 50), // ratio 6.0
		},
	}

	insights, err := svc.ComputeInsights(context.Background(), bundle, models.AnalyticsSettings{})
	require.NoError(t, err)
	assert.Empty(t, insights, "no signals means no insights, never filler")
}

func TestComputeInsights_MultiDimensionRanking(t *testing.T) {
	svc := testInsightService()

	day := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	bundle := models.BusinessDataBundle{
		Sales: []models.SalesRecord{
			salesFor(day, "zalando", 9000),
			salesFor(day, "aboutyou", 1000),
		},
		Advertising: []models.AdvertisingRecord{
			adChannel("meta", 1000, 1200), // ROAS 1.2, weak
		},
		Customers: []models.CustomerRecord{
			customerSegment("new", 600, 80, 40), // ratio 2.0
		},
	}

	insights, err := svc.ComputeInsights(context.Background(), bundle, models.AnalyticsSettings{})
	require.NoError(t, err)
	require.Len(t, insights, 3)

	categories := make(map[models.InsightCategory]int)
	for _, in := range insights {
		categories[in.Category]++
	}
	assert.Equal(t, 1, categories[models.CategoryRisk])
	assert.Equal(t, 2, categories[models.CategoryOptimization])

	// Within the optimization category higher impact comes first
	var optimizations []models.Insight
	for _, in := range insights {
		if in.Category == models.CategoryOptimization {
			optimizations = append(optimizations, in)
		}
	}
	require.Len(t, optimizations, 2)
	assert.GreaterOrEqual(t, optimizations[0].ImpactScore, optimizations[1].ImpactScore)
}

func TestComputeInsights_FocusAreaFilter(t *testing.T) {
	svc := testInsightService()

	day := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	bundle := models.BusinessDataBundle{
		Sales: []models.SalesRecord{
			salesFor(day, "zalando", 9000),
			salesFor(day, "aboutyou", 1000),
		},
		Advertising: []models.AdvertisingRecord{
			adChannel("meta", 1000, 1200),
		},
	}

	insights, err := svc.ComputeInsights(context.Background(), bundle,
		models.AnalyticsSettings{FocusAreas: []string{FocusAdvertising}})
	require.NoError(t, err)
	require.Len(t, insights, 1)
	assert.Equal(t, FocusAdvertising, insights[0].FocusArea)
}

func TestComputeInsights_MaxInsightsFromSettings(t *testing.T) {
	svc := testInsightService()

	var ads []models.AdvertisingRecord
	for _, ch := range []string{"a", "b", "c", "d", "e"} {
		ads = append(ads, adChannel(ch, 1000, 500))
	}

	insights, err := svc.ComputeInsights(context.Background(),
		models.BusinessDataBundle{Advertising: ads},
		models.AnalyticsSettings{MaxInsights: 2})
	require.NoError(t, err)
	assert.Len(t, insights, 2)
}

func TestComputeInsights_ThresholdOverride(t *testing.T) {
	svc := testInsightService()

	day := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	bundle := models.BusinessDataBundle{
		Sales: []models.SalesRecord{
			salesFor(day, "zalando", 6000),
			salesFor(day, "aboutyou", 4000),
		},
	}

	// 60% share passes the default 70% threshold
	insights, err := svc.ComputeInsights(context.Background(), bundle, models.AnalyticsSettings{})
	require.NoError(t, err)
	assert.Empty(t, insights)

	// Tightening the threshold to 50% flags it
	insights, err = svc.ComputeInsights(context.Background(), bundle, models.AnalyticsSettings{
		Thresholds: map[string]float64{models.ThresholdChannelConcentration: 0.50},
	})
	require.NoError(t, err)
	require.Len(t, insights, 1)
	assert.Contains(t, insights[0].Title, "zalando")
}

func TestComputeInsights_SparseHistoryStaysQuiet(t *testing.T) {
	svc := testInsightService()

	// Three days of sales: below the normalizer minimum, so the series
	// detectors are silenced rather than failing the call.
	bundle := models.BusinessDataBundle{Sales: balancedSales(3, 100)}

	insights, err := svc.ComputeInsights(context.Background(), bundle, models.AnalyticsSettings{})
	require.NoError(t, err)
	assert.Empty(t, insights)
}

func TestComputeInsights_CancelledContext(t *testing.T) {
	svc := testInsightService()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.ComputeInsights(ctx, models.BusinessDataBundle{}, models.AnalyticsSettings{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestComputeInsights_Deterministic(t *testing.T) {
	svc := testInsightService()

	day := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	bundle := models.BusinessDataBundle{
		Sales: []models.SalesRecord{
			salesFor(day, "zalando", 9000),
			salesFor(day, "aboutyou", 1000),
		},
		Advertising: []models.AdvertisingRecord{
			adChannel("meta", 1000, 1200),
		},
	}

	first, err := svc.ComputeInsights(context.Background(), bundle, models.AnalyticsSettings{})
	require.NoError(t, err)
	second, err := svc.ComputeInsights(context.Background(), bundle, models.AnalyticsSettings{})
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		// IDs are freshly minted per call; everything else is stable
		assert.Equal(t, first[i].Title, second[i].Title)
		assert.Equal(t, first[i].Category, second[i].Category)
		assert.Equal(t, first[i].ImpactScore, second[i].ImpactScore)
		assert.Equal(t, first[i].Priority, second[i].Priority)
	}
}
