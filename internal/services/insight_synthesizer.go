package services

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/modaflow/retail-insights/internal/models"
)

// insightRule defines how one detection kind is rendered into an insight:
// title and description templates, the recommended actions, the effort and
// the timeline bucket.
type insightRule struct {
	title       func(d Detection) string
	description func(d Detection) string
	actionItems []string
	effort      models.ImplementationEffort
	timeline    string
}

var insightRules = map[string]insightRule{
	DetectionSeriesSpike: {
		title: func(d Detection) string {
			return fmt.Sprintf("Unusual sales spike on %s", d.Subject)
		},
		description: func(d Detection) string {
			return fmt.Sprintf("Daily sales on %s deviated %.1f standard deviations above the trailing mean. Verify the driver and check stock coverage before the effect repeats.", d.Subject, d.Magnitude)
		},
		actionItems: []string{
			"Confirm the spike is organic and not a data import artifact",
			"Check stock levels for the products that drove the spike",
			"Review marketing activity on and before that date",
		},
		effort:   models.EffortLow,
		timeline: models.TimelineImmediate,
	},
	DetectionSeriesDrop: {
		title: func(d Detection) string {
			return fmt.Sprintf("Unusual sales drop on %s", d.Subject)
		},
		description: func(d Detection) string {
			return fmt.Sprintf("Daily sales on %s deviated %.1f standard deviations below the trailing mean. Rule out listing, fulfillment or pricing problems.", d.Subject, d.Magnitude)
		},
		actionItems: []string{
			"Check marketplace listing health for that date",
			"Verify no stockouts occurred on top sellers",
			"Compare against competitor pricing changes",
		},
		effort:   models.EffortLow,
		timeline: models.TimelineImmediate,
	},
	DetectionChannelConcentration: {
		title: func(d Detection) string {
			return fmt.Sprintf("Revenue concentrated on %s", d.Subject)
		},
		description: func(d Detection) string {
			return fmt.Sprintf("%.0f%% of revenue flows through a single marketplace. A policy change or account suspension there would hit most of the business at once; diversifying reduces that exposure.", d.Magnitude*100)
		},
		actionItems: []string{
			"Grow at least one secondary marketplace channel",
			"Evaluate a direct-to-consumer storefront",
			"Document a contingency plan for channel suspension",
		},
		effort:   models.EffortHigh,
		timeline: models.TimelineMediumTerm,
	},
	DetectionLowLTVRatio: {
		title: func(d Detection) string {
			return fmt.Sprintf("Acquisition cost too high for segment %q", d.Subject)
		},
		description: func(d Detection) string {
			return fmt.Sprintf("Segment %q returns only %.2fx its acquisition cost over its lifetime. Either acquisition is too expensive or retention is too short for this segment.", d.Subject, d.Magnitude)
		},
		actionItems: []string{
			"Shift acquisition budget toward higher-LTV segments",
			"Test retention campaigns for this segment",
			"Re-evaluate the channels sourcing this segment",
		},
		effort:   models.EffortMedium,
		timeline: models.TimelineShortTerm,
	},
	DetectionWeakROAS: {
		title: func(d Detection) string {
			return fmt.Sprintf("Ad channel %q underperforming", d.Subject)
		},
		description: func(d Detection) string {
			return fmt.Sprintf("Channel %q returns %.2fx on ad spend, below the configured floor. Budget there is likely better spent elsewhere.", d.Subject, d.Magnitude)
		},
		actionItems: []string{
			"Reduce or pause spend on this channel",
			"Audit targeting and creatives before re-enabling",
			"Reallocate budget to channels above the floor",
		},
		effort:   models.EffortLow,
		timeline: models.TimelineShortTerm,
	},
	DetectionStrongROAS: {
		title: func(d Detection) string {
			return fmt.Sprintf("Ad channel %q ready to scale", d.Subject)
		},
		description: func(d Detection) string {
			return fmt.Sprintf("Channel %q returns %.2fx on ad spend with meaningful volume. Increasing budget here is the most direct growth lever available.", d.Subject, d.Magnitude)
		},
		actionItems: []string{
			"Increase budget in controlled increments",
			"Monitor ROAS for saturation as spend grows",
			"Expand winning creatives to adjacent audiences",
		},
		effort:   models.EffortMedium,
		timeline: models.TimelineShortTerm,
	},
}

// synthesizeInsights converts detections into ranked insight records:
// focus-area filtering, signature deduplication, impact-descending order
// within each category (detection order breaks ties), capped at maxInsights.
// Zero detections yield an empty slice, never fabricated entries.
func synthesizeInsights(detections []Detection, settings models.AnalyticsSettings, maxInsights int) []models.Insight {
	if maxInsights <= 0 {
		maxInsights = settings.MaxInsights
	}
	if maxInsights <= 0 {
		maxInsights = models.DefaultAnalyticsSettings().MaxInsights
	}

	seen := map[string]bool{}
	insights := make([]models.Insight, 0, len(detections))
	for _, d := range detections {
		if !settings.FocusedOn(d.FocusArea) {
			continue
		}
		if seen[d.Signature] {
			continue
		}
		seen[d.Signature] = true

		rule, ok := insightRules[d.Kind]
		if !ok {
			continue
		}

		insights = append(insights, models.Insight{
			ID:                   uuid.NewString(),
			Category:             d.Category,
			Priority:             priorityFor(d.Impact),
			Title:                rule.title(d),
			Description:          rule.description(d),
			Confidence:           clamp(d.Confidence, 0, 100),
			ImpactScore:          clamp(d.Impact, 0, 100),
			Evidence:             d.Facts,
			ActionItems:          rule.actionItems,
			KPIPredictions:       d.KPIDeltas,
			ImplementationEffort: rule.effort,
			Timeline:             rule.timeline,
			FocusArea:            d.FocusArea,
		})
	}

	// The cap keeps the highest-impact insights regardless of category, so
	// rank by impact first and cut, then group by category for
	// presentation. Stable: equal impact scores keep detection order.
	sort.SliceStable(insights, func(i, j int) bool {
		return insights[i].ImpactScore > insights[j].ImpactScore
	})
	if len(insights) > maxInsights {
		insights = insights[:maxInsights]
	}

	sort.SliceStable(insights, func(i, j int) bool {
		if insights[i].Category != insights[j].Category {
			return insights[i].Category < insights[j].Category
		}
		return insights[i].ImpactScore > insights[j].ImpactScore
	})
	return insights
}

func priorityFor(impact float64) models.InsightPriority {
	switch {
	case impact >= 80:
		return models.PriorityHigh
	case impact >= 50:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}
