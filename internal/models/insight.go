package models

// InsightCategory classifies what kind of recommendation an insight carries.
type InsightCategory string

const (
	CategoryOpportunity  InsightCategory = "opportunity"
	CategoryRisk         InsightCategory = "risk"
	CategoryOptimization InsightCategory = "optimization"
	CategoryGrowth       InsightCategory = "growth"
	CategoryAnomaly      InsightCategory = "anomaly"
)

// InsightPriority is derived from the insight's impact score.
type InsightPriority string

const (
	PriorityHigh   InsightPriority = "high"
	PriorityMedium InsightPriority = "medium"
	PriorityLow    InsightPriority = "low"
)

// ImplementationEffort estimates how much work acting on an insight takes.
type ImplementationEffort string

const (
	EffortLow    ImplementationEffort = "low"
	EffortMedium ImplementationEffort = "medium"
	EffortHigh   ImplementationEffort = "high"
)

// Timeline buckets for when an insight should be acted on.
const (
	TimelineImmediate  = "immediate"
	TimelineShortTerm  = "short_term"
	TimelineMediumTerm = "medium_term"
	TimelineLongTerm   = "long_term"
)

// Insight is a structured, ranked recommendation produced from a detected
// signal. Every insight traces back to a concrete detection; none are
// fabricated.
type Insight struct {
	ID                   string               `json:"id"`
	Category             InsightCategory      `json:"category"`
	Priority             InsightPriority      `json:"priority"`
	Title                string               `json:"title"`
	Description          string               `json:"description"`
	Confidence           float64              `json:"confidence"`
	ImpactScore          float64              `json:"impact_score"`
	Evidence             []string             `json:"evidence"`
	ActionItems          []string             `json:"action_items"`
	KPIPredictions       map[string]float64   `json:"kpi_predictions"`
	ImplementationEffort ImplementationEffort `json:"implementation_effort"`
	Timeline             string               `json:"timeline"`
	FocusArea            string               `json:"focus_area"`
}

// Sensitivity controls how aggressively the anomaly detector flags
// deviations. Low is the strictest cutoff, high the most permissive.
type Sensitivity string

const (
	SensitivityLow    Sensitivity = "low"
	SensitivityMedium Sensitivity = "medium"
	SensitivityHigh   Sensitivity = "high"
)

// ZThreshold maps the sensitivity dial to a z-score cutoff.
func (s Sensitivity) ZThreshold() float64 {
	switch s {
	case SensitivityLow:
		return 3.0
	case SensitivityHigh:
		return 1.5
	default:
		return 2.0
	}
}

// Named threshold keys understood by the insight engine. Values can be
// overridden per call through AnalyticsSettings.Thresholds.
const (
	ThresholdChannelConcentration = "channel_concentration"
	ThresholdLTVCACFloor          = "ltv_cac_floor"
	ThresholdROASFloor            = "roas_floor"
	ThresholdROASScaleTarget      = "roas_scale_target"
	ThresholdAnomalyWindow        = "anomaly_window"
)

// AnalyticsSettings is the caller-supplied configuration for a single
// insight computation. The engine never mutates it.
type AnalyticsSettings struct {
	Sensitivity Sensitivity        `json:"sensitivity"`
	FocusAreas  []string           `json:"focus_areas"`
	Thresholds  map[string]float64 `json:"thresholds"`
	MaxInsights int                `json:"max_insights"`
}

// DefaultAnalyticsSettings returns the engine defaults: medium sensitivity,
// all focus areas, and the named benchmark thresholds.
func DefaultAnalyticsSettings() AnalyticsSettings {
	return AnalyticsSettings{
		Sensitivity: SensitivityMedium,
		Thresholds: map[string]float64{
			ThresholdChannelConcentration: 0.70,
			ThresholdLTVCACFloor:          3.0,
			ThresholdROASFloor:            2.0,
			ThresholdROASScaleTarget:      4.0,
			ThresholdAnomalyWindow:        7,
		},
		MaxInsights: 10,
	}
}

// Threshold looks up a named cutoff, falling back to the engine default
// when the caller did not override it.
func (s AnalyticsSettings) Threshold(name string) float64 {
	if v, ok := s.Thresholds[name]; ok {
		return v
	}
	return DefaultAnalyticsSettings().Thresholds[name]
}

// FocusedOn reports whether the given focus area passes the caller's
// filter. An empty filter admits every area.
func (s AnalyticsSettings) FocusedOn(area string) bool {
	if len(s.FocusAreas) == 0 {
		return true
	}
	for _, a := range s.FocusAreas {
		if a == area {
			return true
		}
	}
	return false
}
