package services

import (
	"fmt"
	"math"
	"sort"

	"github.com/modaflow/retail-insights/internal/models"
)

// Focus area tags detections are filed under.
const (
	FocusSales       = "sales"
	FocusMarketplace = "marketplace"
	FocusCustomers   = "customers"
	FocusAdvertising = "advertising"
)

// Detection kinds, used as the key into the insight rule table.
const (
	DetectionSeriesSpike          = "series_spike"
	DetectionSeriesDrop           = "series_drop"
	DetectionChannelConcentration = "channel_concentration"
	DetectionLowLTVRatio          = "low_ltv_ratio"
	DetectionWeakROAS             = "weak_roas"
	DetectionStrongROAS           = "strong_roas"
)

// Detection is one statistically notable deviation found in the series or
// an auxiliary business dimension. Confidence comes from the magnitude of
// the deviation, impact from the affected metric's share of total volume.
type Detection struct {
	Kind       string
	Category   models.InsightCategory
	FocusArea  string
	Signature  string
	Subject    string
	Magnitude  float64
	Confidence float64
	Impact     float64
	Facts      []string
	KPIDeltas  map[string]float64
}

// detectSeriesAnomalies scans the normalized series with a rolling
// mean/stddev window and flags points whose z-score magnitude exceeds the
// sensitivity cutoff.
func detectSeriesAnomalies(points []models.HistoricalPoint, sensitivity models.Sensitivity, window int) []Detection {
	if window < 2 {
		window = 7
	}
	if len(points) <= window {
		return nil
	}

	values := seriesValues(points)
	means, stds := rollingStats(values, window)
	threshold := sensitivity.ZThreshold()

	var detections []Detection
	for i := window; i < len(points); i++ {
		if math.IsNaN(means[i]) {
			continue
		}
		// A flat trailing window has no variance of its own; a relative
		// floor keeps a genuine jump off a stable baseline detectable.
		std := math.Max(stds[i], means[i]*0.1)
		if std < epsilon {
			continue
		}
		z := (values[i] - means[i]) / std
		if math.Abs(z) < threshold {
			continue
		}

		kind := DetectionSeriesSpike
		direction := "above"
		if z < 0 {
			kind = DetectionSeriesDrop
			direction = "below"
		}

		deviation := math.Abs(values[i]-means[i]) / math.Max(means[i], epsilon)
		day := points[i].Date.Format("2006-01-02")
		detections = append(detections, Detection{
			Kind:       kind,
			Category:   models.CategoryAnomaly,
			FocusArea:  FocusSales,
			Signature:  fmt.Sprintf("%s:%s", kind, day),
			Subject:    day,
			Magnitude:  math.Abs(z),
			Confidence: clamp(math.Abs(z)*25, 0, 100),
			Impact:     clamp(deviation*25, 0, 100),
			Facts: []string{
				fmt.Sprintf("value %.2f on %s is %.1f standard deviations %s the trailing %d-day mean of %.2f",
					values[i], day, math.Abs(z), direction, window, means[i]),
				fmt.Sprintf("deviation of %.0f%% from the trailing mean", deviation*100),
			},
			KPIDeltas: map[string]float64{"daily_deviation_pct": deviation * 100},
		})
	}
	return detections
}

// detectChannelConcentration flags a single marketplace carrying more than
// the configured share of total revenue.
func detectChannelConcentration(sales []models.SalesRecord, threshold float64) []Detection {
	if len(sales) == 0 {
		return nil
	}

	byChannel := map[string]float64{}
	total := 0.0
	for _, s := range sales {
		revenue, _ := s.Revenue.Float64()
		byChannel[s.Marketplace] += revenue
		total += revenue
	}
	if total < epsilon {
		return nil
	}

	channels := make([]string, 0, len(byChannel))
	for ch := range byChannel {
		channels = append(channels, ch)
	}
	sort.Strings(channels)

	var detections []Detection
	for _, ch := range channels {
		share := byChannel[ch] / total
		if share < threshold {
			continue
		}
		detections = append(detections, Detection{
			Kind:       DetectionChannelConcentration,
			Category:   models.CategoryRisk,
			FocusArea:  FocusMarketplace,
			Signature:  fmt.Sprintf("%s:%s", DetectionChannelConcentration, ch),
			Subject:    ch,
			Magnitude:  share,
			Confidence: clamp(50+share*50, 0, 100),
			Impact:     clamp(share*100, 0, 100),
			Facts: []string{
				fmt.Sprintf("%s contributes %.0f%% of total revenue", ch, share*100),
				fmt.Sprintf("concentration threshold is %.0f%%", threshold*100),
			},
			KPIDeltas: map[string]float64{"revenue_share_pct": share * 100},
		})
	}
	return detections
}

// detectCustomerValueGaps flags customer segments whose lifetime value to
// acquisition cost ratio sits below the configured floor.
func detectCustomerValueGaps(customers []models.CustomerRecord, floor float64) []Detection {
	totalCustomers := 0
	for _, c := range customers {
		totalCustomers += c.Count
	}
	if totalCustomers == 0 {
		return nil
	}

	var detections []Detection
	for _, c := range customers {
		cac, _ := c.AcquisitionCost.Float64()
		ltv, _ := c.LifetimeValue.Float64()
		if cac < epsilon {
			continue
		}
		ratio := ltv / cac
		if ratio >= floor {
			continue
		}

		segmentShare := float64(c.Count) / float64(totalCustomers)
		detections = append(detections, Detection{
			Kind:       DetectionLowLTVRatio,
			Category:   models.CategoryOptimization,
			FocusArea:  FocusCustomers,
			Signature:  fmt.Sprintf("%s:%s", DetectionLowLTVRatio, c.Segment),
			Subject:    c.Segment,
			Magnitude:  ratio,
			Confidence: clamp((floor-ratio)/floor*100+30, 0, 100),
			Impact:     clamp(segmentShare*100+(floor-ratio)*10, 0, 100),
			Facts: []string{
				fmt.Sprintf("segment %q has LTV/CAC ratio of %.2f, below the %.1f floor", c.Segment, ratio, floor),
				fmt.Sprintf("segment holds %.0f%% of the customer base", segmentShare*100),
			},
			KPIDeltas: map[string]float64{"ltv_cac_ratio": ratio},
		})
	}
	return detections
}

// detectAdvertisingEfficiency flags channels with weak return on ad spend
// as optimizations, and channels well above the scale target as growth
// opportunities.
func detectAdvertisingEfficiency(ads []models.AdvertisingRecord, roasFloor, scaleTarget float64) []Detection {
	type channelAgg struct {
		spend   float64
		revenue float64
	}
	byChannel := map[string]*channelAgg{}
	totalSpend := 0.0
	for _, a := range ads {
		spend, _ := a.Spend.Float64()
		revenue, _ := a.Revenue.Float64()
		agg, ok := byChannel[a.Channel]
		if !ok {
			agg = &channelAgg{}
			byChannel[a.Channel] = agg
		}
		agg.spend += spend
		agg.revenue += revenue
		totalSpend += spend
	}
	if totalSpend < epsilon {
		return nil
	}

	channels := make([]string, 0, len(byChannel))
	for ch := range byChannel {
		channels = append(channels, ch)
	}
	sort.Strings(channels)

	var detections []Detection
	for _, ch := range channels {
		agg := byChannel[ch]
		if agg.spend < epsilon {
			continue
		}
		roas := agg.revenue / agg.spend
		spendShare := agg.spend / totalSpend

		switch {
		case roas < roasFloor:
			detections = append(detections, Detection{
				Kind:       DetectionWeakROAS,
				Category:   models.CategoryOptimization,
				FocusArea:  FocusAdvertising,
				Signature:  fmt.Sprintf("%s:%s", DetectionWeakROAS, ch),
				Subject:    ch,
				Magnitude:  roas,
				Confidence: clamp((roasFloor-roas)/roasFloor*100+30, 0, 100),
				Impact:     clamp(spendShare*100, 0, 100),
				Facts: []string{
					fmt.Sprintf("channel %q returns %.2fx on ad spend, below the %.1fx floor", ch, roas, roasFloor),
					fmt.Sprintf("channel takes %.0f%% of total ad spend", spendShare*100),
				},
				KPIDeltas: map[string]float64{"roas": roas},
			})
		case roas >= scaleTarget && spendShare >= 0.1:
			detections = append(detections, Detection{
				Kind:       DetectionStrongROAS,
				Category:   models.CategoryGrowth,
				FocusArea:  FocusAdvertising,
				Signature:  fmt.Sprintf("%s:%s", DetectionStrongROAS, ch),
				Subject:    ch,
				Magnitude:  roas,
				Confidence: clamp(50+roas*10, 0, 100),
				Impact:     clamp(spendShare*100+roas*5, 0, 100),
				Facts: []string{
					fmt.Sprintf("channel %q returns %.2fx on ad spend, above the %.1fx scale target", ch, roas, scaleTarget),
					fmt.Sprintf("channel takes %.0f%% of total ad spend", spendShare*100),
				},
				KPIDeltas: map[string]float64{"roas": roas},
			})
		}
	}
	return detections
}
