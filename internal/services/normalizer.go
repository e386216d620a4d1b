package services

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/modaflow/retail-insights/internal/models"
	"github.com/modaflow/retail-insights/internal/utils"
)

// MinHistoryDays is the smallest number of distinct days the engine can
// forecast from. Below this the computation is unsupported, not merely
// low-confidence.
const MinHistoryDays = 7

// metricFields maps each metric to the raw field names it may be stored
// under, in lookup order.
var metricFields = map[models.Metric][]string{
	models.MetricRevenue:    {"revenue", "amount", "total"},
	models.MetricQuantity:   {"quantity", "units"},
	models.MetricOrderCount: {"orders", "order_count"},
}

// NormalizedSeries is the normalizer output: a contiguous daily series plus
// the count of input records that could not be used.
type NormalizedSeries struct {
	Points  []models.HistoricalPoint
	Skipped int
}

// NormalizeSeries turns raw business records into a gap-free, ordered daily
// series for one metric. Days appearing more than once are summed; missing
// days between the first and last record are zero-filled. Malformed records
// are skipped and counted, never fatal. Fewer than MinHistoryDays distinct
// days is an InsufficientDataError.
func NormalizeSeries(records []models.RawRecord, metric models.Metric) (*NormalizedSeries, error) {
	if !metric.Valid() {
		return nil, utils.NewValidationErrorf("unknown metric %q", metric)
	}

	daily := make(map[time.Time]float64)
	skipped := 0
	for _, rec := range records {
		day, ok := parseRecordDay(rec.Timestamp)
		if !ok {
			skipped++
			continue
		}
		value, ok := extractMetricValue(rec.Fields, metric)
		if !ok {
			skipped++
			continue
		}
		daily[day] += value
	}

	if len(daily) < MinHistoryDays {
		return nil, utils.NewInsufficientDataError(MinHistoryDays, len(daily))
	}

	days := make([]time.Time, 0, len(daily))
	for day := range daily {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	first, last := days[0], days[len(days)-1]
	span := int(last.Sub(first).Hours()/24) + 1
	points := make([]models.HistoricalPoint, 0, span)
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		points = append(points, models.HistoricalPoint{Date: day, Value: daily[day]})
	}

	return &NormalizedSeries{Points: points, Skipped: skipped}, nil
}

// parseRecordDay parses a record timestamp in any of the accepted layouts
// and truncates it to its UTC calendar day.
func parseRecordDay(raw string) (time.Time, bool) {
	layouts := []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

func extractMetricValue(fields map[string]interface{}, metric models.Metric) (float64, bool) {
	for _, name := range metricFields[metric] {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		value, ok := coerceNumeric(raw)
		if !ok || value < 0 {
			return 0, false
		}
		return value, true
	}
	return 0, false
}

// coerceNumeric accepts the numeric shapes loosely-typed records show up
// with: Go numbers, decimals, and numeric strings.
func coerceNumeric(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case decimal.Decimal:
		f, _ := v.Float64()
		return f, true
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return 0, false
		}
		f, _ := d.Float64()
		return f, true
	default:
		return 0, false
	}
}

// SalesToRawRecords converts typed sales rows into the raw record shape the
// normalizer consumes, keyed by the fields each metric looks up.
func SalesToRawRecords(sales []models.SalesRecord) []models.RawRecord {
	records := make([]models.RawRecord, 0, len(sales))
	for _, s := range sales {
		revenue, _ := s.Revenue.Float64()
		records = append(records, models.RawRecord{
			Timestamp: s.Date.Format(time.RFC3339),
			Fields: map[string]interface{}{
				"revenue":  revenue,
				"quantity": s.Quantity,
				"orders":   s.Orders,
			},
		})
	}
	return records
}
