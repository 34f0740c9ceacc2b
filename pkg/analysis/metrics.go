package analysis

import (
	"fmt"
	"sync"

	"adreport/pkg/source"
	"adreport/pkg/utils/dateutils"
)

// Field names a raw daily counter
type Field string

const (
	FieldSessions             Field = "sessions"
	FieldActiveUsers          Field = "active_users"
	FieldAnalyticsConversions Field = "analytics_conversions"
	FieldCost                 Field = "cost"
	FieldImpressions          Field = "impressions"
	FieldClicks               Field = "clicks"
	FieldAdsConversions       Field = "ads_conversions"
	FieldConversionValue      Field = "conversion_value"
)

// AllFields lists every daily counter
var AllFields = []Field{
	FieldSessions, FieldActiveUsers, FieldAnalyticsConversions,
	FieldCost, FieldImpressions, FieldClicks, FieldAdsConversions, FieldConversionValue,
}

// Value returns the counter for f
func (c DailyCounters) Value(f Field) float64 {
	switch f {
	case FieldSessions:
		return c.Sessions
	case FieldActiveUsers:
		return c.ActiveUsers
	case FieldAnalyticsConversions:
		return c.AnalyticsConversions
	case FieldCost:
		return c.Cost
	case FieldImpressions:
		return c.Impressions
	case FieldClicks:
		return c.Clicks
	case FieldAdsConversions:
		return c.AdsConversions
	case FieldConversionValue:
		return c.ConversionValue
	}
	return 0
}

func (c *DailyCounters) add(f Field, v float64) {
	switch f {
	case FieldSessions:
		c.Sessions += v
	case FieldActiveUsers:
		c.ActiveUsers += v
	case FieldAnalyticsConversions:
		c.AnalyticsConversions += v
	case FieldCost:
		c.Cost += v
	case FieldImpressions:
		c.Impressions += v
	case FieldClicks:
		c.Clicks += v
	case FieldAdsConversions:
		c.AdsConversions += v
	case FieldConversionValue:
		c.ConversionValue += v
	}
}

// Totals maps a field to its sum over a window
type Totals map[Field]float64

// FieldMapping routes a provider column into a daily counter
type FieldMapping struct {
	Field Field
	Scale float64 // multiplier applied to the raw value, 0 means 1
}

// FieldMap maps provider column names to counters
type FieldMap map[string]FieldMapping

// AnalyticsFields maps analytics daily columns. conversionMetric is the
// property's conversion metric name ("conversions" or "keyEvents").
func AnalyticsFields(conversionMetric string) FieldMap {
	if conversionMetric == "" {
		conversionMetric = MetricConversions
	}
	return FieldMap{
		MetricSessions:    {Field: FieldSessions},
		MetricActiveUsers: {Field: FieldActiveUsers},
		conversionMetric:  {Field: FieldAnalyticsConversions},
	}
}

// AdsFields maps ads daily columns; cost arrives in micros
func AdsFields() FieldMap {
	return FieldMap{
		source.FieldImpressions:      {Field: FieldImpressions},
		source.FieldClicks:           {Field: FieldClicks},
		source.FieldCostMicros:       {Field: FieldCost, Scale: 1.0 / source.MicrosPerUnit},
		source.FieldConversions:      {Field: FieldAdsConversions},
		source.FieldConversionsValue: {Field: FieldConversionValue},
	}
}

// MergeStats describes one merge
type MergeStats struct {
	Merged  int
	Dropped int // rows outside the window or without a usable date
}

// DailyMetrics buckets raw counters per date. Every date of the window is
// present from construction so lookups never miss.
type DailyMetrics struct {
	mu       sync.Mutex
	dates    []string
	days     map[string]*DailyCounters
	merged   map[string]struct{}
	hasValue bool
}

// NewDailyMetrics zero-initializes a bucket for every date
func NewDailyMetrics(dates []string) *DailyMetrics {
	dm := &DailyMetrics{
		dates:  append([]string(nil), dates...),
		days:   make(map[string]*DailyCounters, len(dates)),
		merged: make(map[string]struct{}),
	}
	for _, d := range dates {
		dm.days[d] = &DailyCounters{}
	}
	return dm
}

// Dates returns the window dates in order
func (dm *DailyMetrics) Dates() []string {
	return append([]string(nil), dm.dates...)
}

// Get returns the counters for a date, zero when the date is unknown
func (dm *DailyMetrics) Get(date string) DailyCounters {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	if c, ok := dm.days[date]; ok {
		return *c
	}
	return DailyCounters{}
}

// HasConversionValue reports whether any merged ads row carried a
// conversion value column
func (dm *DailyMetrics) HasConversionValue() bool {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	return dm.hasValue
}

// MarkSeen records fetchID and reports whether it was new
func (dm *DailyMetrics) MarkSeen(fetchID string) bool {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	if _, ok := dm.merged[fetchID]; ok {
		return false
	}
	dm.merged[fetchID] = struct{}{}
	return true
}

// Merge adds rows into the bucket of each row's date. A fetch ID can be merged
// only once; a repeat returns ErrAlreadyMerged and leaves totals unchanged.
// Rows dated outside the window are dropped.
func (dm *DailyMetrics) Merge(fetchID string, rows []source.Row, dateKey string, fields FieldMap) (MergeStats, error) {
	if !dm.MarkSeen(fetchID) {
		return MergeStats{}, fmt.Errorf("%w: %s", ErrAlreadyMerged, fetchID)
	}

	dm.mu.Lock()
	defer dm.mu.Unlock()

	var stats MergeStats
	for _, row := range rows {
		date, ok := dateutils.NormalizeDate(row.String(dateKey))
		if !ok {
			stats.Dropped++
			continue
		}
		bucket, ok := dm.days[date]
		if !ok {
			stats.Dropped++
			continue
		}

		for column, mapping := range fields {
			if !row.Has(column) {
				continue
			}
			v := row.Float(column)
			if mapping.Scale != 0 {
				v *= mapping.Scale
			}
			bucket.add(mapping.Field, v)
			if mapping.Field == FieldConversionValue {
				dm.hasValue = true
			}
		}
		stats.Merged++
	}

	return stats, nil
}

// MergeAnalytics merges analytics rows keyed by the "date" dimension
func (dm *DailyMetrics) MergeAnalytics(fetchID string, rows []source.Row, conversionMetric string) (MergeStats, error) {
	return dm.Merge(fetchID, rows, DimensionDate, AnalyticsFields(conversionMetric))
}

// MergeAds merges ads rows keyed by segments.date
func (dm *DailyMetrics) MergeAds(fetchID string, rows []source.Row) (MergeStats, error) {
	return dm.Merge(fetchID, rows, source.FieldDate, AdsFields())
}

// Points returns the per-date series in window order
func (dm *DailyMetrics) Points() []DailyPoint {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	points := make([]DailyPoint, 0, len(dm.dates))
	for _, d := range dm.dates {
		points = append(points, DailyPoint{Date: d, DailyCounters: *dm.days[d]})
	}
	return points
}

// SumOver sums the requested fields across dates. An empty date list gives
// zero totals and dates missing from daily contribute zero. With no fields,
// every counter is summed.
func SumOver(dates []string, daily *DailyMetrics, fields ...Field) Totals {
	if len(fields) == 0 {
		fields = AllFields
	}

	totals := make(Totals, len(fields))
	for _, f := range fields {
		totals[f] = 0
	}
	if daily == nil {
		return totals
	}

	for _, d := range dates {
		c := daily.Get(d)
		for _, f := range fields {
			totals[f] += c.Value(f)
		}
	}
	return totals
}
