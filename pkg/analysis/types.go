package analysis

import (
	"encoding/json"
	"time"
)

// Severity of a finding
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// FindingType identifies the rule that produced a finding
type FindingType string

const (
	FindingSourceDiscrepancy FindingType = "source_discrepancy"
	FindingSuspiciousCountry FindingType = "suspicious_country"
	FindingCityConcentration FindingType = "city_concentration"
)

// Finding is a single anomaly result. The fields are unexported so a finding
// cannot change after the detector creates it.
type Finding struct {
	kind     FindingType
	detail   string
	severity Severity
	subject  string
	value    float64
}

// NewFinding creates a finding
func NewFinding(kind FindingType, severity Severity, subject string, value float64, detail string) Finding {
	return Finding{kind: kind, detail: detail, severity: severity, subject: subject, value: value}
}

func (f Finding) Type() FindingType  { return f.kind }
func (f Finding) Detail() string     { return f.detail }
func (f Finding) Severity() Severity { return f.severity }
func (f Finding) Subject() string    { return f.subject } // country, city or source pair
func (f Finding) Value() float64     { return f.value }   // the percentage that tripped the rule

// MarshalJSON renders the finding for the report API
func (f Finding) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type     FindingType `json:"type"`
		Detail   string      `json:"detail"`
		Severity Severity    `json:"severity"`
		Subject  string      `json:"subject,omitempty"`
		Value    float64     `json:"value"`
	}{f.kind, f.detail, f.severity, f.subject, f.value})
}

// Optional is a metric that may be unavailable. Unavailable is different
// from zero and marshals to null.
type Optional struct {
	Value     float64
	Available bool
}

// Some returns an available value
func Some(v float64) Optional {
	return Optional{Value: v, Available: true}
}

// MarshalJSON implements json.Marshaler
func (o Optional) MarshalJSON() ([]byte, error) {
	if !o.Available {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Direction of a period-over-period change
type Direction string

const (
	DirectionIncrease  Direction = "increase"
	DirectionDecrease  Direction = "decrease"
	DirectionUnchanged Direction = "unchanged"
	DirectionNone      Direction = "none" // no comparison available
)

// Change is a period-over-period delta
type Change struct {
	Current   float64   `json:"current"`
	Previous  float64   `json:"previous"`
	Percent   float64   `json:"percent"`
	Available bool      `json:"available"` // false when previous <= 0
	Direction Direction `json:"direction"`
}

// DailyCounters holds the raw counters of one date
type DailyCounters struct {
	Sessions             float64 `json:"sessions"`
	ActiveUsers          float64 `json:"active_users"`
	AnalyticsConversions float64 `json:"analytics_conversions"`
	Cost                 float64 `json:"cost"`
	Impressions          float64 `json:"impressions"`
	Clicks               float64 `json:"clicks"`
	AdsConversions       float64 `json:"ads_conversions"`
	ConversionValue      float64 `json:"conversion_value"`
}

// AggregateTotals sums counters over a window. Ratios are computed from the
// sums, never averaged across days.
type AggregateTotals struct {
	Days                 int      `json:"days"`
	Sessions             float64  `json:"sessions"`
	ActiveUsers          float64  `json:"active_users"`
	AnalyticsConversions float64  `json:"analytics_conversions"`
	Cost                 float64  `json:"cost"`
	Impressions          float64  `json:"impressions"`
	Clicks               float64  `json:"clicks"`
	AdsConversions       float64  `json:"ads_conversions"`
	ConversionValue      float64  `json:"conversion_value"`
	CTR                  float64  `json:"ctr"`     // clicks / impressions * 100
	CPC                  float64  `json:"cpc"`     // cost / clicks
	CPA                  float64  `json:"cpa"`     // cost / analytics conversions
	AdsCPA               float64  `json:"ads_cpa"` // cost / ads conversions
	CVR                  float64  `json:"cvr"`     // analytics conversions / sessions * 100
	AdsCVR               float64  `json:"ads_cvr"` // ads conversions / clicks * 100
	ROAS                 Optional `json:"roas"`
}

// Period names
const (
	PeriodDayOverDay     = "day_over_day"
	PeriodWeekOverWeek   = "week_over_week"
	PeriodMonthOverMonth = "month_over_month"
)

// PeriodComparison compares a window with the window before it
type PeriodComparison struct {
	Name           string          `json:"name"`
	Current        AggregateTotals `json:"current"`
	Previous       AggregateTotals `json:"previous"`
	Comparable     bool            `json:"comparable"` // previous window not empty
	Partial        bool            `json:"partial"`    // previous window shorter than current
	Sessions       Change          `json:"sessions"`
	Conversions    Change          `json:"conversions"`
	Cost           Change          `json:"cost"`
	Clicks         Change          `json:"clicks"`
	Impressions    Change          `json:"impressions"`
	AdsConversions Change          `json:"ads_conversions"`
	CVR            Change          `json:"cvr"`
	CPA            Change          `json:"cpa"`
	CTR            Change          `json:"ctr"`
}

// DailyPoint is one day of the trend series
type DailyPoint struct {
	Date string `json:"date"`
	DailyCounters
}

// DimensionRow is an ads row grouped by campaign name, keyword or search term
type DimensionRow struct {
	Key             string   `json:"key"`
	MatchType       string   `json:"match_type,omitempty"`
	Impressions     float64  `json:"impressions"`
	Clicks          float64  `json:"clicks"`
	Cost            float64  `json:"cost"`
	Conversions     float64  `json:"conversions"`
	ConversionValue float64  `json:"conversion_value"`
	CTR             float64  `json:"ctr"`
	CPC             float64  `json:"cpc"`
	CPA             float64  `json:"cpa"`
	CVR             float64  `json:"cvr"` // by clicks
	ROAS            Optional `json:"roas"`
}

// ChannelRow is analytics traffic per default channel group
type ChannelRow struct {
	Channel     string  `json:"channel"`
	Sessions    float64 `json:"sessions"`
	Users       float64 `json:"users"`
	Conversions float64 `json:"conversions"`
	CVR         float64 `json:"cvr"`
	Share       float64 `json:"share"` // of total sessions
}

// CountryRow is analytics traffic per country
type CountryRow struct {
	Country     string  `json:"country"`
	Sessions    float64 `json:"sessions"`
	Conversions float64 `json:"conversions"`
	CVR         float64 `json:"cvr"`
	Share       float64 `json:"share"` // of total conversions
	Target      bool    `json:"target"`
}

// CityRow is analytics traffic per city
type CityRow struct {
	City        string  `json:"city"`
	Country     string  `json:"country"`
	Sessions    float64 `json:"sessions"`
	Conversions float64 `json:"conversions"`
	CVR         float64 `json:"cvr"`
	Share       float64 `json:"share"` // of total city conversions
	Target      bool    `json:"target"`
}

// GeoSummary describes how conversions split across target markets
type GeoSummary struct {
	TotalConversions float64 `json:"total_conversions"`
	TargetShare      float64 `json:"target_share"`
	NonTargetShare   float64 `json:"non_target_share"`
	ActiveCountries  int     `json:"active_countries"`
}

// EventRow counts one conversion event
type EventRow struct {
	Event string  `json:"event"`
	Count float64 `json:"count"`
}

// PageRow is a top page by views
type PageRow struct {
	Path               string  `json:"path"`
	Views              float64 `json:"views"`
	AvgSessionDuration float64 `json:"avg_session_duration"`
	BounceRate         float64 `json:"bounce_rate"` // percent
}

// LandingPageRow is a landing page with its conversion rate
type LandingPageRow struct {
	Path        string  `json:"path"`
	Sessions    float64 `json:"sessions"`
	Conversions float64 `json:"conversions"`
	CVR         float64 `json:"cvr"`
}

// BreakdownRow is traffic per device, weekday or hour
type BreakdownRow struct {
	Key         string  `json:"key"`
	Sessions    float64 `json:"sessions"`
	Conversions float64 `json:"conversions"`
	CVR         float64 `json:"cvr"`
}

// Section is a report section that may have degraded to "no data"
type Section[T any] struct {
	Data      T      `json:"data"`
	Available bool   `json:"available"`
	Error     string `json:"error,omitempty"`
}

// Report is the assembled aggregate tree handed to a renderer.
// It is read-only once Assemble returns.
type Report struct {
	RunID              string             `json:"run_id"`
	StartDate          string             `json:"start_date"`
	EndDate            string             `json:"end_date"`
	GeneratedAt        time.Time          `json:"generated_at"`
	Windows            WindowSet          `json:"windows"`
	HasConversionValue bool               `json:"has_conversion_value"`
	Summary            AggregateTotals    `json:"summary"`
	Discrepancy        Optional           `json:"discrepancy"`
	Periods            []PeriodComparison `json:"periods"`
	Daily              []DailyPoint       `json:"daily"`

	Events       Section[[]EventRow]       `json:"events"`
	Channels     Section[[]ChannelRow]     `json:"channels"`
	Countries    Section[[]CountryRow]     `json:"countries"`
	Cities       Section[[]CityRow]        `json:"cities"`
	Geo          GeoSummary                `json:"geo"`
	Campaigns    Section[[]DimensionRow]   `json:"campaigns"`
	TopPages     Section[[]PageRow]        `json:"top_pages"`
	LandingPages Section[[]LandingPageRow] `json:"landing_pages"`
	Keywords     Section[[]DimensionRow]   `json:"keywords"`
	SearchTerms  Section[[]DimensionRow]   `json:"search_terms"`
	Devices      Section[[]BreakdownRow]   `json:"devices"`
	Weekdays     Section[[]BreakdownRow]   `json:"weekdays"`
	Hours        Section[[]BreakdownRow]   `json:"hours"`

	WastedKeywords    []DimensionRow `json:"wasted_keywords"`
	WastedSearchTerms []DimensionRow `json:"wasted_search_terms"`
	Findings          []Finding      `json:"findings"`
}

// Healthy reports whether no anomaly rule fired
func (r *Report) Healthy() bool {
	return len(r.Findings) == 0
}

// Period returns the named comparison
func (r *Report) Period(name string) (PeriodComparison, bool) {
	for _, p := range r.Periods {
		if p.Name == name {
			return p, true
		}
	}
	return PeriodComparison{}, false
}

// DegradedSections lists sections that rendered without data
func (r *Report) DegradedSections() []string {
	var out []string
	check := func(name string, available bool) {
		if !available {
			out = append(out, name)
		}
	}
	check(SectionEvents, r.Events.Available)
	check(SectionChannels, r.Channels.Available)
	check(SectionCountries, r.Countries.Available)
	check(SectionCities, r.Cities.Available)
	check(SectionCampaigns, r.Campaigns.Available)
	check(SectionTopPages, r.TopPages.Available)
	check(SectionLandingPages, r.LandingPages.Available)
	check(SectionKeywords, r.Keywords.Available)
	check(SectionSearchTerms, r.SearchTerms.Available)
	check(SectionDevices, r.Devices.Available)
	check(SectionWeekdays, r.Weekdays.Available)
	check(SectionHours, r.Hours.Available)
	return out
}
