// Package source defines the provider contracts the report pipeline reads from
// and the row shape they return.
package source

import (
	"context"
)

// Row maps a requested dimension or metric name to its value.
// Values are int64, float64, string or nil.
type Row map[string]any

// AnalyticsSource runs dimensional reports against a web analytics property.
type AnalyticsSource interface {
	RunReport(ctx context.Context, dimensions, metrics []string, start, end string, limit int) ([]Row, error)
}

// AdsSource runs query-language strings against an ads account. When the
// primary query fails and fallback is not empty, fallback is tried once.
type AdsSource interface {
	RunQuery(ctx context.Context, query, fallback string) ([]Row, error)
}

// AdsQuery is a named primary/fallback query pair
type AdsQuery struct {
	Section  string
	Primary  string
	Fallback string
}

// QueryBuilder produces ads queries in the dialect of a particular AdsSource.
// Result columns must use the Field* names below.
type QueryBuilder interface {
	Daily(start, end string) AdsQuery
	Campaigns(start, end string) AdsQuery
	Keywords(start, end string) AdsQuery
	SearchTerms(start, end string) AdsQuery
}

// Ads row field names
const (
	FieldDate             = "segments.date"
	FieldCampaignName     = "campaign.name"
	FieldKeywordText      = "ad_group_criterion.keyword.text"
	FieldKeywordMatchType = "ad_group_criterion.keyword.match_type"
	FieldSearchTerm       = "search_term_view.search_term"
	FieldImpressions      = "metrics.impressions"
	FieldClicks           = "metrics.clicks"
	FieldCostMicros       = "metrics.cost_micros"
	FieldConversions      = "metrics.conversions"
	FieldConversionsValue = "metrics.conversions_value"
)

// MicrosPerUnit converts cost_micros to currency units
const MicrosPerUnit = 1_000_000
