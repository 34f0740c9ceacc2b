package clickhouse

import (
	"fmt"
	"strings"

	"adreport/pkg/analysis"
	"adreport/pkg/config"
	"adreport/pkg/source"
)

// Warehouse column names. Exported GA4 and Google Ads tables store one row
// per day and dimension combination.
const (
	colEventDate      = "event_date"
	colPropertyID     = "property_id"
	colDate           = "date"
	colCustomerID     = "customer_id"
	colCampaignName   = "campaign_name"
	colCampaignStatus = "campaign_status"
	colKeywordText    = "keyword_text"
	colMatchType      = "match_type"
	colSearchTerm     = "search_term"
)

// tableAlias qualifies every column so output aliases never shadow them
const tableAlias = "src"

// analyticsDimensions maps report dimensions to analytics table columns
var analyticsDimensions = map[string]string{
	analysis.DimensionDate:        colEventDate,
	analysis.DimensionChannel:     "session_default_channel_group",
	analysis.DimensionCountry:     "country",
	analysis.DimensionCity:        "city",
	analysis.DimensionEventName:   "event_name",
	analysis.DimensionPagePath:    "page_path",
	analysis.DimensionLandingPage: "landing_page",
	analysis.DimensionDevice:      "device_category",
	analysis.DimensionWeekday:     "day_of_week",
	analysis.DimensionHour:        "hour",
}

// analyticsMetrics maps report metrics to a column and aggregate
var analyticsMetrics = map[string]struct{ column, agg string }{
	analysis.MetricSessions:           {"sessions", "sum"},
	analysis.MetricActiveUsers:        {"active_users", "sum"},
	analysis.MetricTotalUsers:         {"total_users", "sum"},
	analysis.MetricConversions:        {"conversions", "sum"},
	"keyEvents":                       {"conversions", "sum"},
	analysis.MetricEventCount:         {"event_count", "sum"},
	analysis.MetricPageViews:          {"screen_page_views", "sum"},
	analysis.MetricAvgSessionDuration: {"average_session_duration", "avg"},
	analysis.MetricBounceRate:         {"bounce_rate", "avg"},
}

func col(name string) string {
	return tableAlias + "." + name
}

func alias(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "") + "`"
}

// quote renders a string literal
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(s) + "'"
}

func dayString(column string) string {
	return fmt.Sprintf("formatDateTime(%s, '%%Y-%%m-%%d')", col(column))
}

// buildAnalyticsQuery renders one analytics report as SQL with column
// aliases equal to the requested dimension and metric names
func buildAnalyticsQuery(table, propertyID string, dimensions, metrics []string, start, end string, limit int) (string, error) {
	if len(metrics) == 0 {
		return "", fmt.Errorf("%w: at least one metric is required", ErrUnknownField)
	}

	var selects, groups []string
	hasDate := false
	for _, d := range dimensions {
		column, ok := analyticsDimensions[d]
		if !ok {
			return "", fmt.Errorf("%w: dimension %s", ErrUnknownField, d)
		}
		expr := col(column)
		if d == analysis.DimensionDate {
			expr = dayString(column)
			hasDate = true
		}
		selects = append(selects, expr+" AS "+alias(d))
		groups = append(groups, alias(d))
	}
	for _, m := range metrics {
		spec, ok := analyticsMetrics[m]
		if !ok {
			return "", fmt.Errorf("%w: metric %s", ErrUnknownField, m)
		}
		selects = append(selects, fmt.Sprintf("%s(%s) AS %s", spec.agg, col(spec.column), alias(m)))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s AS %s", strings.Join(selects, ", "), table, tableAlias)
	fmt.Fprintf(&b, " WHERE %s = %s AND %s BETWEEN %s AND %s",
		col(colPropertyID), quote(propertyID), col(colEventDate), quote(start), quote(end))
	if len(groups) > 0 {
		b.WriteString(" GROUP BY " + strings.Join(groups, ", "))
	}
	if hasDate {
		b.WriteString(" ORDER BY " + alias(analysis.DimensionDate))
	} else {
		b.WriteString(" ORDER BY " + alias(metrics[0]) + " DESC")
	}
	if limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", limit)
	}
	return b.String(), nil
}

// SQLBuilder renders the ads sections against warehouse tables. Output
// columns are aliased to GAQL field paths so the aggregation code sees the
// same row shape as the Google Ads API.
type SQLBuilder struct {
	customerID string
	tables     config.AdsTables
	resolver   *TableNameResolver
}

var _ source.QueryBuilder = (*SQLBuilder)(nil)

// NewSQLBuilder creates an ads query builder for one customer
func NewSQLBuilder(customerID string, tables config.AdsTables, resolver *TableNameResolver) (*SQLBuilder, error) {
	for _, t := range []string{tables.Campaigns, tables.Keywords, tables.SearchTerms} {
		if t == "" {
			continue
		}
		if err := ValidateTableName(t); err != nil {
			return nil, err
		}
	}
	return &SQLBuilder{
		customerID: strings.ReplaceAll(customerID, "-", ""),
		tables:     tables,
		resolver:   resolver,
	}, nil
}

type adsColumn struct {
	expr  string
	field string
}

func sumOf(column, field string) adsColumn {
	return adsColumn{expr: fmt.Sprintf("sum(%s)", col(column)), field: field}
}

var adsPerformance = []adsColumn{
	sumOf("impressions", source.FieldImpressions),
	sumOf("clicks", source.FieldClicks),
	sumOf("cost_micros", source.FieldCostMicros),
	sumOf("conversions", source.FieldConversions),
}

var adsValue = sumOf("conversions_value", source.FieldConversionsValue)

func (b *SQLBuilder) render(table string, keys []adsColumn, withValue bool, activeOnly bool, start, end string, orderBy string) string {
	cols := append(append([]adsColumn{}, keys...), adsPerformance...)
	if withValue {
		cols = append(cols, adsValue)
	}

	selects := make([]string, len(cols))
	for i, c := range cols {
		selects[i] = c.expr + " AS " + alias(c.field)
	}
	groups := make([]string, len(keys))
	for i, k := range keys {
		groups[i] = alias(k.field)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s AS %s", strings.Join(selects, ", "), b.resolver.ResolveQueryTarget(table), tableAlias)
	fmt.Fprintf(&sb, " WHERE %s = %s AND %s BETWEEN %s AND %s",
		col(colCustomerID), quote(b.customerID), col(colDate), quote(start), quote(end))
	if activeOnly {
		fmt.Fprintf(&sb, " AND %s != 'REMOVED'", col(colCampaignStatus))
	}
	fmt.Fprintf(&sb, " GROUP BY %s ORDER BY %s", strings.Join(groups, ", "), orderBy)
	return sb.String()
}

func (b *SQLBuilder) pair(section, table string, keys []adsColumn, activeOnly bool, start, end, orderBy string) source.AdsQuery {
	return source.AdsQuery{
		Section:  section,
		Primary:  b.render(table, keys, true, activeOnly, start, end, orderBy),
		Fallback: b.render(table, keys, false, activeOnly, start, end, orderBy),
	}
}

func (b *SQLBuilder) Daily(start, end string) source.AdsQuery {
	keys := []adsColumn{{expr: dayString(colDate), field: source.FieldDate}}
	return b.pair(analysis.SectionAdsDaily, b.tables.Campaigns, keys, true, start, end, alias(source.FieldDate))
}

func (b *SQLBuilder) Campaigns(start, end string) source.AdsQuery {
	keys := []adsColumn{{expr: col(colCampaignName), field: source.FieldCampaignName}}
	return b.pair(analysis.SectionCampaigns, b.tables.Campaigns, keys, true, start, end, alias(source.FieldConversions)+" DESC")
}

func (b *SQLBuilder) Keywords(start, end string) source.AdsQuery {
	keys := []adsColumn{
		{expr: col(colKeywordText), field: source.FieldKeywordText},
		{expr: col(colMatchType), field: source.FieldKeywordMatchType},
	}
	return b.pair(analysis.SectionKeywords, b.tables.Keywords, keys, true, start, end, alias(source.FieldCostMicros)+" DESC")
}

func (b *SQLBuilder) SearchTerms(start, end string) source.AdsQuery {
	keys := []adsColumn{{expr: col(colSearchTerm), field: source.FieldSearchTerm}}
	return b.pair(analysis.SectionSearchTerms, b.tables.SearchTerms, keys, false, start, end, alias(source.FieldCostMicros)+" DESC")
}
