package clickhouse

import (
	"context"
	"errors"
	"math/big"
	"reflect"
	"strings"
	"testing"
	"time"

	"adreport/pkg/analysis"
	"adreport/pkg/config"
	"adreport/pkg/source"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

type fakeColumn struct {
	name string
	typ  reflect.Type
}

func (c fakeColumn) Name() string             { return c.name }
func (c fakeColumn) Nullable() bool           { return c.typ.Kind() == reflect.Pointer }
func (c fakeColumn) ScanType() reflect.Type   { return c.typ }
func (c fakeColumn) DatabaseTypeName() string { return c.typ.String() }

// fakeRows serves fixed values through the reflect-allocated destinations
type fakeRows struct {
	cols []fakeColumn
	data [][]any
	pos  int
}

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos <= len(r.data)
}

func (r *fakeRows) Scan(dest ...any) error {
	for i, v := range r.data[r.pos-1] {
		target := reflect.ValueOf(dest[i]).Elem()
		if v == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		target.Set(reflect.ValueOf(v))
	}
	return nil
}

func (r *fakeRows) ColumnTypes() []driver.ColumnType {
	out := make([]driver.ColumnType, len(r.cols))
	for i, c := range r.cols {
		out[i] = c
	}
	return out
}

func (r *fakeRows) Err() error { return nil }

func TestScanRowsNormalizesTypes(t *testing.T) {
	two := 2.5
	rows := &fakeRows{
		cols: []fakeColumn{
			{"segments.date", reflect.TypeOf(time.Time{})},
			{"metrics.clicks", reflect.TypeOf(uint64(0))},
			{"metrics.cost_micros", reflect.TypeOf(int64(0))},
			{"metrics.conversions", reflect.TypeOf(float64(0))},
			{"metrics.conversions_value", reflect.TypeOf((*float64)(nil))},
			{"campaign.name", reflect.TypeOf("")},
			{"big", reflect.TypeOf(big.NewInt(0))},
		},
		data: [][]any{
			{time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), uint64(12), int64(3_000_000), 1.5, &two, "Brand", big.NewInt(42)},
			{time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), uint64(0), int64(0), 0.0, nil, "", big.NewInt(7)},
		},
	}

	got, err := scanRows(rows)
	if err != nil {
		t.Fatalf("scanRows failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}

	first := got[0]
	checks := map[string]any{
		source.FieldDate:             "2024-03-01",
		source.FieldClicks:           int64(12),
		source.FieldCostMicros:       int64(3_000_000),
		source.FieldConversions:      1.5,
		source.FieldConversionsValue: 2.5,
		source.FieldCampaignName:     "Brand",
		"big":                        int64(42),
	}
	for k, want := range checks {
		if first[k] != want {
			t.Errorf("%s = %#v, want %#v", k, first[k], want)
		}
	}
	if got[1].Has(source.FieldConversionsValue) {
		t.Errorf("NULL conversion value should be absent, got %#v", got[1][source.FieldConversionsValue])
	}
}

func TestBuildAnalyticsQuery(t *testing.T) {
	q, err := buildAnalyticsQuery("ga4_events_daily", "123", []string{analysis.DimensionDate},
		[]string{analysis.MetricSessions, analysis.MetricBounceRate}, "2024-03-01", "2024-03-07", 0)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	for _, want := range []string{
		"formatDateTime(src.event_date, '%Y-%m-%d') AS `date`",
		"sum(src.sessions) AS `sessions`",
		"avg(src.bounce_rate) AS `bounceRate`",
		"FROM ga4_events_daily AS src",
		"src.property_id = '123'",
		"src.event_date BETWEEN '2024-03-01' AND '2024-03-07'",
		"GROUP BY `date` ORDER BY `date`",
	} {
		if !strings.Contains(q, want) {
			t.Errorf("query missing %q:\n%s", want, q)
		}
	}
	if strings.Contains(q, "LIMIT") {
		t.Errorf("zero limit should not render LIMIT")
	}

	q, _ = buildAnalyticsQuery("t", "1", []string{analysis.DimensionCity, analysis.DimensionCountry},
		[]string{analysis.MetricSessions}, "2024-03-01", "2024-03-07", 30)
	if !strings.HasSuffix(q, "ORDER BY `sessions` DESC LIMIT 30") {
		t.Errorf("unexpected ordering: %s", q)
	}

	if _, err := buildAnalyticsQuery("t", "1", []string{"browser"}, []string{analysis.MetricSessions}, "a", "b", 0); !errors.Is(err, ErrUnknownField) {
		t.Errorf("expected ErrUnknownField, got %v", err)
	}
}

func TestQuoteEscapes(t *testing.T) {
	if got := quote(`o'brien\`); got != `'o\'brien\\'` {
		t.Errorf("quote = %s", got)
	}
}

func TestSQLBuilder(t *testing.T) {
	tables := config.AdsTables{
		Campaigns:   "google_ads_campaign_daily",
		Keywords:    "google_ads_keyword_daily",
		SearchTerms: "google_ads_search_term_daily",
	}
	b, err := NewSQLBuilder("123-456-7890", tables, NewTableNameResolver(&config.ClickHouseConfig{Cluster: "c1"}))
	if err != nil {
		t.Fatalf("NewSQLBuilder failed: %v", err)
	}

	daily := b.Daily("2024-03-01", "2024-03-07")
	if daily.Section != analysis.SectionAdsDaily {
		t.Errorf("section = %s", daily.Section)
	}
	for _, want := range []string{
		"AS `segments.date`",
		"sum(src.cost_micros) AS `metrics.cost_micros`",
		"FROM google_ads_campaign_daily_distributed AS src",
		"src.customer_id = '1234567890'",
		"src.campaign_status != 'REMOVED'",
	} {
		if !strings.Contains(daily.Primary, want) {
			t.Errorf("daily query missing %q:\n%s", want, daily.Primary)
		}
	}
	if !strings.Contains(daily.Primary, "`metrics.conversions_value`") || strings.Contains(daily.Fallback, "conversions_value") {
		t.Error("only the primary query should ask for conversion value")
	}

	kw := b.Keywords("2024-03-01", "2024-03-07")
	if !strings.Contains(kw.Primary, "GROUP BY `ad_group_criterion.keyword.text`, `ad_group_criterion.keyword.match_type`") {
		t.Errorf("keyword grouping wrong:\n%s", kw.Primary)
	}
	st := b.SearchTerms("2024-03-01", "2024-03-07")
	if strings.Contains(st.Primary, "REMOVED") || !strings.Contains(st.Primary, "`search_term_view.search_term`") {
		t.Errorf("search term query wrong:\n%s", st.Primary)
	}

	if _, err := NewSQLBuilder("1", config.AdsTables{Campaigns: "x; DROP"}, nil); !errors.Is(err, ErrInvalidTableName) {
		t.Errorf("expected ErrInvalidTableName, got %v", err)
	}
}

func TestWarehouseSourcesLive(t *testing.T) {
	cfg := config.NewClickHouseConfig()
	client, err := NewClient(context.Background(), cfg, nil)
	if err != nil {
		t.Skipf("ClickHouse not available: %v", err)
	}
	defer client.Close()

	rows, err := runQuery(context.Background(), client, "", "SELECT toDate('2024-03-01') AS `segments.date`, toUInt64(5) AS `metrics.clicks`")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(rows) != 1 || rows[0].String(source.FieldDate) != "2024-03-01" || rows[0].Int(source.FieldClicks) != 5 {
		t.Errorf("unexpected rows %v", rows)
	}
}
