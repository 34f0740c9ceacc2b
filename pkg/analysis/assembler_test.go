package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"adreport/pkg/source"
)

// fakeAnalytics answers RunReport by the first requested dimension
type fakeAnalytics struct {
	mu      sync.Mutex
	reports map[string][]source.Row
	fail    map[string]error
	calls   []string
}

func (f *fakeAnalytics) RunReport(_ context.Context, dimensions, _ []string, _, _ string, _ int) ([]source.Row, error) {
	key := dimensions[0]
	f.mu.Lock()
	f.calls = append(f.calls, key)
	f.mu.Unlock()
	if err := f.fail[key]; err != nil {
		return nil, err
	}
	return f.reports[key], nil
}

// fakeAds answers queries by name and supports a fallback the way real
// sources do
type fakeAds struct {
	rows map[string][]source.Row
	fail map[string]bool
}

func (f *fakeAds) RunQuery(ctx context.Context, query, fallback string) ([]source.Row, error) {
	return source.QueryWithFallback(ctx, query, fallback, func(_ context.Context, q string) ([]source.Row, error) {
		if f.fail[q] {
			return nil, fmt.Errorf("query %s: unsupported field", q)
		}
		return f.rows[q], nil
	})
}

type fakeQueries struct{}

func (fakeQueries) Daily(_, _ string) source.AdsQuery {
	return source.AdsQuery{Section: SectionAdsDaily, Primary: "daily", Fallback: "daily-basic"}
}
func (fakeQueries) Campaigns(_, _ string) source.AdsQuery {
	return source.AdsQuery{Section: SectionCampaigns, Primary: "campaigns", Fallback: "campaigns-basic"}
}
func (fakeQueries) Keywords(_, _ string) source.AdsQuery {
	return source.AdsQuery{Section: SectionKeywords, Primary: "keywords"}
}
func (fakeQueries) SearchTerms(_, _ string) source.AdsQuery {
	return source.AdsQuery{Section: SectionSearchTerms, Primary: "search_terms"}
}

type recordingObserver struct {
	mu       sync.Mutex
	degraded []string
	fetches  int
}

func (o *recordingObserver) ObserveFetch(string, string, time.Duration, error) {
	o.mu.Lock()
	o.fetches++
	o.mu.Unlock()
}

func (o *recordingObserver) SectionDegraded(section string) {
	o.mu.Lock()
	o.degraded = append(o.degraded, section)
	o.mu.Unlock()
}

var weekDates = []string{
	"2024-03-01", "2024-03-02", "2024-03-03", "2024-03-04", "2024-03-05", "2024-03-06", "2024-03-07",
}

// weekFixture spreads 1,000 sessions / 50 conversions and ₩2,000,000 /
// 45 ads conversions over seven days
func weekFixture() (*fakeAnalytics, *fakeAds) {
	sessions := []int64{100, 150, 150, 150, 150, 150, 150}
	conversions := []int64{5, 5, 10, 5, 10, 5, 10}
	cost := []int64{300_000, 300_000, 300_000, 300_000, 300_000, 300_000, 200_000}
	adsConv := []float64{6, 6, 6, 6, 6, 6, 9}

	var gaDaily, adsDaily, adsBasic []source.Row
	for i, d := range weekDates {
		gaDaily = append(gaDaily, source.Row{
			"date":        d[:4] + d[5:7] + d[8:],
			"sessions":    sessions[i],
			"activeUsers": sessions[i] - 10,
			"conversions": conversions[i],
		})
		adsDaily = append(adsDaily, source.Row{
			source.FieldDate:             d,
			source.FieldImpressions:      int64(10_000),
			source.FieldClicks:           int64(200),
			source.FieldCostMicros:       cost[i] * source.MicrosPerUnit,
			source.FieldConversions:      adsConv[i],
			source.FieldConversionsValue: 1_000_000.0,
		})
		adsBasic = append(adsBasic, source.Row{
			source.FieldDate:        d,
			source.FieldImpressions: int64(10_000),
			source.FieldClicks:      int64(200),
			source.FieldCostMicros:  cost[i] * source.MicrosPerUnit,
			source.FieldConversions: adsConv[i],
		})
	}

	analytics := &fakeAnalytics{
		reports: map[string][]source.Row{
			DimensionDate: gaDaily,
			DimensionCountry: {
				{"country": "South Korea", "sessions": int64(800), "conversions": int64(45)},
				{"country": "Japan", "sessions": int64(200), "conversions": int64(5)},
			},
			DimensionCity: {
				{"city": "Seoul", "country": "South Korea", "sessions": int64(700), "conversions": int64(40)},
				{"city": "Tokyo", "country": "Japan", "sessions": int64(200), "conversions": int64(5)},
			},
			DimensionEventName: {{"eventName": "contact_form_submit", "eventCount": int64(50)}},
			DimensionChannel:   {{"sessionDefaultChannelGroup": "Paid Search", "sessions": int64(1000), "conversions": int64(50)}},
			DimensionDevice:    {{"deviceCategory": "desktop", "sessions": int64(1000), "conversions": int64(50)}},
		},
		fail: map[string]error{},
	}
	ads := &fakeAds{
		rows: map[string][]source.Row{
			"daily":       adsDaily,
			"daily-basic": adsBasic,
			"campaigns": {
				{source.FieldCampaignName: "Brand", source.FieldClicks: int64(1400), source.FieldCostMicros: int64(2_000_000) * source.MicrosPerUnit, source.FieldConversions: 45.0},
			},
			"keywords": {
				{source.FieldKeywordText: "crm software", source.FieldCostMicros: int64(500_000) * source.MicrosPerUnit, source.FieldConversions: 10.0},
				{source.FieldKeywordText: "free crm", source.FieldCostMicros: int64(120_000) * source.MicrosPerUnit, source.FieldConversions: 0.0},
			},
		},
		fail: map[string]bool{},
	}
	return analytics, ads
}

func newTestAssembler(t *testing.T, analytics source.AnalyticsSource, ads source.AdsSource) *Assembler {
	t.Helper()
	a, err := NewAssembler(analytics, ads, fakeQueries{}, DefaultOptions())
	if err != nil {
		t.Fatalf("NewAssembler failed: %v", err)
	}
	a.newRunID = func() string { return "run-test" }
	return a
}

func TestAssembleEndToEnd(t *testing.T) {
	analytics, ads := weekFixture()
	a := newTestAssembler(t, analytics, ads)

	report, err := a.Assemble(context.Background(), "2024-03-01", "2024-03-07")
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	s := report.Summary
	if s.Sessions != 1000 || s.AnalyticsConversions != 50 {
		t.Fatalf("summary sessions/conversions = %v/%v, want 1000/50", s.Sessions, s.AnalyticsConversions)
	}
	if !almostEqual(s.Cost, 2_000_000) || s.AdsConversions != 45 {
		t.Fatalf("summary cost/ads conversions = %v/%v", s.Cost, s.AdsConversions)
	}
	if !almostEqual(s.CVR, 5.0) {
		t.Errorf("CVR = %v, want 5.0", s.CVR)
	}
	if !almostEqual(s.CPA, 40_000) {
		t.Errorf("CPA = %v, want 40000", s.CPA)
	}
	if !report.Discrepancy.Available || !almostEqual(report.Discrepancy.Value, 10) {
		t.Errorf("discrepancy = %+v, want 10", report.Discrepancy)
	}
	if !report.Healthy() {
		t.Errorf("expected no findings, got %v", report.Findings)
	}
	if !report.HasConversionValue || !s.ROAS.Available {
		t.Errorf("ROAS should be available when the primary daily query succeeds")
	}

	if report.RunID != "run-test" || len(report.Daily) != 7 || len(report.Periods) != 3 {
		t.Errorf("unexpected report shape: run=%s daily=%d periods=%d", report.RunID, len(report.Daily), len(report.Periods))
	}
	if !report.Countries.Available || report.Geo.TargetShare != 100 {
		t.Errorf("geo = %+v countries=%+v", report.Geo, report.Countries)
	}
	if len(report.WastedKeywords) != 1 || report.WastedKeywords[0].Key != "free crm" {
		t.Errorf("wasted keywords = %+v", report.WastedKeywords)
	}
	if !report.Campaigns.Available || report.Campaigns.Data[0].Key != "Brand" {
		t.Errorf("campaigns = %+v", report.Campaigns)
	}
}

func TestAssembleDegradesNonCriticalSections(t *testing.T) {
	analytics, ads := weekFixture()
	analytics.fail[DimensionDevice] = errors.New("quota exceeded")
	analytics.fail[DimensionLandingPage] = errors.New("quota exceeded")
	ads.fail["keywords"] = true

	a := newTestAssembler(t, analytics, ads)
	obs := &recordingObserver{}
	a.SetObserver(obs)

	report, err := a.Assemble(context.Background(), "2024-03-01", "2024-03-07")
	if err != nil {
		t.Fatalf("section failures must not abort the run: %v", err)
	}

	if report.Devices.Available || report.Devices.Error == "" {
		t.Errorf("devices should be degraded with an error, got %+v", report.Devices)
	}
	if report.LandingPages.Available || report.Keywords.Available {
		t.Error("landing pages and keywords should be degraded")
	}
	if !report.Channels.Available || !report.Countries.Available || !report.Campaigns.Available {
		t.Error("other sections should still be available")
	}
	if len(report.WastedKeywords) != 0 {
		t.Errorf("degraded keywords should produce no waste rows, got %v", report.WastedKeywords)
	}

	degraded := map[string]bool{}
	for _, s := range report.DegradedSections() {
		degraded[s] = true
	}
	for _, want := range []string{SectionDevices, SectionLandingPages, SectionKeywords} {
		if !degraded[want] {
			t.Errorf("DegradedSections missing %s: %v", want, report.DegradedSections())
		}
	}
	if len(obs.degraded) != 3 {
		t.Errorf("observer saw %d degraded sections, want 3", len(obs.degraded))
	}
}

func TestAssembleCoreFailureIsFatal(t *testing.T) {
	analytics, ads := weekFixture()
	ads.fail["daily"] = true
	ads.fail["daily-basic"] = true

	a := newTestAssembler(t, analytics, ads)
	report, err := a.Assemble(context.Background(), "2024-03-01", "2024-03-07")
	if err == nil || report != nil {
		t.Fatalf("expected fatal error, got report=%v err=%v", report, err)
	}

	var fetchErr *SourceFetchError
	if !errors.As(err, &fetchErr) || fetchErr.Section != SectionAdsDaily || !fetchErr.Critical {
		t.Errorf("expected critical ads_daily SourceFetchError, got %v", err)
	}
	if !errors.Is(err, ErrSourceFetch) || !IsCritical(err) {
		t.Errorf("error should match ErrSourceFetch and be critical: %v", err)
	}
}

func TestAssembleAnalyticsCoreFailureStopsBeforeSections(t *testing.T) {
	analytics, ads := weekFixture()
	analytics.fail[DimensionDate] = errors.New("permission denied")

	a := newTestAssembler(t, analytics, ads)
	if _, err := a.Assemble(context.Background(), "2024-03-01", "2024-03-07"); err == nil {
		t.Fatal("expected error")
	}
	if len(analytics.calls) != 1 {
		t.Errorf("no section should be fetched after a core failure, calls=%v", analytics.calls)
	}
}

func TestAssembleFallbackDropsROAS(t *testing.T) {
	analytics, ads := weekFixture()
	ads.fail["daily"] = true

	a := newTestAssembler(t, analytics, ads)
	report, err := a.Assemble(context.Background(), "2024-03-01", "2024-03-07")
	if err != nil {
		t.Fatalf("fallback should rescue the daily query: %v", err)
	}
	if report.HasConversionValue || report.Summary.ROAS.Available {
		t.Error("ROAS must be unavailable when only the fallback query answered")
	}
	if !almostEqual(report.Summary.Cost, 2_000_000) {
		t.Errorf("fallback rows should still be merged, cost=%v", report.Summary.Cost)
	}
}

func TestAssembleFlagsAnomalies(t *testing.T) {
	analytics, ads := weekFixture()
	analytics.reports[DimensionCountry] = []source.Row{
		{"country": "Vietnam", "sessions": int64(125), "conversions": int64(15)},
		{"country": "South Korea", "sessions": int64(875), "conversions": int64(35)},
	}
	analytics.reports[DimensionCity] = []source.Row{
		{"city": "Hanoi", "country": "Vietnam", "sessions": int64(125), "conversions": int64(20)},
		{"city": "Seoul", "country": "South Korea", "sessions": int64(875), "conversions": int64(30)},
	}

	a := newTestAssembler(t, analytics, ads)
	report, err := a.Assemble(context.Background(), "2024-03-01", "2024-03-07")
	if err != nil {
		t.Fatal(err)
	}
	if report.Healthy() {
		t.Fatal("expected findings")
	}

	types := map[FindingType]Severity{}
	for _, f := range report.Findings {
		types[f.Type()] = f.Severity()
	}
	if types[FindingSuspiciousCountry] != SeverityHigh {
		t.Errorf("expected high suspicious country finding, got %v", types)
	}
	if types[FindingCityConcentration] != SeverityMedium {
		t.Errorf("expected medium city concentration finding for Hanoi, got %v", types)
	}
}

func TestAssembleSectionROASFollowsSectionRows(t *testing.T) {
	analytics, ads := weekFixture()
	a := newTestAssembler(t, analytics, ads)

	report, err := a.Assemble(context.Background(), "2024-03-01", "2024-03-07")
	if err != nil {
		t.Fatal(err)
	}
	if !report.HasConversionValue || !report.Summary.ROAS.Available {
		t.Fatal("daily rows carry conversion value, summary ROAS should be available")
	}
	// the campaign rows have no conversion value of their own
	if len(report.Campaigns.Data) != 1 || report.Campaigns.Data[0].ROAS.Available {
		t.Errorf("campaign ROAS = %+v, want unavailable", report.Campaigns.Data)
	}
}

func TestAssembleCityShareUsesReportedCities(t *testing.T) {
	analytics, ads := weekFixture()
	cities := []source.Row{
		{"city": "Seoul", "country": "South Korea", "sessions": int64(400), "conversions": int64(40)},
		{"city": "Hanoi", "country": "Vietnam", "sessions": int64(200), "conversions": int64(20)},
	}
	for i := 0; i < 10; i++ {
		cities = append(cities, source.Row{"city": fmt.Sprintf("Town %d", i), "country": "South Korea", "sessions": int64(50), "conversions": int64(5)})
	}
	analytics.reports[DimensionCity] = cities

	tests := []struct {
		name      string
		cityLimit int
		want      bool
	}{
		// 20/60 of the two listed cities
		{name: "trimmed table", cityLimit: 2, want: true},
		// 20/110 across every row
		{name: "full table", cityLimit: 30, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAssembler(t, analytics, ads)
			a.opts.CityLimit = tt.cityLimit
			report, err := a.Assemble(context.Background(), "2024-03-01", "2024-03-07")
			if err != nil {
				t.Fatal(err)
			}
			if len(report.Cities.Data) != min(tt.cityLimit, len(cities)) {
				t.Fatalf("city table has %d rows", len(report.Cities.Data))
			}
			got := false
			for _, f := range report.Findings {
				if f.Type() == FindingCityConcentration && f.Subject() == "Hanoi" {
					got = true
				}
			}
			if got != tt.want {
				t.Errorf("Hanoi concentration finding = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewAssemblerRequiresSources(t *testing.T) {
	_, ads := weekFixture()
	_, err := NewAssembler(nil, ads, fakeQueries{}, Options{})
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) || !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ConfigError, got %v", err)
	}
}

func TestAssembleInvalidRange(t *testing.T) {
	analytics, ads := weekFixture()
	a := newTestAssembler(t, analytics, ads)
	if _, err := a.Assemble(context.Background(), "2024-03-07", "2024-03-01"); !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("expected ErrInvalidDateRange, got %v", err)
	}
	if len(analytics.calls) != 0 {
		t.Error("no fetch should happen for an invalid range")
	}
}
