package analysis

import (
	"testing"

	"adreport/pkg/source"
)

func TestGroupAdsRows(t *testing.T) {
	rows := []source.Row{
		{source.FieldCampaignName: "Brand", source.FieldImpressions: int64(1000), source.FieldClicks: int64(50),
			source.FieldCostMicros: int64(100_000_000), source.FieldConversions: 2.0, source.FieldConversionsValue: 400.0},
		{source.FieldCampaignName: "Brand", source.FieldImpressions: int64(1000), source.FieldClicks: int64(50),
			source.FieldCostMicros: int64(100_000_000), source.FieldConversions: 3.0, source.FieldConversionsValue: 600.0},
		{source.FieldCampaignName: "Generic", source.FieldImpressions: int64(4000), source.FieldClicks: int64(40),
			source.FieldCostMicros: int64(80_000_000), source.FieldConversions: 0.0},
		{source.FieldCampaignName: "", source.FieldClicks: int64(1)},
	}

	got := GroupAdsRows(rows, source.FieldCampaignName)
	if len(got) != 3 {
		t.Fatalf("expected 3 groups, got %d: %+v", len(got), got)
	}

	brand := got[0]
	if brand.Key != "Brand" || brand.Clicks != 100 || brand.Cost != 200 || brand.Conversions != 5 {
		t.Errorf("brand totals = %+v", brand)
	}
	if !almostEqual(brand.CTR, 5) || !almostEqual(brand.CPC, 2) || !almostEqual(brand.CPA, 40) || !almostEqual(brand.CVR, 5) {
		t.Errorf("brand ratios computed from grouped totals wrong: %+v", brand)
	}
	if !brand.ROAS.Available || !almostEqual(brand.ROAS.Value, 5) {
		t.Errorf("brand ROAS = %+v, want 5", brand.ROAS)
	}

	if got[1].Key != "Generic" || got[1].CPA != 0 {
		t.Errorf("generic row = %+v", got[1])
	}
	if got[2].Key != NotSet {
		t.Errorf("empty key should group as %q, got %q", NotSet, got[2].Key)
	}
}

func TestGroupAdsRowsWithoutConversionValue(t *testing.T) {
	rows := []source.Row{
		{source.FieldKeywordText: "crm", source.FieldKeywordMatchType: "EXACT", source.FieldCostMicros: int64(1_000_000)},
	}
	got := GroupAdsRows(rows, source.FieldKeywordText)
	if got[0].ROAS.Available {
		t.Error("ROAS should be unavailable when no row carried conversion value")
	}
	if got[0].MatchType != "EXACT" {
		t.Errorf("match type = %q", got[0].MatchType)
	}
}

func TestGroupCountriesAndGeoSummary(t *testing.T) {
	targets := NewTargetSet(DefaultTargetCountries)
	rows := []source.Row{
		{"country": "United States", "sessions": int64(500), "conversions": int64(30)},
		{"country": "Vietnam", "sessions": int64(100), "conversions": int64(10)},
		{"country": "Germany", "sessions": int64(200), "conversions": int64(0)},
	}

	countries := GroupCountries(rows, MetricConversions, targets)
	if countries[0].Country != "United States" || !countries[0].Target || !almostEqual(countries[0].Share, 75) {
		t.Errorf("first country = %+v", countries[0])
	}
	if countries[1].Country != "Vietnam" || countries[1].Target || !almostEqual(countries[1].CVR, 10) {
		t.Errorf("second country = %+v", countries[1])
	}

	geo := SummarizeGeo(countries)
	if geo.TargetShare != 75 || geo.NonTargetShare != 25 || geo.ActiveCountries != 2 || geo.TotalConversions != 40 {
		t.Errorf("geo summary = %+v", geo)
	}

	if empty := SummarizeGeo(nil); empty.TargetShare != 0 || empty.NonTargetShare != 0 {
		t.Errorf("empty geo summary = %+v", empty)
	}
}

func TestGroupCitiesShareUsesAllRows(t *testing.T) {
	rows := []source.Row{
		{"city": "Hanoi", "country": "Vietnam", "sessions": int64(10), "conversions": int64(6)},
		{"city": "Seoul", "country": "South Korea", "sessions": int64(10), "conversions": int64(3)},
		{"city": "Paris", "country": "France", "sessions": int64(10), "conversions": int64(1)},
	}
	cities := GroupCities(rows, MetricConversions, NewTargetSet(DefaultTargetCountries))
	if cities[0].City != "Hanoi" || !almostEqual(cities[0].Share, 60) || cities[0].Target {
		t.Errorf("top city = %+v", cities[0])
	}
	if !cities[1].Target {
		t.Errorf("Seoul should be a target-country city")
	}
}

func TestGroupEventsFiltersAndFills(t *testing.T) {
	rows := []source.Row{
		{"eventName": "page_view", "eventCount": int64(900)},
		{"eventName": "email_click", "eventCount": int64(4)},
		{"eventName": "contact_form_submit", "eventCount": int64(7)},
		{"eventName": "email_click", "eventCount": int64(2)},
	}
	got := GroupEvents(rows, []string{"contact_form_submit", "email_click", "kakao_click"})
	if len(got) != 3 {
		t.Fatalf("expected configured events only, got %+v", got)
	}
	if got[0].Event != "contact_form_submit" || got[0].Count != 7 {
		t.Errorf("got[0] = %+v", got[0])
	}
	if got[1].Event != "email_click" || got[1].Count != 6 {
		t.Errorf("got[1] = %+v", got[1])
	}
	if got[2].Event != "kakao_click" || got[2].Count != 0 {
		t.Errorf("missing configured event should be zero, got %+v", got[2])
	}
}

func TestGroupPagesWeightsNonAdditiveMetrics(t *testing.T) {
	rows := []source.Row{
		{"pagePath": "/", "screenPageViews": int64(300), "averageSessionDuration": 60.0, "bounceRate": 0.5},
		{"pagePath": "/", "screenPageViews": int64(100), "averageSessionDuration": 20.0, "bounceRate": 0.1},
		{"pagePath": "/pricing", "screenPageViews": int64(50), "averageSessionDuration": 90.0, "bounceRate": 0.2},
	}
	got := GroupPages(rows)
	if got[0].Path != "/" || got[0].Views != 400 {
		t.Fatalf("got[0] = %+v", got[0])
	}
	if !almostEqual(got[0].AvgSessionDuration, 50) || !almostEqual(got[0].BounceRate, 40) {
		t.Errorf("weighted metrics = %+v, want duration 50 bounce 40", got[0])
	}
}

func TestGroupBreakdownSortsNumericKeys(t *testing.T) {
	rows := []source.Row{
		{"hour": "10", "sessions": int64(5), "conversions": int64(1)},
		{"hour": "2", "sessions": int64(50), "conversions": int64(1)},
		{"hour": "23", "sessions": int64(1), "conversions": int64(0)},
	}
	got := GroupBreakdown(rows, DimensionHour, MetricConversions, true)
	if got[0].Key != "2" || got[1].Key != "10" || got[2].Key != "23" {
		t.Errorf("hour order = %v, %v, %v", got[0].Key, got[1].Key, got[2].Key)
	}

	devices := GroupBreakdown([]source.Row{
		{"deviceCategory": "tablet", "sessions": int64(5)},
		{"deviceCategory": "mobile", "sessions": int64(70)},
		{"deviceCategory": "desktop", "sessions": int64(25)},
	}, DimensionDevice, MetricConversions, false)
	if devices[0].Key != "mobile" || devices[2].Key != "tablet" {
		t.Errorf("device order = %+v", devices)
	}
}

func TestGroupChannelsShare(t *testing.T) {
	rows := []source.Row{
		{"sessionDefaultChannelGroup": "Paid Search", "sessions": int64(300), "totalUsers": int64(250), "conversions": int64(15)},
		{"sessionDefaultChannelGroup": "Organic Search", "sessions": int64(100), "totalUsers": int64(90), "conversions": int64(2)},
	}
	got := GroupChannels(rows, MetricConversions)
	if got[0].Channel != "Paid Search" || !almostEqual(got[0].Share, 75) || !almostEqual(got[0].CVR, 5) {
		t.Errorf("channel = %+v", got[0])
	}
}
