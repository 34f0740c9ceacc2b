package analysis

import (
	"encoding/json"
	"math"
	"testing"

	"adreport/pkg/source"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSafeDiv(t *testing.T) {
	for _, n := range []float64{0, 1, -5, 1e9} {
		if got := SafeDiv(n, 0); got != 0 {
			t.Errorf("SafeDiv(%v, 0) = %v, want 0", n, got)
		}
	}
	if got := SafeDiv(10, 4); got != 2.5 {
		t.Errorf("SafeDiv(10, 4) = %v", got)
	}
}

func TestRatios(t *testing.T) {
	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"ctr", CTR(25, 1000), 2.5},
		{"ctr zero impressions", CTR(25, 0), 0},
		{"cpc", CPC(5000, 10), 500},
		{"cpa", CPA(2_000_000, 50), 40_000},
		{"cpa zero conversions", CPA(100, 0), 0},
		{"session cvr", CVR(50, 1000), 5},
		{"click cvr", CVR(3, 60), 5},
		{"share", Share(1, 4), 25},
	}
	for _, tt := range tests {
		if !almostEqual(tt.got, tt.want) {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestROASAvailability(t *testing.T) {
	if r := ROAS(500, 100, false); r.Available {
		t.Errorf("ROAS without conversion value data must be unavailable, got %+v", r)
	}
	if r := ROAS(500, 100, true); !r.Available || r.Value != 5 {
		t.Errorf("ROAS = %+v, want 5", r)
	}
	if r := ROAS(0, 0, true); !r.Available || r.Value != 0 {
		t.Errorf("ROAS with zero cost = %+v, want available 0", r)
	}

	data, _ := json.Marshal(ROAS(1, 1, false))
	if string(data) != "null" {
		t.Errorf("unavailable ROAS marshals to %s, want null", data)
	}
}

func TestDelta(t *testing.T) {
	tests := []struct {
		cur, prev float64
		available bool
		percent   float64
		direction Direction
	}{
		{100, 50, true, 100, DirectionIncrease},
		{50, 100, true, -50, DirectionDecrease},
		{80, 80, true, 0, DirectionUnchanged},
		{10, 0, false, 0, DirectionNone},
		{10, -5, false, 0, DirectionNone},
		{0, 10, true, -100, DirectionDecrease},
	}
	for _, tt := range tests {
		c := Delta(tt.cur, tt.prev)
		if c.Available != tt.available || !almostEqual(c.Percent, tt.percent) || c.Direction != tt.direction {
			t.Errorf("Delta(%v, %v) = %+v, want available=%v percent=%v direction=%s",
				tt.cur, tt.prev, c, tt.available, tt.percent, tt.direction)
		}
	}
}

func TestDiscrepancy(t *testing.T) {
	if d := Discrepancy(100, 40); !d.Available || !almostEqual(d.Value, 60) {
		t.Errorf("Discrepancy(100, 40) = %+v", d)
	}
	if d := Discrepancy(0, 40); d.Available {
		t.Errorf("Discrepancy with zero analytics conversions should be unavailable")
	}
	if d := Discrepancy(40, 0); d.Available {
		t.Errorf("Discrepancy with zero ads conversions should be unavailable")
	}
}

func TestSummarizeUsesRatioOfSums(t *testing.T) {
	dm := NewDailyMetrics([]string{"2024-03-01", "2024-03-02"})
	// Day one: 1 conversion from 1 session (100%). Day two: 1 from 99 (~1%).
	_, _ = dm.MergeAnalytics("a", rowsFor(map[string][2]float64{
		"2024-03-01": {1, 1},
		"2024-03-02": {99, 1},
	}), MetricConversions)

	s := Summarize(dm.Dates(), dm, false)
	if !almostEqual(s.CVR, 2) {
		t.Errorf("CVR = %v, want 2 (ratio of sums), not the average of daily ratios", s.CVR)
	}
	if s.ROAS.Available {
		t.Error("ROAS must be unavailable without conversion value data")
	}
	if s.Days != 2 {
		t.Errorf("Days = %d, want 2", s.Days)
	}
}

func TestComparePeriods(t *testing.T) {
	ws, err := CalculateWindows("2024-03-01", "2024-03-04")
	if err != nil {
		t.Fatal(err)
	}
	dm := NewDailyMetrics(ws.All)
	_, _ = dm.MergeAnalytics("a", rowsFor(map[string][2]float64{
		"2024-03-01": {40, 2},
		"2024-03-02": {50, 2},
		"2024-03-03": {100, 4},
	}), MetricConversions)

	periods := ComparePeriods(ws, dm, false)
	if len(periods) != 3 {
		t.Fatalf("expected 3 periods, got %d", len(periods))
	}

	dod := periods[0]
	if dod.Name != PeriodDayOverDay || !dod.Comparable {
		t.Fatalf("unexpected day-over-day: %+v", dod)
	}
	if !dod.Sessions.Available || !almostEqual(dod.Sessions.Percent, 100) || dod.Sessions.Direction != DirectionIncrease {
		t.Errorf("day-over-day sessions = %+v, want +100%%", dod.Sessions)
	}

	wow := periods[1]
	if wow.Comparable || wow.Sessions.Available || wow.Sessions.Direction != DirectionNone {
		t.Errorf("week-over-week with empty previous window should not be comparable: %+v", wow)
	}
}

func rowsFor(days map[string][2]float64) []source.Row {
	out := make([]source.Row, 0, len(days))
	for d, v := range days {
		out = append(out, source.Row{"date": d, "sessions": v[0], "conversions": v[1]})
	}
	return out
}
