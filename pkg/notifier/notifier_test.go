package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"adreport/pkg/analysis"
)

func sampleReport() *analysis.Report {
	return &analysis.Report{
		StartDate: "2024-03-01",
		EndDate:   "2024-03-07",
		Summary: analysis.AggregateTotals{
			Sessions:             1000,
			AnalyticsConversions: 50,
			Cost:                 2_000_000,
			CVR:                  5,
			CPA:                  40_000,
			AdsConversions:       45,
		},
		Periods: []analysis.PeriodComparison{{
			Name:     analysis.PeriodWeekOverWeek,
			Sessions: analysis.Change{Percent: 25, Available: true, Direction: analysis.DirectionIncrease},
		}},
		Keywords: analysis.Section[[]analysis.DimensionRow]{Error: "boom"},
	}
}

func TestBuildHeadline(t *testing.T) {
	r := sampleReport()
	r.Channels.Available = true
	h := BuildHeadline(r, Options{Locale: "ko", Currency: "KRW"}, "")

	if h.Title != "마케팅 성과 리포트" || h.Period != "2024-03-01 ~ 2024-03-07" {
		t.Errorf("unexpected title/period %q %q", h.Title, h.Period)
	}
	if h.Metrics[0].Value != "1,000" || h.Metrics[0].Change != "+25.0%" {
		t.Errorf("sessions metric = %+v", h.Metrics[0])
	}
	if h.Metrics[1].Change != "" {
		t.Errorf("unavailable change should be empty, got %q", h.Metrics[1].Change)
	}
	if h.Metrics[3].Value != "₩2,000,000" {
		t.Errorf("cost metric = %+v", h.Metrics[3])
	}
	if !h.Healthy {
		t.Error("report without findings should be healthy")
	}
	found := false
	for _, d := range h.Degraded {
		if d == analysis.SectionKeywords {
			found = true
		}
	}
	if !found {
		t.Errorf("keywords should be listed as degraded: %v", h.Degraded)
	}
	if h.Label("anomalies") != "이상 징후" {
		t.Errorf("label = %q", h.Label("anomalies"))
	}
}

type fakeNotifier struct {
	name  string
	err   error
	calls int
}

func (f *fakeNotifier) Name() string { return f.name }
func (f *fakeNotifier) NotifyReport(context.Context, *Headline) error {
	f.calls++
	return f.err
}

func TestDispatcher(t *testing.T) {
	always := &fakeNotifier{name: "always"}
	onlyFindings := &fakeNotifier{name: "findings"}
	broken := &fakeNotifier{name: "broken", err: errors.New("down")}

	d := NewDispatcher(Options{Locale: "en"})
	d.Add(always, false)
	d.Add(onlyFindings, true)
	d.Add(broken, false)

	err := d.Notify(context.Background(), sampleReport(), "")
	if err == nil || !strings.Contains(err.Error(), "broken: down") {
		t.Fatalf("expected joined error from broken notifier, got %v", err)
	}
	if always.calls != 1 || onlyFindings.calls != 0 || broken.calls != 1 {
		t.Errorf("calls: always=%d findings=%d broken=%d", always.calls, onlyFindings.calls, broken.calls)
	}

	r := sampleReport()
	r.Findings = []analysis.Finding{analysis.NewFinding(analysis.FindingCityConcentration, analysis.SeverityMedium, "Hanoi", 40, "Hanoi")}
	d.Notify(context.Background(), r, "")
	if onlyFindings.calls != 1 {
		t.Errorf("findings-only notifier should fire for unhealthy report")
	}

	if err := NewDispatcher(Options{}).Notify(context.Background(), sampleReport(), ""); err != nil {
		t.Errorf("empty dispatcher returned %v", err)
	}
}

func TestTelegramNotifier(t *testing.T) {
	var got TelegramMessage
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(TelegramResponse{OK: true})
	}))
	defer srv.Close()

	tg, err := NewTelegramNotifier(TelegramConfig{BotToken: "123:abc", ChatID: "-100", APIBase: srv.URL})
	if err != nil {
		t.Fatalf("NewTelegramNotifier failed: %v", err)
	}

	r := sampleReport()
	r.Findings = []analysis.Finding{analysis.NewFinding(analysis.FindingSuspiciousCountry, analysis.SeverityHigh, "X", 12, "X <converts> & more")}
	h := BuildHeadline(r, Options{Locale: "en", Currency: "KRW"}, "https://example.com/r?a=1&b=2")
	if err := tg.NotifyReport(context.Background(), h); err != nil {
		t.Fatalf("NotifyReport failed: %v", err)
	}

	if path != "/bot123:abc/sendMessage" {
		t.Errorf("path = %s", path)
	}
	if got.ChatID != "-100" || got.ParseMode != "HTML" {
		t.Errorf("unexpected message %+v", got)
	}
	for _, want := range []string{"<b>Marketing Performance Report</b>", "X &lt;converts&gt; &amp; more", `href="https://example.com/r?a=1&amp;b=2"`} {
		if !strings.Contains(got.Text, want) {
			t.Errorf("text missing %q:\n%s", want, got.Text)
		}
	}
}

func TestTelegramAPIError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(TelegramResponse{OK: false, ErrorCode: 400, Description: "chat not found"})
	}))
	defer srv.Close()

	tg, _ := NewTelegramNotifier(TelegramConfig{BotToken: "t", ChatID: "c", APIBase: srv.URL, MaxRetries: 1, RetryDelay: time.Millisecond})
	err := tg.SendMessage(context.Background(), "hi")
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Fatalf("expected API error, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}

	if _, err := NewTelegramNotifier(TelegramConfig{}); err == nil {
		t.Error("expected error for missing token")
	}
}
