// Package report renders an assembled analysis.Report into a self-contained
// HTML document and writes it to the output directory.
package report

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"time"

	"adreport/pkg/analysis"
	"adreport/pkg/i18n"
	"adreport/pkg/logger"

	"go.uber.org/zap"
)

// ROAS display modes for reports without conversion value
const (
	ROASDisplayNA   = "na"
	ROASDisplayOmit = "omit"
)

//go:embed templates/report.html.tmpl
var reportTemplate string

// Renderer turns a report tree into a document
type Renderer interface {
	Render(ctx context.Context, r *analysis.Report) ([]byte, error)
}

// Options controls presentation only. The numbers come from the report.
type Options struct {
	Locale      string
	Currency    string
	ROASDisplay string
	Charts      bool
	FontPath    string
	Title       string
}

// HTMLRenderer renders reports with html/template
type HTMLRenderer struct {
	opts    Options
	tmpl    *template.Template
	charts  *ChartGenerator
	format  *Formatter
}

var _ Renderer = (*HTMLRenderer)(nil)

// NewHTMLRenderer parses the embedded template for opts.Locale
func NewHTMLRenderer(opts Options) (*HTMLRenderer, error) {
	if opts.Locale == "" {
		opts.Locale = i18n.English
	}
	if !i18n.Supported(opts.Locale) {
		return nil, fmt.Errorf("unsupported locale: %s", opts.Locale)
	}
	if opts.Currency == "" {
		opts.Currency = "KRW"
	}
	if opts.ROASDisplay == "" {
		opts.ROASDisplay = ROASDisplayNA
	}
	if opts.Title == "" {
		opts.Title = i18n.Label(opts.Locale, "title")
	}

	r := &HTMLRenderer{
		opts:    opts,
		format:  NewFormatter(opts.Locale, opts.Currency),
	}
	if opts.Charts {
		r.charts = NewChartGenerator(DefaultChartConfig(), NewFontManager(opts.FontPath))
	}

	tmpl, err := template.New("report").Funcs(r.funcs()).Parse(reportTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse report template: %w", err)
	}
	r.tmpl = tmpl
	return r, nil
}

type reportView struct {
	*analysis.Report
	Title     string
	Locale    string
	Currency  string
	L         map[string]string
	ShowROAS  bool
	Generated string
	Charts    map[string]template.URL
}

// Render renders r as one HTML document
func (h *HTMLRenderer) Render(ctx context.Context, r *analysis.Report) ([]byte, error) {
	if r == nil {
		return nil, errors.New("report cannot be nil")
	}

	generated := r.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	view := reportView{
		Report:    r,
		Title:     h.opts.Title,
		Locale:    h.opts.Locale,
		Currency:  h.opts.Currency,
		L:         i18n.Labels(h.opts.Locale),
		ShowROAS:  r.HasConversionValue || h.opts.ROASDisplay != ROASDisplayOmit,
		Generated: generated.Format("2006-01-02 15:04"),
		Charts:    h.renderCharts(ctx, r),
	}

	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return buf.Bytes(), nil
}

func (h *HTMLRenderer) renderCharts(ctx context.Context, r *analysis.Report) map[string]template.URL {
	out := make(map[string]template.URL)
	if h.charts == nil {
		return out
	}
	log := logger.FromContext(ctx)
	L := func(k string) string { return i18n.Label(h.opts.Locale, k) }

	add := func(name string, data []byte, err error) {
		if err != nil {
			if !errors.Is(err, ErrNoChartData) {
				log.Warn("Chart rendering failed", zap.String("chart", name), zap.Error(err))
			}
			return
		}
		// data URIs built from our own PNG bytes
		out[name] = template.URL(DataURI(data))
	}

	if len(r.Daily) > 0 {
		dates := make([]string, len(r.Daily))
		sessions := make([]float64, len(r.Daily))
		conversions := make([]float64, len(r.Daily))
		adsConversions := make([]float64, len(r.Daily))
		cost := make([]float64, len(r.Daily))
		for i, p := range r.Daily {
			dates[i] = p.Date
			if len(p.Date) == len("2006-01-02") {
				dates[i] = p.Date[5:]
			}
			sessions[i] = p.Sessions
			conversions[i] = p.AnalyticsConversions
			adsConversions[i] = p.AdsConversions
			cost[i] = p.Cost
		}
		data, err := h.charts.LineChart(L("sessions"), dates, []Series{{Name: L("sessions"), Values: sessions}})
		add("sessions", data, err)
		data, err = h.charts.LineChart(L("conversions"), dates, []Series{
			{Name: L("conversions"), Values: conversions},
			{Name: L("ads_conversions"), Values: adsConversions},
		})
		add("conversions", data, err)
		data, err = h.charts.LineChart(L("cost"), dates, []Series{{Name: L("cost"), Values: cost}})
		add("cost", data, err)
	}

	if r.Channels.Available {
		rows := r.Channels.Data[:min(8, len(r.Channels.Data))]
		labels := make([]string, len(rows))
		values := make([]float64, len(rows))
		for i, c := range rows {
			labels[i] = i18n.Channel(h.opts.Locale, c.Channel)
			values[i] = c.Sessions
		}
		data, err := h.charts.BarChart(L("channels"), labels, values)
		add("channels", data, err)
	}

	if r.Countries.Available {
		rows := r.Countries.Data[:min(10, len(r.Countries.Data))]
		labels := make([]string, len(rows))
		values := make([]float64, len(rows))
		for i, c := range rows {
			labels[i] = i18n.Country(h.opts.Locale, c.Country)
			values[i] = c.Conversions
		}
		data, err := h.charts.BarChart(L("countries"), labels, values)
		add("countries", data, err)
	}
	return out
}

func (h *HTMLRenderer) funcs() template.FuncMap {
	locale := h.opts.Locale
	return template.FuncMap{
		"country": func(s string) string { return i18n.Country(locale, s) },
		"channel": func(s string) string { return i18n.Channel(locale, s) },
		"event":   func(s string) string { return i18n.Event(locale, s) },
		"weekday": func(s string) string { return i18n.Weekday(locale, s) },
		"label":   func(s string) string { return i18n.Label(locale, s) },
		"num":     h.format.Number,
		"dec":     h.format.Decimal,
		"pct":     h.format.Percent,
		"money":   h.format.Money,
		"roas": func(o analysis.Optional) string {
			if !o.Available {
				return i18n.Label(locale, "not_available")
			}
			return h.format.Decimal(o.Value, 2)
		},
		"optpct": func(o analysis.Optional) string {
			if !o.Available {
				return i18n.Label(locale, "not_available")
			}
			return h.format.Percent(o.Value)
		},
		"change": func(c analysis.Change) string {
			if !c.Available {
				return i18n.Label(locale, "not_available")
			}
			return fmt.Sprintf("%+.1f%%", c.Percent)
		},
		"trend": func(c analysis.Change) string {
			if !c.Available {
				return "flat"
			}
			switch c.Direction {
			case analysis.DirectionIncrease:
				return "up"
			case analysis.DirectionDecrease:
				return "down"
			}
			return "flat"
		},
		"severity": func(s analysis.Severity) string {
			if s == analysis.SeverityHigh {
				return "danger"
			}
			return "warning"
		},
		"truncate": func(s string, n int) string { return truncate(s, n) },
		"dimensionTable": func(key string, matchType bool, rows []analysis.DimensionRow, showROAS bool) dimensionTable {
			return dimensionTable{Key: key, MatchType: matchType, Rows: rows, ShowROAS: showROAS}
		},
		"breakdownTable": func(key string, weekday bool, rows []analysis.BreakdownRow) breakdownTable {
			return breakdownTable{Key: key, Weekday: weekday, Rows: rows}
		},
	}
}

type dimensionTable struct {
	Key       string
	MatchType bool
	Rows      []analysis.DimensionRow
	ShowROAS  bool
}

type breakdownTable struct {
	Key     string
	Weekday bool
	Rows    []analysis.BreakdownRow
}
