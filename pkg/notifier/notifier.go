// Package notifier pushes a short summary of a finished report to chat
// channels.
package notifier

import (
	"context"
	"errors"
	"fmt"

	"adreport/pkg/analysis"
	"adreport/pkg/i18n"
	"adreport/pkg/logger"
	"adreport/pkg/report"

	"go.uber.org/zap"
)

// ReportNotifier delivers one report summary
type ReportNotifier interface {
	Name() string
	NotifyReport(ctx context.Context, h *Headline) error
}

// Options controls how headlines are worded
type Options struct {
	Locale   string
	Currency string
}

// Metric is one headline figure with its week-over-week change
type Metric struct {
	Label  string
	Value  string
	Change string // empty when there is no comparison
}

// Headline is the notification-sized view of a report
type Headline struct {
	Title    string
	Period   string
	Metrics  []Metric
	Findings []string
	Healthy  bool
	Degraded []string
	Link     string
	Labels   map[string]string // UI labels for the report locale
}

// Label returns the localized UI string for key
func (h *Headline) Label(key string) string {
	if v, ok := h.Labels[key]; ok {
		return v
	}
	return key
}

// BuildHeadline summarizes r. link may be empty.
func BuildHeadline(r *analysis.Report, opts Options, link string) *Headline {
	L := func(k string) string { return i18n.Label(opts.Locale, k) }
	f := report.NewFormatter(opts.Locale, opts.Currency)

	wow, hasWoW := r.Period(analysis.PeriodWeekOverWeek)
	change := func(c analysis.Change) string {
		if !hasWoW || !c.Available {
			return ""
		}
		return fmt.Sprintf("%+.1f%%", c.Percent)
	}

	h := &Headline{
		Title:  L("title"),
		Period: r.StartDate + " ~ " + r.EndDate,
		Metrics: []Metric{
			{Label: L("sessions"), Value: f.Number(r.Summary.Sessions), Change: change(wow.Sessions)},
			{Label: L("conversions"), Value: f.Number(r.Summary.AnalyticsConversions), Change: change(wow.Conversions)},
			{Label: L("cvr"), Value: f.Percent(r.Summary.CVR), Change: change(wow.CVR)},
			{Label: L("cost"), Value: f.Money(r.Summary.Cost), Change: change(wow.Cost)},
			{Label: L("cpa"), Value: f.Money(r.Summary.CPA), Change: change(wow.CPA)},
			{Label: L("ads_conversions"), Value: f.Decimal(r.Summary.AdsConversions, 1), Change: change(wow.AdsConversions)},
		},
		Healthy:  r.Healthy(),
		Degraded: r.DegradedSections(),
		Link:     link,
		Labels:   i18n.Labels(opts.Locale),
	}
	if r.Summary.ROAS.Available {
		h.Metrics = append(h.Metrics, Metric{Label: L("roas"), Value: f.Decimal(r.Summary.ROAS.Value, 2)})
	}
	for _, fd := range r.Findings {
		h.Findings = append(h.Findings, fmt.Sprintf("[%s] %s", L("severity_"+string(fd.Severity())), fd.Detail()))
	}
	return h
}

type target struct {
	notifier     ReportNotifier
	findingsOnly bool
}

// Dispatcher fans a report out to every registered notifier
type Dispatcher struct {
	opts    Options
	targets []target
}

// NewDispatcher creates an empty dispatcher
func NewDispatcher(opts Options) *Dispatcher {
	return &Dispatcher{opts: opts}
}

// Add registers n. With findingsOnly the notifier is skipped for healthy
// reports.
func (d *Dispatcher) Add(n ReportNotifier, findingsOnly bool) {
	d.targets = append(d.targets, target{notifier: n, findingsOnly: findingsOnly})
}

// Len returns the number of registered notifiers
func (d *Dispatcher) Len() int {
	return len(d.targets)
}

// Notify sends r to every notifier. One failing channel does not stop the
// others; the errors are joined.
func (d *Dispatcher) Notify(ctx context.Context, r *analysis.Report, link string) error {
	if r == nil || len(d.targets) == 0 {
		return nil
	}
	log := logger.FromContext(ctx)
	h := BuildHeadline(r, d.opts, link)

	var errs []error
	for _, t := range d.targets {
		if t.findingsOnly && h.Healthy {
			log.Debug("Skipping notification for healthy report", zap.String("notifier", t.notifier.Name()))
			continue
		}
		if err := t.notifier.NotifyReport(ctx, h); err != nil {
			log.Error("Report notification failed", zap.String("notifier", t.notifier.Name()), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", t.notifier.Name(), err))
			continue
		}
		log.Info("Report notification sent", zap.String("notifier", t.notifier.Name()))
	}
	return errors.Join(errs...)
}
