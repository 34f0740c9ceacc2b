// Package metrics exposes report pipeline metrics to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"adreport/pkg/analysis"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "adreport"

// Recorder holds the pipeline metrics. It implements analysis.Observer.
type Recorder struct {
	registry *prometheus.Registry

	FetchDuration    *prometheus.HistogramVec
	FetchErrors      *prometheus.CounterVec
	SectionsDegraded *prometheus.CounterVec
	Runs             *prometheus.CounterVec
	RunDuration      prometheus.Histogram
	LastSuccess      prometheus.Gauge
	Findings         *prometheus.GaugeVec
	HTTPRequests     *prometheus.CounterVec
	HTTPLatency      *prometheus.HistogramVec
}

var _ analysis.Observer = (*Recorder)(nil)

// NewRecorder registers the metrics on a fresh registry together with the
// process and Go runtime collectors
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	reg.MustRegister(collectors.NewGoCollector())
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,
		FetchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Source fetch latency by source and section",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"source", "section"}),
		FetchErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_errors_total",
			Help:      "Failed source fetches by source and section",
		}, []string{"source", "section"}),
		SectionsDegraded: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "section_degraded_total",
			Help:      "Report sections rendered without data",
		}, []string{"section"}),
		Runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Report runs by outcome",
		}, []string{"status"}),
		RunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "End to end report run latency",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		}),
		LastSuccess: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful report",
		}),
		Findings: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "findings",
			Help:      "Anomaly findings in the last report by type",
		}, []string{"type"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		HTTPLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// ObserveFetch records one source fetch
func (r *Recorder) ObserveFetch(source, section string, elapsed time.Duration, err error) {
	r.FetchDuration.WithLabelValues(source, section).Observe(elapsed.Seconds())
	if err != nil {
		r.FetchErrors.WithLabelValues(source, section).Inc()
	}
}

// SectionDegraded records a section that fell back to "no data"
func (r *Recorder) SectionDegraded(section string) {
	r.SectionsDegraded.WithLabelValues(section).Inc()
}

// ObserveRun records a finished run. A nil report means the run failed.
func (r *Recorder) ObserveRun(report *analysis.Report, elapsed time.Duration, err error) {
	r.RunDuration.Observe(elapsed.Seconds())
	if err != nil || report == nil {
		r.Runs.WithLabelValues("failed").Inc()
		return
	}
	r.Runs.WithLabelValues("success").Inc()
	r.LastSuccess.SetToCurrentTime()

	counts := map[analysis.FindingType]int{
		analysis.FindingSourceDiscrepancy: 0,
		analysis.FindingSuspiciousCountry: 0,
		analysis.FindingCityConcentration: 0,
	}
	for _, f := range report.Findings {
		counts[f.Type()]++
	}
	for t, n := range counts {
		r.Findings.WithLabelValues(string(t)).Set(float64(n))
	}
}

// ObserveHTTP records one served request
func (r *Recorder) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	r.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.HTTPLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Registry returns the registry backing the recorder
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus text format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
