package analysis

import (
	"context"
	"fmt"
	"time"

	"adreport/pkg/logger"
	"adreport/pkg/source"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Defaults for Options
const (
	DefaultRowLimit    = 100
	DefaultTableLimit  = 20
	DefaultCityLimit   = 30
	DefaultConcurrency = 4
)

// Observer receives fetch and degradation events, typically for metrics
type Observer interface {
	ObserveFetch(source, section string, elapsed time.Duration, err error)
	SectionDegraded(section string)
}

type nopObserver struct{}

func (nopObserver) ObserveFetch(string, string, time.Duration, error) {}
func (nopObserver) SectionDegraded(string)                             {}

// Options tunes one assembler
type Options struct {
	TargetCountries            []string
	ConversionEvents           []string
	ConversionMetric           string  // analytics conversion metric name
	CityConcentrationThreshold float64 // percent
	WasteTopN                  int
	RowLimit                   int // analytics rows requested per section
	TableLimit                 int // rows kept per rendered table
	CityLimit                  int
	Concurrency                int // parallel section fetches, 1 = sequential
}

// DefaultOptions returns the standard report options
func DefaultOptions() Options {
	return Options{
		TargetCountries:            DefaultTargetCountries,
		ConversionEvents:           DefaultConversionEvents,
		ConversionMetric:           MetricConversions,
		CityConcentrationThreshold: DefaultCityConcentrationThreshold,
		WasteTopN:                  DefaultWasteTopN,
		RowLimit:                   DefaultRowLimit,
		TableLimit:                 DefaultTableLimit,
		CityLimit:                  DefaultCityLimit,
		Concurrency:                DefaultConcurrency,
	}
}

func (o *Options) setDefaults() {
	d := DefaultOptions()
	if o.TargetCountries == nil {
		o.TargetCountries = d.TargetCountries
	}
	if o.ConversionEvents == nil {
		o.ConversionEvents = d.ConversionEvents
	}
	if o.ConversionMetric == "" {
		o.ConversionMetric = d.ConversionMetric
	}
	if o.CityConcentrationThreshold <= 0 {
		o.CityConcentrationThreshold = d.CityConcentrationThreshold
	}
	if o.WasteTopN <= 0 {
		o.WasteTopN = d.WasteTopN
	}
	if o.RowLimit <= 0 {
		o.RowLimit = d.RowLimit
	}
	if o.TableLimit <= 0 {
		o.TableLimit = d.TableLimit
	}
	if o.CityLimit <= 0 {
		o.CityLimit = d.CityLimit
	}
	if o.Concurrency <= 0 {
		o.Concurrency = d.Concurrency
	}
}

// Assembler orchestrates one report run: windows, fetches, aggregation,
// derived metrics and anomaly detection
type Assembler struct {
	analytics source.AnalyticsSource
	ads       source.AdsSource
	queries   source.QueryBuilder
	targets   TargetSet
	detector  *Detector
	opts      Options
	observer  Observer
	newRunID  func() string
	now       func() time.Time
}

// NewAssembler creates an assembler over the given sources
func NewAssembler(analytics source.AnalyticsSource, ads source.AdsSource, queries source.QueryBuilder, opts Options) (*Assembler, error) {
	if analytics == nil {
		return nil, NewConfigError("analytics", "analytics source is required", nil)
	}
	if ads == nil {
		return nil, NewConfigError("ads", "ads source is required", nil)
	}
	if queries == nil {
		return nil, NewConfigError("ads", "ads query builder is required", nil)
	}

	opts.setDefaults()
	targets := NewTargetSet(opts.TargetCountries)

	return &Assembler{
		analytics: analytics,
		ads:       ads,
		queries:   queries,
		targets:   targets,
		detector:  NewDetector(targets, opts.CityConcentrationThreshold),
		opts:      opts,
		observer:  nopObserver{},
		newRunID:  func() string { return uuid.New().String() },
		now:       time.Now,
	}, nil
}

// SetObserver installs an observer for fetch events
func (a *Assembler) SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	a.observer = o
}

// Options returns the effective options
func (a *Assembler) Options() Options {
	return a.opts
}

// Assemble builds the report for start..end. Failure of the daily analytics
// or ads fetch is fatal; every other section degrades on its own.
func (a *Assembler) Assemble(ctx context.Context, start, end string) (*Report, error) {
	ws, err := CalculateWindows(start, end)
	if err != nil {
		return nil, err
	}

	runID := a.newRunID()
	ctx = logger.WithRunID(ctx, runID)
	log := logger.FromContext(ctx)
	began := a.now()

	log.Info("Assembling report",
		zap.String("start_date", start),
		zap.String("end_date", end),
		zap.Int("days", len(ws.All)))

	daily := NewDailyMetrics(ws.All)
	if err := a.fetchCore(ctx, runID, ws, daily); err != nil {
		log.Error("Core metrics fetch failed", zap.Error(err))
		return nil, err
	}

	hasValue := daily.HasConversionValue()
	report := &Report{
		RunID:              runID,
		StartDate:          start,
		EndDate:            end,
		GeneratedAt:        began,
		Windows:            ws,
		HasConversionValue: hasValue,
		Summary:            Summarize(ws.All, daily, hasValue),
		Periods:            ComparePeriods(ws, daily, hasValue),
		Daily:              daily.Points(),
	}
	report.Discrepancy = Discrepancy(report.Summary.AnalyticsConversions, report.Summary.AdsConversions)

	a.fetchSections(ctx, ws, report)

	report.Geo = SummarizeGeo(report.Countries.Data)
	report.Findings = a.detector.Detect(Snapshot{
		AnalyticsConversions: report.Summary.AnalyticsConversions,
		AdsConversions:       report.Summary.AdsConversions,
		Countries:            report.Countries.Data,
		Cities:               report.Cities.Data,
	})

	log.Info("Report assembled",
		zap.Int("findings", len(report.Findings)),
		zap.Strings("degraded_sections", report.DegradedSections()),
		zap.Duration("elapsed", time.Since(began)))

	return report, nil
}

func fetchID(runID, section string) string {
	return fmt.Sprintf("%s/%s", runID, section)
}

func (a *Assembler) fetchCore(ctx context.Context, runID string, ws WindowSet, daily *DailyMetrics) error {
	req := analyticsDailyRequest(a.opts.ConversionMetric)
	rows, err := a.runAnalytics(ctx, req, ws, true)
	if err != nil {
		return err
	}
	stats, err := daily.MergeAnalytics(fetchID(runID, req.section), rows, a.opts.ConversionMetric)
	if err != nil {
		return wrapError(err, "merge analytics daily rows")
	}
	logDropped(ctx, req.section, stats)

	q := a.queries.Daily(firstDate(ws), lastDate(ws))
	rows, err = a.runAds(ctx, q, true)
	if err != nil {
		return err
	}
	stats, err = daily.MergeAds(fetchID(runID, q.Section), rows)
	if err != nil {
		return wrapError(err, "merge ads daily rows")
	}
	logDropped(ctx, q.Section, stats)

	return nil
}

func logDropped(ctx context.Context, section string, stats MergeStats) {
	if stats.Dropped == 0 {
		return
	}
	logger.FromContext(ctx).Debug("Dropped rows outside report window",
		zap.String("section", section),
		zap.Int("merged", stats.Merged),
		zap.Int("dropped", stats.Dropped))
}

// sectionTask fetches one section and writes only that section's slot
type sectionTask struct {
	name    string
	run     func(ctx context.Context) error
	degrade func(err error)
}

func (a *Assembler) fetchSections(ctx context.Context, ws WindowSet, r *Report) {
	conv := a.opts.ConversionMetric
	reqs := analyticsSectionRequests(conv, a.opts.RowLimit)
	start, end := firstDate(ws), lastDate(ws)

	tasks := []sectionTask{
		analyticsSection(a, &r.Events, reqs[SectionEvents], ws, func(rows []source.Row) []EventRow {
			return GroupEvents(rows, a.opts.ConversionEvents)
		}),
		analyticsSection(a, &r.Channels, reqs[SectionChannels], ws, func(rows []source.Row) []ChannelRow {
			return GroupChannels(rows, conv)
		}),
		analyticsSection(a, &r.Countries, reqs[SectionCountries], ws, func(rows []source.Row) []CountryRow {
			return GroupCountries(rows, conv, a.targets)
		}),
		analyticsSection(a, &r.Cities, reqs[SectionCities], ws, func(rows []source.Row) []CityRow {
			return limitRows(GroupCities(rows, conv, a.targets), a.opts.CityLimit)
		}),
		analyticsSection(a, &r.TopPages, reqs[SectionTopPages], ws, func(rows []source.Row) []PageRow {
			return limitRows(GroupPages(rows), a.opts.TableLimit)
		}),
		analyticsSection(a, &r.LandingPages, reqs[SectionLandingPages], ws, func(rows []source.Row) []LandingPageRow {
			return limitRows(GroupLandingPages(rows, conv), a.opts.TableLimit)
		}),
		analyticsSection(a, &r.Devices, reqs[SectionDevices], ws, func(rows []source.Row) []BreakdownRow {
			return GroupBreakdown(rows, DimensionDevice, conv, false)
		}),
		analyticsSection(a, &r.Weekdays, reqs[SectionWeekdays], ws, func(rows []source.Row) []BreakdownRow {
			return GroupBreakdown(rows, DimensionWeekday, conv, true)
		}),
		analyticsSection(a, &r.Hours, reqs[SectionHours], ws, func(rows []source.Row) []BreakdownRow {
			return GroupBreakdown(rows, DimensionHour, conv, true)
		}),
		adsSection(a, &r.Campaigns, a.queries.Campaigns(start, end), func(rows []source.Row) []DimensionRow {
			return GroupAdsRows(rows, source.FieldCampaignName)
		}),
		adsSection(a, &r.Keywords, a.queries.Keywords(start, end), func(rows []source.Row) []DimensionRow {
			grouped := GroupAdsRows(rows, source.FieldKeywordText)
			r.WastedKeywords = WastedSpend(grouped, a.opts.WasteTopN)
			return limitRows(grouped, a.opts.TableLimit)
		}),
		adsSection(a, &r.SearchTerms, a.queries.SearchTerms(start, end), func(rows []source.Row) []DimensionRow {
			grouped := GroupAdsRows(rows, source.FieldSearchTerm)
			r.WastedSearchTerms = WastedSpend(grouped, a.opts.WasteTopN)
			return limitRows(grouped, a.opts.TableLimit)
		}),
	}

	var g errgroup.Group
	g.SetLimit(a.opts.Concurrency)
	for _, task := range tasks {
		g.Go(func() error {
			sctx := logger.WithSection(ctx, task.name)
			if err := task.run(sctx); err != nil {
				task.degrade(err)
				a.observer.SectionDegraded(task.name)
				logger.FromContext(sctx).Warn("Section degraded to no data", zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()
}

func analyticsSection[T any](a *Assembler, sec *Section[T], req analyticsRequest, ws WindowSet, build func([]source.Row) T) sectionTask {
	return sectionTask{
		name: req.section,
		run: func(ctx context.Context) error {
			rows, err := a.runAnalytics(ctx, req, ws, false)
			if err != nil {
				return err
			}
			sec.Data = build(rows)
			sec.Available = true
			return nil
		},
		degrade: func(err error) { degradeSection(sec, err) },
	}
}

func adsSection[T any](a *Assembler, sec *Section[T], q source.AdsQuery, build func([]source.Row) T) sectionTask {
	return sectionTask{
		name: q.Section,
		run: func(ctx context.Context) error {
			rows, err := a.runAds(ctx, q, false)
			if err != nil {
				return err
			}
			sec.Data = build(rows)
			sec.Available = true
			return nil
		},
		degrade: func(err error) { degradeSection(sec, err) },
	}
}

func degradeSection[T any](sec *Section[T], err error) {
	var zero T
	sec.Data = zero
	sec.Available = false
	sec.Error = err.Error()
}

func (a *Assembler) runAnalytics(ctx context.Context, req analyticsRequest, ws WindowSet, critical bool) ([]source.Row, error) {
	ctx = logger.WithSource(ctx, SourceAnalytics)
	began := time.Now()
	rows, err := a.analytics.RunReport(ctx, req.dimensions, req.metrics, firstDate(ws), lastDate(ws), req.limit)
	a.observer.ObserveFetch(SourceAnalytics, req.section, time.Since(began), err)
	if err != nil {
		return nil, NewSourceFetchError(SourceAnalytics, req.section, critical, err)
	}

	logger.FromContext(ctx).Debug("Analytics report fetched",
		zap.String("section", req.section),
		zap.Int("rows", len(rows)),
		zap.Duration("elapsed", time.Since(began)))
	return rows, nil
}

func (a *Assembler) runAds(ctx context.Context, q source.AdsQuery, critical bool) ([]source.Row, error) {
	ctx = logger.WithSource(ctx, SourceAds)
	began := time.Now()
	rows, err := a.ads.RunQuery(ctx, q.Primary, q.Fallback)
	a.observer.ObserveFetch(SourceAds, q.Section, time.Since(began), err)
	if err != nil {
		return nil, NewSourceFetchError(SourceAds, q.Section, critical, err)
	}

	logger.FromContext(ctx).Debug("Ads query fetched",
		zap.String("section", q.Section),
		zap.Int("rows", len(rows)),
		zap.Duration("elapsed", time.Since(began)))
	return rows, nil
}

func firstDate(ws WindowSet) string {
	return ws.All[0]
}

func lastDate(ws WindowSet) string {
	return ws.All[len(ws.All)-1]
}
