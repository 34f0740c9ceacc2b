package tasks

import (
	"context"
	"fmt"
	"time"

	"adreport/pkg/analysis"
	"adreport/pkg/clickhouse"
	"adreport/pkg/config"
	"adreport/pkg/ga4"
	"adreport/pkg/googleads"
	"adreport/pkg/logger"
	"adreport/pkg/metrics"
	"adreport/pkg/notifier"
	"adreport/pkg/report"
	"adreport/pkg/source"
	"adreport/pkg/wechat"

	"go.uber.org/zap"
)

// Sources bundles the adapters one assembler reads from
type Sources struct {
	Analytics source.AnalyticsSource
	Ads       source.AdsSource
	Queries   source.QueryBuilder
	closer    Closer
}

// Close releases the warehouse connection when one was opened
func (s *Sources) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

// NewTaskManager builds the whole pipeline from configuration. rec may be nil.
func NewTaskManager(ctx context.Context, cfg *config.Config, rec *metrics.Recorder) (*Manager, error) {
	logger.Info("Initializing task manager",
		zap.String("analytics_driver", cfg.Analytics.Driver),
		zap.String("ads_driver", cfg.Ads.Driver))

	sources, err := NewSources(ctx, cfg)
	if err != nil {
		return nil, err
	}

	assembler, err := analysis.NewAssembler(sources.Analytics, sources.Ads, sources.Queries, AnalysisOptions(cfg.Report))
	if err != nil {
		sources.Close()
		return nil, err
	}

	dispatcher, err := NewDispatcher(cfg)
	if err != nil {
		sources.Close()
		return nil, err
	}

	var observer RunObserver
	if rec != nil {
		assembler.SetObserver(rec)
		observer = rec
	}

	executor, err := NewReportExecutor(assembler, dispatcher, observer, ExecutorOptions{
		OutputDir:     cfg.Report.OutputDir,
		DefaultLocale: cfg.Report.Locale,
		DefaultStart:  cfg.Report.StartDate,
		DefaultEnd:    cfg.Report.EndDate,
		PublicURL:     cfg.Report.PublicURL,
		NewRenderer:   HTMLRendererFactory(cfg.Report),
	})
	if err != nil {
		sources.Close()
		return nil, err
	}

	var runTimeout time.Duration
	if cfg.Server != nil && cfg.Server.RunTimeout > 0 {
		runTimeout = time.Duration(cfg.Server.RunTimeout) * time.Second
	}

	m := NewManager(ctx, executor, runTimeout)
	m.closer = sources.Close

	logger.Info("Task manager initialized", zap.Int("notifiers", dispatcher.Len()))
	return m, nil
}

// NewSources creates the analytics and ads adapters selected by the drivers
func NewSources(ctx context.Context, cfg *config.Config) (*Sources, error) {
	s := &Sources{}

	var ch *clickhouse.Client
	if cfg.UsesClickHouse() {
		client, err := clickhouse.NewClient(ctx, cfg.ClickHouse, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create ClickHouse client: %w", err)
		}
		ch = client
		s.closer = client.Close
	}

	fail := func(err error) (*Sources, error) {
		s.Close()
		return nil, err
	}

	ac := cfg.Analytics
	switch ac.Driver {
	case config.DriverGA4, "":
		client, err := ga4.NewClient(ctx, ga4.Config{
			PropertyID:        ac.PropertyID,
			CredentialsFile:   ac.CredentialsFile,
			Endpoint:          ac.Endpoint,
			Timeout:           time.Duration(ac.TimeoutSeconds) * time.Second,
			RequestsPerSecond: ac.RequestsPerSecond,
			MaxRetries:        ac.MaxRetries,
		})
		if err != nil {
			return fail(fmt.Errorf("failed to create GA4 client: %w", err))
		}
		s.Analytics = client
	case config.DriverClickHouse:
		src, err := clickhouse.NewAnalyticsSource(ch, ch.Resolver(), ac.Table, ac.PropertyID)
		if err != nil {
			return fail(err)
		}
		s.Analytics = src
	default:
		return fail(fmt.Errorf("%w: analytics driver %q", ErrUnsupportedDriver, ac.Driver))
	}

	adc := cfg.Ads
	switch adc.Driver {
	case config.DriverGoogleAds, "":
		client, err := googleads.NewClient(ctx, googleads.Config{
			CustomerID:        adc.CustomerID,
			LoginCustomerID:   adc.LoginCustomerID,
			DeveloperToken:    adc.DeveloperToken,
			ClientID:          adc.ClientID,
			ClientSecret:      adc.ClientSecret,
			RefreshToken:      adc.RefreshToken,
			APIVersion:        adc.APIVersion,
			Endpoint:          adc.Endpoint,
			Timeout:           time.Duration(adc.TimeoutSeconds) * time.Second,
			RequestsPerSecond: adc.RequestsPerSecond,
			MaxRetries:        adc.MaxRetries,
		})
		if err != nil {
			return fail(fmt.Errorf("failed to create Google Ads client: %w", err))
		}
		s.Ads = client
		s.Queries = googleads.GAQLBuilder{}
	case config.DriverClickHouse:
		builder, err := clickhouse.NewSQLBuilder(adc.CustomerID, adc.Tables, ch.Resolver())
		if err != nil {
			return fail(err)
		}
		s.Ads = clickhouse.NewAdsSource(ch)
		s.Queries = builder
	default:
		return fail(fmt.Errorf("%w: ads driver %q", ErrUnsupportedDriver, adc.Driver))
	}

	return s, nil
}

// AnalysisOptions maps the report section onto assembler options
func AnalysisOptions(rc *config.ReportConfig) analysis.Options {
	return analysis.Options{
		TargetCountries:            rc.TargetCountries,
		ConversionEvents:           rc.ConversionEvents,
		ConversionMetric:           rc.ConversionMetric,
		CityConcentrationThreshold: rc.CityConcentrationThreshold,
		WasteTopN:                  rc.WasteTopN,
		RowLimit:                   rc.RowLimit,
		TableLimit:                 rc.TableLimit,
		CityLimit:                  rc.CityLimit,
		Concurrency:                rc.Concurrency,
	}
}

// RendererOptions maps the report section onto renderer options for locale
func RendererOptions(rc *config.ReportConfig, locale string) report.Options {
	if locale == "" {
		locale = rc.Locale
	}
	return report.Options{
		Locale:      locale,
		Currency:    rc.Currency,
		ROASDisplay: rc.ROASDisplay,
		Charts:      !rc.DisableCharts,
		FontPath:    rc.FontPath,
	}
}

// HTMLRendererFactory returns a factory of HTML renderers sharing rc
func HTMLRendererFactory(rc *config.ReportConfig) RendererFactory {
	return func(locale string) (report.Renderer, error) {
		r, err := report.NewHTMLRenderer(RendererOptions(rc, locale))
		if err != nil {
			return nil, err
		}
		return r, nil
	}
}

// NewDispatcher registers every enabled chat channel
func NewDispatcher(cfg *config.Config) (*notifier.Dispatcher, error) {
	d := notifier.NewDispatcher(notifier.Options{
		Locale:   cfg.Report.Locale,
		Currency: cfg.Report.Currency,
	})

	if wc := cfg.WeChat; wc != nil && wc.Enabled {
		client, err := wechat.NewClient(&wechat.Config{
			WebhookURL:         wc.WebhookURL,
			MaxRetries:         wc.MaxRetries,
			RetryDelay:         time.Duration(wc.RetryDelay) * time.Second,
			MentionUsers:       wc.MentionUsers,
			NotificationFormat: wechat.NotificationFormat(wc.NotificationFormat),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create WeChat client: %w", err)
		}
		d.Add(client, wc.FindingsOnly)
	}

	if tc := cfg.Telegram; tc != nil && tc.Enabled {
		tg, err := notifier.NewTelegramNotifier(notifier.TelegramConfig{
			BotToken:   tc.BotToken,
			ChatID:     tc.ChatID,
			APIBase:    tc.APIBase,
			MaxRetries: tc.MaxRetries,
		})
		if err != nil {
			return nil, err
		}
		d.Add(tg, tc.FindingsOnly)
	}
	return d, nil
}
