package ga4

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"adreport/pkg/logger"
	"adreport/pkg/source"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"
	analyticsdata "google.golang.org/api/analyticsdata/v1beta"
	"google.golang.org/api/option"
)

// pageSize is used when a report asks for every row
const pageSize = 10000

// Config configures the Data API client
type Config struct {
	PropertyID        string
	CredentialsFile   string // service account JSON; empty uses application default credentials
	Endpoint          string // empty uses the public Data API endpoint
	Timeout           time.Duration
	RequestsPerSecond float64
	MaxRetries        int
	HTTPClient        *http.Client // overrides credential lookup, mainly for tests
}

// Client runs GA4 reports and returns rows keyed by dimension and metric name
type Client struct {
	property string
	service  *analyticsdata.Service
	limiter  *rate.Limiter
	retry    *RetryHandler
}

var _ source.AnalyticsSource = (*Client)(nil)

// NewClient creates a Data API client
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.PropertyID) == "" {
		return nil, ErrMissingProperty
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	var httpClient http.Client
	if cfg.HTTPClient != nil {
		httpClient = *cfg.HTTPClient
	} else {
		ts, err := tokenSource(ctx, cfg.CredentialsFile)
		if err != nil {
			return nil, err
		}
		httpClient = *oauth2.NewClient(ctx, ts)
	}
	httpClient.Timeout = cfg.Timeout

	opts := []option.ClientOption{option.WithHTTPClient(&httpClient)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	svc, err := analyticsdata.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create analytics data service: %w", err)
	}

	logger.Info("client initialized",
		zap.String("provider", "ga4"),
		zap.String("property_id", cfg.PropertyID),
		zap.Float64("qps_limit", cfg.RequestsPerSecond))

	return &Client{
		property: "properties/" + cfg.PropertyID,
		service:  svc,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		retry:    NewRetryHandler(cfg.MaxRetries, 500*time.Millisecond, 10*time.Second),
	}, nil
}

func tokenSource(ctx context.Context, credentialsFile string) (oauth2.TokenSource, error) {
	if credentialsFile == "" {
		creds, err := google.FindDefaultCredentials(ctx, analyticsdata.AnalyticsReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("find default credentials: %w", err)
		}
		return creds.TokenSource, nil
	}

	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, analyticsdata.AnalyticsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials file: %w", err)
	}
	return creds.TokenSource, nil
}

// RunReport fetches one report. A positive limit caps the rows; zero pages
// through every row.
func (c *Client) RunReport(ctx context.Context, dimensions, metrics []string, start, end string, limit int) ([]source.Row, error) {
	req := &analyticsdata.RunReportRequest{
		DateRanges: []*analyticsdata.DateRange{{StartDate: start, EndDate: end}},
		Limit:      int64(limit),
	}
	for _, d := range dimensions {
		req.Dimensions = append(req.Dimensions, &analyticsdata.Dimension{Name: d})
	}
	for _, m := range metrics {
		req.Metrics = append(req.Metrics, &analyticsdata.Metric{Name: m})
	}
	if limit <= 0 {
		req.Limit = pageSize
	}

	var rows []source.Row
	for {
		resp, err := c.call(ctx, req)
		if err != nil {
			return nil, err
		}
		rows = append(rows, convertRows(resp)...)

		if limit > 0 || len(resp.Rows) == 0 || int64(len(rows)) >= resp.RowCount {
			break
		}
		req.Offset = int64(len(rows))
	}

	logger.FromContext(ctx).Debug("API response received",
		zap.String("provider", "ga4"),
		zap.Strings("dimensions", dimensions),
		zap.Int("records", len(rows)))
	return rows, nil
}

// convertRows keeps dimension values as strings and coerces metric values
func convertRows(resp *analyticsdata.RunReportResponse) []source.Row {
	rows := make([]source.Row, 0, len(resp.Rows))
	for _, r := range resp.Rows {
		row := make(source.Row, len(resp.DimensionHeaders)+len(resp.MetricHeaders))
		for i, h := range resp.DimensionHeaders {
			if i < len(r.DimensionValues) {
				row[h.Name] = r.DimensionValues[i].Value
			}
		}
		for i, h := range resp.MetricHeaders {
			if i < len(r.MetricValues) {
				row[h.Name] = source.Coerce(r.MetricValues[i].Value)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func (c *Client) call(ctx context.Context, req *analyticsdata.RunReportRequest) (*analyticsdata.RunReportResponse, error) {
	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("context cancelled while waiting for rate limiter: %w", err)
		}

		resp, err := c.service.Properties.RunReport(c.property, req).Context(ctx).Do()
		if err == nil {
			return resp, nil
		}
		err = toAPIError(err)
		if !c.retry.ShouldRetry(err, attempt) {
			return nil, err
		}

		delay := c.retry.Delay(attempt)
		logger.FromContext(ctx).Warn("API call failed, retrying",
			zap.String("provider", "ga4"),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
