package googleads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode"

	"adreport/pkg/logger"
	"adreport/pkg/source"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"
)

const (
	DefaultEndpoint   = "https://googleads.googleapis.com"
	DefaultAPIVersion = "v17"
	AdwordsScope      = "https://www.googleapis.com/auth/adwords"
)

// Config configures the Google Ads REST client
type Config struct {
	CustomerID        string
	LoginCustomerID   string
	DeveloperToken    string
	ClientID          string
	ClientSecret      string
	RefreshToken      string
	APIVersion        string
	Endpoint          string
	Timeout           time.Duration
	RequestsPerSecond float64
	MaxRetries        int
	HTTPClient        *http.Client
}

// Client executes GAQL through googleAds:search and flattens results into
// rows keyed by GAQL field path
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
}

var _ source.AdsSource = (*Client)(nil)

// NewClient creates a Google Ads client authorised with a refresh token
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	cfg.CustomerID = normalizeCustomerID(cfg.CustomerID)
	cfg.LoginCustomerID = normalizeCustomerID(cfg.LoginCustomerID)
	if cfg.CustomerID == "" {
		return nil, ErrMissingCustomer
	}
	if cfg.DeveloperToken == "" {
		return nil, ErrMissingDeveloperToken
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 2
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		oc := &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{AdwordsScope},
		}
		httpClient = oauth2.NewClient(ctx, oc.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken}))
	}
	httpClient.Timeout = cfg.Timeout

	logger.Info("client initialized",
		zap.String("provider", "googleads"),
		zap.String("customer_id", cfg.CustomerID),
		zap.String("api_version", cfg.APIVersion))

	return &Client{
		cfg:     cfg,
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}, nil
}

func normalizeCustomerID(id string) string {
	return strings.ReplaceAll(strings.TrimSpace(id), "-", "")
}

// RunQuery runs query, falling back to fallback once if the primary fails
func (c *Client) RunQuery(ctx context.Context, query, fallback string) ([]source.Row, error) {
	return source.QueryWithFallback(ctx, query, fallback, c.Search)
}

type searchRequest struct {
	Query     string `json:"query"`
	PageToken string `json:"pageToken,omitempty"`
}

type searchResponse struct {
	Results       []map[string]any `json:"results"`
	NextPageToken string           `json:"nextPageToken"`
}

// Search runs one GAQL statement, following page tokens until exhausted
func (c *Client) Search(ctx context.Context, query string) ([]source.Row, error) {
	url := fmt.Sprintf("%s/%s/customers/%s/googleAds:search",
		strings.TrimRight(c.cfg.Endpoint, "/"), c.cfg.APIVersion, c.cfg.CustomerID)

	var rows []source.Row
	req := searchRequest{Query: query}
	for page := 1; ; page++ {
		resp, err := c.callWithRetry(ctx, url, req)
		if err != nil {
			return nil, err
		}
		for _, result := range resp.Results {
			rows = append(rows, Flatten(result))
		}
		if resp.NextPageToken == "" {
			break
		}
		req.PageToken = resp.NextPageToken
		logger.FromContext(ctx).Debug("Fetching next page",
			zap.String("provider", "googleads"),
			zap.Int("page", page+1))
	}
	return rows, nil
}

func (c *Client) callWithRetry(ctx context.Context, url string, req searchRequest) (*searchResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	delay := 500 * time.Millisecond
	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("context cancelled while waiting for rate limiter: %w", err)
		}
		resp, err := c.do(ctx, url, body)
		if err == nil {
			return resp, nil
		}
		if attempt >= c.cfg.MaxRetries || !isRetryableError(err) {
			return nil, err
		}

		logger.FromContext(ctx).Warn("API call failed, retrying",
			zap.String("provider", "googleads"),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		delay *= 2
	}
}

func (c *Client) do(ctx context.Context, url string, body []byte) (*searchResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("developer-token", c.cfg.DeveloperToken)
	if c.cfg.LoginCustomerID != "" {
		httpReq.Header.Set("login-customer-id", c.cfg.LoginCustomerID)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("googleads request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseAPIError(resp.StatusCode, data)
	}

	var out searchResponse
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return &out, nil
}

func parseAPIError(code int, data []byte) *APIError {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	apiErr := &APIError{HTTPCode: code}
	if json.Unmarshal(data, &envelope) == nil && envelope.Error.Message != "" {
		apiErr.Message = envelope.Error.Message
		apiErr.Status = envelope.Error.Status
	} else {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	return apiErr
}

// Flatten turns a nested search result into GAQL field paths, e.g.
// {"metrics":{"costMicros":"1"}} becomes {"metrics.cost_micros": int64(1)}.
// Values under metrics are coerced to numbers.
func Flatten(result map[string]any) source.Row {
	row := make(source.Row)
	flatten(row, "", result)
	return row
}

func flatten(row source.Row, prefix string, v map[string]any) {
	for k, val := range v {
		key := snakeCase(k)
		if prefix != "" {
			key = prefix + "." + key
		}
		switch x := val.(type) {
		case map[string]any:
			flatten(row, key, x)
		case json.Number:
			row[key] = source.Coerce(x.String())
		case string:
			if strings.HasPrefix(key, "metrics.") {
				row[key] = source.Coerce(x)
			} else {
				row[key] = x
			}
		default:
			row[key] = x
		}
	}
}

func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
