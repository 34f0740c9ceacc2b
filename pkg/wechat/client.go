package wechat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"adreport/pkg/logger"
	"adreport/pkg/notifier"

	"go.uber.org/zap"
)

// NotificationFormat selects the message type
type NotificationFormat string

const (
	FormatMarkdown NotificationFormat = "markdown" // markdown table, the default
	FormatText     NotificationFormat = "text"     // plain text, supports mentions
)

// Config configures the webhook client
type Config struct {
	WebhookURL         string             `json:"webhook_url"`
	MaxRetries         int                `json:"max_retries"`
	RetryDelay         time.Duration      `json:"retry_delay"`
	Timeout            time.Duration      `json:"timeout"`
	MentionUsers       []string           `json:"mention_users"`
	NotificationFormat NotificationFormat `json:"notification_format"`
}

// Client posts to a WeCom group bot webhook
type Client struct {
	webhookURL         string
	httpClient         *http.Client
	maxRetries         int
	retryDelay         time.Duration
	mentionUsers       []string
	notificationFormat NotificationFormat
}

var _ notifier.ReportNotifier = (*Client)(nil)

// NewClient creates a webhook client
func NewClient(config *Config) (*Client, error) {
	if config == nil || config.WebhookURL == "" {
		return nil, ErrWebhookURLEmpty
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = 2 * time.Second
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.NotificationFormat == "" {
		config.NotificationFormat = FormatMarkdown
	}

	return &Client{
		webhookURL:         config.WebhookURL,
		httpClient:         &http.Client{Timeout: config.Timeout},
		maxRetries:         config.MaxRetries,
		retryDelay:         config.RetryDelay,
		mentionUsers:       config.MentionUsers,
		notificationFormat: config.NotificationFormat,
	}, nil
}

// Name implements notifier.ReportNotifier
func (c *Client) Name() string { return "wechat" }

// NotifyReport sends the report headline
func (c *Client) NotifyReport(ctx context.Context, h *notifier.Headline) error {
	if c.notificationFormat == FormatText {
		return c.SendText(ctx, buildText(h))
	}
	if err := c.SendMarkdown(ctx, buildMarkdown(h)); err != nil {
		return err
	}
	// markdown messages cannot mention members, so send a text reminder after
	if len(c.mentionUsers) > 0 && !h.Healthy {
		return c.SendText(ctx, h.Label("anomalies")+": "+h.Period)
	}
	return nil
}

// SendText sends a text message
func (c *Client) SendText(ctx context.Context, content string) error {
	return c.sendMessage(ctx, &WebhookMessage{
		MsgType: MessageTypeText,
		Text: &TextMsg{
			Content:       content,
			MentionedList: c.mentionUsers,
		},
	})
}

// SendMarkdown sends a markdown_v2 message
func (c *Client) SendMarkdown(ctx context.Context, content string) error {
	return c.sendMessage(ctx, &WebhookMessage{
		MsgType:    MessageTypeMarkdownV2,
		MarkdownV2: &MarkdownMsg{Content: content},
	})
}

// TestConnection sends a test message to verify the webhook
func (c *Client) TestConnection(ctx context.Context) error {
	msg := fmt.Sprintf("## adreport\n> webhook test %s", time.Now().Format("2006-01-02 15:04:05"))
	return c.SendMarkdown(ctx, msg)
}

// sendMessage sends msg, retrying on rate-limit codes
func (c *Client) sendMessage(ctx context.Context, msg *WebhookMessage) error {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}

		lastErr = c.doSendMessage(ctx, msg)
		if lastErr == nil {
			return nil
		}
		if !isRetryable(lastErr) {
			return lastErr
		}
		if attempt < c.maxRetries {
			logger.Warn("WeChat message failed, retrying",
				zap.Duration("delay", c.retryDelay),
				zap.Int("attempt", attempt+1),
				zap.Int("max_retries", c.maxRetries),
				zap.Error(lastErr))
		}
	}

	return &RetryError{Attempts: c.maxRetries + 1, LastErr: lastErr}
}

// doSendMessage performs one webhook POST
func (c *Client) doSendMessage(ctx context.Context, msg *WebhookMessage) error {
	jsonData, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(respBody)}
	}

	var webhookResp WebhookResponse
	if err := json.Unmarshal(respBody, &webhookResp); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !webhookResp.IsSuccess() {
		return &APIError{Code: webhookResp.ErrCode, Message: webhookResp.ErrMsg}
	}
	return nil
}
