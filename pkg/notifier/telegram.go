package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"adreport/pkg/logger"

	"go.uber.org/zap"
)

const defaultTelegramAPI = "https://api.telegram.org"

// TelegramConfig represents Telegram notification configuration
type TelegramConfig struct {
	BotToken   string
	ChatID     string
	APIBase    string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// TelegramNotifier sends report summaries through the Bot API
type TelegramNotifier struct {
	config     TelegramConfig
	httpClient *http.Client
}

var _ ReportNotifier = (*TelegramNotifier)(nil)

// TelegramMessage represents a message to be sent via Telegram
type TelegramMessage struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview,omitempty"`
}

// TelegramResponse represents Telegram API response
type TelegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
	ErrorCode   int    `json:"error_code,omitempty"`
}

// NewTelegramNotifier creates a Telegram notifier
func NewTelegramNotifier(cfg TelegramConfig) (*TelegramNotifier, error) {
	if cfg.BotToken == "" || cfg.ChatID == "" {
		return nil, fmt.Errorf("telegram bot token and chat ID are required")
	}
	if cfg.APIBase == "" {
		cfg.APIBase = defaultTelegramAPI
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	return &TelegramNotifier{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Name implements ReportNotifier
func (t *TelegramNotifier) Name() string { return "telegram" }

// NotifyReport sends the headline as an HTML formatted message
func (t *TelegramNotifier) NotifyReport(ctx context.Context, h *Headline) error {
	return t.SendMessage(ctx, FormatTelegram(h))
}

// SendMessage sends text, retrying failed attempts
func (t *TelegramNotifier) SendMessage(ctx context.Context, text string) error {
	msg := &TelegramMessage{
		ChatID:                t.config.ChatID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	}

	var lastErr error
	for attempt := 0; attempt <= t.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(t.config.RetryDelay):
			}
		}
		if lastErr = t.send(ctx, msg); lastErr == nil {
			return nil
		}
		logger.Warn("Telegram send failed",
			zap.Int("attempt", attempt+1),
			zap.Error(lastErr))
	}
	return fmt.Errorf("telegram send failed after %d attempts: %w", t.config.MaxRetries+1, lastErr)
}

func (t *TelegramNotifier) send(ctx context.Context, message *TelegramMessage) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimRight(t.config.APIBase, "/"), t.config.BotToken)

	jsonData, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var telegramResp TelegramResponse
	if err := json.NewDecoder(resp.Body).Decode(&telegramResp); err != nil {
		return fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}
	if !telegramResp.OK {
		return fmt.Errorf("telegram API error: %s (code: %d)", telegramResp.Description, telegramResp.ErrorCode)
	}
	return nil
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

// FormatTelegram renders a headline in Telegram's HTML subset
func FormatTelegram(h *Headline) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 <b>%s</b>\n%s\n\n", htmlEscaper.Replace(h.Title), h.Period)
	for _, m := range h.Metrics {
		fmt.Fprintf(&b, "• %s: <b>%s</b>", htmlEscaper.Replace(m.Label), htmlEscaper.Replace(m.Value))
		if m.Change != "" {
			fmt.Fprintf(&b, " (%s)", m.Change)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if h.Healthy {
		fmt.Fprintf(&b, "✅ %s\n", htmlEscaper.Replace(h.Label("no_anomalies")))
	} else {
		fmt.Fprintf(&b, "⚠️ <b>%s</b>\n", htmlEscaper.Replace(h.Label("anomalies")))
		for _, f := range h.Findings {
			fmt.Fprintf(&b, "• %s\n", htmlEscaper.Replace(f))
		}
	}
	if len(h.Degraded) > 0 {
		fmt.Fprintf(&b, "\n%s: %s\n", htmlEscaper.Replace(h.Label("no_data")), strings.Join(h.Degraded, ", "))
	}
	if h.Link != "" {
		fmt.Fprintf(&b, "\n<a href=\"%s\">%s</a>", htmlEscaper.Replace(h.Link), htmlEscaper.Replace(h.Title))
	}
	return b.String()
}
