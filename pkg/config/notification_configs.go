package config

// WeChatConfig configures the WeCom group bot
type WeChatConfig struct {
	WebhookURL         string   `json:"webhook_url" yaml:"webhook_url"`
	Enabled            bool     `json:"enabled" yaml:"enabled"`
	MentionUsers       []string `json:"mention_users" yaml:"mention_users"`
	MaxRetries         int      `json:"max_retries" yaml:"max_retries"`
	RetryDelay         int      `json:"retry_delay" yaml:"retry_delay"` // seconds
	NotificationFormat string   `json:"notification_format" yaml:"notification_format"` // markdown, text
	FindingsOnly       bool     `json:"findings_only" yaml:"findings_only"`              // only notify when findings exist
}

// NewWeChatConfig fills defaults from the environment
func NewWeChatConfig() *WeChatConfig {
	return &WeChatConfig{
		WebhookURL:         getEnv("WECHAT_WEBHOOK_URL", ""),
		Enabled:            getEnvBool("WECHAT_ENABLED", false),
		MentionUsers:       parseStringList(getEnv("WECHAT_MENTION_USERS", "")),
		MaxRetries:         getEnvInt("WECHAT_MAX_RETRIES", 3),
		RetryDelay:         getEnvInt("WECHAT_RETRY_DELAY", 2),
		NotificationFormat: getEnv("WECHAT_NOTIFICATION_FORMAT", "markdown"),
	}
}

// Validate checks the WeCom settings
func (wc *WeChatConfig) Validate() error {
	if !wc.Enabled {
		return nil
	}
	if wc.WebhookURL == "" {
		return ErrMissingRequired
	}
	if wc.MaxRetries < 0 {
		wc.MaxRetries = 3
	}
	if wc.RetryDelay <= 0 {
		wc.RetryDelay = 2
	}
	if wc.NotificationFormat != "" && !isValidValue(wc.NotificationFormat, []string{"markdown", "text"}) {
		return ErrInvalidValue
	}
	return nil
}

// TelegramConfig Telegram bot notification config
type TelegramConfig struct {
	Enabled      bool   `json:"enabled" yaml:"enabled"`
	BotToken     string `json:"bot_token" yaml:"bot_token"`
	ChatID       string `json:"chat_id" yaml:"chat_id"`
	APIBase      string `json:"api_base" yaml:"api_base"`
	MaxRetries   int    `json:"max_retries" yaml:"max_retries"`
	FindingsOnly bool   `json:"findings_only" yaml:"findings_only"`
}

// NewTelegramConfig creates the Telegram config from environment defaults
func NewTelegramConfig() *TelegramConfig {
	return &TelegramConfig{
		Enabled:    getEnvBool("TELEGRAM_ENABLED", false),
		BotToken:   getEnv("TELEGRAM_BOT_TOKEN", ""),
		ChatID:     getEnv("TELEGRAM_CHAT_ID", ""),
		APIBase:    getEnv("TELEGRAM_API_BASE", "https://api.telegram.org"),
		MaxRetries: getEnvInt("TELEGRAM_MAX_RETRIES", 3),
	}
}

// Validate checks the Telegram config when enabled
func (tc *TelegramConfig) Validate() error {
	if !tc.Enabled {
		return nil
	}
	if tc.BotToken == "" || tc.ChatID == "" {
		return ErrMissingRequired
	}
	return nil
}
