package config

import "errors"

// Configuration-related error definitions using sentinel errors pattern
var (
	// Generic errors
	ErrConfigNotFound = errors.New("configuration file not found")
	ErrInvalidFormat  = errors.New("invalid configuration file format")

	// Configuration validation errors
	ErrMissingRequired = errors.New("missing required configuration item")
	ErrInvalidValue    = errors.New("invalid configuration value")

	// Source configuration errors
	ErrAnalyticsConfig = errors.New("analytics source configuration error")
	ErrAdsConfig       = errors.New("ads source configuration error")

	// Database configuration errors
	ErrClickHouseConfig = errors.New("ClickHouse configuration error")

	ErrReportConfig = errors.New("report configuration error")

	// Notification configuration errors
	ErrWeChatConfig   = errors.New("WeChat notification configuration error")
	ErrTelegramConfig = errors.New("telegram notification configuration error")

	// Scheduler configuration errors
	ErrSchedulerConfig = errors.New("scheduler configuration error")
	ErrInvalidCron     = errors.New("invalid Cron expression")

	ErrServerConfig = errors.New("server configuration error")
)
