package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/robfig/cron/v3"
)

// ValidateConfig validates the whole config
func (c *Config) ValidateConfig() error {
	if err := c.validateAnalyticsConfig(); err != nil {
		return fmt.Errorf("%w: %w", ErrAnalyticsConfig, err)
	}

	if err := c.validateAdsConfig(); err != nil {
		return fmt.Errorf("%w: %w", ErrAdsConfig, err)
	}

	if c.UsesClickHouse() {
		if err := c.validateClickHouseConfig(); err != nil {
			return fmt.Errorf("%w: %w", ErrClickHouseConfig, err)
		}
	}

	if err := c.validateReportConfig(); err != nil {
		return fmt.Errorf("%w: %w", ErrReportConfig, err)
	}

	if c.Scheduler != nil {
		if err := c.Scheduler.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrSchedulerConfig, err)
		}
	}

	if c.Server != nil {
		if err := c.Server.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrServerConfig, err)
		}
	}

	if c.WeChat != nil {
		if err := c.WeChat.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrWeChatConfig, err)
		}
	}

	if c.Telegram != nil {
		if err := c.Telegram.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrTelegramConfig, err)
		}
	}

	if c.App != nil {
		return c.App.Validate()
	}
	return nil
}

func (c *Config) validateAnalyticsConfig() error {
	a := c.Analytics
	if a == nil || strings.TrimSpace(a.PropertyID) == "" {
		return fmt.Errorf("%w: property_id (PROPERTY_ID)", ErrMissingRequired)
	}
	if !isValidValue(a.Driver, []string{DriverGA4, DriverClickHouse}) {
		return fmt.Errorf("%w: driver must be %q or %q", ErrInvalidValue, DriverGA4, DriverClickHouse)
	}
	if a.Driver == DriverClickHouse && a.Table == "" {
		return fmt.Errorf("%w: table", ErrMissingRequired)
	}
	if a.TimeoutSeconds <= 0 {
		a.TimeoutSeconds = 60
	}
	if a.MaxRetries < 0 {
		a.MaxRetries = 3
	}
	return nil
}

func (c *Config) validateAdsConfig() error {
	a := c.Ads
	if a == nil || strings.TrimSpace(a.CustomerID) == "" {
		return fmt.Errorf("%w: customer_id (CUSTOMER_ID)", ErrMissingRequired)
	}
	switch a.Driver {
	case DriverGoogleAds:
		if a.DeveloperToken == "" {
			return fmt.Errorf("%w: developer_token", ErrMissingRequired)
		}
		if a.RefreshToken == "" || a.ClientID == "" || a.ClientSecret == "" {
			return fmt.Errorf("%w: client_id, client_secret and refresh_token", ErrMissingRequired)
		}
	case DriverClickHouse:
		if a.Tables.Campaigns == "" {
			return fmt.Errorf("%w: tables.campaigns", ErrMissingRequired)
		}
	default:
		return fmt.Errorf("%w: driver must be %q or %q", ErrInvalidValue, DriverGoogleAds, DriverClickHouse)
	}
	if a.TimeoutSeconds <= 0 {
		a.TimeoutSeconds = 60
	}
	return nil
}

// validateClickHouseConfig validates the warehouse connection
func (c *Config) validateClickHouseConfig() error {
	ch := c.ClickHouse
	if ch == nil {
		return fmt.Errorf("%w: clickhouse section", ErrMissingRequired)
	}
	if len(ch.Hosts) == 0 {
		return fmt.Errorf("%w: hosts", ErrMissingRequired)
	}
	if ch.Port <= 0 || ch.Port > 65535 {
		return fmt.Errorf("%w: port must be within 1-65535", ErrInvalidValue)
	}
	if ch.Database == "" {
		return fmt.Errorf("%w: database", ErrMissingRequired)
	}
	if ch.Protocol != "" && ch.Protocol != "native" && ch.Protocol != "http" {
		return fmt.Errorf("%w: protocol must be 'native' or 'http'", ErrInvalidValue)
	}
	return nil
}

func (c *Config) validateReportConfig() error {
	rc := c.Report
	if rc == nil {
		return fmt.Errorf("%w: report section", ErrMissingRequired)
	}
	rc.setDefaults()

	if !isValidValue(rc.Locale, []string{LocaleEN, LocaleKO}) {
		return fmt.Errorf("%w: locale %q", ErrInvalidValue, rc.Locale)
	}
	if !isValidValue(rc.ROASDisplay, []string{ROASDisplayNA, ROASDisplayOmit}) {
		return fmt.Errorf("%w: roas_display %q", ErrInvalidValue, rc.ROASDisplay)
	}
	if rc.CityConcentrationThreshold > 100 {
		return fmt.Errorf("%w: city_concentration_threshold must be a percentage", ErrInvalidValue)
	}
	if rc.Concurrency < 0 || rc.WasteTopN < 0 || rc.RowLimit < 0 || rc.CityLimit < 0 || rc.TableLimit < 0 {
		return fmt.Errorf("%w: limits must not be negative", ErrInvalidValue)
	}
	return nil
}

// isValidValue reports whether value is in validValues
func isValidValue(value string, validValues []string) bool {
	return slices.Contains(validValues, value)
}

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// isValidCronExpression accepts five or six field specs and descriptors like @daily
func isValidCronExpression(spec string) bool {
	_, err := cronParser.Parse(spec)
	return err == nil
}
