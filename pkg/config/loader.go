package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads the config file at path
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = getDefaultConfigPath()
	}

	// a missing file falls back to defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return getDefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigNotFound, err)
	}

	config := &Config{}
	ext := filepath.Ext(configPath)

	switch ext {
	case ".json":
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("%w: JSON parsing failed: %v", ErrInvalidFormat, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("%w: YAML parsing failed: %v", ErrInvalidFormat, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported config file format: %s", ErrInvalidFormat, ext)
	}

	config.fillDefaults()
	mergeEnvVars(config)
	config.Report.setDefaults()
	return config, nil
}

// SaveConfig writes the config to path
func SaveConfig(config *Config, configPath string) error {
	if configPath == "" {
		configPath = getDefaultConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var data []byte
	var err error
	switch ext := filepath.Ext(configPath); ext {
	case ".json":
		data, err = json.MarshalIndent(config, "", "  ")
	case ".yaml", ".yml":
		data, err = yaml.Marshal(config)
	default:
		return fmt.Errorf("%w: unsupported config file format: %s", ErrInvalidFormat, ext)
	}
	if err != nil {
		return fmt.Errorf("config serialization failed: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// getDefaultConfigPath returns the default config file location
func getDefaultConfigPath() string {
	paths := []string{"./config.yaml", "./config.json"}

	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(homeDir, ".adreport", "config.yaml"),
			filepath.Join(homeDir, ".adreport", "config.json"),
		)
	}
	paths = append(paths, "/etc/adreport/config.yaml", "/etc/adreport/config.json")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return "./config.yaml"
}

// mergeEnvVars overlays environment variables; env wins over the file
func mergeEnvVars(config *Config) {
	mergeSourceEnvVars(config)
	mergeClickHouseEnvVars(config)
	mergeReportEnvVars(config)
	mergeServerEnvVars(config)
	mergeSchedulerEnvVars(config)
	mergeNotificationEnvVars(config)
	mergeAppEnvVars(config)
}

// applyEnvMappings copies set environment variables into the mapped fields
func applyEnvMappings(envMappings map[string]any) {
	for envKey, fieldPtr := range envMappings {
		value := os.Getenv(envKey)
		if value == "" {
			continue
		}
		switch ptr := fieldPtr.(type) {
		case *string:
			*ptr = value
		case *int:
			*ptr = getEnvInt(envKey, *ptr)
		case *float64:
			*ptr = getEnvFloat(envKey, *ptr)
		case *bool:
			*ptr = value == "true" || value == "1"
		case *[]string:
			*ptr = parseStringList(value)
		}
	}
}

func mergeSourceEnvVars(config *Config) {
	a, ads := config.Analytics, config.Ads
	applyEnvMappings(map[string]any{
		"ANALYTICS_DRIVER":               &a.Driver,
		"PROPERTY_ID":                    &a.PropertyID,
		"GOOGLE_APPLICATION_CREDENTIALS": &a.CredentialsFile,
		"ANALYTICS_TABLE":                &a.Table,
		"ANALYTICS_RATE_LIMIT":           &a.RequestsPerSecond,
		"ADS_DRIVER":                     &ads.Driver,
		"CUSTOMER_ID":                    &ads.CustomerID,
		"GOOGLE_ADS_LOGIN_CUSTOMER_ID":   &ads.LoginCustomerID,
		"GOOGLE_ADS_DEVELOPER_TOKEN":     &ads.DeveloperToken,
		"GOOGLE_ADS_CLIENT_ID":           &ads.ClientID,
		"GOOGLE_ADS_CLIENT_SECRET":       &ads.ClientSecret,
		"GOOGLE_ADS_REFRESH_TOKEN":       &ads.RefreshToken,
		"GOOGLE_ADS_API_VERSION":         &ads.APIVersion,
		"ADS_RATE_LIMIT":                 &ads.RequestsPerSecond,
	})
}

// mergeClickHouseEnvVars applies CLICKHOUSE_* variables
func mergeClickHouseEnvVars(config *Config) {
	ch := config.ClickHouse
	if hostsEnv := os.Getenv("CLICKHOUSE_HOSTS"); hostsEnv != "" {
		ch.Hosts = parseStringList(hostsEnv)
	} else if host := os.Getenv("CLICKHOUSE_HOST"); host != "" {
		ch.Hosts = []string{host}
	}
	applyEnvMappings(map[string]any{
		"CLICKHOUSE_PORT":     &ch.Port,
		"CLICKHOUSE_DATABASE": &ch.Database,
		"CLICKHOUSE_USERNAME": &ch.Username,
		"CLICKHOUSE_PASSWORD": &ch.Password,
		"CLICKHOUSE_CLUSTER":  &ch.Cluster,
		"CLICKHOUSE_PROTOCOL": &ch.Protocol,
		"CLICKHOUSE_DEBUG":    &ch.Debug,
	})
}

func mergeReportEnvVars(config *Config) {
	rc := config.Report
	applyEnvMappings(map[string]any{
		"START_DATE":               &rc.StartDate,
		"END_DATE":                 &rc.EndDate,
		"REPORT_OUTPUT_DIR":        &rc.OutputDir,
		"REPORT_LOCALE":            &rc.Locale,
		"REPORT_CURRENCY":          &rc.Currency,
		"REPORT_CONVERSION_METRIC": &rc.ConversionMetric,
		"REPORT_CITY_THRESHOLD":    &rc.CityConcentrationThreshold,
		"REPORT_ROAS_DISPLAY":      &rc.ROASDisplay,
		"REPORT_CONCURRENCY":       &rc.Concurrency,
		"REPORT_TARGET_COUNTRIES":  &rc.TargetCountries,
		"REPORT_DISABLE_CHARTS":    &rc.DisableCharts,
		"REPORT_FONT_PATH":         &rc.FontPath,
		"REPORT_PUBLIC_URL":        &rc.PublicURL,
	})
}

// mergeServerEnvVars applies server variables
func mergeServerEnvVars(config *Config) {
	applyEnvMappings(map[string]any{
		"SERVER_PORT":            &config.Server.Port,
		"SERVER_ADDRESS":         &config.Server.Address,
		"SERVER_ALLOWED_ORIGINS": &config.Server.AllowedOrigins,
	})
}

// mergeSchedulerEnvVars applies scheduler variables
func mergeSchedulerEnvVars(config *Config) {
	applyEnvMappings(map[string]any{
		"SCHEDULER_ENABLED":  &config.Scheduler.Enabled,
		"SCHEDULER_TIMEZONE": &config.Scheduler.Timezone,
	})
}

func mergeNotificationEnvVars(config *Config) {
	wc, tg := config.WeChat, config.Telegram
	applyEnvMappings(map[string]any{
		"WECHAT_ENABLED":             &wc.Enabled,
		"WECHAT_WEBHOOK_URL":         &wc.WebhookURL,
		"WECHAT_MENTION_USERS":       &wc.MentionUsers,
		"WECHAT_MAX_RETRIES":         &wc.MaxRetries,
		"WECHAT_RETRY_DELAY":         &wc.RetryDelay,
		"WECHAT_NOTIFICATION_FORMAT": &wc.NotificationFormat,
		"TELEGRAM_ENABLED":           &tg.Enabled,
		"TELEGRAM_BOT_TOKEN":         &tg.BotToken,
		"TELEGRAM_CHAT_ID":           &tg.ChatID,
		"TELEGRAM_API_BASE":          &tg.APIBase,
	})
}

// mergeAppEnvVars applies app variables
func mergeAppEnvVars(config *Config) {
	applyEnvMappings(map[string]any{
		"LOG_LEVEL": &config.App.LogLevel,
		"LOG_FILE":  &config.App.LogFile,
		"APP_ENV":   &config.App.Environment,
	})
}
