package config

import (
	"fmt"
	"strings"
)

// SchedulerConfig represents the scheduler configuration
type SchedulerConfig struct {
	Enabled  bool           `json:"enabled" yaml:"enabled"`
	Timezone string         `json:"timezone" yaml:"timezone"`
	Jobs     []ScheduledJob `json:"jobs" yaml:"jobs"`
}

// ScheduledJob represents a scheduled report job
type ScheduledJob struct {
	Name   string    `json:"name" yaml:"name"`
	Cron   string    `json:"cron" yaml:"cron"`
	Config JobConfig `json:"config" yaml:"config"`
}

// JobConfig represents job-specific configuration
type JobConfig struct {
	LookbackDays int    `json:"lookback_days" yaml:"lookback_days"` // range is today-N..today
	Locale       string `json:"locale,omitempty" yaml:"locale,omitempty"`
	Notify       bool   `json:"notify" yaml:"notify"`
}

// ServerConfig represents server configuration settings
type ServerConfig struct {
	Port            int      `json:"port" yaml:"port"`
	Address         string   `json:"address" yaml:"address"`
	AllowedOrigins  []string `json:"allowed_origins" yaml:"allowed_origins"`
	ShutdownTimeout int      `json:"shutdown_timeout" yaml:"shutdown_timeout"` // seconds
	RunTimeout      int      `json:"run_timeout" yaml:"run_timeout"`           // seconds per report run
}

// AppConfig represents application configuration settings
type AppConfig struct {
	LogLevel    string `json:"log_level" yaml:"log_level"`
	LogFile     string `json:"log_file" yaml:"log_file"`
	Environment string `json:"environment" yaml:"environment"` // development, production
}

// NewSchedulerConfig creates a scheduler configuration with default values populated from environment variables
func NewSchedulerConfig() *SchedulerConfig {
	return &SchedulerConfig{
		Enabled:  getEnvBool("SCHEDULER_ENABLED", false),
		Timezone: getEnv("SCHEDULER_TIMEZONE", "Asia/Seoul"),
		Jobs: []ScheduledJob{{
			Name:   "daily_report",
			Cron:   getEnv("SCHEDULER_DAILY_CRON", "0 0 8 * * *"),
			Config: JobConfig{LookbackDays: 7, Notify: true},
		}},
	}
}

// NewServerConfig creates a server configuration with default values populated from environment variables
func NewServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:            getEnvInt("SERVER_PORT", 8080),
		Address:         getEnv("SERVER_ADDRESS", "0.0.0.0"),
		AllowedOrigins:  parseStringList(getEnv("SERVER_ALLOWED_ORIGINS", "*")),
		ShutdownTimeout: getEnvInt("SERVER_SHUTDOWN_TIMEOUT", 30),
		RunTimeout:      getEnvInt("SERVER_RUN_TIMEOUT", 600),
	}
}

// NewAppConfig creates an application configuration with default values populated from environment variables
func NewAppConfig() *AppConfig {
	return &AppConfig{
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFile:     getEnv("LOG_FILE", ""),
		Environment: getEnv("APP_ENV", "production"),
	}
}

// IsDevelopment reports whether console-only development logging is wanted
func (ac *AppConfig) IsDevelopment() bool {
	return strings.EqualFold(ac.Environment, "development")
}

// Validate validates the scheduler configuration
func (sc *SchedulerConfig) Validate() error {
	if !sc.Enabled {
		return nil
	}
	for i := range sc.Jobs {
		if err := sc.Jobs[i].Validate(); err != nil {
			return fmt.Errorf("job %d (%s): %w", i, sc.Jobs[i].Name, err)
		}
	}
	return nil
}

// Validate validates one scheduled job
func (sj *ScheduledJob) Validate() error {
	if sj.Name == "" {
		return fmt.Errorf("%w: name", ErrMissingRequired)
	}
	if sj.Cron == "" {
		return fmt.Errorf("%w: cron", ErrMissingRequired)
	}
	if !isValidCronExpression(sj.Cron) {
		return fmt.Errorf("%w: %s", ErrInvalidCron, sj.Cron)
	}
	if sj.Config.LookbackDays < 0 {
		return fmt.Errorf("%w: lookback_days must not be negative", ErrInvalidValue)
	}
	if sj.Config.Locale != "" && !isValidValue(sj.Config.Locale, []string{LocaleEN, LocaleKO}) {
		return fmt.Errorf("%w: locale %s", ErrInvalidValue, sj.Config.Locale)
	}
	return nil
}

// Validate validates the server configuration
func (sc *ServerConfig) Validate() error {
	if sc.Port <= 0 || sc.Port > 65535 {
		return fmt.Errorf("%w: port must be within 1-65535", ErrInvalidValue)
	}
	if sc.ShutdownTimeout <= 0 {
		sc.ShutdownTimeout = 30
	}
	if sc.RunTimeout <= 0 {
		sc.RunTimeout = 600
	}
	return nil
}

// Validate validates the application configuration
func (ac *AppConfig) Validate() error {
	if ac.LogLevel != "" && !isValidValue(strings.ToLower(ac.LogLevel), []string{"debug", "info", "warn", "error"}) {
		return fmt.Errorf("%w: log_level %s", ErrInvalidValue, ac.LogLevel)
	}
	return nil
}
