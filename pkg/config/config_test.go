package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := getDefaultConfig()
	cfg.Analytics.PropertyID = "123456"
	cfg.Ads.CustomerID = "123-456-7890"
	cfg.Ads.DeveloperToken = "dev"
	cfg.Ads.ClientID = "id"
	cfg.Ads.ClientSecret = "secret"
	cfg.Ads.RefreshToken = "refresh"
	return cfg
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err != nil {
		t.Fatalf("Failed to load default config: %v", err)
	}
	if cfg.Analytics == nil || cfg.Ads == nil || cfg.Report == nil || cfg.App == nil {
		t.Fatal("default config should populate every section")
	}
	if cfg.Report.OutputDir != DefaultOutputDir || cfg.Report.CityConcentrationThreshold != DefaultCityThreshold {
		t.Errorf("unexpected report defaults: %+v", cfg.Report)
	}
	if cfg.Report.ROASDisplay != ROASDisplayNA || cfg.Report.Concurrency != 4 {
		t.Errorf("unexpected report defaults: %+v", cfg.Report)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	original := validConfig()
	original.Report.Locale = LocaleKO
	original.Report.CityConcentrationThreshold = 0
	original.Report.TargetCountries = []string{"South Korea", "Japan"}

	if err := SaveConfig(original, path); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loaded.Analytics.PropertyID != "123456" || loaded.Ads.CustomerID != "123-456-7890" {
		t.Errorf("ids not round-tripped: %+v %+v", loaded.Analytics, loaded.Ads)
	}
	if len(loaded.Report.TargetCountries) != 2 {
		t.Errorf("target countries = %v", loaded.Report.TargetCountries)
	}
	if loaded.Report.CityConcentrationThreshold != KoreanCityThreshold {
		t.Errorf("ko profile should default the city threshold to 25, got %v", loaded.Report.CityConcentrationThreshold)
	}
}

func TestLoadConfigPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "analytics:\n  property_id: \"999\"\nreport:\n  locale: en\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Analytics.PropertyID != "999" {
		t.Errorf("property id = %q", cfg.Analytics.PropertyID)
	}
	if cfg.Server == nil || cfg.Server.Port == 0 || cfg.Telegram == nil {
		t.Error("missing sections should fall back to defaults")
	}
	if cfg.Report.OutputDir != DefaultOutputDir {
		t.Errorf("output dir = %q", cfg.Report.OutputDir)
	}
}

func TestLoadConfigInvalidFormat(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "config.toml")
	os.WriteFile(bad, []byte("x = 1"), 0644)
	if _, err := LoadConfig(bad); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("expected ErrInvalidFormat, got %v", err)
	}

	broken := filepath.Join(dir, "config.json")
	os.WriteFile(broken, []byte("{"), 0644)
	if _, err := LoadConfig(broken); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("expected ErrInvalidFormat for bad JSON, got %v", err)
	}
}

func TestConfigWithEnvVars(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := SaveConfig(validConfig(), path); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PROPERTY_ID", "env-property")
	t.Setenv("CUSTOMER_ID", "env-customer")
	t.Setenv("START_DATE", "2024-03-01")
	t.Setenv("END_DATE", "2024-03-07")
	t.Setenv("CLICKHOUSE_HOSTS", "ch1, ch2")
	t.Setenv("REPORT_TARGET_COUNTRIES", "Japan,Germany")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Analytics.PropertyID != "env-property" || cfg.Ads.CustomerID != "env-customer" {
		t.Errorf("env should win over file values: %s %s", cfg.Analytics.PropertyID, cfg.Ads.CustomerID)
	}
	if cfg.Report.StartDate != "2024-03-01" || cfg.Report.EndDate != "2024-03-07" {
		t.Errorf("dates = %s..%s", cfg.Report.StartDate, cfg.Report.EndDate)
	}
	if len(cfg.ClickHouse.Hosts) != 2 || cfg.ClickHouse.Hosts[1] != "ch2" {
		t.Errorf("hosts = %v", cfg.ClickHouse.Hosts)
	}
	if len(cfg.Report.TargetCountries) != 2 || cfg.App.LogLevel != "debug" {
		t.Errorf("list/env merge failed: %v %s", cfg.Report.TargetCountries, cfg.App.LogLevel)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr []error
	}{
		{"valid", func(*Config) {}, nil},
		{"missing property", func(c *Config) { c.Analytics.PropertyID = "" }, []error{ErrAnalyticsConfig, ErrMissingRequired}},
		{"missing customer", func(c *Config) { c.Ads.CustomerID = " " }, []error{ErrAdsConfig, ErrMissingRequired}},
		{"missing developer token", func(c *Config) { c.Ads.DeveloperToken = "" }, []error{ErrAdsConfig, ErrMissingRequired}},
		{"unknown analytics driver", func(c *Config) { c.Analytics.Driver = "bigquery" }, []error{ErrAnalyticsConfig, ErrInvalidValue}},
		{"clickhouse ads without oauth", func(c *Config) {
			c.Ads.Driver = DriverClickHouse
			c.Ads.RefreshToken = ""
		}, nil},
		{"clickhouse bad port", func(c *Config) {
			c.Analytics.Driver = DriverClickHouse
			c.ClickHouse.Port = 0
		}, []error{ErrClickHouseConfig, ErrInvalidValue}},
		{"bad locale", func(c *Config) { c.Report.Locale = "fr" }, []error{ErrReportConfig, ErrInvalidValue}},
		{"bad roas display", func(c *Config) { c.Report.ROASDisplay = "zero" }, []error{ErrReportConfig}},
		{"bad cron", func(c *Config) {
			c.Scheduler.Enabled = true
			c.Scheduler.Jobs = []ScheduledJob{{Name: "daily", Cron: "every day"}}
		}, []error{ErrSchedulerConfig, ErrInvalidCron}},
		{"descriptor cron", func(c *Config) {
			c.Scheduler.Enabled = true
			c.Scheduler.Jobs = []ScheduledJob{{Name: "daily", Cron: "@daily"}}
		}, nil},
		{"wechat without webhook", func(c *Config) {
			c.WeChat.Enabled = true
			c.WeChat.WebhookURL = ""
		}, []error{ErrWeChatConfig}},
		{"telegram without chat", func(c *Config) {
			c.Telegram.Enabled = true
			c.Telegram.BotToken = "t"
			c.Telegram.ChatID = ""
		}, []error{ErrTelegramConfig, ErrMissingRequired}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.ValidateConfig()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			for _, want := range tt.wantErr {
				if !errors.Is(err, want) {
					t.Errorf("expected %v in %v", want, err)
				}
			}
		})
	}
}

func TestResolveDates(t *testing.T) {
	today := time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)

	rc := &ReportConfig{}
	start, end, err := rc.ResolveDates(today)
	if err != nil || start != "2024-03-01" || end != "2024-03-08" {
		t.Errorf("default range = %s..%s (%v)", start, end, err)
	}

	rc = &ReportConfig{StartDate: "2024-02-01", EndDate: "2024-02-29"}
	if start, end, _ = rc.ResolveDates(today); start != "2024-02-01" || end != "2024-02-29" {
		t.Errorf("explicit range = %s..%s", start, end)
	}

	rc = &ReportConfig{StartDate: "2024-03-09", EndDate: "2024-03-01"}
	if _, _, err := rc.ResolveDates(today); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("inverted range should fail, got %v", err)
	}

	rc = &ReportConfig{StartDate: "03/01/2024"}
	if _, _, err := rc.ResolveDates(today); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("bad format should fail, got %v", err)
	}
}

func TestClickHouseAddresses(t *testing.T) {
	ch := &ClickHouseConfig{Hosts: []string{"a", "b"}, Port: 9000, Username: "u ser", Password: "p@ss", Database: "db"}
	addrs := ch.GetAddresses()
	if len(addrs) != 2 || addrs[1] != "b:9000" {
		t.Errorf("addresses = %v", addrs)
	}
	if dsn := ch.DSN(); dsn != "clickhouse://u+ser:p%40ss@a:9000/db" {
		t.Errorf("dsn = %s", dsn)
	}
}
