package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// Config is the root configuration
type Config struct {
	Analytics  *AnalyticsConfig  `json:"analytics" yaml:"analytics"`
	Ads        *AdsConfig        `json:"ads" yaml:"ads"`
	ClickHouse *ClickHouseConfig `json:"clickhouse" yaml:"clickhouse"`
	Report     *ReportConfig     `json:"report" yaml:"report"`
	Server     *ServerConfig     `json:"server" yaml:"server"`
	Scheduler  *SchedulerConfig  `json:"scheduler" yaml:"scheduler"`
	WeChat     *WeChatConfig     `json:"wechat" yaml:"wechat"`
	Telegram   *TelegramConfig   `json:"telegram" yaml:"telegram"`
	App        *AppConfig        `json:"app" yaml:"app"`
}

// getDefaultConfig returns a config where every section holds its defaults
func getDefaultConfig() *Config {
	return &Config{
		Analytics:  NewAnalyticsConfig(),
		Ads:        NewAdsConfig(),
		ClickHouse: NewClickHouseConfig(),
		Report:     NewReportConfig(),
		Server:     NewServerConfig(),
		Scheduler:  NewSchedulerConfig(),
		WeChat:     NewWeChatConfig(),
		Telegram:   NewTelegramConfig(),
		App:        NewAppConfig(),
	}
}

// fillDefaults replaces sections absent from a loaded file
func (c *Config) fillDefaults() {
	d := getDefaultConfig()
	if c.Analytics == nil {
		c.Analytics = d.Analytics
	}
	if c.Ads == nil {
		c.Ads = d.Ads
	}
	if c.ClickHouse == nil {
		c.ClickHouse = d.ClickHouse
	}
	if c.Report == nil {
		c.Report = d.Report
	}
	if c.Server == nil {
		c.Server = d.Server
	}
	if c.Scheduler == nil {
		c.Scheduler = d.Scheduler
	}
	if c.WeChat == nil {
		c.WeChat = d.WeChat
	}
	if c.Telegram == nil {
		c.Telegram = d.Telegram
	}
	if c.App == nil {
		c.App = d.App
	}
}

// UsesClickHouse reports whether either source reads from the warehouse
func (c *Config) UsesClickHouse() bool {
	return (c.Analytics != nil && c.Analytics.Driver == DriverClickHouse) ||
		(c.Ads != nil && c.Ads.Driver == DriverClickHouse)
}

// ClickHouseConfig configures the warehouse connection
type ClickHouseConfig struct {
	Hosts    []string `json:"hosts" yaml:"hosts"`
	Port     int      `json:"port" yaml:"port"`
	Database string   `json:"database" yaml:"database"`
	Username string   `json:"username" yaml:"username"`
	Password string   `json:"password" yaml:"password"`
	Debug    bool     `json:"debug" yaml:"debug"`
	Cluster  string   `json:"cluster" yaml:"cluster"`
	Protocol string   `json:"protocol" yaml:"protocol"` // native, http
}

func NewClickHouseConfig() *ClickHouseConfig {
	hosts := []string{getEnv("CLICKHOUSE_HOST", "localhost")}
	if hostsEnv := os.Getenv("CLICKHOUSE_HOSTS"); hostsEnv != "" {
		hosts = parseStringList(hostsEnv)
	}

	protocol := getEnv("CLICKHOUSE_PROTOCOL", "native")
	defaultPort := 9000
	if protocol == "http" {
		defaultPort = 8123
	}

	return &ClickHouseConfig{
		Hosts:    hosts,
		Port:     getEnvInt("CLICKHOUSE_PORT", defaultPort),
		Database: getEnv("CLICKHOUSE_DATABASE", "marketing"),
		Username: getEnv("CLICKHOUSE_USERNAME", "default"),
		Password: getEnv("CLICKHOUSE_PASSWORD", ""),
		Debug:    getEnvBool("CLICKHOUSE_DEBUG", false),
		Cluster:  getEnv("CLICKHOUSE_CLUSTER", ""),
		Protocol: protocol,
	}
}

func (c *ClickHouseConfig) DSN() string {
	host := "localhost"
	if len(c.Hosts) > 0 {
		host = c.Hosts[0]
	}
	scheme := "clickhouse"
	if c.Protocol == "http" {
		scheme = "http"
	}
	return fmt.Sprintf("%s://%s:%s@%s:%d/%s",
		scheme, url.QueryEscape(c.Username), url.QueryEscape(c.Password), host, c.Port, c.Database)
}

// GetProtocol returns the protocol, native by default
func (c *ClickHouseConfig) GetProtocol() clickhouse.Protocol {
	if c.Protocol == "http" {
		return clickhouse.HTTP
	}
	return clickhouse.Native
}

func (c *ClickHouseConfig) GetAddresses() []string {
	addresses := make([]string, len(c.Hosts))
	for i, host := range c.Hosts {
		addresses[i] = fmt.Sprintf("%s:%d", host, c.Port)
	}
	return addresses
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

// parseStringList splits a comma separated list, dropping empty items
func parseStringList(s string) []string {
	out := make([]string, 0)
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
