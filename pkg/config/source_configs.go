package config

// Source drivers
const (
	DriverGA4        = "ga4"
	DriverGoogleAds  = "googleads"
	DriverClickHouse = "clickhouse"
)

// AnalyticsConfig web analytics source
type AnalyticsConfig struct {
	Driver            string  `json:"driver" yaml:"driver"` // ga4, clickhouse
	PropertyID        string  `json:"property_id" yaml:"property_id"`
	CredentialsFile   string  `json:"credentials_file" yaml:"credentials_file"`
	Endpoint          string  `json:"endpoint" yaml:"endpoint"`
	TimeoutSeconds    int     `json:"timeout_seconds" yaml:"timeout_seconds"`
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
	MaxRetries        int     `json:"max_retries" yaml:"max_retries"`
	Table             string  `json:"table" yaml:"table"` // clickhouse driver only
}

// NewAnalyticsConfig creates the analytics config from environment defaults
func NewAnalyticsConfig() *AnalyticsConfig {
	return &AnalyticsConfig{
		Driver:            getEnv("ANALYTICS_DRIVER", DriverGA4),
		PropertyID:        getEnv("PROPERTY_ID", ""),
		CredentialsFile:   getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		TimeoutSeconds:    getEnvInt("ANALYTICS_TIMEOUT", 60),
		RequestsPerSecond: getEnvFloat("ANALYTICS_RATE_LIMIT", 5),
		MaxRetries:        getEnvInt("ANALYTICS_MAX_RETRIES", 3),
		Table:             getEnv("ANALYTICS_TABLE", "ga4_events_daily"),
	}
}

// AdsTables names the warehouse tables for the clickhouse ads driver
type AdsTables struct {
	Campaigns   string `json:"campaigns" yaml:"campaigns"`
	Keywords    string `json:"keywords" yaml:"keywords"`
	SearchTerms string `json:"search_terms" yaml:"search_terms"`
}

// AdsConfig ads platform source
type AdsConfig struct {
	Driver            string    `json:"driver" yaml:"driver"` // googleads, clickhouse
	CustomerID        string    `json:"customer_id" yaml:"customer_id"`
	LoginCustomerID   string    `json:"login_customer_id" yaml:"login_customer_id"`
	DeveloperToken    string    `json:"developer_token" yaml:"developer_token"`
	ClientID          string    `json:"client_id" yaml:"client_id"`
	ClientSecret      string    `json:"client_secret" yaml:"client_secret"`
	RefreshToken      string    `json:"refresh_token" yaml:"refresh_token"`
	APIVersion        string    `json:"api_version" yaml:"api_version"`
	Endpoint          string    `json:"endpoint" yaml:"endpoint"`
	TimeoutSeconds    int       `json:"timeout_seconds" yaml:"timeout_seconds"`
	RequestsPerSecond float64   `json:"requests_per_second" yaml:"requests_per_second"`
	MaxRetries        int       `json:"max_retries" yaml:"max_retries"`
	Tables            AdsTables `json:"tables" yaml:"tables"`
}

// NewAdsConfig creates the ads config from environment defaults
func NewAdsConfig() *AdsConfig {
	return &AdsConfig{
		Driver:            getEnv("ADS_DRIVER", DriverGoogleAds),
		CustomerID:        getEnv("CUSTOMER_ID", ""),
		LoginCustomerID:   getEnv("GOOGLE_ADS_LOGIN_CUSTOMER_ID", ""),
		DeveloperToken:    getEnv("GOOGLE_ADS_DEVELOPER_TOKEN", ""),
		ClientID:          getEnv("GOOGLE_ADS_CLIENT_ID", ""),
		ClientSecret:      getEnv("GOOGLE_ADS_CLIENT_SECRET", ""),
		RefreshToken:      getEnv("GOOGLE_ADS_REFRESH_TOKEN", ""),
		APIVersion:        getEnv("GOOGLE_ADS_API_VERSION", "v17"),
		TimeoutSeconds:    getEnvInt("ADS_TIMEOUT", 60),
		RequestsPerSecond: getEnvFloat("ADS_RATE_LIMIT", 2),
		MaxRetries:        getEnvInt("ADS_MAX_RETRIES", 3),
		Tables: AdsTables{
			Campaigns:   "google_ads_campaign_daily",
			Keywords:    "google_ads_keyword_daily",
			SearchTerms: "google_ads_search_term_daily",
		},
	}
}
