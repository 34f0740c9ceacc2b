package config

import (
	"fmt"
	"time"

	"adreport/pkg/utils/dateutils"
)

// Supported locales and ROAS display modes
const (
	LocaleEN = "en"
	LocaleKO = "ko"

	ROASDisplayNA   = "na"
	ROASDisplayOmit = "omit"
)

// City concentration thresholds per locale profile, in percent
const (
	DefaultCityThreshold   = 30.0
	KoreanCityThreshold    = 25.0
	DefaultOutputDir       = "reports"
	DefaultConversionField = "conversions"
)

// ReportConfig controls one report run
type ReportConfig struct {
	StartDate                  string   `json:"start_date" yaml:"start_date"`
	EndDate                    string   `json:"end_date" yaml:"end_date"`
	OutputDir                  string   `json:"output_dir" yaml:"output_dir"`
	Locale                     string   `json:"locale" yaml:"locale"`
	Currency                   string   `json:"currency" yaml:"currency"`
	TargetCountries            []string `json:"target_countries" yaml:"target_countries"`
	ConversionEvents           []string `json:"conversion_events" yaml:"conversion_events"`
	ConversionMetric           string   `json:"conversion_metric" yaml:"conversion_metric"` // conversions or keyEvents
	CityConcentrationThreshold float64  `json:"city_concentration_threshold" yaml:"city_concentration_threshold"`
	ROASDisplay                string   `json:"roas_display" yaml:"roas_display"`
	WasteTopN                  int      `json:"waste_top_n" yaml:"waste_top_n"`
	RowLimit                   int      `json:"row_limit" yaml:"row_limit"`
	TableLimit                 int      `json:"table_limit" yaml:"table_limit"`
	CityLimit                  int      `json:"city_limit" yaml:"city_limit"`
	Concurrency                int      `json:"concurrency" yaml:"concurrency"`
	DisableCharts              bool     `json:"disable_charts" yaml:"disable_charts"`
	FontPath                   string   `json:"font_path" yaml:"font_path"`   // TTF used for chart labels
	PublicURL                  string   `json:"public_url" yaml:"public_url"` // base URL of output_dir, linked from notifications
}

// NewReportConfig creates the report config from environment defaults
func NewReportConfig() *ReportConfig {
	rc := &ReportConfig{
		StartDate:                  getEnv("START_DATE", ""),
		EndDate:                    getEnv("END_DATE", ""),
		OutputDir:                  getEnv("REPORT_OUTPUT_DIR", DefaultOutputDir),
		Locale:                     getEnv("REPORT_LOCALE", LocaleEN),
		Currency:                   getEnv("REPORT_CURRENCY", "KRW"),
		ConversionMetric:           getEnv("REPORT_CONVERSION_METRIC", DefaultConversionField),
		CityConcentrationThreshold: getEnvFloat("REPORT_CITY_THRESHOLD", 0),
		ROASDisplay:                getEnv("REPORT_ROAS_DISPLAY", ROASDisplayNA),
		WasteTopN:                  10,
		RowLimit:                   100,
		TableLimit:                 20,
		CityLimit:                  30,
		Concurrency:                getEnvInt("REPORT_CONCURRENCY", 4),
		DisableCharts:              getEnvBool("REPORT_DISABLE_CHARTS", false),
		FontPath:                   getEnv("REPORT_FONT_PATH", ""),
		PublicURL:                  getEnv("REPORT_PUBLIC_URL", ""),
	}
	rc.setDefaults()
	return rc
}

func (rc *ReportConfig) setDefaults() {
	if rc.OutputDir == "" {
		rc.OutputDir = DefaultOutputDir
	}
	if rc.Locale == "" {
		rc.Locale = LocaleEN
	}
	if rc.Currency == "" {
		rc.Currency = "KRW"
	}
	if rc.ConversionMetric == "" {
		rc.ConversionMetric = DefaultConversionField
	}
	if rc.CityConcentrationThreshold <= 0 {
		rc.CityConcentrationThreshold = DefaultCityThreshold
		if rc.Locale == LocaleKO {
			rc.CityConcentrationThreshold = KoreanCityThreshold
		}
	}
	if rc.ROASDisplay == "" {
		rc.ROASDisplay = ROASDisplayNA
	}
}

// ResolveDates returns the configured range, defaulting to the last seven
// days ending today
func (rc *ReportConfig) ResolveDates(today time.Time) (string, string, error) {
	defStart, defEnd := dateutils.DefaultRange(today)
	start, end := rc.StartDate, rc.EndDate
	if start == "" {
		start = defStart
	}
	if end == "" {
		end = defEnd
	}

	s, err := dateutils.ParseDate(start)
	if err != nil {
		return "", "", fmt.Errorf("%w: start_date: %v", ErrInvalidValue, err)
	}
	e, err := dateutils.ParseDate(end)
	if err != nil {
		return "", "", fmt.Errorf("%w: end_date: %v", ErrInvalidValue, err)
	}
	if s.After(e) {
		return "", "", fmt.Errorf("%w: start_date %s is after end_date %s", ErrInvalidValue, start, end)
	}
	return start, end, nil
}
