package analysis

import (
	"fmt"
	"sort"
	"strings"
)

// Fixed rule thresholds
const (
	DiscrepancyThreshold     = 30.0 // percent, flag above
	DiscrepancyHighThreshold = 50.0 // percent, high above
	SuspiciousCountryCVR     = 10.0 // percent
	SuspiciousCountryMinConv = 10.0
	CityConcentrationTopN    = 3

	DefaultCityConcentrationThreshold = 30.0
	DefaultWasteTopN                  = 10
)

// DefaultTargetCountries are the markets the ads program targets
var DefaultTargetCountries = []string{
	"United States", "Canada", "United Kingdom", "Germany", "France", "Italy", "Spain",
	"Netherlands", "Belgium", "Australia", "Japan", "Singapore", "United Arab Emirates", "South Korea",
}

// DefaultConversionEvents are the lead events counted as conversions
var DefaultConversionEvents = []string{
	"contact_form_submit", "email_click", "phone_calls", "wechat_call", "kakao_click",
}

// TargetSet is a case-insensitive country allow list
type TargetSet map[string]struct{}

// NewTargetSet builds a target set from country names
func NewTargetSet(countries []string) TargetSet {
	ts := make(TargetSet, len(countries))
	for _, c := range countries {
		if c = strings.TrimSpace(c); c != "" {
			ts[strings.ToLower(c)] = struct{}{}
		}
	}
	return ts
}

// Contains reports whether country is targeted
func (ts TargetSet) Contains(country string) bool {
	_, ok := ts[strings.ToLower(strings.TrimSpace(country))]
	return ok
}

// Snapshot is the aggregate input the detector evaluates
type Snapshot struct {
	AnalyticsConversions float64
	AdsConversions       float64
	Countries            []CountryRow
	Cities               []CityRow // the city table as reported, already trimmed
}

// Detector evaluates the anomaly rules. It holds no state between calls.
type Detector struct {
	targets       TargetSet
	cityThreshold float64
}

// NewDetector creates a detector. A non-positive city threshold uses the default.
func NewDetector(targets TargetSet, cityThreshold float64) *Detector {
	if cityThreshold <= 0 {
		cityThreshold = DefaultCityConcentrationThreshold
	}
	if targets == nil {
		targets = NewTargetSet(DefaultTargetCountries)
	}
	return &Detector{targets: targets, cityThreshold: cityThreshold}
}

// CityThreshold returns the city concentration threshold in percent
func (d *Detector) CityThreshold() float64 {
	return d.cityThreshold
}

// Detect evaluates every rule independently and returns the findings in
// rule order
func (d *Detector) Detect(s Snapshot) []Finding {
	findings := make([]Finding, 0)
	findings = append(findings, d.checkDiscrepancy(s)...)
	findings = append(findings, d.checkCountries(s.Countries)...)
	findings = append(findings, d.checkCities(s.Cities)...)
	return findings
}

func (d *Detector) checkDiscrepancy(s Snapshot) []Finding {
	disc := Discrepancy(s.AnalyticsConversions, s.AdsConversions)
	if !disc.Available || disc.Value <= DiscrepancyThreshold {
		return nil
	}

	severity := SeverityMedium
	if disc.Value > DiscrepancyHighThreshold {
		severity = SeverityHigh
	}
	detail := fmt.Sprintf("Analytics reports %.0f conversions but ads reports %.0f (%.1f%% discrepancy)",
		s.AnalyticsConversions, s.AdsConversions, disc.Value)
	return []Finding{NewFinding(FindingSourceDiscrepancy, severity, "analytics/ads", disc.Value, detail)}
}

func (d *Detector) checkCountries(countries []CountryRow) []Finding {
	var out []Finding
	for _, c := range countries {
		if d.targets.Contains(c.Country) {
			continue
		}
		if c.CVR > SuspiciousCountryCVR && c.Conversions > SuspiciousCountryMinConv {
			detail := fmt.Sprintf("%s converts at %.1f%% with %.0f conversions outside target markets",
				c.Country, c.CVR, c.Conversions)
			out = append(out, NewFinding(FindingSuspiciousCountry, SeverityHigh, c.Country, c.CVR, detail))
		}
	}
	return out
}

func (d *Detector) checkCities(cities []CityRow) []Finding {
	var total float64
	for _, c := range cities {
		total += c.Conversions
	}
	if total <= 0 {
		return nil
	}

	ranked := append([]CityRow(nil), cities...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Conversions > ranked[j].Conversions })

	var out []Finding
	for _, c := range limitRows(ranked, CityConcentrationTopN) {
		pct := Share(c.Conversions, total)
		if pct > d.cityThreshold && !d.targets.Contains(c.Country) {
			detail := fmt.Sprintf("%s (%s) accounts for %.1f%% of city conversions", c.City, c.Country, pct)
			out = append(out, NewFinding(FindingCityConcentration, SeverityMedium, c.City, pct, detail))
		}
	}
	return out
}

// WastedSpend returns the top n rows by cost that spent money without a
// single conversion
func WastedSpend(rows []DimensionRow, n int) []DimensionRow {
	out := make([]DimensionRow, 0)
	for _, r := range rows {
		if r.Conversions == 0 && r.Cost > 0 {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Cost > out[j].Cost })
	return limitRows(out, n)
}
