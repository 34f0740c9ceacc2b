package analysis

import (
	"sort"
	"strconv"
	"strings"

	"adreport/pkg/source"
)

// NotSet labels rows whose grouping key is empty
const NotSet = "(not set)"

// group accumulates counters for one natural key
type group struct {
	key   string
	sums  map[string]float64
	attrs map[string]string
}

// grouper keeps groups in first-seen order so ties sort deterministically
type grouper struct {
	order  []*group
	groups map[string]*group
}

func newGrouper() *grouper {
	return &grouper{groups: make(map[string]*group)}
}

func (g *grouper) add(key string, row source.Row, columns []string) *group {
	key = strings.TrimSpace(key)
	if key == "" {
		key = NotSet
	}

	grp, ok := g.groups[key]
	if !ok {
		grp = &group{key: key, sums: make(map[string]float64, len(columns)), attrs: make(map[string]string)}
		g.groups[key] = grp
		g.order = append(g.order, grp)
	}
	for _, c := range columns {
		grp.sums[c] += row.Float(c)
	}
	return grp
}

var adsColumns = []string{
	source.FieldImpressions,
	source.FieldClicks,
	source.FieldCostMicros,
	source.FieldConversions,
	source.FieldConversionsValue,
}

// GroupAdsRows groups ads rows by keyField, summing counters per key and
// deriving ratios once from the grouped totals. Sorted by conversions, then
// cost, descending.
func GroupAdsRows(rows []source.Row, keyField string) []DimensionRow {
	g := newGrouper()
	hasValue := false
	for _, row := range rows {
		grp := g.add(row.String(keyField), row, adsColumns)
		if row.Has(source.FieldConversionsValue) {
			hasValue = true
		}
		if mt := row.String(source.FieldKeywordMatchType); mt != "" {
			if _, ok := grp.attrs["match_type"]; !ok {
				grp.attrs["match_type"] = mt
			}
		}
	}

	out := make([]DimensionRow, 0, len(g.order))
	for _, grp := range g.order {
		r := DimensionRow{
			Key:             grp.key,
			MatchType:       grp.attrs["match_type"],
			Impressions:     grp.sums[source.FieldImpressions],
			Clicks:          grp.sums[source.FieldClicks],
			Cost:            grp.sums[source.FieldCostMicros] / source.MicrosPerUnit,
			Conversions:     grp.sums[source.FieldConversions],
			ConversionValue: grp.sums[source.FieldConversionsValue],
		}
		r.CTR = CTR(r.Clicks, r.Impressions)
		r.CPC = CPC(r.Cost, r.Clicks)
		r.CPA = CPA(r.Cost, r.Conversions)
		r.CVR = CVR(r.Conversions, r.Clicks)
		r.ROAS = ROAS(r.ConversionValue, r.Cost, hasValue)
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Conversions != out[j].Conversions {
			return out[i].Conversions > out[j].Conversions
		}
		return out[i].Cost > out[j].Cost
	})
	return out
}

// GroupChannels groups analytics rows by default channel group, sorted by sessions
func GroupChannels(rows []source.Row, conversionMetric string) []ChannelRow {
	columns := []string{MetricSessions, MetricTotalUsers, conversionMetric}
	g := newGrouper()
	var total float64
	for _, row := range rows {
		g.add(row.String(DimensionChannel), row, columns)
		total += row.Float(MetricSessions)
	}

	out := make([]ChannelRow, 0, len(g.order))
	for _, grp := range g.order {
		sessions := grp.sums[MetricSessions]
		conv := grp.sums[conversionMetric]
		out = append(out, ChannelRow{
			Channel:     grp.key,
			Sessions:    sessions,
			Users:       grp.sums[MetricTotalUsers],
			Conversions: conv,
			CVR:         CVR(conv, sessions),
			Share:       Share(sessions, total),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Sessions > out[j].Sessions })
	return out
}

// GroupCountries groups analytics rows by country with each country's share
// of total conversions, sorted by conversions
func GroupCountries(rows []source.Row, conversionMetric string, targets TargetSet) []CountryRow {
	columns := []string{MetricSessions, conversionMetric}
	g := newGrouper()
	var total float64
	for _, row := range rows {
		g.add(row.String(DimensionCountry), row, columns)
		total += row.Float(conversionMetric)
	}

	out := make([]CountryRow, 0, len(g.order))
	for _, grp := range g.order {
		sessions := grp.sums[MetricSessions]
		conv := grp.sums[conversionMetric]
		out = append(out, CountryRow{
			Country:     grp.key,
			Sessions:    sessions,
			Conversions: conv,
			CVR:         CVR(conv, sessions),
			Share:       Share(conv, total),
			Target:      targets.Contains(grp.key),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Conversions != out[j].Conversions {
			return out[i].Conversions > out[j].Conversions
		}
		return out[i].Sessions > out[j].Sessions
	})
	return out
}

// GroupCities groups analytics rows by city and country. Share is relative to
// the conversions of every city row, so callers must trim after grouping.
func GroupCities(rows []source.Row, conversionMetric string, targets TargetSet) []CityRow {
	columns := []string{MetricSessions, conversionMetric}
	g := newGrouper()
	var total float64
	for _, row := range rows {
		city := row.String(DimensionCity)
		country := row.String(DimensionCountry)
		grp := g.add(city+"\x00"+country, row, columns)
		grp.attrs["city"] = city
		grp.attrs["country"] = country
		total += row.Float(conversionMetric)
	}

	out := make([]CityRow, 0, len(g.order))
	for _, grp := range g.order {
		city := strings.TrimSpace(grp.attrs["city"])
		if city == "" {
			city = NotSet
		}
		sessions := grp.sums[MetricSessions]
		conv := grp.sums[conversionMetric]
		out = append(out, CityRow{
			City:        city,
			Country:     grp.attrs["country"],
			Sessions:    sessions,
			Conversions: conv,
			CVR:         CVR(conv, sessions),
			Share:       Share(conv, total),
			Target:      targets.Contains(grp.attrs["country"]),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Conversions != out[j].Conversions {
			return out[i].Conversions > out[j].Conversions
		}
		return out[i].Sessions > out[j].Sessions
	})
	return out
}

// SummarizeGeo computes the target-market split of country conversions
func SummarizeGeo(countries []CountryRow) GeoSummary {
	var s GeoSummary
	var target float64
	for _, c := range countries {
		s.TotalConversions += c.Conversions
		if c.Target {
			target += c.Conversions
		}
		if c.Conversions > 0 {
			s.ActiveCountries++
		}
	}
	if s.TotalConversions > 0 {
		s.TargetShare = Round(Share(target, s.TotalConversions), 1)
		s.NonTargetShare = Round(100-s.TargetShare, 1)
	}
	return s
}

// GroupEvents counts configured conversion events. With a non-empty allow
// list, other events are dropped and configured events without rows are
// reported with a zero count.
func GroupEvents(rows []source.Row, allowed []string) []EventRow {
	g := newGrouper()
	allow := make(map[string]bool, len(allowed))
	for _, e := range allowed {
		allow[e] = true
		g.add(e, source.Row{}, nil)
	}

	for _, row := range rows {
		name := row.String(DimensionEventName)
		if len(allow) > 0 && !allow[name] {
			continue
		}
		g.add(name, row, []string{MetricEventCount})
	}

	out := make([]EventRow, 0, len(g.order))
	for _, grp := range g.order {
		out = append(out, EventRow{Event: grp.key, Count: grp.sums[MetricEventCount]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// GroupPages groups top pages by path. Duration and bounce rate are not
// additive and are averaged weighted by views.
func GroupPages(rows []source.Row) []PageRow {
	g := newGrouper()
	for _, row := range rows {
		views := row.Float(MetricPageViews)
		grp := g.add(row.String(DimensionPagePath), row, []string{MetricPageViews})
		grp.sums["weighted_duration"] += row.Float(MetricAvgSessionDuration) * views
		grp.sums["weighted_bounce"] += row.Float(MetricBounceRate) * views
	}

	out := make([]PageRow, 0, len(g.order))
	for _, grp := range g.order {
		views := grp.sums[MetricPageViews]
		out = append(out, PageRow{
			Path:               grp.key,
			Views:              views,
			AvgSessionDuration: SafeDiv(grp.sums["weighted_duration"], views),
			BounceRate:         SafeDiv(grp.sums["weighted_bounce"], views) * 100,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Views > out[j].Views })
	return out
}

// GroupLandingPages groups landing pages, sorted by sessions
func GroupLandingPages(rows []source.Row, conversionMetric string) []LandingPageRow {
	g := newGrouper()
	for _, row := range rows {
		g.add(row.String(DimensionLandingPage), row, []string{MetricSessions, conversionMetric})
	}

	out := make([]LandingPageRow, 0, len(g.order))
	for _, grp := range g.order {
		sessions := grp.sums[MetricSessions]
		conv := grp.sums[conversionMetric]
		out = append(out, LandingPageRow{
			Path:        grp.key,
			Sessions:    sessions,
			Conversions: conv,
			CVR:         CVR(conv, sessions),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Sessions > out[j].Sessions })
	return out
}

// GroupBreakdown groups traffic by a single dimension. Numeric keys (weekday,
// hour) sort ascending by key when sortByKey is set; otherwise rows sort by
// sessions.
func GroupBreakdown(rows []source.Row, dimension, conversionMetric string, sortByKey bool) []BreakdownRow {
	g := newGrouper()
	for _, row := range rows {
		g.add(row.String(dimension), row, []string{MetricSessions, conversionMetric})
	}

	out := make([]BreakdownRow, 0, len(g.order))
	for _, grp := range g.order {
		sessions := grp.sums[MetricSessions]
		conv := grp.sums[conversionMetric]
		out = append(out, BreakdownRow{
			Key:         grp.key,
			Sessions:    sessions,
			Conversions: conv,
			CVR:         CVR(conv, sessions),
		})
	}

	if sortByKey {
		sort.SliceStable(out, func(i, j int) bool {
			a, errA := strconv.Atoi(out[i].Key)
			b, errB := strconv.Atoi(out[j].Key)
			if errA != nil || errB != nil {
				return out[i].Key < out[j].Key
			}
			return a < b
		})
	} else {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Sessions > out[j].Sessions })
	}
	return out
}

func limitRows[T any](rows []T, n int) []T {
	if n <= 0 || len(rows) <= n {
		return rows
	}
	return rows[:n]
}
