package analysis

import (
	"math"
)

// SafeDiv returns n/d, or 0 when d is 0
func SafeDiv(n, d float64) float64 {
	if d == 0 {
		return 0
	}
	return n / d
}

// CTR is clicks / impressions * 100
func CTR(clicks, impressions float64) float64 {
	return SafeDiv(clicks, impressions) * 100
}

// CPC is cost / clicks
func CPC(cost, clicks float64) float64 {
	return SafeDiv(cost, clicks)
}

// CPA is cost / conversions
func CPA(cost, conversions float64) float64 {
	return SafeDiv(cost, conversions)
}

// CVR is conversions / denominator * 100. Pass sessions for the analytics
// side and clicks for the ads side.
func CVR(conversions, denominator float64) float64 {
	return SafeDiv(conversions, denominator) * 100
}

// Share is part / total * 100
func Share(part, total float64) float64 {
	return SafeDiv(part, total) * 100
}

// ROAS is conversion value / cost, unavailable unless the ads source
// supplied conversion values
func ROAS(conversionValue, cost float64, hasValue bool) Optional {
	if !hasValue {
		return Optional{}
	}
	return Some(SafeDiv(conversionValue, cost))
}

// Delta computes the percent change from previous to current. It has no
// value when previous <= 0. Direction uses exact comparison.
func Delta(current, previous float64) Change {
	c := Change{Current: current, Previous: previous, Direction: DirectionNone}
	if previous <= 0 {
		return c
	}

	c.Percent = (current - previous) / previous * 100
	c.Available = true
	switch {
	case c.Percent > 0:
		c.Direction = DirectionIncrease
	case c.Percent < 0:
		c.Direction = DirectionDecrease
	default:
		c.Direction = DirectionUnchanged
	}
	return c
}

// Discrepancy is |analytics - ads| / analytics * 100, available only when
// both sides reported conversions
func Discrepancy(analyticsConversions, adsConversions float64) Optional {
	if analyticsConversions <= 0 || adsConversions <= 0 {
		return Optional{}
	}
	return Some(math.Abs(analyticsConversions-adsConversions) / analyticsConversions * 100)
}

// Round rounds v to places decimals
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Summarize sums every counter over dates and derives the ratios
func Summarize(dates []string, daily *DailyMetrics, hasValue bool) AggregateTotals {
	t := SumOver(dates, daily)
	return buildTotals(len(dates), t, hasValue)
}

func buildTotals(days int, t Totals, hasValue bool) AggregateTotals {
	a := AggregateTotals{
		Days:                 days,
		Sessions:             t[FieldSessions],
		ActiveUsers:          t[FieldActiveUsers],
		AnalyticsConversions: t[FieldAnalyticsConversions],
		Cost:                 t[FieldCost],
		Impressions:          t[FieldImpressions],
		Clicks:               t[FieldClicks],
		AdsConversions:       t[FieldAdsConversions],
		ConversionValue:      t[FieldConversionValue],
	}
	a.CTR = CTR(a.Clicks, a.Impressions)
	a.CPC = CPC(a.Cost, a.Clicks)
	a.CPA = CPA(a.Cost, a.AnalyticsConversions)
	a.AdsCPA = CPA(a.Cost, a.AdsConversions)
	a.CVR = CVR(a.AnalyticsConversions, a.Sessions)
	a.AdsCVR = CVR(a.AdsConversions, a.Clicks)
	a.ROAS = ROAS(a.ConversionValue, a.Cost, hasValue)
	return a
}

// Compare builds a period comparison of current against previous
func Compare(name string, current, previous []string, daily *DailyMetrics, hasValue bool) PeriodComparison {
	cur := Summarize(current, daily, hasValue)
	prev := Summarize(previous, daily, hasValue)

	return PeriodComparison{
		Name:           name,
		Current:        cur,
		Previous:       prev,
		Comparable:     len(current) > 0 && len(previous) > 0,
		Partial:        len(previous) > 0 && len(previous) < len(current),
		Sessions:       Delta(cur.Sessions, prev.Sessions),
		Conversions:    Delta(cur.AnalyticsConversions, prev.AnalyticsConversions),
		Cost:           Delta(cur.Cost, prev.Cost),
		Clicks:         Delta(cur.Clicks, prev.Clicks),
		Impressions:    Delta(cur.Impressions, prev.Impressions),
		AdsConversions: Delta(cur.AdsConversions, prev.AdsConversions),
		CVR:            Delta(cur.CVR, prev.CVR),
		CPA:            Delta(cur.CPA, prev.CPA),
		CTR:            Delta(cur.CTR, prev.CTR),
	}
}

// ComparePeriods returns the day, week and month comparisons for ws
func ComparePeriods(ws WindowSet, daily *DailyMetrics, hasValue bool) []PeriodComparison {
	return []PeriodComparison{
		Compare(PeriodDayOverDay, ws.Yesterday, ws.DayBefore, daily, hasValue),
		Compare(PeriodWeekOverWeek, ws.Last7, ws.Prev7, daily, hasValue),
		Compare(PeriodMonthOverMonth, ws.Last30, ws.Prev30, daily, hasValue),
	}
}
