package googleads

import (
	"fmt"
	"strings"

	"adreport/pkg/analysis"
	"adreport/pkg/source"
)

// GAQLBuilder produces Google Ads Query Language statements for each ads
// section. Primary queries ask for conversion value; fallbacks drop it for
// accounts where the field is rejected.
type GAQLBuilder struct{}

var _ source.QueryBuilder = GAQLBuilder{}

const activeCampaigns = "campaign.status != 'REMOVED'"

func gaql(fields []string, resource, start, end string, extra ...string) string {
	where := append([]string{fmt.Sprintf("segments.date BETWEEN '%s' AND '%s'", start, end)}, extra...)
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s", strings.Join(fields, ", "), resource, strings.Join(where, " AND "))
}

var performance = []string{
	source.FieldImpressions, source.FieldClicks, source.FieldCostMicros, source.FieldConversions,
}

func withValue(fields ...string) []string {
	return append(fields, source.FieldConversionsValue)
}

func (GAQLBuilder) Daily(start, end string) source.AdsQuery {
	fields := append([]string{source.FieldDate}, performance...)
	return source.AdsQuery{
		Section:  analysis.SectionAdsDaily,
		Primary:  gaql(withValue(fields...), "campaign", start, end, activeCampaigns),
		Fallback: gaql(fields, "campaign", start, end, activeCampaigns),
	}
}

func (GAQLBuilder) Campaigns(start, end string) source.AdsQuery {
	fields := append([]string{source.FieldCampaignName}, performance...)
	return source.AdsQuery{
		Section:  analysis.SectionCampaigns,
		Primary:  gaql(withValue(fields...), "campaign", start, end, activeCampaigns),
		Fallback: gaql(fields, "campaign", start, end, activeCampaigns),
	}
}

func (GAQLBuilder) Keywords(start, end string) source.AdsQuery {
	fields := append([]string{source.FieldKeywordText, source.FieldKeywordMatchType}, performance...)
	return source.AdsQuery{
		Section:  analysis.SectionKeywords,
		Primary:  gaql(withValue(fields...), "keyword_view", start, end, activeCampaigns),
		Fallback: gaql(fields, "keyword_view", start, end, activeCampaigns),
	}
}

func (GAQLBuilder) SearchTerms(start, end string) source.AdsQuery {
	fields := append([]string{source.FieldSearchTerm}, performance...)
	return source.AdsQuery{
		Section:  analysis.SectionSearchTerms,
		Primary:  gaql(withValue(fields...), "search_term_view", start, end),
		Fallback: gaql(fields, "search_term_view", start, end),
	}
}
