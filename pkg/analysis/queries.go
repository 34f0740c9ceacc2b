package analysis

// Analytics dimension names
const (
	DimensionDate        = "date"
	DimensionChannel     = "sessionDefaultChannelGroup"
	DimensionCountry     = "country"
	DimensionCity        = "city"
	DimensionEventName   = "eventName"
	DimensionPagePath    = "pagePath"
	DimensionLandingPage = "landingPage"
	DimensionDevice      = "deviceCategory"
	DimensionWeekday     = "dayOfWeek"
	DimensionHour        = "hour"
)

// Analytics metric names
const (
	MetricSessions           = "sessions"
	MetricActiveUsers        = "activeUsers"
	MetricTotalUsers         = "totalUsers"
	MetricConversions        = "conversions"
	MetricEventCount         = "eventCount"
	MetricPageViews          = "screenPageViews"
	MetricAvgSessionDuration = "averageSessionDuration"
	MetricBounceRate         = "bounceRate"
)

// Report sections
const (
	SectionAnalyticsDaily = "analytics_daily"
	SectionAdsDaily       = "ads_daily"
	SectionEvents         = "events"
	SectionChannels       = "channels"
	SectionCountries      = "countries"
	SectionCities         = "cities"
	SectionCampaigns      = "campaigns"
	SectionTopPages       = "top_pages"
	SectionLandingPages   = "landing_pages"
	SectionKeywords       = "keywords"
	SectionSearchTerms    = "search_terms"
	SectionDevices        = "devices"
	SectionWeekdays       = "weekdays"
	SectionHours          = "hours"
)

// Source names used in errors, logs and metrics
const (
	SourceAnalytics = "analytics"
	SourceAds       = "ads"
)

// analyticsRequest is one RunReport call
type analyticsRequest struct {
	section    string
	dimensions []string
	metrics    []string
	limit      int
}

func analyticsDailyRequest(conversionMetric string) analyticsRequest {
	return analyticsRequest{
		section:    SectionAnalyticsDaily,
		dimensions: []string{DimensionDate},
		metrics:    []string{MetricSessions, MetricActiveUsers, conversionMetric},
	}
}

func analyticsSectionRequests(conversionMetric string, limit int) map[string]analyticsRequest {
	traffic := []string{MetricSessions, conversionMetric}
	return map[string]analyticsRequest{
		SectionEvents: {
			section:    SectionEvents,
			dimensions: []string{DimensionEventName},
			metrics:    []string{MetricEventCount},
			limit:      limit,
		},
		SectionChannels: {
			section:    SectionChannels,
			dimensions: []string{DimensionChannel},
			metrics:    []string{MetricSessions, MetricTotalUsers, conversionMetric},
		},
		SectionCountries: {
			section:    SectionCountries,
			dimensions: []string{DimensionCountry},
			metrics:    traffic,
			limit:      limit,
		},
		SectionCities: {
			section:    SectionCities,
			dimensions: []string{DimensionCity, DimensionCountry},
			metrics:    traffic,
			limit:      limit,
		},
		SectionTopPages: {
			section:    SectionTopPages,
			dimensions: []string{DimensionPagePath},
			metrics:    []string{MetricPageViews, MetricAvgSessionDuration, MetricBounceRate},
			limit:      limit,
		},
		SectionLandingPages: {
			section:    SectionLandingPages,
			dimensions: []string{DimensionLandingPage},
			metrics:    traffic,
			limit:      limit,
		},
		SectionDevices: {
			section:    SectionDevices,
			dimensions: []string{DimensionDevice},
			metrics:    traffic,
		},
		SectionWeekdays: {
			section:    SectionWeekdays,
			dimensions: []string{DimensionWeekday},
			metrics:    traffic,
		},
		SectionHours: {
			section:    SectionHours,
			dimensions: []string{DimensionHour},
			metrics:    traffic,
		},
	}
}
