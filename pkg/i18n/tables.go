package i18n

var countriesKO = map[string]string{
	"United States": "미국", "South Korea": "대한민국", "Canada": "캐나다", "United Kingdom": "영국",
	"Germany": "독일", "France": "프랑스", "Italy": "이탈리아", "Spain": "스페인", "Netherlands": "네덜란드",
	"Belgium": "벨기에", "Australia": "호주", "Japan": "일본", "Singapore": "싱가포르",
	"United Arab Emirates": "아랍에미리트", "Nepal": "네팔", "India": "인도", "Philippines": "필리핀",
	"Nigeria": "나이지리아", "Poland": "폴란드", "Türkiye": "튀르키예", "China": "중국",
	"Hong Kong": "홍콩", "Taiwan": "대만", "Thailand": "태국", "Vietnam": "베트남",
	"Indonesia": "인도네시아", "Malaysia": "말레이시아", "Brazil": "브라질", "Mexico": "멕시코",
	"Russia": "러시아", "South Africa": "남아프리카", "Egypt": "이집트", "Morocco": "모로코",
	"Saudi Arabia": "사우디아라비아", "Israel": "이스라엘", "Ireland": "아일랜드", "Switzerland": "스위스",
	"Austria": "오스트리아", "Sweden": "스웨덴", "Norway": "노르웨이", "Denmark": "덴마크",
	"Finland": "핀란드", "Portugal": "포르투갈", "Greece": "그리스", "Czechia": "체코",
	"Romania": "루마니아", "Hungary": "헝가리", "Bulgaria": "불가리아", "Croatia": "크로아티아",
	"New Zealand": "뉴질랜드", "Argentina": "아르헨티나", "Chile": "칠레", "Colombia": "콜롬비아",
	"Peru": "페루", "Pakistan": "파키스탄", "Bangladesh": "방글라데시", "Sri Lanka": "스리랑카",
	"Qatar": "카타르", "Kuwait": "쿠웨이트", "Bahrain": "바레인", "Oman": "오만",
	"Martinique": "마르티니크", "Venezuela": "베네수엘라", "(not set)": "(미설정)",
}

var channelsKO = map[string]string{
	"Organic Search": "자연 검색", "Paid Search": "유료 검색", "Direct": "직접 유입",
	"Referral": "추천 유입", "Organic Social": "자연 소셜", "Paid Social": "유료 소셜",
	"Email": "이메일", "Display": "디스플레이", "Unassigned": "미분류", "(not set)": "(미설정)",
}

var eventsEN = map[string]string{
	"contact_form_submit": "Contact form", "email_click": "Email click",
	"phone_calls": "Phone call", "wechat_call": "WeChat inquiry", "kakao_click": "KakaoTalk click",
}

var eventsKO = map[string]string{
	"contact_form_submit": "문의 폼 제출", "email_click": "이메일 클릭",
	"phone_calls": "전화 문의", "wechat_call": "위챗 문의", "kakao_click": "카카오톡 클릭",
}

// UI labels, keyed by the names used in the report template
var labelsEN = map[string]string{
	"title":               "Marketing Performance Report",
	"period":              "Period",
	"generated":           "Generated",
	"summary":             "Executive Summary",
	"sessions":            "Sessions",
	"users":               "Users",
	"conversions":         "Conversions",
	"cvr":                 "CVR",
	"cost":                "Ad Spend",
	"clicks":              "Clicks",
	"impressions":         "Impressions",
	"ctr":                 "CTR",
	"cpc":                 "CPC",
	"cpa":                 "CPA",
	"roas":                "ROAS",
	"ads_conversions":     "Ads Conversions",
	"discrepancy":         "Source Discrepancy",
	"periods":             "Period Comparison",
	"day_over_day":        "Day over day",
	"week_over_week":      "Week over week",
	"month_over_month":    "Month over month",
	"current":             "Current",
	"previous":            "Previous",
	"change":              "Change",
	"partial":             "partial",
	"daily":               "Daily Trend",
	"date":                "Date",
	"anomalies":           "Anomalies",
	"no_anomalies":        "No anomalies detected",
	"events":              "Lead Events",
	"event":               "Event",
	"count":               "Count",
	"channels":            "Channels",
	"channel":             "Channel",
	"share":               "Share",
	"geo":                 "Geography",
	"countries":           "Countries",
	"country":             "Country",
	"cities":              "Cities",
	"city":                "City",
	"target":              "target",
	"target_share":        "Target market share",
	"non_target_share":    "Non-target share",
	"active_countries":    "Active countries",
	"campaigns":           "Campaigns",
	"campaign":            "Campaign",
	"keywords":            "Keywords",
	"keyword":             "Keyword",
	"match_type":          "Match type",
	"search_terms":        "Search Terms",
	"search_term":         "Search term",
	"wasted_keywords":     "Spend without conversions (keywords)",
	"wasted_search_terms": "Spend without conversions (search terms)",
	"top_pages":           "Top Pages",
	"landing_pages":       "Landing Pages",
	"page":                "Page",
	"views":               "Views",
	"avg_duration":        "Avg. duration",
	"bounce_rate":         "Bounce rate",
	"devices":             "Devices",
	"weekdays":            "Weekdays",
	"hours":               "Hours",
	"no_data":             "No data available",
	"not_available":       "n/a",
	"severity_high":       "High",
	"severity_medium":     "Medium",
	"severity_low":        "Low",
	"source_discrepancy":  "Source discrepancy",
	"suspicious_country":  "Suspicious country",
	"city_concentration":  "City concentration",
}

var labelsKO = map[string]string{
	"title":               "마케팅 성과 리포트",
	"period":              "분석 기간",
	"generated":           "생성일시",
	"summary":             "핵심 지표",
	"sessions":            "세션",
	"users":               "사용자",
	"conversions":         "전환",
	"cvr":                 "전환율",
	"cost":                "광고비",
	"clicks":              "클릭",
	"impressions":         "노출",
	"ctr":                 "클릭률",
	"cpc":                 "클릭당 비용",
	"cpa":                 "전환당 비용",
	"ads_conversions":     "광고 전환",
	"discrepancy":         "데이터 불일치",
	"periods":             "기간 비교",
	"day_over_day":        "전일 대비",
	"week_over_week":      "전주 대비",
	"month_over_month":    "전월 대비",
	"current":             "현재",
	"previous":            "이전",
	"change":              "변화",
	"partial":             "일부 기간",
	"daily":               "일별 추이",
	"date":                "날짜",
	"anomalies":           "이상 징후",
	"no_anomalies":        "이상 징후 없음",
	"events":              "리드 이벤트",
	"event":               "이벤트",
	"count":               "건수",
	"channels":            "채널",
	"channel":             "채널",
	"share":               "비중",
	"geo":                 "지역 분석",
	"countries":           "국가",
	"country":             "국가",
	"cities":              "도시",
	"city":                "도시",
	"target":              "타겟",
	"target_share":        "타겟 국가 전환 비중",
	"non_target_share":    "비타겟 국가 전환 비중",
	"active_countries":    "전환 발생 국가",
	"campaigns":           "캠페인",
	"campaign":            "캠페인",
	"keywords":            "키워드",
	"keyword":             "키워드",
	"match_type":          "검색 유형",
	"search_terms":        "검색어",
	"search_term":         "검색어",
	"wasted_keywords":     "전환 없는 지출 (키워드)",
	"wasted_search_terms": "전환 없는 지출 (검색어)",
	"top_pages":           "인기 페이지",
	"landing_pages":       "랜딩 페이지",
	"page":                "페이지",
	"views":               "조회수",
	"avg_duration":        "평균 체류시간",
	"bounce_rate":         "이탈률",
	"devices":             "기기",
	"weekdays":            "요일",
	"hours":               "시간대",
	"no_data":             "데이터 없음",
	"not_available":       "해당 없음",
	"severity_high":       "높음",
	"severity_medium":     "보통",
	"severity_low":        "낮음",
	"source_discrepancy":  "데이터 불일치",
	"suspicious_country":  "의심 국가",
	"city_concentration":  "도시 집중",
}
