// Package i18n holds the display tables for report locales. Lookups that
// miss fall back to the key itself so unknown countries and channels still
// render.
package i18n

const (
	English = "en"
	Korean  = "ko"
)

// Supported reports whether locale has its own tables
func Supported(locale string) bool {
	return locale == English || locale == Korean
}

// Lookup returns table[key], or key when the table has no entry
func Lookup(table map[string]string, key string) string {
	if v, ok := table[key]; ok {
		return v
	}
	return key
}

// Country returns the display name of a country
func Country(locale, name string) string {
	if locale != Korean {
		return name
	}
	return Lookup(countriesKO, name)
}

// Channel returns the display name of a default channel group
func Channel(locale, name string) string {
	if locale != Korean {
		return name
	}
	return Lookup(channelsKO, name)
}

// Event returns the display name of a conversion event
func Event(locale, name string) string {
	if locale == Korean {
		return Lookup(eventsKO, name)
	}
	return Lookup(eventsEN, name)
}

// Label returns a UI string. English is the fallback for locales without a
// translation of key.
func Label(locale, key string) string {
	if locale == Korean {
		if v, ok := labelsKO[key]; ok {
			return v
		}
	}
	return Lookup(labelsEN, key)
}

// Labels returns the full label table for locale with English filled in for
// missing keys
func Labels(locale string) map[string]string {
	out := make(map[string]string, len(labelsEN))
	for k, v := range labelsEN {
		out[k] = v
	}
	if locale == Korean {
		for k, v := range labelsKO {
			out[k] = v
		}
	}
	return out
}

var (
	weekdaysEN = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	weekdaysKO = []string{"일", "월", "화", "수", "목", "금", "토"}
)

// Weekday names a dayOfWeek value, 0 being Sunday
func Weekday(locale, key string) string {
	if len(key) != 1 || key[0] < '0' || key[0] > '6' {
		return key
	}
	if locale == Korean {
		return weekdaysKO[key[0]-'0']
	}
	return weekdaysEN[key[0]-'0']
}
