package source

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Coerce converts a raw provider value to int64, else float64, else
// returns it unchanged as a string.
func Coerce(raw string) any {
	s := strings.TrimSpace(raw)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return raw
}

// Has reports whether the row carries a non-nil value for key
func (r Row) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

// String returns the value for key formatted as a string
func (r Row) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Float returns the numeric value for key, or 0 when absent or not numeric
func (r Row) Float(key string) float64 {
	switch v := r[key].(type) {
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case uint64:
		return float64(v)
	case uint32:
		return float64(v)
	case float64:
		return v
	case float32:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	case string:
		switch c := Coerce(v).(type) {
		case int64:
			return float64(c)
		case float64:
			return c
		}
	}
	return 0
}

// Int returns the value for key truncated to int64
func (r Row) Int(key string) int64 {
	if v, ok := r[key].(int64); ok {
		return v
	}
	return int64(r.Float(key))
}
