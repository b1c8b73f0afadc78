package entity

import (
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	"Mon Jan 02 2006 15:04:05 GMT-0700",
}

// ValidTime reports whether t is a usable timestamp: neither Go's zero time
// nor the Unix epoch, which is what an unset date usually decodes to.
func ValidTime(t time.Time) bool {
	return !t.IsZero() && t.Unix() != 0
}

// ParseTime parses a date-like string using the layouts seen in stored orders.
// Numeric strings are treated as epoch milliseconds.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		t := time.UnixMilli(ms).UTC()
		return t, ValidTime(t)
	}
	return parseLayouts(s, time.UTC)
}

// ParseTimeIn parses a date-like query value. Values without a zone are read
// in loc. Numeric strings are rejected: a bare "2024" is not a timestamp.
func ParseTimeIn(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || isDigits(s) {
		return time.Time{}, false
	}
	return parseLayouts(s, loc)
}

func parseLayouts(s string, loc *time.Location) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, ValidTime(t)
		}
	}
	return time.Time{}, false
}

func isDigits(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// CoerceTime derives a timestamp from a decoded document value: native times
// are used as is, strings are parsed, integers are epoch milliseconds.
func CoerceTime(v any) (time.Time, bool) {
	switch tv := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return tv, ValidTime(tv)
	case primitive.DateTime:
		t := tv.Time().UTC()
		return t, ValidTime(t)
	case primitive.Timestamp:
		t := time.Unix(int64(tv.T), 0).UTC()
		return t, ValidTime(t)
	case string:
		return ParseTime(tv)
	case int64:
		t := time.UnixMilli(tv).UTC()
		return t, ValidTime(t)
	case int32:
		t := time.UnixMilli(int64(tv)).UTC()
		return t, ValidTime(t)
	case float64:
		t := time.UnixMilli(int64(tv)).UTC()
		return t, ValidTime(t)
	default:
		return time.Time{}, false
	}
}
