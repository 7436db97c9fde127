// Package format holds the presentation helpers shared by the terminal views:
// fallback-safe date formatting and utility class merging.
package format

import (
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/nleeper/goment"
)

const DEFAULT_DATE_FALLBACK = "N/A"

// Layouts accepted for string dates, tried in order.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	time.RFC1123Z,
	time.RFC1123,
}

// SafeFormatDate formats value with a dayjs-style pattern and returns "N/A"
// when the value is missing or cannot be parsed.
func SafeFormatDate(value any, pattern string) string {
	return SafeFormatDateOr(value, pattern, DEFAULT_DATE_FALLBACK)
}

// SafeFormatDateOr is SafeFormatDate with an explicit fallback. It never panics.
func SafeFormatDateOr(value any, pattern string, fallback string) (formatted string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("Invalid date provided to SafeFormatDate", "date", value, "error", r)
			formatted = fallback
		}
	}()

	t, ok := ParseDate(value)
	if !ok {
		return fallback
	}

	formatted, err := Date(t, pattern)
	if err != nil {
		slog.Debug("Invalid date provided to SafeFormatDate", "date", value, "error", err)
		return fallback
	}
	return formatted
}

// ParseDate converts the supported date representations into a time.Time.
// Numbers are epoch milliseconds. Absent, empty and zero values report false,
// and so do NaN and infinite floats.
func ParseDate(value any) (time.Time, bool) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, !v.IsZero()
	case string:
		return parseDateString(v)
	case *string:
		if v == nil {
			return time.Time{}, false
		}
		return parseDateString(*v)
	case int64:
		return parseEpochMillis(v)
	case int:
		return parseEpochMillis(int64(v))
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return time.Time{}, false
		}
		return parseEpochMillis(int64(v))
	default:
		return time.Time{}, false
	}
}

func parseDateString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func parseEpochMillis(ms int64) (time.Time, bool) {
	if ms == 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(ms).UTC(), true
}

// Date renders t with a moment-style pattern in t's own location. Text inside
// square brackets is copied verbatim.
func Date(t time.Time, pattern string) (string, error) {
	moment, err := goment.New(t)
	if err != nil {
		return "", err
	}
	return moment.Format(pattern), nil
}
