package gateway

import (
	"fmt"
	"strings"
	"time"
)

// referenceLayouts are the ISO-8601 forms accepted for reference_time, in
// extended and basic format: a bare date, or date "T" time at hour, minute or
// second precision with no offset or a -07, -0700 or -07:00 offset. Go accepts
// fractional seconds after the seconds field without them appearing in the
// layout.
var referenceLayouts = buildReferenceLayouts()

func buildReferenceLayouts() []string {
	formats := []struct {
		date  string
		times []string
	}{
		{"2006-01-02", []string{"15:04:05", "15:04", "15"}},
		{"20060102", []string{"150405", "1504", "15"}},
	}
	offsets := []string{"", "-07:00", "-0700", "-07"}

	var layouts []string
	for _, f := range formats {
		for _, clock := range f.times {
			for _, off := range offsets {
				layouts = append(layouts, f.date+"T"+clock+off)
			}
		}
		layouts = append(layouts, f.date)
	}
	return layouts
}

// ParseReferenceTime parses an ISO-8601 timestamp after turning every "Z"
// into "+00:00". A space may separate date and time. Timestamps without an
// offset are taken as UTC.
func ParseReferenceTime(s string) (time.Time, error) {
	normalized := strings.ReplaceAll(s, "Z", "+00:00")

	candidate := normalized
	if len(candidate) > 10 && candidate[10] == ' ' {
		candidate = candidate[:10] + "T" + candidate[11:]
	}
	for _, layout := range referenceLayouts {
		if t, err := time.Parse(layout, candidate); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &Error{
		Kind: KindValidation,
		Op:   "parse reference_time",
		Msg:  fmt.Sprintf("Invalid isoformat string: '%s'", normalized),
	}
}

// ParseGroupIDs splits a comma-separated list, trimming entries and dropping
// empty ones. The result is never nil.
func ParseGroupIDs(s string) []string {
	ids := []string{}
	for _, part := range strings.Split(s, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// FormatTime renders t like Python's datetime.isoformat: explicit offset,
// microseconds only when non-zero.
func FormatTime(t time.Time) string {
	if t.Nanosecond()/1000 != 0 {
		return t.Format("2006-01-02T15:04:05.000000-07:00")
	}
	return t.Format("2006-01-02T15:04:05-07:00")
}
