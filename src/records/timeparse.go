package records

import (
	"strings"
	"time"
)

// LogTimeLayout is the timestamp layout written by the order extractors,
// e.g. "05/17/2024 09:00:01.123456".
const LogTimeLayout = "01/02/2006 15:04:05.000000"

// timeLayouts are tried in order by ParseTime. Layouts without a zone are read as UTC.
var timeLayouts = []string{
	LogTimeLayout,
	"01/02/2006 15:04:05",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.000000",
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.000000",
	"2006-01-02T15:04:05",
	"20060102-15:04:05.000000", // FIX SendingTime (tag 52), microseconds
	"20060102-15:04:05.000",
	"20060102-15:04:05",
}

// ParseTime parses s with the known layouts.
func ParseTime(s string) (time.Time, bool) {
	ss := strings.TrimSpace(s)
	// cheap reject: every layout starts with a digit and is at least 17 chars
	if len(ss) < 17 || ss[0] < '0' || ss[0] > '9' {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, ss); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseTimeLayout parses s with layout, falling back to ParseTime when layout is empty.
func ParseTimeLayout(s, layout string) (time.Time, bool) {
	if layout == "" {
		return ParseTime(s)
	}
	t, err := time.Parse(layout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
