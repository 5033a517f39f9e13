package knowledge

import (
	"strconv"
	"strings"
	"time"
)

// dateLayouts are the formats project dates arrive in: GitHub timestamps,
// plain dates, and the display format projects are stored with.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"Jan 2, 2006",
	"January 2, 2006",
	"2006-01",
	"2006",
}

// yearOf extracts the calendar year of a date string
func yearOf(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Year(), true
		}
	}
	return 0, false
}

// projectYear resolves the year group of a project: created date first,
// then last-updated date, then the current year.
func projectYear(createdAt, lastUpdated string, now time.Time) string {
	if y, ok := yearOf(createdAt); ok {
		return strconv.Itoa(y)
	}
	if y, ok := yearOf(lastUpdated); ok {
		return strconv.Itoa(y)
	}
	return strconv.Itoa(now.Year())
}
