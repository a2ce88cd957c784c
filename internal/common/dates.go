package common

import (
	"strings"
	"time"
)

// FormatDisplayDate normalizes an ISO-8601 timestamp for display. A trailing
// "Z" is treated as "+00:00"; only the calendar date (YYYY-MM-DD) is kept.
// Unparseable input is returned unchanged so a bad remote timestamp degrades
// to raw text instead of failing the whole document.
func FormatDisplayDate(timestamp string) string {
	if timestamp == "" {
		return ""
	}

	normalized := timestamp
	if strings.HasSuffix(normalized, "Z") {
		normalized = strings.TrimSuffix(normalized, "Z") + "+00:00"
	}

	for _, layout := range []string{
		"2006-01-02T15:04:05.000-07:00",
		"2006-01-02T15:04:05-07:00",
		"2006-01-02T15:04:05.000-0700", // Jira emits offsets without a colon
		"2006-01-02T15:04:05-0700",
		"2006-01-02T15:04:05.000Z07:00",
		time.RFC3339,
	} {
		if parsed, err := time.Parse(layout, normalized); err == nil {
			return parsed.Format("2006-01-02")
		}
	}

	return timestamp
}
