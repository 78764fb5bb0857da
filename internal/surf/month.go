package surf

import (
	"fmt"
	"strings"
)

// Months lists the chart months in calendar order, in the lowercase form used
// by chart URLs.
var Months = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

// CanonicalMonth capitalises the first letter and lowercases the rest, so
// "january" and "JANUARY" both become "January".
func CanonicalMonth(month string) string {
	return capitalize(strings.TrimSpace(month))
}

func capitalize(word string) string {
	if word == "" {
		return ""
	}
	return strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
}

// ParseMonth validates a month name case-insensitively and returns its URL form.
func ParseMonth(month string) (string, error) {
	m := strings.ToLower(strings.TrimSpace(month))
	for _, known := range Months {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown month %q", month)
}
