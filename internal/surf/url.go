package surf

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// connectorWords are lowercase name particles glued onto the preceding word
// when formatting spot names for chart URLs ("Praia do Norte" -> "Praiado-Norte").
var connectorWords = map[string]bool{"de": true, "del": true, "do": true, "da": true}

var repeatedDashes = regexp.MustCompile(`-+`)

// ChartURL builds the consistency chart URL for a spot and month:
//
//	{base}/{Spot-Name}.surf.consistency.{month}.gif
func ChartURL(baseURL, spotName, month string) string {
	name := strings.ReplaceAll(spotName, " ", "-")
	return fmt.Sprintf("%s/%s.surf.consistency.%s.gif",
		strings.TrimRight(baseURL, "/"), name, strings.ToLower(month))
}

// GIFBase strips the trailing ".{month}.gif" from a known chart URL, leaving
// the prefix that MonthURL extends.
func GIFBase(gifURL string) string {
	base := gifURL
	for i := 0; i < 2; i++ {
		idx := strings.LastIndex(base, ".")
		if idx < 0 {
			return base
		}
		base = base[:idx]
	}
	return base
}

// MonthURL appends a month to a base produced by GIFBase.
func MonthURL(base, month string) string {
	return base + "." + strings.ToLower(month) + ".gif"
}

// SpotChartURL resolves the chart URL for a spot, preferring its known GIF URL.
func SpotChartURL(baseURL string, spot Spot, month string) string {
	if spot.GIFURL != "" {
		return MonthURL(GIFBase(spot.GIFURL), month)
	}
	return ChartURL(baseURL, spot.Name, month)
}

// FormatSpotName rewrites a spot name into the form used by alternate chart
// URLs. Words are capitalised, a connector word is joined lowercase onto the
// word before it, and the result is dash separated.
func FormatSpotName(spotName string) string {
	words := strings.Fields(spotName)
	formatted := make([]string, 0, len(words))

	for i := 0; i < len(words); i++ {
		word := words[i]
		if i < len(words)-1 && connectorWords[strings.ToLower(words[i+1])] {
			formatted = append(formatted, word+strings.ToLower(words[i+1]))
			i++
			continue
		}
		if !connectorWords[strings.ToLower(word)] {
			formatted = append(formatted, capitalize(word))
		}
	}

	return repeatedDashes.ReplaceAllString(strings.Join(formatted, "-"), "-")
}

// AlternateChartURLs lists candidate chart URLs for a formatted spot name,
// in the order they should be tried.
func AlternateChartURLs(baseURL, spotName string) []string {
	name := url.PathEscape(FormatSpotName(spotName))
	base := strings.TrimRight(baseURL, "/")
	return []string{
		fmt.Sprintf("%s/%s.surf.consistency.january.gif", base, name),
		fmt.Sprintf("%s/%s.surf.statistics.january.gif", base, name),
	}
}
