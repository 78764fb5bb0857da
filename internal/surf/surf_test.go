package surf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalMonth(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"january", "January"},
		{"JANUARY", "January"},
		{" march ", "March"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalMonth(tt.in))
		})
	}
}

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("October")
	require.NoError(t, err)
	assert.Equal(t, "october", m)

	_, err = ParseMonth("Smarch")
	assert.Error(t, err)
}

func TestNewRecord_Defaults(t *testing.T) {
	rec := NewRecord("Pipeline", "december")

	assert.Equal(t, "Pipeline", rec.Location)
	assert.Equal(t, "December", rec.Month)
	assert.Zero(t, rec.Clean)
	assert.Zero(t, rec.BlownOut)
	assert.Zero(t, rec.TooSmall)
	assert.Equal(t, [BarCount]float64{}, rec.Heights())
}

func TestSetHeights(t *testing.T) {
	rec := NewRecord("Pipeline", "may")

	ok := rec.SetHeights([]float64{3, 40, 35, 20, 2})
	require.True(t, ok)
	assert.Equal(t, [BarCount]float64{3, 40, 35, 20, 2}, rec.Heights())
	assert.Equal(t, 3.0, rec.Flat)
	assert.Equal(t, 2.0, rec.Height10Plus)
}

func TestSetHeights_ShortfallLeavesDefaults(t *testing.T) {
	rec := NewRecord("Pipeline", "may")

	ok := rec.SetHeights([]float64{3, 40, 35, 20})
	assert.False(t, ok)
	assert.Equal(t, [BarCount]float64{}, rec.Heights())
}

func TestChartURL(t *testing.T) {
	got := ChartURL("https://example.com/data/", "Bondi Beach", "January")
	assert.Equal(t, "https://example.com/data/Bondi-Beach.surf.consistency.january.gif", got)
}

func TestGIFBaseAndMonthURL(t *testing.T) {
	base := GIFBase("https://example.com/data/Praiado-Norte.surf.statistics.january.gif")
	assert.Equal(t, "https://example.com/data/Praiado-Norte.surf.statistics", base)
	assert.Equal(t, "https://example.com/data/Praiado-Norte.surf.statistics.june.gif", MonthURL(base, "June"))
}

func TestSpotChartURL_PrefersKnownGIF(t *testing.T) {
	spot := Spot{Name: "Praia do Norte", GIFURL: "https://cdn.example.com/Praiado-Norte.surf.statistics.january.gif"}
	assert.Equal(t, "https://cdn.example.com/Praiado-Norte.surf.statistics.april.gif",
		SpotChartURL("https://example.com/data", spot, "april"))

	spot.GIFURL = ""
	assert.Equal(t, "https://example.com/data/Praia-do-Norte.surf.consistency.april.gif",
		SpotChartURL("https://example.com/data", spot, "april"))
}

func TestFormatSpotName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"bondi beach", "Bondi-Beach"},
		{"Praia do Norte", "Praiado-Norte"},
		{"Playa De La Concha", "Playade-La-Concha"},
		{"  Supertubos  ", "Supertubos"},
		{"de Haan", "Haan"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatSpotName(tt.in))
		})
	}
}

func TestAlternateChartURLs(t *testing.T) {
	urls := AlternateChartURLs("https://example.com/data", "Praia do Norte")
	require.Len(t, urls, 2)
	assert.Equal(t, "https://example.com/data/Praiado-Norte.surf.consistency.january.gif", urls[0])
	assert.Equal(t, "https://example.com/data/Praiado-Norte.surf.statistics.january.gif", urls[1])
}
