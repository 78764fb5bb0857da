package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/surf-chart-ocr/internal/dataset"
	"github.com/ironsheep/surf-chart-ocr/internal/surf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkipFunc(t *testing.T) {
	done := dataset.NewIndex([]dataset.Row{
		{Region: "Portugal", Record: surf.NewRecord("Coxos", "january")},
	})
	merged := dataset.NewIndex([]dataset.Row{
		{Region: "Portugal", Record: surf.NewRecord("Supertubos", "may")},
	})

	coxos := surf.Spot{Name: "Coxos"}
	supertubos := surf.Spot{Name: "Supertubos"}

	assert.Nil(t, skipFunc(nil, nil))

	skip := skipFunc(done, merged)
	assert.True(t, skip(coxos, "january"))
	assert.False(t, skip(coxos, "february"))
	assert.True(t, skip(supertubos, "february"), "every month of a merged spot is skipped")

	resumeOnly := skipFunc(done, nil)
	assert.False(t, resumeOnly(supertubos, "may"))
}

func TestLocationsSaver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locations.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,gif_url\nPraia do Norte,\n"), 0o644))

	save := locationsSaver(path)
	url := "https://charts.example/Praiado-Norte.surf.consistency.january.gif"
	require.NoError(t, save(surf.Spot{Name: "Praia do Norte"}, url))

	spots, err := dataset.LoadSpots(path)
	require.NoError(t, err)
	assert.Equal(t, url, spots[0].GIFURL)

	assert.Error(t, save(surf.Spot{Name: "Unknown"}, url))
}
