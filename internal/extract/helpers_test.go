package extract

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ironsheep/surf-chart-ocr/internal/observability"
	"github.com/ironsheep/surf-chart-ocr/internal/ocr"
	"github.com/ironsheep/surf-chart-ocr/internal/ocr/ocrtest"
	"github.com/ironsheep/surf-chart-ocr/internal/surf"
	"github.com/stretchr/testify/require"
)

// chartGIF renders a small paletted chart: a dark header band over a light
// body with five grey bars along the bottom.
func chartGIF(t *testing.T) []byte {
	t.Helper()

	palette := color.Palette{color.White, color.Black, color.Gray{Y: 128}}
	img := image.NewPaletted(image.Rect(0, 0, 50, 60), palette)
	for y := 0; y < 60; y++ {
		for x := 0; x < 50; x++ {
			switch {
			case y < 10:
				img.SetColorIndex(x, y, 1)
			case y >= 45 && x%10 < 7:
				img.SetColorIndex(x, y, 2)
			}
		}
	}

	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, img, nil))
	return buf.Bytes()
}

var (
	red     = color.RGBA{R: 0xff, A: 0xff}
	green   = color.RGBA{G: 0xff, A: 0xff}
	blue    = color.RGBA{B: 0xff, A: 0xff}
	yellow  = color.RGBA{R: 0xff, G: 0xff, A: 0xff}
	magenta = color.RGBA{R: 0xff, B: 0xff, A: 0xff}
	black   = color.RGBA{A: 0xff}
	white   = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// colorChartGIF renders a 100x120 chart whose regions are painted in solid
// colors: a black header over the top fifth, a white body, and one colored
// strip per bar across the bottom three tenths, left to right.
func colorChartGIF(t *testing.T, bars [surf.BarCount]color.RGBA) []byte {
	t.Helper()

	const w, h = 100, 120
	palette := color.Palette{white, black}
	for _, c := range bars {
		palette = append(palette, c)
	}
	img := image.NewPaletted(image.Rect(0, 0, w, h), palette)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			switch {
			case y < 24:
				img.Set(x, y, black)
			case y >= 84:
				img.Set(x, y, bars[x/(w/surf.BarCount)])
			default:
				img.Set(x, y, white)
			}
		}
	}

	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, img, nil))
	return buf.Bytes()
}

// colorCodedChart reads the header of a colorChartGIF as a full condition line
// and each bar color as its own percentage.
func colorCodedChart() *ocrtest.ColorCoded {
	return &ocrtest.ColorCoded{Texts: map[color.RGBA]string{
		black:   "Clean 62% Blown out 10% Too small 5%",
		red:     "3%",
		green:   "40%",
		blue:    "35%",
		yellow:  "20%",
		magenta: "2%",
	}}
}

// chartServer serves chart bytes for every path containing a known month and
// 404 for everything else. Months listed in missing also get a 404.
func chartServer(t *testing.T, chart []byte, missing ...string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, m := range missing {
			if strings.Contains(r.URL.Path, "."+m+".") {
				http.NotFound(w, r)
				return
			}
		}
		w.Header().Set("Content-Type", "image/gif")
		_, _ = w.Write(chart)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// closedServerURL returns the URL of a server that is no longer listening.
func closedServerURL() string {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func scriptedChart() *ocrtest.Scripted {
	return &ocrtest.Scripted{
		Header: "Clean 62% Blown out 10% Too small 5%",
		Bars:   []string{"3%", "40%", "35%", "20%", "2%"},
	}
}

func newTestExtractor(t *testing.T, src Source, r ocr.Recognizer, sink ArtifactSink) (*Extractor, *observability.Metrics) {
	t.Helper()

	metrics := observability.NewMetricsForTesting()
	x, err := NewExtractor(Config{Source: src, Recognizer: r, Sink: sink, Metrics: metrics})
	require.NoError(t, err)
	return x, metrics
}

// fakeExtractor records every request and fails the months it is told to.
type fakeExtractor struct {
	mu       sync.Mutex
	requests []ChartRequest
	fail     map[string]bool
}

func (f *fakeExtractor) Extract(_ context.Context, req ChartRequest) (surf.SurfRecord, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)
	if f.fail[req.Month] {
		return surf.SurfRecord{}, false
	}
	rec := surf.NewRecord(req.Spot, req.Month)
	rec.Clean = 50
	return rec, true
}

func (f *fakeExtractor) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// memSink keeps records in memory and counts persistence calls.
type memSink struct {
	rows      []surf.SurfRecord
	snapshots []int
	closed    int
	appendErr error
	closeErr  error
}

func (s *memSink) Append(_ surf.Spot, rec surf.SurfRecord) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.rows = append(s.rows, rec)
	return nil
}

func (s *memSink) Snapshot() error {
	s.snapshots = append(s.snapshots, len(s.rows))
	return nil
}

func (s *memSink) Close() error {
	s.closed++
	return s.closeErr
}
