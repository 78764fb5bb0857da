package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/ironsheep/surf-chart-ocr/internal/surf"
)

const (
	// HeaderFraction is the share of the chart height, from the top, that
	// holds the condition percentages.
	HeaderFraction = 0.2

	// BarBandStart is where the bar band begins, as a fraction of height.
	// The band runs to the bottom edge.
	BarBandStart = 0.7
)

// Region represents a rectangular region within an image.
//
// Coordinates follow the standard image convention:
//   - (X1, Y1) is the top-left corner (inclusive)
//   - (X2, Y2) is the bottom-right corner (exclusive)
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Rect converts the region to an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

// Empty reports whether the region has no pixels.
func (r Region) Empty() bool {
	return r.X1 >= r.X2 || r.Y1 >= r.Y2
}

// Layout is the fixed geometry of a preprocessed chart.
type Layout struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	// Header spans the full width over the top HeaderFraction of the height.
	Header Region `json:"header"`

	// BarBand spans the full width from BarBandStart to the bottom edge.
	BarBand Region `json:"bar_band"`

	// Bars splits BarBand into equal-width strips, left to right, in the
	// bucket order of surf.HeightBuckets.
	Bars []Region `json:"bars"`
}

// Region looks up a region by name: "header", "bar_band", or "bar_1"
// through "bar_5" in left-to-right order.
func (l Layout) Region(name string) (Region, bool) {
	switch name {
	case "header":
		return l.Header, true
	case "bar_band":
		return l.BarBand, true
	}
	var i int
	if _, err := fmt.Sscanf(name, "bar_%d", &i); err != nil || i < 1 || i > len(l.Bars) {
		return Region{}, false
	}
	if name != fmt.Sprintf("bar_%d", i) {
		return Region{}, false
	}
	return l.Bars[i-1], true
}

// ComputeLayout derives the header, bar band and bar strips for an image of
// the given size. The fractions are fixed and never tuned per chart.
//
// # Errors
//
//   - Returns error if the header or any bar strip would be empty.
func ComputeLayout(width, height int) (Layout, error) {
	headerBottom := int(math.Round(float64(height) * HeaderFraction))
	bandTop := int(math.Round(float64(height) * BarBandStart))

	layout := Layout{
		Width:   width,
		Height:  height,
		Header:  Region{X1: 0, Y1: 0, X2: width, Y2: headerBottom},
		BarBand: Region{X1: 0, Y1: bandTop, X2: width, Y2: height},
	}
	if layout.Header.Empty() || layout.BarBand.Empty() {
		return Layout{}, fmt.Errorf("chart %dx%d too small for region layout", width, height)
	}

	barWidth := width / surf.BarCount
	if barWidth == 0 {
		return Layout{}, fmt.Errorf("chart width %d too narrow for %d bars", width, surf.BarCount)
	}
	layout.Bars = make([]Region, surf.BarCount)
	for i := range layout.Bars {
		layout.Bars[i] = Region{
			X1: i * barWidth,
			Y1: bandTop,
			X2: (i + 1) * barWidth,
			Y2: height,
		}
	}
	return layout, nil
}

// Decomposition holds the crops taken from one chart. It is owned by a single
// extraction call and never shared.
type Decomposition struct {
	// Enhanced is the preprocessed chart the crops were taken from.
	Enhanced *image.NRGBA

	Layout Layout

	// Header holds the condition percentages.
	Header *image.NRGBA

	// Bars holds one crop per wave-height bucket, left to right.
	Bars []*image.NRGBA
}

// Decompose preprocesses a chart and cuts it into the header crop and the
// ordered bar crops.
//
// The returned decomposition always has exactly surf.BarCount bar crops when
// err is nil.
func Decompose(img image.Image) (*Decomposition, error) {
	enhanced := Preprocess(img)
	b := enhanced.Bounds()

	layout, err := ComputeLayout(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}

	d := &Decomposition{
		Enhanced: enhanced,
		Layout:   layout,
		Header:   imaging.Crop(enhanced, layout.Header.Rect()),
		Bars:     make([]*image.NRGBA, 0, len(layout.Bars)),
	}
	for _, bar := range layout.Bars {
		d.Bars = append(d.Bars, imaging.Crop(enhanced, bar.Rect()))
	}
	return d, nil
}

// CropRegion extracts a rectangular region, optionally rescaled.
func CropRegion(img image.Image, r Region, scale float64) (*image.NRGBA, error) {
	bounds := img.Bounds()

	if r.X1 < bounds.Min.X || r.Y1 < bounds.Min.Y || r.X2 > bounds.Max.X || r.Y2 > bounds.Max.Y {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			r.X1, r.Y1, r.X2, r.Y2, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	if r.Empty() {
		return nil, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}

	cropped := imaging.Crop(img, r.Rect())
	if scale != 1.0 && scale > 0 {
		newWidth := int(float64(cropped.Bounds().Dx()) * scale)
		newHeight := int(float64(cropped.Bounds().Dy()) * scale)
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.Lanczos)
	}
	return cropped, nil
}
