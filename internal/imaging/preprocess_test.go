package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreprocess_Upscales(t *testing.T) {
	img := createChartImage(50, 80)

	out := Preprocess(img)

	assert.Equal(t, image.Rect(0, 0, 200, 320), out.Bounds())
}

func TestPreprocess_DropsAlpha(t *testing.T) {
	img := createInMemoryImage(10, 10, color.NRGBA{10, 20, 30, 0})

	out := Preprocess(img)

	for i := 3; i < len(out.Pix); i += 4 {
		if out.Pix[i] != 255 {
			t.Fatalf("pixel alpha at offset %d = %d, want 255", i, out.Pix[i])
		}
	}
}

func TestEnhanceContrast_SolidImageUnchanged(t *testing.T) {
	img := createInMemoryImage(10, 10, color.RGBA{128, 128, 128, 255})

	out := EnhanceContrast(img, ContrastFactor)

	// The grey pivot is rounded, so allow one step of drift either way.
	c := out.NRGBAAt(5, 5)
	assert.InDelta(t, 128, int(c.R), 2)
	assert.Equal(t, c.R, c.G)
	assert.Equal(t, uint8(255), c.A)
}

func TestEnhanceContrast_StretchesAroundMean(t *testing.T) {
	// Half black, half white has a mean of ~128; a mid-dark grey moves
	// further from it.
	img := image.NewRGBA(image.Rect(0, 0, 4, 1))
	img.Set(0, 0, color.RGBA{0, 0, 0, 255})
	img.Set(1, 0, color.RGBA{255, 255, 255, 255})
	img.Set(2, 0, color.RGBA{100, 100, 100, 255})
	img.Set(3, 0, color.RGBA{156, 156, 156, 255})

	out := EnhanceContrast(img, 2.0)

	assert.Equal(t, uint8(0), out.NRGBAAt(0, 0).R, "black clamps at 0")
	assert.Equal(t, uint8(255), out.NRGBAAt(1, 0).R, "white clamps at 255")
	assert.Less(t, out.NRGBAAt(2, 0).R, uint8(100))
	assert.Greater(t, out.NRGBAAt(3, 0).R, uint8(156))
}

func TestEnhanceContrast_FactorOneIsIdentity(t *testing.T) {
	img := createChartImage(20, 20)

	out := EnhanceContrast(img, 1.0)

	for _, p := range []image.Point{{0, 0}, {10, 10}, {19, 19}} {
		r, g, b, _ := img.At(p.X, p.Y).RGBA()
		c := out.NRGBAAt(p.X, p.Y)
		assert.Equal(t, [3]uint8{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)}, [3]uint8{c.R, c.G, c.B})
	}
}

func TestPreprocess_Deterministic(t *testing.T) {
	img := createChartImage(30, 60)

	a := Preprocess(img)
	b := Preprocess(img)

	assert.Equal(t, a.Pix, b.Pix)
}

func TestMeanLuminance(t *testing.T) {
	row := func(colors ...color.RGBA) image.Image {
		img := image.NewRGBA(image.Rect(0, 0, len(colors), 1))
		for x, c := range colors {
			img.SetRGBA(x, 0, c)
		}
		return img
	}
	white := color.RGBA{255, 255, 255, 255}
	black := color.RGBA{0, 0, 0, 255}

	tests := []struct {
		name string
		img  image.Image
		want float64
	}{
		{"solid grey", createInMemoryImage(10, 10, color.RGBA{128, 128, 128, 255}), 128},
		{"every pixel of a row counts", row(white, white, white, white, white, white, black, black), 191},
		{"black pixels on the right", row(black, black, white, white, white, white, white, white), 191},
		{"pure red uses luma weights", createInMemoryImage(4, 4, color.RGBA{255, 0, 0, 255}), 76},
		{"pure green uses luma weights", createInMemoryImage(4, 4, color.RGBA{0, 255, 0, 255}), 150},
		{"offset bounds", createInMemoryImage(6, 3, color.RGBA{40, 40, 40, 255}).SubImage(image.Rect(2, 1, 6, 3)), 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, meanLuminance(tt.img))
		})
	}
}

func TestEnhanceContrast_MostlyWhite(t *testing.T) {
	// Mean 191: white stays white, black stays black, a light grey darkens.
	img := image.NewRGBA(image.Rect(0, 0, 8, 1))
	for x := 0; x < 6; x++ {
		img.SetRGBA(x, 0, color.RGBA{255, 255, 255, 255})
	}
	img.SetRGBA(6, 0, color.RGBA{0, 0, 0, 255})
	img.SetRGBA(7, 0, color.RGBA{0, 0, 0, 255})

	out := EnhanceContrast(img, ContrastFactor)

	assert.Equal(t, uint8(255), out.NRGBAAt(0, 0).R)
	assert.Equal(t, uint8(0), out.NRGBAAt(7, 0).R)

	grey := createInMemoryImage(1, 1, color.RGBA{128, 128, 128, 255})
	assert.Equal(t, uint8(128), EnhanceContrast(grey, ContrastFactor).NRGBAAt(0, 0).R)
}
