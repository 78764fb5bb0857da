package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"testing"
)

// createInMemoryImage creates a solid-color image without file I/O.
func createInMemoryImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createChartImage paints a chart-like image: a dark header band on the top
// fifth, a light middle and five bars of distinct grey levels at the bottom.
func createChartImage(width, height int) *image.RGBA {
	img := createInMemoryImage(width, height, color.RGBA{230, 230, 230, 255})
	for y := 0; y < height/5; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{40, 40, 40, 255})
		}
	}
	barWidth := width / 5
	for i := 0; i < 5; i++ {
		level := uint8(50 * i)
		for y := height * 7 / 10; y < height; y++ {
			for x := i * barWidth; x < (i+1)*barWidth; x++ {
				img.Set(x, y, color.RGBA{level, level, level, 255})
			}
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func encodeGIF(t *testing.T, frames ...*image.Paletted) []byte {
	t.Helper()
	anim := &gif.GIF{}
	for _, f := range frames {
		anim.Image = append(anim.Image, f)
		anim.Delay = append(anim.Delay, 10)
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, anim); err != nil {
		t.Fatalf("failed to encode gif: %v", err)
	}
	return buf.Bytes()
}

func solidPaletted(rect image.Rectangle, c color.Color) *image.Paletted {
	p := image.NewPaletted(rect, color.Palette{color.Transparent, color.Black, color.White, c})
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			p.Set(x, y, c)
		}
	}
	return p
}
