package ocrtest

import (
	"context"
	"image"
	"image/color"
	"sync"

	"github.com/ironsheep/surf-chart-ocr/internal/ocr"
)

// Crop is what ColorCoded saw in one Recognize call.
type Crop struct {
	Region string
	Size   image.Point
	Color  color.RGBA
}

// ColorCoded reads text out of the pixels it is given: every channel is
// thresholded at half intensity, the most common resulting color wins, and
// Texts maps it to the recognized string. Unmapped colors read as "".
//
// Synthetic charts painted in saturated colors let tests check which crop
// reached the recognizer without relying on call order.
type ColorCoded struct {
	mu sync.Mutex

	Texts map[color.RGBA]string
	Seen  []Crop
}

// Recognize implements ocr.Recognizer.
func (c *ColorCoded) Recognize(ctx context.Context, img image.Image, cfg ocr.RegionConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dominant := DominantColor(img)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.Seen = append(c.Seen, Crop{Region: cfg.Name, Size: img.Bounds().Size(), Color: dominant})
	return c.Texts[dominant], nil
}

// Colors returns the dominant color of every crop seen so far, in call order.
func (c *ColorCoded) Colors() []color.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]color.RGBA, len(c.Seen))
	for i, s := range c.Seen {
		out[i] = s.Color
	}
	return out
}

// DominantColor returns the most frequent color of img after snapping every
// channel to 0 or 255. Ties go to the color found first in row-major order.
func DominantColor(img image.Image) color.RGBA {
	b := img.Bounds()
	counts := map[color.RGBA]int{}
	var (
		best  color.RGBA
		order []color.RGBA
	)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			k := color.RGBA{R: snap(r), G: snap(g), B: snap(bl), A: 0xff}
			if counts[k] == 0 {
				order = append(order, k)
			}
			counts[k]++
		}
	}
	for _, k := range order {
		if counts[k] > counts[best] {
			best = k
		}
	}
	return best
}

func snap(v uint32) uint8 {
	if v >= 0x8000 {
		return 0xff
	}
	return 0
}
