package imaging

import (
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

const (
	// UpscaleFactor is the linear magnification applied before OCR.
	UpscaleFactor = 4

	// ContrastFactor is the contrast enhancement factor. 1.0 leaves the image
	// unchanged, 2.0 doubles each pixel's distance from the mean grey.
	ContrastFactor = 2.0
)

// Preprocess prepares a chart for OCR: Lanczos upscale by UpscaleFactor,
// conversion to opaque RGB and a ContrastFactor contrast boost.
//
// The result always starts at (0,0).
func Preprocess(img image.Image) *image.NRGBA {
	b := img.Bounds()
	upscaled := imaging.Resize(img, b.Dx()*UpscaleFactor, b.Dy()*UpscaleFactor, imaging.Lanczos)
	return EnhanceContrast(upscaled, ContrastFactor)
}

// EnhanceContrast blends every channel away from the image's mean luminance:
//
//	out = mean + factor*(in - mean)
//
// Alpha is dropped, so the output is a fully opaque three-channel image.
func EnhanceContrast(img image.Image, factor float64) *image.NRGBA {
	mean := meanLuminance(img)
	scale := func(v uint8) uint8 {
		return clampByte(mean + factor*(float64(v)-mean))
	}
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: 255}
	})
}

// Luma weights of the ITU-R 601 grey conversion used for the contrast pivot.
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// meanLuminance returns the rounded average grey level of img.
func meanLuminance(img image.Image) float64 {
	gray := effect.GrayscaleWithWeights(img, lumaR, lumaG, lumaB)
	b := gray.Bounds()
	if b.Empty() {
		return 0
	}

	// Grey is replicated into R, G and B; sample R of every 4-byte pixel.
	w, h := b.Dx(), b.Dy()
	var sum float64
	for y := 0; y < h; y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+w*4]
		for x := 0; x < w; x++ {
			sum += float64(row[x*4])
		}
	}
	return math.Floor(sum/float64(w*h) + 0.5)
}

func clampByte(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
