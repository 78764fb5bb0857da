package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// overlayStroke is the outline thickness, in pixels, of drawn regions.
const overlayStroke = 3

// DrawLayout outlines the header and every bar strip on a copy of img.
//
// Each region gets its own hue. Bar strips are labelled 1..5 in their top-left
// corner, matching debug artifact names, and the header is labelled H.
func DrawLayout(img image.Image, layout Layout) *image.RGBA {
	bounds := img.Bounds()
	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, img, bounds.Min, draw.Src)

	regions := append([]Region{layout.Header}, layout.Bars...)
	palette := regionPalette(len(regions))

	labelColor := color.RGBA{255, 255, 255, 255}
	for i, r := range regions {
		label := "H"
		if i > 0 {
			label = strconv.Itoa(i)
		}
		outlineRegion(result, r, palette[i])
		drawLabel(result, r.X1+overlayStroke+1, r.Y1+overlayStroke+1, label, labelColor, palette[i])
	}
	return result
}

// regionPalette returns n evenly spaced, saturated hues.
func regionPalette(n int) []color.RGBA {
	colors := make([]color.RGBA, n)
	for i := range colors {
		c := colorful.Hsv(float64(i)*360/float64(n), 0.85, 0.95)
		r, g, b := c.RGB255()
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

func outlineRegion(img *image.RGBA, r Region, c color.RGBA) {
	bounds := img.Bounds()
	set := func(x, y int) {
		if (image.Point{X: x, Y: y}).In(bounds) {
			img.SetRGBA(x, y, c)
		}
	}
	for t := 0; t < overlayStroke; t++ {
		for x := r.X1; x < r.X2; x++ {
			set(x, r.Y1+t)
			set(x, r.Y2-1-t)
		}
		for y := r.Y1; y < r.Y2; y++ {
			set(r.X1+t, y)
			set(r.X2-1-t, y)
		}
	}
}

// drawLabel writes text on a filled background box with its top-left corner
// at (x, y).
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	box := image.Rect(x, y, x+width+2, y+face.Height+2).Intersect(img.Bounds())
	draw.Draw(img, box, image.NewUniform(bg), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.P(x+1, y+1+face.Ascent),
	}
	d.DrawString(text)
}

// EncodePNGBase64 encodes an image as base64 PNG for JSON transport.
func EncodePNGBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
