package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder

	"github.com/disintegration/imaging"
)

// ErrDecode is returned when chart bytes cannot be decoded as an image.
var ErrDecode = errors.New("undecodable chart image")

// ChartInfo contains metadata about a downloaded chart.
type ChartInfo struct {
	// Width is the source image width in pixels.
	Width int `json:"width"`

	// Height is the source image height in pixels.
	Height int `json:"height"`

	// Format is the detected image format: "gif", "png" or "jpeg".
	// Detection is based on content, not on the URL.
	Format string `json:"format"`

	// SizeBytes is the size of the downloaded payload.
	SizeBytes int `json:"size_bytes"`
}

// Decode turns raw chart bytes into an image.
//
// Animated GIFs decode to their first frame. Any decoder failure is wrapped
// with ErrDecode so callers can tell it apart from transport failures.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrDecode)
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, nil
}

// Inspect reads chart metadata without decoding pixel data.
func Inspect(data []byte) (*ChartInfo, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return &ChartInfo{
		Width:     cfg.Width,
		Height:    cfg.Height,
		Format:    format,
		SizeBytes: len(data),
	}, nil
}

// DecodeFrames returns every frame of a GIF, each composited over the frames
// before it so partial frames render as full images. Non-GIF input yields a
// single frame.
func DecodeFrames(data []byte) ([]image.Image, error) {
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		img, decodeErr := Decode(data)
		if decodeErr != nil {
			return nil, decodeErr
		}
		return []image.Image{img}, nil
	}

	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	canvas := image.NewRGBA(bounds)
	frames := make([]image.Image, 0, len(g.Image))
	for _, frame := range g.Image {
		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
		frames = append(frames, imaging.Clone(canvas))
	}
	return frames, nil
}
