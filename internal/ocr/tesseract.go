package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"
)

// Recognizer converts an image region into text.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image, cfg RegionConfig) (string, error)
}

// Engine is a Recognizer backed by Tesseract through gosseract.
//
// Every Recognize call builds and closes its own Tesseract client, so no
// recognition state is shared between crops or charts.
type Engine struct {
	language       string
	tessdataPrefix string
}

// EngineConfig configures an Engine.
type EngineConfig struct {
	// Language is the Tesseract language code. Defaults to "eng".
	Language string

	// TessdataPrefix points Tesseract at a tessdata directory. Empty uses
	// the system default.
	TessdataPrefix string
}

// NewEngine creates a Tesseract-backed recognizer.
func NewEngine(cfg EngineConfig) *Engine {
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	return &Engine{
		language:       cfg.Language,
		tessdataPrefix: cfg.TessdataPrefix,
	}
}

// Recognize performs OCR on img using the page segmentation mode and
// whitelist from cfg.
//
// # Errors
//
//   - Returns ctx.Err() if the context is already done
//   - Returns error if the image cannot be encoded or Tesseract fails
func (e *Engine) Recognize(ctx context.Context, img image.Image, cfg RegionConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode %s crop: %w", cfg.Name, err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if e.tessdataPrefix != "" {
		if err := client.SetTessdataPrefix(e.tessdataPrefix); err != nil {
			return "", fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}
	if err := client.SetLanguage(e.language); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetPageSegMode(cfg.PageSegMode); err != nil {
		return "", fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if cfg.Whitelist != "" {
		if err := client.SetWhitelist(cfg.Whitelist); err != nil {
			return "", fmt.Errorf("failed to set whitelist: %w", err)
		}
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed on %s crop: %w", cfg.Name, err)
	}
	return text, nil
}

// Info contains information about the OCR subsystem.
type Info struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Language  string `json:"language"`
	Backend   string `json:"backend"`
}

// Info reports the Tesseract version the engine links against.
func (e *Engine) Info() Info {
	client := gosseract.NewClient()
	defer client.Close()

	version := client.Version()
	return Info{
		Available: version != "",
		Version:   version,
		Language:  e.language,
		Backend:   "gosseract",
	}
}
