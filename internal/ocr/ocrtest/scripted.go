// Package ocrtest provides fake Recognizers for tests.
package ocrtest

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/ironsheep/surf-chart-ocr/internal/ocr"
)

// Scripted returns canned text per region kind. Bar texts are handed out in
// call order, wrapping around for every chart.
type Scripted struct {
	mu sync.Mutex

	Header string
	Bars   []string

	// Err, when set, is returned for every call whose config name matches
	// ErrOn ("header" or "bar"), or for every call when ErrOn is empty.
	Err   error
	ErrOn string

	// Panic, when set, is raised on the first bar call.
	Panic string

	Calls   []ocr.RegionConfig
	barNext int
}

// Recognize implements ocr.Recognizer.
func (s *Scripted) Recognize(ctx context.Context, _ image.Image, cfg ocr.RegionConfig) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.Calls = append(s.Calls, cfg)
	if s.Err != nil && (s.ErrOn == "" || s.ErrOn == cfg.Name) {
		return "", s.Err
	}

	switch cfg.Name {
	case "header":
		return s.Header, nil
	case "bar":
		if s.Panic != "" {
			panic(s.Panic)
		}
		if len(s.Bars) == 0 {
			return "", nil
		}
		text := s.Bars[s.barNext%len(s.Bars)]
		s.barNext++
		return text, nil
	default:
		return "", fmt.Errorf("unscripted region %q", cfg.Name)
	}
}
