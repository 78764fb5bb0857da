package ocr

import (
	"context"
	"fmt"
	"image"
	"strings"
)

// noiseMarkers flag lines that are chart decoration rather than data.
var noiseMarkers = []string{"om", "gm", "opt", "sbt"}

// ExtractFrameTexts runs unrestricted recognition over every frame and returns
// the non-blank results, trimmed, in frame order.
func ExtractFrameTexts(ctx context.Context, r Recognizer, frames []image.Image) ([]string, error) {
	texts := make([]string, 0, len(frames))
	for i, frame := range frames {
		text, err := r.Recognize(ctx, frame, FullConfig())
		if err != nil {
			return nil, fmt.Errorf("frame %d recognition: %w", i, err)
		}
		if text = strings.TrimSpace(text); text != "" {
			texts = append(texts, text)
		}
	}
	return texts, nil
}

// CleanFrameTexts drops blank and noise lines from each text and joins the
// remaining lines with commas.
func CleanFrameTexts(texts []string) []string {
	cleaned := make([]string, 0, len(texts))
	for _, text := range texts {
		var lines []string
		for _, line := range strings.Split(text, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || isNoise(line) {
				continue
			}
			lines = append(lines, line)
		}
		cleaned = append(cleaned, strings.Join(lines, ","))
	}
	return cleaned
}

func isNoise(line string) bool {
	lower := strings.ToLower(line)
	for _, marker := range noiseMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
