package extract

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// ArtifactSink stores diagnostic images keyed by spot and file name. Errors
// are reported to the caller but never affect an extraction result.
type ArtifactSink interface {
	Save(spot, name string, img image.Image) error
}

// NopSink discards every artifact.
type NopSink struct{}

// Save implements ArtifactSink.
func (NopSink) Save(string, string, image.Image) error { return nil }

// FileSink writes artifacts as image files under {root}/{spot}/{name}.
type FileSink struct {
	root string
}

// NewFileSink creates a FileSink rooted at dir.
func NewFileSink(dir string) *FileSink {
	return &FileSink{root: dir}
}

// Save writes img, creating the spot directory as needed. The format follows
// the file extension.
func (s *FileSink) Save(spot, name string, img image.Image) error {
	dir := filepath.Join(s.root, safePathElement(spot))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create debug directory: %w", err)
	}
	path := filepath.Join(dir, safePathElement(name))
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// BarArtifactName names the debug file for bar i (zero based) of a month.
func BarArtifactName(month string, i int) string {
	return fmt.Sprintf("%s_bar_%d.png", strings.ToLower(month), i+1)
}

// LayoutArtifactName names the layout overlay debug file of a month.
func LayoutArtifactName(month string) string {
	return strings.ToLower(month) + "_layout.png"
}

func safePathElement(s string) string {
	s = strings.NewReplacer("/", "-", `\`, "-").Replace(s)
	if s == "" || s == "." || s == ".." {
		return "_"
	}
	return s
}
