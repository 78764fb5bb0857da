package ocr

import "github.com/otiai10/gosseract/v2"

const (
	// HeaderWhitelist limits header recognition to digits, the percent sign
	// and the letters of "Clean", "Blown out" (and its "Biown" misread) and
	// "Too small".
	HeaderWhitelist = "0123456789.%CcleanBiowutTsm"

	// BarWhitelist limits bar recognition to percentages.
	BarWhitelist = "0123456789.%"

	// DefaultLanguage is the Tesseract language used when none is configured.
	DefaultLanguage = "eng"
)

// RegionConfig tunes recognition for one kind of chart region. Values are
// passed per call; nothing is stored on the engine.
type RegionConfig struct {
	// Name identifies the region kind in logs and errors.
	Name string

	// PageSegMode tells Tesseract how the text in the crop is laid out.
	PageSegMode gosseract.PageSegMode

	// Whitelist restricts the characters Tesseract may emit. Empty means
	// unrestricted.
	Whitelist string
}

// HeaderConfig reads the header as a single uniform block of line-structured
// text.
func HeaderConfig() RegionConfig {
	return RegionConfig{
		Name:        "header",
		PageSegMode: gosseract.PSM_SINGLE_BLOCK,
		Whitelist:   HeaderWhitelist,
	}
}

// BarConfig reads a bar strip with fully automatic page segmentation.
func BarConfig() RegionConfig {
	return RegionConfig{
		Name:        "bar",
		PageSegMode: gosseract.PSM_AUTO,
		Whitelist:   BarWhitelist,
	}
}

// FullConfig reads unrestricted text with automatic segmentation.
func FullConfig() RegionConfig {
	return RegionConfig{
		Name:        "full",
		PageSegMode: gosseract.PSM_AUTO,
	}
}
