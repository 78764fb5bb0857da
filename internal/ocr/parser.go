package ocr

import (
	"context"
	"fmt"
	"image"

	"github.com/ironsheep/surf-chart-ocr/internal/surf"
)

// Parser turns chart crops into field readings using a Recognizer.
type Parser struct {
	recognizer Recognizer
	header     RegionConfig
	bar        RegionConfig
}

// NewParser creates a Parser with the standard header and bar configs.
func NewParser(r Recognizer) *Parser {
	return &Parser{
		recognizer: r,
		header:     HeaderConfig(),
		bar:        BarConfig(),
	}
}

// Readings is the parsed content of one chart, before collapsing to a record.
type Readings struct {
	Header HeaderReadings

	// Bars holds one reading per bar crop, in crop order.
	Bars []Reading

	HeaderText string
	BarTexts   []string
}

// Parse recognizes the header crop and every bar crop.
//
// Field-level misses never fail the call; they surface as non-Parsed
// readings. A recognizer error on any crop aborts the whole chart.
func (p *Parser) Parse(ctx context.Context, header image.Image, bars []image.Image) (*Readings, error) {
	headerText, err := p.recognizer.Recognize(ctx, header, p.header)
	if err != nil {
		return nil, fmt.Errorf("header recognition: %w", err)
	}

	r := &Readings{
		Header:     ParseHeader(headerText),
		HeaderText: headerText,
		Bars:       make([]Reading, 0, len(bars)),
		BarTexts:   make([]string, 0, len(bars)),
	}
	for i, bar := range bars {
		text, err := p.recognizer.Recognize(ctx, bar, p.bar)
		if err != nil {
			return nil, fmt.Errorf("bar %d recognition: %w", i+1, err)
		}
		r.Bars = append(r.Bars, ParseBar(text))
		r.BarTexts = append(r.BarTexts, text)
	}
	return r, nil
}

// Apply writes the readings into rec. Header fields are set independently;
// height fields are set only when all surf.BarCount bars were read.
func (r *Readings) Apply(rec *surf.SurfRecord) {
	rec.Clean = r.Header.Clean.Float()
	rec.BlownOut = r.Header.BlownOut.Float()
	rec.TooSmall = r.Header.TooSmall.Float()

	values := make([]float64, len(r.Bars))
	for i, b := range r.Bars {
		values[i] = b.Float()
	}
	rec.SetHeights(values)
}

// Defaulted counts the fields that will fall back to 0.0, keyed by status.
// A bar-count shortfall counts every height field as missing.
func (r *Readings) Defaulted() map[Status]int {
	counts := map[Status]int{}
	for _, h := range []Reading{r.Header.Clean, r.Header.BlownOut, r.Header.TooSmall} {
		if h.Status != Parsed {
			counts[h.Status]++
		}
	}
	if len(r.Bars) < surf.BarCount {
		counts[Missing] += surf.BarCount
		return counts
	}
	for _, b := range r.Bars[:surf.BarCount] {
		if b.Status != Parsed {
			counts[b.Status]++
		}
	}
	return counts
}
