package extract

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/ironsheep/surf-chart-ocr/internal/imaging"
	"github.com/ironsheep/surf-chart-ocr/internal/logger"
	"github.com/ironsheep/surf-chart-ocr/internal/observability"
	"github.com/ironsheep/surf-chart-ocr/internal/ocr"
	"github.com/ironsheep/surf-chart-ocr/internal/surf"
	"github.com/prometheus/client_golang/prometheus"
)

// ErrPanic wraps a panic recovered while extracting one chart.
var ErrPanic = errors.New("chart extraction panicked")

// ChartRequest identifies one chart to extract.
type ChartRequest struct {
	Spot  string
	Month string
	URL   string
}

// Result is a successful extraction together with the intermediate readings.
type Result struct {
	Record   surf.SurfRecord
	Readings *ocr.Readings
	Layout   imaging.Layout
}

// Config wires an Extractor. Source and Recognizer are required.
type Config struct {
	Source     Source
	Recognizer ocr.Recognizer

	// Sink receives bar crops and the layout overlay. Nil disables
	// debug artifacts.
	Sink ArtifactSink

	Logger  *logger.Logger
	Metrics *observability.Metrics
}

// Extractor runs fetch, decompose and parse for one chart at a time.
// Nothing from one call is reused by the next.
type Extractor struct {
	source  Source
	parser  *ocr.Parser
	sink    ArtifactSink
	log     *logger.Logger
	metrics *observability.Metrics
}

// NewExtractor creates an Extractor from cfg.
func NewExtractor(cfg Config) (*Extractor, error) {
	if cfg.Source == nil {
		return nil, errors.New("extractor requires a chart source")
	}
	if cfg.Recognizer == nil {
		return nil, errors.New("extractor requires a recognizer")
	}
	e := &Extractor{
		source:  cfg.Source,
		parser:  ocr.NewParser(cfg.Recognizer),
		sink:    cfg.Sink,
		log:     cfg.Logger,
		metrics: cfg.Metrics,
	}
	if e.sink == nil {
		e.sink = NopSink{}
	}
	if e.log == nil {
		e.log = logger.NewNop()
	}
	if e.metrics == nil {
		e.metrics = observability.NewMetrics(prometheus.NewRegistry())
	}
	return e, nil
}

// Extract fetches and parses one chart. ok is false when no record could be
// produced: the source was unreachable or answered non-200, the bytes did not
// decode, or recognition failed. The failure is logged; callers just skip.
func (e *Extractor) Extract(ctx context.Context, req ChartRequest) (rec surf.SurfRecord, ok bool) {
	log := e.log.WithChart(req.Spot, surf.CanonicalMonth(req.Month))
	start := time.Now()
	defer func() {
		e.metrics.ExtractDuration.Observe(time.Since(start).Seconds())
		if ok {
			e.metrics.Charts.WithLabelValues("extracted").Inc()
		} else {
			e.metrics.Charts.WithLabelValues("failed").Inc()
		}
	}()
	defer func() {
		if p := recover(); p != nil {
			log.Errorw("chart extraction panicked", "url", req.URL, "panic", p)
			rec, ok = surf.SurfRecord{}, false
		}
	}()

	data, err := e.source.Fetch(ctx, req.URL)
	if err != nil {
		e.metrics.FetchErrors.WithLabelValues(fetchReason(err)).Inc()
		log.Warnw("chart fetch failed", "url", req.URL, "error", err)
		return surf.SurfRecord{}, false
	}

	res, err := e.Analyze(ctx, req, data)
	if err != nil {
		log.Warnw("chart extraction failed", "url", req.URL, "error", err)
		return surf.SurfRecord{}, false
	}

	r := res.Record
	log.Infow("chart extracted",
		"clean", r.Clean, "blown_out", r.BlownOut, "too_small", r.TooSmall,
		"flat", r.Flat, "height_0_4", r.Height0to4, "height_4_6", r.Height4to6,
		"height_6_10", r.Height6to10, "height_10_plus", r.Height10Plus)
	return r, true
}

// Analyze decomposes and parses chart bytes that are already in hand.
//
// # Errors
//
//   - imaging.ErrDecode if data is not an image
//   - a layout error if the chart is too small to decompose
//   - any recognizer error, or ErrPanic if recognition panicked
func (e *Extractor) Analyze(ctx context.Context, req ChartRequest, data []byte) (res *Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			res, err = nil, fmt.Errorf("%w: %v", ErrPanic, p)
		}
	}()

	img, err := imaging.Decode(data)
	if err != nil {
		return nil, err
	}

	dec, err := imaging.Decompose(img)
	if err != nil {
		return nil, fmt.Errorf("failed to decompose chart: %w", err)
	}
	e.saveArtifacts(req, dec)

	bars := make([]image.Image, len(dec.Bars))
	for i, b := range dec.Bars {
		bars[i] = b
	}
	readings, err := e.parser.Parse(ctx, dec.Header, bars)
	if err != nil {
		return nil, err
	}

	rec := surf.NewRecord(req.Spot, req.Month)
	readings.Apply(&rec)

	log := e.log.WithChart(req.Spot, rec.Month)
	for status, n := range readings.Defaulted() {
		e.metrics.FieldFallbacks.WithLabelValues(status.String()).Add(float64(n))
		log.Debugw("fields defaulted to 0", "status", status.String(), "count", n,
			"header_text", readings.HeaderText, "bar_texts", readings.BarTexts)
	}

	return &Result{Record: rec, Readings: readings, Layout: dec.Layout}, nil
}

func (e *Extractor) saveArtifacts(req ChartRequest, dec *imaging.Decomposition) {
	if _, nop := e.sink.(NopSink); nop {
		return
	}
	log := e.log.WithChart(req.Spot, req.Month)
	for i, bar := range dec.Bars {
		if err := e.sink.Save(req.Spot, BarArtifactName(req.Month, i), bar); err != nil {
			log.Warnw("debug artifact not saved", "error", err)
		}
	}
	overlay := imaging.DrawLayout(dec.Enhanced, dec.Layout)
	if err := e.sink.Save(req.Spot, LayoutArtifactName(req.Month), overlay); err != nil {
		log.Warnw("debug artifact not saved", "error", err)
	}
}

func fetchReason(err error) string {
	switch {
	case errors.Is(err, ErrSourceStatus):
		return "status"
	case errors.Is(err, ErrSourceUnavailable):
		return "transport"
	default:
		return "other"
	}
}
