package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ironsheep/surf-chart-ocr/internal/extract"
	"github.com/ironsheep/surf-chart-ocr/internal/imaging"
	"github.com/ironsheep/surf-chart-ocr/internal/ocr"
	"github.com/ironsheep/surf-chart-ocr/internal/surf"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "surf_extract_chart").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.Debugw("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "surf_extract_chart":
		return s.handleExtractChart(ctx, args)
	case "surf_chart_url":
		return s.handleChartURL(args)
	case "surf_chart_layout":
		return s.handleChartLayout(ctx, args)
	case "surf_chart_text":
		return s.handleChartText(ctx, args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// chartArgs locates a chart by URL or by local file path.
type chartArgs struct {
	URL  string `json:"url"`
	Path string `json:"path"`
}

func (s *Server) loadChart(ctx context.Context, a chartArgs) ([]byte, error) {
	switch {
	case a.Path != "":
		return s.cache.LoadFile(a.Path)
	case a.URL != "":
		return s.cache.Load(a.URL, func() ([]byte, error) {
			return s.source.Fetch(ctx, a.URL)
		})
	default:
		return nil, errors.New("either url or path is required")
	}
}

// === Extraction ===

type extractChartArgs struct {
	chartArgs
	Spot  string `json:"spot"`
	Month string `json:"month"`
}

type extractChartResult struct {
	Record      surf.SurfRecord   `json:"record"`
	FieldStatus map[string]string `json:"field_status"`
	HeaderText  string            `json:"header_text"`
	BarTexts    []string          `json:"bar_texts"`
	Layout      imaging.Layout    `json:"layout"`
}

func (s *Server) handleExtractChart(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a extractChartArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	month, err := surf.ParseMonth(a.Month)
	if err != nil {
		return nil, err
	}
	data, err := s.loadChart(ctx, a.chartArgs)
	if err != nil {
		return nil, err
	}

	res, err := s.extractor.Analyze(ctx, extract.ChartRequest{Spot: a.Spot, Month: month, URL: a.URL}, data)
	if err != nil {
		return nil, err
	}
	return &extractChartResult{
		Record:      res.Record,
		FieldStatus: fieldStatus(res.Readings),
		HeaderText:  res.Readings.HeaderText,
		BarTexts:    res.Readings.BarTexts,
		Layout:      res.Layout,
	}, nil
}

// fieldStatus reports how each record field was obtained, keyed by its CSV
// column name.
func fieldStatus(r *ocr.Readings) map[string]string {
	status := map[string]string{
		"clean":     r.Header.Clean.Status.String(),
		"blown_out": r.Header.BlownOut.Status.String(),
		"too_small": r.Header.TooSmall.Status.String(),
	}
	for i, bucket := range surf.HeightBuckets {
		if len(r.Bars) < surf.BarCount {
			status[bucket] = ocr.Missing.String()
			continue
		}
		status[bucket] = r.Bars[i].Status.String()
	}
	return status
}

// === URL building ===

type chartURLArgs struct {
	Spot    string `json:"spot"`
	Month   string `json:"month"`
	BaseURL string `json:"base_url"`
	GIFURL  string `json:"gif_url"`
}

type monthURL struct {
	Month string `json:"month"`
	URL   string `json:"url"`
}

type chartURLResult struct {
	Spot       string     `json:"spot"`
	URLs       []monthURL `json:"urls"`
	Alternates []string   `json:"alternates,omitempty"`
}

func (s *Server) handleChartURL(args json.RawMessage) (interface{}, error) {
	var a chartURLArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if strings.TrimSpace(a.Spot) == "" && a.GIFURL == "" {
		return nil, errors.New("spot or gif_url is required")
	}
	if a.BaseURL == "" {
		a.BaseURL = s.baseURL
	}
	if a.BaseURL == "" && a.GIFURL == "" {
		return nil, errors.New("base_url is required")
	}

	months := surf.Months
	if a.Month != "" {
		m, err := surf.ParseMonth(a.Month)
		if err != nil {
			return nil, err
		}
		months = []string{m}
	}

	spot := surf.Spot{Name: a.Spot, GIFURL: a.GIFURL}
	result := &chartURLResult{Spot: a.Spot, URLs: make([]monthURL, 0, len(months))}
	for _, m := range months {
		result.URLs = append(result.URLs, monthURL{Month: surf.CanonicalMonth(m), URL: surf.SpotChartURL(a.BaseURL, spot, m)})
	}
	if a.Spot != "" && a.BaseURL != "" {
		result.Alternates = surf.AlternateChartURLs(a.BaseURL, a.Spot)
	}
	return result, nil
}

// === Layout inspection ===

type chartLayoutArgs struct {
	chartArgs
	Region string  `json:"region"`
	Scale  float64 `json:"scale"`
}

type chartLayoutResult struct {
	Chart       *imaging.ChartInfo `json:"chart"`
	Layout      imaging.Layout     `json:"layout"`
	Region      string             `json:"region"`
	Width       int                `json:"width"`
	Height      int                `json:"height"`
	ImageBase64 string             `json:"image_base64"`
	MimeType    string             `json:"mime_type"`
}

func (s *Server) handleChartLayout(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a chartLayoutArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	if a.Region == "" {
		a.Region = "overlay"
	}

	data, err := s.loadChart(ctx, a.chartArgs)
	if err != nil {
		return nil, err
	}
	info, err := imaging.Inspect(data)
	if err != nil {
		return nil, err
	}
	img, err := imaging.Decode(data)
	if err != nil {
		return nil, err
	}
	dec, err := imaging.Decompose(img)
	if err != nil {
		return nil, err
	}

	result := &chartLayoutResult{Chart: info, Layout: dec.Layout, Region: a.Region, MimeType: "image/png"}
	if a.Region == "overlay" {
		overlay := imaging.DrawLayout(dec.Enhanced, dec.Layout)
		result.Width, result.Height = overlay.Bounds().Dx(), overlay.Bounds().Dy()
		result.ImageBase64, err = imaging.EncodePNGBase64(overlay)
		return result, err
	}

	r, ok := dec.Layout.Region(a.Region)
	if !ok {
		return nil, fmt.Errorf("unknown region %q: use overlay, header, bar_band or bar_1..bar_5", a.Region)
	}
	crop, err := imaging.CropRegion(dec.Enhanced, r, a.Scale)
	if err != nil {
		return nil, err
	}
	result.Width, result.Height = crop.Bounds().Dx(), crop.Bounds().Dy()
	result.ImageBase64, err = imaging.EncodePNGBase64(crop)
	return result, err
}

// === Frame text ===

type chartTextArgs struct {
	chartArgs
	Raw bool `json:"raw"`
}

type chartTextResult struct {
	Frames int      `json:"frames"`
	Texts  []string `json:"texts"`
}

func (s *Server) handleChartText(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a chartTextArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	data, err := s.loadChart(ctx, a.chartArgs)
	if err != nil {
		return nil, err
	}
	frames, err := imaging.DecodeFrames(data)
	if err != nil {
		return nil, err
	}
	texts, err := ocr.ExtractFrameTexts(ctx, s.recognizer, frames)
	if err != nil {
		return nil, err
	}
	if !a.Raw {
		texts = ocr.CleanFrameTexts(texts)
	}
	return &chartTextResult{Frames: len(frames), Texts: texts}, nil
}
