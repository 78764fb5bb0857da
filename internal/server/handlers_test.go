package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/gif"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ironsheep/surf-chart-ocr/internal/ocr"
	"github.com/ironsheep/surf-chart-ocr/internal/ocr/ocrtest"
)

// createChartFile writes a small paletted chart GIF and returns its path.
func createChartFile(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "chart.gif")
	if err := os.WriteFile(path, chartBytes(t), 0o644); err != nil {
		t.Fatalf("failed to write chart: %v", err)
	}
	return path
}

func chartBytes(t *testing.T) []byte {
	t.Helper()

	palette := color.Palette{color.White, color.Black, color.Gray{Y: 128}}
	img := image.NewPaletted(image.Rect(0, 0, 50, 60), palette)
	for y := 0; y < 60; y++ {
		for x := 0; x < 50; x++ {
			switch {
			case y < 10:
				img.SetColorIndex(x, y, 1)
			case y >= 45 && x%10 < 7:
				img.SetColorIndex(x, y, 2)
			}
		}
	}

	var buf bytes.Buffer
	if err := gif.Encode(&buf, img, nil); err != nil {
		t.Fatalf("failed to encode chart: %v", err)
	}
	return buf.Bytes()
}

func scriptedChart() *ocrtest.Scripted {
	return &ocrtest.Scripted{
		Header: "Clean 62% Blown out 10% Too small 5%",
		Bars:   []string{"3%", "40%", "35%", "20%", "2%"},
	}
}

// frameText answers every full-page request with the same text.
type frameText string

func (f frameText) Recognize(_ context.Context, _ image.Image, _ ocr.RegionConfig) (string, error) {
	return string(f), nil
}

// callTool runs a tools/call request and decodes the text content into out.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}, out interface{}) *MCPResponse {
	t.Helper()

	params, _ := json.Marshal(map[string]interface{}{"name": name, "arguments": args})
	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  params,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil || out == nil {
		return resp
	}

	result := resp.Result.(map[string]interface{})
	content := result["content"].([]map[string]interface{})
	if len(content) != 1 || content[0]["type"] != "text" {
		t.Fatalf("unexpected content: %+v", content)
	}
	if err := json.Unmarshal([]byte(content[0]["text"].(string)), out); err != nil {
		t.Fatalf("failed to decode tool result: %v", err)
	}
	return resp
}

func TestHandleToolsCall_ExtractChart_Path(t *testing.T) {
	s := newTestServer(t, scriptedChart())

	var result extractChartResult
	resp := callTool(t, s, "surf_extract_chart", map[string]interface{}{
		"path":  createChartFile(t),
		"spot":  "Coxos",
		"month": "March",
	}, &result)
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}

	rec := result.Record
	if rec.Location != "Coxos" || rec.Month != "March" {
		t.Errorf("record identity: got %s/%s", rec.Location, rec.Month)
	}
	if rec.Clean != 62 || rec.BlownOut != 10 || rec.TooSmall != 5 {
		t.Errorf("header fields: got %v/%v/%v", rec.Clean, rec.BlownOut, rec.TooSmall)
	}
	if rec.Height0to4 != 40 || rec.Height10Plus != 2 {
		t.Errorf("height fields: got %+v", rec.Heights())
	}
	if result.FieldStatus["clean"] != "parsed" || result.FieldStatus["height_10_plus"] != "parsed" {
		t.Errorf("field status: got %v", result.FieldStatus)
	}
	if len(result.BarTexts) != 5 {
		t.Errorf("bar texts: got %d, want 5", len(result.BarTexts))
	}
	if result.Layout.Width != 200 || result.Layout.Height != 240 {
		t.Errorf("layout: got %dx%d, want 200x240", result.Layout.Width, result.Layout.Height)
	}
}

func TestHandleToolsCall_ExtractChart_URLCached(t *testing.T) {
	chart := chartBytes(t)
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write(chart)
	}))
	defer srv.Close()

	s := newTestServer(t, scriptedChart())
	args := map[string]interface{}{"url": srv.URL + "/Coxos.surf.consistency.may.gif", "month": "may"}

	for i := 0; i < 2; i++ {
		var result extractChartResult
		if resp := callTool(t, s, "surf_extract_chart", args, &result); resp.Error != nil {
			t.Fatalf("Unexpected error: %+v", resp.Error)
		}
		if result.Record.Month != "May" {
			t.Errorf("month: got %q, want May", result.Record.Month)
		}
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("chart fetched %d times, want 1", n)
	}
}

func TestHandleToolsCall_ExtractChart_Fallbacks(t *testing.T) {
	s := newTestServer(t, &ocrtest.Scripted{Header: "no numbers here", Bars: []string{"150%"}})

	var result extractChartResult
	if resp := callTool(t, s, "surf_extract_chart", map[string]interface{}{
		"path":  createChartFile(t),
		"month": "july",
	}, &result); resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}

	if result.Record.Clean != 0 || result.Record.Flat != 0 {
		t.Errorf("expected defaults, got %+v", result.Record)
	}
	if result.FieldStatus["clean"] != "missing" {
		t.Errorf("clean status: got %q, want missing", result.FieldStatus["clean"])
	}
	if result.FieldStatus["flat"] != "out_of_range" {
		t.Errorf("flat status: got %q, want out_of_range", result.FieldStatus["flat"])
	}
}

func TestHandleToolsCall_ExtractChart_Errors(t *testing.T) {
	s := newTestServer(t, scriptedChart())
	chart := createChartFile(t)

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"bad month", map[string]interface{}{"path": chart, "month": "smarch"}},
		{"no source", map[string]interface{}{"month": "may"}},
		{"missing file", map[string]interface{}{"path": "/nonexistent/chart.gif", "month": "may"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, s, "surf_extract_chart", tt.args, nil)
			if resp.Error == nil {
				t.Fatal("Expected error")
			}
			if resp.Error.Code != -32000 {
				t.Errorf("Error code: got %d, want -32000", resp.Error.Code)
			}
		})
	}
}

func TestHandleToolsCall_ExtractChart_NotAnImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.gif")
	if err := os.WriteFile(path, []byte("<html>not found</html>"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := newTestServer(t, scriptedChart())
	resp := callTool(t, s, "surf_extract_chart", map[string]interface{}{"path": path, "month": "may"}, nil)
	if resp.Error == nil {
		t.Fatal("Expected error for undecodable chart")
	}
}

func TestHandleToolsCall_ChartURL_AllMonths(t *testing.T) {
	s := newTestServer(t, scriptedChart())

	var result chartURLResult
	if resp := callTool(t, s, "surf_chart_url", map[string]interface{}{"spot": "Praia do Norte"}, &result); resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}

	if len(result.URLs) != 12 {
		t.Fatalf("URL count: got %d, want 12", len(result.URLs))
	}
	first := result.URLs[0]
	if first.Month != "January" {
		t.Errorf("first month: got %s", first.Month)
	}
	want := "https://charts.example/charts/Praia-do-Norte.surf.consistency.january.gif"
	if first.URL != want {
		t.Errorf("URL: got %s, want %s", first.URL, want)
	}
	if len(result.Alternates) != 2 {
		t.Errorf("alternates: got %v", result.Alternates)
	}
}

func TestHandleToolsCall_ChartURL_SingleMonthFromGIF(t *testing.T) {
	s := newTestServer(t, scriptedChart())

	var result chartURLResult
	if resp := callTool(t, s, "surf_chart_url", map[string]interface{}{
		"spot":    "Coxos",
		"month":   "AUGUST",
		"gif_url": "https://cdn.example/charts/Coxos.surf.consistency.january.gif",
	}, &result); resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}

	if len(result.URLs) != 1 {
		t.Fatalf("URL count: got %d, want 1", len(result.URLs))
	}
	want := "https://cdn.example/charts/Coxos.surf.consistency.august.gif"
	if result.URLs[0].URL != want {
		t.Errorf("URL: got %s, want %s", result.URLs[0].URL, want)
	}
}

func TestHandleToolsCall_ChartURL_Errors(t *testing.T) {
	s := newTestServer(t, scriptedChart())

	if resp := callTool(t, s, "surf_chart_url", map[string]interface{}{}, nil); resp.Error == nil {
		t.Error("Expected error without spot")
	}
	if resp := callTool(t, s, "surf_chart_url", map[string]interface{}{"spot": "Coxos", "month": "smarch"}, nil); resp.Error == nil {
		t.Error("Expected error for unknown month")
	}
}

func TestHandleToolsCall_ChartLayout(t *testing.T) {
	s := newTestServer(t, scriptedChart())
	chart := createChartFile(t)

	tests := []struct {
		region     string
		wantWidth  int
		wantHeight int
	}{
		{"", 200, 240},
		{"overlay", 200, 240},
		{"bar_3", 40, 0},
		{"header", 200, 0},
	}

	for _, tt := range tests {
		t.Run("region="+tt.region, func(t *testing.T) {
			var result chartLayoutResult
			args := map[string]interface{}{"path": chart}
			if tt.region != "" {
				args["region"] = tt.region
			}
			if resp := callTool(t, s, "surf_chart_layout", args, &result); resp.Error != nil {
				t.Fatalf("Unexpected error: %+v", resp.Error)
			}

			if result.Width != tt.wantWidth {
				t.Errorf("Width: got %d, want %d", result.Width, tt.wantWidth)
			}
			if tt.wantHeight != 0 && result.Height != tt.wantHeight {
				t.Errorf("Height: got %d, want %d", result.Height, tt.wantHeight)
			}
			if result.ImageBase64 == "" || result.MimeType != "image/png" {
				t.Errorf("expected PNG payload, got mime %q", result.MimeType)
			}
			if result.Chart == nil || result.Chart.Width != 50 {
				t.Errorf("chart info: got %+v", result.Chart)
			}
			if len(result.Layout.Bars) != 5 {
				t.Errorf("layout bars: got %d, want 5", len(result.Layout.Bars))
			}
		})
	}
}

func TestHandleToolsCall_ChartLayout_UnknownRegion(t *testing.T) {
	s := newTestServer(t, scriptedChart())

	resp := callTool(t, s, "surf_chart_layout", map[string]interface{}{"path": createChartFile(t), "region": "bar_6"}, nil)
	if resp.Error == nil {
		t.Fatal("Expected error for unknown region")
	}
	if !strings.Contains(resp.Error.Data.(string), "bar_6") {
		t.Errorf("error should name the region: %v", resp.Error.Data)
	}
}

func TestHandleToolsCall_ChartText(t *testing.T) {
	s := newTestServer(t, frameText("Clean 62%\nOM gm\n\nToo small 5%"))
	chart := createChartFile(t)

	var cleaned chartTextResult
	if resp := callTool(t, s, "surf_chart_text", map[string]interface{}{"path": chart}, &cleaned); resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}
	if cleaned.Frames != 1 || len(cleaned.Texts) != 1 {
		t.Fatalf("got %d frames and %d texts, want 1 and 1", cleaned.Frames, len(cleaned.Texts))
	}
	if cleaned.Texts[0] != "Clean 62%,Too small 5%" {
		t.Errorf("cleaned text: got %q", cleaned.Texts[0])
	}

	var raw chartTextResult
	if resp := callTool(t, s, "surf_chart_text", map[string]interface{}{"path": chart, "raw": true}, &raw); resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}
	if !strings.Contains(raw.Texts[0], "OM gm") {
		t.Errorf("raw text should keep noise lines: %q", raw.Texts[0])
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer(t, scriptedChart())

	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`not json`),
	})
	if resp == nil || resp.Error == nil {
		t.Fatal("Expected error for invalid params")
	}
	if resp.Error.Code != -32602 {
		t.Errorf("Error code: got %d, want -32602", resp.Error.Code)
	}
}

func TestExecuteTool_UnknownTool(t *testing.T) {
	s := newTestServer(t, scriptedChart())

	_, err := s.executeTool(context.Background(), "image_crop", json.RawMessage(`{}`))
	if err == nil {
		t.Error("Expected error for unknown tool")
	}
}

func TestExecuteTool_InvalidJSON(t *testing.T) {
	s := newTestServer(t, scriptedChart())

	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if _, err := s.executeTool(context.Background(), tool.Name, json.RawMessage(`{invalid`)); err == nil {
				t.Error("Expected error for invalid JSON")
			}
		})
	}
}
