package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ironsheep/surf-chart-ocr/internal/extract"
	"github.com/ironsheep/surf-chart-ocr/internal/imaging"
	"github.com/ironsheep/surf-chart-ocr/internal/logger"
	"github.com/ironsheep/surf-chart-ocr/internal/ocr"
)

// Server handles MCP protocol communication
type Server struct {
	extractor  *extract.Extractor
	source     extract.Source
	recognizer ocr.Recognizer
	baseURL    string
	version    string
	cache      *imaging.ChartCache
	log        *logger.Logger
}

// Config wires a Server. Extractor, Source and Recognizer are required.
type Config struct {
	Extractor  *extract.Extractor
	Source     extract.Source
	Recognizer ocr.Recognizer

	// BaseURL is the default chart host for surf_chart_url.
	BaseURL string

	Version string
	Logger  *logger.Logger
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a new MCP server instance
func New(cfg Config) (*Server, error) {
	if cfg.Extractor == nil || cfg.Source == nil || cfg.Recognizer == nil {
		return nil, errors.New("server requires an extractor, a chart source and a recognizer")
	}
	s := &Server{
		extractor:  cfg.Extractor,
		source:     cfg.Source,
		recognizer: cfg.Recognizer,
		baseURL:    cfg.BaseURL,
		version:    cfg.Version,
		cache:      imaging.NewChartCache(),
		log:        cfg.Logger,
	}
	if s.version == "" {
		s.version = "dev"
	}
	if s.log == nil {
		s.log = logger.NewNop()
	}
	return s, nil
}

// Run reads one JSON-RPC request per line from in and writes responses to out
// until in is exhausted or ctx is cancelled.
func (s *Server) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(out)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.Warnw("failed to parse request", "error", err)
			continue
		}

		resp := s.handleRequest(ctx, &req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.log.Warnw("failed to encode response", "error", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "surf-chart-ocr",
				"version": s.version,
			},
		},
	}
}
