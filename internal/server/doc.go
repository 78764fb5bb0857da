// Package server implements the MCP (Model Context Protocol) server for surf
// chart inspection.
//
// The server exposes single-chart extraction and the debugging views behind
// it, so an MCP client can look at what the batch extractor sees for one
// spot and month.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - surf_extract_chart: Extract one SurfRecord, with per-field parse status
//   - surf_chart_url: Build chart URLs for a spot
//   - surf_chart_layout: Outline or crop the header and bar regions
//   - surf_chart_text: Unrestricted OCR of every GIF frame
//
// Chart tools take either a url or a local path.
//
// # Chart Caching
//
// Chart bytes are cached by URL or path for the lifetime of the server, so
// repeated tool calls on one chart download it once.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
// The server is started by the serve subcommand:
//
//	srv, err := server.New(server.Config{Extractor: x, Source: src, Recognizer: engine})
//	if err != nil {
//	    return err
//	}
//	return srv.Run(ctx, os.Stdin, os.Stdout)
package server
