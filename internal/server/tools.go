package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func chartSourceProperties() map[string]interface{} {
	return map[string]interface{}{
		"url": map[string]interface{}{
			"type":        "string",
			"description": "Chart URL to download. Ignored when path is set",
		},
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to a chart image file",
		},
	}
}

func withProperties(base map[string]interface{}, extra map[string]interface{}) map[string]interface{} {
	for k, v := range extra {
		base[k] = v
	}
	return base
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name: "surf_extract_chart",
			Description: "Extract the surf record from one condition chart: clean, blown out and too small " +
				"percentages from the header, and the five wave-height bars (flat, 0-4ft, 4-6ft, 6-10ft, 10ft+). " +
				"Fields that could not be read are 0.0; field_status tells parsed values from fallbacks.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(chartSourceProperties(), map[string]interface{}{
					"spot": map[string]interface{}{
						"type":        "string",
						"description": "Spot name recorded as the record location",
					},
					"month": map[string]interface{}{
						"type":        "string",
						"description": "Month the chart describes, e.g. january",
					},
				}),
				"required": []string{"month"},
			},
		},
		{
			Name:        "surf_chart_url",
			Description: "Build consistency chart URLs for a spot, for one month or for all twelve.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"spot": map[string]interface{}{
						"type":        "string",
						"description": "Spot name, e.g. Praia do Norte",
					},
					"month": map[string]interface{}{
						"type":        "string",
						"description": "Optional month. Default: all months",
					},
					"base_url": map[string]interface{}{
						"type":        "string",
						"description": "Optional chart host prefix. Default: the configured base URL",
					},
					"gif_url": map[string]interface{}{
						"type":        "string",
						"description": "Optional known chart URL for the spot; other months are derived from it",
					},
				},
				"required": []string{"spot"},
			},
		},
		{
			Name: "surf_chart_layout",
			Description: "Show how a chart is cut into regions. Returns the layout coordinates on the 4x " +
				"enhanced chart and either an overlay with every region outlined or one region as base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(chartSourceProperties(), map[string]interface{}{
					"region": map[string]interface{}{
						"type":        "string",
						"description": "Region to return",
						"enum":        []string{"overlay", "header", "bar_band", "bar_1", "bar_2", "bar_3", "bar_4", "bar_5"},
						"default":     "overlay",
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor for region crops. Default 1.0",
						"default":     1.0,
					},
				}),
			},
		},
		{
			Name:        "surf_chart_text",
			Description: "Run unrestricted OCR over every frame of a chart GIF and return the text per frame.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(chartSourceProperties(), map[string]interface{}{
					"raw": map[string]interface{}{
						"type":        "boolean",
						"description": "Return text as recognized, without dropping noise lines. Default false",
						"default":     false,
					},
				}),
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
