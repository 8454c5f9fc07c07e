package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

func pathsProperty(desc string) map[string]any {
	return map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string"},
		"description": desc,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Selection
		{
			Name:        "collage_select",
			Description: "Select the images for the next collage. Replaces any previous selection; the current collage is kept until the next build.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"paths": pathsProperty("Absolute paths to image files, in grid order"),
				},
				"required": []string{"paths"},
			},
		},

		// Assembly
		{
			Name:        "collage_build",
			Description: "Assemble the selected images into a grid collage. Each image is stretched to fill a square cell, placed left to right and top to bottom. Returns the collage metadata and its data URL.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"paths": pathsProperty("Optional paths; when given they replace the current selection before building"),
					"cell_size": map[string]any{
						"type":        "integer",
						"description": "Side of each square cell in pixels (default from config, 300)",
					},
					"columns": map[string]any{
						"type":        "integer",
						"description": "Cells per row (default from config, 2)",
					},
					"include_data_url": map[string]any{
						"type":        "boolean",
						"description": "Whether to return the encoded collage as a data URL",
						"default":     true,
					},
				},
			},
		},
		{
			Name:        "collage_result",
			Description: "Return the most recent collage. Optionally sample the pixel color at a coordinate of the collage.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"include_data_url": map[string]any{
						"type":        "boolean",
						"description": "Whether to return the encoded collage as a data URL",
						"default":     false,
					},
					"sample": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"x": map[string]any{"type": "integer"},
							"y": map[string]any{"type": "integer"},
						},
						"required":    []string{"x", "y"},
						"description": "Optional pixel to sample from the composed canvas",
					},
				},
			},
		},

		// Export
		{
			Name:        "collage_cast",
			Description: "Hand the current collage to the cast sink. Reports sent=false when no collage has been built.",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},

		// Lifecycle
		{
			Name:        "collage_status",
			Description: "Report the assembler state (idle, building, ready), the selection size and the current collage metadata.",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
		{
			Name:        "collage_reset",
			Description: "Clear the selection, the decoded image cache and the current collage.",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},

		// Inspection
		{
			Name:        "image_info",
			Description: "Get the dimensions, format and size of an image file without decoding its pixels.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path": map[string]any{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]any{
			"tools": GetToolDefinitions(),
		},
	}
}
