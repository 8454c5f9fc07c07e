package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/collage-mcp/internal/collage"
	"github.com/ironsheep/collage-mcp/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "collage_build").
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
		s.log.Warn("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]any{
			"content": []map[string]any{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (any, error) {
	switch name {
	case "collage_select":
		return s.handleCollageSelect(args)
	case "collage_build":
		return s.handleCollageBuild(ctx, args)
	case "collage_result":
		return s.handleCollageResult(args)
	case "collage_cast":
		return s.handleCollageCast(ctx)
	case "collage_status":
		return s.asm.Status(), nil
	case "collage_reset":
		return s.handleCollageReset()
	case "image_info":
		return s.handleImageInfo(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id any, code int, message, data string) *MCPResponse {
	resp := &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
		},
	}
	if data != "" {
		resp.Error.Data = data
	}
	return resp
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals optional arguments; absent arguments leave v untouched.
func decodeArgs(args json.RawMessage, v any) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	return json.Unmarshal(args, v)
}

// === Selection ===

type collageSelectArgs struct {
	Paths []string `json:"paths"`
}

type selectResult struct {
	Selected int      `json:"selected"`
	Names    []string `json:"names"`
}

func (s *Server) handleCollageSelect(args json.RawMessage) (any, error) {
	var a collageSelectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	sources, err := imaging.LoadSources(a.Paths)
	if err != nil {
		return nil, err
	}
	if err := s.asm.Select(sources); err != nil {
		return nil, err
	}
	return newSelectResult(sources), nil
}

func newSelectResult(sources []imaging.Source) selectResult {
	names := make([]string, len(sources))
	for i, src := range sources {
		names[i] = src.Name()
	}
	return selectResult{Selected: len(sources), Names: names}
}

// === Assembly ===

type collageBuildArgs struct {
	Paths          []string `json:"paths"`
	CellSize       *int     `json:"cell_size"`
	Columns        *int     `json:"columns"`
	IncludeDataURL *bool    `json:"include_data_url"`
}

type collageOutput struct {
	collage.Info
	DataURL string `json:"data_url,omitempty"`
}

func (s *Server) handleCollageBuild(ctx context.Context, args json.RawMessage) (any, error) {
	var a collageBuildArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	if len(a.Paths) > 0 {
		sources, err := imaging.LoadSources(a.Paths)
		if err != nil {
			return nil, err
		}
		if err := s.asm.Select(sources); err != nil {
			return nil, err
		}
	}

	layout := s.asm.Layout()
	if a.CellSize != nil {
		layout.CellSize = *a.CellSize
	}
	if a.Columns != nil {
		layout.Columns = *a.Columns
	}

	res, err := s.asm.Build(ctx, s.asm.Selection(), layout)
	if err != nil {
		return nil, err
	}

	includeURL := a.IncludeDataURL == nil || *a.IncludeDataURL
	return newCollageOutput(res, includeURL), nil
}

func newCollageOutput(res *collage.Result, includeURL bool) collageOutput {
	out := collageOutput{Info: res.Info()}
	if includeURL {
		out.DataURL = res.DataURL()
	}
	return out
}

type samplePoint struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type collageResultArgs struct {
	IncludeDataURL bool         `json:"include_data_url"`
	Sample         *samplePoint `json:"sample"`
}

type collageResultOutput struct {
	collageOutput
	Sample *imaging.ColorResult `json:"sample,omitempty"`
}

func (s *Server) handleCollageResult(args json.RawMessage) (any, error) {
	var a collageResultArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	res := s.asm.Result()
	if res == nil {
		return nil, errors.New("no collage has been built")
	}

	out := collageResultOutput{collageOutput: newCollageOutput(res, a.IncludeDataURL)}
	if a.Sample != nil {
		snap := s.asm.Snapshot()
		if snap == nil {
			return nil, collage.ErrSurfaceUnavailable
		}
		c, err := imaging.SampleColor(snap, a.Sample.X, a.Sample.Y)
		if err != nil {
			return nil, err
		}
		out.Sample = c
	}
	return out, nil
}

// === Export ===

type castResult struct {
	Sent bool   `json:"sent"`
	ID   string `json:"id,omitempty"`
}

func (s *Server) handleCollageCast(ctx context.Context) (any, error) {
	res, err := s.asm.ExportForCast(ctx)
	if err != nil {
		return nil, err
	}
	out := castResult{Sent: res != nil}
	if res != nil {
		out.ID = res.ID
	}
	return out, nil
}

// === Lifecycle ===

func (s *Server) handleCollageReset() (any, error) {
	if err := s.asm.Reset(); err != nil {
		return nil, err
	}
	return s.asm.Status(), nil
}

// === Inspection ===

type imageInfoArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageInfo(args json.RawMessage) (any, error) {
	var a imageInfoArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.ReadInfo(a.Path)
}
