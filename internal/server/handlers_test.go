package server

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestImageFile writes a solid PNG into a temp dir and returns its path
func createTestImageFile(t *testing.T, width, height int, c color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	f, err := os.CreateTemp(t.TempDir(), "handler-test-*.png")
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, png.Encode(f, img))
	return f.Name()
}

// callTool issues a tools/call and decodes the text content on success.
func callTool(t *testing.T, s *Server, name string, args any) (map[string]any, *MCPError) {
	t.Helper()

	params := map[string]any{"name": name}
	if args != nil {
		params["arguments"] = args
	}
	paramsJSON, err := json.Marshal(params)
	require.NoError(t, err)

	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	require.NotNil(t, resp)
	if resp.Error != nil {
		return nil, resp.Error
	}

	result := resp.Result.(map[string]any)
	content := result["content"].([]map[string]any)
	require.Len(t, content, 1)
	assert.Equal(t, "text", content[0]["type"])

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(content[0]["text"].(string)), &out))
	return out, nil
}

var (
	red   = color.RGBA{255, 0, 0, 255}
	green = color.RGBA{0, 255, 0, 255}
	blue  = color.RGBA{0, 0, 255, 255}
)

func threeImages(t *testing.T) []string {
	return []string{
		createTestImageFile(t, 30, 10, red),
		createTestImageFile(t, 10, 30, green),
		createTestImageFile(t, 25, 25, blue),
	}
}

func TestHandleToolsCall_SelectAndBuild(t *testing.T) {
	s := newTestServer(t)
	paths := threeImages(t)

	out, mcpErr := callTool(t, s, "collage_select", map[string]any{"paths": paths})
	require.Nil(t, mcpErr)
	assert.Equal(t, float64(3), out["selected"])
	assert.Len(t, out["names"], 3)

	out, mcpErr = callTool(t, s, "collage_build", nil)
	require.Nil(t, mcpErr)
	assert.Equal(t, float64(40), out["width"])
	assert.Equal(t, float64(40), out["height"])
	assert.Equal(t, float64(2), out["columns"])
	assert.Equal(t, float64(2), out["rows"])
	assert.Equal(t, float64(3), out["images"])
	assert.Equal(t, "image/jpeg", out["mime_type"])
	assert.NotEmpty(t, out["id"])

	dataURL, _ := out["data_url"].(string)
	assert.True(t, strings.HasPrefix(dataURL, "data:image/jpeg;base64,"))
}

func TestHandleToolsCall_BuildWithPathsAndLayout(t *testing.T) {
	s := newTestServer(t)

	out, mcpErr := callTool(t, s, "collage_build", map[string]any{
		"paths":            threeImages(t),
		"cell_size":        10,
		"columns":          3,
		"include_data_url": false,
	})
	require.Nil(t, mcpErr)
	assert.Equal(t, float64(30), out["width"])
	assert.Equal(t, float64(10), out["height"])
	assert.NotContains(t, out, "data_url")

	status, mcpErr := callTool(t, s, "collage_status", nil)
	require.Nil(t, mcpErr)
	assert.Equal(t, "ready", status["state"])
	assert.Equal(t, float64(3), status["selected"])
}

func TestHandleToolsCall_BuildNothingSelected(t *testing.T) {
	s := newTestServer(t)

	_, mcpErr := callTool(t, s, "collage_build", nil)
	require.NotNil(t, mcpErr)
	assert.Equal(t, -32000, mcpErr.Code)
	assert.Contains(t, mcpErr.Data, "no images selected")
}

func TestHandleToolsCall_BuildInvalidLayout(t *testing.T) {
	s := newTestServer(t)

	_, mcpErr := callTool(t, s, "collage_build", map[string]any{
		"paths":     threeImages(t),
		"cell_size": 0,
	})
	require.NotNil(t, mcpErr)
	assert.Contains(t, mcpErr.Data, "invalid collage layout")
}

func TestHandleToolsCall_BuildHugeCellSize(t *testing.T) {
	s := newTestServer(t)

	_, mcpErr := callTool(t, s, "collage_build", map[string]any{
		"paths":     threeImages(t),
		"cell_size": 1 << 62,
	})
	require.NotNil(t, mcpErr)
	assert.Equal(t, -32000, mcpErr.Code)
	assert.Contains(t, mcpErr.Data, "drawing surface unavailable")

	status, mcpErr := callTool(t, s, "collage_status", nil)
	require.Nil(t, mcpErr)
	assert.Equal(t, "idle", status["state"])
}

func TestHandleToolsCall_SelectEmpty(t *testing.T) {
	s := newTestServer(t)

	_, mcpErr := callTool(t, s, "collage_select", map[string]any{"paths": []string{}})
	require.NotNil(t, mcpErr)
	assert.Contains(t, mcpErr.Data, "no images selected")
}

func TestHandleToolsCall_SelectNonExistentFile(t *testing.T) {
	s := newTestServer(t)

	_, mcpErr := callTool(t, s, "collage_select", map[string]any{
		"paths": []string{filepath.Join(t.TempDir(), "missing.png")},
	})
	require.NotNil(t, mcpErr)
	assert.Equal(t, -32000, mcpErr.Code)
	assert.Contains(t, mcpErr.Data, "failed to read image")
}

func TestHandleToolsCall_SelectNotAnImage(t *testing.T) {
	s := newTestServer(t)
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o644))

	_, mcpErr := callTool(t, s, "collage_select", map[string]any{"paths": []string{path}})
	require.NotNil(t, mcpErr)
	assert.Contains(t, mcpErr.Data, "not an image")
}

func TestHandleToolsCall_ResultBeforeBuild(t *testing.T) {
	s := newTestServer(t)

	_, mcpErr := callTool(t, s, "collage_result", nil)
	require.NotNil(t, mcpErr)
	assert.Contains(t, mcpErr.Data, "no collage has been built")
}

func TestHandleToolsCall_ResultWithSample(t *testing.T) {
	s := newTestServer(t)
	_, mcpErr := callTool(t, s, "collage_build", map[string]any{"paths": threeImages(t)})
	require.Nil(t, mcpErr)

	tests := []struct {
		name string
		x, y int
		hex  string
	}{
		{"first cell", 5, 5, "#FF0000"},
		{"second cell", 25, 5, "#00FF00"},
		{"third cell", 5, 25, "#0000FF"},
		{"empty cell", 25, 25, "#000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, mcpErr := callTool(t, s, "collage_result", map[string]any{
				"sample": map[string]any{"x": tt.x, "y": tt.y},
			})
			require.Nil(t, mcpErr)
			assert.NotContains(t, out, "data_url")

			sample := out["sample"].(map[string]any)
			assert.Equal(t, tt.hex, sample["hex"])
		})
	}

	_, mcpErr = callTool(t, s, "collage_result", map[string]any{
		"sample": map[string]any{"x": 40, "y": 0},
	})
	require.NotNil(t, mcpErr)
	assert.Contains(t, mcpErr.Data, "outside image bounds")
}

func TestHandleToolsCall_ResultIncludeDataURL(t *testing.T) {
	s := newTestServer(t)
	built, mcpErr := callTool(t, s, "collage_build", map[string]any{"paths": threeImages(t)})
	require.Nil(t, mcpErr)

	out, mcpErr := callTool(t, s, "collage_result", map[string]any{"include_data_url": true})
	require.Nil(t, mcpErr)
	assert.Equal(t, built["id"], out["id"])
	assert.Equal(t, built["data_url"], out["data_url"])
}

func TestHandleToolsCall_Cast(t *testing.T) {
	s := newTestServer(t)

	out, mcpErr := callTool(t, s, "collage_cast", nil)
	require.Nil(t, mcpErr)
	assert.Equal(t, false, out["sent"])

	built, mcpErr := callTool(t, s, "collage_build", map[string]any{"paths": threeImages(t)})
	require.Nil(t, mcpErr)

	out, mcpErr = callTool(t, s, "collage_cast", nil)
	require.Nil(t, mcpErr)
	assert.Equal(t, true, out["sent"])
	assert.Equal(t, built["id"], out["id"])
}

func TestHandleToolsCall_Reset(t *testing.T) {
	s := newTestServer(t)
	_, mcpErr := callTool(t, s, "collage_build", map[string]any{"paths": threeImages(t)})
	require.Nil(t, mcpErr)

	out, mcpErr := callTool(t, s, "collage_reset", nil)
	require.Nil(t, mcpErr)
	assert.Equal(t, "idle", out["state"])
	assert.Equal(t, float64(0), out["selected"])
	assert.NotContains(t, out, "result")

	_, mcpErr = callTool(t, s, "collage_result", nil)
	require.NotNil(t, mcpErr)
}

func TestHandleToolsCall_ImageInfo(t *testing.T) {
	s := newTestServer(t)
	path := createTestImageFile(t, 100, 80, red)

	out, mcpErr := callTool(t, s, "image_info", map[string]any{"path": path})
	require.Nil(t, mcpErr)
	assert.Equal(t, float64(100), out["width"])
	assert.Equal(t, float64(80), out["height"])
	assert.Equal(t, "png", out["format"])
	assert.Equal(t, "image/png", out["mime_type"])
}

func TestHandleToolsCall_MissingArguments(t *testing.T) {
	s := newTestServer(t)

	_, mcpErr := callTool(t, s, "image_info", nil)
	require.NotNil(t, mcpErr)
	assert.Equal(t, -32000, mcpErr.Code)
}

func TestHandleToolsCall_InvalidTool(t *testing.T) {
	s := newTestServer(t)

	_, mcpErr := callTool(t, s, "image_crop", map[string]any{})
	require.NotNil(t, mcpErr)
	assert.Equal(t, -32000, mcpErr.Code)
	assert.Contains(t, mcpErr.Data, "unknown tool: image_crop")
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer(t)

	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`"not an object"`),
	})
	require.NotNil(t, resp)
	require.NotNil(t, resp.Error)
	assert.Equal(t, -32602, resp.Error.Code)
}

func TestExecuteTool_InvalidJSON(t *testing.T) {
	s := newTestServer(t)

	_, err := s.executeTool(context.Background(), "collage_build", json.RawMessage(`{invalid`))
	assert.Error(t, err)
}
