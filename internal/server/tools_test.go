package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Name)
	}

	assert.ElementsMatch(t, []string{
		"collage_select",
		"collage_build",
		"collage_result",
		"collage_cast",
		"collage_status",
		"collage_reset",
		"image_info",
	}, names)
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			assert.NotEmpty(t, tool.Description)
			require.NotNil(t, tool.InputSchema)
			assert.Equal(t, "object", tool.InputSchema["type"])

			_, ok := tool.InputSchema["properties"].(map[string]any)
			assert.True(t, ok, "properties should be a map")
		})
	}
}

func TestToolDefinitions_Required(t *testing.T) {
	want := map[string][]string{
		"collage_select": {"paths"},
		"image_info":     {"path"},
	}

	for _, tool := range GetToolDefinitions() {
		required, _ := tool.InputSchema["required"].([]string)
		assert.Equal(t, want[tool.Name], required, tool.Name)
	}
}

func TestToolDefinitions_BuildOptions(t *testing.T) {
	var build Tool
	for _, tool := range GetToolDefinitions() {
		if tool.Name == "collage_build" {
			build = tool
		}
	}
	require.Equal(t, "collage_build", build.Name)

	props := build.InputSchema["properties"].(map[string]any)
	for _, key := range []string{"paths", "cell_size", "columns", "include_data_url"} {
		assert.Contains(t, props, key)
	}
}

func TestHandleToolsList(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/list"})

	require.NotNil(t, resp)
	require.Nil(t, resp.Error)

	result, ok := resp.Result.(map[string]any)
	require.True(t, ok)

	tools, ok := result["tools"].([]Tool)
	require.True(t, ok, "tools should be a slice of Tool")
	assert.Len(t, tools, len(GetToolDefinitions()))
}
