package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/netspec"
	"github.com/aretw0/netspec/internal/logging"
	"github.com/aretw0/netspec/internal/testutils"
	"github.com/aretw0/netspec/pkg/adapters/memory"
	"github.com/aretw0/netspec/pkg/codec"
	"github.com/aretw0/netspec/pkg/spec"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := memory.NewStore(map[string]*spec.MasterSpec{"en": testutils.TaggerParserSpec()})
	cat, err := netspec.New("", netspec.WithStore(store))
	require.NoError(t, err)
	return NewServer(cat, logging.NewNop())
}

// newCallToolRequest builds a tool call request with arguments.
func newCallToolRequest(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func TestToolsAreListed(t *testing.T) {
	s := newTestServer(t)

	resp := s.mcpServer.HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))

	var names []string
	for _, tool := range decoded.Result.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"validate_spec", "list_specs", "get_spec", "describe_spec", "grid_point_defaults", "spec_graph",
	}, names)
}

func TestValidateSpec(t *testing.T) {
	s := newTestServer(t)
	valid, err := codec.Marshal(codec.YAML, testutils.TaggerParserSpec())
	require.NoError(t, err)

	tests := []struct {
		name    string
		args    map[string]any
		isError bool
		want    netspec.Report
	}{
		{
			name: "Valid YAML",
			args: map[string]any{"spec": string(valid)},
			want: netspec.Report{Kind: "MasterSpec", Valid: true},
		},
		{
			name: "Invalid GridPoint As JSON",
			args: map[string]any{"spec": `{"dropout_rate": 0}`, "kind": "GridPoint", "format": "json"},
			want: netspec.Report{Kind: "GridPoint", Valid: false},
		},
		{
			name:    "Missing Spec",
			args:    map[string]any{},
			isError: true,
		},
		{
			name:    "Unknown Field",
			args:    map[string]any{"spec": "components: []"},
			isError: true,
		},
		{
			name:    "Binary Refused",
			args:    map[string]any{"spec": "{}", "format": "binpb"},
			isError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.handleValidate(context.Background(), newCallToolRequest("validate_spec", tt.args))
			require.NoError(t, err)
			require.Equal(t, tt.isError, result.IsError, resultText(t, result))
			if tt.isError {
				return
			}
			var report netspec.Report
			require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &report))
			assert.Equal(t, tt.want.Kind, report.Kind)
			assert.Equal(t, tt.want.Valid, report.Valid)
			assert.Equal(t, tt.want.Valid, len(report.Issues) == 0)
		})
	}
}

func TestListAndGetSpec(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	result, err := s.handleList(ctx, newCallToolRequest("list_specs", nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"specs":["en"]}`, resultText(t, result))

	result, err = s.handleGet(ctx, newCallToolRequest("get_spec", map[string]any{"name": "en", "format": "json"}))
	require.NoError(t, err)
	got := &spec.MasterSpec{}
	require.NoError(t, codec.Unmarshal(codec.JSON, []byte(resultText(t, result)), got))
	assert.Equal(t, testutils.TaggerParserSpec(), got)

	result, err = s.handleGet(ctx, newCallToolRequest("get_spec", map[string]any{"name": "fr"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestDescribeSpec(t *testing.T) {
	s := newTestServer(t)
	result, err := s.handleDescribe(context.Background(), newCallToolRequest("describe_spec", map[string]any{"name": "en"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "# en")
}

func TestGridPointDefaults(t *testing.T) {
	s := newTestServer(t)
	result, err := s.handleDefaults(context.Background(), newCallToolRequest("grid_point_defaults", nil))
	require.NoError(t, err)

	got := &spec.GridPoint{}
	require.NoError(t, codec.Unmarshal(codec.YAML, []byte(resultText(t, result)), got))
	assert.Equal(t, spec.DefaultGridPoint(), got)
}

func TestSpecGraph(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	result, err := s.handleGraph(ctx, newCallToolRequest("spec_graph", map[string]any{"name": "en"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), `c_tagger -- "tagger" --> c_parser`)

	inline := `{"component": [{"name": "a", "linked_feature": [{"name": "loop", "source_component": "b"}]}, {"name": "b"}]}`
	result, err = s.handleGraph(ctx, newCallToolRequest("spec_graph", map[string]any{"spec": inline, "format": "json"}))
	require.NoError(t, err)
	chart := resultText(t, result)
	assert.Contains(t, chart, `c_b -. "loop (forward)" .-> c_a`)
	assert.Contains(t, chart, "class c_a invalid;")

	result, err = s.handleGraph(ctx, newCallToolRequest("spec_graph", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestResources(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	contents, err := s.readModules(ctx, mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)
	text := contents[0].(mcp.TextResourceContents)
	assert.Equal(t, modulesURI, text.URI)
	assert.Contains(t, text.Text, "FeedForwardNetwork")

	var req mcp.ReadResourceRequest
	req.Params.URI = "netspec://specs/en"
	contents, err = s.readSpec(ctx, req)
	require.NoError(t, err)
	text = contents[0].(mcp.TextResourceContents)
	assert.Equal(t, "application/yaml", text.MIMEType)
	assert.Contains(t, text.Text, "name: tagger")

	req.Params.URI = "netspec://specs/"
	_, err = s.readSpec(ctx, req)
	assert.Error(t, err)
}
