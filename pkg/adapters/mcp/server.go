package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/netspec"
	"github.com/aretw0/netspec/pkg/codec"
	"github.com/aretw0/netspec/pkg/spec"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	modulesURI   = "netspec://modules"
	specTemplate = "netspec://specs/{name}"
	specPrefix   = "netspec://specs/"
)

// Server exposes a Catalog as an MCP server.
type Server struct {
	catalog   *netspec.Catalog
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(cat *netspec.Catalog, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		catalog: cat,
		logger:  logger,
		mcpServer: server.NewMCPServer("netspec-mcp", strings.TrimSpace(netspec.Version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on the given port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutdown signal received, stopping MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	textFormat := mcp.WithString("format",
		mcp.Description("Encoding of the document: yaml (default) or json"),
		mcp.Enum("yaml", "json"),
	)

	// TOOL: validate_spec
	s.mcpServer.AddTool(mcp.NewTool("validate_spec",
		mcp.WithDescription("Validate a record and list every rule it breaks. Unset fields read their defaults."),
		mcp.WithString("spec", mcp.Required(), mcp.Description("The record as a YAML or JSON document")),
		mcp.WithString("kind",
			mcp.Description("Record type of the document"),
			mcp.Enum(spec.TopLevel...),
		),
		textFormat,
	), s.handleValidate)

	// TOOL: list_specs
	s.mcpServer.AddTool(mcp.NewTool("list_specs",
		mcp.WithDescription("List the names of the stored MasterSpecs."),
	), s.handleList)

	// TOOL: get_spec
	s.mcpServer.AddTool(mcp.NewTool("get_spec",
		mcp.WithDescription("Fetch a stored MasterSpec."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Spec name")),
		textFormat,
	), s.handleGet)

	// TOOL: describe_spec
	s.mcpServer.AddTool(mcp.NewTool("describe_spec",
		mcp.WithDescription("Summarize a stored MasterSpec as markdown: components, features and validation result."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Spec name")),
	), s.handleDescribe)

	// TOOL: grid_point_defaults
	s.mcpServer.AddTool(mcp.NewTool("grid_point_defaults",
		mcp.WithDescription("Show a GridPoint with every hyperparameter default made explicit."),
		textFormat,
	), s.handleDefaults)

	// TOOL: spec_graph
	s.mcpServer.AddTool(mcp.NewTool("spec_graph",
		mcp.WithDescription("Draw the component pipeline as a Mermaid flowchart. Pass a stored spec name or an inline document."),
		mcp.WithString("name", mcp.Description("Stored spec name")),
		mcp.WithString("spec", mcp.Description("Inline MasterSpec document, used when name is empty")),
		textFormat,
	), s.handleGraph)
}

func toolFormat(request mcp.CallToolRequest) (codec.Format, error) {
	f, err := codec.ParseFormat(request.GetString("format", "yaml"))
	if err != nil {
		return "", err
	}
	if f == codec.Binary {
		return "", fmt.Errorf("%w: binary is not available over MCP", codec.ErrUnknownFormat)
	}
	return f, nil
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := request.RequireString("spec")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format, err := toolFormat(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	msg, err := spec.NewMessage(request.GetString("kind", "MasterSpec"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := codec.Unmarshal(format, []byte(doc), msg); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.catalog.Validate(msg))
}

func (s *Server) handleList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := s.catalog.List(ctx)
	if err != nil {
		s.logger.Error("MCP list_specs failed", "err", err)
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	if names == nil {
		names = []string{}
	}
	return jsonResult(map[string][]string{"specs": names})
}

func (s *Server) handleGet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format, err := toolFormat(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ms, err := s.catalog.Get(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return encodedResult(format, ms)
}

func (s *Server) handleDescribe(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	md, err := s.catalog.Describe(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(md), nil
}

func (s *Server) handleDefaults(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	format, err := toolFormat(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return encodedResult(format, spec.DefaultGridPoint())
}

func (s *Server) handleGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if name := request.GetString("name", ""); name != "" {
		chart, err := s.catalog.Graph(ctx, name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(chart), nil
	}

	doc := request.GetString("spec", "")
	if doc == "" {
		return mcp.NewToolResultError("either name or spec is required"), nil
	}
	format, err := toolFormat(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ms := &spec.MasterSpec{}
	if err := codec.Unmarshal(format, []byte(doc), ms); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(s.catalog.Render(ms)), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func encodedResult(format codec.Format, m spec.Message) (*mcp.CallToolResult, error) {
	data, err := codec.Marshal(format, m)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) registerResources() {
	// EXPOSE: netspec://modules
	s.mcpServer.AddResource(mcp.NewResource(modulesURI, "Registered Modules",
		mcp.WithResourceDescription("Transition systems, network units, backends and component builders with their parameter schemas"),
		mcp.WithMIMEType("application/json"),
	), s.readModules)

	// EXPOSE: netspec://specs/{name}
	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(specTemplate, "Stored Spec",
		mcp.WithTemplateDescription("A stored MasterSpec as YAML"),
		mcp.WithTemplateMIMEType("application/yaml"),
	), s.readSpec)
}

func (s *Server) readModules(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(s.catalog.Modules())
	if err != nil {
		return nil, fmt.Errorf("encode modules: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      modulesURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) readSpec(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI
	name, ok := strings.CutPrefix(uri, specPrefix)
	if !ok || name == "" {
		return nil, fmt.Errorf("unexpected resource uri %q", uri)
	}
	ms, err := s.catalog.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	data, err := codec.Marshal(codec.YAML, ms)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: codec.YAML.ContentType(),
			Text:     string(data),
		},
	}, nil
}
