// Package mcp exposes the generation engine as a Model Context Protocol server, so
// agents can request pyRevit scripts and vet their own.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/revitgen"
	"github.com/aretw0/revitgen/pkg/domain"
	"github.com/aretw0/revitgen/pkg/prompt"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"
	"golang.org/x/sync/errgroup"
)

// PromptURIPrefix prefixes the system prompt resources, one per variant.
const PromptURIPrefix = "revitgen://prompt/"

// Engine is what the MCP server needs from *revitgen.Engine.
type Engine interface {
	Generate(ctx context.Context, query string) (*domain.Script, error)
	Check(ctx context.Context, code string) (*domain.Report, error)
	SystemPromptFor(ctx context.Context, v prompt.Variant) (string, error)
}

// ScriptResponse is the structured result of both tools.
type ScriptResponse struct {
	Code        string              `json:"code" jsonschema_description:"The cleaned IronPython script"`
	Model       string              `json:"model,omitempty" jsonschema_description:"Model that produced the script"`
	Valid       bool                `json:"valid" jsonschema_description:"False when lint or the syntax check found errors"`
	Cached      bool                `json:"cached,omitempty" jsonschema_description:"True when served from the script cache"`
	Diagnostics []domain.Diagnostic `json:"diagnostics" jsonschema_description:"Lint and syntax findings"`
}

type generateArgs struct {
	Query string `mapstructure:"query"`
}

type checkArgs struct {
	Code string `mapstructure:"code"`
}

// Server wraps the Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("revitgen-mcp", strings.TrimSpace(revitgen.Version)),
		logger:    logger,
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over Server-Sent Events on port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())
	httpServer := &http.Server{Addr: addr, Handler: mux}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func (s *Server) registerTools() {
	generateTool := mcp.NewTool("generate_pyrevit_script",
		mcp.WithDescription("Generate an IronPython 2.7 pyRevit script for Autodesk Revit from a plain-language request."),
		mcp.WithString("query", mcp.Required(), mcp.Description("What the script should do, e.g. 'select all doors on level 2'")),
		mcp.WithOutputSchema[ScriptResponse](),
	)
	s.mcpServer.AddTool(generateTool, mcp.NewStructuredToolHandler(s.handleGenerate))

	checkTool := mcp.NewTool("check_script",
		mcp.WithDescription("Lint a pyRevit script and compile it with IronPython when available."),
		mcp.WithString("code", mcp.Required(), mcp.Description("The script, raw or in a markdown code fence")),
		mcp.WithOutputSchema[ScriptResponse](),
	)
	s.mcpServer.AddTool(checkTool, mcp.NewStructuredToolHandler(s.handleCheck))
}

func (s *Server) handleGenerate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ScriptResponse, error) {
	var in generateArgs
	if err := mapstructure.Decode(args, &in); err != nil {
		return ScriptResponse{}, fmt.Errorf("invalid arguments: %w", err)
	}

	script, err := s.engine.Generate(ctx, in.Query)
	if err != nil {
		s.logger.Warn("MCP generate failed", "error", err, "size", len(in.Query))
		return ScriptResponse{}, fmt.Errorf("generation failed: %w", err)
	}
	return ScriptResponse{
		Code:        script.Code(),
		Model:       script.Model,
		Valid:       script.Report.Valid(),
		Cached:      script.Cached,
		Diagnostics: nonNil(script.Report.Diagnostics),
	}, nil
}

func (s *Server) handleCheck(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ScriptResponse, error) {
	var in checkArgs
	if err := mapstructure.Decode(args, &in); err != nil {
		return ScriptResponse{}, fmt.Errorf("invalid arguments: %w", err)
	}

	report, err := s.engine.Check(ctx, in.Code)
	if err != nil {
		return ScriptResponse{}, fmt.Errorf("check failed: %w", err)
	}
	return ScriptResponse{
		Code:        report.Code,
		Valid:       report.Valid(),
		Diagnostics: nonNil(report.Diagnostics),
	}, nil
}

func (s *Server) registerResources() {
	for _, v := range prompt.Variants {
		uri := PromptURIPrefix + string(v)
		s.mcpServer.AddResource(mcp.NewResource(uri, fmt.Sprintf("System prompt (%s)", v),
			mcp.WithMIMEType("text/markdown"),
		), s.promptResource(v))
	}
}

func (s *Server) promptResource(v prompt.Variant) server.ResourceHandlerFunc {
	uri := PromptURIPrefix + string(v)
	return func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		text, err := s.engine.SystemPromptFor(ctx, v)
		if err != nil {
			return nil, fmt.Errorf("failed to compose prompt: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      uri,
				MIMEType: "text/markdown",
				Text:     text,
			},
		}, nil
	}
}

func nonNil(d []domain.Diagnostic) []domain.Diagnostic {
	if d == nil {
		return []domain.Diagnostic{}
	}
	return d
}
