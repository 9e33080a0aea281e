// Package http serves the generation engine over a JSON API.
//
// /generate_code keeps the request and response shape the pyRevit pushbuttons were
// written against: input comes from a JSON body or the input query parameter, and the
// script is returned both as generated_code and code.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/revitgen"
	"github.com/aretw0/revitgen/pkg/domain"
	"github.com/aretw0/revitgen/pkg/observability"
	"github.com/aretw0/revitgen/pkg/prompt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"
)

// DefaultLogLimit applies when /logs is called without limit.
const DefaultLogLimit = 50

// maxBodySize bounds request bodies; the sanitizer enforces the real query limit.
const maxBodySize = 1 << 20

// Engine is what the HTTP server needs from *revitgen.Engine.
type Engine interface {
	Generate(ctx context.Context, query string) (*domain.Script, error)
	Check(ctx context.Context, code string) (*domain.Report, error)
	SystemPromptFor(ctx context.Context, v prompt.Variant) (string, error)
	Examples(ctx context.Context) ([]prompt.Example, error)
	Logs(ctx context.Context, limit int) ([]domain.LogEntry, error)
	Info() revitgen.Info
}

// GenerateRequest is the POST /generate_code body.
type GenerateRequest struct {
	Input string `json:"input"`
}

// GenerateResponse is the /generate_code success body.
type GenerateResponse struct {
	GeneratedCode string              `json:"generated_code"`
	Code          string              `json:"code"`
	Model         string              `json:"model,omitempty"`
	Valid         bool                `json:"valid"`
	Cached        bool                `json:"cached,omitempty"`
	Diagnostics   []domain.Diagnostic `json:"diagnostics"`
}

// CheckRequest is the POST /check body.
type CheckRequest struct {
	Code *string `json:"code"`
}

// CheckResponse is the POST /check body.
type CheckResponse struct {
	domain.Report
	Valid bool `json:"valid"`
}

// ErrorResponse is every non-2xx JSON body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// GetLogsParams are the /logs query parameters.
type GetLogsParams struct {
	Limit *int `form:"limit,omitempty" json:"limit,omitempty"`
}

// Server holds the HTTP handlers.
type Server struct {
	Engine  Engine
	Metrics *observability.Metrics
	Logger  *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithMetrics records request counts and serves /metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.Metrics = m
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	s := &Server{Engine: engine}
	for _, opt := range opts {
		opt(s)
	}
	if s.Logger == nil {
		s.Logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)
	r.Use(s.instrument)

	r.Get("/generate_code", s.GenerateCode)
	r.Post("/generate_code", s.GenerateCode)
	r.Post("/check", s.CheckCode)
	r.Get("/prompt", s.GetPrompt)
	r.Get("/examples", s.GetExamples)
	r.Get("/logs", s.GetLogs)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", s.GetSpec)
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})
	if s.Metrics != nil {
		r.Handle("/metrics", s.Metrics.Handler())
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// instrument logs each request and counts it by route pattern.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		if s.Metrics != nil && route != "/metrics" {
			s.Metrics.ObserveRequest(route, status)
		}
		s.Logger.Debug("HTTP request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>revitgen API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GenerateCode handles GET and POST /generate_code.
func (s *Server) GenerateCode(w http.ResponseWriter, r *http.Request) {
	input := inputFromRequest(r)
	if strings.TrimSpace(input) == "" {
		writeError(w, http.StatusBadRequest, "No input provided")
		return
	}

	script, err := s.Engine.Generate(r.Context(), input)
	if err != nil {
		status, msg := classify(err)
		if status == http.StatusInternalServerError {
			s.Logger.Error("Generate failed", "error", err)
		} else {
			s.Logger.Warn("Generate: Input rejected", "error", err, "size", len(input))
		}
		writeError(w, status, msg)
		return
	}

	diags := script.Report.Diagnostics
	if diags == nil {
		diags = []domain.Diagnostic{}
	}
	writeJSON(w, http.StatusOK, GenerateResponse{
		GeneratedCode: script.Code(),
		Code:          script.Code(),
		Model:         script.Model,
		Valid:         script.Report.Valid(),
		Cached:        script.Cached,
		Diagnostics:   diags,
	}, s.Logger)
}

// inputFromRequest reads {"input"} from a JSON body and falls back to ?input=.
// A body that is not JSON is ignored.
func inputFromRequest(r *http.Request) string {
	if r.Body != nil && r.Body != http.NoBody {
		var body GenerateRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&body); err == nil && body.Input != "" {
			return body.Input
		}
	}
	return r.URL.Query().Get("input")
}

// classify maps engine errors to a status and a client-facing message.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrEmptyQuery):
		return http.StatusBadRequest, "No input provided"
	case errors.Is(err, domain.ErrInputTooLarge), errors.Is(err, domain.ErrInvalidUTF8):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrPromptNotFound), errors.Is(err, domain.ErrFencedPrompt):
		return http.StatusInternalServerError, "System prompt file not found"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, err.Error()
	}
	// Generation errors carry the upstream message, which is what clients show.
	return http.StatusInternalServerError, strings.TrimPrefix(err.Error(), domain.ErrGeneration.Error()+": ")
}

// CheckCode handles POST /check.
func (s *Server) CheckCode(w http.ResponseWriter, r *http.Request) {
	var body CheckRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&body); err != nil || body.Code == nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: expected {\"code\": \"...\"}")
		return
	}

	report, err := s.Engine.Check(r.Context(), *body.Code)
	if err != nil {
		s.Logger.Error("Check failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if report.Diagnostics == nil {
		report.Diagnostics = []domain.Diagnostic{}
	}
	writeJSON(w, http.StatusOK, CheckResponse{Report: *report, Valid: report.Valid()}, s.Logger)
}

// GetPrompt handles GET /prompt.
func (s *Server) GetPrompt(w http.ResponseWriter, r *http.Request) {
	variant, err := prompt.ParseVariant(r.URL.Query().Get("variant"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	text, err := s.Engine.SystemPromptFor(r.Context(), variant)
	if err != nil {
		s.Logger.Error("Prompt composition failed", "error", err)
		writeError(w, http.StatusInternalServerError, "System prompt file not found")
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	_, _ = io.WriteString(w, text)
}

// GetExamples handles GET /examples.
func (s *Server) GetExamples(w http.ResponseWriter, r *http.Request) {
	examples, err := s.Engine.Examples(r.Context())
	if err != nil {
		s.Logger.Error("Examples failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, examples, s.Logger)
}

// GetLogs handles GET /logs.
func (s *Server) GetLogs(w http.ResponseWriter, r *http.Request) {
	var params GetLogsParams
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &params.Limit); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid format for parameter limit: "+err.Error())
		return
	}
	limit := DefaultLogLimit
	if params.Limit != nil {
		if *params.Limit < 0 {
			writeError(w, http.StatusBadRequest, "limit must not be negative")
			return
		}
		limit = *params.Limit
	}

	entries, err := s.Engine.Logs(r.Context(), limit)
	if err != nil {
		s.Logger.Error("Logs failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entries, s.Logger)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, s.Logger)
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := GetSwagger(); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	}
	info := s.Engine.Info()
	writeJSON(w, http.StatusOK, map[string]any{
		"app":          "revitgen-http",
		"version":      strings.TrimSpace(info.Version),
		"api_version":  apiVersion,
		"provider":     info.Provider,
		"model":        info.Model,
		"variant":      info.Variant,
		"syntax_check": info.Checker,
		"cache":        info.Cache,
	}, s.Logger)
}

// GetSpec serves the embedded OpenAPI document.
func (s *Server) GetSpec(w http.ResponseWriter, r *http.Request) {
	if _, err := GetSwagger(); err != nil {
		s.Logger.Error("Failed to load OpenAPI spec", "error", err)
		http.Error(w, "Failed to load spec", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/yaml")
	_, _ = w.Write(rawSpec)
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: msg})
}
