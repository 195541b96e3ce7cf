// Package web exposes the diagnosis engine as an HTTP tool server for the
// support agent: tools are listed with their argument schemas and invoked by
// name.
package web

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/vadiminshakov/swaptriage/internal/clients"
	"github.com/vadiminshakov/swaptriage/internal/entity"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"
)

const requestTimeout = 30 * time.Second

// Engine is the diagnosis entry point the server exposes.
type Engine interface {
	Diagnose(ctx context.Context, orderID string) (*entity.Diagnosis, error)
	AnalyzeTiming(ctx context.Context, orderID string) (*entity.TimingReport, error)
}

const orderArgsSchema = `{
	"type": "object",
	"properties": {
		"order_id": {"type": "string", "minLength": 1}
	},
	"required": ["order_id"],
	"additionalProperties": false
}`

type tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema"`

	schema *jsonschema.Schema
	call   func(ctx context.Context, orderID string) (any, error)
}

// Server serves the tool registry over HTTP.
type Server struct {
	Addr   string
	engine Engine
	logger *zap.Logger
	tools  []tool
}

// NewServer creates a tool server bound to addr.
func NewServer(addr string, engine Engine, logger *zap.Logger) *Server {
	s := &Server{Addr: addr, engine: engine, logger: logger}
	schema := jsonschema.MustCompileString("order_args.json", orderArgsSchema)

	s.tools = []tool{
		{
			Name:        "diagnose_order",
			Description: "Diagnose why a cross-chain swap order failed, stalled, or completed",
			InputSchema: json.RawMessage(orderArgsSchema),
			schema:      schema,
			call: func(ctx context.Context, orderID string) (any, error) {
				return engine.Diagnose(ctx, orderID)
			},
		},
		{
			Name:        "analyze_order_timing",
			Description: "Report an order's deadline vs initiate timing facts",
			InputSchema: json.RawMessage(orderArgsSchema),
			schema:      schema,
			call: func(ctx context.Context, orderID string) (any, error) {
				return engine.AnalyzeTiming(ctx, orderID)
			},
		},
	}

	return s
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	server := &http.Server{
		Addr:              s.Addr,
		Handler:           s.mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("tool server listening", zap.String("addr", s.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StartWithAutoTLS runs an HTTPS server with automatic TLS certificates via
// ACME, plus an HTTP server on port 80 for HTTP-01 challenges.
func (s *Server) StartWithAutoTLS(ctx context.Context, domains []string, cacheDir string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(domains) == 0 {
		return errors.New("no domains provided for automatic TLS")
	}

	manager := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(domains...),
		Cache:      autocert.DirCache(cacheDir),
	}

	challenge := &http.Server{
		Addr:              ":80",
		Handler:           manager.HTTPHandler(nil),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		_ = challenge.ListenAndServe()
	}()

	server := &http.Server{
		Addr:              ":443",
		Handler:           s.mux(),
		TLSConfig:         &tls.Config{GetCertificate: manager.GetCertificate},
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		_ = challenge.Shutdown(shutdownCtx)
	}()

	s.logger.Info("tool server listening with auto TLS", zap.Strings("domains", domains))
	if err := server.ListenAndServeTLS("", ""); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/tools", s.handleList)
	mux.HandleFunc("/tools/call", s.handleCall)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tools": s.tools})
}

type callRequest struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type orderArgs struct {
	OrderID string `json:"order_id"`
}

func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req callRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, ok := s.findTool(req.Name)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown tool "+req.Name)
		return
	}

	var payload any
	if err := json.Unmarshal(req.Arguments, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "arguments must be a JSON object")
		return
	}
	if err := t.schema.Validate(payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid arguments: "+err.Error())
		return
	}

	var args orderArgs
	if err := json.Unmarshal(req.Arguments, &args); err != nil {
		writeError(w, http.StatusBadRequest, "invalid arguments")
		return
	}

	requestID := uuid.NewString()
	logger := s.logger.With(
		zap.String("request_id", requestID),
		zap.String("tool", t.Name),
		zap.String("order_id", args.OrderID),
	)

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	started := time.Now()
	result, err := t.call(ctx, args.OrderID)
	if err != nil {
		if errors.Is(err, clients.ErrDataUnavailable) {
			logger.Warn("upstream data unavailable", zap.Error(err))
			writeError(w, http.StatusBadGateway, "upstream data unavailable")
			return
		}
		logger.Error("tool call failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "tool call failed")
		return
	}

	logger.Info("tool call served", zap.Duration("elapsed", time.Since(started)))
	writeJSON(w, http.StatusOK, map[string]any{"request_id": requestID, "result": result})
}

func (s *Server) findTool(name string) (tool, bool) {
	for _, t := range s.tools {
		if t.Name == name {
			return t, true
		}
	}
	return tool{}, false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
