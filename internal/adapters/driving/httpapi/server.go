// Package httpapi exposes the ingest and answer pipelines over HTTP.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/grounder-ai/grounder/internal/core/ports/driving"
	"github.com/grounder-ai/grounder/internal/logger"
)

// Default server settings.
const (
	DefaultAddr           = ":8000"
	DefaultRequestTimeout = 120 * time.Second
)

// Config holds HTTP server settings.
type Config struct {
	// Addr is the listen address (default: :8000).
	Addr string

	// RequestTimeout bounds each request's processing time
	// (default: 120s).
	RequestTimeout time.Duration

	// MaxUploadBytes caps multipart upload memory and body size.
	MaxUploadBytes int64

	// Debug exposes detailed error messages in responses.
	Debug bool

	// ServiceName and ServiceVersion are reported by /health.
	ServiceName    string
	ServiceVersion string
}

// Server serves the upload, chat, and health endpoints.
type Server struct {
	ingestor driving.Ingestor
	answerer driving.Answerer
	cfg      Config
	srv      *http.Server
}

// NewServer creates the HTTP server. Start must be called to listen.
func NewServer(ingestor driving.Ingestor, answerer driving.Answerer, cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}

	s := &Server{
		ingestor: ingestor,
		answerer: answerer,
		cfg:      cfg,
	}
	s.srv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router builds the route table. Exposed for handler tests.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/upload", s.handleUpload).Methods(http.MethodPost)
	api.HandleFunc("/upload/{file_id}", s.handleDelete).Methods(http.MethodDelete)
	api.HandleFunc("/chat", s.handleChat).Methods(http.MethodPost)

	return r
}

// Start listens and serves until Shutdown or a fatal error.
func (s *Server) Start() error {
	logger.Info("http server listening on %s", s.cfg.Addr)
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
