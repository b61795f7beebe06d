// Package server is the REST facade over the OCR job service. Every handler
// is a thin translation between HTTP and ocr.Service; no business logic
// lives here, so the MCP facade stays behaviorally identical.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/webboty/llm-aided-ocr/errors"
	"github.com/webboty/llm-aided-ocr/ocr"
)

// maxUploadBytes caps multipart upload size
const maxUploadBytes = 50 << 20

// Options configures the HTTP server
type Options struct {
	Host        string
	Port        int
	SecretToken string // empty disables authentication
}

// Server serves the OCR job API over HTTP
type Server struct {
	svc        *ocr.Service
	opts       Options
	logger     *zap.SugaredLogger
	httpServer *http.Server
}

// NewServer creates the REST facade for svc
func NewServer(svc *ocr.Service, opts Options, logger *zap.SugaredLogger) *Server {
	s := &Server{
		svc:    svc,
		opts:   opts,
		logger: logger,
	}

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// routes configures all HTTP handlers
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.wrap(s.handleRoot))
	mux.HandleFunc("/health", s.wrap(s.handleHealth))
	mux.HandleFunc("/process", s.wrap(s.handleProcess))
	mux.HandleFunc("/upload", s.wrap(s.handleUpload))
	mux.HandleFunc("/job/", s.wrap(s.handleJob))
	mux.HandleFunc("/jobs", s.wrap(s.handleJobs))
	mux.HandleFunc("/download/", s.wrap(s.handleDownload))

	return mux
}

// wrap applies the shared middleware chain: CORS first so preflight never
// hits the auth check, then bearer auth.
func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return s.corsMiddleware(s.authMiddleware(next))
}

// Start listens until ctx is cancelled, then drains connections
func (s *Server) Start(ctx context.Context) error {
	if s.opts.SecretToken == "" {
		s.logger.Warnw("API_SECRET_TOKEN not set, running without authentication")
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("HTTP server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "http server failed")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.logger.Infow("Shutting down HTTP server")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "http server shutdown failed")
	}
	return nil
}
