package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"capturedesk/internal/analysis"
	"capturedesk/internal/api"
	"capturedesk/internal/config"
	"capturedesk/internal/logging"
)

const (
	shutdownTimeout = 5 * time.Second
	// writeSlack keeps the response window open past the analysis deadline so
	// a timeout can still be reported as 504.
	writeSlack = 10 * time.Second
)

// Analyzer produces a normalized review for one capture.
type Analyzer interface {
	Analyze(ctx context.Context, sub analysis.Submission) (analysis.Result, error)
}

// Server exposes the analyze and health routes over HTTP.
type Server struct {
	bind      string
	token     string
	version   string
	maxUpload int64
	analyzer  Analyzer
	logger    *slog.Logger

	listener net.Listener
	server   *http.Server
}

// New builds a server for cfg. version is reported by the health route.
func New(cfg *config.Config, analyzer Analyzer, logger *slog.Logger, version string) *Server {
	srv := &Server{
		bind:      strings.TrimSpace(cfg.Server.Bind),
		token:     strings.TrimSpace(cfg.Server.APIToken),
		version:   version,
		maxUpload: cfg.MaxUploadBytes(),
		analyzer:  analyzer,
		logger:    logging.NewComponentLogger(logger, "api-server"),
	}
	srv.server = &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      cfg.AnalysisTimeout() + writeSlack,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

// Handler returns the routed, authenticated handler chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(api.AnalyzePath, s.handleAnalyze)
	mux.HandleFunc(api.HealthPath, s.handleHealth)
	return requestIDMiddleware(authMiddleware(s.token, mux))
}

// WriteTimeout reports the server's response write deadline.
func (s *Server) WriteTimeout() time.Duration {
	return s.server.WriteTimeout
}

// Start listens on the configured address and serves until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr returns the bound listener address, or the configured bind before Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.bind
}

// Stop shuts the server down, waiting briefly for in-flight requests.
func (s *Server) Stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}
	s.writeJSON(w, r, http.StatusOK, api.HealthResponse{OK: true, Version: s.version})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log(r).Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, code string, details []string) {
	s.writeJSON(w, r, status, api.ErrorResponse{OK: false, Error: code, Details: details})
}

func (s *Server) log(r *http.Request) *slog.Logger {
	return logging.WithContext(r.Context(), s.logger)
}
