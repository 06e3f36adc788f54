package server

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"cymap/internal/config"
	"cymap/internal/locations"
	"cymap/internal/logging"
	"cymap/internal/transcripts"
)

//go:embed page.html
var pageHTML []byte

// Server exposes the dispatch-log dashboard: an embedded HTML page, the
// enriched transcript API it fetches from, and static serving of the
// recordings so the page can play audio.
type Server struct {
	cfg         *config.Config
	transcripts *transcripts.Store
	reader      *locations.Reader
	logger      *slog.Logger

	listener net.Listener
	server   *http.Server
}

// New constructs the dashboard server.
func New(cfg *config.Config, ts *transcripts.Store, reader *locations.Reader, logger *slog.Logger) *Server {
	s := &Server{
		cfg:         cfg,
		transcripts: ts,
		reader:      reader,
		logger:      logging.NewComponentLogger(logger, "server"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/data", s.handleData)

	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Start binds the listener and serves until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Server.Bind)
	if err != nil {
		return fmt.Errorf("dashboard listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("dashboard server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("dashboard listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr returns the bound listen address, or empty before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down, allowing in-flight requests to finish.
func (s *Server) Stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// handleIndex serves the dashboard page at the root and falls through to
// static files (recordings) for every other path.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.URL.Path == "/" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(pageHTML)
		return
	}
	if strings.Contains(r.URL.Path, "..") {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	http.FileServer(http.Dir(s.cfg.Paths.BaseDir)).ServeHTTP(w, r)
}
