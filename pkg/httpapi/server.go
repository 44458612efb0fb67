// Package httpapi exposes the note store over a small JSON REST API.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/unowned-ai/dump/pkg/notes"
)

const (
	DefaultMaxBodyBytes = 16 * 1024
	shutdownTimeout     = 5 * time.Second
)

// Server serves the entries and streams endpoints for one store.
type Server struct {
	store        *notes.Store
	logger       *slog.Logger
	maxBodyBytes int64
}

// Option configures a Server.
type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMaxBodyBytes caps request bodies. Non-positive values keep the default.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

func New(store *notes.Store, opts ...Option) *Server {
	s := &Server{
		store:        store,
		logger:       slog.Default(),
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterHTTPHandlers mounts the API routes on mux.
func (s *Server) RegisterHTTPHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /entries", s.handleListEntries)
	mux.HandleFunc("POST /entries", s.handleCreateEntry)
	mux.HandleFunc("GET /entries/{id}", s.handleGetEntry)
	mux.HandleFunc("PUT /entries/{id}", s.handleUpdateEntry)
	mux.HandleFunc("DELETE /entries/{id}", s.handleDeleteEntry)
	mux.HandleFunc("GET /streams", s.handleListStreams)
	mux.HandleFunc("PUT /streams/{id}", s.handleUpdateStream)
	mux.HandleFunc("DELETE /streams/{id}", s.handleDeleteStream)
}

// Handler returns the routes wrapped in request-id, logging and CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterHTTPHandlers(mux)
	return s.withRequestID(s.withLogging(withCORS(mux)))
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("http server stopped")
	return nil
}
