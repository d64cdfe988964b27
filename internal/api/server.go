// Package api serves a book over HTTP.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cleared-dev/ledgr/internal/book"
)

// PersistFunc saves the book after a successful change.
type PersistFunc func(ctx context.Context, b *book.Book) error

// Server is the ledgr HTTP API. The book is not safe for concurrent use, so
// every handler holds mu for the whole request.
type Server struct {
	mu      sync.Mutex
	book    *book.Book
	persist PersistFunc
	logger  *slog.Logger
	metrics prometheus.Gatherer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option { return func(s *Server) { s.logger = l } }

// WithPersist saves the book after every change.
func WithPersist(p PersistFunc) Option { return func(s *Server) { s.persist = p } }

// WithMetrics exposes g on /metrics.
func WithMetrics(g prometheus.Gatherer) Option { return func(s *Server) { s.metrics = g } }

// NewServer creates a server for b.
func NewServer(b *book.Book, opts ...Option) *Server {
	s := &Server{book: b, logger: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(s.logRequests)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/journal", s.handleJournal)
		r.Get("/balance", s.handleBalance)
		r.Get("/categories", s.handleCategories)
		r.Post("/entries", s.handleAddEntry)
		r.Delete("/entries/{id}", s.handleRemoveEntry)
		r.Get("/history", s.handleHistory)
		r.Post("/undo", s.handleUndo)
		r.Post("/redo", s.handleRedo)
	})

	if s.metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.metrics, promhttp.HandlerOpts{}))
	}
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// changed persists the book after a mutation. If saving fails the mutation
// is reverted with revert, so memory keeps matching what is on disk.
// Callers hold s.mu.
func (s *Server) changed(ctx context.Context, revert func() (string, error)) error {
	if s.persist == nil {
		return nil
	}
	err := s.persist(ctx, s.book)
	if err == nil {
		return nil
	}
	if _, rerr := revert(); rerr != nil {
		s.logger.Error("reverting unsaved change", "error", rerr)
		return fmt.Errorf("%w (revert failed: %v)", err, rerr)
	}
	return fmt.Errorf("%w (change reverted)", err)
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": msg,
			"status":  status,
		},
	})
}
