// Package server exposes sessions over HTTP: validating equations, plotting
// them, exporting curves, and streaming parameter sweeps.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zephyrtronium/implicit"
	"github.com/zephyrtronium/implicit/internal/config"
	"github.com/zephyrtronium/implicit/internal/session"
	"github.com/zephyrtronium/implicit/plot"
)

// Server handles requests for many sessions.
type Server struct {
	cfg      *config.Config
	log      *zap.Logger
	sessions *store
	reg      *prometheus.Registry
	metrics  *metrics
}

// New creates a server. Each server has its own metrics registry.
func New(cfg *config.Config, log *zap.Logger) *Server {
	reg := prometheus.NewRegistry()
	return &Server{
		cfg:      cfg,
		log:      log,
		sessions: newStore(cfg.Server.MaxSessions),
		reg:      reg,
		metrics:  newMetrics(reg),
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok\n"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))
	r.Get("/examples", s.examples)

	r.Post("/sessions", s.createSession)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Use(s.withSession)
		r.Delete("/", s.deleteSession)
		r.Post("/validate", s.validate)
		r.Post("/reset", s.reset)
		r.Get("/plot", s.plot)
		r.Get("/export.csv", s.export)
		r.Get("/frames", s.frames)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

type sessionKey struct{}

func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusNotFound, "no such session")
			return
		}
		ss, ok := s.sessions.get(id)
		if !ok {
			writeError(w, http.StatusNotFound, "no such session")
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey{}, ss)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(r *http.Request) *session.Session {
	return r.Context().Value(sessionKey{}).(*session.Session)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusOf maps errors from the core to HTTP statuses.
func statusOf(err error) int {
	var (
		ie *implicit.InvalidError
		ee *plot.EvalError
	)
	switch {
	case errors.Is(err, implicit.ErrEmpty), errors.As(err, &ie), errors.Is(err, plot.ErrDomain):
		return http.StatusBadRequest
	case errors.As(err, &ee):
		return http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrNotValidated), errors.Is(err, session.ErrNothingToExport):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
