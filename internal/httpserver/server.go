// Package httpserver exposes a running game over HTTP and WebSocket for an
// external renderer.
//
// Routes:
//   - GET  /health  liveness
//   - GET  /state   current render state
//   - POST /mark    {"x","y","z"[,"player"]}
//   - POST /rotate  {"axis","layer","turn"}
//   - POST /reset
//   - GET  /ws      render state pushed on every change and animation frame
//   - GET  /metrics Prometheus
//
// Rejected requests answer 409 with {"outcome": "..."}; out-of-range or
// malformed input answers 400.
package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/SeamusWaldron/cubetac/internal/metrics"
	"github.com/SeamusWaldron/cubetac/internal/session"
)

// Options configures optional parts of the server.
type Options struct {
	// AllowedOrigin restricts WebSocket upgrades to one Origin. Empty
	// allows any.
	AllowedOrigin string
	// Metrics, if set, is served at /metrics and counts WebSocket clients.
	Metrics *metrics.Metrics
}

// Server bundles the router and the session it drives.
type Server struct {
	r    *chi.Mux
	ctrl *session.Controller
	opts Options
}

// New constructs a Server, installs middleware and registers routes.
func New(ctrl *session.Controller, opts Options) *Server {
	s := &Server{r: chi.NewRouter(), ctrl: ctrl, opts: opts}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(requestLogger)
	s.r.Use(chimw.Recoverer)

	// Streaming and scraping routes sit outside the handler timeout.
	s.r.Get("/ws", s.handleWS)
	if opts.Metrics != nil {
		s.r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second))
		r.Use(jsonContentType)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		r.Get("/state", s.handleState)
		r.Post("/mark", s.handleMark)
		r.Post("/rotate", s.handleRotate)
		r.Post("/reset", s.handleReset)
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Router exposes the router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("http server listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info().Msg("http server stopped")
	return nil
}

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Str("request_id", chimw.GetReqID(r.Context())).
			Msg("http request")
	})
}
