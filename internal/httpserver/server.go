// internal/httpserver/server.go
//
// HTTP server wiring for the sortlab backend.
// Responsibilities:
//   - Router + middleware (request IDs, logging, CORS, timeouts, panic recovery).
//   - Public endpoints: "/", "/health".
//   - Lesson catalog endpoints: mounted under /lessons, plus /drafts.
//   - Play session endpoints: mounted under /sessions (token-guarded).
//   - Background sweeping of idle sessions and graceful shutdown.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Each play session gets its own signed token at creation; all
//     /sessions/{id} routes require it.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/sortlab/apps/go-server/internal/config"
	"github.com/robalobadob/sortlab/apps/go-server/internal/game"
	"github.com/robalobadob/sortlab/apps/go-server/internal/lessons"
	"github.com/robalobadob/sortlab/apps/go-server/internal/store"
)

// Server bundles router, session store and lesson catalog.
type Server struct {
	r        *chi.Mux
	cfg      config.Config
	store    store.Store
	lessons  lessons.Catalog
	now      func() time.Time
	shuffler func() game.Shuffler
}

// Option tweaks a Server (mostly for tests).
type Option func(*Server)

// WithClock overrides the time source used for tokens and the daily pick.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithShuffler overrides the shuffler factory for new sessions and previews.
func WithShuffler(fn func() game.Shuffler) Option {
	return func(s *Server) { s.shuffler = fn }
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg config.Config, st store.Store, cat lessons.Catalog, opts ...Option) *Server {
	s := &Server{
		r:        chi.NewRouter(),
		cfg:      cfg,
		store:    st,
		lessons:  cat,
		now:      time.Now,
		shuffler: game.NewShuffler,
	}
	for _, o := range opts {
		o(s)
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(requestLogger)                   // zerolog access log
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.ClientOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]any{
			"service": "sortlab-go",
			"endpoints": []string{
				"/health", "/lessons", "/lessons/{id}", "/lessons/{id}/preview", "/lessons/daily",
				"POST /drafts", "POST /sessions", "/sessions/{id}/*",
			},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]any{"ok": true, "sessions": s.store.Len()})
	})

	s.mountLessons()
	s.mountSessions()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.r.ServeHTTP(w, r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// Start serves HTTP on addr until ctx is canceled, then shuts down gracefully.
// Idle sessions are swept once a minute while the server runs.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.sweepLoop(ctx, time.Minute)

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	return srv.Shutdown(shutdownCtx)
}

// sweepLoop drops idle sessions every interval until ctx ends.
func (s *Server) sweepLoop(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.store.Sweep(ctx, s.cfg.SessionIdle); n > 0 {
				log.Info().Int("dropped", n).Int("live", s.store.Len()).Msg("swept idle sessions")
			}
		}
	}
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// requestLogger writes one access-log line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("took", time.Since(start)).
				Str("reqId", chimw.GetReqID(r.Context())).
				Msg("http")
		}()
		next.ServeHTTP(ww, r)
	})
}
