// Package server exposes a [store.Store] over HTTP.
//
// It is the backend that `corkboard serve` runs and that api.Client talks to.
// The wire types live in pkg/api. Every route is rate limited per client
// address and logged.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/corkboard/pkg/store"
)

// Options configures a [Server].
type Options struct {
	// Rate and Burst limit requests per client address. Zero disables limiting.
	Rate  float64
	Burst int
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
	// Middleware runs after the built-in middleware, in order.
	Middleware []func(http.Handler) http.Handler
	// ShutdownTimeout bounds graceful shutdown in [Server.ListenAndServe].
	ShutdownTimeout time.Duration
	Logger          *log.Logger
}

// Server serves board items from a store.
type Server struct {
	store   store.Store
	opts    Options
	logger  *log.Logger
	limiter *RateLimiter
	router  chi.Router
}

// New builds the router for st.
func New(st store.Store, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	s := &Server{store: st, opts: opts, logger: logger}
	if opts.Rate > 0 {
		s.limiter = NewRateLimiter(opts.Rate, max(opts.Burst, 1), logger)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	if s.limiter != nil {
		r.Use(s.limiter.Handler)
	}
	for _, mw := range s.opts.Middleware {
		r.Use(mw)
	}

	r.Get("/healthz", s.handleHealth)
	if s.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.Metrics)
	}
	r.Route("/boards/{board}/items", func(r chi.Router) {
		r.Get("/", s.handleListItems)
		r.Put("/", s.handlePutItems)
		r.Put("/{id}/position", s.handleUpdatePosition)
		r.Delete("/{id}", s.handleDeleteItem)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errNoRoute)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
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

// Serve is [Server.ListenAndServe] on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if s.limiter != nil {
		stop := s.limiter.StartCleanup(time.Minute)
		defer stop()
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
