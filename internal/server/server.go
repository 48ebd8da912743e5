// Package server exposes the bill views as JSON over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gigurra/billview/internal"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Options struct {
	Config   *internal.Config
	Currency internal.Currency
	Logger   *slog.Logger

	// Today returns the current day. Defaults to the local date.
	Today func() time.Time

	CacheSize int
	CacheTTL  time.Duration
}

type Server struct {
	source   *cachedSource
	cfg      *internal.Config
	currency internal.Currency
	log      *slog.Logger
	today    func() time.Time
	metrics  *Metrics
}

func New(src BillSource, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Today == nil {
		opts.Today = func() time.Time { return internal.StartOfDay(time.Now()) }
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 16
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Minute
	}

	m := NewMetrics()
	return &Server{
		source:   newCachedSource(src, opts.CacheSize, opts.CacheTTL, m),
		cfg:      opts.Config,
		currency: opts.Currency,
		log:      opts.Logger,
		today:    opts.Today,
		metrics:  m,
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.Middleware)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/views", func(r chi.Router) {
		r.Get("/bills", s.handleBills)
		r.Get("/bills/{id}/portion", s.handlePortion)
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/calendar", s.handleCalendar)
	})
	return r
}

// requestLogger logs one line per request at a level matching the status.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}
		s.log.Log(r.Context(), level, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"query", r.URL.RawQuery,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.source.cleanEvery(ctx, time.Minute)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("view server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving on %s: %w", addr, err)
	case <-ctx.Done():
	}

	s.log.Info("shutting down view server")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
