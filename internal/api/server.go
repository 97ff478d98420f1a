// Package api exposes the payroll simulation engine over HTTP.
//
// Routes:
//
//	POST /simulation/preview   simulate one employee-month
//	POST /simulation/batch     simulate many employees in parallel
//	GET  /rates/resolve        show the RateSet applying to a company and date
//	GET  /healthz              liveness probe
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/rgehrsitz/paygo/internal/calculation"
	"github.com/rgehrsitz/paygo/internal/rates"
)

// Options tune the HTTP layer
type Options struct {
	CORSOrigins    []string
	RequestTimeout time.Duration
	MaxBatchSize   int // zero means unlimited
}

// Server is the HTTP API server.
type Server struct {
	router   chi.Router
	engine   *calculation.Engine
	resolver rates.Resolver
	log      logrus.FieldLogger
	opts     Options
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(engine *calculation.Engine, resolver rates.Resolver, log logrus.FieldLogger, opts Options) *Server {
	if log == nil {
		l := logrus.New()
		l.Out = io.Discard
		log = l
	}
	s := &Server{
		engine:   engine,
		resolver: resolver,
		log:      log,
		opts:     opts,
	}
	s.router = s.buildRouter()
	return s
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)
	if s.opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.opts.RequestTimeout))
	}

	origins := []string{"*"}
	if len(s.opts.CORSOrigins) > 0 {
		origins = s.opts.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.handleHealth)

	r.Route("/simulation", func(r chi.Router) {
		r.Post("/preview", s.handlePreview)
		r.Post("/batch", s.handleBatch)
	})
	r.Get("/rates/resolve", s.handleResolveRates)

	return r
}
