// Package server exposes the dashboard over HTTP: an HTML page, a JSON API, a
// websocket pushing state changes and Prometheus metrics.
package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/etnz/portfolio-dashboard"
	"github.com/etnz/portfolio-dashboard/dashboard"
	"github.com/etnz/portfolio-dashboard/date"
	"github.com/etnz/portfolio-dashboard/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Dashboard is the state container served. *dashboard.Store implements it.
type Dashboard interface {
	Snapshot() dashboard.State
	Refresh(ctx context.Context) error
	Save(ctx context.Context, cfg portfolio.PortfolioConfig) error
	Subscribe() (<-chan dashboard.State, func())
}

// Config holds server configuration
type Config struct {
	Addr      string
	Dashboard Dashboard
	Purchase  date.Date
	Valuation date.Date
	Policy    portfolio.AllocationPolicy // planned allocation, EqualWeight when nil

	// RefreshTimeout bounds background refreshes, those not tied to a request.
	RefreshTimeout time.Duration

	// Registry receives the HTTP metrics and is served on /metrics.
	// A private registry is created when nil.
	Registry *prometheus.Registry
	Log      zerolog.Logger
}

// Server represents the HTTP server
type Server struct {
	router  *chi.Mux
	server  *http.Server
	log     zerolog.Logger
	dash    Dashboard
	cfg     Config
	reg     *prometheus.Registry
	metrics *httpMetrics

	// base is the parent context of background refreshes, canceled on Shutdown.
	base   context.Context
	cancel context.CancelFunc
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}
	if cfg.Policy == nil {
		cfg.Policy = portfolio.EqualWeight{}
	}
	if cfg.RefreshTimeout <= 0 {
		cfg.RefreshTimeout = 2 * time.Minute
	}

	base, cancel := context.WithCancel(context.Background())
	s := &Server{
		router:  chi.NewRouter(),
		log:     logger.Component(cfg.Log, "server"),
		dash:    cfg.Dashboard,
		cfg:     cfg,
		reg:     cfg.Registry,
		metrics: newHTTPMetrics(cfg.Registry),
		base:    base,
		cancel:  cancel,
	}

	s.setupMiddleware()
	s.setupRoutes()

	// No write timeout: websockets and synchronous refreshes outlive it.
	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the root handler, mostly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

// Start starts the HTTP server. It returns http.ErrServerClosed after Shutdown.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.cfg.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server and cancels background refreshes.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	s.cancel()
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs and counts HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			// hijacked or nothing written
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		s.metrics.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		s.metrics.duration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", elapsed).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}

type httpMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newHTTPMetrics(reg prometheus.Registerer) *httpMetrics {
	m := &httpMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portfolio_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portfolio_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}
