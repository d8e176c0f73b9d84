package httpserver

import (
	"context"
	"net/http"
	"strings"

	"supermarket/backend/internal/config"
	"supermarket/backend/internal/telemetry"
	productusecase "supermarket/backend/internal/usecase/product"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server wraps the HTTP server lifecycle.
type Server struct {
	httpServer     *http.Server
	router         chi.Router
	productService *productusecase.Service
	metrics        *telemetry.Metrics
	addr           string
}

// NewServer constructs a new Server with configured dependencies. metrics
// may be nil, in which case /metrics is not mounted.
func NewServer(cfg config.Config, productService *productusecase.Service, metrics *telemetry.Metrics) *Server {
	addr := cfg.HTTPPort
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(withLogging)
	router.Use(middleware.Recoverer)
	router.Use(metrics.Middleware)
	router.Use(withCORS(cfg.AllowedOrigins))

	srv := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		router:         router,
		productService: productService,
		metrics:        metrics,
		addr:           addr,
	}
	srv.registerRoutes()
	return srv
}

// Start bootstraps the HTTP server on the configured address.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the configured network address for the HTTP server.
func (s *Server) Addr() string {
	return s.addr
}
