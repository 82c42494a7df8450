package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	apiHandlers "github.com/Membrive92/TrackingFinance/internal/api/handlers"
	"github.com/Membrive92/TrackingFinance/internal/services"
	"github.com/Membrive92/TrackingFinance/pkg/config"
	"github.com/Membrive92/TrackingFinance/pkg/models"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// HealthChecker is a dependency probed by the readiness endpoint.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Server represents the HTTP API server
type Server struct {
	cfg        *config.Config
	logger     *logrus.Logger
	router     *mux.Router
	handler    http.Handler
	httpServer *http.Server
	limiter    *rate.Limiter

	checks map[string]HealthChecker

	assets         *apiHandlers.AssetHandler
	transactions   *apiHandlers.TransactionHandler
	retentions     *apiHandlers.RetentionHandler
	exchangeRates  *apiHandlers.ExchangeRateHandler
	configurations *apiHandlers.ConfigurationHandler
}

// NewServer creates a new API server. checks are reported by /v1/health/ready.
func NewServer(cfg *config.Config, logger *logrus.Logger, svc *services.Services, checks map[string]HealthChecker) *Server {
	s := &Server{
		cfg:    cfg,
		logger: logger,
		checks: checks,

		assets:         apiHandlers.NewAssetHandler(svc.Assets, logger),
		transactions:   apiHandlers.NewTransactionHandler(svc.Transactions, logger),
		retentions:     apiHandlers.NewRetentionHandler(svc.Retentions, logger),
		exchangeRates:  apiHandlers.NewExchangeRateHandler(svc.ExchangeRates, logger),
		configurations: apiHandlers.NewConfigurationHandler(svc.Configurations, logger),
	}

	if cfg.RateLimit.Enabled {
		every := cfg.RateLimit.Window / time.Duration(cfg.RateLimit.Requests)
		s.limiter = rate.NewLimiter(rate.Every(every), cfg.RateLimit.Requests)
	}

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      s.handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiHandlers.WriteJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "route not found"})
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiHandlers.WriteJSON(w, http.StatusMethodNotAllowed, models.ErrorResponse{Error: "method not allowed"})
	})

	apiV1 := s.router.PathPrefix("/v1").Subrouter()

	apiV1.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	apiV1.HandleFunc("/health/ready", s.handleReady).Methods(http.MethodGet)

	s.assets.RegisterRoutes(apiV1)
	s.transactions.RegisterRoutes(apiV1)
	s.retentions.RegisterRoutes(apiV1)
	s.exchangeRates.RegisterRoutes(apiV1)
	s.configurations.RegisterRoutes(apiV1)

	// router.Use only runs for matched routes, so 404 and 405 would skip it.
	var h http.Handler = s.router
	if s.limiter != nil {
		h = s.rateLimitMiddleware(h)
	}
	h = s.timeoutMiddleware(h)
	if s.cfg.CORS.Enabled {
		// Preflight requests are answered here and never reach route matching.
		h = handlers.CORS(
			handlers.AllowedOrigins(s.cfg.CORS.Origins),
			handlers.AllowedMethods(s.cfg.CORS.Methods),
			handlers.AllowedHeaders(s.cfg.CORS.Headers),
			handlers.AllowCredentials(),
		)(h)
	}
	h = s.recoveryMiddleware(h)
	h = s.loggingMiddleware(h)
	s.handler = s.requestIDMiddleware(h)
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.logger.WithField("address", s.httpServer.Addr).Info("Starting HTTP server")

	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		if strings.Contains(err.Error(), "address already in use") {
			return fmt.Errorf("port %d is already in use, set SERVER_PORT or pass --port to use another one", s.cfg.Server.Port)
		}
		return err
	}
	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// handleHealth is the liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	apiHandlers.WriteJSON(w, http.StatusOK, models.HealthStatus{Status: "ok"})
}

// handleReady probes every dependency and reports 503 when one is down.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	report := map[string]string{}

	for name, check := range s.checks {
		if err := check.Health(r.Context()); err != nil {
			s.logger.WithError(err).WithField("dependency", name).Warn("Readiness check failed")
			report[name] = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		report[name] = "ok"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	apiHandlers.WriteJSON(w, status, map[string]interface{}{
		"status":       overall,
		"dependencies": report,
	})
}
