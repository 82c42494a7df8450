package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Membrive92/TrackingFinance/internal/api"
	"github.com/Membrive92/TrackingFinance/internal/cache"
	"github.com/Membrive92/TrackingFinance/internal/database"
	"github.com/Membrive92/TrackingFinance/internal/messaging"
	"github.com/Membrive92/TrackingFinance/internal/services"
	"github.com/Membrive92/TrackingFinance/pkg/config"
	"github.com/sirupsen/logrus"
)

// App represents the main application
type App struct {
	cfg    *config.Config
	logger *logrus.Logger
	wg     sync.WaitGroup

	// Core components
	store     *database.Store
	cache     cache.Cache
	publisher messaging.Publisher

	// Services
	services  *services.Services
	apiServer *api.Server

	serveErr chan error
}

// New creates a new application instance
func New(cfg *config.Config, logger *logrus.Logger) *App {
	return &App{
		cfg:      cfg,
		logger:   logger,
		serveErr: make(chan error, 1),
	}
}

// Initialize initializes all application components. On failure every
// connection opened so far is closed again.
func (a *App) Initialize() error {
	if err := a.initializeDatabase(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := a.initializeCache(); err != nil {
		a.closeConnections()
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	if err := a.initializeMessaging(); err != nil {
		a.closeConnections()
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}

	a.services = services.New(services.Deps{
		Store:     a.store,
		Cache:     a.cache,
		Publisher: a.publisher,
		Logger:    a.logger,
	})

	checks := map[string]api.HealthChecker{
		"database": a.store,
		"cache":    a.cache,
	}
	if hc, ok := a.publisher.(api.HealthChecker); ok {
		checks["events"] = hc
	}
	a.apiServer = api.NewServer(a.cfg, a.logger, a.services, checks)

	return nil
}

// Start starts the API server in the background. Serving failures are
// reported on Err.
func (a *App) Start() error {
	if a.apiServer == nil {
		return fmt.Errorf("application is not initialized")
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.apiServer.Start(); err != nil {
			a.logger.WithError(err).Error("API server error")
			a.serveErr <- err
		}
	}()

	a.logger.WithFields(logrus.Fields{
		"address": a.cfg.GetServerAddr(),
		"driver":  a.cfg.Database.Driver,
		"cache":   a.cfg.Cache.Driver,
		"events":  a.cfg.NATS.Enabled,
	}).Info("Application started")
	return nil
}

// Err reports a fatal serving error.
func (a *App) Err() <-chan error {
	return a.serveErr
}

// Stop gracefully stops the application
func (a *App) Stop() error {
	a.logger.Info("Stopping application...")

	if a.apiServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.apiServer.Stop(ctx); err != nil {
			a.logger.WithError(err).Error("Error stopping API server")
		}
		cancel()
	}

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		a.logger.Warn("Timeout waiting for goroutines to finish")
	}

	if err := a.closeConnections(); err != nil {
		a.logger.WithError(err).Error("Error closing connections")
		return err
	}

	a.logger.Info("Application stopped successfully")
	return nil
}

// Services returns the CRUD services, available after Initialize.
func (a *App) Services() *services.Services {
	return a.services
}

// Handler returns the HTTP handler, available after Initialize.
func (a *App) Handler() http.Handler {
	return a.apiServer.Handler()
}

func (a *App) initializeDatabase() error {
	if a.cfg.Database.AutoMigrate {
		changed, err := database.NewMigrator(a.cfg, a.logger).Up()
		if err != nil {
			return err
		}
		a.logger.WithField("changed", changed).Info("Schema migrations applied")
	}

	store, err := database.Open(a.cfg, a.logger)
	if err != nil {
		return err
	}
	a.store = store
	return nil
}

func (a *App) initializeCache() error {
	c, err := cache.New(a.cfg, a.logger)
	if err != nil {
		return err
	}
	a.cache = c
	return nil
}

func (a *App) initializeMessaging() error {
	p, err := messaging.NewPublisher(&a.cfg.NATS, a.logger)
	if err != nil {
		return err
	}
	a.publisher = p
	return nil
}

// closeConnections releases every connection in reverse order of creation.
func (a *App) closeConnections() error {
	var firstErr error

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.WithError(err).Error("Error closing event publisher")
		}
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.WithError(err).Error("Error closing cache")
		}
	}

	if a.store != nil {
		if err := a.store.Close(); err != nil {
			firstErr = fmt.Errorf("failed to close database: %w", err)
		}
	}

	return firstErr
}
