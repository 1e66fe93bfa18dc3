// Package app assembles the triage services from configuration.
package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/medemi-triage-server/internal/api"
	"github.com/medemi-triage-server/internal/database"
	"github.com/medemi-triage-server/internal/directory"
	"github.com/medemi-triage-server/internal/domain"
	"github.com/medemi-triage-server/internal/report"
	"github.com/medemi-triage-server/internal/repository"
	"github.com/medemi-triage-server/internal/service"
	"github.com/medemi-triage-server/internal/sessionstore"
	"github.com/medemi-triage-server/pkg/external"
)

// App holds every long-lived component of a running process.
type App struct {
	Config    *domain.Config
	Logger    *logrus.Logger
	DB        *database.DB
	Cache     *external.CacheClient
	Extractor *external.LLMExtractor
	Sessions  domain.SessionStore
	Directory *directory.Directory
	Triage    *service.TriageService
	Bookings  *service.BookingService
	Reports   *report.Generator
}

// Build connects the optional backends and wires the services. PostgreSQL is
// used when database.host is set, Redis when cache.redis_url is set; without
// them bookings and extraction caching stay in memory.
func Build(ctx context.Context, cm domain.ConfigManager, logger *logrus.Logger) (app *App, err error) {
	cfg := cm.GetConfig()
	app = &App{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			app.Close()
			app = nil
		}
	}()

	var bookings domain.BookingRepository = repository.NewMemoryBookingRepository()
	if cfg.Database.Enabled() {
		if err := database.Migrate(ctx, cm.GetDatabaseURL(), cfg.Database.MigrationsPath, logger); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		app.DB, err = database.NewConnection(ctx, database.ConfigFrom(cfg.Database), logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		bookings = repository.NewBookingRepository(app.DB.Pool, logger)
	} else {
		logger.Info("No database configured, bookings are kept in memory")
	}

	if redisURL := cm.GetRedisConnectionString(); redisURL != "" && cfg.Extractor.CacheEnabled {
		app.Cache, err = external.NewCacheClient(cfg.Cache)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to cache: %w", err)
		}
	}

	app.Extractor, err = external.NewLLMExtractor(
		external.NewOpenAIClient(cfg.Extractor),
		cfg.Extractor,
		external.ExtractorOptions{Cache: app.Cache, MemoryItems: cfg.Cache.MemoryItems},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create extractor: %w", err)
	}

	var databaseURL string
	if cfg.Database.Enabled() {
		databaseURL = cm.GetDatabaseURL()
	}
	app.Sessions, err = sessionstore.New(ctx, cfg.Session, sessionstore.Options{
		DatabaseURL: databaseURL,
		RedisURL:    cm.GetRedisConnectionString(),
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	app.Directory = directory.Load(cfg.Directory.Path, logger)
	app.Triage = service.NewTriageService(logger, app.Sessions, app.Extractor, app.Directory)
	app.Bookings = service.NewBookingService(logger, bookings, app.Directory, app.Sessions)
	app.Reports = report.NewGenerator(cfg.Report.FontPath, logger)

	logger.WithFields(logrus.Fields{
		"database":      app.DB != nil,
		"extract_cache": app.Cache != nil,
		"session_store": cfg.Session.Backend,
		"doctors":       len(app.Directory.Doctors()),
	}).Info("Application components initialized")
	return app, nil
}

// APIDependencies returns the HTTP server's view of the application.
func (a *App) APIDependencies() api.Dependencies {
	deps := api.Dependencies{
		Triage:    a.Triage,
		Bookings:  a.Bookings,
		Directory: a.Directory,
		Sessions:  a.Sessions,
		Reports:   a.Reports,
		Extractor: a.Extractor,
	}
	// Nil pointers must not become non-nil interfaces.
	if a.DB != nil {
		deps.Database = a.DB
	}
	if a.Cache != nil {
		deps.Cache = a.Cache
	}
	return deps
}

// Close releases every opened backend.
func (a *App) Close() {
	if a.Sessions != nil {
		if err := a.Sessions.Close(); err != nil {
			a.Logger.WithError(err).Warn("Failed to close session store")
		}
	}
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			a.Logger.WithError(err).Warn("Failed to close cache")
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
}
