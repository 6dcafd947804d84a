package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/careerhub/internal/auth/http"
	"github.com/aussiebroadwan/careerhub/internal/auth/service"
	"github.com/aussiebroadwan/careerhub/internal/auth/store"
	"github.com/aussiebroadwan/careerhub/internal/auth/store/drivers/postgres"
	"github.com/aussiebroadwan/careerhub/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/careerhub/pkg/cryptox"
	"github.com/aussiebroadwan/careerhub/pkg/slogx"
)

// BuildVersion is stamped with
// -ldflags "-X github.com/aussiebroadwan/careerhub/internal/auth/app.BuildVersion=..."
var BuildVersion = "v0.1.0"

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	db   store.Store
	keys *AuthKeys

	userService         *service.UserService
	tokenService        *service.TokenService
	sessionRegistry     *service.SessionRegistry
	authService         *service.AuthService
	mfaService          *service.MFAService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "careerhub-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	cryptox.SetPepperPath(app.cfg.PepperFile)

	ctx := context.Background()
	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}

	keys, err := InitAuthKeys(app.cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize token keys: %w", err)
	}
	app.keys = keys

	if app.cfg.TOTPWindow > 1 {
		app.logger.Warn("TOTP window wider than one step weakens second factor checks", "window", app.cfg.TOTPWindow)
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Handler exposes the routed HTTP handler, mostly for tests.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("auth service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"driver", app.cfg.DatabaseDriver,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			_ = app.db.Close()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase opens the configured store and applies migrations
func (app *Application) initDatabase(ctx context.Context) error {
	var (
		db  store.Store
		err error
	)

	switch app.cfg.DatabaseDriver {
	case DriverPostgres:
		db, err = postgres.NewStore(ctx, app.cfg.DatabaseURL)
	default:
		db, err = sqlite.NewStore(app.cfg.DatabaseFile)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	observer := service.SlogObserver{}

	app.userService = &service.UserService{
		Store:    app.db,
		Observer: observer,
	}

	totp := &service.TOTPEngine{
		Issuer: app.cfg.TOTPIssuer,
		Window: app.cfg.TOTPWindow,
	}
	recovery := &service.RecoveryCodeManager{Store: app.db}

	app.tokenService = &service.TokenService{
		Store:         app.db,
		AccessKey:     app.keys.Access,
		RefreshKey:    app.keys.Refresh,
		Issuer:        app.cfg.Issuer,
		AccessTTL:     app.cfg.AccessTTL,
		RefreshTTL:    app.cfg.RefreshTTL,
		RotateRefresh: app.cfg.RotateRefresh,
		Observer:      observer,
	}

	app.sessionRegistry = &service.SessionRegistry{
		Store:       app.db,
		MaxSessions: app.cfg.MaxSessions,
		ReuseDevice: app.cfg.ReuseDevice,
		Observer:    observer,
	}

	app.authService = &service.AuthService{
		Store:    app.db,
		Users:    app.userService,
		TOTP:     totp,
		Recovery: recovery,
		Tokens:   app.tokenService,
		Sessions: app.sessionRegistry,
		Observer: observer,
	}

	app.mfaService = &service.MFAService{
		Store:    app.db,
		TOTP:     totp,
		Recovery: recovery,
		Observer: observer,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.sessionRegistry,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.IdleTimeout,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keys.Access,
		BuildVersion,
		app.db,
		app.logger,
		httpapi.CookieConfig{Secure: app.cfg.CookieSecure, Domain: app.cfg.CookieDomain},
		app.cfg.RequestTimeout,
	)

	router.AuthService = app.authService
	router.MFAService = app.mfaService
	router.UserService = app.userService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
