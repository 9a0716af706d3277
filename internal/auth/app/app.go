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

	httpapi "github.com/syedsanaulhaq/scl/internal/auth/http"
	"github.com/syedsanaulhaq/scl/internal/auth/service"
	"github.com/syedsanaulhaq/scl/internal/auth/store"
	"github.com/syedsanaulhaq/scl/internal/auth/store/drivers/postgres"
	"github.com/syedsanaulhaq/scl/internal/auth/store/drivers/sqlite"
	"github.com/syedsanaulhaq/scl/pkg/cryptox"
	"github.com/syedsanaulhaq/scl/pkg/jwtx"
	"github.com/syedsanaulhaq/scl/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	hasher   *cryptox.Hasher
	issuer   *jwtx.Issuer
	verifier *jwtx.HS256Verifier

	// Services
	authService      *service.AuthService
	userService      *service.UserService
	bootstrapService *service.BootstrapService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "scl-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	keys, err := LoadKeyConfig(cfg, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load token keys: %w", err)
	}
	if app.issuer, err = jwtx.NewIssuer(keys); err != nil {
		return nil, err
	}
	if app.verifier, err = jwtx.NewVerifier(keys); err != nil {
		return nil, err
	}

	if err := app.initHasher(); err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}

	app.initServices()

	if _, err := app.bootstrapService.Run(slogx.WithContext(ctx, app.logger)); err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to bootstrap admin: %w", err)
	}

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
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

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

func (app *Application) initHasher() error {
	pepper, err := cryptox.LoadOrCreatePepper(app.cfg.PepperFile)
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}
	if pepper == "" {
		app.logger.Warn("password pepper disabled")
	}

	app.hasher, err = cryptox.NewHasher(app.cfg.HashParams(), pepper)
	if err != nil {
		return fmt.Errorf("invalid hash parameters: %w", err)
	}
	app.logger.Info("password hasher ready", "algorithm", app.cfg.HashAlgorithm)
	return nil
}

// initDatabase opens the configured driver and applies migrations
func (app *Application) initDatabase(ctx context.Context) error {
	var (
		db  store.Store
		err error
	)

	switch app.cfg.DatabaseDriver {
	case DriverSQLite:
		db, err = sqlite.NewStore(sqlite.DSN(app.cfg.DatabaseFile))
	case DriverPostgres:
		if app.cfg.DatabaseURL == "" {
			return errors.New("AUTH_DATABASE_URL is required for the postgres driver")
		}
		db, err = postgres.NewStore(ctx, app.cfg.DatabaseURL)
	default:
		return fmt.Errorf("unknown database driver %q", app.cfg.DatabaseDriver)
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
	app.authService = &service.AuthService{
		Store:             app.db,
		Hasher:            app.hasher,
		Issuer:            app.issuer,
		Verifier:          app.verifier,
		PasswordMinLength: app.cfg.PasswordMinLength,
	}
	app.userService = &service.UserService{
		Store:             app.db,
		Hasher:            app.hasher,
		PasswordMinLength: app.cfg.PasswordMinLength,
	}
	app.bootstrapService = &service.BootstrapService{
		Store:          app.db,
		Hasher:         app.hasher,
		Email:          app.cfg.BootstrapAdminEmail,
		Password:       app.cfg.BootstrapAdminPassword,
		AllowGenerated: !app.cfg.IsProduction(),
	}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.verifier,
		app.cfg.RateLimits,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.AuthService = app.authService
	router.UserService = app.userService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
