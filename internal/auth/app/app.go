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

	"github.com/aussiebroadwan/campusauth/internal/auth/audit"
	"github.com/aussiebroadwan/campusauth/internal/auth/federation"
	httpapi "github.com/aussiebroadwan/campusauth/internal/auth/http"
	"github.com/aussiebroadwan/campusauth/internal/auth/notify"
	"github.com/aussiebroadwan/campusauth/internal/auth/service"
	"github.com/aussiebroadwan/campusauth/internal/auth/store"
	"github.com/aussiebroadwan/campusauth/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/campusauth/pkg/cryptox"
	"github.com/aussiebroadwan/campusauth/pkg/jwtx"
	"github.com/aussiebroadwan/campusauth/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// ctx outlives every request; the Google key set fetches with it.
	ctx    context.Context
	cancel context.CancelFunc

	// Core dependencies
	db       store.Store
	hasher   *cryptox.Hasher
	signer   *jwtx.HS256Signer
	verifier *jwtx.HS256Verifier
	google   *federation.GoogleVerifier // nil when GOOGLE_CLIENT_ID is unset
	auditLog *audit.AsyncSink
	notifier service.Notifier

	// Services
	authService         *service.AuthService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	app := &Application{
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		cancel()
		return nil, err
	}

	steps := []func() error{
		app.initCrypto,
		app.initFederation,
		app.initNotifier,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			cancel()
			_ = app.db.Close()
			return nil, err
		}
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Handler exposes the HTTP handler, mainly for tests.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Start housekeeping service
	app.housekeepingService.Start()

	app.logger.Info("auth service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"google_sign_in", app.google != nil,
	)

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
			_ = app.Shutdown()
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

// Shutdown stops accepting requests, waits for reset-code deliveries,
// flushes the audit queue and closes the database, in that order.
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

	app.housekeepingService.Stop()

	if err := app.authService.WaitForDeliveries(ctx); err != nil {
		app.logger.Error("reset code deliveries still pending", "error", err)
	}

	if err := app.auditLog.Close(ctx); err != nil {
		app.logger.Error("audit queue not fully flushed", "error", err)
	}

	app.cancel()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initCrypto loads the pepper and builds the password hasher and the
// session token signer and verifier.
func (app *Application) initCrypto() error {
	pepper, err := cryptox.LoadPepper(app.cfg.PepperFile)
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}

	app.hasher = cryptox.NewHasher(cryptox.Params{
		Memory:      app.cfg.Hash.MemoryKiB,
		Iterations:  app.cfg.Hash.Iterations,
		Parallelism: app.cfg.Hash.Parallelism,
	}, pepper, app.cfg.Hash.Concurrency)

	if app.signer, err = jwtx.NewSignerHS256(app.cfg.JWTSecret); err != nil {
		return fmt.Errorf("failed to initialize token signer: %w", err)
	}
	if app.verifier, err = jwtx.NewVerifierHS256(app.cfg.JWTSecret); err != nil {
		return fmt.Errorf("failed to initialize token verifier: %w", err)
	}
	return nil
}

// initFederation enables Google sign-in when a client id is configured.
func (app *Application) initFederation() error {
	if app.cfg.GoogleClientID == "" {
		app.logger.Warn("GOOGLE_CLIENT_ID not set, google sign-in disabled")
		return nil
	}

	v, err := federation.NewGoogleVerifier(app.ctx, federation.GoogleConfig{
		ClientID: app.cfg.GoogleClientID,
		Timeout:  app.cfg.GoogleVerifyTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize google verifier: %w", err)
	}
	app.google = v
	return nil
}

// initNotifier picks Postmark when a server token is set and the drop
// directory otherwise.
func (app *Application) initNotifier() error {
	if app.cfg.PostmarkServerToken != "" {
		pm, err := notify.NewPostmark(notify.PostmarkConfig{
			ServerToken:  app.cfg.PostmarkServerToken,
			AccountToken: app.cfg.PostmarkAccountToken,
			Sender:       app.cfg.MailSender,
			CodeTTL:      app.cfg.ResetCodeTTL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize postmark: %w", err)
		}
		app.notifier = pm
		app.logger.Info("reset codes delivered via postmark")
		return nil
	}

	app.notifier = notify.NewDropDir(app.cfg.NotifyDropDir, app.cfg.ResetCodeTTL)
	app.logger.Warn("postmark not configured, reset codes written to drop directory", "dir", app.cfg.NotifyDropDir)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.auditLog = audit.NewAsyncSink(app.db.AuditLog(), app.logger, audit.Options{
		BufferSize: app.cfg.AuditBufferSize,
	})

	app.authService = &service.AuthService{
		Store:         app.db,
		Hasher:        app.hasher,
		Signer:        app.signer,
		Audit:         app.auditLog,
		Notifier:      app.notifier,
		ResetCodeTTL:  app.cfg.ResetCodeTTL,
		NotifyTimeout: app.cfg.NotifyTimeout,
	}
	// A typed nil would defeat the service's nil check.
	if app.google != nil {
		app.authService.Identity = app.google
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.logger)
	router.AuthService = app.authService
	router.Verifier = app.verifier
	router.GoogleEnabled = app.google != nil
	router.RequestTimeout = app.cfg.RequestTimeout
	router.Limits = httpapi.RateLimits{
		Strict:   app.cfg.RateLimits.Strict,
		Moderate: app.cfg.RateLimits.Moderate,
		Public:   app.cfg.RateLimits.Public,
	}
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
