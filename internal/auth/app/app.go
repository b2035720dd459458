package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	httpapi "github.com/scholarspace/scholarspace/internal/auth/http"
	"github.com/scholarspace/scholarspace/internal/auth/notify"
	"github.com/scholarspace/scholarspace/internal/auth/service"
	"github.com/scholarspace/scholarspace/internal/auth/store"
	"github.com/scholarspace/scholarspace/internal/auth/store/drivers/postgres"
	"github.com/scholarspace/scholarspace/internal/auth/store/drivers/sqlite"
	"github.com/scholarspace/scholarspace/pkg/cryptox"
	"github.com/scholarspace/scholarspace/pkg/jwtx"
	"github.com/scholarspace/scholarspace/pkg/slogx"
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
	codec    *jwtx.Codec
	hasher   *cryptox.Hasher
	notifier notify.Notifier

	// Services
	loginService *service.LoginService
	resetService *service.ResetService
	userService  *service.UserService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	pepper, err := cryptox.LoadOrCreatePepper(cfg.PepperFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}
	app.hasher = cryptox.NewHasher(pepper)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	codec, err := InitAuthKeys(cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize JWT keys: %w", err)
	}
	app.codec = codec

	notifier, err := NewNotifier(cfg.MailConfig)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize notifier: %w", err)
	}
	app.notifier = notifier

	app.initServices()

	if cfg.SeedDemoUsers {
		ctx := slogx.WithContext(context.Background(), app.logger)
		if _, err := app.userService.SeedDemoUsers(ctx); err != nil {
			_ = app.close()
			return nil, fmt.Errorf("failed to seed demo users: %w", err)
		}
	}

	app.initHTTP()
	return app, nil
}

// Handler returns the root HTTP handler.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("auth service starting",
		slog.Int("port", app.cfg.Port),
		slog.String("version", BuildVersion),
		slog.String("database", app.cfg.DatabaseDriver),
		slog.String("mail", app.cfg.MailConfig.Mode),
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
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

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
		app.logger.Error("graceful server shutdown failed", slog.Any("error", err))
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", slog.Any("error", err))
		}
	}

	if err := app.close(); err != nil {
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// close releases the notifier and the database.
func (app *Application) close() error {
	if c, ok := app.notifier.(io.Closer); ok {
		if err := c.Close(); err != nil {
			app.logger.Warn("error closing notifier", slog.Any("error", err))
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", slog.Any("error", err))
		return err
	}
	return nil
}

// initDatabase opens the configured store and applies migrations
func (app *Application) initDatabase() error {
	var (
		db  store.Store
		err error
	)
	switch app.cfg.DatabaseDriver {
	case "postgres":
		db, err = postgres.NewStore(context.Background(), app.cfg.DatabaseURL)
	default:
		db, err = sqlite.NewStore(sqlite.FileDSN(app.cfg.DatabaseFile))
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", slog.String("driver", app.cfg.DatabaseDriver))
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.loginService = &service.LoginService{
		Store:     app.db,
		Hasher:    app.hasher,
		Tokens:    app.codec,
		AccessTTL: app.cfg.AccessTTL,
	}
	app.resetService = &service.ResetService{
		Store:       app.db,
		Hasher:      app.hasher,
		Notifier:    app.notifier,
		Window:      app.cfg.ResetWindow,
		FrontendURL: app.cfg.FrontendURL,
		ExposeToken: app.cfg.ExposeResetToken,
	}
	app.userService = &service.UserService{
		Store:  app.db,
		Hasher: app.hasher,
	}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.codec,
		nil,
		BuildVersion,
		app.db,
		app.logger,
		app.cfg.IsProduction(),
	)

	router.LoginService = app.loginService
	router.ResetService = app.resetService
	router.UserService = app.userService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// NewNotifier builds the notifier selected by cfg.Mode.
func NewNotifier(cfg MailConfig) (notify.Notifier, error) {
	switch cfg.Mode {
	case "smtp":
		return NewSMTPNotifier(cfg)
	case "queue":
		return notify.NewQueueNotifier(asynq.RedisClientOpt{Addr: cfg.RedisAddr}), nil
	default:
		return notify.LogNotifier{}, nil
	}
}

// NewSMTPNotifier builds the SMTP adapter from cfg. The worker uses it as
// its delivery channel too.
func NewSMTPNotifier(cfg MailConfig) (*notify.SMTPNotifier, error) {
	return notify.NewSMTPNotifier(notify.SMTPConfig{
		Host:          cfg.SMTPHost,
		Port:          cfg.SMTPPort,
		Username:      cfg.SMTPUsername,
		Password:      cfg.SMTPPassword,
		From:          cfg.SMTPFrom,
		RatePerMinute: cfg.RatePerMinute,
	})
}
