// Package app assembles the portal's dependencies and runs the HTTP server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"

	httpapi "github.com/supportportal/portal/internal/portal/http"
	"github.com/supportportal/portal/internal/portal/mail"
	"github.com/supportportal/portal/internal/portal/media"
	"github.com/supportportal/portal/internal/portal/service"
	"github.com/supportportal/portal/internal/portal/store"
	"github.com/supportportal/portal/internal/portal/store/drivers/sqlite"
	"github.com/supportportal/portal/pkg/jwtx"
	"github.com/supportportal/portal/pkg/lockout"
	"github.com/supportportal/portal/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application encapsulates the portal with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db      store.Store
	codec   *jwtx.Codec
	tracker *lockout.Tracker
	mailer  mail.Mailer
	images  *media.ImageStore

	authService *service.AuthService
	userService *service.UserService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "portal",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initSentry(); err != nil {
		return nil, err
	}

	codec, err := jwtx.NewCodec(cfg.TokenSecret, cfg.Issuer, cfg.Audience,
		jwtx.WithTTL(cfg.TokenTTL))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}
	app.codec = codec

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("portal starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
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

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down portal...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	sentry.Flush(2 * time.Second)

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("portal stopped")
	return nil
}

func (app *Application) initSentry() error {
	if app.cfg.SentryDSN == "" {
		app.logger.Info("sentry disabled, no DSN configured")
		return nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         app.cfg.SentryDSN,
		Environment: app.cfg.Env,
		Release:     "portal@" + BuildVersion,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize sentry: %w", err)
	}
	return nil
}

func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
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

func (app *Application) initServices() {
	app.tracker = lockout.NewTracker(lockout.Config{
		MaxAttempts: app.cfg.MaxLoginAttempts,
		TTL:         app.cfg.AttemptTTL,
		Capacity:    app.cfg.AttemptCapacity,
	})

	if app.cfg.SMTPHost != "" {
		app.mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     app.cfg.SMTPHost,
			Port:     app.cfg.SMTPPort,
			Username: app.cfg.SMTPUsername,
			Password: app.cfg.SMTPPassword,
			From:     app.cfg.SMTPFrom,
		})
	} else {
		app.logger.Info("smtp not configured, mail will be logged")
		app.mailer = mail.LogMailer{}
	}

	app.images = media.NewImageStore(app.cfg.MediaRoot)

	guard := &service.LoginAttemptGuard{
		Tracker: app.tracker,
		Store:   app.db,
	}

	app.authService = &service.AuthService{
		Store: app.db,
		Codec: app.codec,
		Guard: guard,
	}
	app.userService = &service.UserService{
		Store:  app.db,
		Mailer: app.mailer,
		Images: app.images,
	}
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.codec,
		app.cfg.TokenHeader,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.AuthService = app.authService
	router.UserService = app.userService
	router.Images = app.images
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
