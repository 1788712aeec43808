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

	"github.com/wardenhq/warden/internal/auth/domain"
	httpapi "github.com/wardenhq/warden/internal/auth/http"
	"github.com/wardenhq/warden/internal/auth/notify"
	"github.com/wardenhq/warden/internal/auth/service"
	"github.com/wardenhq/warden/internal/auth/store"
	"github.com/wardenhq/warden/internal/auth/store/drivers/sqlite"
	"github.com/wardenhq/warden/pkg/jwtx"
	"github.com/wardenhq/warden/pkg/otpx"
	"github.com/wardenhq/warden/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	notifier notify.Notifier

	authService    *service.AuthService
	accountService *service.AccountService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "warden",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initNotifier(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("warden starting", "port", app.cfg.Port, "version", BuildVersion)

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
	app.logger.Info("shutting down warden...")

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

	app.logger.Info("warden stopped")
	return nil
}

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
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

func (app *Application) initNotifier() error {
	if app.cfg.SMTPHost == "" {
		app.logger.Warn("no SMTP host configured, OTP codes will be logged")
		app.notifier = &notify.LogNotifier{Logger: app.logger}
		return nil
	}

	notifier, err := notify.NewSMTPNotifier(notify.SMTPConfig{
		Host:         app.cfg.SMTPHost,
		Port:         app.cfg.SMTPPort,
		Username:     app.cfg.SMTPUsername,
		Password:     app.cfg.SMTPPassword,
		From:         app.cfg.SMTPFrom,
		Subject:      app.cfg.SMTPSubject,
		CodeValidity: app.cfg.OTPTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize SMTP notifier: %w", err)
	}
	app.notifier = notifier
	return nil
}

func (app *Application) initServices() error {
	userKeys, err := jwtx.NewHS256(app.cfg.JWTSecretUser)
	if err != nil {
		return fmt.Errorf("user tenant keys: %w", err)
	}
	adminKeys, err := jwtx.NewHS256(app.cfg.JWTSecretAdmin)
	if err != nil {
		return fmt.Errorf("admin tenant keys: %w", err)
	}

	app.authService = &service.AuthService{
		Store:    app.db,
		Notifier: app.notifier,
		Signers: map[domain.Tenant]jwtx.Signer{
			domain.TenantUser:  userKeys,
			domain.TenantAdmin: adminKeys,
		},
		TokenTTL:        app.cfg.TokenTTL,
		OTPTTL:          app.cfg.OTPTTL,
		OTPDigits:       otpx.DefaultDigits,
		NotifyTimeout:   app.cfg.NotifyTimeout,
		RequireVerified: app.cfg.RequireVerified,
	}
	app.accountService = &service.AccountService{Store: app.db}

	return nil
}

func (app *Application) initHTTP() {
	// The signing keys double as verifiers; tenants never share a secret.
	verifiers := make(map[domain.Tenant]jwtx.Verifier, len(app.authService.Signers))
	for tenant, signer := range app.authService.Signers {
		verifiers[tenant] = signer.(jwtx.Verifier)
	}

	router := httpapi.NewRouter(
		verifiers,
		BuildVersion,
		app.cfg.AllowedOrigin,
		app.db,
		app.logger,
	)

	router.AuthService = app.authService
	router.AccountService = app.accountService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
