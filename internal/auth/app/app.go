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

	httpapi "github.com/arolux/auth-service/internal/auth/http"
	"github.com/arolux/auth-service/internal/auth/notify"
	"github.com/arolux/auth-service/internal/auth/service"
	"github.com/arolux/auth-service/internal/auth/store"
	"github.com/arolux/auth-service/internal/auth/store/drivers/sqlite"
	"github.com/arolux/auth-service/pkg/cryptox"
	"github.com/arolux/auth-service/pkg/jwtx"
	"github.com/arolux/auth-service/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db        store.Store
	codec     *jwtx.Codec
	decryptor *cryptox.BodyDecryptor

	configService       *service.ConfigService
	otpService          *service.OTPService
	userService         *service.UserService
	adminService        *service.AdminService
	auditService        *service.AuditService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
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

	codec, err := jwtx.NewCodec(jwtx.CodecConfig{
		AccessSecret:  []byte(cfg.AccessSecret),
		RefreshSecret: []byte(cfg.RefreshSecret),
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
		Issuer:        cfg.Issuer,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}
	app.codec = codec

	if err := app.initDecryptor(); err != nil {
		return nil, err
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()

	if err := app.seedRootAdmin(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

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

	// Close the audit queue after the server stops accepting requests, so
	// late entries still drain to the database.
	app.auditService.Close()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDecryptor loads the RSA private key for encrypted admin login bodies.
// Without a key file the dashboard must send plaintext JSON.
func (app *Application) initDecryptor() error {
	if app.cfg.AdminLoginKeyFile == "" {
		app.logger.Warn("no admin login key configured, encrypted login bodies disabled")
		return nil
	}

	pemKey, err := os.ReadFile(app.cfg.AdminLoginKeyFile)
	if err != nil {
		return fmt.Errorf("failed to read admin login key: %w", err)
	}

	dec, err := cryptox.NewBodyDecryptor(pemKey)
	if err != nil {
		return fmt.Errorf("failed to parse admin login key: %w", err)
	}
	app.decryptor = dec
	return nil
}

// initDatabase initializes the database and applies migrations.
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

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.auditService = service.NewAuditService(app.db, app.logger, app.cfg.AuditBuffer)
	app.configService = &service.ConfigService{Store: app.db}

	app.otpService = &service.OTPService{
		Store:  app.db,
		Config: app.configService,
		Mailer: &notify.LogMailer{Log: app.logger},
		SMS:    &notify.LogSMSSender{Log: app.logger},
	}

	app.userService = &service.UserService{
		Store: app.db,
		Codec: app.codec,
		OTP:   app.otpService,
		Audit: app.auditService,
	}

	app.adminService = &service.AdminService{
		Store: app.db,
		Codec: app.codec,
		Audit: app.auditService,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// seedRootAdmin creates the bootstrap super-admin when the admin collection
// is empty. Skipped when no password is configured.
func (app *Application) seedRootAdmin() error {
	if app.cfg.RootAdminPassword == "" {
		app.logger.Warn("ROOT_ADMIN_PASSWORD not set, skipping root admin seeding")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.adminService.SeedRootAdmin(ctx, app.cfg.RootAdminEmail, app.cfg.RootAdminPassword); err != nil {
		return fmt.Errorf("failed to seed root admin: %w", err)
	}
	return nil
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.codec,
		app.db,
		app.decryptor,
		BuildVersion,
		app.logger,
	)

	router.UserService = app.userService
	router.AdminService = app.adminService
	router.OTPService = app.otpService
	router.AuditService = app.auditService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
