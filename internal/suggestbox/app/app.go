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

	"github.com/aussiebroadwan/suggestbox/internal/suggestbox/blob"
	httpapi "github.com/aussiebroadwan/suggestbox/internal/suggestbox/http"
	"github.com/aussiebroadwan/suggestbox/internal/suggestbox/mail"
	"github.com/aussiebroadwan/suggestbox/internal/suggestbox/service"
	"github.com/aussiebroadwan/suggestbox/internal/suggestbox/store"
	"github.com/aussiebroadwan/suggestbox/internal/suggestbox/store/drivers/sqlite"
	"github.com/aussiebroadwan/suggestbox/pkg/cryptox"
	"github.com/aussiebroadwan/suggestbox/pkg/httpx"
	"github.com/aussiebroadwan/suggestbox/pkg/jwtx"
	"github.com/aussiebroadwan/suggestbox/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the suggestion box service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db     store.Store
	signer *jwtx.HS256
	mailer mail.Mailer
	blobs  blob.Store

	// Services
	authService         *service.AuthService
	userService         *service.UserService
	recoveryService     *service.RecoveryService
	messageService      *service.MessageService
	bootstrapService    *service.BootstrapService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "suggestbox",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	signer, err := jwtx.NewHS256([]byte(app.cfg.TokenSecret), app.cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token signing: %w (set AUTH_TOKEN_SECRET)", err)
	}
	app.signer = signer

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initMailer(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.initBlobStore(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	// Seed the default admin so a fresh install has a working login.
	if err := app.bootstrapService.EnsureDefaultAdmin(slogx.WithContext(context.Background(), app.logger)); err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to bootstrap default admin: %w", err)
	}

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Start housekeeping service
	app.housekeepingService.Start()

	app.logger.Info("suggestbox starting", "port", app.cfg.Port, "version", BuildVersion)

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
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down suggestbox...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop the housekeeping service
	app.housekeepingService.Stop()

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("suggestbox stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
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

// initMailer selects the outbound mail backend. Without an SMTP relay the
// mail is written to the log, which keeps local development usable.
func (app *Application) initMailer() error {
	if app.cfg.SMTPHost == "" {
		app.logger.Warn("no SMTP relay configured, mail will be logged instead of sent")
		app.mailer = mail.NewLog()
		return nil
	}

	app.mailer = mail.NewSMTP(mail.SMTPConfig{
		Host:     app.cfg.SMTPHost,
		Port:     app.cfg.SMTPPort,
		Username: app.cfg.SMTPUsername,
		Password: app.cfg.SMTPPassword,
		From:     app.cfg.SMTPFrom,
	})
	app.logger.Info("SMTP mailer configured", "host", app.cfg.SMTPHost, "from", app.cfg.SMTPFrom)
	return nil
}

// initBlobStore selects the attachment backend: an S3-compatible bucket when
// configured, a local directory otherwise.
func (app *Application) initBlobStore() error {
	if app.cfg.S3Bucket == "" {
		local, err := blob.NewLocal(app.cfg.BlobDir)
		if err != nil {
			return fmt.Errorf("failed to initialize local blob store: %w", err)
		}
		app.blobs = local
		app.logger.Info("local blob store configured", "dir", app.cfg.BlobDir)
		return nil
	}

	s3store, err := blob.NewS3(context.Background(), blob.S3Config{
		Bucket:       app.cfg.S3Bucket,
		Region:       app.cfg.S3Region,
		BaseEndpoint: app.cfg.S3BaseEndpoint,
		AccessKey:    app.cfg.S3AccessKey,
		SecretKey:    app.cfg.S3SecretKey,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize S3 blob store: %w", err)
	}
	app.blobs = s3store
	app.logger.Info("S3 blob store configured", "bucket", app.cfg.S3Bucket)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.authService = &service.AuthService{
		Store:      app.db,
		Signer:     app.signer,
		Issuer:     app.cfg.Issuer,
		SessionTTL: app.cfg.SessionTTL,
	}

	app.userService = &service.UserService{
		Store:  app.db,
		Mailer: app.mailer,
	}
	app.recoveryService = &service.RecoveryService{
		Store:  app.db,
		Mailer: app.mailer,
	}
	app.messageService = &service.MessageService{
		Store: app.db,
		Blobs: app.blobs,
	}
	app.bootstrapService = &service.BootstrapService{
		Store:         app.db,
		AdminName:     app.cfg.AdminName,
		AdminEmail:    app.cfg.AdminEmail,
		AdminPassword: app.cfg.AdminPassword,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	cookie := httpx.SessionCookie{
		Name:     "token",
		Secure:   app.cfg.CookieSecure,
		SameSite: httpx.ParseSameSite(app.cfg.CookieSameSite),
		TTL:      app.cfg.SessionTTL,
		Domain:   app.cfg.CookieDomain,
	}

	router := httpapi.NewRouter(
		app.signer,
		cookie,
		BuildVersion,
		app.cfg.AllowedOrigins,
		app.db,
		app.logger,
	)

	// Wire services to router
	router.AuthService = app.authService
	router.UserService = app.userService
	router.RecoveryService = app.recoveryService
	router.MessageService = app.messageService
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
