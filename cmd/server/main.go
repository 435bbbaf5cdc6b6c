package main

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

	"github.com/dragomirurdov/AtrijumApi/internal/api"
	"github.com/dragomirurdov/AtrijumApi/internal/api/middleware"
	"github.com/dragomirurdov/AtrijumApi/internal/config"
	"github.com/dragomirurdov/AtrijumApi/internal/i18n"
	"github.com/dragomirurdov/AtrijumApi/internal/logging"
	"github.com/dragomirurdov/AtrijumApi/internal/mail"
	"github.com/dragomirurdov/AtrijumApi/internal/metrics"
	"github.com/dragomirurdov/AtrijumApi/internal/repository"
	"github.com/dragomirurdov/AtrijumApi/internal/repository/memory"
	"github.com/dragomirurdov/AtrijumApi/internal/repository/postgres"
	"github.com/dragomirurdov/AtrijumApi/internal/service"
	"github.com/dragomirurdov/AtrijumApi/internal/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"
)

var Version = "dev"

func main() {
	app := &cli.App{
		Name:    "atrijum-api",
		Usage:   "Atrijum account and session API",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML config file; environment variables override it",
				Value:   config.ConfigPathFromEnv(),
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server (default)",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "create or update the database schema and exit",
				Action: migrate,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("exiting", "error", err)
		os.Exit(1)
	}
}

func loadConfig(c *cli.Context) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, logging.New(os.Stdout, cfg.LogLevel), nil
}

func migrate(c *cli.Context) error {
	cfg, logger, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required for migrate")
	}

	// NewConnection migrates before returning.
	db, err := postgres.NewConnection(cfg.DatabaseURL, logging.GormLevel(cfg.LogLevel))
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Info("database migrated")
	return nil
}

func serve(c *cli.Context) error {
	cfg, logger, err := loadConfig(c)
	if err != nil {
		return err
	}

	// Initialize repositories
	var repos *repository.Repositories
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL is not set, users and sessions are kept in memory and lost on restart")
		repos = &repository.Repositories{
			User:         memory.NewUserRepository(),
			SessionToken: memory.NewSessionTokenRepository(),
		}
	} else {
		db, err := postgres.NewConnection(cfg.DatabaseURL, logging.GormLevel(cfg.LogLevel))
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		repos = postgres.NewRepositories(db)
	}

	tr := i18n.NewTranslator(cfg.DefaultLanguage)

	var mailer mail.Mailer
	if cfg.SMTPHost == "" {
		logger.Warn("SMTP_HOST is empty, confirmation mails are logged instead of sent")
		mailer = mail.NewLogMailer(logger, tr, cfg.ActivationURL)
	} else {
		mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:          cfg.SMTPHost,
			Port:          cfg.SMTPPort,
			Username:      cfg.SMTPUsername,
			Password:      cfg.SMTPPassword,
			From:          cfg.MailFrom,
			ActivationURL: cfg.ActivationURL,
		}, tr)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	// Initialize WebSocket hub
	hub := websocket.NewHub(logger)
	go hub.Run()
	defer hub.Stop()

	// Initialize services
	services := service.NewServices(repos, mailer, cfg,
		service.WithLogger(logger),
		service.WithMetrics(collector),
		service.WithEvents(hub),
	)

	limiter := middleware.NewRateLimiter(middleware.NewRateLimiterConfig(cfg.AuthRatePerMinute, cfg.AuthRateBurst), tr)
	defer limiter.Stop()

	router := api.NewRouter(api.Deps{
		Services:       services,
		Hub:            hub,
		Translator:     tr,
		RateLimiter:    limiter,
		Metrics:        collector,
		MetricsHandler: metrics.Handler(registry),
		Logger:         logger,
	}, cfg)

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
