/**
 * @description
 * Main entry point for the tracker service. Wires together configuration,
 * database pool, repositories, the daily scheduler and the HTTP API, then
 * runs until a termination signal arrives.
 */
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/smartysub/tracker-service/internal/api"
	"github.com/smartysub/tracker-service/internal/app"
	"github.com/smartysub/tracker-service/internal/config"
	"github.com/smartysub/tracker-service/internal/store"
	"github.com/smartysub/tracker-service/pkg/mailer"
	"github.com/smartysub/tracker-service/pkg/rabbitmq"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Load .env for local development; absence is fine in deployed environments
	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, using environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Establish connection to the PostgreSQL database
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Error("unable to parse database URL", "error", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = 20
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	dbpool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Error("unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()
	logger.Info("database connection established")

	// Event producer; fall back to log-only when the broker is unreachable
	var publisher rabbitmq.Publisher
	if cfg.AMQPURL != "" {
		producer, err := rabbitmq.NewEventProducer(cfg.AMQPURL)
		if err != nil {
			logger.Warn("rabbitmq unavailable, events will be logged only", "error", err)
			publisher = &rabbitmq.FallbackProducer{Logger: logger}
		} else {
			publisher = producer
		}
	} else {
		publisher = &rabbitmq.FallbackProducer{Logger: logger}
	}
	defer publisher.Close()

	// Reminder notifier; log-only when Postmark credentials are missing
	var notifier app.Notifier
	if cfg.PostmarkServerToken != "" {
		notifier = mailer.New(cfg.PostmarkServerToken, cfg.PostmarkAccountToken, cfg.SenderEmail)
	} else {
		logger.Warn("no postmark credentials, reminders will be logged only")
		notifier = &mailer.LogNotifier{Logger: logger}
	}

	// Initialize application layers
	repository := store.NewRepository(dbpool)
	subService := app.NewService(repository, repository)
	userService := app.NewUserService(repository)

	jobs := app.NewJobs(repository, notifier, publisher, logger, *cfg)
	scheduler := app.NewScheduler(jobs, logger, *cfg)
	scheduler.Start()
	logger.Info("scheduler started")

	handler := api.NewHandler(
		subService,
		userService,
		repository,
		cfg.JWTSecret,
		time.Duration(cfg.TokenTTLHours)*time.Hour,
		cfg.PremiumDurationDays,
	)
	router := api.NewRouter(handler, cfg.JWTSecret)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: router,
	}

	go func() {
		logger.Info("starting server", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-sigCh
	logger.Info("shutdown signal received, gracefully shutting down")

	stopCtx := scheduler.Stop()
	<-stopCtx.Done()
	logger.Info("scheduler stopped")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	logger.Info("server stopped")
}
