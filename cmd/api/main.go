package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wagerpipe/internal/api"
	"wagerpipe/internal/application/factories/infrastructure"
	"wagerpipe/internal/config"
	"wagerpipe/internal/infrastructure/postgres"
	"wagerpipe/internal/infrastructure/rabbit"
	"wagerpipe/internal/pipeline"
	"wagerpipe/internal/queue"
	"wagerpipe/internal/usecase"
)

func main() {
	// Initialize structured JSON logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.New()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Rebuild the logger at the configured level now that config is loaded.
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	infraFactory := infrastructure.NewFactory(cfg)
	defer infraFactory.Close()

	pgPool, err := infraFactory.Postgres(ctx)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}

	// Redis only backs the top-spenders cache; run without it if unreachable.
	redisClient, err := infraFactory.Redis(ctx)
	if err != nil {
		logger.Warn("redis unavailable, running without cache", "error", err)
		redisClient = nil
	}

	// Broker publisher: fail fast rather than accept wagers we cannot forward.
	publisherSink, err := rabbit.NewPublisher(rabbit.Config{
		Host:     cfg.Rabbit.Host,
		Port:     cfg.Rabbit.Port,
		User:     cfg.Rabbit.User,
		Password: cfg.Rabbit.Password,
		Queue:    cfg.Rabbit.Queue,
		Durable:  cfg.Rabbit.Durable,
	}, cfg.Pipeline.ConfirmTimeout)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", "error", err)
		os.Exit(1)
	}
	defer publisherSink.Close()

	// Ingest buffer and its single drain loop
	ingest := queue.New(cfg.Pipeline.IngestCapacity)
	batchPublisher := pipeline.NewPublisher(ingest, publisherSink,
		cfg.Pipeline.PublishBatch, cfg.Pipeline.PublishTick, cfg.Pipeline.PublishBackoff)

	go func() {
		if err := batchPublisher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("buffered publisher stopped", "error", err)
		}
	}()

	// Repositories and use cases
	readsRepo := postgres.NewPlayerReadRepository(pgPool)

	submitWagerUC := usecase.NewSubmitWager(ingest)
	playerWagersUC := usecase.NewGetPlayerWagers(readsRepo)
	topSpendersUC := usecase.NewGetTopSpenders(redisClient, readsRepo)

	handlers := api.NewHandlers(submitWagerUC, playerWagersUC, topSpendersUC)
	apiHandler := api.NewRouter(handlers)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTP.Port,
		Handler: apiHandler,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.HTTP.Port, "queue", cfg.Rabbit.Queue)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("Server exiting")
}
