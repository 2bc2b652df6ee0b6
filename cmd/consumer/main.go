package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wagerpipe/internal/application/factories/infrastructure"
	"wagerpipe/internal/config"
	"wagerpipe/internal/infrastructure/postgres"
	"wagerpipe/internal/infrastructure/rabbit"
	"wagerpipe/internal/pipeline"
	"wagerpipe/internal/queue"
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

	// Metrics Server
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		logger.Info("Consumer metrics listening on :9091")
		if err := http.ListenAndServe(":9091", mux); err != nil {
			logger.Error("metrics listener failed", "error", err)
		}
	}()

	// Infrastructure (Postgres): fail fast rather than consume into a void.
	infraFactory := infrastructure.NewFactory(cfg)
	defer infraFactory.Close()

	pgPool, err := infraFactory.Postgres(ctx)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}

	wagerRepo := postgres.NewWagerRepository(pgPool)

	// Internal buffer between delivery callbacks and the batch writer
	buffer := queue.New(cfg.Pipeline.BufferCapacity)

	writer := pipeline.NewWriter(buffer, wagerRepo,
		cfg.Pipeline.WriteBatch, cfg.Pipeline.WriteTick, cfg.Pipeline.WriteBackoff)

	go func() {
		if err := writer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("batch writer stopped", "error", err)
		}
	}()

	consumer, err := rabbit.NewConsumer(rabbit.Config{
		Host:     cfg.Rabbit.Host,
		Port:     cfg.Rabbit.Port,
		User:     cfg.Rabbit.User,
		Password: cfg.Rabbit.Password,
		Queue:    cfg.Rabbit.Queue,
		Durable:  cfg.Rabbit.Durable,
		Prefetch: cfg.Rabbit.Prefetch,
	}, buffer)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("consumer stopped", "error", err)
		os.Exit(1)
	}

	logger.Info("Consumer exiting")
}
