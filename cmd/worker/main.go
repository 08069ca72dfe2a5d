package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BerylCAtieno/processos-api/internal/config"
	"github.com/BerylCAtieno/processos-api/internal/db"
	"github.com/BerylCAtieno/processos-api/internal/extractor"
	"github.com/BerylCAtieno/processos-api/internal/queue"
	"github.com/BerylCAtieno/processos-api/internal/repository"
	"github.com/BerylCAtieno/processos-api/internal/storage"
	"github.com/BerylCAtieno/processos-api/internal/utils"
	"github.com/BerylCAtieno/processos-api/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := utils.NewLogger(cfg.LogLevel).With("service", "worker", "worker_name", cfg.WorkerName)

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err, "postgres", cfg.IsPostgres())
	}
	defer database.Close()

	if err := db.RunMigrations(database); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	initCtx, cancelInit := context.WithTimeout(ctx, 30*time.Second)
	defer cancelInit()

	store, err := storage.New(initCtx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize storage", "error", err, "backend", cfg.StorageBackend)
	}

	consumer, err := queue.New(initCtx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to queue", "error", err, "backend", cfg.QueueBackend)
	}
	defer consumer.Close()

	w := worker.New(
		repository.NewDocumentRepository(database),
		store,
		extractor.NewRegistry(),
		consumer,
		worker.Options{
			Concurrency: cfg.WorkerConcurrency,
			Timeout:     cfg.ExtractionTimeout,
		},
		logger,
	)

	logger.Info("Starting extraction worker",
		"queue", cfg.QueueBackend,
		"channel", cfg.QueueName,
		"concurrency", cfg.WorkerConcurrency,
		"timeout", cfg.ExtractionTimeout)

	if err := w.Run(ctx); err != nil {
		logger.Error("Worker stopped with error", "error", err)
		consumer.Close()
		database.Close()
		os.Exit(1)
	}

	logger.Info("Worker exited")
}
