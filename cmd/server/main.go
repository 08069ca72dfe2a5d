package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BerylCAtieno/processos-api/internal/config"
	"github.com/BerylCAtieno/processos-api/internal/db"
	"github.com/BerylCAtieno/processos-api/internal/queue"
	"github.com/BerylCAtieno/processos-api/internal/repository"
	"github.com/BerylCAtieno/processos-api/internal/router"
	"github.com/BerylCAtieno/processos-api/internal/services"
	"github.com/BerylCAtieno/processos-api/internal/storage"
	"github.com/BerylCAtieno/processos-api/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := utils.NewLogger(cfg.LogLevel).With("service", "api")

	// Initialize database
	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err, "postgres", cfg.IsPostgres())
	}
	defer database.Close()

	// Run migrations
	if err := db.RunMigrations(database); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelInit()

	store, err := storage.New(initCtx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize storage", "error", err, "backend", cfg.StorageBackend)
	}

	publisher, err := queue.New(initCtx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to queue", "error", err, "backend", cfg.QueueBackend)
	}
	defer publisher.Close()

	caseRepo := repository.NewCaseRepository(database)
	docRepo := repository.NewDocumentRepository(database)

	// Setup HTTP router
	handler := router.NewRouter(router.Deps{
		Cases:       services.NewCaseService(caseRepo, docRepo, logger),
		Documents:   services.NewDocumentService(caseRepo, docRepo, store, publisher, logger),
		DB:          database,
		MaxFileSize: cfg.MaxFileSize,
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("Starting server",
			"port", cfg.Port,
			"storage", cfg.StorageBackend,
			"queue", cfg.QueueBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
