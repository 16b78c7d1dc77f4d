package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rahatc/paywords/internal/audit"
	"github.com/rahatc/paywords/internal/config"
	"github.com/rahatc/paywords/internal/db"
	"github.com/rahatc/paywords/internal/gateway"
	"github.com/rahatc/paywords/internal/queue"
	"github.com/rahatc/paywords/internal/repository"
	"github.com/rahatc/paywords/internal/router"
	"github.com/rahatc/paywords/internal/services"
	"github.com/rahatc/paywords/internal/storage"
	"github.com/rahatc/paywords/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := utils.NewLogger(cfg.LogLevel)

	// Initialize database
	database, err := db.NewSQLiteDB(cfg.DatabaseFile)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer database.Close()

	// Run migrations
	if err := db.RunMigrations(cfg.DatabaseFile); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	// Repositories
	uploadRepo := repository.NewUploadRepository(database)
	paymentRepo := repository.NewPaymentRepository(database)
	activityRepo := repository.NewActivityRepository(database)
	recorder := audit.NewRecorder(activityRepo, logger)

	// Blob storage
	blobStore, err := storage.NewS3Storage(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize S3 storage", "error", err)
	}

	// Payment gateway
	gatewayClient := gateway.NewAamarPayClient(cfg, logger)

	// Job queue
	jobStore := queue.NewStore(database)

	// Services
	uploadService := services.NewUploadService(
		database, uploadRepo, paymentRepo, activityRepo, recorder,
		blobStore, jobStore, cfg.MaxFileSize, logger,
	)
	paymentService := services.NewPaymentService(paymentRepo, recorder, gatewayClient, cfg, logger)

	// Background workers: recover jobs orphaned by a previous crash, then
	// start the pool.
	requeued, err := jobStore.RequeueStale(context.Background())
	if err != nil {
		logger.Fatal("Failed to requeue stale jobs", "error", err)
	}
	if requeued > 0 {
		logger.Info("Requeued stale jobs", "count", requeued)
	}

	worker := queue.NewWorker(jobStore, cfg.WorkerCount, logger)
	worker.Register(services.JobProcessWordCount, uploadService.JobHandler())
	worker.Start(context.Background())

	// Setup HTTP router
	handler := router.NewRouter(uploadService, paymentService, recorder, cfg.MaxFileSize, logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("Starting server", "port", cfg.Port)
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
		logger.Fatal("Server forced to shutdown", "error", err)
	}

	// Let in-flight jobs finish; unfinished ones are requeued next start.
	worker.Stop()

	logger.Info("Server exited")
}
