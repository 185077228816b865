package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shahramhal/ai-career-coach/internal/config"
	"github.com/shahramhal/ai-career-coach/internal/db"
	"github.com/shahramhal/ai-career-coach/internal/logger"
	"github.com/shahramhal/ai-career-coach/internal/queue"
	"github.com/shahramhal/ai-career-coach/internal/storage"
	"github.com/shahramhal/ai-career-coach/internal/worker"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the CV parsing worker",
	Long:  `Consume CV parse tasks from the queue: extract text, parse sections, validate the document and store the ATS report.`,
	RunE:  runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(_ *cobra.Command, _ []string) error {
	log, err := logger.New(logJSON, logDebug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverConfig, err := config.NewServerConfig()
	if err != nil {
		return fmt.Errorf("failed to load server config: %w", err)
	}
	database, err := db.Connect(ctx, serverConfig.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	storageConfig, err := config.NewStorageConfig()
	if err != nil {
		return fmt.Errorf("failed to load storage config: %w", err)
	}
	store, err := storage.New(ctx, storageConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	queueConfig, err := config.NewQueueConfig()
	if err != nil {
		return fmt.Errorf("failed to load queue config: %w", err)
	}
	if !queueConfig.Enabled() {
		return fmt.Errorf("AMQP_URL is required to run the worker")
	}
	q, err := queue.Connect(queueConfig.URL, queueConfig.QueueName, log)
	if err != nil {
		return fmt.Errorf("failed to connect to queue: %w", err)
	}
	defer q.Close() //nolint:errcheck

	pipeline := worker.New(database, store, queueConfig.MaxAttempts, log)

	log.Info("worker starting", zap.String("queue", queueConfig.QueueName))
	err = q.Consume(ctx, func(ctx context.Context, job queue.ParseJob) error {
		return pipeline.Process(ctx, job.CVID)
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("consumer stopped: %w", err)
	}

	log.Info("worker stopped")
	return nil
}
