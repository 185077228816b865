package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shahramhal/ai-career-coach/internal/config"
	"github.com/shahramhal/ai-career-coach/internal/db"
	"github.com/shahramhal/ai-career-coach/internal/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(_ *cobra.Command, _ []string) error {
	log, err := logger.New(logJSON, logDebug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	serverConfig, err := config.NewServerConfig()
	if err != nil {
		return fmt.Errorf("failed to load server config: %w", err)
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, serverConfig.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Info("migrations applied")
	return nil
}
