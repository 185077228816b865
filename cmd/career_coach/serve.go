package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shahramhal/ai-career-coach/internal/logger"
	"github.com/shahramhal/ai-career-coach/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the accounts, profiles, jobs, CVs, matching and analytics endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	log, err := logger.New(logJSON, logDebug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	srv, err := server.New(context.Background(), server.Config{Port: servePort}, log)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
