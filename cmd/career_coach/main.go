// Package main provides the entry point for the career coach platform.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	logJSON  bool
	logDebug bool
)

var rootCmd = &cobra.Command{
	Use:   "career_coach",
	Short: "AI career coaching platform",
	Long:  "Career coach serves the REST API and runs the CV parsing worker: accounts, career profiles, job postings, CV parsing with ATS scoring, job matching and salary estimates.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Log in JSON format")
	rootCmd.PersistentFlags().BoolVar(&logDebug, "debug", false, "Enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
