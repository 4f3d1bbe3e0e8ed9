// Package main implements the profinder CLI for discovering and storing
// professional profiles by city.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "profinder",
	Short: "Professional profile discovery pipeline",
	Long:  "profinder finds professionals in a given city by running a remote scraping actor, falling back to AI generation when scraping yields nothing, and stores deduplicated canonical records in PostgreSQL.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
