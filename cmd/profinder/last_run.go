package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/professional-finder/internal/config"
	"github.com/jonathan/professional-finder/internal/observability"
	"github.com/jonathan/professional-finder/internal/scraping"
)

var lastRunCmd = &cobra.Command{
	Use:   "last-run",
	Short: "Show the most recent actor run",
	Long:  "Fetches the status of the most recent scraping actor run from the remote platform.",
	RunE:  runLastRun,
}

func init() {
	rootCmd.AddCommand(lastRunCmd)
}

func runLastRun(cmd *cobra.Command, _ []string) error {
	cfg := config.FromEnv()
	if cfg.ApifyToken == "" {
		return fmt.Errorf("APIFY_TOKEN is not set")
	}

	client, err := scraping.NewClient(cfg.ApifyToken, cfg.ApifyActorID, nil)
	if err != nil {
		return err
	}

	run, err := client.LastRun(cmd.Context())
	if err != nil {
		return err
	}

	observability.NewPrinter(os.Stdout).PrintRun(run)
	return nil
}
