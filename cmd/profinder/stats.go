package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/professional-finder/internal/config"
	"github.com/jonathan/professional-finder/internal/db"
	"github.com/jonathan/professional-finder/internal/observability"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store statistics",
	Long:  "Shows how many professionals are stored, broken down by source and by city.",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg := config.FromEnv()
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}

	store, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	total, err := store.CountAll(ctx)
	if err != nil {
		return err
	}
	bySource, err := store.CountBySource(ctx)
	if err != nil {
		return err
	}
	byCity, err := store.CountByCity(ctx)
	if err != nil {
		return err
	}

	observability.NewPrinter(os.Stdout).PrintStats(total, bySource, byCity)
	return nil
}
