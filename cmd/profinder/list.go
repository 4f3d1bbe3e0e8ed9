package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/professional-finder/internal/config"
	"github.com/jonathan/professional-finder/internal/db"
	"github.com/jonathan/professional-finder/internal/observability"
	"github.com/jonathan/professional-finder/internal/types"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored professionals",
	Long:  "Lists stored professionals, optionally filtered by city.",
	RunE:  runList,
}

var (
	listCity  string
	listLimit int
)

func init() {
	listCmd.Flags().StringVar(&listCity, "city", "", "Only list professionals in this city")
	listCmd.Flags().IntVar(&listLimit, "limit", 100, "Maximum number of records to list")

	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
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

	var records []*types.Professional
	if listCity != "" {
		records, err = store.ListByCity(ctx, listCity)
	} else {
		records, err = store.ListAll(ctx, listLimit)
	}
	if err != nil {
		return err
	}

	observability.NewPrinter(os.Stdout).PrintProfessionals(records)
	return nil
}
