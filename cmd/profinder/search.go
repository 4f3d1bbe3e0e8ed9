package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/professional-finder/internal/config"
	"github.com/jonathan/professional-finder/internal/db"
	"github.com/jonathan/professional-finder/internal/discovery"
	"github.com/jonathan/professional-finder/internal/observability"
	"github.com/jonathan/professional-finder/internal/scraping"
	"github.com/jonathan/professional-finder/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search <city>",
	Short: "Find and store professionals for a city",
	Long:  "Runs the discovery pipeline for one city: scraper first, AI fallback second, then normalization, deduplication, and persistence. Prints a summary of what each source contributed.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

var (
	searchConfigPath  string
	searchMaxResults  int
	searchAIOnly      bool
	searchScraperOnly bool
	searchVerbose     bool
)

func init() {
	searchCmd.Flags().StringVarP(&searchConfigPath, "config", "c", "", "Path to JSON config file (overrides environment)")
	searchCmd.Flags().IntVarP(&searchMaxResults, "max-results", "n", 0, "Maximum records to request from each source")
	searchCmd.Flags().BoolVar(&searchAIOnly, "ai-only", false, "Skip the scraper and use AI generation directly")
	searchCmd.Flags().BoolVar(&searchScraperOnly, "scraper-only", false, "Disable the AI fallback")
	searchCmd.Flags().BoolVarP(&searchVerbose, "verbose", "v", false, "Print the persisted records")

	rootCmd.AddCommand(searchCmd)
}

func loadConfig(path string) (config.Config, error) {
	cfg := config.FromEnv()
	if path != "" {
		fileCfg, err := config.LoadFile(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = fileCfg.MergeWithDefaults(cfg)
	}
	return cfg, nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	city := args[0]
	ctx := cmd.Context()

	cfg, err := loadConfig(searchConfigPath)
	if err != nil {
		return err
	}
	if searchMaxResults > 0 {
		cfg.MaxResults = searchMaxResults
	}
	if searchAIOnly {
		cfg.UseScraperSource = false
	}
	if searchScraperOnly {
		cfg.AIFallbackEnabled = false
	}
	if searchVerbose {
		cfg.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
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

	var actor search.ActorClient
	if cfg.ScraperEnabled() {
		client, err := scraping.NewClient(cfg.ApifyToken, cfg.ApifyActorID, &scraping.ClientConfig{
			PollInterval: time.Duration(cfg.PollIntervalSeconds) * time.Second,
			PollTimeout:  time.Duration(cfg.PollTimeoutSeconds) * time.Second,
		})
		if err != nil {
			return err
		}
		actor = client
	}

	var ai search.Discoverer
	if cfg.AIEnabled() {
		client, err := discovery.NewClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()
		ai = client
	}

	summary, err := search.New(cfg, actor, ai, store).Search(ctx, city)
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintSummary(summary)
	if cfg.Verbose && len(summary.Records) > 0 {
		printer.PrintProfessionals(summary.Records)
	}
	return nil
}
