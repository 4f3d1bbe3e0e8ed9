// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Default values applied when neither the environment nor a config file
// provides a setting.
const (
	DefaultActorID             = "harvestapi~linkedin-profile-search"
	DefaultMaxResults          = 10
	DefaultPollIntervalSeconds = 5
	DefaultPollTimeoutSeconds  = 300
)

// Config holds all recognized application settings. It is passed by value
// into the search coordinator so a running search never observes mutation.
// Missing credentials disable the corresponding source instead of erroring.
type Config struct {
	// Credentials and endpoints
	DatabaseURL  string `json:"database_url,omitempty"`
	ApifyToken   string `json:"apify_token,omitempty"`
	ApifyActorID string `json:"apify_actor_id,omitempty"`
	GeminiAPIKey string `json:"gemini_api_key,omitempty"`

	// Source strategy
	UseScraperSource  bool `json:"use_scraper_source"`
	AIFallbackEnabled bool `json:"ai_fallback_enabled"`

	// Limits
	MaxResults          int `json:"max_results,omitempty"`
	PollIntervalSeconds int `json:"poll_interval_seconds,omitempty"`
	PollTimeoutSeconds  int `json:"poll_timeout_seconds,omitempty"`

	// Behavior
	Verbose bool `json:"verbose,omitempty"`
}

// FromEnv builds a Config from environment variables. Callers are expected
// to have loaded .env already (godotenv in main).
func FromEnv() Config {
	cfg := Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		ApifyToken:        os.Getenv("APIFY_TOKEN"),
		ApifyActorID:      os.Getenv("APIFY_ACTOR_ID"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		UseScraperSource:  envBool("USE_SCRAPER_SOURCE", true),
		AIFallbackEnabled: envBool("AI_FALLBACK_ENABLED", true),
	}
	cfg.MaxResults = envInt("MAX_RESULTS", 0)
	cfg.PollIntervalSeconds = envInt("POLL_INTERVAL_SECONDS", 0)
	cfg.PollTimeoutSeconds = envInt("POLL_TIMEOUT_SECONDS", 0)
	cfg.ApplyDefaults()
	return cfg
}

// LoadFile loads configuration overrides from a JSON file.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. Existing values win over defaults.
func (c Config) MergeWithDefaults(defaults Config) Config {
	result := c

	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.ApifyToken == "" {
		result.ApifyToken = defaults.ApifyToken
	}
	if result.ApifyActorID == "" {
		result.ApifyActorID = defaults.ApifyActorID
	}
	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if result.MaxResults == 0 {
		result.MaxResults = defaults.MaxResults
	}
	if result.PollIntervalSeconds == 0 {
		result.PollIntervalSeconds = defaults.PollIntervalSeconds
	}
	if result.PollTimeoutSeconds == 0 {
		result.PollTimeoutSeconds = defaults.PollTimeoutSeconds
	}
	// Bool fields: cannot distinguish unset from false, so flags and env
	// always win for bools.

	result.ApplyDefaults()
	return result
}

// ApplyDefaults fills zero-valued settings with the documented defaults.
func (c *Config) ApplyDefaults() {
	if c.ApifyActorID == "" {
		c.ApifyActorID = DefaultActorID
	}
	if c.MaxResults == 0 {
		c.MaxResults = DefaultMaxResults
	}
	if c.PollIntervalSeconds == 0 {
		c.PollIntervalSeconds = DefaultPollIntervalSeconds
	}
	if c.PollTimeoutSeconds == 0 {
		c.PollTimeoutSeconds = DefaultPollTimeoutSeconds
	}
}

// Validate checks numeric ranges. Credential absence is not an error; it
// disables the corresponding source.
func (c *Config) Validate() error {
	if c.MaxResults < 0 {
		return fmt.Errorf("config error: 'max_results' must be non-negative")
	}
	if c.PollIntervalSeconds < 0 {
		return fmt.Errorf("config error: 'poll_interval_seconds' must be non-negative")
	}
	if c.PollTimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'poll_timeout_seconds' must be non-negative")
	}
	return nil
}

// ScraperEnabled reports whether the actor-run source can be attempted.
func (c *Config) ScraperEnabled() bool {
	return c.UseScraperSource && c.ApifyToken != ""
}

// AIEnabled reports whether the generative fallback can be attempted.
func (c *Config) AIEnabled() bool {
	return c.AIFallbackEnabled && c.GeminiAPIKey != ""
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return parsed
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return parsed
}
