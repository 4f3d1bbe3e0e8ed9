// Package search orchestrates the professional discovery pipeline: scraper
// first, AI fallback second, then normalization, deduplication, and
// persistence.
package search

import (
	"context"
	"fmt"

	"github.com/jonathan/professional-finder/internal/config"
	"github.com/jonathan/professional-finder/internal/dedup"
	"github.com/jonathan/professional-finder/internal/normalizing"
	"github.com/jonathan/professional-finder/internal/scraping"
	"github.com/jonathan/professional-finder/internal/types"
)

// ActorClient is the scraper-side collaborator.
type ActorClient interface {
	Start(ctx context.Context, city string, maxResults int) (*scraping.Run, error)
	AwaitCompletion(ctx context.Context, run *scraping.Run) (*scraping.Run, error)
	FetchDataset(ctx context.Context, run *scraping.Run, limit int) ([]map[string]any, error)
}

// Discoverer is the generative fallback collaborator.
type Discoverer interface {
	Discover(ctx context.Context, city string, maxResults int) ([]map[string]any, error)
}

// Store is the persistence collaborator. InsertMany must be idempotent with
// respect to records whose identity key is already present.
type Store interface {
	dedup.Lookup
	InsertMany(ctx context.Context, records []*types.Professional) (int, error)
}

// AttemptStatus describes the outcome of one source attempt.
type AttemptStatus string

// Source attempt outcomes. Empty is a successful attempt that produced no
// records; only Failed counts against source availability.
const (
	AttemptOK      AttemptStatus = "ok"
	AttemptEmpty   AttemptStatus = "empty"
	AttemptFailed  AttemptStatus = "failed"
	AttemptSkipped AttemptStatus = "skipped"
)

// SourceAttempt records what happened when one source was tried.
type SourceAttempt struct {
	Source   types.Source
	Status   AttemptStatus
	RawCount int
	Detail   string
}

// Summary is the coordinator's public result, consumed by the display layer.
type Summary struct {
	City       string
	RawSeen    int
	Normalized int
	Discarded  int
	Duplicates int
	Persisted  int
	Sources    []types.Source
	Attempts   []SourceAttempt
	Records    []*types.Professional
}

// Search invocation states.
type state int

const (
	stateStart state = iota
	stateScraper
	stateAIFallback
	stateNormalize
	statePersist
	stateDone
	stateDoneEmpty
)

// Coordinator runs one search invocation at a time. Sources are attempted
// strictly sequentially; the fallback runs only when the primary yields
// nothing usable.
type Coordinator struct {
	cfg   config.Config
	actor ActorClient
	ai    Discoverer
	store Store
}

// New creates a coordinator. actor and ai may be nil when the corresponding
// source is not configured.
func New(cfg config.Config, actor ActorClient, ai Discoverer, store Store) *Coordinator {
	return &Coordinator{cfg: cfg, actor: actor, ai: ai, store: store}
}

// Search finds professionals in city, persists the novel ones, and reports
// per-source provenance. Individual source failures are recorded in the
// summary; the only hard failures are context cancellation, storage errors,
// and NoSourceAvailableError.
func (c *Coordinator) Search(ctx context.Context, city string) (*Summary, error) {
	summary := &Summary{City: city}

	var raw []map[string]any
	var rawSource types.Source

	current := stateStart
	for current != stateDone && current != stateDoneEmpty {
		switch current {
		case stateStart:
			if c.cfg.ScraperEnabled() && c.actor != nil {
				current = stateScraper
				continue
			}
			summary.Attempts = append(summary.Attempts, SourceAttempt{
				Source: types.SourceScraper,
				Status: AttemptSkipped,
				Detail: "scraper source disabled or not configured",
			})
			current = stateAIFallback

		case stateScraper:
			records, attempt, err := c.runScraper(ctx, city)
			if err != nil {
				return nil, err
			}
			summary.Attempts = append(summary.Attempts, attempt)
			summary.RawSeen += attempt.RawCount
			if attempt.Status == AttemptOK {
				raw, rawSource = records, types.SourceScraper
				current = stateNormalize
				continue
			}
			current = stateAIFallback

		case stateAIFallback:
			if !c.cfg.AIEnabled() || c.ai == nil {
				summary.Attempts = append(summary.Attempts, SourceAttempt{
					Source: types.SourceAI,
					Status: AttemptSkipped,
					Detail: "AI fallback disabled or not configured",
				})
				current = stateDoneEmpty
				continue
			}
			records, attempt, err := c.runAI(ctx, city)
			if err != nil {
				return nil, err
			}
			summary.Attempts = append(summary.Attempts, attempt)
			summary.RawSeen += attempt.RawCount
			if attempt.Status == AttemptOK {
				raw, rawSource = records, types.SourceAI
				current = stateNormalize
				continue
			}
			current = stateDoneEmpty

		case stateNormalize:
			batch := dedup.NewBatch(c.store)
			for _, rec := range raw {
				p := normalizing.Normalize(rec, rawSource, city)
				if !p.HasName() {
					summary.Discarded++
					continue
				}
				summary.Normalized++

				dup, err := batch.IsDuplicate(ctx, p)
				if err != nil {
					return nil, err
				}
				if dup {
					summary.Duplicates++
					continue
				}
				summary.Records = append(summary.Records, p)
			}
			current = statePersist

		case statePersist:
			if len(summary.Records) == 0 {
				current = stateDoneEmpty
				continue
			}
			inserted, err := c.store.InsertMany(ctx, summary.Records)
			if err != nil {
				return nil, fmt.Errorf("failed to persist records: %w", err)
			}
			summary.Persisted = inserted
			summary.Sources = append(summary.Sources, rawSource)
			current = stateDone
		}
	}

	if current == stateDoneEmpty {
		if err := checkSourceAvailability(city, summary.Attempts); err != nil {
			return nil, err
		}
	}
	return summary, nil
}

// checkSourceAvailability enforces the hard-failure policy for empty
// outcomes: some source must have been attempted, and at least one attempted
// source must not have failed outright.
func checkSourceAvailability(city string, attempts []SourceAttempt) error {
	attempted, failed := 0, 0
	for _, a := range attempts {
		if a.Status == AttemptSkipped {
			continue
		}
		attempted++
		if a.Status == AttemptFailed {
			failed++
		}
	}
	if attempted == 0 {
		return &NoSourceAvailableError{City: city, Message: "no data source is configured"}
	}
	if attempted == failed {
		return &NoSourceAvailableError{City: city, Message: "all configured sources failed"}
	}
	return nil
}

// runScraper drives one actor run end to end. Failures are folded into the
// attempt record; only context cancellation surfaces as an error.
func (c *Coordinator) runScraper(ctx context.Context, city string) ([]map[string]any, SourceAttempt, error) {
	attempt := SourceAttempt{Source: types.SourceScraper}

	run, err := c.actor.Start(ctx, city, c.cfg.MaxResults)
	if err != nil {
		if ctx.Err() != nil {
			return nil, attempt, ctx.Err()
		}
		attempt.Status = AttemptFailed
		attempt.Detail = err.Error()
		return nil, attempt, nil
	}

	run, err = c.actor.AwaitCompletion(ctx, run)
	if err != nil {
		return nil, attempt, err
	}
	if run.Status != scraping.StatusSucceeded {
		attempt.Status = AttemptFailed
		attempt.Detail = fmt.Sprintf("run %s finished with status %s", run.ID, run.Status)
		return nil, attempt, nil
	}

	records, err := c.actor.FetchDataset(ctx, run, c.cfg.MaxResults)
	if err != nil {
		if ctx.Err() != nil {
			return nil, attempt, ctx.Err()
		}
		attempt.Status = AttemptFailed
		attempt.Detail = err.Error()
		return nil, attempt, nil
	}

	attempt.RawCount = len(records)
	if len(records) == 0 {
		attempt.Status = AttemptEmpty
	} else {
		attempt.Status = AttemptOK
	}
	return records, attempt, nil
}

func (c *Coordinator) runAI(ctx context.Context, city string) ([]map[string]any, SourceAttempt, error) {
	attempt := SourceAttempt{Source: types.SourceAI}

	records, err := c.ai.Discover(ctx, city, c.cfg.MaxResults)
	if err != nil {
		if ctx.Err() != nil {
			return nil, attempt, ctx.Err()
		}
		attempt.Status = AttemptFailed
		attempt.Detail = err.Error()
		return nil, attempt, nil
	}

	attempt.RawCount = len(records)
	if len(records) == 0 {
		attempt.Status = AttemptEmpty
	} else {
		attempt.Status = AttemptOK
	}
	return records, attempt, nil
}
