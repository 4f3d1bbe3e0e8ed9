package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/professional-finder/internal/config"
	"github.com/jonathan/professional-finder/internal/scraping"
	"github.com/jonathan/professional-finder/internal/types"
)

type fakeActor struct {
	startErr    error
	finalStatus scraping.Status
	dataset     []map[string]any
	datasetErr  error
}

func (f *fakeActor) Start(_ context.Context, _ string, _ int) (*scraping.Run, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}
	return &scraping.Run{ID: "run-1", Status: scraping.StatusRunning}, nil
}

func (f *fakeActor) AwaitCompletion(_ context.Context, run *scraping.Run) (*scraping.Run, error) {
	done := *run
	done.Status = f.finalStatus
	done.DatasetID = "ds-1"
	return &done, nil
}

func (f *fakeActor) FetchDataset(_ context.Context, _ *scraping.Run, _ int) ([]map[string]any, error) {
	if f.datasetErr != nil {
		return nil, f.datasetErr
	}
	return f.dataset, nil
}

type fakeDiscoverer struct {
	records []map[string]any
	err     error
	calls   int
}

func (f *fakeDiscoverer) Discover(_ context.Context, _ string, _ int) ([]map[string]any, error) {
	f.calls++
	return f.records, f.err
}

type fakeStore struct {
	existing map[string]*types.Professional
	inserted []*types.Professional
}

func newFakeStore() *fakeStore {
	return &fakeStore{existing: make(map[string]*types.Professional)}
}

func (f *fakeStore) FindByIdentity(_ context.Context, firstName, lastName, company, city string) (*types.Professional, error) {
	return f.existing[types.IdentityKeyOf(firstName, lastName, company, city)], nil
}

func (f *fakeStore) InsertMany(_ context.Context, records []*types.Professional) (int, error) {
	count := 0
	for _, p := range records {
		key := p.IdentityKey()
		if _, ok := f.existing[key]; ok {
			continue
		}
		f.existing[key] = p
		f.inserted = append(f.inserted, p)
		count++
	}
	return count, nil
}

func scraperRecord(first, last, company string) map[string]any {
	return map[string]any{
		"fullName": first + " " + last,
		"jobTitle": "Engineer",
		"company":  company,
	}
}

func aiRecord(first, last, company, city string) map[string]any {
	return map[string]any{
		"first_name": first,
		"last_name":  last,
		"job_title":  "Engineer",
		"company":    company,
		"city":       city,
	}
}

func bothSourcesConfig() config.Config {
	cfg := config.Config{
		ApifyToken:        "token",
		GeminiAPIKey:      "key",
		UseScraperSource:  true,
		AIFallbackEnabled: true,
	}
	cfg.ApplyDefaults()
	return cfg
}

func findAttempt(t *testing.T, attempts []SourceAttempt, source types.Source) SourceAttempt {
	t.Helper()
	for _, a := range attempts {
		if a.Source == source {
			return a
		}
	}
	t.Fatalf("no attempt recorded for source %s", source)
	return SourceAttempt{}
}

func TestSearchScraperHappyPath(t *testing.T) {
	actor := &fakeActor{
		finalStatus: scraping.StatusSucceeded,
		dataset: []map[string]any{
			scraperRecord("Jane", "Doe", "Acme"),
			scraperRecord("John", "Roe", "Globex"),
			scraperRecord("Mary", "Poe", "Initech"),
		},
	}
	ai := &fakeDiscoverer{}
	store := newFakeStore()

	summary, err := New(bothSourcesConfig(), actor, ai, store).Search(context.Background(), "Austin")
	require.NoError(t, err)

	assert.Equal(t, 3, summary.RawSeen)
	assert.Equal(t, 3, summary.Normalized)
	assert.Equal(t, 0, summary.Duplicates)
	assert.Equal(t, 3, summary.Persisted)
	assert.Equal(t, []types.Source{types.SourceScraper}, summary.Sources)
	assert.Len(t, store.inserted, 3)
	assert.Equal(t, 0, ai.calls, "fallback must not run when the scraper produced records")

	attempt := findAttempt(t, summary.Attempts, types.SourceScraper)
	assert.Equal(t, AttemptOK, attempt.Status)
}

func TestSearchEmptyScraperFallsBackToAI(t *testing.T) {
	actor := &fakeActor{finalStatus: scraping.StatusSucceeded, dataset: []map[string]any{}}
	ai := &fakeDiscoverer{records: []map[string]any{
		aiRecord("Jane", "Doe", "Acme", "Austin"),
		aiRecord("John", "Roe", "Globex", "Austin"),
	}}
	store := newFakeStore()

	summary, err := New(bothSourcesConfig(), actor, ai, store).Search(context.Background(), "Austin")
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Persisted)
	assert.Equal(t, []types.Source{types.SourceAI}, summary.Sources)

	scraperAttempt := findAttempt(t, summary.Attempts, types.SourceScraper)
	assert.Equal(t, AttemptEmpty, scraperAttempt.Status, "zero records is an empty attempt, not a failure")
	aiAttempt := findAttempt(t, summary.Attempts, types.SourceAI)
	assert.Equal(t, AttemptOK, aiAttempt.Status)

	for _, p := range store.inserted {
		assert.Equal(t, types.SourceAI, p.Source)
	}
}

func TestSearchLaunchFailureWithoutFallbackIsHardFailure(t *testing.T) {
	cfg := bothSourcesConfig()
	cfg.AIFallbackEnabled = false
	actor := &fakeActor{startErr: &scraping.LaunchError{Message: "bad credentials"}}

	_, err := New(cfg, actor, &fakeDiscoverer{}, newFakeStore()).Search(context.Background(), "Austin")

	var unavailable *NoSourceAvailableError
	require.True(t, errors.As(err, &unavailable), "expected NoSourceAvailableError, got %v", err)
	assert.Equal(t, "Austin", unavailable.City)
}

func TestSearchWithinBatchDuplicateSuppressed(t *testing.T) {
	actor := &fakeActor{
		finalStatus: scraping.StatusSucceeded,
		dataset: []map[string]any{
			scraperRecord("Jane", "Doe", "Acme"),
			scraperRecord("JANE", "DOE", "acme"),
		},
	}
	store := newFakeStore()

	summary, err := New(bothSourcesConfig(), actor, &fakeDiscoverer{}, store).Search(context.Background(), "Austin")
	require.NoError(t, err)

	assert.Equal(t, 2, summary.RawSeen)
	assert.Equal(t, 1, summary.Duplicates)
	assert.Equal(t, 1, summary.Persisted)
	assert.Len(t, store.inserted, 1)
}

func TestSearchSuppressesRecordsAlreadyInStore(t *testing.T) {
	store := newFakeStore()
	existing := &types.Professional{
		UniqueID: "old", FirstName: "Jane", LastName: "Doe",
		Company: "Acme", City: "austin", Source: types.SourceAI,
	}
	store.existing[existing.IdentityKey()] = existing

	actor := &fakeActor{
		finalStatus: scraping.StatusSucceeded,
		dataset:     []map[string]any{scraperRecord("Jane", "Doe", "Acme")},
	}

	summary, err := New(bothSourcesConfig(), actor, &fakeDiscoverer{}, store).Search(context.Background(), "Austin")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Duplicates, "existing record with a different source is still a duplicate")
	assert.Equal(t, 0, summary.Persisted)
	assert.Empty(t, store.inserted)
}

func TestSearchDiscardsNamelessRecords(t *testing.T) {
	actor := &fakeActor{
		finalStatus: scraping.StatusSucceeded,
		dataset: []map[string]any{
			{"jobTitle": "Engineer", "company": "Acme"},
			scraperRecord("Jane", "Doe", "Acme"),
		},
	}
	store := newFakeStore()

	summary, err := New(bothSourcesConfig(), actor, &fakeDiscoverer{}, store).Search(context.Background(), "Austin")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Discarded)
	assert.Equal(t, 1, summary.Persisted)
}

func TestSearchScraperFailureFallsBackToAI(t *testing.T) {
	actor := &fakeActor{finalStatus: scraping.StatusTimedOut}
	ai := &fakeDiscoverer{records: []map[string]any{aiRecord("Jane", "Doe", "Acme", "Austin")}}
	store := newFakeStore()

	summary, err := New(bothSourcesConfig(), actor, ai, store).Search(context.Background(), "Austin")
	require.NoError(t, err)

	scraperAttempt := findAttempt(t, summary.Attempts, types.SourceScraper)
	assert.Equal(t, AttemptFailed, scraperAttempt.Status)
	assert.Equal(t, 1, summary.Persisted)
	assert.Equal(t, []types.Source{types.SourceAI}, summary.Sources)
}

func TestSearchAllSourcesFailedIsHardFailure(t *testing.T) {
	actor := &fakeActor{finalStatus: scraping.StatusFailed}
	ai := &fakeDiscoverer{err: errors.New("generation error: model call failed")}

	_, err := New(bothSourcesConfig(), actor, ai, newFakeStore()).Search(context.Background(), "Austin")

	var unavailable *NoSourceAvailableError
	require.True(t, errors.As(err, &unavailable))
}

func TestSearchEmptyScraperThenFailedAIIsEmptyNotFatal(t *testing.T) {
	actor := &fakeActor{finalStatus: scraping.StatusSucceeded, dataset: []map[string]any{}}
	ai := &fakeDiscoverer{err: errors.New("generation error: model call failed")}

	summary, err := New(bothSourcesConfig(), actor, ai, newFakeStore()).Search(context.Background(), "Austin")
	require.NoError(t, err, "one successful-but-empty attempt keeps the search non-fatal")

	assert.Equal(t, 0, summary.Persisted)
	assert.Equal(t, AttemptEmpty, findAttempt(t, summary.Attempts, types.SourceScraper).Status)
	assert.Equal(t, AttemptFailed, findAttempt(t, summary.Attempts, types.SourceAI).Status)
}

func TestSearchNoSourcesConfigured(t *testing.T) {
	cfg := config.Config{UseScraperSource: false, AIFallbackEnabled: false}
	cfg.ApplyDefaults()

	_, err := New(cfg, &fakeActor{}, &fakeDiscoverer{}, newFakeStore()).Search(context.Background(), "Austin")

	var unavailable *NoSourceAvailableError
	require.True(t, errors.As(err, &unavailable))
	assert.ErrorContains(t, err, "no data source is configured")
}

func TestSearchScraperDisabledGoesDirectlyToAI(t *testing.T) {
	cfg := bothSourcesConfig()
	cfg.UseScraperSource = false
	ai := &fakeDiscoverer{records: []map[string]any{aiRecord("Jane", "Doe", "Acme", "Austin")}}

	summary, err := New(cfg, &fakeActor{}, ai, newFakeStore()).Search(context.Background(), "Austin")
	require.NoError(t, err)

	assert.Equal(t, AttemptSkipped, findAttempt(t, summary.Attempts, types.SourceScraper).Status)
	assert.Equal(t, 1, summary.Persisted)
}

func TestSearchDedupIdempotence(t *testing.T) {
	// Normalizing the same raw record twice must persist exactly once.
	raw := scraperRecord("Jane", "Doe", "Acme")
	actor := &fakeActor{
		finalStatus: scraping.StatusSucceeded,
		dataset:     []map[string]any{raw, raw},
	}
	store := newFakeStore()

	summary, err := New(bothSourcesConfig(), actor, &fakeDiscoverer{}, store).Search(context.Background(), "Austin")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Persisted)
	assert.Equal(t, 1, summary.Duplicates)
	require.Len(t, store.inserted, 1)
	assert.NotEmpty(t, store.inserted[0].UniqueID)
}
