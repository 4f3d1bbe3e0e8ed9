package scraping

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultBaseURL is the actor platform API root.
const DefaultBaseURL = "https://api.apify.com/v2"

// DefaultHTTPTimeout bounds each individual API call, independently of the
// overall polling budget.
const DefaultHTTPTimeout = 30 * time.Second

// Polling defaults; overridable via ClientConfig.
const (
	DefaultPollInterval = 5 * time.Second
	DefaultPollTimeout  = 5 * time.Minute
	DefaultPollRetries  = 3
)

// minActorItems is the smallest maxItems the profile-search actor accepts.
const minActorItems = 10

// ClientConfig configures a Client. Zero values use the defaults above.
type ClientConfig struct {
	BaseURL      string
	HTTPClient   *http.Client
	PollInterval time.Duration
	PollTimeout  time.Duration
	PollRetries  int
	Clock        Clock
}

// DefaultClientConfig returns sensible defaults for production use.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:      DefaultBaseURL,
		HTTPClient:   &http.Client{Timeout: DefaultHTTPTimeout},
		PollInterval: DefaultPollInterval,
		PollTimeout:  DefaultPollTimeout,
		PollRetries:  DefaultPollRetries,
		Clock:        systemClock{},
	}
}

// Client launches actor runs, polls them to completion, and retrieves their
// output datasets. It holds no per-run state between invocations.
type Client struct {
	baseURL      string
	token        string
	actorID      string
	httpClient   *http.Client
	pollInterval time.Duration
	pollTimeout  time.Duration
	pollRetries  int
	clock        Clock
}

// NewClient creates a new actor run client for the given actor.
func NewClient(token, actorID string, cfg *ClientConfig) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("API token is required")
	}
	if actorID == "" {
		return nil, fmt.Errorf("actor ID is required")
	}
	if cfg == nil {
		cfg = DefaultClientConfig()
	}

	c := &Client{
		baseURL:      cfg.BaseURL,
		token:        token,
		actorID:      actorID,
		httpClient:   cfg.HTTPClient,
		pollInterval: cfg.PollInterval,
		pollTimeout:  cfg.PollTimeout,
		pollRetries:  cfg.PollRetries,
		clock:        cfg.Clock,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	if c.pollInterval <= 0 {
		c.pollInterval = DefaultPollInterval
	}
	if c.pollTimeout <= 0 {
		c.pollTimeout = DefaultPollTimeout
	}
	if c.pollRetries <= 0 {
		c.pollRetries = DefaultPollRetries
	}
	if c.clock == nil {
		c.clock = systemClock{}
	}
	return c, nil
}

// runEnvelope is the platform's response wrapper for run objects.
type runEnvelope struct {
	Data struct {
		ID               string `json:"id"`
		Status           string `json:"status"`
		DefaultDatasetID string `json:"defaultDatasetId"`
	} `json:"data"`
}

// Start launches an actor run searching the given city, capped at
// maxResults items. The actor requires maxItems of at least 10; smaller
// caps are floored and trimmed after retrieval.
func (c *Client) Start(ctx context.Context, city string, maxResults int) (*Run, error) {
	items := maxResults
	if items < minActorItems {
		items = minActorItems
	}

	input := map[string]any{
		"locations": []string{city},
		"maxItems":  items,
	}
	body, err := json.Marshal(input)
	if err != nil {
		return nil, &LaunchError{Message: "failed to encode actor input", Cause: err}
	}

	url := fmt.Sprintf("%s/acts/%s/runs", c.baseURL, c.actorID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &LaunchError{Message: "failed to create launch request", Cause: err}
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &LaunchError{Message: "launch request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		return nil, &LaunchError{Message: fmt.Sprintf("actor run rejected with HTTP status %d", resp.StatusCode)}
	}

	var envelope runEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, &LaunchError{Message: "failed to decode launch response", Cause: err}
	}
	if envelope.Data.ID == "" {
		return nil, &LaunchError{Message: "no run id in launch response"}
	}

	return &Run{
		ID:        envelope.Data.ID,
		Status:    mapStatus(envelope.Data.Status),
		DatasetID: envelope.Data.DefaultDatasetID,
	}, nil
}

// AwaitCompletion polls the run until it reaches a terminal state or the
// poll budget is exhausted. Exceeding the budget yields StatusTimedOut and
// repeated poll failures yield StatusFailed; neither is returned as an
// error, so callers can decide to fall back. Context cancellation is the
// only way this returns an error.
func (c *Client) AwaitCompletion(ctx context.Context, run *Run) (*Run, error) {
	result := *run
	if result.Status.Terminal() {
		return &result, nil
	}

	deadline := c.clock.Now().Add(c.pollTimeout)
	failures := 0

	for {
		status, datasetID, err := c.pollRun(ctx, result.ID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			failures++
			if failures > c.pollRetries {
				result.Status = StatusFailed
				return &result, nil
			}
		} else {
			failures = 0
			result.Status = status
			if datasetID != "" {
				result.DatasetID = datasetID
			}
			if status.Terminal() {
				return &result, nil
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-c.clock.After(c.pollInterval):
		}

		if !c.clock.Now().Before(deadline) {
			result.Status = StatusTimedOut
			return &result, nil
		}
	}
}

// pollRun fetches the current status of a run.
func (c *Client) pollRun(ctx context.Context, runID string) (Status, string, error) {
	url := fmt.Sprintf("%s/actor-runs/%s", c.baseURL, runID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", "", &PollError{RunID: runID, Message: "failed to create status request", Cause: err}
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", &PollError{RunID: runID, Message: "status request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", "", &PollError{RunID: runID, Message: fmt.Sprintf("status request returned HTTP %d", resp.StatusCode)}
	}

	var envelope runEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", "", &PollError{RunID: runID, Message: "failed to decode status response", Cause: err}
	}
	if envelope.Data.Status == "" {
		return "", "", &PollError{RunID: runID, Message: "no status in response"}
	}

	return mapStatus(envelope.Data.Status), envelope.Data.DefaultDatasetID, nil
}

// FetchDataset retrieves the output items of a succeeded run, resolving the
// dataset id with a secondary call when the run handle lacks one. An empty
// but well-formed dataset returns an empty slice, not an error.
func (c *Client) FetchDataset(ctx context.Context, run *Run, limit int) ([]map[string]any, error) {
	if run.Status != StatusSucceeded {
		return nil, &DatasetExtractionError{Message: fmt.Sprintf("run has status %s, not %s", run.Status, StatusSucceeded)}
	}

	datasetID := run.DatasetID
	if datasetID == "" {
		_, resolved, err := c.pollRun(ctx, run.ID)
		if err != nil {
			return nil, &DatasetExtractionError{Message: "failed to resolve dataset id", Cause: err}
		}
		datasetID = resolved
	}
	if datasetID == "" {
		return nil, &DatasetExtractionError{Message: "run has no dataset id"}
	}

	url := fmt.Sprintf("%s/datasets/%s/items?format=json&clean=true&offset=0&limit=%d", c.baseURL, datasetID, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &DatasetExtractionError{Message: "failed to create dataset request", Cause: err}
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &DatasetExtractionError{Message: "dataset request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &DatasetExtractionError{Message: fmt.Sprintf("dataset request returned HTTP %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &DatasetExtractionError{Message: "failed to read dataset response", Cause: err}
	}

	return decodeItems(body)
}

// LastRun fetches the actor's most recent run, whatever its state.
func (c *Client) LastRun(ctx context.Context) (*Run, error) {
	url := fmt.Sprintf("%s/acts/%s/runs/last", c.baseURL, c.actorID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create last-run request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("last-run request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("last-run request returned HTTP %d", resp.StatusCode)
	}

	var envelope runEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode last-run response: %w", err)
	}
	if envelope.Data.ID == "" {
		return nil, fmt.Errorf("actor has no previous runs")
	}

	return &Run{
		ID:        envelope.Data.ID,
		Status:    mapStatus(envelope.Data.Status),
		DatasetID: envelope.Data.DefaultDatasetID,
	}, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
}

// decodeItems parses a dataset response body. The platform has been observed
// to answer with a bare item array, an {"items": [...]} envelope, a
// {"data": [...]} envelope, or a {"data": {"items": [...]}} envelope.
// Anything else is an extraction error rather than a guess.
func decodeItems(body []byte) ([]map[string]any, error) {
	var direct []map[string]any
	if err := json.Unmarshal(body, &direct); err == nil {
		if direct == nil {
			direct = []map[string]any{}
		}
		return direct, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &DatasetExtractionError{Message: "response is neither an item array nor an object", Cause: err}
	}

	if raw, ok := envelope["items"]; ok {
		return decodeItemArray(raw, "items")
	}

	if raw, ok := envelope["data"]; ok {
		var items []map[string]any
		if err := json.Unmarshal(raw, &items); err == nil {
			if items == nil {
				items = []map[string]any{}
			}
			return items, nil
		}

		var inner map[string]json.RawMessage
		if err := json.Unmarshal(raw, &inner); err == nil {
			if rawItems, ok := inner["items"]; ok {
				return decodeItemArray(rawItems, "data.items")
			}
		}
		return nil, &DatasetExtractionError{Message: "data field is neither an item array nor an items envelope"}
	}

	return nil, &DatasetExtractionError{Message: "unrecognized response envelope"}
}

func decodeItemArray(raw json.RawMessage, field string) ([]map[string]any, error) {
	var items []map[string]any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &DatasetExtractionError{Message: fmt.Sprintf("%s field is not an item array", field), Cause: err}
	}
	if items == nil {
		items = []map[string]any{}
	}
	return items, nil
}
