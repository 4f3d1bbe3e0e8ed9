// Package discovery generates professional records with an LLM when no
// scraped data is available for a city.
package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/professional-finder/internal/llm"
	"github.com/jonathan/professional-finder/internal/prompts"
	"github.com/jonathan/professional-finder/internal/schemas"
)

var validate = validator.New()

// generatedRecord is one professional as the model is asked to emit it.
// Names shorter than two characters are treated as hallucination artifacts.
type generatedRecord struct {
	FirstName string `json:"first_name" validate:"required,min=2"`
	LastName  string `json:"last_name" validate:"required,min=2"`
	JobTitle  string `json:"job_title" validate:"required"`
	Company   string `json:"company" validate:"required"`
	City      string `json:"city" validate:"required"`
}

// Client generates professional records for a city using Gemini.
type Client struct {
	llm llm.Client
}

// NewClient creates a discovery client backed by the default Gemini models.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	llmClient, err := llm.NewClient(ctx, llm.DefaultConfig(), apiKey)
	if err != nil {
		return nil, &GenerationError{Message: "failed to create LLM client", Cause: err}
	}
	return &Client{llm: llmClient}, nil
}

// NewClientWithLLM creates a discovery client over an existing LLM client.
func NewClientWithLLM(llmClient llm.Client) *Client {
	return &Client{llm: llmClient}
}

// Discover asks the model for up to maxResults professionals working in
// city. Records that fail validation or name a different city are dropped
// rather than failing the whole batch; only an unusable response as a whole
// is an error.
func (c *Client) Discover(ctx context.Context, city string, maxResults int) ([]map[string]any, error) {
	template, err := prompts.Get("discovery.json", "discover-professionals")
	if err != nil {
		return nil, &GenerationError{Message: "failed to load prompt", Cause: err}
	}

	prompt := prompts.Format(template, map[string]string{
		"City":       city,
		"MaxResults": strconv.Itoa(maxResults),
	})

	raw, err := c.llm.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, &GenerationError{Message: "model call failed", Cause: err}
	}

	return decodeProfessionals(raw, city, maxResults)
}

// Close releases the underlying LLM client.
func (c *Client) Close() error {
	if c.llm != nil {
		return c.llm.Close()
	}
	return nil
}

// decodeProfessionals parses a model response into raw records. A response
// that fails schema validation is salvaged record by record; a response that
// is not JSON at all is a GenerationError.
func decodeProfessionals(payload, city string, maxResults int) ([]map[string]any, error) {
	if err := schemas.ValidateProfessionalList(payload); err != nil {
		var validationErr *schemas.ValidationError
		if !errors.As(err, &validationErr) {
			return nil, &GenerationError{Message: "model returned unparseable output", Cause: err}
		}
	}

	var envelope struct {
		Professionals []json.RawMessage `json:"professionals"`
	}
	if err := json.Unmarshal([]byte(payload), &envelope); err != nil {
		return nil, &GenerationError{Message: "model returned unparseable output", Cause: err}
	}

	wantCity := strings.TrimSpace(city)
	records := make([]map[string]any, 0, len(envelope.Professionals))
	for _, item := range envelope.Professionals {
		var rec generatedRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			continue
		}
		if err := validate.Struct(rec); err != nil {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(rec.City), wantCity) {
			continue
		}

		records = append(records, map[string]any{
			"first_name": rec.FirstName,
			"last_name":  rec.LastName,
			"job_title":  rec.JobTitle,
			"company":    rec.Company,
			"city":       rec.City,
		})
		if maxResults > 0 && len(records) >= maxResults {
			break
		}
	}

	return records, nil
}
