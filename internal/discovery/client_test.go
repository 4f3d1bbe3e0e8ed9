package discovery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/professional-finder/internal/llm"
)

type fakeLLM struct {
	response   string
	err        error
	lastPrompt string
}

func (f *fakeLLM) GenerateJSON(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	f.lastPrompt = prompt
	return f.response, f.err
}

func (f *fakeLLM) GetModel(llm.ModelTier) string { return "fake-model" }
func (f *fakeLLM) Close() error                  { return nil }

func record(first, last, title, company, city string) string {
	return fmt.Sprintf(`{"first_name": %q, "last_name": %q, "job_title": %q, "company": %q, "city": %q}`,
		first, last, title, company, city)
}

func TestDecodeProfessionals(t *testing.T) {
	tests := []struct {
		name       string
		payload    string
		city       string
		maxResults int
		wantNames  []string
		wantErr    bool
	}{
		{
			name: "All records valid",
			payload: `{"professionals": [` +
				record("Jane", "Doe", "Engineer", "Acme", "Austin") + "," +
				record("John", "Roe", "Designer", "Globex", "Austin") + `]}`,
			city:       "Austin",
			maxResults: 10,
			wantNames:  []string{"Jane", "John"},
		},
		{
			name: "Record for wrong city dropped",
			payload: `{"professionals": [` +
				record("Jane", "Doe", "Engineer", "Acme", "Austin") + "," +
				record("John", "Roe", "Designer", "Globex", "Dallas") + `]}`,
			city:       "Austin",
			maxResults: 10,
			wantNames:  []string{"Jane"},
		},
		{
			name: "City comparison is case insensitive",
			payload: `{"professionals": [` +
				record("Jane", "Doe", "Engineer", "Acme", "AUSTIN") + `]}`,
			city:       "austin",
			maxResults: 10,
			wantNames:  []string{"Jane"},
		},
		{
			name: "Single character names dropped",
			payload: `{"professionals": [` +
				record("J", "Doe", "Engineer", "Acme", "Austin") + "," +
				record("Jane", "D", "Engineer", "Acme", "Austin") + "," +
				record("Jane", "Doe", "Engineer", "Acme", "Austin") + `]}`,
			city:       "Austin",
			maxResults: 10,
			wantNames:  []string{"Jane"},
		},
		{
			name: "Record missing a field dropped",
			payload: `{"professionals": [` +
				`{"first_name": "Jane", "last_name": "Doe", "city": "Austin"},` +
				record("John", "Roe", "Designer", "Globex", "Austin") + `]}`,
			city:       "Austin",
			maxResults: 10,
			wantNames:  []string{"John"},
		},
		{
			name: "Record with wrong field types dropped",
			payload: `{"professionals": [` +
				`{"first_name": 42, "last_name": "Doe", "job_title": "Engineer", "company": "Acme", "city": "Austin"},` +
				record("John", "Roe", "Designer", "Globex", "Austin") + `]}`,
			city:       "Austin",
			maxResults: 10,
			wantNames:  []string{"John"},
		},
		{
			name: "Capped at max results",
			payload: `{"professionals": [` +
				record("Jane", "Doe", "Engineer", "Acme", "Austin") + "," +
				record("John", "Roe", "Designer", "Globex", "Austin") + "," +
				record("Mary", "Poe", "Analyst", "Initech", "Austin") + `]}`,
			city:       "Austin",
			maxResults: 2,
			wantNames:  []string{"Jane", "John"},
		},
		{
			name:       "Empty list is valid",
			payload:    `{"professionals": []}`,
			city:       "Austin",
			maxResults: 10,
			wantNames:  []string{},
		},
		{
			name:       "All records invalid yields empty list",
			payload:    `{"professionals": [{"first_name": "J"}]}`,
			city:       "Austin",
			maxResults: 10,
			wantNames:  []string{},
		},
		{
			name:       "Not JSON at all",
			payload:    `I could not find any professionals.`,
			city:       "Austin",
			maxResults: 10,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := decodeProfessionals(tt.payload, tt.city, tt.maxResults)
			if tt.wantErr {
				var genErr *GenerationError
				require.True(t, errors.As(err, &genErr), "expected GenerationError, got %v", err)
				return
			}
			require.NoError(t, err)

			names := make([]string, 0, len(records))
			for _, rec := range records {
				names = append(names, rec["first_name"].(string))
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func TestDiscoverFormatsPrompt(t *testing.T) {
	fake := &fakeLLM{response: `{"professionals": [` + record("Jane", "Doe", "Engineer", "Acme", "Austin") + `]}`}
	client := NewClientWithLLM(fake)

	records, err := client.Discover(context.Background(), "Austin", 5)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Jane", records[0]["first_name"])

	assert.True(t, strings.Contains(fake.lastPrompt, "Austin"), "prompt should embed the city")
	assert.True(t, strings.Contains(fake.lastPrompt, "5"), "prompt should embed the result count")
	assert.False(t, strings.Contains(fake.lastPrompt, "{{."), "all placeholders should be substituted")
}

func TestDiscoverModelFailure(t *testing.T) {
	client := NewClientWithLLM(&fakeLLM{err: errors.New("quota exhausted")})

	_, err := client.Discover(context.Background(), "Austin", 5)
	var genErr *GenerationError
	require.True(t, errors.As(err, &genErr))
	assert.ErrorContains(t, err, "quota exhausted")
}
