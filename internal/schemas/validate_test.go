package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateProfessionalList(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{
			name: "Valid list",
			doc: `{"professionals": [
				{"first_name": "Jane", "last_name": "Doe", "job_title": "Engineer", "company": "Acme", "city": "Austin"}
			]}`,
			wantErr: false,
		},
		{
			name:    "Empty list is valid",
			doc:     `{"professionals": []}`,
			wantErr: false,
		},
		{
			name:    "Missing professionals key",
			doc:     `{"people": []}`,
			wantErr: true,
		},
		{
			name: "Record missing required field",
			doc: `{"professionals": [
				{"first_name": "Jane", "last_name": "Doe", "company": "Acme", "city": "Austin"}
			]}`,
			wantErr: true,
		},
		{
			name: "Single-character name rejected",
			doc: `{"professionals": [
				{"first_name": "J", "last_name": "Doe", "job_title": "Engineer", "company": "Acme", "city": "Austin"}
			]}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProfessionalList(tt.doc)
			if tt.wantErr {
				require.Error(t, err)
				var validationErr *ValidationError
				assert.True(t, errors.As(err, &validationErr))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateProfessionalListUnparseable(t *testing.T) {
	err := ValidateProfessionalList("{not json at all")
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.True(t, errors.As(err, &loadErr), "unparseable document reported as load error, got %T", err)
}
