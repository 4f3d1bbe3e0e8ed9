// Package types defines the canonical domain model shared across sources and storage.
package types

import (
	"strings"
	"time"
)

// Source identifies the provenance of a professional record.
type Source string

// Source tags for the two supported record origins.
const (
	// SourceScraper marks records produced by the remote actor run.
	SourceScraper Source = "scraper"
	// SourceAI marks records produced by the generative fallback.
	SourceAI Source = "ai-generated"
)

// Professional is the canonical record all sources are normalized into.
// Records are immutable once persisted; only insert-if-new is supported.
type Professional struct {
	UniqueID   string       `json:"unique_id"`
	FirstName  string       `json:"first_name"`
	LastName   string       `json:"last_name"`
	JobTitle   string       `json:"job_title"`
	Company    string       `json:"company"`
	City       string       `json:"city"`
	Source     Source       `json:"source"`
	CreatedAt  time.Time    `json:"created_at"`
	Attributes AttributeSet `json:"attributes,omitempty"`
}

// HasName reports whether the record carries any discoverable name.
// Nameless records are constructible but the coordinator discards them.
func (p *Professional) HasName() bool {
	return strings.TrimSpace(p.FirstName) != "" || strings.TrimSpace(p.LastName) != ""
}

// IdentityKey returns the deduplication key for this record.
func (p *Professional) IdentityKey() string {
	return IdentityKeyOf(p.FirstName, p.LastName, p.Company, p.City)
}

// IdentityKeyOf computes the composite identity key used to detect duplicate
// professionals. Each component is lower-cased, trimmed, and has internal
// whitespace runs collapsed, so two records differing only in casing,
// spacing, unique_id, or source map to the same key. Empty components match
// empty components exactly; they are never wildcards.
func IdentityKeyOf(firstName, lastName, company, city string) string {
	parts := []string{
		normalizeComponent(firstName),
		normalizeComponent(lastName),
		normalizeComponent(company),
		normalizeComponent(city),
	}
	// Unit separator avoids collisions between adjacent components.
	return strings.Join(parts, "\x1f")
}

func normalizeComponent(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
