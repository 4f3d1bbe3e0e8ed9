// Package dedup decides whether a candidate professional is already known,
// either from storage or from earlier in the same incoming batch.
package dedup

import (
	"context"
	"fmt"

	"github.com/jonathan/professional-finder/internal/types"
)

// Lookup resolves an identity tuple against existing storage. A nil record
// with a nil error means no match.
type Lookup interface {
	FindByIdentity(ctx context.Context, firstName, lastName, company, city string) (*types.Professional, error)
}

// Batch tracks duplicates across one incoming batch of candidates. It is not
// safe for concurrent use; one Batch serves one search invocation.
type Batch struct {
	lookup Lookup
	seen   map[string]struct{}
}

// NewBatch creates a deduplicator over the given storage lookup.
func NewBatch(lookup Lookup) *Batch {
	return &Batch{
		lookup: lookup,
		seen:   make(map[string]struct{}),
	}
}

// IsDuplicate reports whether candidate matches an already-persisted record
// or an earlier candidate in this batch. Non-duplicates are remembered, so
// a second candidate with the same identity key is suppressed before it
// reaches the store.
func (b *Batch) IsDuplicate(ctx context.Context, candidate *types.Professional) (bool, error) {
	key := candidate.IdentityKey()
	if _, ok := b.seen[key]; ok {
		return true, nil
	}

	existing, err := b.lookup.FindByIdentity(ctx, candidate.FirstName, candidate.LastName, candidate.Company, candidate.City)
	if err != nil {
		return false, fmt.Errorf("failed to check for existing record: %w", err)
	}
	if existing != nil {
		b.seen[key] = struct{}{}
		return true, nil
	}

	b.seen[key] = struct{}{}
	return false, nil
}
