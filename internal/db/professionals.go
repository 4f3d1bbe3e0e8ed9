package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/professional-finder/internal/types"
)

const professionalColumns = `unique_id, first_name, last_name, job_title, company, city, source, attributes, created_at`

// FindByIdentity retrieves the stored record matching the normalized
// identity tuple, or nil if none exists.
func (db *DB) FindByIdentity(ctx context.Context, firstName, lastName, company, city string) (*types.Professional, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+professionalColumns+` FROM professionals WHERE identity_key = $1`,
		types.IdentityKeyOf(firstName, lastName, company, city),
	)

	p, err := scanProfessional(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find professional: %w", err)
	}
	return p, nil
}

// InsertMany persists a batch of records and returns how many were actually
// inserted. Records whose identity key already exists are skipped, so the
// call is idempotent with respect to duplicates.
func (db *DB) InsertMany(ctx context.Context, records []*types.Professional) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, p := range records {
		var attrs []byte
		if len(p.Attributes) > 0 {
			encoded, err := json.Marshal(p.Attributes)
			if err != nil {
				return 0, fmt.Errorf("failed to marshal attributes for %s: %w", p.UniqueID, err)
			}
			attrs = encoded
		}

		batch.Queue(
			`INSERT INTO professionals (unique_id, first_name, last_name, job_title, company, city, source, identity_key, attributes, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			 ON CONFLICT (identity_key) DO NOTHING`,
			p.UniqueID, p.FirstName, p.LastName, p.JobTitle, p.Company, p.City,
			string(p.Source), p.IdentityKey(), attrs, p.CreatedAt,
		)
	}

	results := db.pool.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range records {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("failed to insert professional: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

// CountAll returns the total number of stored professionals.
func (db *DB) CountAll(ctx context.Context) (int, error) {
	var count int
	err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM professionals`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count professionals: %w", err)
	}
	return count, nil
}

// ListByCity retrieves all professionals stored for a city. Cities are
// stored lower-cased, so the lookup normalizes its argument the same way.
func (db *DB) ListByCity(ctx context.Context, city string) ([]*types.Professional, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+professionalColumns+` FROM professionals WHERE city = LOWER(TRIM($1)) ORDER BY created_at DESC`,
		city,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list professionals by city: %w", err)
	}
	defer rows.Close()

	return collectProfessionals(rows)
}

// ListAll retrieves up to limit professionals, newest first.
func (db *DB) ListAll(ctx context.Context, limit int) ([]*types.Professional, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.pool.Query(ctx,
		`SELECT `+professionalColumns+` FROM professionals ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list professionals: %w", err)
	}
	defer rows.Close()

	return collectProfessionals(rows)
}

// CountBySource returns stored record counts grouped by provenance.
func (db *DB) CountBySource(ctx context.Context) (map[types.Source]int, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT source, COUNT(*) FROM professionals GROUP BY source`)
	if err != nil {
		return nil, fmt.Errorf("failed to count by source: %w", err)
	}
	defer rows.Close()

	counts := make(map[types.Source]int)
	for rows.Next() {
		var source string
		var count int
		if err := rows.Scan(&source, &count); err != nil {
			return nil, fmt.Errorf("failed to scan source count: %w", err)
		}
		counts[types.Source(source)] = count
	}
	return counts, nil
}

// CountByCity returns stored record counts grouped by city, largest first.
func (db *DB) CountByCity(ctx context.Context) (map[string]int, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT city, COUNT(*) FROM professionals GROUP BY city ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to count by city: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var city string
		var count int
		if err := rows.Scan(&city, &count); err != nil {
			return nil, fmt.Errorf("failed to scan city count: %w", err)
		}
		counts[city] = count
	}
	return counts, nil
}

func collectProfessionals(rows pgx.Rows) ([]*types.Professional, error) {
	var records []*types.Professional
	for rows.Next() {
		p, err := scanProfessional(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan professional: %w", err)
		}
		records = append(records, p)
	}
	return records, nil
}

func scanProfessional(row pgx.Row) (*types.Professional, error) {
	var p types.Professional
	var source string
	var attrs []byte

	err := row.Scan(&p.UniqueID, &p.FirstName, &p.LastName, &p.JobTitle, &p.Company,
		&p.City, &source, &attrs, &p.CreatedAt)
	if err != nil {
		return nil, err
	}

	p.Source = types.Source(source)
	if len(attrs) > 0 {
		if err := json.Unmarshal(attrs, &p.Attributes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal attributes: %w", err)
		}
	}
	return &p, nil
}
