package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evalocal/vendor-import/internal/domain"
)

// PostcodeCacheStore persists geocoded UK postcodes. Entries are written
// once on first successful external lookup and never updated or expired.
type PostcodeCacheStore struct {
	pool *pgxpool.Pool
}

// NewPostcodeCacheStore wires a postcode cache backed by pgxpool.
func NewPostcodeCacheStore(pool *pgxpool.Pool) *PostcodeCacheStore {
	return &PostcodeCacheStore{pool: pool}
}

// Get returns the cached entry for a normalized postcode, or nil on a miss.
func (s *PostcodeCacheStore) Get(ctx context.Context, postcode string) (*domain.PostcodeEntry, error) {
	var (
		entry     domain.PostcodeEntry
		city      pgtype.Text
		createdAt pgtype.Timestamptz
	)

	err := s.pool.QueryRow(
		ctx,
		`SELECT postcode, latitude, longitude, city, created_at
		 FROM postcode_cache WHERE postcode = $1`,
		postcode,
	).Scan(&entry.Postcode, &entry.Latitude, &entry.Longitude, &city, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read postcode cache: %w", err)
	}

	if city.Valid {
		entry.City = city.String
	}
	if createdAt.Valid {
		entry.CreatedAt = createdAt.Time
	}

	return &entry, nil
}

// Put stores a geocoded postcode. Concurrent writers for the same postcode
// are harmless: the first insert wins and later ones are ignored.
func (s *PostcodeCacheStore) Put(ctx context.Context, entry domain.PostcodeEntry) error {
	_, err := s.pool.Exec(
		ctx,
		`INSERT INTO postcode_cache (postcode, latitude, longitude, city)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (postcode) DO NOTHING`,
		entry.Postcode, entry.Latitude, entry.Longitude, entry.City,
	)
	if err != nil {
		return fmt.Errorf("failed to write postcode cache: %w", err)
	}
	return nil
}
