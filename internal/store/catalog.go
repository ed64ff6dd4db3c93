package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evalocal/vendor-import/internal/domain"
)

// catalog.go holds the three taxonomy stores (categories, cities, culture
// tags). They share the same shape: a slug-or-name existence check plus a
// create, which is all the import pipeline needs.

// CategoryStore persists vendor service categories.
type CategoryStore struct {
	pool *pgxpool.Pool
}

// NewCategoryStore wires a category store backed by pgxpool.
func NewCategoryStore(pool *pgxpool.Pool) *CategoryStore {
	return &CategoryStore{pool: pool}
}

// ExistsBySlugOrName reports whether a category already uses the slug or name.
func (s *CategoryStore) ExistsBySlugOrName(ctx context.Context, slug, name string) (bool, error) {
	return existsBySlugOrName(ctx, s.pool, "categories", slug, name)
}

// Create inserts a category and returns its id.
func (s *CategoryStore) Create(ctx context.Context, c domain.Category) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.pool.QueryRow(
		ctx,
		`INSERT INTO categories (name, slug, description, icon)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		c.Name, c.Slug, c.Description, c.Icon,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create category: %w", err)
	}
	return id, nil
}

// CityStore persists serviceable cities.
type CityStore struct {
	pool *pgxpool.Pool
}

// NewCityStore wires a city store backed by pgxpool.
func NewCityStore(pool *pgxpool.Pool) *CityStore {
	return &CityStore{pool: pool}
}

// ExistsBySlugOrName reports whether a city already uses the slug or name.
func (s *CityStore) ExistsBySlugOrName(ctx context.Context, slug, name string) (bool, error) {
	return existsBySlugOrName(ctx, s.pool, "cities", slug, name)
}

// Create inserts a city and returns its id.
func (s *CityStore) Create(ctx context.Context, c domain.City) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.pool.QueryRow(
		ctx,
		`INSERT INTO cities (name, slug, region, county)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		c.Name, c.Slug, c.Region, c.County,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create city: %w", err)
	}
	return id, nil
}

// CultureTagStore persists culture/tradition taxonomy labels.
type CultureTagStore struct {
	pool *pgxpool.Pool
}

// NewCultureTagStore wires a culture-tag store backed by pgxpool.
func NewCultureTagStore(pool *pgxpool.Pool) *CultureTagStore {
	return &CultureTagStore{pool: pool}
}

// ExistsBySlugOrName reports whether a tag already uses the slug or name.
func (s *CultureTagStore) ExistsBySlugOrName(ctx context.Context, slug, name string) (bool, error) {
	return existsBySlugOrName(ctx, s.pool, "culture_tags", slug, name)
}

// Create inserts a culture tag and returns its id.
func (s *CultureTagStore) Create(ctx context.Context, t domain.CultureTag) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.pool.QueryRow(
		ctx,
		`INSERT INTO culture_tags (name, slug, description)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		t.Name, t.Slug, t.Description,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create culture tag: %w", err)
	}
	return id, nil
}

// existsBySlugOrName runs the shared duplicate check. The table name comes
// from a fixed call site, never from user input.
func existsBySlugOrName(ctx context.Context, pool *pgxpool.Pool, table, slug, name string) (bool, error) {
	var exists bool
	query := fmt.Sprintf(
		`SELECT EXISTS (SELECT 1 FROM %s WHERE slug = $1 OR name = $2)`, table,
	)
	if err := pool.QueryRow(ctx, query, slug, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check %s existence: %w", table, err)
	}
	return exists, nil
}
