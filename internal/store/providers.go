package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evalocal/vendor-import/internal/domain"
)

// ProviderStore persists vendor business listings. The import pipeline
// only creates providers; it never updates or merges existing ones.
type ProviderStore struct {
	pool *pgxpool.Pool
}

// NewProviderStore wires a provider store backed by pgxpool.
func NewProviderStore(pool *pgxpool.Pool) *ProviderStore {
	return &ProviderStore{pool: pool}
}

// ExistsByNameAndPostcode reports whether a provider with the same
// business name and postcode is already present. This is a plain read;
// the following insert is not transactional with it, so two concurrent
// identical imports can both pass the check.
func (s *ProviderStore) ExistsByNameAndPostcode(ctx context.Context, businessName, postcode string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(
		ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM providers WHERE business_name = $1 AND postcode = $2
		 )`,
		businessName, postcode,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check provider existence: %w", err)
	}
	return exists, nil
}

// Create inserts a provider and returns its id.
func (s *ProviderStore) Create(ctx context.Context, p domain.Provider) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.pool.QueryRow(
		ctx,
		`INSERT INTO providers
		   (owner_id, business_name, description, email, phone, website,
		    postcode, city, latitude, longitude, radius_miles, plan,
		    published, verified, categories, culture_tags)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 RETURNING id`,
		p.OwnerID, p.BusinessName, p.Description, p.Email, p.Phone, p.Website,
		p.Postcode, p.City, p.Latitude, p.Longitude, p.RadiusMiles, string(p.Plan),
		p.Published, p.Verified, p.Categories, p.CultureTags,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create provider: %w", err)
	}
	return id, nil
}
