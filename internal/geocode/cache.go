package geocode

import (
	"context"
	"fmt"

	"github.com/evalocal/vendor-import/internal/domain"
)

// Store is the persistence surface the cached geocoder needs.
// Implemented by store.PostcodeCacheStore.
type Store interface {
	Get(ctx context.Context, postcode string) (*domain.PostcodeEntry, error)
	Put(ctx context.Context, entry domain.PostcodeEntry) error
}

// Searcher performs an external geocode lookup. Implemented by Client.
type Searcher interface {
	Search(ctx context.Context, query string) (*Result, error)
}

// CachedGeocoder looks up postcodes cache-first, falling back to the
// external API and writing successful lookups through to the cache.
type CachedGeocoder struct {
	store  Store
	client Searcher
}

// NewCachedGeocoder wires a cache-first geocoder.
func NewCachedGeocoder(store Store, client Searcher) *CachedGeocoder {
	return &CachedGeocoder{store: store, client: client}
}

// Lookup resolves a UK postcode to a cache entry. A cached postcode never
// reaches the external API. Cache write failures do not fail the lookup;
// the entry is still returned so the caller can use the coordinates.
func (g *CachedGeocoder) Lookup(ctx context.Context, postcode string) (*domain.PostcodeEntry, error) {
	key := domain.NormalizePostcode(postcode)
	if key == "" {
		return nil, fmt.Errorf("empty postcode")
	}

	cached, err := g.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return cached, nil
	}

	result, err := g.client.Search(ctx, postcode)
	if err != nil {
		return nil, err
	}

	entry := domain.PostcodeEntry{
		Postcode:  key,
		Latitude:  result.Latitude,
		Longitude: result.Longitude,
		City:      result.City,
	}
	// Best effort; a failed write just means the next lookup re-geocodes.
	_ = g.store.Put(ctx, entry)

	return &entry, nil
}
