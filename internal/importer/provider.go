package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/evalocal/vendor-import/internal/domain"
)

// ProviderStore is the provider persistence surface the importer needs.
// Implemented by store.ProviderStore.
type ProviderStore interface {
	ExistsByNameAndPostcode(ctx context.Context, businessName, postcode string) (bool, error)
	Create(ctx context.Context, p domain.Provider) (uuid.UUID, error)
}

// UserStore resolves and creates owner accounts. Implemented by
// store.UserStore.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	CreatePlaceholder(ctx context.Context, email string) (domain.User, error)
}

// Geocoder resolves a postcode to coordinates, cache-first. Implemented
// by geocode.CachedGeocoder.
type Geocoder interface {
	Lookup(ctx context.Context, postcode string) (*domain.PostcodeEntry, error)
}

// Pacer spaces out rows that may reach the external geocoder.
// Implemented by geocode.Pacer.
type Pacer interface {
	Wait(ctx context.Context) error
}

// ProviderImporter creates vendor listings row by row. Rows are paced so
// the run never exceeds the external geocoder's rate policy, and
// geocoding failures are swallowed: the provider is still created with
// null coordinates.
type ProviderImporter struct {
	providers ProviderStore
	users     UserStore
	geocoder  Geocoder
	pacer     Pacer
	log       *slog.Logger
}

// NewProviderImporter wires the provider importer.
func NewProviderImporter(providers ProviderStore, users UserStore, geocoder Geocoder, pacer Pacer, log *slog.Logger) *ProviderImporter {
	return &ProviderImporter{
		providers: providers,
		users:     users,
		geocoder:  geocoder,
		pacer:     pacer,
		log:       log,
	}
}

func (p *ProviderImporter) run(ctx context.Context, rows []Row, dryRun bool, actor domain.User) ([]domain.RowResult, error) {
	results := make([]domain.RowResult, 0, len(rows))

	for i, row := range rows {
		rowNum := i + 1
		businessName := stringField(row, "businessName")
		postcode := stringField(row, "postcode")

		if businessName == "" {
			results = append(results, failure(rowNum, businessName, errors.New("Missing required field: businessName")))
			continue
		}
		if postcode == "" {
			results = append(results, failure(rowNum, businessName, errors.New("Missing required field: postcode")))
			continue
		}

		// Dry run validates field presence only; it performs no duplicate
		// checks, no geocoding, and no writes.
		if dryRun {
			results = append(results, domain.RowResult{Success: true, Row: rowNum, Label: businessName})
			continue
		}

		result, err := p.importRow(ctx, rowNum, row, businessName, postcode, actor)
		if err != nil {
			return results, err
		}
		results = append(results, result)

		// Pace live rows uniformly, hit or miss, so wall-clock time stays
		// linear in row count and the geocoder policy holds across batches.
		if err := p.pacer.Wait(ctx); err != nil {
			return results, err
		}
	}

	return results, nil
}

func (p *ProviderImporter) importRow(ctx context.Context, rowNum int, row Row, businessName, postcode string, actor domain.User) (domain.RowResult, error) {
	owner, err := p.resolveOwner(ctx, row, actor)
	if err != nil {
		return failure(rowNum, businessName, err), nil
	}

	provider := domain.Provider{
		OwnerID:      owner,
		BusinessName: businessName,
		Description:  stringField(row, "description"),
		Email:        stringField(row, "email"),
		Phone:        stringField(row, "phone"),
		Website:      stringField(row, "website"),
		Postcode:     postcode,
		City:         stringField(row, "city"),
		RadiusMiles:  intField(row, "radiusMiles", domain.DefaultRadiusMiles),
		Plan:         domain.PlanFree,
		Published:    true,
		Verified:     false,
		Categories:   parseList(row, "categories"),
		CultureTags:  parseList(row, "cultureTraditionTags"),
	}

	// Geocode failures never fail the row; the provider just carries no
	// coordinates until someone fixes the postcode.
	if entry, err := p.geocoder.Lookup(ctx, postcode); err != nil {
		p.log.DebugContext(ctx, "geocode lookup failed", "postcode", postcode, "error", err)
	} else {
		lat, lon := entry.Latitude, entry.Longitude
		provider.Latitude = &lat
		provider.Longitude = &lon
		if provider.City == "" {
			provider.City = entry.City
		}
	}

	exists, err := p.providers.ExistsByNameAndPostcode(ctx, businessName, postcode)
	if err != nil {
		return failure(rowNum, businessName, err), nil
	}
	if exists {
		return failure(rowNum, businessName, errors.New("Provider already exists with same name and postcode")), nil
	}

	id, err := p.providers.Create(ctx, provider)
	if err != nil {
		return failure(rowNum, businessName, err), nil
	}

	return domain.RowResult{Success: true, Row: rowNum, Label: businessName, EntityID: id.String()}, nil
}

// resolveOwner finds or creates the owning account. A row email maps to
// an existing user or a fresh placeholder; without one, the importing
// administrator owns the listing.
func (p *ProviderImporter) resolveOwner(ctx context.Context, row Row, actor domain.User) (uuid.UUID, error) {
	email := stringField(row, "email")
	if email == "" {
		return actor.ID, nil
	}

	user, err := p.users.FindByEmail(ctx, email)
	if err != nil {
		return uuid.Nil, err
	}
	if user != nil {
		return user.ID, nil
	}

	created, err := p.users.CreatePlaceholder(ctx, email)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create owner account: %w", err)
	}
	return created.ID, nil
}
