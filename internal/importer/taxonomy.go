package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/evalocal/vendor-import/internal/domain"
)

// CategoryStore is implemented by store.CategoryStore.
type CategoryStore interface {
	ExistsBySlugOrName(ctx context.Context, slug, name string) (bool, error)
	Create(ctx context.Context, c domain.Category) (uuid.UUID, error)
}

// CityStore is implemented by store.CityStore.
type CityStore interface {
	ExistsBySlugOrName(ctx context.Context, slug, name string) (bool, error)
	Create(ctx context.Context, c domain.City) (uuid.UUID, error)
}

// CultureTagStore is implemented by store.CultureTagStore.
type CultureTagStore interface {
	ExistsBySlugOrName(ctx context.Context, slug, name string) (bool, error)
	Create(ctx context.Context, t domain.CultureTag) (uuid.UUID, error)
}

// TaxonomyImporters bundles the three simple importers (categories,
// cities, culture tags). They share the same shape: require a name,
// derive a slug, skip duplicates by slug or name, create the record.
// No external calls, no pacing, no ownership resolution.
type TaxonomyImporters struct {
	categories  *taxonomyImporter
	cities      *taxonomyImporter
	cultureTags *taxonomyImporter
}

// NewTaxonomyImporters wires the category, city, and culture-tag
// importers over their stores.
func NewTaxonomyImporters(categories CategoryStore, cities CityStore, tags CultureTagStore) *TaxonomyImporters {
	return &TaxonomyImporters{
		categories: &taxonomyImporter{
			entity: "Category",
			exists: categories.ExistsBySlugOrName,
			create: func(ctx context.Context, row Row, name, slug string) (uuid.UUID, error) {
				return categories.Create(ctx, domain.Category{
					Name:        name,
					Slug:        slug,
					Description: stringField(row, "description"),
					Icon:        stringField(row, "icon"),
				})
			},
		},
		cities: &taxonomyImporter{
			entity: "City",
			exists: cities.ExistsBySlugOrName,
			create: func(ctx context.Context, row Row, name, slug string) (uuid.UUID, error) {
				return cities.Create(ctx, domain.City{
					Name:   name,
					Slug:   slug,
					Region: stringField(row, "region"),
					County: stringField(row, "county"),
				})
			},
		},
		cultureTags: &taxonomyImporter{
			entity: "Culture tag",
			exists: tags.ExistsBySlugOrName,
			create: func(ctx context.Context, row Row, name, slug string) (uuid.UUID, error) {
				return tags.Create(ctx, domain.CultureTag{
					Name:        name,
					Slug:        slug,
					Description: stringField(row, "description"),
				})
			},
		},
	}
}

type taxonomyImporter struct {
	entity string
	exists func(ctx context.Context, slug, name string) (bool, error)
	create func(ctx context.Context, row Row, name, slug string) (uuid.UUID, error)
}

func (t *taxonomyImporter) run(ctx context.Context, rows []Row, dryRun bool, _ domain.User) ([]domain.RowResult, error) {
	results := make([]domain.RowResult, 0, len(rows))

	for i, row := range rows {
		rowNum := i + 1
		name := stringField(row, "name")
		if name == "" {
			results = append(results, failure(rowNum, name, errors.New("Missing required field: name")))
			continue
		}

		if dryRun {
			results = append(results, domain.RowResult{Success: true, Row: rowNum, Label: name})
			continue
		}

		slug := stringField(row, "slug")
		if slug == "" {
			slug = Slugify(name)
		}

		exists, err := t.exists(ctx, slug, name)
		if err != nil {
			results = append(results, failure(rowNum, name, err))
			continue
		}
		if exists {
			results = append(results, failure(rowNum, name,
				fmt.Errorf("%s already exists with same name or slug", t.entity)))
			continue
		}

		id, err := t.create(ctx, row, name, slug)
		if err != nil {
			results = append(results, failure(rowNum, name, err))
			continue
		}

		results = append(results, domain.RowResult{Success: true, Row: rowNum, Label: name, EntityID: id.String()})
	}

	return results, nil
}
