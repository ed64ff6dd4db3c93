package importer

import (
	"context"
	"testing"

	"github.com/evalocal/vendor-import/internal/domain"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Live Music", "live-music"},
		{"South Asian", "south-asian"},
		{"  Wedding  &  Events  ", "wedding-events"},
		{"Caterers", "caterers"},
		{"DJ's", "dj-s"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCategorySlugDerivedFromName(t *testing.T) {
	f := newTestFixture(t, defaultOptions())

	outcome, err := f.dispatcher.Run(context.Background(), Batch{
		Type: domain.ImportCategories,
		Rows: []Row{{"name": "Live Music"}},
	}, f.admin)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !outcome.Results[0].Success {
		t.Fatalf("row failed: %+v", outcome.Results[0])
	}
	c := f.categories.created[0]
	if c.Slug != "live-music" {
		t.Errorf("slug = %q, want live-music", c.Slug)
	}
	if c.Name != "Live Music" {
		t.Errorf("name = %q, want Live Music", c.Name)
	}
}

func TestCategoryExplicitSlugKept(t *testing.T) {
	f := newTestFixture(t, defaultOptions())

	_, err := f.dispatcher.Run(context.Background(), Batch{
		Type: domain.ImportCategories,
		Rows: []Row{{"name": "Live Music", "slug": "music"}},
	}, f.admin)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := f.categories.created[0].Slug; got != "music" {
		t.Errorf("slug = %q, want the provided value", got)
	}
}

func TestTaxonomyMissingName(t *testing.T) {
	for _, typ := range []domain.ImportType{domain.ImportCategories, domain.ImportCities, domain.ImportCultureTags} {
		t.Run(string(typ), func(t *testing.T) {
			f := newTestFixture(t, defaultOptions())

			outcome, err := f.dispatcher.Run(context.Background(), Batch{
				Type: typ, Rows: []Row{{"slug": "orphan"}},
			}, f.admin)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			r := outcome.Results[0]
			if r.Success || r.Error != "Missing required field: name" {
				t.Errorf("result = %+v, want missing-name failure", r)
			}
		})
	}
}

func TestTaxonomyDuplicateSkipped(t *testing.T) {
	f := newTestFixture(t, defaultOptions())

	rows := []Row{{"name": "Live Music"}, {"name": "Live Music"}}
	outcome, err := f.dispatcher.Run(context.Background(), Batch{
		Type: domain.ImportCategories, Rows: rows,
	}, f.admin)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !outcome.Results[0].Success {
		t.Errorf("first row should succeed: %+v", outcome.Results[0])
	}
	second := outcome.Results[1]
	if second.Success || second.Error != "Category already exists with same name or slug" {
		t.Errorf("second result = %+v", second)
	}
	if len(f.categories.created) != 1 {
		t.Errorf("categories created = %d, want 1", len(f.categories.created))
	}
}

func TestCityOptionalFields(t *testing.T) {
	f := newTestFixture(t, defaultOptions())

	_, err := f.dispatcher.Run(context.Background(), Batch{
		Type: domain.ImportCities,
		Rows: []Row{{"name": "Leeds", "region": "Yorkshire", "county": "West Yorkshire"}},
	}, f.admin)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	c := f.cities.created[0]
	if c.Region != "Yorkshire" || c.County != "West Yorkshire" {
		t.Errorf("city = %+v", c)
	}
	if c.Slug != "leeds" {
		t.Errorf("slug = %q, want leeds", c.Slug)
	}
}

func TestCultureTagCreate(t *testing.T) {
	f := newTestFixture(t, defaultOptions())

	outcome, err := f.dispatcher.Run(context.Background(), Batch{
		Type: domain.ImportCultureTags,
		Rows: []Row{{"name": "South Asian", "description": "South Asian traditions"}},
	}, f.admin)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	tag := f.tags.created[0]
	if tag.Slug != "south-asian" || tag.Description != "South Asian traditions" {
		t.Errorf("tag = %+v", tag)
	}
	if outcome.Results[0].EntityID == "" {
		t.Error("success result should carry the created entity id")
	}
}

func TestTaxonomyDryRunWritesNothing(t *testing.T) {
	f := newTestFixture(t, defaultOptions())
	f.categories.existing = map[string]bool{"live-music": true}

	// Dry run reports success even for a would-be duplicate: it validates
	// field presence only.
	outcome, err := f.dispatcher.Run(context.Background(), Batch{
		Type: domain.ImportCategories, Rows: []Row{{"name": "Live Music"}}, DryRun: true,
	}, f.admin)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !outcome.Results[0].Success {
		t.Errorf("dry run result = %+v, want success", outcome.Results[0])
	}
	if len(f.categories.created) != 0 {
		t.Error("dry run must not create records")
	}
}
