package importer

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"github.com/evalocal/vendor-import/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type finishCall struct {
	id         uuid.UUID
	status     domain.JobStatus
	processed  int
	successful int
	failed     int
	summary    []byte
}

type fakeJobStore struct {
	createErr error
	created   []domain.ImportJob
	finished  []finishCall
	marked    []uuid.UUID
	errors    map[uuid.UUID][]domain.ImportError
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{errors: make(map[uuid.UUID][]domain.ImportError)}
}

func (f *fakeJobStore) Create(_ context.Context, jobType domain.ImportType, totalRows int, createdBy uuid.UUID) (domain.ImportJob, error) {
	if f.createErr != nil {
		return domain.ImportJob{}, f.createErr
	}
	job := domain.ImportJob{
		ID:        uuid.New(),
		Type:      jobType,
		Status:    domain.JobProcessing,
		TotalRows: totalRows,
		CreatedBy: createdBy,
	}
	f.created = append(f.created, job)
	return job, nil
}

func (f *fakeJobStore) Finish(_ context.Context, id uuid.UUID, status domain.JobStatus, processed, successful, failed int, summary []byte) error {
	f.finished = append(f.finished, finishCall{id, status, processed, successful, failed, summary})
	return nil
}

func (f *fakeJobStore) MarkFailed(_ context.Context, id uuid.UUID) error {
	f.marked = append(f.marked, id)
	return nil
}

func (f *fakeJobStore) InsertErrors(_ context.Context, jobID uuid.UUID, errs []domain.ImportError) error {
	f.errors[jobID] = append(f.errors[jobID], errs...)
	return nil
}

type fakeProviderStore struct {
	existing map[string]bool
	created  []domain.Provider
}

func newFakeProviderStore() *fakeProviderStore {
	return &fakeProviderStore{existing: make(map[string]bool)}
}

func (f *fakeProviderStore) ExistsByNameAndPostcode(_ context.Context, businessName, postcode string) (bool, error) {
	return f.existing[businessName+"|"+postcode], nil
}

func (f *fakeProviderStore) Create(_ context.Context, p domain.Provider) (uuid.UUID, error) {
	p.ID = uuid.New()
	f.created = append(f.created, p)
	f.existing[p.BusinessName+"|"+p.Postcode] = true
	return p.ID, nil
}

type fakeUserStore struct {
	byEmail      map[string]domain.User
	placeholders []string
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byEmail: make(map[string]domain.User)}
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return &u, nil
	}
	return nil, nil
}

func (f *fakeUserStore) CreatePlaceholder(_ context.Context, email string) (domain.User, error) {
	user := domain.User{ID: uuid.New(), Email: email, Role: domain.RoleProfessional}
	f.byEmail[email] = user
	f.placeholders = append(f.placeholders, email)
	return user, nil
}

type fakeGeocoder struct {
	entry *domain.PostcodeEntry
	err   error
	calls int
}

func (f *fakeGeocoder) Lookup(_ context.Context, _ string) (*domain.PostcodeEntry, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.entry, nil
}

type fakePacer struct {
	waits int
}

func (f *fakePacer) Wait(_ context.Context) error {
	f.waits++
	return nil
}

type fakeCategoryStore struct {
	existing map[string]bool
	created  []domain.Category
}

func (f *fakeCategoryStore) ExistsBySlugOrName(_ context.Context, slug, name string) (bool, error) {
	return f.existing[slug] || f.existing[name], nil
}

func (f *fakeCategoryStore) Create(_ context.Context, c domain.Category) (uuid.UUID, error) {
	c.ID = uuid.New()
	f.created = append(f.created, c)
	if f.existing == nil {
		f.existing = make(map[string]bool)
	}
	f.existing[c.Slug] = true
	f.existing[c.Name] = true
	return c.ID, nil
}

type fakeCityStore struct {
	existing map[string]bool
	created  []domain.City
}

func (f *fakeCityStore) ExistsBySlugOrName(_ context.Context, slug, name string) (bool, error) {
	return f.existing[slug] || f.existing[name], nil
}

func (f *fakeCityStore) Create(_ context.Context, c domain.City) (uuid.UUID, error) {
	c.ID = uuid.New()
	f.created = append(f.created, c)
	if f.existing == nil {
		f.existing = make(map[string]bool)
	}
	f.existing[c.Slug] = true
	f.existing[c.Name] = true
	return c.ID, nil
}

type fakeTagStore struct {
	existing map[string]bool
	created  []domain.CultureTag
}

func (f *fakeTagStore) ExistsBySlugOrName(_ context.Context, slug, name string) (bool, error) {
	return f.existing[slug] || f.existing[name], nil
}

func (f *fakeTagStore) Create(_ context.Context, t domain.CultureTag) (uuid.UUID, error) {
	t.ID = uuid.New()
	f.created = append(f.created, t)
	if f.existing == nil {
		f.existing = make(map[string]bool)
	}
	f.existing[t.Slug] = true
	f.existing[t.Name] = true
	return t.ID, nil
}

// testFixture wires a dispatcher over in-memory fakes.
type testFixture struct {
	jobs       *fakeJobStore
	providers  *fakeProviderStore
	users      *fakeUserStore
	geocoder   *fakeGeocoder
	pacer      *fakePacer
	categories *fakeCategoryStore
	cities     *fakeCityStore
	tags       *fakeTagStore
	dispatcher *Dispatcher
	admin      domain.User
}

func newTestFixture(t *testing.T, opts Options) *testFixture {
	t.Helper()

	f := &testFixture{
		jobs:       newFakeJobStore(),
		providers:  newFakeProviderStore(),
		users:      newFakeUserStore(),
		geocoder:   &fakeGeocoder{entry: &domain.PostcodeEntry{Latitude: 53.8, Longitude: -1.55, City: "Leeds"}},
		pacer:      &fakePacer{},
		categories: &fakeCategoryStore{},
		cities:     &fakeCityStore{},
		tags:       &fakeTagStore{},
		admin:      domain.User{ID: uuid.New(), Email: "admin@example.com", Role: domain.RoleAdministrator},
	}

	log := discardLogger()
	providerImp := NewProviderImporter(f.providers, f.users, f.geocoder, f.pacer, log)
	taxonomies := NewTaxonomyImporters(f.categories, f.cities, f.tags)
	f.dispatcher = NewDispatcher(f.jobs, providerImp, taxonomies, opts, log)
	return f
}

func defaultOptions() Options {
	return Options{MaxBatchRows: 5000, ResultSampleSize: 100, MaxErrorRecords: 1000}
}
