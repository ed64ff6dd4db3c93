package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/evalocal/vendor-import/internal/domain"
)

func TestRunRejectsUnsupportedType(t *testing.T) {
	f := newTestFixture(t, defaultOptions())

	_, err := f.dispatcher.Run(context.Background(), Batch{
		Type: "bookings",
		Rows: []Row{{"name": "x"}},
	}, f.admin)

	if !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("error = %v, want ErrUnsupportedType", err)
	}
	if len(f.jobs.created) != 0 {
		t.Errorf("jobs created = %d, want 0 on validation failure", len(f.jobs.created))
	}
}

func TestRunRejectsEmptyBatch(t *testing.T) {
	f := newTestFixture(t, defaultOptions())

	_, err := f.dispatcher.Run(context.Background(), Batch{Type: domain.ImportCities}, f.admin)
	if !errors.Is(err, ErrEmptyBatch) {
		t.Errorf("error = %v, want ErrEmptyBatch", err)
	}
}

func TestRunRejectsOversizedBatch(t *testing.T) {
	opts := defaultOptions()
	opts.MaxBatchRows = 2
	f := newTestFixture(t, opts)

	rows := []Row{{"name": "a"}, {"name": "b"}, {"name": "c"}}
	_, err := f.dispatcher.Run(context.Background(), Batch{Type: domain.ImportCities, Rows: rows}, f.admin)
	if !errors.Is(err, ErrBatchTooLarge) {
		t.Errorf("error = %v, want ErrBatchTooLarge", err)
	}
	if len(f.jobs.created) != 0 {
		t.Errorf("jobs created = %d, want 0", len(f.jobs.created))
	}
}

func TestRunLiveBatchSettlesJob(t *testing.T) {
	f := newTestFixture(t, defaultOptions())

	rows := []Row{{"name": "Leeds"}, {"name": ""}, {"name": "York"}}
	outcome, err := f.dispatcher.Run(context.Background(), Batch{Type: domain.ImportCities, Rows: rows}, f.admin)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := domain.Summary{Total: 3, Successful: 2, Failed: 1}
	if outcome.Summary != want {
		t.Errorf("summary = %+v, want %+v", outcome.Summary, want)
	}
	if outcome.Summary.Successful+outcome.Summary.Failed != outcome.Summary.Total {
		t.Error("successful + failed must equal total")
	}

	if len(f.jobs.created) != 1 {
		t.Fatalf("jobs created = %d, want 1", len(f.jobs.created))
	}
	job := f.jobs.created[0]
	if job.TotalRows != 3 || job.CreatedBy != f.admin.ID {
		t.Errorf("job = %+v, want totalRows 3 createdBy admin", job)
	}
	if outcome.JobID != job.ID {
		t.Errorf("outcome job id = %s, want %s", outcome.JobID, job.ID)
	}

	if len(f.jobs.finished) != 1 {
		t.Fatalf("finish calls = %d, want 1", len(f.jobs.finished))
	}
	fin := f.jobs.finished[0]
	if fin.status != domain.JobCompleted {
		t.Errorf("status = %s, want COMPLETED with at least one success", fin.status)
	}
	if fin.processed != 3 || fin.successful != 2 || fin.failed != 1 {
		t.Errorf("counts = %d/%d/%d, want 3/2/1", fin.processed, fin.successful, fin.failed)
	}

	var sample []domain.RowResult
	if err := json.Unmarshal(fin.summary, &sample); err != nil {
		t.Fatalf("summary is not valid JSON: %v", err)
	}
	if len(sample) != 3 {
		t.Errorf("summary sample = %d results, want 3", len(sample))
	}

	recorded := f.jobs.errors[job.ID]
	if len(recorded) != 1 {
		t.Fatalf("error records = %d, want 1", len(recorded))
	}
	if recorded[0].RowNumber != 2 || recorded[0].Message != "Missing required field: name" {
		t.Errorf("error record = %+v", recorded[0])
	}
}

func TestRunAllRowsFailedMarksJobFailed(t *testing.T) {
	f := newTestFixture(t, defaultOptions())

	rows := []Row{{"slug": "no-name"}, {}}
	outcome, err := f.dispatcher.Run(context.Background(), Batch{Type: domain.ImportCategories, Rows: rows}, f.admin)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if outcome.Summary.Successful != 0 {
		t.Fatalf("successful = %d, want 0", outcome.Summary.Successful)
	}

	if len(f.jobs.finished) != 1 || f.jobs.finished[0].status != domain.JobFailed {
		t.Errorf("job should settle FAILED when every row failed, got %+v", f.jobs.finished)
	}
}

func TestRunDryRunTouchesNothing(t *testing.T) {
	f := newTestFixture(t, defaultOptions())

	rows := []Row{{"name": "Leeds"}, {"name": "York"}}
	outcome, err := f.dispatcher.Run(context.Background(), Batch{
		Type: domain.ImportCities, Rows: rows, DryRun: true,
	}, f.admin)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if outcome.Summary.Successful != 2 {
		t.Errorf("successful = %d, want 2", outcome.Summary.Successful)
	}
	if outcome.JobID != uuid.Nil {
		t.Errorf("dry run job id = %s, want nil uuid", outcome.JobID)
	}
	if len(f.jobs.created) != 0 || len(f.jobs.finished) != 0 {
		t.Error("dry run must not write the job ledger")
	}
	if len(f.cities.created) != 0 {
		t.Errorf("cities created = %d, want 0 on dry run", len(f.cities.created))
	}
}

func TestRunJobCreationFailureAborts(t *testing.T) {
	f := newTestFixture(t, defaultOptions())
	f.jobs.createErr = errors.New("db down")

	_, err := f.dispatcher.Run(context.Background(), Batch{
		Type: domain.ImportCities, Rows: []Row{{"name": "Leeds"}},
	}, f.admin)
	if err == nil {
		t.Fatal("Run() should fail when the job cannot be recorded")
	}
	if len(f.cities.created) != 0 {
		t.Error("no entity work should happen after a ledger failure")
	}
}

func TestRunTruncatesResultSample(t *testing.T) {
	opts := defaultOptions()
	opts.ResultSampleSize = 5
	f := newTestFixture(t, opts)

	rows := make([]Row, 12)
	for i := range rows {
		rows[i] = Row{"name": fmt.Sprintf("City %d", i)}
	}

	outcome, err := f.dispatcher.Run(context.Background(), Batch{Type: domain.ImportCities, Rows: rows}, f.admin)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if outcome.Summary.Total != 12 {
		t.Errorf("total = %d, want 12", outcome.Summary.Total)
	}
	if len(outcome.Results) != 5 {
		t.Errorf("results = %d, want sample of 5", len(outcome.Results))
	}
}

func TestRunCapsErrorRecords(t *testing.T) {
	opts := defaultOptions()
	opts.MaxErrorRecords = 3
	f := newTestFixture(t, opts)

	rows := make([]Row, 8) // all rows missing the name field
	for i := range rows {
		rows[i] = Row{}
	}

	_, err := f.dispatcher.Run(context.Background(), Batch{Type: domain.ImportCultureTags, Rows: rows}, f.admin)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	job := f.jobs.created[0]
	if got := len(f.jobs.errors[job.ID]); got != 3 {
		t.Errorf("error records = %d, want cap of 3", got)
	}
}
