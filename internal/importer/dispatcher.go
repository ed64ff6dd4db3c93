// Package importer implements the bulk-import pipeline: a dispatcher
// that routes typed row batches to per-type importers, aggregates the
// per-row outcomes, and records the run in the job ledger.
package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/evalocal/vendor-import/internal/domain"
)

// Request-level validation failures. The web layer maps these to 400.
var (
	ErrUnsupportedType = errors.New("unsupported import type")
	ErrEmptyBatch      = errors.New("import data must be a non-empty array")
	ErrBatchTooLarge   = errors.New("import batch exceeds the row limit")
)

// JobStore is the ledger surface the dispatcher needs. Implemented by
// store.ImportJobStore.
type JobStore interface {
	Create(ctx context.Context, jobType domain.ImportType, totalRows int, createdBy uuid.UUID) (domain.ImportJob, error)
	Finish(ctx context.Context, id uuid.UUID, status domain.JobStatus, processed, successful, failed int, summary []byte) error
	MarkFailed(ctx context.Context, id uuid.UUID) error
	InsertErrors(ctx context.Context, jobID uuid.UUID, errs []domain.ImportError) error
}

// rowImporter is the shared shape of the four per-type importers. A
// returned error aborts the whole batch; per-row failures are reported
// inside the results instead.
type rowImporter interface {
	run(ctx context.Context, rows []Row, dryRun bool, actor domain.User) ([]domain.RowResult, error)
}

// Batch is one import invocation as submitted by the client.
type Batch struct {
	Type   domain.ImportType
	Rows   []Row
	DryRun bool
}

// Outcome is the aggregate result of a batch. Results is truncated to
// the configured sample size; Summary counts cover every row.
type Outcome struct {
	Summary domain.Summary
	Results []domain.RowResult
	JobID   uuid.UUID // uuid.Nil for dry runs
}

// Options bound how much of a run is persisted and returned.
type Options struct {
	MaxBatchRows     int
	ResultSampleSize int
	MaxErrorRecords  int
}

// Dispatcher validates a batch, books it into the job ledger, and routes
// it to the matching per-type importer.
type Dispatcher struct {
	jobs JobStore
	opts Options
	log  *slog.Logger

	providers   rowImporter
	categories  rowImporter
	cities      rowImporter
	cultureTags rowImporter
}

// NewDispatcher wires a dispatcher over the four per-type importers.
func NewDispatcher(jobs JobStore, providers *ProviderImporter, taxonomies *TaxonomyImporters, opts Options, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		jobs:        jobs,
		opts:        opts,
		log:         log,
		providers:   providers,
		categories:  taxonomies.categories,
		cities:      taxonomies.cities,
		cultureTags: taxonomies.cultureTags,
	}
}

// Run processes one batch on behalf of the given administrator.
//
// Live runs create a PROCESSING job before any row work, then settle it
// to COMPLETED when at least one row succeeded, FAILED otherwise. Dry
// runs touch neither the ledger nor any entity table. Row-level failures
// never abort the batch; only an unsupported type, an oversized or empty
// batch, or a ledger/importer-level error does.
func (d *Dispatcher) Run(ctx context.Context, batch Batch, actor domain.User) (*Outcome, error) {
	imp, err := d.route(batch.Type)
	if err != nil {
		return nil, err
	}
	if len(batch.Rows) == 0 {
		return nil, ErrEmptyBatch
	}
	if d.opts.MaxBatchRows > 0 && len(batch.Rows) > d.opts.MaxBatchRows {
		return nil, fmt.Errorf("%w: %d rows, limit %d", ErrBatchTooLarge, len(batch.Rows), d.opts.MaxBatchRows)
	}

	var job domain.ImportJob
	if !batch.DryRun {
		job, err = d.jobs.Create(ctx, batch.Type, len(batch.Rows), actor.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to record import job: %w", err)
		}
	}

	results, err := imp.run(ctx, batch.Rows, batch.DryRun, actor)
	if err != nil {
		if !batch.DryRun {
			if mErr := d.jobs.MarkFailed(ctx, job.ID); mErr != nil {
				d.log.ErrorContext(ctx, "failed to mark aborted import job", "job_id", job.ID, "error", mErr)
			}
		}
		return nil, err
	}

	outcome := d.aggregate(results)
	if !batch.DryRun {
		outcome.JobID = job.ID
		d.settle(ctx, job.ID, outcome, results)
	}
	return outcome, nil
}

func (d *Dispatcher) route(t domain.ImportType) (rowImporter, error) {
	switch t {
	case domain.ImportProviders:
		return d.providers, nil
	case domain.ImportCategories:
		return d.categories, nil
	case domain.ImportCities:
		return d.cities, nil
	case domain.ImportCultureTags:
		return d.cultureTags, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, t)
	}
}

func (d *Dispatcher) aggregate(results []domain.RowResult) *Outcome {
	out := &Outcome{Summary: domain.Summary{Total: len(results)}}
	for _, r := range results {
		if r.Success {
			out.Summary.Successful++
		} else {
			out.Summary.Failed++
		}
	}

	sample := results
	if d.opts.ResultSampleSize > 0 && len(sample) > d.opts.ResultSampleSize {
		sample = sample[:d.opts.ResultSampleSize]
	}
	out.Results = sample
	return out
}

// settle writes the terminal job state and the bounded error records.
// Ledger writes are best-effort: entities created during the run are
// never rolled back, so a persistence failure here is logged and the
// outcome is still returned to the client.
func (d *Dispatcher) settle(ctx context.Context, jobID uuid.UUID, outcome *Outcome, results []domain.RowResult) {
	status := domain.JobCompleted
	if outcome.Summary.Successful == 0 {
		status = domain.JobFailed
	}

	summary, err := json.Marshal(outcome.Results)
	if err != nil {
		d.log.ErrorContext(ctx, "failed to encode job summary", "job_id", jobID, "error", err)
	}

	if err := d.jobs.Finish(ctx, jobID, status, outcome.Summary.Total,
		outcome.Summary.Successful, outcome.Summary.Failed, summary); err != nil {
		d.log.ErrorContext(ctx, "failed to finish import job", "job_id", jobID, "error", err)
	}

	var errs []domain.ImportError
	for _, r := range results {
		if r.Success {
			continue
		}
		errs = append(errs, domain.ImportError{
			JobID:     jobID,
			RowNumber: r.Row,
			Label:     r.Label,
			Message:   r.Error,
		})
		if d.opts.MaxErrorRecords > 0 && len(errs) == d.opts.MaxErrorRecords {
			break
		}
	}
	if err := d.jobs.InsertErrors(ctx, jobID, errs); err != nil {
		d.log.ErrorContext(ctx, "failed to record import errors", "job_id", jobID, "error", err)
	}
}

// failure builds a per-row failure result. Empty error messages collapse
// to a generic marker so the ledger never stores a blank reason.
func failure(row int, label string, err error) domain.RowResult {
	msg := "Unknown error"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return domain.RowResult{Row: row, Label: label, Error: msg}
}
