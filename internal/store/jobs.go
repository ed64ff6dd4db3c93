// Package store implements Postgres persistence for the import service.
// All stores are thin repositories over a shared pgxpool; queries are plain
// SQL with positional parameters and pgtype scanning for nullable columns.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evalocal/vendor-import/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ImportJobStore persists the import-job ledger and its per-row errors.
type ImportJobStore struct {
	pool *pgxpool.Pool
}

// NewImportJobStore wires a job store backed by pgxpool.
func NewImportJobStore(pool *pgxpool.Pool) *ImportJobStore {
	return &ImportJobStore{pool: pool}
}

// Create inserts a job in PROCESSING state and returns it. This happens
// before any row work so a crash mid-run still leaves a ledger record.
func (s *ImportJobStore) Create(ctx context.Context, jobType domain.ImportType, totalRows int, createdBy uuid.UUID) (domain.ImportJob, error) {
	job := domain.ImportJob{
		Type:      jobType,
		Status:    domain.JobProcessing,
		TotalRows: totalRows,
		CreatedBy: createdBy,
	}

	err := s.pool.QueryRow(
		ctx,
		`INSERT INTO import_jobs (type, status, total_rows, created_by)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		string(jobType),
		string(domain.JobProcessing),
		totalRows,
		createdBy,
	).Scan(&job.ID, &job.CreatedAt)
	if err != nil {
		return domain.ImportJob{}, fmt.Errorf("failed to create import job: %w", err)
	}

	return job, nil
}

// Finish records the terminal state of a job: status, aggregate counts,
// and the serialized result sample.
func (s *ImportJobStore) Finish(ctx context.Context, id uuid.UUID, status domain.JobStatus, processed, successful, failed int, summary []byte) error {
	_, err := s.pool.Exec(
		ctx,
		`UPDATE import_jobs
		 SET status = $2, processed_rows = $3, successful_rows = $4,
		     failed_rows = $5, summary = $6, completed_at = now()
		 WHERE id = $1`,
		id, string(status), processed, successful, failed, summary,
	)
	if err != nil {
		return fmt.Errorf("failed to finish import job: %w", err)
	}
	return nil
}

// MarkFailed flags a job as FAILED without counts, used when the pipeline
// aborts before aggregation.
func (s *ImportJobStore) MarkFailed(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(
		ctx,
		`UPDATE import_jobs SET status = $2, completed_at = now() WHERE id = $1`,
		id, string(domain.JobFailed),
	)
	if err != nil {
		return fmt.Errorf("failed to mark import job failed: %w", err)
	}
	return nil
}

// InsertErrors bulk-inserts row-level error records for a job. Callers
// bound the slice (first N failures) before calling.
func (s *ImportJobStore) InsertErrors(ctx context.Context, jobID uuid.UUID, errs []domain.ImportError) error {
	if len(errs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, e := range errs {
		batch.Queue(
			`INSERT INTO import_errors (job_id, row_number, label, message)
			 VALUES ($1, $2, $3, $4)`,
			jobID, e.RowNumber, e.Label, e.Message,
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range errs {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert import errors: %w", err)
		}
	}
	return nil
}

// List returns a page of jobs ordered newest first, each annotated with
// its recorded error count, plus the total job count for pagination.
func (s *ImportJobStore) List(ctx context.Context, limit, offset int) ([]domain.ImportJob, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM import_jobs`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count import jobs: %w", err)
	}

	rows, err := s.pool.Query(
		ctx,
		`SELECT j.id, j.type, j.dry_run, j.status, j.total_rows, j.processed_rows,
		        j.successful_rows, j.failed_rows, j.summary, j.created_by,
		        j.created_at, j.completed_at,
		        (SELECT COUNT(*) FROM import_errors e WHERE e.job_id = j.id) AS error_count
		 FROM import_jobs j
		 ORDER BY j.created_at DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list import jobs: %w", err)
	}
	defer rows.Close()

	jobs := []domain.ImportJob{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, 0, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate import jobs: %w", err)
	}

	return jobs, total, nil
}

// Get returns one job with all of its recorded errors.
func (s *ImportJobStore) Get(ctx context.Context, id uuid.UUID) (domain.ImportJob, []domain.ImportError, error) {
	rows, err := s.pool.Query(
		ctx,
		`SELECT j.id, j.type, j.dry_run, j.status, j.total_rows, j.processed_rows,
		        j.successful_rows, j.failed_rows, j.summary, j.created_by,
		        j.created_at, j.completed_at,
		        (SELECT COUNT(*) FROM import_errors e WHERE e.job_id = j.id) AS error_count
		 FROM import_jobs j
		 WHERE j.id = $1`,
		id,
	)
	if err != nil {
		return domain.ImportJob{}, nil, fmt.Errorf("failed to load import job: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return domain.ImportJob{}, nil, ErrNotFound
	}
	job, err := scanJob(rows)
	rows.Close()
	if err != nil {
		return domain.ImportJob{}, nil, err
	}

	errRows, err := s.pool.Query(
		ctx,
		`SELECT id, job_id, row_number, label, message, created_at
		 FROM import_errors
		 WHERE job_id = $1
		 ORDER BY row_number`,
		id,
	)
	if err != nil {
		return domain.ImportJob{}, nil, fmt.Errorf("failed to load import errors: %w", err)
	}
	defer errRows.Close()

	importErrs := []domain.ImportError{}
	for errRows.Next() {
		var e domain.ImportError
		var createdAt pgtype.Timestamptz
		if err := errRows.Scan(&e.ID, &e.JobID, &e.RowNumber, &e.Label, &e.Message, &createdAt); err != nil {
			return domain.ImportJob{}, nil, fmt.Errorf("failed to scan import error: %w", err)
		}
		if createdAt.Valid {
			e.CreatedAt = createdAt.Time
		}
		importErrs = append(importErrs, e)
	}
	if err := errRows.Err(); err != nil {
		return domain.ImportJob{}, nil, fmt.Errorf("failed to iterate import errors: %w", err)
	}

	return job, importErrs, nil
}

func scanJob(rows pgx.Rows) (domain.ImportJob, error) {
	var (
		job         domain.ImportJob
		jobType     string
		status      string
		summary     []byte
		createdAt   pgtype.Timestamptz
		completedAt pgtype.Timestamptz
		errorCount  int64
	)

	err := rows.Scan(
		&job.ID, &jobType, &job.DryRun, &status, &job.TotalRows, &job.ProcessedRows,
		&job.SuccessfulRows, &job.FailedRows, &summary, &job.CreatedBy,
		&createdAt, &completedAt, &errorCount,
	)
	if err != nil {
		return domain.ImportJob{}, fmt.Errorf("failed to scan import job: %w", err)
	}

	job.Type = domain.ImportType(jobType)
	job.Status = domain.JobStatus(status)
	job.Summary = summary
	job.ErrorCount = int(errorCount)
	if createdAt.Valid {
		job.CreatedAt = createdAt.Time
	}
	if completedAt.Valid {
		t := completedAt.Time
		job.CompletedAt = &t
	}

	return job, nil
}
