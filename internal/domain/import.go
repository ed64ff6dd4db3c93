// Package domain defines the core types shared by the importer, stores,
// and web layer. It has no dependencies beyond uuid and time so it can be
// used from any layer without import cycles.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ImportType identifies which entity kind a batch targets.
type ImportType string

const (
	ImportProviders   ImportType = "providers"
	ImportCategories  ImportType = "categories"
	ImportCities      ImportType = "cities"
	ImportCultureTags ImportType = "culture_tags"
)

// Valid reports whether t is one of the supported import types.
func (t ImportType) Valid() bool {
	switch t {
	case ImportProviders, ImportCategories, ImportCities, ImportCultureTags:
		return true
	}
	return false
}

// JobStatus tracks the lifecycle of an import job.
type JobStatus string

const (
	JobProcessing JobStatus = "PROCESSING"
	JobCompleted  JobStatus = "COMPLETED"
	JobFailed     JobStatus = "FAILED"
)

// ImportJob is one bulk-import invocation. Created in PROCESSING state
// before any row work begins and mutated exactly once at completion.
type ImportJob struct {
	ID             uuid.UUID  `json:"id"`
	Type           ImportType `json:"type"`
	DryRun         bool       `json:"isDryRun"`
	Status         JobStatus  `json:"status"`
	TotalRows      int        `json:"totalRows"`
	ProcessedRows  int        `json:"processedRows"`
	SuccessfulRows int        `json:"successfulRows"`
	FailedRows     int        `json:"failedRows"`
	// Summary holds a JSON-encoded sample of the first row results.
	Summary     []byte     `json:"-"`
	ErrorCount  int        `json:"errorCount"`
	CreatedBy   uuid.UUID  `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// ImportError is one recorded row-level failure, linked to its job.
type ImportError struct {
	ID        uuid.UUID `json:"id"`
	JobID     uuid.UUID `json:"jobId"`
	RowNumber int       `json:"rowNumber"`
	Label     string    `json:"label"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// RowResult is the outcome of processing a single input row. Every row
// produces exactly one RowResult, success or failure. The JSON field names
// match the wire contract of the import API.
type RowResult struct {
	Success bool   `json:"success"`
	Row     int    `json:"row"`
	Label   string `json:"businessName"`
	Error   string `json:"error,omitempty"`
	// EntityID is the created entity's id on success.
	EntityID string `json:"providerId,omitempty"`
}

// Summary aggregates the outcome of a batch. Successful+Failed always
// equals Total.
type Summary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}
