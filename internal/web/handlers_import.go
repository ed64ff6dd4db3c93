package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/evalocal/vendor-import/internal/domain"
	"github.com/evalocal/vendor-import/internal/importer"
	"github.com/evalocal/vendor-import/internal/logging"
	"github.com/evalocal/vendor-import/internal/store"
)

// importRequest is the body of POST /api/admin/import.
type importRequest struct {
	Type     string         `json:"type"`
	Data     []importer.Row `json:"data"`
	IsDryRun bool           `json:"isDryRun"`
}

// importResponse is the body returned for a completed batch.
type importResponse struct {
	Message     string             `json:"message"`
	Summary     domain.Summary     `json:"summary"`
	Results     []domain.RowResult `json:"results"`
	ImportJobID string             `json:"importJobId,omitempty"`
}

// handleCreateImport runs a JSON batch synchronously and returns the
// aggregate summary with a truncated result sample.
func (s *Server) handleCreateImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s.runImport(w, r, importer.Batch{
		Type:   domain.ImportType(req.Type),
		Rows:   req.Data,
		DryRun: req.IsDryRun,
	})
}

// handleImportFile accepts a multipart CSV or XLSX upload and runs it
// through the same pipeline as the JSON endpoint. Form fields: file,
// type, isDryRun.
func (s *Server) handleImportFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxFileSize)
	if err := r.ParseMultipartForm(s.cfg.Import.MaxFileSize); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid or oversized multipart body")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	rows, err := importer.ParseUpload(header.Filename, file)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	dryRun := r.FormValue("isDryRun") == "true" || r.FormValue("dryRun") == "true"
	s.runImport(w, r, importer.Batch{
		Type:   domain.ImportType(r.FormValue("type")),
		Rows:   rows,
		DryRun: dryRun,
	})
}

// runImport executes a batch for the authenticated administrator,
// records the action in the audit trail, and writes the response.
func (s *Server) runImport(w http.ResponseWriter, r *http.Request, batch importer.Batch) {
	actor := userFromContext(r.Context())

	outcome, err := s.imports.Run(r.Context(), batch, actor)
	if err != nil {
		switch {
		case errors.Is(err, importer.ErrUnsupportedType),
			errors.Is(err, importer.ErrEmptyBatch),
			errors.Is(err, importer.ErrBatchTooLarge):
			writeError(w, r, http.StatusBadRequest, err.Error())
		default:
			logging.FromContext(r.Context()).Error("import run failed",
				"type", batch.Type, "rows", len(batch.Rows), "error", err)
			writeError(w, r, http.StatusInternalServerError, "import failed")
		}
		return
	}

	s.recordAudit(r, batch, actor, outcome)

	resp := importResponse{
		Message: fmt.Sprintf("Import completed: %d successful, %d failed",
			outcome.Summary.Successful, outcome.Summary.Failed),
		Summary: outcome.Summary,
		Results: outcome.Results,
	}
	if batch.DryRun {
		resp.Message = fmt.Sprintf("Dry run completed: %d successful, %d failed",
			outcome.Summary.Successful, outcome.Summary.Failed)
	}
	if outcome.JobID != uuid.Nil {
		resp.ImportJobID = outcome.JobID.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

// recordAudit writes the action to the audit trail. Best-effort: a
// failure is logged and the import response is still returned.
func (s *Server) recordAudit(r *http.Request, batch importer.Batch, actor domain.User, outcome *importer.Outcome) {
	entry := domain.AuditEntry{
		Action:     fmt.Sprintf("import.%s", batch.Type),
		ActorID:    actor.ID,
		ActorEmail: actor.Email,
		DryRun:     batch.DryRun,
		TotalRows:  outcome.Summary.Total,
		Successful: outcome.Summary.Successful,
		Failed:     outcome.Summary.Failed,
		IPAddress:  r.RemoteAddr,
		UserAgent:  r.UserAgent(),
	}
	if outcome.JobID != uuid.Nil {
		jobID := outcome.JobID
		entry.JobID = &jobID
	}

	if err := s.audit.Record(r.Context(), entry); err != nil {
		logging.FromContext(r.Context()).Error("failed to record audit entry",
			"action", entry.Action, "error", err)
	}
}

// handleListImports returns a page of past jobs, newest first.
func (s *Server) handleListImports(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r)

	jobs, total, err := s.jobs.List(r.Context(), limit, (page-1)*limit)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list import jobs", "error", err)
		writeError(w, r, http.StatusInternalServerError, "failed to list import jobs")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"jobs":  jobs,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// handleGetImport returns one job with its recorded row errors.
func (s *Server) handleGetImport(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "jobID"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid job id")
		return
	}

	job, rowErrors, err := s.jobs.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "import job not found")
		return
	}
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to load import job", "job_id", id, "error", err)
		writeError(w, r, http.StatusInternalServerError, "failed to load import job")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"job":    job,
		"errors": rowErrors,
	})
}

// pagination parses page/limit query params with sane bounds.
func pagination(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
