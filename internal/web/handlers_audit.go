package web

import (
	"net/http"

	"github.com/evalocal/vendor-import/internal/logging"
)

// handleListAudit returns a page of audit entries, newest first.
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r)

	entries, total, err := s.audit.List(r.Context(), limit, (page-1)*limit)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list audit entries", "error", err)
		writeError(w, r, http.StatusInternalServerError, "failed to list audit entries")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}
