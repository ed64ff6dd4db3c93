package web

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/evalocal/vendor-import/internal/logging"
)

// errorResponse is the JSON structure for API error responses.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON encodes v as JSON and writes it with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already sent; nothing left to do but log.
		slog.Error("json encode failed", "error", err)
	}
}

// writeError logs the failure with the request id and returns a JSON
// error body. Message should already be safe for clients; internal
// detail belongs in the log call at the failure site.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	logging.FromContext(r.Context()).Warn("request failed",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", message,
	)
	writeJSON(w, status, errorResponse{Error: message})
}
