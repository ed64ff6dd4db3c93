package web

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/evalocal/vendor-import/internal/domain"
	"github.com/evalocal/vendor-import/internal/logging"
)

type contextKey string

const userContextKey contextKey = "user"

// requireAdmin resolves the request's bearer token to a user and rejects
// requests without a valid session (401) or without the ADMINISTRATOR
// role (403). The resolved user is stored on the request context.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, r, http.StatusUnauthorized, "authentication required")
			return
		}

		user, err := s.sessions.FindBySessionToken(r.Context(), token, time.Now())
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, "failed to resolve session")
			return
		}
		if user == nil {
			writeError(w, r, http.StatusUnauthorized, "invalid or expired session")
			return
		}
		if user.Role != domain.RoleAdministrator {
			logging.FromContext(r.Context()).Warn("non-admin access rejected",
				"user_id", user.ID, "role", user.Role, "path", r.URL.Path)
			writeError(w, r, http.StatusForbidden, "administrator role required")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, *user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// userFromContext returns the authenticated user placed by requireAdmin.
func userFromContext(ctx context.Context) domain.User {
	user, _ := ctx.Value(userContextKey).(domain.User)
	return user
}

// bearerToken extracts the session token from the Authorization header,
// falling back to the session cookie set by the web frontend.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if cookie, err := r.Cookie("session_token"); err == nil {
		return cookie.Value
	}
	return ""
}
