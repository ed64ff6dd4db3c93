package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is a user's access level.
type Role string

const (
	RoleAdministrator Role = "ADMINISTRATOR"
	RoleProfessional  Role = "PROFESSIONAL"
	RoleCustomer      Role = "CUSTOMER"
)

// User is a marketplace account. The importer creates placeholder users
// (empty password hash, role PROFESSIONAL) when a provider row carries an
// email that does not match an existing account.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Session is an authenticated session token for a user. The admin API
// resolves the bearer token to a session and rejects expired ones.
type Session struct {
	Token     string    `json:"-"`
	UserID    uuid.UUID `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// Expired reports whether the session is past its expiry at the given time.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
