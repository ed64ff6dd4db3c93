package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evalocal/vendor-import/internal/domain"
)

// UserStore persists marketplace accounts and resolves session tokens.
type UserStore struct {
	pool *pgxpool.Pool
}

// NewUserStore wires a user store backed by pgxpool.
func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

// FindByEmail returns the user with the given email, or nil when none exists.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.pool.QueryRow(
		ctx,
		`SELECT id, email, name, role, created_at FROM users WHERE lower(email) = lower($1)`,
		email,
	)

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// CreatePlaceholder inserts a professional account with an empty password
// hash. The vendor claims it later through the normal password-reset flow.
func (s *UserStore) CreatePlaceholder(ctx context.Context, email string) (domain.User, error) {
	user := domain.User{
		Email: strings.TrimSpace(email),
		Role:  domain.RoleProfessional,
	}

	err := s.pool.QueryRow(
		ctx,
		`INSERT INTO users (email, password_hash, role)
		 VALUES ($1, '', $2)
		 RETURNING id, created_at`,
		user.Email, string(domain.RoleProfessional),
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to create placeholder user: %w", err)
	}

	return user, nil
}

// FindBySessionToken resolves a bearer token to its user. Returns nil when
// the token is unknown or the session has expired.
func (s *UserStore) FindBySessionToken(ctx context.Context, token string, now time.Time) (*domain.User, error) {
	row := s.pool.QueryRow(
		ctx,
		`SELECT u.id, u.email, u.name, u.role, u.created_at
		 FROM sessions s
		 JOIN users u ON u.id = s.user_id
		 WHERE s.token = $1 AND s.expires_at > $2`,
		token, now,
	)

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve session token: %w", err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user      domain.User
		name      pgtype.Text
		role      string
		createdAt pgtype.Timestamptz
	)

	if err := row.Scan(&user.ID, &user.Email, &name, &role, &createdAt); err != nil {
		return nil, err
	}

	if name.Valid {
		user.Name = name.String
	}
	user.Role = domain.Role(role)
	if createdAt.Valid {
		user.CreatedAt = createdAt.Time
	}

	return &user, nil
}
