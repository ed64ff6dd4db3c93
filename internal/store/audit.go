package store

import (
	"context"
	"fmt"
	"net"
	"net/netip"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evalocal/vendor-import/internal/domain"
)

// AuditStore records administrative import actions.
type AuditStore struct {
	pool *pgxpool.Pool
}

// NewAuditStore wires an audit store backed by pgxpool.
func NewAuditStore(pool *pgxpool.Pool) *AuditStore {
	return &AuditStore{pool: pool}
}

// Record inserts one audit entry. Failures here are the caller's choice to
// swallow; the audit trail is best-effort relative to the import itself.
func (s *AuditStore) Record(ctx context.Context, entry domain.AuditEntry) error {
	// Strip the port RemoteAddr carries before parsing the address.
	var ipAddr *netip.Addr
	if entry.IPAddress != "" {
		host := entry.IPAddress
		if h, _, err := net.SplitHostPort(entry.IPAddress); err == nil {
			host = h
		}
		if addr, err := netip.ParseAddr(host); err == nil {
			ipAddr = &addr
		}
	}

	_, err := s.pool.Exec(
		ctx,
		`INSERT INTO audit_log
		   (action, actor_id, actor_email, job_id, dry_run,
		    total_rows, successful_rows, failed_rows, ip_address, user_agent)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		entry.Action, entry.ActorID, entry.ActorEmail, entry.JobID, entry.DryRun,
		entry.TotalRows, entry.Successful, entry.Failed, ipAddr, entry.UserAgent,
	)
	if err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}

// List returns a page of audit entries, newest first, with the total count.
func (s *AuditStore) List(ctx context.Context, limit, offset int) ([]domain.AuditEntry, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM audit_log`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count audit entries: %w", err)
	}

	rows, err := s.pool.Query(
		ctx,
		`SELECT id, action, actor_id, actor_email, job_id, dry_run,
		        total_rows, successful_rows, failed_rows, ip_address,
		        user_agent, created_at
		 FROM audit_log
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	entries := []domain.AuditEntry{}
	for rows.Next() {
		var (
			entry      domain.AuditEntry
			actorEmail pgtype.Text
			ipAddress  *netip.Addr
			userAgent  pgtype.Text
			createdAt  pgtype.Timestamptz
		)

		err := rows.Scan(
			&entry.ID, &entry.Action, &entry.ActorID, &actorEmail, &entry.JobID,
			&entry.DryRun, &entry.TotalRows, &entry.Successful, &entry.Failed,
			&ipAddress, &userAgent, &createdAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan audit entry: %w", err)
		}

		if actorEmail.Valid {
			entry.ActorEmail = actorEmail.String
		}
		if ipAddress != nil {
			entry.IPAddress = ipAddress.String()
		}
		if userAgent.Valid {
			entry.UserAgent = userAgent.String
		}
		if createdAt.Valid {
			entry.CreatedAt = createdAt.Time
		}

		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate audit entries: %w", err)
	}

	return entries, total, nil
}
