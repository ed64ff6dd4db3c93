package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditEntry records one administrative import action for later review.
type AuditEntry struct {
	ID         uuid.UUID  `json:"id"`
	Action     string     `json:"action"`
	ActorID    uuid.UUID  `json:"actorId"`
	ActorEmail string     `json:"actorEmail,omitempty"`
	JobID      *uuid.UUID `json:"jobId,omitempty"`
	DryRun     bool       `json:"dryRun"`
	TotalRows  int        `json:"totalRows"`
	Successful int        `json:"successful"`
	Failed     int        `json:"failed"`
	IPAddress  string     `json:"ipAddress,omitempty"`
	UserAgent  string     `json:"userAgent,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}
