package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/sentinelworks/sentinel-backend/pkg/db/models"
	"github.com/sentinelworks/sentinel-backend/pkg/enums"
)

// Entry is one fact to record. RequestMeta fields are optional.
type Entry struct {
	UserID    *uuid.UUID
	Action    enums.AuditAction
	Details   string
	IPAddress *string
	UserAgent *string
}

// LogDTO is the transport shape returned by the admin listing.
type LogDTO struct {
	ID        uuid.UUID         `json:"id"`
	UserID    *uuid.UUID        `json:"user_id,omitempty"`
	UserEmail *string           `json:"user_email,omitempty"`
	Action    enums.AuditAction `json:"action"`
	Details   string            `json:"details"`
	IPAddress *string           `json:"ip_address,omitempty"`
	UserAgent *string           `json:"user_agent,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// LogList wraps a page of audit facts plus the next page cursor.
type LogList struct {
	Logs       []LogDTO `json:"logs"`
	NextCursor string   `json:"next_cursor,omitempty"`
}

func fromModel(row *models.AuditLog) LogDTO {
	dto := LogDTO{
		ID:        row.ID,
		UserID:    row.UserID,
		Action:    row.Action,
		Details:   row.Details,
		IPAddress: row.IPAddress,
		UserAgent: row.UserAgent,
		CreatedAt: row.CreatedAt,
	}
	if row.User != nil {
		email := row.User.Email
		dto.UserEmail = &email
	}
	return dto
}
