package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sentinelworks/sentinel-backend/pkg/enums"
)

// AuditLog is an append-only record of user-visible actions. Writes are
// fire-and-forget; a failed insert never fails the originating request.
type AuditLog struct {
	ID        uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    *uuid.UUID        `gorm:"column:user_id;type:uuid;index"`
	User      *User             `gorm:"foreignKey:UserID"`
	Action    enums.AuditAction `gorm:"column:action;type:audit_action;not null"`
	Details   string            `gorm:"column:details;type:text;not null"`
	IPAddress *string           `gorm:"column:ip_address"`
	UserAgent *string           `gorm:"column:user_agent"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
}
