package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/sentinelworks/sentinel-backend/pkg/enums"
)

// OutboxEvent represents an append-only event emitted via the outbox pattern.
// Rows are written in the same transaction as the state change they announce
// and drained by the worker with at-least-once delivery.
type OutboxEvent struct {
	ID            uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EventType     enums.OutboxEventType     `gorm:"column:event_type;type:event_type_enum;not null"`
	AggregateType enums.OutboxAggregateType `gorm:"column:aggregate_type;type:aggregate_type_enum;not null"`
	AggregateID   uuid.UUID                 `gorm:"column:aggregate_id;type:uuid;not null"`
	Payload       json.RawMessage           `gorm:"column:payload;type:jsonb;not null"`
	Status        enums.OutboxEventStatus   `gorm:"column:status;type:outbox_status;not null;default:'pending'"`
	AttemptCount  int                       `gorm:"column:attempt_count;not null;default:0"`
	AvailableAt   time.Time                 `gorm:"column:available_at;not null"`
	PublishedAt   *time.Time                `gorm:"column:published_at"`
	LastError     *string                   `gorm:"column:last_error"`
	CreatedAt     time.Time                 `gorm:"column:created_at;autoCreateTime"`
}
