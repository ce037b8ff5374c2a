package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Price is the one-to-one costing row for a component. A component without a
// price row is deliberately unpriced and must fail aggregation rather than
// count as zero.
type Price struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ComponentID uuid.UUID       `gorm:"column:component_id;type:uuid;not null;uniqueIndex"`
	Costing     decimal.Decimal `gorm:"column:costing;type:numeric(12,2);not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
