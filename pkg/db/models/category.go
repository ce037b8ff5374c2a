package models

import (
	"time"

	"github.com/google/uuid"
)

// Category groups catalog components. The name doubles as the discriminator
// the pricing engine matches on (Processor, AI, Storage, licence,
// CPU_GPU_Config).
type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"type:text;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
