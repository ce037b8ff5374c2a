package models

import (
	"time"

	"github.com/google/uuid"
)

// Component is the polymorphic catalog row. Columns are nullable because
// each category only fills the fields that matter to it; the catalog read
// layer converts rows into typed variants before the engine sees them.
type Component struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CategoryID uuid.UUID `gorm:"column:category_id;type:uuid;not null;index"`
	Category   *Category `gorm:"foreignKey:CategoryID"`
	Name       string    `gorm:"type:text;not null"`

	// Processor fields.
	CoreHardware *string `gorm:"column:core_hardware"`
	CPUCores     *int    `gorm:"column:cpu_cores"`
	RAMGB        *int    `gorm:"column:ram_gb"`
	VRAMGB       *int    `gorm:"column:vram_gb"`

	// AI fields.
	AICapable *bool   `gorm:"column:ai_capable"`
	AIFeature *string `gorm:"column:ai_feature"`

	// Storage fields.
	StoragePerCam *int `gorm:"column:storage_per_cam"`
	StoragePerDay *int `gorm:"column:storage_per_day"`

	// Licence fields.
	DurationYears *int `gorm:"column:duration_years"`

	// Sizing config fields. One row per catalog; the deriver treats it as a
	// singleton and fails when it is absent.
	CoresTier1      *float64 `gorm:"column:cores_tier1"`
	CoresTier2      *float64 `gorm:"column:cores_tier2"`
	RAMPerCamera    *float64 `gorm:"column:ram_per_camera"`
	VRAMPerAICamera *float64 `gorm:"column:vram_per_ai_camera"`

	Price *Price `gorm:"foreignKey:ComponentID"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
