package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sentinelworks/sentinel-backend/pkg/enums"
)

// Quotation carries both the derived requirement (phase 1, immutable after
// creation) and the priced result (phase 2, overwritten on each recompute).
type Quotation struct {
	ID     uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID uuid.UUID             `gorm:"column:user_id;type:uuid;not null;index"`
	User   *User                 `gorm:"foreignKey:UserID"`
	Status enums.QuotationStatus `gorm:"column:status;type:quotation_status;not null;default:'draft'"`

	// Requirement inputs and derived values.
	CameraCount       int  `gorm:"column:camera_count;not null"`
	AIEnabledCameras  int  `gorm:"column:ai_enabled_cameras;not null"`
	StorageDays       int  `gorm:"column:storage_days;not null"`
	StorageUsedScaled int  `gorm:"column:storage_used_scaled;not null"`
	VRAMRequired      int  `gorm:"column:vram_required;not null"`
	CPUCoresRequired  int  `gorm:"column:cpu_cores_required;not null"`
	RAMRequired       int  `gorm:"column:ram_required;not null"`
	IncludeCPU        bool `gorm:"column:include_cpu;not null;default:true"`
	IncludeGPU        bool `gorm:"column:include_gpu;not null;default:true"`
	IncludeStorage    bool `gorm:"column:include_storage;not null;default:true"`

	// Selected components. Null until priced, or when the line is excluded.
	CPUComponentID *uuid.UUID `gorm:"column:cpu_component_id;type:uuid"`
	CPUComponent   *Component `gorm:"foreignKey:CPUComponentID"`
	GPUComponentID *uuid.UUID `gorm:"column:gpu_component_id;type:uuid"`
	GPUComponent   *Component `gorm:"foreignKey:GPUComponentID"`

	// Licence is resolved during phase 1 and re-resolved on override.
	LicenceComponentID uuid.UUID  `gorm:"column:licence_component_id;type:uuid;not null"`
	LicenceComponent   *Component `gorm:"foreignKey:LicenceComponentID"`

	AIFeatures []QuotationAIFeature `gorm:"foreignKey:QuotationID"`

	// Cost breakdown. Zero until priced.
	CPUCost     decimal.Decimal `gorm:"column:cpu_cost;type:numeric(14,2);not null;default:0"`
	GPUCost     decimal.Decimal `gorm:"column:gpu_cost;type:numeric(14,2);not null;default:0"`
	AICost      decimal.Decimal `gorm:"column:ai_cost;type:numeric(14,2);not null;default:0"`
	StorageCost decimal.Decimal `gorm:"column:storage_cost;type:numeric(14,2);not null;default:0"`
	LicenceCost decimal.Decimal `gorm:"column:licence_cost;type:numeric(14,2);not null;default:0"`
	TotalCost   decimal.Decimal `gorm:"column:total_cost;type:numeric(14,2);not null;default:0"`

	PricedAt  *time.Time `gorm:"column:priced_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// QuotationAIFeature links a quotation to a selected AI component.
type QuotationAIFeature struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	QuotationID uuid.UUID  `gorm:"column:quotation_id;type:uuid;not null;index"`
	ComponentID uuid.UUID  `gorm:"column:component_id;type:uuid;not null"`
	Component   *Component `gorm:"foreignKey:ComponentID"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
}
