package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sentinelworks/sentinel-backend/pkg/db/models"
	"github.com/sentinelworks/sentinel-backend/pkg/enums"
)

// The typed variants below are what the pricing engine consumes. Converting
// at the catalog boundary means the engine never touches a nullable column
// that does not belong to the category it asked for.

// ProcessorSpec is a CPU or GPU row from the Processor category.
type ProcessorSpec struct {
	ID           uuid.UUID
	Name         string
	CoreHardware string
	CPUCores     *int
	RAMGB        *int
	VRAMGB       *int
	Cost         *decimal.Decimal
}

// AIFeature is a priced AI capability.
type AIFeature struct {
	ID      uuid.UUID
	Name    string
	Feature string
	Cost    *decimal.Decimal
}

// StorageRate is the single Storage component's unit price.
type StorageRate struct {
	ID   uuid.UUID
	Name string
	Cost *decimal.Decimal
}

// LicenceTerm is a licence option with its duration and price.
type LicenceTerm struct {
	ID            uuid.UUID
	Name          string
	DurationYears int
	Cost          *decimal.Decimal
}

// SizingConfig holds the requirement coefficients. The catalog keeps exactly
// one; derivation fails when it is missing.
type SizingConfig struct {
	ID              uuid.UUID
	CoresTier1      float64
	CoresTier2      float64
	RAMPerCamera    float64
	VRAMPerAICamera float64
}

// CategoryDTO is the transport shape for categories.
type CategoryDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ComponentDTO is the transport shape for catalog administration. Only the
// fields relevant to the component's category are populated.
type ComponentDTO struct {
	ID       uuid.UUID `json:"id"`
	Category string    `json:"category"`
	Name     string    `json:"name"`

	CoreHardware *string `json:"core_hardware,omitempty"`
	CPUCores     *int    `json:"cpu_cores,omitempty"`
	RAMGB        *int    `json:"ram_gb,omitempty"`
	VRAMGB       *int    `json:"vram_gb,omitempty"`

	AICapable *bool   `json:"ai_capable,omitempty"`
	AIFeature *string `json:"ai_feature,omitempty"`

	StoragePerCam *int `json:"storage_per_cam,omitempty"`
	StoragePerDay *int `json:"storage_per_day,omitempty"`

	DurationYears *int `json:"duration_years,omitempty"`

	CoresTier1      *float64 `json:"cores_tier1,omitempty"`
	CoresTier2      *float64 `json:"cores_tier2,omitempty"`
	RAMPerCamera    *float64 `json:"ram_per_camera,omitempty"`
	VRAMPerAICamera *float64 `json:"vram_per_ai_camera,omitempty"`

	Cost *decimal.Decimal `json:"cost,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func categoryFromModel(row *models.Category) CategoryDTO {
	return CategoryDTO{
		ID:        row.ID,
		Name:      row.Name,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func componentFromModel(row *models.Component) ComponentDTO {
	dto := ComponentDTO{
		ID:              row.ID,
		Name:            row.Name,
		CoreHardware:    row.CoreHardware,
		CPUCores:        row.CPUCores,
		RAMGB:           row.RAMGB,
		VRAMGB:          row.VRAMGB,
		AICapable:       row.AICapable,
		AIFeature:       row.AIFeature,
		StoragePerCam:   row.StoragePerCam,
		StoragePerDay:   row.StoragePerDay,
		DurationYears:   row.DurationYears,
		CoresTier1:      row.CoresTier1,
		CoresTier2:      row.CoresTier2,
		RAMPerCamera:    row.RAMPerCamera,
		VRAMPerAICamera: row.VRAMPerAICamera,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
	if row.Category != nil {
		dto.Category = row.Category.Name
	}
	if row.Price != nil {
		cost := row.Price.Costing
		dto.Cost = &cost
	}
	return dto
}

func priceOf(row *models.Component) *decimal.Decimal {
	if row.Price == nil {
		return nil
	}
	cost := row.Price.Costing
	return &cost
}

func processorFromModel(row *models.Component) ProcessorSpec {
	spec := ProcessorSpec{
		ID:       row.ID,
		Name:     row.Name,
		CPUCores: row.CPUCores,
		RAMGB:    row.RAMGB,
		VRAMGB:   row.VRAMGB,
		Cost:     priceOf(row),
	}
	if row.CoreHardware != nil {
		spec.CoreHardware = *row.CoreHardware
	}
	return spec
}

func aiFeatureFromModel(row *models.Component) AIFeature {
	feature := AIFeature{
		ID:   row.ID,
		Name: row.Name,
		Cost: priceOf(row),
	}
	if row.AIFeature != nil {
		feature.Feature = *row.AIFeature
	}
	return feature
}

func storageRateFromModel(row *models.Component) StorageRate {
	return StorageRate{
		ID:   row.ID,
		Name: row.Name,
		Cost: priceOf(row),
	}
}

func licenceTermFromModel(row *models.Component) LicenceTerm {
	term := LicenceTerm{
		ID:   row.ID,
		Name: row.Name,
		Cost: priceOf(row),
	}
	if row.DurationYears != nil {
		term.DurationYears = *row.DurationYears
	}
	return term
}

func sizingFromModel(row *models.Component) (*SizingConfig, bool) {
	if row.CoresTier1 == nil || row.CoresTier2 == nil ||
		row.RAMPerCamera == nil || row.VRAMPerAICamera == nil {
		return nil, false
	}
	return &SizingConfig{
		ID:              row.ID,
		CoresTier1:      *row.CoresTier1,
		CoresTier2:      *row.CoresTier2,
		RAMPerCamera:    *row.RAMPerCamera,
		VRAMPerAICamera: *row.VRAMPerAICamera,
	}, true
}

// CategoryOf reports the category kind for a component DTO.
func (c ComponentDTO) CategoryOf() enums.CategoryKind {
	return enums.CategoryKind(c.Category)
}
