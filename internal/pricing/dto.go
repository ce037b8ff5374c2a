package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sentinelworks/sentinel-backend/pkg/db/models"
	"github.com/sentinelworks/sentinel-backend/pkg/enums"
)

// CreateQuotationRequest is the phase-1 payload: the deployment facts the
// requirement is derived from.
type CreateQuotationRequest struct {
	CameraCount      int         `json:"camera_count" validate:"required,gt=0"`
	AIEnabledCameras *int        `json:"ai_enabled_cameras,omitempty" validate:"omitempty,gte=0"`
	StorageDays      int         `json:"storage_days" validate:"gte=0"`
	AIFeatureIDs     []uuid.UUID `json:"ai_feature_ids,omitempty"`
	LicenceID        uuid.UUID   `json:"licence_id" validate:"required"`
	IncludeCPU       *bool       `json:"include_cpu,omitempty"`
	IncludeGPU       *bool       `json:"include_gpu,omitempty"`
	IncludeStorage   *bool       `json:"include_storage,omitempty"`
}

// RecomputeRequest carries the phase-2 overrides. Every field is optional
// and falls back to the value stored on the quotation.
type RecomputeRequest struct {
	LicenceID      *uuid.UUID `json:"licence_id,omitempty"`
	IncludeCPU     *bool      `json:"include_cpu,omitempty"`
	IncludeGPU     *bool      `json:"include_gpu,omitempty"`
	IncludeStorage *bool      `json:"include_storage,omitempty"`
}

// RequestMeta carries request attribution for the audit trail.
type RequestMeta struct {
	IPAddress *string
	UserAgent *string
}

// CostLine names one priced component in the breakdown.
type CostLine struct {
	ComponentID *uuid.UUID      `json:"component_id,omitempty"`
	Name        string          `json:"name,omitempty"`
	Cost        decimal.Decimal `json:"cost"`
}

// QuotationDTO is the transport shape for quotation reads.
type QuotationDTO struct {
	ID     uuid.UUID             `json:"id"`
	UserID uuid.UUID             `json:"user_id"`
	Status enums.QuotationStatus `json:"status"`

	CameraCount      int  `json:"camera_count"`
	AIEnabledCameras int  `json:"ai_enabled_cameras"`
	StorageDays      int  `json:"storage_days"`
	CPUCoresRequired int  `json:"cpu_cores_required"`
	RAMRequired      int  `json:"ram_required"`
	VRAMRequired     int  `json:"vram_required"`
	IncludeCPU       bool `json:"include_cpu"`
	IncludeGPU       bool `json:"include_gpu"`
	IncludeStorage   bool `json:"include_storage"`

	CPU        *CostLine  `json:"cpu,omitempty"`
	GPU        *CostLine  `json:"gpu,omitempty"`
	Licence    CostLine   `json:"licence"`
	AIFeatures []CostLine `json:"ai_features,omitempty"`

	AICost      decimal.Decimal `json:"ai_cost"`
	StorageCost decimal.Decimal `json:"storage_cost"`
	TotalCost   decimal.Decimal `json:"total_cost"`

	PricedAt  *time.Time `json:"priced_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// QuotationList wraps a page of quotations plus the next page cursor.
type QuotationList struct {
	Quotations []QuotationDTO `json:"quotations"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

func fromModel(q *models.Quotation) QuotationDTO {
	dto := QuotationDTO{
		ID:               q.ID,
		UserID:           q.UserID,
		Status:           q.Status,
		CameraCount:      q.CameraCount,
		AIEnabledCameras: q.AIEnabledCameras,
		StorageDays:      q.StorageDays,
		CPUCoresRequired: q.CPUCoresRequired,
		RAMRequired:      q.RAMRequired,
		VRAMRequired:     q.VRAMRequired,
		IncludeCPU:       q.IncludeCPU,
		IncludeGPU:       q.IncludeGPU,
		IncludeStorage:   q.IncludeStorage,
		Licence: CostLine{
			ComponentID: &q.LicenceComponentID,
			Cost:        q.LicenceCost,
		},
		AICost:      q.AICost,
		StorageCost: q.StorageCost,
		TotalCost:   q.TotalCost,
		PricedAt:    q.PricedAt,
		CreatedAt:   q.CreatedAt,
		UpdatedAt:   q.UpdatedAt,
	}
	if q.LicenceComponent != nil {
		dto.Licence.Name = q.LicenceComponent.Name
	}
	if q.CPUComponentID != nil {
		line := CostLine{ComponentID: q.CPUComponentID, Cost: q.CPUCost}
		if q.CPUComponent != nil {
			line.Name = q.CPUComponent.Name
		}
		dto.CPU = &line
	}
	if q.GPUComponentID != nil {
		line := CostLine{ComponentID: q.GPUComponentID, Cost: q.GPUCost}
		if q.GPUComponent != nil {
			line.Name = q.GPUComponent.Name
		}
		dto.GPU = &line
	}
	for _, feature := range q.AIFeatures {
		line := CostLine{ComponentID: &feature.ComponentID}
		if feature.Component != nil {
			line.Name = feature.Component.Name
			if feature.Component.Price != nil {
				line.Cost = feature.Component.Price.Costing
			}
		}
		dto.AIFeatures = append(dto.AIFeatures, line)
	}
	return dto
}
