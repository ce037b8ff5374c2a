package pricing

import (
	"github.com/sentinelworks/sentinel-backend/internal/catalog"
)

const (
	// Sites below this camera count size CPU cores with the tier-1
	// coefficient; at or above it the tier-2 coefficient applies. RAM uses
	// the same per-camera coefficient in both tiers.
	smallSiteCameraLimit = 61

	// Raw storage (cameras * days) is stored scaled by this billing-unit
	// factor and divided back out at costing time.
	storageBillingFactor = 19
)

// Requirement holds the derived sizing numbers persisted with a quotation.
// They are computed once at creation and never re-derived.
type Requirement struct {
	CameraCount       int
	AIEnabledCameras  int
	AILoadCameras     int
	StorageDays       int
	StorageUsedScaled int
	CPUCoresRequired  int
	RAMRequired       int
	VRAMRequired      int
}

// DeriveRequirement turns deployment facts into hardware minimums using the
// sizing coefficients. Coefficient products truncate toward zero.
func DeriveRequirement(cfg catalog.SizingConfig, cameraCount, storageDays int, aiEnabledCameras *int, aiFeatureCount int) Requirement {
	effectiveAI := cameraCount
	if aiEnabledCameras != nil {
		effectiveAI = *aiEnabledCameras
	}

	aiLoad := 0
	if aiFeatureCount > 0 {
		aiLoad = effectiveAI
	}

	cores := int(cfg.CoresTier1 * float64(cameraCount))
	if cameraCount >= smallSiteCameraLimit {
		cores = int(cfg.CoresTier2 * float64(cameraCount))
	}

	return Requirement{
		CameraCount:       cameraCount,
		AIEnabledCameras:  effectiveAI,
		AILoadCameras:     aiLoad,
		StorageDays:       storageDays,
		StorageUsedScaled: cameraCount * storageDays * storageBillingFactor,
		CPUCoresRequired:  cores,
		RAMRequired:       int(cfg.RAMPerCamera * float64(cameraCount)),
		VRAMRequired:      int(cfg.VRAMPerAICamera * float64(aiLoad)),
	}
}
