package pricing

import (
	"testing"

	"github.com/google/uuid"

	"github.com/sentinelworks/sentinel-backend/internal/catalog"
)

func testSizing() catalog.SizingConfig {
	return catalog.SizingConfig{
		ID:              uuid.New(),
		CoresTier1:      0.25,
		CoresTier2:      0.20,
		RAMPerCamera:    0.5,
		VRAMPerAICamera: 2.0,
	}
}

func TestDeriveRequirementSmallSite(t *testing.T) {
	req := DeriveRequirement(testSizing(), 50, 30, nil, 2)

	if req.CPUCoresRequired != 12 {
		t.Fatalf("expected 12 cores (0.25*50 truncated), got %d", req.CPUCoresRequired)
	}
	if req.RAMRequired != 25 {
		t.Fatalf("expected 25 GB RAM, got %d", req.RAMRequired)
	}
	if req.AIEnabledCameras != 50 {
		t.Fatalf("ai cameras should default to camera count, got %d", req.AIEnabledCameras)
	}
	if req.VRAMRequired != 100 {
		t.Fatalf("expected 100 GB VRAM for 50 ai cameras, got %d", req.VRAMRequired)
	}
	if req.StorageUsedScaled != 50*30*19 {
		t.Fatalf("unexpected scaled storage %d", req.StorageUsedScaled)
	}
}

func TestDeriveRequirementTierBoundary(t *testing.T) {
	// 60 cameras sit below the boundary, 61 at it.
	below := DeriveRequirement(testSizing(), 60, 0, nil, 0)
	if below.CPUCoresRequired != 15 {
		t.Fatalf("expected tier-1 cores 15, got %d", below.CPUCoresRequired)
	}

	at := DeriveRequirement(testSizing(), 61, 0, nil, 0)
	if at.CPUCoresRequired != 12 {
		t.Fatalf("expected tier-2 cores 12 (0.20*61 truncated), got %d", at.CPUCoresRequired)
	}
	// RAM coefficient is tier independent.
	if at.RAMRequired != 30 {
		t.Fatalf("expected 30 GB RAM, got %d", at.RAMRequired)
	}
}

func TestDeriveRequirementTruncation(t *testing.T) {
	cfg := testSizing()
	cfg.CoresTier1 = 0.3

	req := DeriveRequirement(cfg, 9, 0, nil, 0)
	// 0.3*9 = 2.699999... must truncate, never round.
	if req.CPUCoresRequired != 2 {
		t.Fatalf("expected truncated 2 cores, got %d", req.CPUCoresRequired)
	}
}

func TestDeriveRequirementNoAIFeaturesSkipsVRAM(t *testing.T) {
	ai := 20
	req := DeriveRequirement(testSizing(), 50, 30, &ai, 0)

	if req.AIEnabledCameras != 20 {
		t.Fatalf("explicit ai camera count ignored, got %d", req.AIEnabledCameras)
	}
	if req.AILoadCameras != 0 {
		t.Fatalf("no features selected, ai load should be 0, got %d", req.AILoadCameras)
	}
	if req.VRAMRequired != 0 {
		t.Fatalf("expected 0 VRAM without features, got %d", req.VRAMRequired)
	}
}

func TestDeriveRequirementExplicitAICameras(t *testing.T) {
	ai := 10
	req := DeriveRequirement(testSizing(), 100, 7, &ai, 1)

	if req.VRAMRequired != 20 {
		t.Fatalf("expected VRAM sized from 10 ai cameras, got %d", req.VRAMRequired)
	}
	if req.StorageUsedScaled != 100*7*19 {
		t.Fatalf("unexpected scaled storage %d", req.StorageUsedScaled)
	}
}
