package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reader is the read surface the pricing engine depends on. Selection queries
// return (nil, nil) when no row satisfies the filter so the caller can raise
// its own selection failure; every other error is a real database error.
type Reader interface {
	WithTx(tx *gorm.DB) Reader
	SizingConfig(ctx context.Context) (*SizingConfig, error)
	LicenceTerm(ctx context.Context, id uuid.UUID) (*LicenceTerm, error)
	StorageRate(ctx context.Context) (*StorageRate, error)
	AIFeatures(ctx context.Context, ids []uuid.UUID) ([]AIFeature, error)
	SmallestCPU(ctx context.Context, minCores, minRAM int) (*ProcessorSpec, error)
	SmallestGPU(ctx context.Context, minVRAM int) (*ProcessorSpec, error)
}
