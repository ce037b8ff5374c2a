package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sentinelworks/sentinel-backend/pkg/db"
	"github.com/sentinelworks/sentinel-backend/pkg/db/models"
	"github.com/sentinelworks/sentinel-backend/pkg/enums"
	pkgerrors "github.com/sentinelworks/sentinel-backend/pkg/errors"
)

// ComponentInput is the admin payload for creating or updating a component.
// Fields outside the target category are rejected rather than ignored.
type ComponentInput struct {
	Name string `json:"name" validate:"required"`

	CoreHardware *string `json:"core_hardware,omitempty"`
	CPUCores     *int    `json:"cpu_cores,omitempty" validate:"omitempty,gt=0"`
	RAMGB        *int    `json:"ram_gb,omitempty" validate:"omitempty,gt=0"`
	VRAMGB       *int    `json:"vram_gb,omitempty" validate:"omitempty,gt=0"`

	AICapable *bool   `json:"ai_capable,omitempty"`
	AIFeature *string `json:"ai_feature,omitempty"`

	StoragePerCam *int `json:"storage_per_cam,omitempty" validate:"omitempty,gt=0"`
	StoragePerDay *int `json:"storage_per_day,omitempty" validate:"omitempty,gt=0"`

	DurationYears *int `json:"duration_years,omitempty" validate:"omitempty,gt=0"`

	CoresTier1      *float64 `json:"cores_tier1,omitempty" validate:"omitempty,gt=0"`
	CoresTier2      *float64 `json:"cores_tier2,omitempty" validate:"omitempty,gt=0"`
	RAMPerCamera    *float64 `json:"ram_per_camera,omitempty" validate:"omitempty,gt=0"`
	VRAMPerAICamera *float64 `json:"vram_per_ai_camera,omitempty" validate:"omitempty,gte=0"`

	Cost *decimal.Decimal `json:"cost,omitempty"`
}

// Service is the catalog administration surface.
type Service struct {
	db   *db.Client
	repo *Repository
}

// NewService builds the catalog service.
func NewService(client *db.Client) (*Service, error) {
	if client == nil {
		return nil, fmt.Errorf("database client is required")
	}
	return &Service{db: client, repo: NewRepository(client.DB())}, nil
}

// Reader exposes the engine-facing read surface.
func (s *Service) Reader() Reader {
	return s.repo
}

// ListCategories returns all categories.
func (s *Service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	out := make([]CategoryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, categoryFromModel(&rows[i]))
	}
	return out, nil
}

// ListComponents returns all components of the given category.
func (s *Service) ListComponents(ctx context.Context, kind enums.CategoryKind) ([]ComponentDTO, error) {
	if !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown category %q", kind))
	}
	rows, err := s.repo.ListComponents(ctx, kind)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list components")
	}
	out := make([]ComponentDTO, 0, len(rows))
	for i := range rows {
		out = append(out, componentFromModel(&rows[i]))
	}
	return out, nil
}

// GetComponent loads one component of the given category.
func (s *Service) GetComponent(ctx context.Context, kind enums.CategoryKind, id uuid.UUID) (*ComponentDTO, error) {
	row, err := s.loadComponent(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	dto := componentFromModel(row)
	return &dto, nil
}

// CreateComponent validates the payload against the category and persists the
// component together with its optional price row.
func (s *Service) CreateComponent(ctx context.Context, kind enums.CategoryKind, input ComponentInput) (*ComponentDTO, error) {
	if err := validateInput(kind, input); err != nil {
		return nil, err
	}

	category, err := s.ensureCategory(ctx, kind)
	if err != nil {
		return nil, err
	}

	if kind == enums.CategorySizing {
		existing, err := s.repo.SizingConfig(ctx)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check sizing config")
		}
		if existing != nil {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "sizing config already exists")
		}
	}

	if kind == enums.CategoryStorage {
		existing, err := s.repo.StorageRate(ctx)
		if err != nil && !errors.Is(err, ErrMultipleStorageRates) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check storage component")
		}
		if existing != nil || err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "storage component already exists")
		}
	}

	row := inputToModel(category.ID, input)
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := &Repository{db: tx}
		if err := repo.CreateComponent(ctx, row); err != nil {
			return err
		}
		if input.Cost != nil {
			return repo.UpsertPrice(ctx, row.ID, &models.Price{Costing: *input.Cost})
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create component")
	}

	return s.GetComponent(ctx, kind, row.ID)
}

// UpdateComponent applies the payload to an existing component. A Cost value
// upserts the price row; absent Cost leaves pricing untouched.
func (s *Service) UpdateComponent(ctx context.Context, kind enums.CategoryKind, id uuid.UUID, input ComponentInput) (*ComponentDTO, error) {
	if err := validateInput(kind, input); err != nil {
		return nil, err
	}
	if _, err := s.loadComponent(ctx, kind, id); err != nil {
		return nil, err
	}

	updates := inputToUpdates(input)
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := &Repository{db: tx}
		if err := repo.UpdateComponent(ctx, id, updates); err != nil {
			return err
		}
		if input.Cost != nil {
			return repo.UpsertPrice(ctx, id, &models.Price{Costing: *input.Cost})
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update component")
	}

	return s.GetComponent(ctx, kind, id)
}

// DeleteComponent removes a component of the given category.
func (s *Service) DeleteComponent(ctx context.Context, kind enums.CategoryKind, id uuid.UUID) error {
	if _, err := s.loadComponent(ctx, kind, id); err != nil {
		return err
	}
	if err := s.repo.DeleteComponent(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete component")
	}
	return nil
}

// GetSizingConfig returns the coefficient singleton.
func (s *Service) GetSizingConfig(ctx context.Context) (*SizingConfig, error) {
	cfg, err := s.repo.SizingConfig(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load sizing config")
	}
	if cfg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sizing config not set")
	}
	return cfg, nil
}

// ReplaceSizingConfig overwrites the singleton, creating it when absent.
func (s *Service) ReplaceSizingConfig(ctx context.Context, input ComponentInput) (*SizingConfig, error) {
	if err := validateInput(enums.CategorySizing, input); err != nil {
		return nil, err
	}

	existing, err := s.repo.SizingConfig(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load sizing config")
	}
	if existing == nil {
		if _, err := s.CreateComponent(ctx, enums.CategorySizing, input); err != nil {
			return nil, err
		}
		return s.GetSizingConfig(ctx)
	}

	if err := s.repo.UpdateComponent(ctx, existing.ID, inputToUpdates(input)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update sizing config")
	}
	return s.GetSizingConfig(ctx)
}

func (s *Service) loadComponent(ctx context.Context, kind enums.CategoryKind, id uuid.UUID) (*models.Component, error) {
	row, err := s.repo.FindComponent(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "component not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load component")
	}
	if row.Category == nil || row.Category.Name != kind.String() {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "component not found")
	}
	return row, nil
}

func (s *Service) ensureCategory(ctx context.Context, kind enums.CategoryKind) (*models.Category, error) {
	category, err := s.repo.FindCategoryByName(ctx, kind.String())
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
	}
	row := &models.Category{Name: kind.String()}
	if err := s.repo.CreateCategory(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create category")
	}
	return row, nil
}

func validateInput(kind enums.CategoryKind, input ComponentInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Cost != nil && input.Cost.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "cost must not be negative")
	}

	switch kind {
	case enums.CategoryProcessor:
		hasCPU := input.CPUCores != nil && input.RAMGB != nil
		hasGPU := input.VRAMGB != nil
		if !hasCPU && !hasGPU {
			return pkgerrors.New(pkgerrors.CodeValidation, "processor needs cpu_cores+ram_gb or vram_gb")
		}
	case enums.CategoryAI:
		if input.AIFeature == nil || strings.TrimSpace(*input.AIFeature) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "ai_feature is required")
		}
	case enums.CategoryLicence:
		if input.DurationYears == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "duration_years is required")
		}
	case enums.CategorySizing:
		if input.CoresTier1 == nil || input.CoresTier2 == nil ||
			input.RAMPerCamera == nil || input.VRAMPerAICamera == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "all four sizing coefficients are required")
		}
	case enums.CategoryStorage:
		// Name and cost are enough for the single storage rate.
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown category %q", kind))
	}
	return nil
}

func inputToModel(categoryID uuid.UUID, input ComponentInput) *models.Component {
	return &models.Component{
		CategoryID:      categoryID,
		Name:            strings.TrimSpace(input.Name),
		CoreHardware:    input.CoreHardware,
		CPUCores:        input.CPUCores,
		RAMGB:           input.RAMGB,
		VRAMGB:          input.VRAMGB,
		AICapable:       input.AICapable,
		AIFeature:       input.AIFeature,
		StoragePerCam:   input.StoragePerCam,
		StoragePerDay:   input.StoragePerDay,
		DurationYears:   input.DurationYears,
		CoresTier1:      input.CoresTier1,
		CoresTier2:      input.CoresTier2,
		RAMPerCamera:    input.RAMPerCamera,
		VRAMPerAICamera: input.VRAMPerAICamera,
	}
}

func inputToUpdates(input ComponentInput) map[string]any {
	updates := map[string]any{"name": strings.TrimSpace(input.Name)}
	set := func(column string, value any, present bool) {
		if present {
			updates[column] = value
		}
	}
	set("core_hardware", input.CoreHardware, input.CoreHardware != nil)
	set("cpu_cores", input.CPUCores, input.CPUCores != nil)
	set("ram_gb", input.RAMGB, input.RAMGB != nil)
	set("vram_gb", input.VRAMGB, input.VRAMGB != nil)
	set("ai_capable", input.AICapable, input.AICapable != nil)
	set("ai_feature", input.AIFeature, input.AIFeature != nil)
	set("storage_per_cam", input.StoragePerCam, input.StoragePerCam != nil)
	set("storage_per_day", input.StoragePerDay, input.StoragePerDay != nil)
	set("duration_years", input.DurationYears, input.DurationYears != nil)
	set("cores_tier1", input.CoresTier1, input.CoresTier1 != nil)
	set("cores_tier2", input.CoresTier2, input.CoresTier2 != nil)
	set("ram_per_camera", input.RAMPerCamera, input.RAMPerCamera != nil)
	set("vram_per_ai_camera", input.VRAMPerAICamera, input.VRAMPerAICamera != nil)
	return updates
}
