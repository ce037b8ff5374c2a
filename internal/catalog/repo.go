package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sentinelworks/sentinel-backend/pkg/db/models"
	"github.com/sentinelworks/sentinel-backend/pkg/enums"
)

// ErrMultipleStorageRates is returned when the Storage category holds more
// than one component; storage pricing needs exactly one rate.
var ErrMultipleStorageRates = errors.New("multiple storage components configured")

// Repository implements Reader plus the admin write surface.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repository to the supplied transaction.
func (r *Repository) WithTx(tx *gorm.DB) Reader {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) categoryQuery(ctx context.Context, kind enums.CategoryKind) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Component{}).
		Joins("JOIN categories ON categories.id = components.category_id").
		Where("categories.name = ?", kind.String()).
		Preload("Price").
		Preload("Category")
}

// SizingConfig loads the requirement coefficient singleton. Returns
// (nil, nil) when no valid row exists.
func (r *Repository) SizingConfig(ctx context.Context) (*SizingConfig, error) {
	var row models.Component
	err := r.categoryQuery(ctx, enums.CategorySizing).
		Order("components.created_at ASC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	cfg, ok := sizingFromModel(&row)
	if !ok {
		return nil, nil
	}
	return cfg, nil
}

// LicenceTerm resolves a component id against the licence category only.
// Returns (nil, nil) when the id does not name a licence.
func (r *Repository) LicenceTerm(ctx context.Context, id uuid.UUID) (*LicenceTerm, error) {
	var row models.Component
	err := r.categoryQuery(ctx, enums.CategoryLicence).
		Where("components.id = ?", id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	term := licenceTermFromModel(&row)
	return &term, nil
}

// StorageRate loads the single Storage component. Returns (nil, nil) when the
// category is empty and ErrMultipleStorageRates when it holds more than one
// row, so a misconfigured catalog never prices against an arbitrary pick.
func (r *Repository) StorageRate(ctx context.Context) (*StorageRate, error) {
	var rows []models.Component
	err := r.categoryQuery(ctx, enums.CategoryStorage).
		Order("components.created_at ASC").
		Limit(2).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if len(rows) > 1 {
		return nil, ErrMultipleStorageRates
	}
	rate := storageRateFromModel(&rows[0])
	return &rate, nil
}

// AIFeatures resolves the requested ids against the AI category. Ids that do
// not name an AI component are simply absent from the result.
func (r *Repository) AIFeatures(ctx context.Context, ids []uuid.UUID) ([]AIFeature, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Component
	err := r.categoryQuery(ctx, enums.CategoryAI).
		Where("components.id IN ?", ids).
		Order("components.name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	features := make([]AIFeature, 0, len(rows))
	for i := range rows {
		features = append(features, aiFeatureFromModel(&rows[i]))
	}
	return features, nil
}

// SmallestCPU returns the cheapest-fitting CPU: candidates must carry both
// cores and ram, satisfy both minimums, and the row with the least ram wins.
func (r *Repository) SmallestCPU(ctx context.Context, minCores, minRAM int) (*ProcessorSpec, error) {
	var row models.Component
	err := r.categoryQuery(ctx, enums.CategoryProcessor).
		Where("components.cpu_cores IS NOT NULL AND components.ram_gb IS NOT NULL").
		Where("components.cpu_cores >= ? AND components.ram_gb >= ?", minCores, minRAM).
		Order("components.ram_gb ASC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	spec := processorFromModel(&row)
	return &spec, nil
}

// SmallestGPU returns the GPU with the least vram that still satisfies the
// minimum.
func (r *Repository) SmallestGPU(ctx context.Context, minVRAM int) (*ProcessorSpec, error) {
	var row models.Component
	err := r.categoryQuery(ctx, enums.CategoryProcessor).
		Where("components.vram_gb IS NOT NULL").
		Where("components.vram_gb >= ?", minVRAM).
		Order("components.vram_gb ASC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	spec := processorFromModel(&row)
	return &spec, nil
}

// --- admin write surface ---

// ListCategories returns all categories ordered by name.
func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error
	return rows, err
}

// FindCategoryByName loads one category by exact name.
func (r *Repository) FindCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	var row models.Category
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// CreateCategory inserts a category.
func (r *Repository) CreateCategory(ctx context.Context, row *models.Category) error {
	return r.db.WithContext(ctx).Create(row).Error
}

// ListComponents returns all components in a category with prices preloaded.
func (r *Repository) ListComponents(ctx context.Context, kind enums.CategoryKind) ([]models.Component, error) {
	var rows []models.Component
	err := r.categoryQuery(ctx, kind).
		Order("components.name ASC").
		Find(&rows).Error
	return rows, err
}

// FindComponent loads one component with its price and category.
func (r *Repository) FindComponent(ctx context.Context, id uuid.UUID) (*models.Component, error) {
	var row models.Component
	err := r.db.WithContext(ctx).
		Preload("Price").
		Preload("Category").
		First(&row, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// CreateComponent inserts a component (and its price row when present).
func (r *Repository) CreateComponent(ctx context.Context, row *models.Component) error {
	return r.db.WithContext(ctx).Create(row).Error
}

// UpdateComponent applies a partial update to a component.
func (r *Repository) UpdateComponent(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Component{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// UpsertPrice creates or overwrites the component's one-to-one price row.
func (r *Repository) UpsertPrice(ctx context.Context, componentID uuid.UUID, price *models.Price) error {
	var existing models.Price
	err := r.db.WithContext(ctx).Where("component_id = ?", componentID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		price.ComponentID = componentID
		return r.db.WithContext(ctx).Create(price).Error
	}
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Model(&models.Price{}).
		Where("id = ?", existing.ID).
		UpdateColumn("costing", price.Costing).Error
}

// DeleteComponent removes a component; the price row cascades.
func (r *Repository) DeleteComponent(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Component{}, "id = ?", id).Error
}
