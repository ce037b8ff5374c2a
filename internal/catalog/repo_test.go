package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sentinelworks/sentinel-backend/pkg/db/models"
	"github.com/sentinelworks/sentinel-backend/pkg/enums"
	pkgerrors "github.com/sentinelworks/sentinel-backend/pkg/errors"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	categories := `
CREATE TABLE IF NOT EXISTS categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  created_at DATETIME,
  updated_at DATETIME
);`
	components := `
CREATE TABLE IF NOT EXISTS components (
  id TEXT PRIMARY KEY,
  category_id TEXT NOT NULL,
  name TEXT NOT NULL,
  core_hardware TEXT,
  cpu_cores INTEGER,
  ram_gb INTEGER,
  vram_gb INTEGER,
  ai_capable INTEGER,
  ai_feature TEXT,
  storage_per_cam INTEGER,
  storage_per_day INTEGER,
  duration_years INTEGER,
  cores_tier1 REAL,
  cores_tier2 REAL,
  ram_per_camera REAL,
  vram_per_ai_camera REAL,
  created_at DATETIME,
  updated_at DATETIME
);`
	prices := `
CREATE TABLE IF NOT EXISTS prices (
  id TEXT PRIMARY KEY,
  component_id TEXT NOT NULL UNIQUE,
  costing NUMERIC NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`

	for _, ddl := range []string{categories, components, prices} {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}

type testCatalog struct {
	db         *gorm.DB
	categories map[enums.CategoryKind]uuid.UUID
}

func newTestCatalog(t *testing.T, db *gorm.DB) *testCatalog {
	t.Helper()
	c := &testCatalog{db: db, categories: map[enums.CategoryKind]uuid.UUID{}}
	for _, kind := range []enums.CategoryKind{
		enums.CategoryProcessor, enums.CategoryAI, enums.CategoryStorage,
		enums.CategoryLicence, enums.CategorySizing,
	} {
		id := uuid.New()
		require.NoError(t, db.Create(&models.Category{ID: id, Name: kind.String()}).Error)
		c.categories[kind] = id
	}
	return c
}

func (c *testCatalog) addComponent(t *testing.T, kind enums.CategoryKind, row models.Component, cost *decimal.Decimal) uuid.UUID {
	t.Helper()
	row.ID = uuid.New()
	row.CategoryID = c.categories[kind]
	require.NoError(t, c.db.Create(&row).Error)
	if cost != nil {
		require.NoError(t, c.db.Create(&models.Price{
			ID:          uuid.New(),
			ComponentID: row.ID,
			Costing:     *cost,
		}).Error)
	}
	return row.ID
}

func intPtr(v int) *int             { return &v }
func floatPtr(v float64) *float64   { return &v }
func strPtr(v string) *string       { return &v }
func costPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestSmallestCPUPicksLeastRAM(t *testing.T) {
	db := setupCatalogTestDB(t)
	cat := newTestCatalog(t, db)
	repo := NewRepository(db)

	// Oversized CPU inserted first; the fit with less ram must still win.
	cat.addComponent(t, enums.CategoryProcessor, models.Component{
		Name: "Xeon Gold", CPUCores: intPtr(32), RAMGB: intPtr(128),
	}, costPtr(250000))
	want := cat.addComponent(t, enums.CategoryProcessor, models.Component{
		Name: "Xeon Silver", CPUCores: intPtr(16), RAMGB: intPtr(64),
	}, costPtr(95000))
	// GPU-only row must never qualify as a CPU.
	cat.addComponent(t, enums.CategoryProcessor, models.Component{
		Name: "RTX A6000", VRAMGB: intPtr(48),
	}, costPtr(400000))

	spec, err := repo.SmallestCPU(context.Background(), 12, 25)
	require.NoError(t, err)
	require.NotNil(t, spec)
	require.Equal(t, want, spec.ID)
	require.NotNil(t, spec.Cost)
	require.True(t, spec.Cost.Equal(decimal.NewFromInt(95000)))
}

func TestSmallestCPUNoneQualifies(t *testing.T) {
	db := setupCatalogTestDB(t)
	cat := newTestCatalog(t, db)
	repo := NewRepository(db)

	cat.addComponent(t, enums.CategoryProcessor, models.Component{
		Name: "Small CPU", CPUCores: intPtr(4), RAMGB: intPtr(8),
	}, costPtr(20000))

	spec, err := repo.SmallestCPU(context.Background(), 64, 256)
	require.NoError(t, err)
	require.Nil(t, spec)
}

func TestSmallestGPUPicksLeastVRAM(t *testing.T) {
	db := setupCatalogTestDB(t)
	cat := newTestCatalog(t, db)
	repo := NewRepository(db)

	cat.addComponent(t, enums.CategoryProcessor, models.Component{
		Name: "A100", VRAMGB: intPtr(80),
	}, costPtr(900000))
	want := cat.addComponent(t, enums.CategoryProcessor, models.Component{
		Name: "RTX 4000", VRAMGB: intPtr(20),
	}, costPtr(120000))

	spec, err := repo.SmallestGPU(context.Background(), 16)
	require.NoError(t, err)
	require.NotNil(t, spec)
	require.Equal(t, want, spec.ID)
}

func TestSmallestGPUUnpricedHasNilCost(t *testing.T) {
	db := setupCatalogTestDB(t)
	cat := newTestCatalog(t, db)
	repo := NewRepository(db)

	cat.addComponent(t, enums.CategoryProcessor, models.Component{
		Name: "Unpriced GPU", VRAMGB: intPtr(24),
	}, nil)

	spec, err := repo.SmallestGPU(context.Background(), 16)
	require.NoError(t, err)
	require.NotNil(t, spec)
	require.Nil(t, spec.Cost)
}

func TestLicenceTermRejectsOtherCategories(t *testing.T) {
	db := setupCatalogTestDB(t)
	cat := newTestCatalog(t, db)
	repo := NewRepository(db)

	licence := cat.addComponent(t, enums.CategoryLicence, models.Component{
		Name: "3 Year", DurationYears: intPtr(3),
	}, costPtr(15000))
	storage := cat.addComponent(t, enums.CategoryStorage, models.Component{
		Name: "HDD Tier",
	}, costPtr(50))

	term, err := repo.LicenceTerm(context.Background(), licence)
	require.NoError(t, err)
	require.NotNil(t, term)
	require.Equal(t, 3, term.DurationYears)

	term, err = repo.LicenceTerm(context.Background(), storage)
	require.NoError(t, err)
	require.Nil(t, term)
}

func TestSizingConfigSingleton(t *testing.T) {
	db := setupCatalogTestDB(t)
	cat := newTestCatalog(t, db)
	repo := NewRepository(db)

	cfg, err := repo.SizingConfig(context.Background())
	require.NoError(t, err)
	require.Nil(t, cfg)

	cat.addComponent(t, enums.CategorySizing, models.Component{
		Name:            "default",
		CoresTier1:      floatPtr(0.25),
		CoresTier2:      floatPtr(0.20),
		RAMPerCamera:    floatPtr(0.5),
		VRAMPerAICamera: floatPtr(2.0),
	}, nil)

	cfg, err = repo.SizingConfig(context.Background())
	require.NoError(t, err)
	require.NotNil(t, cfg)
	require.Equal(t, 0.25, cfg.CoresTier1)
	require.Equal(t, 2.0, cfg.VRAMPerAICamera)
}

func TestAIFeaturesFiltersToAICategory(t *testing.T) {
	db := setupCatalogTestDB(t)
	cat := newTestCatalog(t, db)
	repo := NewRepository(db)

	face := cat.addComponent(t, enums.CategoryAI, models.Component{
		Name: "Face Recognition", AIFeature: strPtr("face_recognition"),
	}, costPtr(20000))
	// Licence id passed alongside must be silently dropped.
	licence := cat.addComponent(t, enums.CategoryLicence, models.Component{
		Name: "1 Year", DurationYears: intPtr(1),
	}, costPtr(5000))

	features, err := repo.AIFeatures(context.Background(), []uuid.UUID{face, licence})
	require.NoError(t, err)
	require.Len(t, features, 1)
	require.Equal(t, face, features[0].ID)
	require.Equal(t, "face_recognition", features[0].Feature)
}

func TestStorageRateRejectsDuplicates(t *testing.T) {
	db := setupCatalogTestDB(t)
	cat := newTestCatalog(t, db)
	repo := NewRepository(db)

	cat.addComponent(t, enums.CategoryStorage, models.Component{Name: "HDD"}, costPtr(2))
	cat.addComponent(t, enums.CategoryStorage, models.Component{Name: "SSD"}, costPtr(5))

	rate, err := repo.StorageRate(context.Background())
	require.ErrorIs(t, err, ErrMultipleStorageRates)
	require.Nil(t, rate)
}

func TestCreateSecondStorageComponentConflicts(t *testing.T) {
	db := setupCatalogTestDB(t)
	cat := newTestCatalog(t, db)
	svc := &Service{repo: NewRepository(db)}

	cat.addComponent(t, enums.CategoryStorage, models.Component{Name: "HDD"}, costPtr(2))

	_, err := svc.CreateComponent(context.Background(), enums.CategoryStorage, ComponentInput{Name: "SSD"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestUpsertPriceCreatesThenOverwrites(t *testing.T) {
	db := setupCatalogTestDB(t)
	cat := newTestCatalog(t, db)
	repo := NewRepository(db)

	id := cat.addComponent(t, enums.CategoryStorage, models.Component{Name: "HDD"}, nil)

	require.NoError(t, repo.UpsertPrice(context.Background(), id, &models.Price{
		ID: uuid.New(), Costing: decimal.NewFromInt(40),
	}))
	rate, err := repo.StorageRate(context.Background())
	require.NoError(t, err)
	require.NotNil(t, rate.Cost)
	require.True(t, rate.Cost.Equal(decimal.NewFromInt(40)))

	require.NoError(t, repo.UpsertPrice(context.Background(), id, &models.Price{
		Costing: decimal.NewFromInt(55),
	}))
	rate, err = repo.StorageRate(context.Background())
	require.NoError(t, err)
	require.True(t, rate.Cost.Equal(decimal.NewFromInt(55)))

	var count int64
	require.NoError(t, db.Model(&models.Price{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}
