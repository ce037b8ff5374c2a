package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sentinelworks/sentinel-backend/internal/audit"
	"github.com/sentinelworks/sentinel-backend/internal/catalog"
	"github.com/sentinelworks/sentinel-backend/pkg/config"
	"github.com/sentinelworks/sentinel-backend/pkg/db/models"
	"github.com/sentinelworks/sentinel-backend/pkg/enums"
	pkgerrors "github.com/sentinelworks/sentinel-backend/pkg/errors"
	"github.com/sentinelworks/sentinel-backend/pkg/pagination"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubCatalog struct {
	sizing   *catalog.SizingConfig
	licences map[uuid.UUID]*catalog.LicenceTerm
	storage  *catalog.StorageRate
	features map[uuid.UUID]catalog.AIFeature
	cpu      *catalog.ProcessorSpec
	gpu      *catalog.ProcessorSpec
}

func (s *stubCatalog) WithTx(tx *gorm.DB) catalog.Reader { return s }

func (s *stubCatalog) SizingConfig(ctx context.Context) (*catalog.SizingConfig, error) {
	return s.sizing, nil
}

func (s *stubCatalog) LicenceTerm(ctx context.Context, id uuid.UUID) (*catalog.LicenceTerm, error) {
	return s.licences[id], nil
}

func (s *stubCatalog) StorageRate(ctx context.Context) (*catalog.StorageRate, error) {
	return s.storage, nil
}

func (s *stubCatalog) AIFeatures(ctx context.Context, ids []uuid.UUID) ([]catalog.AIFeature, error) {
	out := make([]catalog.AIFeature, 0, len(ids))
	for _, id := range ids {
		if f, ok := s.features[id]; ok {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *stubCatalog) SmallestCPU(ctx context.Context, minCores, minRAM int) (*catalog.ProcessorSpec, error) {
	if s.cpu == nil || (s.cpu.CPUCores != nil && *s.cpu.CPUCores < minCores) {
		return nil, nil
	}
	return s.cpu, nil
}

func (s *stubCatalog) SmallestGPU(ctx context.Context, minVRAM int) (*catalog.ProcessorSpec, error) {
	if s.gpu == nil || (s.gpu.VRAMGB != nil && *s.gpu.VRAMGB < minVRAM) {
		return nil, nil
	}
	return s.gpu, nil
}

type stubRepo struct {
	rows    map[uuid.UUID]*models.Quotation
	links   map[uuid.UUID][]models.QuotationAIFeature
	byComp  map[uuid.UUID]*models.Component
	updates []map[string]any
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		rows:   map[uuid.UUID]*models.Quotation{},
		links:  map[uuid.UUID][]models.QuotationAIFeature{},
		byComp: map[uuid.UUID]*models.Component{},
	}
}

func (r *stubRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r *stubRepo) Create(ctx context.Context, q *models.Quotation) error {
	q.ID = uuid.New()
	q.CreatedAt = time.Now().UTC()
	r.rows[q.ID] = q
	return nil
}

func (r *stubRepo) CreateAIFeatures(ctx context.Context, links []models.QuotationAIFeature) error {
	for _, link := range links {
		r.links[link.QuotationID] = append(r.links[link.QuotationID], link)
	}
	return nil
}

func (r *stubRepo) Find(ctx context.Context, id uuid.UUID) (*models.Quotation, error) {
	q, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *q
	clone.AIFeatures = nil
	for _, link := range r.links[id] {
		link.Component = r.byComp[link.ComponentID]
		clone.AIFeatures = append(clone.AIFeatures, link)
	}
	return &clone, nil
}

func (r *stubRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	r.updates = append(r.updates, updates)
	q := r.rows[id]
	q.Status = updates["status"].(enums.QuotationStatus)
	if v, ok := updates["include_cpu"].(bool); ok {
		q.IncludeCPU = v
	}
	if v, ok := updates["include_gpu"].(bool); ok {
		q.IncludeGPU = v
	}
	if v, ok := updates["include_storage"].(bool); ok {
		q.IncludeStorage = v
	}
	if v, ok := updates["cpu_component_id"].(*uuid.UUID); ok {
		q.CPUComponentID = v
	}
	if v, ok := updates["gpu_component_id"].(*uuid.UUID); ok {
		q.GPUComponentID = v
	}
	q.LicenceComponentID = updates["licence_component_id"].(uuid.UUID)
	q.CPUCost = updates["cpu_cost"].(decimal.Decimal)
	q.GPUCost = updates["gpu_cost"].(decimal.Decimal)
	q.AICost = updates["ai_cost"].(decimal.Decimal)
	q.StorageCost = updates["storage_cost"].(decimal.Decimal)
	q.LicenceCost = updates["licence_cost"].(decimal.Decimal)
	q.TotalCost = updates["total_cost"].(decimal.Decimal)
	pricedAt := updates["priced_at"].(time.Time)
	q.PricedAt = &pricedAt
	return nil
}

func (r *stubRepo) List(ctx context.Context, ownerID *uuid.UUID, params pagination.Params) (*QuotationList, error) {
	list := &QuotationList{}
	for _, q := range r.rows {
		if ownerID != nil && q.UserID != *ownerID {
			continue
		}
		list.Quotations = append(list.Quotations, fromModel(q))
	}
	return list, nil
}

func (r *stubRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.rows, id)
	return nil
}

type stubAudit struct {
	entries []audit.Entry
}

func (s *stubAudit) Record(ctx context.Context, entry audit.Entry) {
	s.entries = append(s.entries, entry)
}

type fixture struct {
	svc       Service
	repo      *stubRepo
	reader    *stubCatalog
	recorder  *stubAudit
	licenceID uuid.UUID
}

func cost(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	licenceID := uuid.New()
	reader := &stubCatalog{
		sizing: &catalog.SizingConfig{
			ID:              uuid.New(),
			CoresTier1:      0.25,
			CoresTier2:      0.20,
			RAMPerCamera:    0.5,
			VRAMPerAICamera: 2.0,
		},
		licences: map[uuid.UUID]*catalog.LicenceTerm{
			licenceID: {ID: licenceID, Name: "3 Year", DurationYears: 3, Cost: cost(15000)},
		},
		storage:  &catalog.StorageRate{ID: uuid.New(), Name: "HDD", Cost: cost(2)},
		features: map[uuid.UUID]catalog.AIFeature{},
		cpu: &catalog.ProcessorSpec{
			ID: uuid.New(), Name: "Xeon Silver",
			CPUCores: intp(16), RAMGB: intp(64), Cost: cost(95000),
		},
		gpu: &catalog.ProcessorSpec{
			ID: uuid.New(), Name: "RTX 4000",
			VRAMGB: intp(20), Cost: cost(120000),
		},
	}
	repo := newStubRepo()
	recorder := &stubAudit{}

	svc, err := NewService(ServiceParams{
		DB:        stubTxRunner{},
		Repo:      repo,
		Catalog:   reader,
		Audit:     recorder,
		Quotation: config.QuotationConfig{CompanyName: "Sentinel Pricing", Currency: "INR"},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &fixture{svc: svc, repo: repo, reader: reader, recorder: recorder, licenceID: licenceID}
}

func intp(v int) *int { return &v }

func TestCreateDerivesAndPersistsDraft(t *testing.T) {
	f := newFixture(t)
	actor := Actor{ID: uuid.New(), Role: enums.UserRoleUser}

	dto, err := f.svc.Create(context.Background(), actor, CreateQuotationRequest{
		CameraCount: 50,
		StorageDays: 30,
		LicenceID:   f.licenceID,
	}, RequestMeta{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Status != enums.QuotationStatusDraft {
		t.Fatalf("expected draft status, got %s", dto.Status)
	}
	if dto.CPUCoresRequired != 12 || dto.RAMRequired != 25 {
		t.Fatalf("unexpected requirement cores=%d ram=%d", dto.CPUCoresRequired, dto.RAMRequired)
	}
	if dto.VRAMRequired != 0 {
		t.Fatalf("no ai features selected, expected 0 VRAM, got %d", dto.VRAMRequired)
	}
	if !dto.Licence.Cost.Equal(decimal.NewFromInt(15000)) {
		t.Fatalf("unexpected licence cost %s", dto.Licence.Cost)
	}
	if len(f.recorder.entries) != 1 || f.recorder.entries[0].Action != enums.AuditActionCreateQuotation {
		t.Fatalf("expected one create audit entry, got %+v", f.recorder.entries)
	}
}

func TestCreateRejectsUnknownLicence(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), Actor{ID: uuid.New()}, CreateQuotationRequest{
		CameraCount: 10,
		LicenceID:   uuid.New(),
	}, RequestMeta{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if typed.Message() != "Invalid licence selection" {
		t.Fatalf("unexpected message %q", typed.Message())
	}
	if len(f.repo.rows) != 0 {
		t.Fatalf("nothing should persist on failure")
	}
}

func TestCreateFailsWithoutSizingConfig(t *testing.T) {
	f := newFixture(t)
	f.reader.sizing = nil

	_, err := f.svc.Create(context.Background(), Actor{ID: uuid.New()}, CreateQuotationRequest{
		CameraCount: 10,
		LicenceID:   f.licenceID,
	}, RequestMeta{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConfiguration {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestRecomputePricesFullStack(t *testing.T) {
	f := newFixture(t)
	actor := Actor{ID: uuid.New(), Role: enums.UserRoleUser}

	dto, err := f.svc.Create(context.Background(), actor, CreateQuotationRequest{
		CameraCount: 50,
		StorageDays: 30,
		LicenceID:   f.licenceID,
	}, RequestMeta{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	priced, err := f.svc.Recompute(context.Background(), actor, dto.ID, RecomputeRequest{}, RequestMeta{})
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if priced.Status != enums.QuotationStatusPriced {
		t.Fatalf("expected priced, got %s", priced.Status)
	}
	if priced.CPU == nil || !priced.CPU.Cost.Equal(decimal.NewFromInt(95000)) {
		t.Fatalf("unexpected cpu line %+v", priced.CPU)
	}
	if priced.GPU != nil {
		t.Fatalf("no VRAM requirement, GPU line must be absent")
	}
	// storage: 50 cameras * 30 days * rate 2 = 3000.
	if !priced.StorageCost.Equal(decimal.NewFromInt(3000)) {
		t.Fatalf("unexpected storage cost %s", priced.StorageCost)
	}
	want := decimal.NewFromInt(95000 + 3000 + 15000)
	if !priced.TotalCost.Equal(want) {
		t.Fatalf("expected total %s, got %s", want, priced.TotalCost)
	}
	if priced.PricedAt == nil {
		t.Fatalf("priced_at must be set")
	}
}

func TestRecomputeGPUSelectionFailure(t *testing.T) {
	f := newFixture(t)
	actor := Actor{ID: uuid.New(), Role: enums.UserRoleUser}

	featureID := uuid.New()
	f.reader.features[featureID] = catalog.AIFeature{
		ID: featureID, Name: "Face Recognition", Feature: "face_recognition", Cost: cost(20000),
	}
	f.reader.gpu = nil

	dto, err := f.svc.Create(context.Background(), actor, CreateQuotationRequest{
		CameraCount:  50,
		StorageDays:  30,
		LicenceID:    f.licenceID,
		AIFeatureIDs: []uuid.UUID{featureID},
	}, RequestMeta{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = f.svc.Recompute(context.Background(), actor, dto.ID, RecomputeRequest{}, RequestMeta{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeSelection {
		t.Fatalf("expected selection error, got %v", err)
	}
	if typed.Message() != "No GPU meets VRAM requirement" {
		t.Fatalf("unexpected message %q", typed.Message())
	}

	// The row must still be an unpriced draft.
	stored, err := f.svc.Get(context.Background(), actor, dto.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != enums.QuotationStatusDraft {
		t.Fatalf("failed recompute must not change status, got %s", stored.Status)
	}
}

func TestRecomputeOwnerOnly(t *testing.T) {
	f := newFixture(t)
	owner := Actor{ID: uuid.New(), Role: enums.UserRoleUser}
	admin := Actor{ID: uuid.New(), Role: enums.UserRoleAdmin}

	dto, err := f.svc.Create(context.Background(), owner, CreateQuotationRequest{
		CameraCount: 10,
		LicenceID:   f.licenceID,
	}, RequestMeta{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = f.svc.Recompute(context.Background(), admin, dto.ID, RecomputeRequest{}, RequestMeta{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}
}

func TestRecomputeLicenceOverride(t *testing.T) {
	f := newFixture(t)
	actor := Actor{ID: uuid.New(), Role: enums.UserRoleUser}

	otherID := uuid.New()
	f.reader.licences[otherID] = &catalog.LicenceTerm{
		ID: otherID, Name: "5 Year", DurationYears: 5, Cost: cost(22000),
	}

	dto, err := f.svc.Create(context.Background(), actor, CreateQuotationRequest{
		CameraCount:    10,
		LicenceID:      f.licenceID,
		IncludeCPU:     boolp(false),
		IncludeGPU:     boolp(false),
		IncludeStorage: boolp(false),
	}, RequestMeta{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	priced, err := f.svc.Recompute(context.Background(), actor, dto.ID, RecomputeRequest{LicenceID: &otherID}, RequestMeta{})
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if *priced.Licence.ComponentID != otherID {
		t.Fatalf("licence override not applied")
	}
	if !priced.TotalCost.Equal(decimal.NewFromInt(22000)) {
		t.Fatalf("expected licence-only total 22000, got %s", priced.TotalCost)
	}
}

func boolp(v bool) *bool { return &v }

func TestRecomputeToggleOverridesPersist(t *testing.T) {
	f := newFixture(t)
	actor := Actor{ID: uuid.New(), Role: enums.UserRoleUser}

	dto, err := f.svc.Create(context.Background(), actor, CreateQuotationRequest{
		CameraCount: 50,
		StorageDays: 30,
		LicenceID:   f.licenceID,
	}, RequestMeta{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !dto.IncludeCPU || !dto.IncludeStorage {
		t.Fatalf("toggles must default on: %+v", dto)
	}

	priced, err := f.svc.Recompute(context.Background(), actor, dto.ID, RecomputeRequest{
		IncludeCPU:     boolp(false),
		IncludeStorage: boolp(false),
	}, RequestMeta{})
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if priced.CPU != nil {
		t.Fatalf("cpu disabled, line must be absent")
	}
	if !priced.StorageCost.IsZero() {
		t.Fatalf("storage disabled, got cost %s", priced.StorageCost)
	}
	if !priced.TotalCost.Equal(decimal.NewFromInt(15000)) {
		t.Fatalf("expected licence-only total 15000, got %s", priced.TotalCost)
	}
	if priced.IncludeCPU || priced.IncludeStorage {
		t.Fatalf("overrides must persist: %+v", priced)
	}

	// A recompute without overrides keeps the stored toggles.
	again, err := f.svc.Recompute(context.Background(), actor, dto.ID, RecomputeRequest{}, RequestMeta{})
	if err != nil {
		t.Fatalf("second recompute: %v", err)
	}
	if again.IncludeCPU || !again.TotalCost.Equal(decimal.NewFromInt(15000)) {
		t.Fatalf("stored toggles must survive: %+v", again)
	}
}

func TestRecomputeStorageFailureKeepsPricedRow(t *testing.T) {
	f := newFixture(t)
	actor := Actor{ID: uuid.New(), Role: enums.UserRoleUser}

	dto, err := f.svc.Create(context.Background(), actor, CreateQuotationRequest{
		CameraCount: 50,
		StorageDays: 30,
		LicenceID:   f.licenceID,
	}, RequestMeta{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	priced, err := f.svc.Recompute(context.Background(), actor, dto.ID, RecomputeRequest{}, RequestMeta{})
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}

	f.reader.storage = nil

	_, err = f.svc.Recompute(context.Background(), actor, dto.ID, RecomputeRequest{}, RequestMeta{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConfiguration {
		t.Fatalf("expected configuration error, got %v", err)
	}

	stored, err := f.svc.Get(context.Background(), actor, dto.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != enums.QuotationStatusPriced {
		t.Fatalf("failed recompute must keep priced status, got %s", stored.Status)
	}
	if !stored.TotalCost.Equal(priced.TotalCost) || !stored.StorageCost.Equal(priced.StorageCost) {
		t.Fatalf("prior breakdown must be untouched: total %s vs %s", stored.TotalCost, priced.TotalCost)
	}
	if stored.PricedAt == nil || !stored.PricedAt.Equal(*priced.PricedAt) {
		t.Fatalf("priced_at must be unchanged")
	}
}

func TestRecomputeIdempotent(t *testing.T) {
	f := newFixture(t)
	actor := Actor{ID: uuid.New(), Role: enums.UserRoleUser}

	dto, err := f.svc.Create(context.Background(), actor, CreateQuotationRequest{
		CameraCount: 50,
		StorageDays: 30,
		LicenceID:   f.licenceID,
	}, RequestMeta{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	first, err := f.svc.Recompute(context.Background(), actor, dto.ID, RecomputeRequest{}, RequestMeta{})
	if err != nil {
		t.Fatalf("first recompute: %v", err)
	}
	second, err := f.svc.Recompute(context.Background(), actor, dto.ID, RecomputeRequest{}, RequestMeta{})
	if err != nil {
		t.Fatalf("second recompute: %v", err)
	}
	if !first.TotalCost.Equal(second.TotalCost) {
		t.Fatalf("recompute must be stable: %s vs %s", first.TotalCost, second.TotalCost)
	}
}

func TestGetHidesForeignQuotations(t *testing.T) {
	f := newFixture(t)
	owner := Actor{ID: uuid.New(), Role: enums.UserRoleUser}
	stranger := Actor{ID: uuid.New(), Role: enums.UserRoleUser}
	admin := Actor{ID: uuid.New(), Role: enums.UserRoleAdmin}

	dto, err := f.svc.Create(context.Background(), owner, CreateQuotationRequest{
		CameraCount: 10,
		LicenceID:   f.licenceID,
	}, RequestMeta{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = f.svc.Get(context.Background(), stranger, dto.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("stranger should see not found, got %v", err)
	}

	if _, err := f.svc.Get(context.Background(), admin, dto.ID); err != nil {
		t.Fatalf("admin read failed: %v", err)
	}
}

func TestDeleteRecordsAudit(t *testing.T) {
	f := newFixture(t)
	actor := Actor{ID: uuid.New(), Role: enums.UserRoleUser}

	dto, err := f.svc.Create(context.Background(), actor, CreateQuotationRequest{
		CameraCount: 10,
		LicenceID:   f.licenceID,
	}, RequestMeta{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := f.svc.Delete(context.Background(), actor, dto.ID, RequestMeta{}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(f.repo.rows) != 0 {
		t.Fatalf("row not deleted")
	}
	last := f.recorder.entries[len(f.recorder.entries)-1]
	if last.Action != enums.AuditActionDeleteQuotation {
		t.Fatalf("expected delete audit action, got %s", last.Action)
	}
}

func TestDocumentRequiresPricedStatus(t *testing.T) {
	f := newFixture(t)
	actor := Actor{ID: uuid.New(), Role: enums.UserRoleUser}

	dto, err := f.svc.Create(context.Background(), actor, CreateQuotationRequest{
		CameraCount: 10,
		LicenceID:   f.licenceID,
	}, RequestMeta{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, _, err = f.svc.Document(context.Background(), dto.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict for draft, got %v", err)
	}

	if _, err := f.svc.Recompute(context.Background(), actor, dto.ID, RecomputeRequest{}, RequestMeta{}); err != nil {
		t.Fatalf("recompute: %v", err)
	}
	doc, ownerID, err := f.svc.Document(context.Background(), dto.ID)
	if err != nil {
		t.Fatalf("document: %v", err)
	}
	if ownerID != actor.ID {
		t.Fatalf("wrong owner id")
	}
	if doc.CompanyName != "Sentinel Pricing" || doc.Currency != "INR" {
		t.Fatalf("document header not populated: %+v", doc)
	}
}
