package pricing

import (
	"context"
	"errors"
	"fmt"
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
	"github.com/sentinelworks/sentinel-backend/pkg/metrics"
	"github.com/sentinelworks/sentinel-backend/pkg/outbox"
	"github.com/sentinelworks/sentinel-backend/pkg/outbox/payloads"
	"github.com/sentinelworks/sentinel-backend/pkg/pagination"
	"github.com/sentinelworks/sentinel-backend/pkg/pdf"
)

const (
	msgNoCPU          = "No CPU meets required core count"
	msgNoGPU          = "No GPU meets VRAM requirement"
	msgInvalidLicence = "Invalid licence selection"
)

// Actor identifies the caller for ownership checks.
type Actor struct {
	ID   uuid.UUID
	Role enums.UserRole
}

// Service defines the quotation pricing surface.
type Service interface {
	Create(ctx context.Context, actor Actor, req CreateQuotationRequest, meta RequestMeta) (*QuotationDTO, error)
	Recompute(ctx context.Context, actor Actor, id uuid.UUID, req RecomputeRequest, meta RequestMeta) (*QuotationDTO, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*QuotationDTO, error)
	List(ctx context.Context, actor Actor, params pagination.Params, allUsers bool) (*QuotationList, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID, meta RequestMeta) error
	Document(ctx context.Context, id uuid.UUID) (*pdf.QuotationDocument, uuid.UUID, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type service struct {
	db       txRunner
	repo     Repository
	catalog  catalog.Reader
	audit    audit.Recorder
	events   eventEmitter
	metrics  *metrics.QuoteMetrics
	document config.QuotationConfig
}

// ServiceParams bundles the dependencies required to build a pricing service.
type ServiceParams struct {
	DB        txRunner
	Repo      Repository
	Catalog   catalog.Reader
	Audit     audit.Recorder
	Events    eventEmitter
	Metrics   *metrics.QuoteMetrics
	Quotation config.QuotationConfig
}

// NewService constructs the pricing service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("quotation repository is required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog reader is required")
	}
	if params.Audit == nil {
		return nil, fmt.Errorf("audit recorder is required")
	}
	return &service{
		db:       params.DB,
		repo:     params.Repo,
		catalog:  params.Catalog,
		audit:    params.Audit,
		events:   params.Events,
		metrics:  params.Metrics,
		document: params.Quotation,
	}, nil
}

// Create runs phase 1: validate inputs, derive the requirement, resolve the
// licence, and persist a draft. Nothing is persisted on failure.
func (s *service) Create(ctx context.Context, actor Actor, req CreateQuotationRequest, meta RequestMeta) (*QuotationDTO, error) {
	dto, err := s.create(ctx, actor, req)
	if err != nil {
		s.countFailure(err)
		return nil, err
	}

	s.metrics.IncCreated()
	s.audit.Record(ctx, audit.Entry{
		UserID:    &actor.ID,
		Action:    enums.AuditActionCreateQuotation,
		Details:   fmt.Sprintf("quotation=%s cameras=%d", dto.ID, dto.CameraCount),
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	})
	return dto, nil
}

func (s *service) create(ctx context.Context, actor Actor, req CreateQuotationRequest) (*QuotationDTO, error) {
	if req.CameraCount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "camera count must be positive")
	}
	if req.AIEnabledCameras != nil && *req.AIEnabledCameras < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ai enabled cameras must not be negative")
	}
	if req.StorageDays < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "storage days must not be negative")
	}

	sizing, err := s.catalog.SizingConfig(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load sizing config")
	}
	if sizing == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConfiguration, "CPU/GPU sizing config not set")
	}

	licence, err := s.resolveLicence(ctx, s.catalog, req.LicenceID)
	if err != nil {
		return nil, err
	}

	features, err := s.catalog.AIFeatures(ctx, req.AIFeatureIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve ai features")
	}
	if len(features) != len(req.AIFeatureIDs) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown AI feature selection")
	}

	requirement := DeriveRequirement(*sizing, req.CameraCount, req.StorageDays, req.AIEnabledCameras, len(features))

	include := func(flag *bool) bool {
		return flag == nil || *flag
	}
	quotation := &models.Quotation{
		UserID:             actor.ID,
		Status:             enums.QuotationStatusDraft,
		CameraCount:        requirement.CameraCount,
		AIEnabledCameras:   requirement.AIEnabledCameras,
		StorageDays:        requirement.StorageDays,
		StorageUsedScaled:  requirement.StorageUsedScaled,
		VRAMRequired:       requirement.VRAMRequired,
		CPUCoresRequired:   requirement.CPUCoresRequired,
		RAMRequired:        requirement.RAMRequired,
		IncludeCPU:         include(req.IncludeCPU),
		IncludeGPU:         include(req.IncludeGPU),
		IncludeStorage:     include(req.IncludeStorage),
		LicenceComponentID: licence.ID,
		LicenceCost:        *licence.Cost,
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, quotation); err != nil {
			return err
		}
		links := make([]models.QuotationAIFeature, 0, len(features))
		for _, feature := range features {
			links = append(links, models.QuotationAIFeature{
				QuotationID: quotation.ID,
				ComponentID: feature.ID,
			})
		}
		return repo.CreateAIFeatures(ctx, links)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist quotation")
	}

	return s.reload(ctx, quotation.ID)
}

// Recompute runs phase 2 inside one transaction: select components against
// the stored requirement, aggregate costs, and flip the status to priced.
// A failed recompute leaves the previously priced row untouched.
func (s *service) Recompute(ctx context.Context, actor Actor, id uuid.UUID, req RecomputeRequest, meta RequestMeta) (*QuotationDTO, error) {
	dto, err := s.recompute(ctx, actor, id, req)
	if err != nil {
		s.countFailure(err)
		return nil, err
	}

	s.metrics.IncPriced()
	s.audit.Record(ctx, audit.Entry{
		UserID:    &actor.ID,
		Action:    enums.AuditActionUpdatePricing,
		Details:   fmt.Sprintf("quotation=%s total=%s", dto.ID, dto.TotalCost.StringFixed(2)),
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	})
	return dto, nil
}

func (s *service) recompute(ctx context.Context, actor Actor, id uuid.UUID, req RecomputeRequest) (*QuotationDTO, error) {
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		reader := s.catalog.WithTx(tx)

		quotation, err := repo.Find(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "quotation not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load quotation")
		}
		if quotation.UserID != actor.ID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "recompute is owner-only")
		}

		licenceID := quotation.LicenceComponentID
		licenceCost := quotation.LicenceCost
		if req.LicenceID != nil {
			licence, err := s.resolveLicence(ctx, reader, *req.LicenceID)
			if err != nil {
				return err
			}
			licenceID = licence.ID
			licenceCost = *licence.Cost
		}

		includeCPU := quotation.IncludeCPU
		if req.IncludeCPU != nil {
			includeCPU = *req.IncludeCPU
		}
		includeGPU := quotation.IncludeGPU
		if req.IncludeGPU != nil {
			includeGPU = *req.IncludeGPU
		}
		includeStorage := quotation.IncludeStorage
		if req.IncludeStorage != nil {
			includeStorage = *req.IncludeStorage
		}

		var cpuID, gpuID *uuid.UUID
		cpuCost, gpuCost := decimal.Zero, decimal.Zero

		if includeCPU {
			cpu, err := reader.SmallestCPU(ctx, quotation.CPUCoresRequired, quotation.RAMRequired)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "select cpu")
			}
			if cpu == nil {
				return pkgerrors.New(pkgerrors.CodeSelection, msgNoCPU)
			}
			if cpu.Cost == nil {
				return priceNotConfigured(cpu.Name)
			}
			cpuID = &cpu.ID
			cpuCost = *cpu.Cost
		}

		if includeGPU && quotation.VRAMRequired > 0 {
			gpu, err := reader.SmallestGPU(ctx, quotation.VRAMRequired)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "select gpu")
			}
			if gpu == nil {
				return pkgerrors.New(pkgerrors.CodeSelection, msgNoGPU)
			}
			if gpu.Cost == nil {
				return priceNotConfigured(gpu.Name)
			}
			gpuID = &gpu.ID
			gpuCost = *gpu.Cost
		}

		aiCost := decimal.Zero
		for _, link := range quotation.AIFeatures {
			if link.Component == nil {
				continue
			}
			if link.Component.Price == nil {
				return priceNotConfigured(link.Component.Name)
			}
			aiCost = aiCost.Add(link.Component.Price.Costing)
		}

		storageCost := decimal.Zero
		if includeStorage {
			rate, err := reader.StorageRate(ctx)
			if err != nil {
				if errors.Is(err, catalog.ErrMultipleStorageRates) {
					return pkgerrors.New(pkgerrors.CodeConfiguration, "multiple storage components configured")
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load storage rate")
			}
			if rate == nil {
				return pkgerrors.New(pkgerrors.CodeConfiguration, "no storage component configured")
			}
			if rate.Cost == nil {
				return priceNotConfigured(rate.Name)
			}
			// Dividing the scaled value back down restores cameras*days
			// exactly; the stored value is always a factor multiple.
			storageCost = decimal.NewFromInt(int64(quotation.StorageUsedScaled)).
				Div(decimal.NewFromInt(storageBillingFactor)).
				Mul(*rate.Cost)
		}

		total := cpuCost.Add(gpuCost).Add(aiCost).Add(storageCost).Add(licenceCost)
		now := time.Now().UTC()

		err = repo.Update(ctx, quotation.ID, map[string]any{
			"status":               enums.QuotationStatusPriced,
			"include_cpu":          includeCPU,
			"include_gpu":          includeGPU,
			"include_storage":      includeStorage,
			"cpu_component_id":     cpuID,
			"gpu_component_id":     gpuID,
			"licence_component_id": licenceID,
			"cpu_cost":             cpuCost,
			"gpu_cost":             gpuCost,
			"ai_cost":              aiCost,
			"storage_cost":         storageCost,
			"licence_cost":         licenceCost,
			"total_cost":           total,
			"priced_at":            now,
		})
		if err != nil {
			return err
		}

		if s.events == nil {
			return nil
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventQuotationPriced,
			AggregateType: enums.AggregateQuotation,
			AggregateID:   quotation.ID,
			Actor:         &outbox.ActorRef{UserID: actor.ID, Role: actor.Role.String()},
			Data: payloads.QuotationPricedEvent{
				QuotationID: quotation.ID,
				TotalCost:   total,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, id)
}

func (s *service) Get(ctx context.Context, actor Actor, id uuid.UUID) (*QuotationDTO, error) {
	quotation, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	dto := fromModel(quotation)
	return &dto, nil
}

func (s *service) List(ctx context.Context, actor Actor, params pagination.Params, allUsers bool) (*QuotationList, error) {
	ownerID := &actor.ID
	if allUsers {
		if actor.Role != enums.UserRoleAdmin {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
		}
		ownerID = nil
	}
	list, err := s.repo.List(ctx, ownerID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list quotations")
	}
	return list, nil
}

func (s *service) Delete(ctx context.Context, actor Actor, id uuid.UUID, meta RequestMeta) error {
	if _, err := s.load(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete quotation")
	}
	s.audit.Record(ctx, audit.Entry{
		UserID:    &actor.ID,
		Action:    enums.AuditActionDeleteQuotation,
		Details:   fmt.Sprintf("quotation=%s", id),
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	})
	return nil
}

// Document assembles the renderable quotation and returns it with the owner
// id so callers can enforce access themselves.
func (s *service) Document(ctx context.Context, id uuid.UUID) (*pdf.QuotationDocument, uuid.UUID, error) {
	quotation, err := s.repo.Find(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, "quotation not found")
		}
		return nil, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load quotation")
	}
	if quotation.Status != enums.QuotationStatusPriced {
		return nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeStateConflict, "quotation has not been priced yet")
	}

	doc := &pdf.QuotationDocument{
		CompanyName:      s.document.CompanyName,
		Currency:         s.document.Currency,
		QuotationID:      quotation.ID.String(),
		GeneratedAt:      time.Now().UTC(),
		CameraCount:      quotation.CameraCount,
		AIEnabledCameras: quotation.AIEnabledCameras,
		StorageDays:      quotation.StorageDays,
		CPUCoresRequired: quotation.CPUCoresRequired,
		RAMRequired:      quotation.RAMRequired,
		VRAMRequired:     quotation.VRAMRequired,
		TotalCost:        quotation.TotalCost,
	}
	if quotation.User != nil {
		doc.Customer = quotation.User.Email
	}

	if quotation.CPUComponent != nil {
		doc.Lines = append(doc.Lines, pdf.LineItem{
			Label: "CPU", Detail: quotation.CPUComponent.Name, Cost: quotation.CPUCost,
		})
	}
	if quotation.GPUComponent != nil {
		doc.Lines = append(doc.Lines, pdf.LineItem{
			Label: "GPU", Detail: quotation.GPUComponent.Name, Cost: quotation.GPUCost,
		})
	}
	if quotation.IncludeStorage {
		doc.Lines = append(doc.Lines, pdf.LineItem{
			Label:  "Storage",
			Detail: fmt.Sprintf("%d cameras x %d days", quotation.CameraCount, quotation.StorageDays),
			Cost:   quotation.StorageCost,
		})
	}
	if quotation.LicenceComponent != nil {
		doc.Lines = append(doc.Lines, pdf.LineItem{
			Label: "Licence", Detail: quotation.LicenceComponent.Name, Cost: quotation.LicenceCost,
		})
	}
	for _, link := range quotation.AIFeatures {
		if link.Component == nil {
			continue
		}
		line := pdf.LineItem{Label: link.Component.Name}
		if link.Component.Price != nil {
			line.Cost = link.Component.Price.Costing
		}
		doc.AIFeatures = append(doc.AIFeatures, line)
	}

	return doc, quotation.UserID, nil
}

func (s *service) load(ctx context.Context, actor Actor, id uuid.UUID) (*models.Quotation, error) {
	quotation, err := s.repo.Find(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quotation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load quotation")
	}
	if quotation.UserID != actor.ID && actor.Role != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quotation not found")
	}
	return quotation, nil
}

func (s *service) reload(ctx context.Context, id uuid.UUID) (*QuotationDTO, error) {
	quotation, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload quotation")
	}
	dto := fromModel(quotation)
	return &dto, nil
}

func (s *service) resolveLicence(ctx context.Context, reader catalog.Reader, id uuid.UUID) (*catalog.LicenceTerm, error) {
	licence, err := reader.LicenceTerm(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve licence")
	}
	if licence == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgInvalidLicence)
	}
	if licence.Cost == nil {
		return nil, priceNotConfigured(licence.Name)
	}
	return licence, nil
}

func (s *service) countFailure(err error) {
	if typed := pkgerrors.As(err); typed != nil {
		s.metrics.IncFailure(string(typed.Code()))
		return
	}
	s.metrics.IncFailure(string(pkgerrors.CodeInternal))
}

func priceNotConfigured(name string) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeConfiguration, fmt.Sprintf("Price not configured for %s", name))
}
