package audit

import (
	"context"
	"fmt"

	"github.com/sentinelworks/sentinel-backend/pkg/db/models"
	pkgerrors "github.com/sentinelworks/sentinel-backend/pkg/errors"
	"github.com/sentinelworks/sentinel-backend/pkg/logger"
	"github.com/sentinelworks/sentinel-backend/pkg/pagination"
)

// Recorder is the write-side surface other services depend on.
type Recorder interface {
	Record(ctx context.Context, entry Entry)
}

// Service records and lists audit facts.
type Service struct {
	repo repository
	logg *logger.Logger
}

type repository interface {
	Insert(ctx context.Context, row *models.AuditLog) error
	List(ctx context.Context, params pagination.Params, filters Filters) (*LogList, error)
}

// NewService builds the audit service.
func NewService(repo repository, logg *logger.Logger) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository is required")
	}
	return &Service{repo: repo, logg: logg}, nil
}

// Record appends an audit fact. Failures are logged and swallowed so a broken
// audit trail can never fail the request that produced it.
func (s *Service) Record(ctx context.Context, entry Entry) {
	if !entry.Action.IsValid() {
		if s.logg != nil {
			s.logg.Warn(ctx, fmt.Sprintf("dropping audit fact with invalid action %q", entry.Action))
		}
		return
	}
	row := &models.AuditLog{
		UserID:    entry.UserID,
		Action:    entry.Action,
		Details:   entry.Details,
		IPAddress: entry.IPAddress,
		UserAgent: entry.UserAgent,
	}
	if err := s.repo.Insert(ctx, row); err != nil {
		if s.logg != nil {
			fields := map[string]any{"action": entry.Action.String()}
			s.logg.Error(s.logg.WithFields(ctx, fields), "audit insert failed", err)
		}
	}
}

// List returns audit facts for the admin endpoint.
func (s *Service) List(ctx context.Context, params pagination.Params, filters Filters) (*LogList, error) {
	list, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list audit logs")
	}
	return list, nil
}
