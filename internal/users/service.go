package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sentinelworks/sentinel-backend/pkg/db/models"
	"github.com/sentinelworks/sentinel-backend/pkg/enums"
	pkgerrors "github.com/sentinelworks/sentinel-backend/pkg/errors"
	"github.com/sentinelworks/sentinel-backend/pkg/pagination"
)

// Service exposes the admin user management surface.
type Service interface {
	List(ctx context.Context, params pagination.Params) (*UserList, error)
	Get(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	ToggleRole(ctx context.Context, actorID, targetID uuid.UUID) (*UserDTO, error)
	ToggleActive(ctx context.Context, actorID, targetID uuid.UUID) (*UserDTO, error)
}

type repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, params pagination.Params) (*UserList, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role enums.UserRole) error
	UpdateActive(ctx context.Context, id uuid.UUID, active bool) error
}

type service struct {
	repo repository
}

// NewService builds the user management service.
func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*UserList, error) {
	list, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}
	return list, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.loadTarget(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) ToggleRole(ctx context.Context, actorID, targetID uuid.UUID) (*UserDTO, error) {
	target, err := s.guardModification(ctx, actorID, targetID)
	if err != nil {
		return nil, err
	}

	next := enums.UserRoleAdmin
	if target.Role == enums.UserRoleAdmin {
		next = enums.UserRoleUser
	}
	if err := s.repo.UpdateRole(ctx, targetID, next); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update role")
	}
	target.Role = next
	return FromModel(target), nil
}

func (s *service) ToggleActive(ctx context.Context, actorID, targetID uuid.UUID) (*UserDTO, error) {
	target, err := s.guardModification(ctx, actorID, targetID)
	if err != nil {
		return nil, err
	}

	next := !target.IsActive
	if err := s.repo.UpdateActive(ctx, targetID, next); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update active flag")
	}
	target.IsActive = next
	return FromModel(target), nil
}

// guardModification loads the target and enforces the management rules:
// admins cannot modify themselves and cannot modify other admins.
func (s *service) guardModification(ctx context.Context, actorID, targetID uuid.UUID) (*models.User, error) {
	if actorID == targetID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot modify own account")
	}
	target, err := s.loadTarget(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot modify another admin")
	}
	return target, nil
}

func (s *service) loadTarget(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return user, nil
}
