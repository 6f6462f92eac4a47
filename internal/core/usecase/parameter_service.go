package usecase

import (
	"context"

	"github.com/atvirokodosprendimai/labstore/internal/core/domain"
	"github.com/atvirokodosprendimai/labstore/internal/core/ports"
	"github.com/google/uuid"
)

type ParameterService struct {
	repo ports.ParameterRepository
	uow  *UnitOfWork
}

func NewParameterService(repo ports.ParameterRepository, uow *UnitOfWork) *ParameterService {
	return &ParameterService{repo: repo, uow: uow}
}

func (s *ParameterService) Create(ctx context.Context, actor domain.Actor, param domain.Parameter) (domain.Parameter, error) {
	if param.ID == "" {
		param.ID = uuid.NewString()
	}
	if err := param.Validate(); err != nil {
		return domain.Parameter{}, err
	}

	staged := domain.StagedChange{
		Kind:     domain.KindParameter,
		ID:       param.ID,
		TenantID: param.TenantID,
		Intent:   domain.IntentInsert,
		Next:     param.Properties(),
	}
	if err := s.uow.Execute(ctx, actor, []domain.StagedChange{staged}); err != nil {
		return domain.Parameter{}, err
	}
	return s.repo.Get(ctx, param.TenantID, param.ID, false)
}

func (s *ParameterService) Update(ctx context.Context, actor domain.Actor, param domain.Parameter) (domain.Parameter, error) {
	if err := param.Validate(); err != nil {
		return domain.Parameter{}, err
	}
	current, err := s.repo.Get(ctx, param.TenantID, param.ID, false)
	if err != nil {
		return domain.Parameter{}, err
	}
	param.Tombstone = current.Tombstone

	staged := domain.StagedChange{
		Kind:     domain.KindParameter,
		ID:       param.ID,
		TenantID: param.TenantID,
		Intent:   domain.IntentModify,
		Base:     current.Properties(),
		Next:     param.Properties(),
		Version:  param.Version,
	}
	if err := s.uow.Execute(ctx, actor, []domain.StagedChange{staged}); err != nil {
		return domain.Parameter{}, err
	}
	return s.repo.Get(ctx, param.TenantID, param.ID, false)
}

func (s *ParameterService) Delete(ctx context.Context, actor domain.Actor, tenantID, id, version string) error {
	current, err := s.repo.Get(ctx, tenantID, id, true)
	if err != nil {
		return err
	}
	if version == "" {
		version = current.Version
	}

	staged := domain.StagedChange{
		Kind:     domain.KindParameter,
		ID:       id,
		TenantID: tenantID,
		Intent:   domain.IntentRemove,
		Base:     current.Properties(),
		Version:  version,
	}
	return s.uow.Execute(ctx, actor, []domain.StagedChange{staged})
}

func (s *ParameterService) Get(ctx context.Context, tenantID, id string, includeDeleted bool) (domain.Parameter, error) {
	if err := domain.ValidateTenant(tenantID); err != nil {
		return domain.Parameter{}, err
	}
	if err := domain.ValidateKey(id); err != nil {
		return domain.Parameter{}, err
	}
	return s.repo.Get(ctx, tenantID, id, includeDeleted)
}

func (s *ParameterService) List(ctx context.Context, tenantID string, filter domain.ListFilter) ([]domain.Parameter, error) {
	if err := domain.ValidateTenant(tenantID); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, tenantID, filter.Normalize())
}
