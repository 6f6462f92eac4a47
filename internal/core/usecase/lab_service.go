package usecase

import (
	"context"

	"github.com/atvirokodosprendimai/labstore/internal/core/domain"
	"github.com/atvirokodosprendimai/labstore/internal/core/ports"
	"github.com/google/uuid"
)

type LabService struct {
	repo ports.LabRepository
	uow  *UnitOfWork
}

func NewLabService(repo ports.LabRepository, uow *UnitOfWork) *LabService {
	return &LabService{repo: repo, uow: uow}
}

func (s *LabService) Create(ctx context.Context, actor domain.Actor, lab domain.Lab) (domain.Lab, error) {
	if lab.ID == "" {
		lab.ID = uuid.NewString()
	}
	if err := lab.Validate(); err != nil {
		return domain.Lab{}, err
	}

	staged := domain.StagedChange{
		Kind:     domain.KindLab,
		ID:       lab.ID,
		TenantID: lab.TenantID,
		Intent:   domain.IntentInsert,
		Next:     lab.Properties(),
	}
	if err := s.uow.Execute(ctx, actor, []domain.StagedChange{staged}); err != nil {
		return domain.Lab{}, err
	}
	return s.repo.Get(ctx, lab.TenantID, lab.ID, false)
}

// Update overwrites the lab's business fields. The version token must be the
// one read when the lab was loaded; the commit compares it against the
// store-held token and rejects stale writers.
func (s *LabService) Update(ctx context.Context, actor domain.Actor, lab domain.Lab) (domain.Lab, error) {
	if err := lab.Validate(); err != nil {
		return domain.Lab{}, err
	}
	current, err := s.repo.Get(ctx, lab.TenantID, lab.ID, false)
	if err != nil {
		return domain.Lab{}, err
	}
	lab.Tombstone = current.Tombstone

	staged := domain.StagedChange{
		Kind:     domain.KindLab,
		ID:       lab.ID,
		TenantID: lab.TenantID,
		Intent:   domain.IntentModify,
		Base:     current.Properties(),
		Next:     lab.Properties(),
		Version:  lab.Version,
	}
	if err := s.uow.Execute(ctx, actor, []domain.StagedChange{staged}); err != nil {
		return domain.Lab{}, err
	}
	return s.repo.Get(ctx, lab.TenantID, lab.ID, false)
}

// Delete tombstones the lab. Deleting an already deleted lab refreshes the
// tombstone timestamp and is not an error. Dependent samples are not
// cascaded; they stay readable until separately deleted.
func (s *LabService) Delete(ctx context.Context, actor domain.Actor, tenantID, id, version string) error {
	current, err := s.repo.Get(ctx, tenantID, id, true)
	if err != nil {
		return err
	}
	if version == "" {
		version = current.Version
	}

	staged := domain.StagedChange{
		Kind:     domain.KindLab,
		ID:       id,
		TenantID: tenantID,
		Intent:   domain.IntentRemove,
		Base:     current.Properties(),
		Version:  version,
	}
	return s.uow.Execute(ctx, actor, []domain.StagedChange{staged})
}

func (s *LabService) Get(ctx context.Context, tenantID, id string, includeDeleted bool) (domain.Lab, error) {
	if err := domain.ValidateTenant(tenantID); err != nil {
		return domain.Lab{}, err
	}
	if err := domain.ValidateKey(id); err != nil {
		return domain.Lab{}, err
	}
	return s.repo.Get(ctx, tenantID, id, includeDeleted)
}

func (s *LabService) List(ctx context.Context, tenantID string, filter domain.ListFilter) ([]domain.Lab, error) {
	if err := domain.ValidateTenant(tenantID); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, tenantID, filter.Normalize())
}
