package usecase

import (
	"context"

	"github.com/atvirokodosprendimai/labstore/internal/core/domain"
	"github.com/atvirokodosprendimai/labstore/internal/core/ports"
	"github.com/google/uuid"
)

type SampleService struct {
	repo    ports.SampleRepository
	labs    ports.LabRepository
	schemas *SchemaService
	uow     *UnitOfWork
}

func NewSampleService(repo ports.SampleRepository, labs ports.LabRepository, schemas *SchemaService, uow *UnitOfWork) *SampleService {
	return &SampleService{repo: repo, labs: labs, schemas: schemas, uow: uow}
}

func (s *SampleService) Create(ctx context.Context, actor domain.Actor, sample domain.Sample) (domain.Sample, error) {
	if sample.ID == "" {
		sample.ID = uuid.NewString()
	}
	if err := sample.Validate(); err != nil {
		return domain.Sample{}, err
	}
	if _, err := s.labs.Get(ctx, sample.TenantID, sample.LabID, false); err != nil {
		return domain.Sample{}, err
	}
	if err := s.schemas.Validate(ctx, sample.TenantID, domain.KindSample, sample.Attributes); err != nil {
		return domain.Sample{}, err
	}

	staged := domain.StagedChange{
		Kind:     domain.KindSample,
		ID:       sample.ID,
		TenantID: sample.TenantID,
		Intent:   domain.IntentInsert,
		Next:     sample.Properties(),
	}
	if err := s.uow.Execute(ctx, actor, []domain.StagedChange{staged}); err != nil {
		return domain.Sample{}, err
	}
	return s.repo.Get(ctx, sample.TenantID, sample.ID, false)
}

func (s *SampleService) Update(ctx context.Context, actor domain.Actor, sample domain.Sample) (domain.Sample, error) {
	if err := sample.Validate(); err != nil {
		return domain.Sample{}, err
	}
	if err := s.schemas.Validate(ctx, sample.TenantID, domain.KindSample, sample.Attributes); err != nil {
		return domain.Sample{}, err
	}
	current, err := s.repo.Get(ctx, sample.TenantID, sample.ID, false)
	if err != nil {
		return domain.Sample{}, err
	}
	sample.Tombstone = current.Tombstone

	staged := domain.StagedChange{
		Kind:     domain.KindSample,
		ID:       sample.ID,
		TenantID: sample.TenantID,
		Intent:   domain.IntentModify,
		Base:     current.Properties(),
		Next:     sample.Properties(),
		Version:  sample.Version,
	}
	if err := s.uow.Execute(ctx, actor, []domain.StagedChange{staged}); err != nil {
		return domain.Sample{}, err
	}
	return s.repo.Get(ctx, sample.TenantID, sample.ID, false)
}

func (s *SampleService) Delete(ctx context.Context, actor domain.Actor, tenantID, id, version string) error {
	current, err := s.repo.Get(ctx, tenantID, id, true)
	if err != nil {
		return err
	}
	if version == "" {
		version = current.Version
	}

	staged := domain.StagedChange{
		Kind:     domain.KindSample,
		ID:       id,
		TenantID: tenantID,
		Intent:   domain.IntentRemove,
		Base:     current.Properties(),
		Version:  version,
	}
	return s.uow.Execute(ctx, actor, []domain.StagedChange{staged})
}

func (s *SampleService) Get(ctx context.Context, tenantID, id string, includeDeleted bool) (domain.Sample, error) {
	if err := domain.ValidateTenant(tenantID); err != nil {
		return domain.Sample{}, err
	}
	if err := domain.ValidateKey(id); err != nil {
		return domain.Sample{}, err
	}
	return s.repo.Get(ctx, tenantID, id, includeDeleted)
}

func (s *SampleService) List(ctx context.Context, tenantID string, filter domain.SampleFilter) ([]domain.Sample, error) {
	if err := domain.ValidateTenant(tenantID); err != nil {
		return nil, err
	}
	filter.ListFilter = filter.Normalize()
	return s.repo.List(ctx, tenantID, filter)
}
