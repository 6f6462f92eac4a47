package usecase

import (
	"context"
	"fmt"

	"github.com/atvirokodosprendimai/labstore/internal/core/domain"
	"github.com/atvirokodosprendimai/labstore/internal/core/ports"
	"github.com/google/uuid"
)

type ResultService struct {
	repo    ports.ResultRepository
	samples ports.SampleRepository
	params  ports.ParameterRepository
	schemas *SchemaService
	uow     *UnitOfWork
}

func NewResultService(repo ports.ResultRepository, samples ports.SampleRepository, params ports.ParameterRepository, schemas *SchemaService, uow *UnitOfWork) *ResultService {
	return &ResultService{repo: repo, samples: samples, params: params, schemas: schemas, uow: uow}
}

func (s *ResultService) Create(ctx context.Context, actor domain.Actor, result domain.TestResult) (domain.TestResult, error) {
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	if err := result.Validate(); err != nil {
		return domain.TestResult{}, err
	}
	if _, err := s.samples.Get(ctx, result.TenantID, result.SampleID, false); err != nil {
		return domain.TestResult{}, err
	}
	param, err := s.params.Get(ctx, result.TenantID, result.ParameterID, false)
	if err != nil {
		return domain.TestResult{}, err
	}
	if err := checkBounds(param, result.Value); err != nil {
		return domain.TestResult{}, err
	}
	if err := s.schemas.Validate(ctx, result.TenantID, domain.KindTestResult, result.Attributes); err != nil {
		return domain.TestResult{}, err
	}

	staged := domain.StagedChange{
		Kind:     domain.KindTestResult,
		ID:       result.ID,
		TenantID: result.TenantID,
		Intent:   domain.IntentInsert,
		Next:     result.Properties(),
	}
	if err := s.uow.Execute(ctx, actor, []domain.StagedChange{staged}); err != nil {
		return domain.TestResult{}, err
	}
	return s.repo.Get(ctx, result.TenantID, result.ID, false)
}

func (s *ResultService) Update(ctx context.Context, actor domain.Actor, result domain.TestResult) (domain.TestResult, error) {
	if err := result.Validate(); err != nil {
		return domain.TestResult{}, err
	}
	param, err := s.params.Get(ctx, result.TenantID, result.ParameterID, true)
	if err != nil {
		return domain.TestResult{}, err
	}
	if err := checkBounds(param, result.Value); err != nil {
		return domain.TestResult{}, err
	}
	if err := s.schemas.Validate(ctx, result.TenantID, domain.KindTestResult, result.Attributes); err != nil {
		return domain.TestResult{}, err
	}
	current, err := s.repo.Get(ctx, result.TenantID, result.ID, false)
	if err != nil {
		return domain.TestResult{}, err
	}
	result.Tombstone = current.Tombstone

	staged := domain.StagedChange{
		Kind:     domain.KindTestResult,
		ID:       result.ID,
		TenantID: result.TenantID,
		Intent:   domain.IntentModify,
		Base:     current.Properties(),
		Next:     result.Properties(),
		Version:  result.Version,
	}
	if err := s.uow.Execute(ctx, actor, []domain.StagedChange{staged}); err != nil {
		return domain.TestResult{}, err
	}
	return s.repo.Get(ctx, result.TenantID, result.ID, false)
}

func (s *ResultService) Delete(ctx context.Context, actor domain.Actor, tenantID, id, version string) error {
	current, err := s.repo.Get(ctx, tenantID, id, true)
	if err != nil {
		return err
	}
	if version == "" {
		version = current.Version
	}

	staged := domain.StagedChange{
		Kind:     domain.KindTestResult,
		ID:       id,
		TenantID: tenantID,
		Intent:   domain.IntentRemove,
		Base:     current.Properties(),
		Version:  version,
	}
	return s.uow.Execute(ctx, actor, []domain.StagedChange{staged})
}

func (s *ResultService) Get(ctx context.Context, tenantID, id string, includeDeleted bool) (domain.TestResult, error) {
	if err := domain.ValidateTenant(tenantID); err != nil {
		return domain.TestResult{}, err
	}
	if err := domain.ValidateKey(id); err != nil {
		return domain.TestResult{}, err
	}
	return s.repo.Get(ctx, tenantID, id, includeDeleted)
}

func (s *ResultService) List(ctx context.Context, tenantID string, filter domain.ResultFilter) ([]domain.TestResult, error) {
	if err := domain.ValidateTenant(tenantID); err != nil {
		return nil, err
	}
	filter.ListFilter = filter.Normalize()
	return s.repo.List(ctx, tenantID, filter)
}

func checkBounds(param domain.Parameter, value float64) error {
	if param.MinValue == 0 && param.MaxValue == 0 {
		return nil
	}
	if value < param.MinValue || (param.MaxValue != 0 && value > param.MaxValue) {
		return fmt.Errorf("%w: value %g outside plausible range [%g, %g] for parameter %s", domain.ErrInvalidArgument, value, param.MinValue, param.MaxValue, param.Name)
	}
	return nil
}
