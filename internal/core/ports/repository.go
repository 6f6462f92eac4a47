package ports

import (
	"context"

	"github.com/atvirokodosprendimai/labstore/internal/core/domain"
)

// Read-side repositories. Writes go through the unit of work, never through
// these interfaces. Get with includeDeleted=false returns domain.ErrNotFound
// for tombstoned rows.

type LabRepository interface {
	Get(ctx context.Context, tenantID, id string, includeDeleted bool) (domain.Lab, error)
	List(ctx context.Context, tenantID string, filter domain.ListFilter) ([]domain.Lab, error)
}

type SampleRepository interface {
	Get(ctx context.Context, tenantID, id string, includeDeleted bool) (domain.Sample, error)
	List(ctx context.Context, tenantID string, filter domain.SampleFilter) ([]domain.Sample, error)
}

type ParameterRepository interface {
	Get(ctx context.Context, tenantID, id string, includeDeleted bool) (domain.Parameter, error)
	List(ctx context.Context, tenantID string, filter domain.ListFilter) ([]domain.Parameter, error)
}

type ResultRepository interface {
	Get(ctx context.Context, tenantID, id string, includeDeleted bool) (domain.TestResult, error)
	List(ctx context.Context, tenantID string, filter domain.ResultFilter) ([]domain.TestResult, error)
}

type UserRepository interface {
	Get(ctx context.Context, tenantID, id string, includeDeleted bool) (domain.User, error)
	GetByEmail(ctx context.Context, tenantID, email string) (domain.User, error)
	List(ctx context.Context, tenantID string, filter domain.ListFilter) ([]domain.User, error)
}
