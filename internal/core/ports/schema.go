package ports

import (
	"context"

	"github.com/atvirokodosprendimai/labstore/internal/core/domain"
)

type AttributeSchemaRepository interface {
	Upsert(ctx context.Context, schema domain.AttributeSchema) (domain.AttributeSchema, error)
	Get(ctx context.Context, tenantID string, kind domain.EntityKind) (domain.AttributeSchema, error)
	Delete(ctx context.Context, tenantID string, kind domain.EntityKind) (bool, error)
}
