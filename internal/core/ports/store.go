package ports

import (
	"context"

	"github.com/atvirokodosprendimai/labstore/internal/core/domain"
)

// EntityStore commits one unit of work atomically: every entity change and
// every audit record persist together or not at all. Version-checked changes
// are compared against the store-held token inside the same transaction; a
// mismatch aborts the whole batch with *domain.ConflictError.
type EntityStore interface {
	Commit(ctx context.Context, changes []domain.EntityChange, records []domain.AuditRecord) error
}
