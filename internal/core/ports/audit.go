package ports

import (
	"context"
	"time"

	"github.com/atvirokodosprendimai/labstore/internal/core/domain"
)

// AuditTrailRepository reads the audit trail and drives retention. Inserts
// happen only inside EntityStore.Commit, in the same transaction as the
// mutation being captured.
type AuditTrailRepository interface {
	List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditRecord, error)
	ListArchived(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditRecord, error)
	// ArchiveBefore moves at most batch records older than cutoff into the
	// archive partition and returns how many were moved.
	ArchiveBefore(ctx context.Context, cutoff time.Time, batch int) (int, error)
}
