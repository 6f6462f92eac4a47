package usecase

import (
	"context"
	"time"

	"github.com/atvirokodosprendimai/labstore/internal/core/domain"
	"github.com/atvirokodosprendimai/labstore/internal/core/ports"
)

// UnitOfWork runs one logical write through the integrity pipeline: diff
// extraction, soft-delete rewriting, audit capture, then a single atomic
// commit. A rejected commit (version conflict or store failure) leaves no
// trace: no entity writes, no tombstones, no audit rows.
//
// The coordinator never retries. A conflict is terminal for the attempt;
// retrying requires a fresh load by the caller.
type UnitOfWork struct {
	store ports.EntityStore
	nowFn func() time.Time
}

func NewUnitOfWork(store ports.EntityStore) *UnitOfWork {
	return &UnitOfWork{
		store: store,
		nowFn: func() time.Time { return time.Now().UTC() },
	}
}

// Execute stages, transforms and commits one batch of entity changes on
// behalf of actor. An empty actor resolves to the system sentinel. Batches
// that reduce to nothing (all modifies were no-ops) return nil without
// touching the store.
func (u *UnitOfWork) Execute(ctx context.Context, actor domain.Actor, staged []domain.StagedChange) error {
	actor = actor.OrSystem()
	now := u.nowFn()

	for _, st := range staged {
		if !st.Kind.Valid() {
			return domain.ErrInvalidKind
		}
		caps := domain.CapabilitiesFor(st.Kind)
		if st.Intent == domain.IntentModify && caps.VersionChecked && st.Version == "" {
			return &domain.CapabilityError{
				Kind:   st.Kind,
				ID:     st.ID,
				Reason: "modify staged without a version token from a load",
			}
		}
	}

	changes := ExtractChanges(staged)
	changes = TransformSoftDeletes(changes, actor, now)
	records := BuildAuditRecords(changes, actor, now)
	if len(changes) == 0 {
		return nil
	}
	return u.store.Commit(ctx, changes, records)
}
