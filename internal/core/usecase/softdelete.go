package usecase

import (
	"time"

	"github.com/atvirokodosprendimai/labstore/internal/core/domain"
)

// TransformSoftDeletes rewrites remove intents into tombstone updates for
// kinds that opt into soft deletion, synthesizing the deleted flag, the
// deletion timestamp and the deleting actor as property changes. Kinds
// without tombstone semantics pass through as genuine removes and are
// physically deleted at commit.
//
// Re-deleting an already tombstoned entity is a no-op with respect to the
// deleted flag: the timestamp and actor are refreshed, no error is raised.
func TransformSoftDeletes(changes []domain.EntityChange, actor domain.Actor, now time.Time) []domain.EntityChange {
	for i, ch := range changes {
		if ch.Intent != domain.IntentRemove {
			continue
		}
		if !domain.CapabilitiesFor(ch.Kind).SoftDeletable {
			continue
		}

		prior := make(map[string]*string, len(ch.Changes))
		for _, pc := range ch.Changes {
			prior[pc.Name] = pc.Old
		}

		tomb := make([]domain.PropertyChange, 0, 3)
		alreadyDeleted := prior[domain.PropDeleted] != nil && *prior[domain.PropDeleted] == "true"
		if !alreadyDeleted {
			tomb = append(tomb, domain.PropertyChange{
				Name: domain.PropDeleted,
				Old:  prior[domain.PropDeleted],
				New:  domain.StrPtr("true"),
			})
		}
		tomb = append(tomb, domain.PropertyChange{
			Name: domain.PropDeletedAt,
			Old:  nonEmpty(prior[domain.PropDeletedAt]),
			New:  domain.StrPtr(domain.FormatValue(now)),
		})
		tomb = append(tomb, domain.PropertyChange{
			Name: domain.PropDeletedBy,
			Old:  nonEmpty(prior[domain.PropDeletedBy]),
			New:  domain.StrPtr(actor.ID),
		})

		changes[i].Intent = domain.IntentModify
		changes[i].Changes = tomb
		changes[i].Row = domain.PropertySet{
			domain.PropDeleted:   true,
			domain.PropDeletedAt: now,
			domain.PropDeletedBy: actor.ID,
		}
	}
	return changes
}

// nonEmpty collapses absent-or-blank old values to nil so tombstone fields
// read as absent→set in audit payloads.
func nonEmpty(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	return v
}
