package usecase

import (
	"sort"

	"github.com/atvirokodosprendimai/labstore/internal/core/domain"
)

// ExtractChanges turns staged entity states into per-property diffs.
//
// Inserts keep every non-default property. Modifies keep only properties
// whose value differs from the loaded baseline; a modify with no differing
// property is dropped from the set entirely, so it produces neither commit
// work nor an audit record. Removes expose the full last-known property set
// on the Old side for the soft-delete and audit stages.
func ExtractChanges(staged []domain.StagedChange) []domain.EntityChange {
	out := make([]domain.EntityChange, 0, len(staged))
	for _, st := range staged {
		switch st.Intent {
		case domain.IntentInsert:
			out = append(out, domain.EntityChange{
				Kind:     st.Kind,
				ID:       st.ID,
				TenantID: st.TenantID,
				Intent:   domain.IntentInsert,
				Changes:  insertChanges(st.Next),
				Row:      st.Next,
			})
		case domain.IntentModify:
			changes := diffChanges(st.Base, st.Next)
			if len(changes) == 0 {
				continue
			}
			out = append(out, domain.EntityChange{
				Kind:     st.Kind,
				ID:       st.ID,
				TenantID: st.TenantID,
				Intent:   domain.IntentModify,
				Version:  st.Version,
				Changes:  changes,
				Row:      st.Next,
			})
		case domain.IntentRemove:
			out = append(out, domain.EntityChange{
				Kind:     st.Kind,
				ID:       st.ID,
				TenantID: st.TenantID,
				Intent:   domain.IntentRemove,
				Version:  st.Version,
				Changes:  removeChanges(st.Base),
			})
		}
	}
	return out
}

func insertChanges(next domain.PropertySet) []domain.PropertyChange {
	changes := make([]domain.PropertyChange, 0, len(next))
	for name, value := range next {
		if domain.IsDefaultValue(value) {
			continue
		}
		changes = append(changes, domain.PropertyChange{
			Name: name,
			New:  domain.StrPtr(domain.FormatValue(value)),
		})
	}
	sortChanges(changes)
	return changes
}

func diffChanges(base, next domain.PropertySet) []domain.PropertyChange {
	changes := make([]domain.PropertyChange, 0, len(next))
	for name, value := range next {
		oldValue, loaded := base[name]
		newFormatted := domain.FormatValue(value)
		if loaded && domain.FormatValue(oldValue) == newFormatted {
			continue
		}
		change := domain.PropertyChange{Name: name, New: domain.StrPtr(newFormatted)}
		if loaded && oldValue != nil {
			change.Old = domain.StrPtr(domain.FormatValue(oldValue))
		}
		changes = append(changes, change)
	}
	sortChanges(changes)
	return changes
}

func removeChanges(base domain.PropertySet) []domain.PropertyChange {
	changes := make([]domain.PropertyChange, 0, len(base))
	for name, value := range base {
		change := domain.PropertyChange{Name: name}
		if value != nil {
			change.Old = domain.StrPtr(domain.FormatValue(value))
		}
		changes = append(changes, change)
	}
	sortChanges(changes)
	return changes
}

func sortChanges(changes []domain.PropertyChange) {
	sort.Slice(changes, func(i, j int) bool { return changes[i].Name < changes[j].Name })
}
