package usecase

import (
	"encoding/json"
	"time"

	"github.com/atvirokodosprendimai/labstore/internal/core/domain"
	"github.com/google/uuid"
)

const (
	// Values longer than truncateLimit bytes are shortened to their first
	// truncateKeep bytes plus the marker, a 49-byte result. A value of
	// exactly truncateLimit bytes is stored untouched.
	truncateLimit  = 50
	truncateKeep   = 35
	truncateMarker = "...[truncated]"
)

// Truncate shortens oversized scalar values for audit storage. The returned
// bool reports whether the value was shortened.
func Truncate(v string) (string, bool) {
	if len(v) <= truncateLimit {
		return v, false
	}
	return v[:truncateKeep] + truncateMarker, true
}

// BuildAuditRecords produces one audit record per auditable entity change.
// It must run after TransformSoftDeletes so tombstone synthesis is visible
// in the payload. Hard removes (kinds without tombstone semantics) are not
// captured; kinds excluded from audit never produce a record.
func BuildAuditRecords(changes []domain.EntityChange, actor domain.Actor, now time.Time) []domain.AuditRecord {
	var records []domain.AuditRecord
	for _, ch := range changes {
		if !domain.CapabilitiesFor(ch.Kind).Auditable {
			continue
		}
		if ch.Intent == domain.IntentRemove {
			continue
		}
		if len(ch.Changes) == 0 {
			continue
		}

		action := domain.AuditActionUpdate
		if ch.Intent == domain.IntentInsert {
			action = domain.AuditActionCreate
		}

		before := make(map[string]string)
		after := make(map[string]string)
		truncated := false
		for _, pc := range ch.Changes {
			if pc.Old != nil {
				v, t := Truncate(*pc.Old)
				before[pc.Name] = v
				truncated = truncated || t
			}
			if pc.New != nil {
				v, t := Truncate(*pc.New)
				after[pc.Name] = v
				truncated = truncated || t
			}
		}

		rec := domain.AuditRecord{
			ID:         uuid.NewString(),
			TenantID:   ch.TenantID,
			EntityKind: ch.Kind,
			EntityID:   ch.ID,
			Action:     action,
			Actor:      actor.ID,
			Origin:     actor.Origin,
			After:      mustJSON(after),
			Truncated:  truncated,
			OccurredAt: now,
		}
		if action == domain.AuditActionUpdate && len(before) > 0 {
			rec.Before = mustJSON(before)
		}
		records = append(records, rec)
	}
	return records
}

func mustJSON(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}
