package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Intent is the lifecycle intent of a staged entity.
type Intent string

const (
	IntentInsert Intent = "insert"
	IntentModify Intent = "modify"
	IntentRemove Intent = "remove"
)

// PropertySet is the flat scalar view of an entity used by the pipeline.
// Keys are column names; values are scalars (string, bool, integers, floats,
// time.Time, json.RawMessage or nil).
type PropertySet map[string]any

// FormatValue renders a scalar property value in its canonical string form.
// Times are normalized to UTC RFC3339Nano so that equal instants always
// compare equal.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format(time.RFC3339Nano)
	case *time.Time:
		if t == nil {
			return ""
		}
		return FormatValue(*t)
	case json.RawMessage:
		return string(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// IsDefaultValue reports whether v is the zero value for its scalar type.
// Insert diffs omit default-valued properties.
func IsDefaultValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case int:
		return t == 0
	case int64:
		return t == 0
	case float64:
		return t == 0
	case time.Time:
		return t.IsZero()
	case *time.Time:
		return t == nil || t.IsZero()
	case json.RawMessage:
		return len(t) == 0
	default:
		return false
	}
}

// PropertyChange is one property diff. Old is nil for inserts and for
// properties that had no prior value; New is nil only on remove intents,
// where the last-known property set is exposed through the Old side.
type PropertyChange struct {
	Name string
	Old  *string
	New  *string
}

// EntityChange is one entity's contribution to a unit of work after diff
// extraction. Row carries the typed desired property values: the full row
// for inserts, at least every changed property for modifies. Version is the
// version token read at load time for version-checked modifies and removes.
type EntityChange struct {
	Kind     EntityKind
	ID       string
	TenantID string
	Intent   Intent
	Version  string
	Changes  []PropertyChange
	Row      PropertySet
}

// StagedChange is what callers hand to the unit of work: the desired state
// of one entity plus the baseline it was computed from.
type StagedChange struct {
	Kind     EntityKind
	ID       string
	TenantID string
	// Intent requested by the caller. The soft-delete stage may rewrite
	// IntentRemove to IntentModify before commit.
	Intent Intent
	// Base is the property set as loaded from the store. Nil for inserts.
	Base PropertySet
	// Next is the desired property set. Nil for removes.
	Next PropertySet
	// Version is the version token read at load time. Empty for inserts.
	Version string
}

// StrPtr returns a pointer to s. Convenience for building property changes.
func StrPtr(s string) *string {
	return &s
}
