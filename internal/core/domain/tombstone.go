package domain

import "time"

// Property names shared by every soft-deletable kind. The soft-delete stage
// synthesizes changes against these names and the store maps them straight
// to columns.
const (
	PropDeleted   = "deleted"
	PropDeletedAt = "deleted_at"
	PropDeletedBy = "deleted_by"
)

// Tombstone holds the soft-delete facet embedded by deletable entities.
// Once Deleted is true the entity disappears from default read paths; only
// an explicit include-deleted override surfaces it again.
type Tombstone struct {
	Deleted   bool
	DeletedAt *time.Time
	DeletedBy string
}

func (t Tombstone) tombstoneProperties(ps PropertySet) {
	ps[PropDeleted] = t.Deleted
	ps[PropDeletedAt] = t.DeletedAt
	ps[PropDeletedBy] = t.DeletedBy
}
