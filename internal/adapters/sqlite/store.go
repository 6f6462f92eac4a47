package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/atvirokodosprendimai/labstore/internal/adapters/sqlite/gormsqlite"
	"github.com/atvirokodosprendimai/labstore/internal/core/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// kindTables binds entity kinds to their tables. The commit path is fully
// registry-driven; it never switches on concrete entity types.
var kindTables = map[domain.EntityKind]string{
	domain.KindLab:        "labs",
	domain.KindSample:     "samples",
	domain.KindParameter:  "parameters",
	domain.KindTestResult: "test_results",
	domain.KindUser:       "users",
}

// Store applies units of work. One Commit call is one sqlite transaction:
// entity writes, tombstone rewrites and audit inserts all land together or
// not at all.
type Store struct {
	db *gormsqlite.DB
}

func NewStore(db *gormsqlite.DB) *Store {
	return &Store{db: db}
}

// Commit applies every entity change and audit record atomically.
//
// Version-checked modifies and removes are guarded with a compare-and-swap
// on the row_version column: the UPDATE carries the token read at load time
// in its WHERE clause, so the comparison happens at commit time under the
// write transaction, not at staging time. Zero rows affected means another
// writer got there first; the whole batch is rolled back and the caller
// receives a *domain.ConflictError with both value sets.
func (s *Store) Commit(ctx context.Context, changes []domain.EntityChange, records []domain.AuditRecord) error {
	return s.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		now := time.Now().UTC()
		for _, ch := range changes {
			table, ok := kindTables[ch.Kind]
			if !ok {
				return domain.ErrInvalidKind
			}
			caps := domain.CapabilitiesFor(ch.Kind)

			switch ch.Intent {
			case domain.IntentInsert:
				row := columnValues(ch.Row)
				row["id"] = ch.ID
				row["created_at"] = now
				row["updated_at"] = now
				row["row_version"] = uuid.NewString()
				if err := tx.Table(table).Create(row).Error; err != nil {
					return fmt.Errorf("insert %s %s: %w", ch.Kind, ch.ID, err)
				}

			case domain.IntentModify:
				updates := make(map[string]any, len(ch.Changes)+2)
				for _, pc := range ch.Changes {
					updates[pc.Name] = columnValue(ch.Row[pc.Name])
				}
				updates["updated_at"] = now
				updates["row_version"] = uuid.NewString()

				if caps.VersionChecked {
					if ch.Version == "" {
						return &domain.CapabilityError{Kind: ch.Kind, ID: ch.ID, Reason: "commit without version token"}
					}
					res := tx.Table(table).Where("id = ? AND row_version = ?", ch.ID, ch.Version).Updates(updates)
					if res.Error != nil {
						return fmt.Errorf("update %s %s: %w", ch.Kind, ch.ID, res.Error)
					}
					if res.RowsAffected == 0 {
						return versionConflict(tx, table, ch)
					}
				} else {
					res := tx.Table(table).Where("id = ?", ch.ID).Updates(updates)
					if res.Error != nil {
						return fmt.Errorf("update %s %s: %w", ch.Kind, ch.ID, res.Error)
					}
					if res.RowsAffected == 0 {
						return domain.ErrNotFound
					}
				}

			case domain.IntentRemove:
				// Only kinds without tombstone semantics still carry a
				// remove intent at commit time.
				if caps.VersionChecked && ch.Version != "" {
					res := tx.Exec("DELETE FROM "+table+" WHERE id = ? AND row_version = ?", ch.ID, ch.Version)
					if res.Error != nil {
						return fmt.Errorf("delete %s %s: %w", ch.Kind, ch.ID, res.Error)
					}
					if res.RowsAffected == 0 {
						return versionConflict(tx, table, ch)
					}
				} else {
					if err := tx.Exec("DELETE FROM "+table+" WHERE id = ?", ch.ID).Error; err != nil {
						return fmt.Errorf("delete %s %s: %w", ch.Kind, ch.ID, err)
					}
				}
			}
		}

		for _, rec := range records {
			model := auditModelFromDomain(rec)
			if err := tx.Create(&model).Error; err != nil {
				return fmt.Errorf("insert audit record: %w", err)
			}
		}
		return nil
	})
}

// versionConflict reloads the row under the same transaction and builds the
// typed conflict carrying attempted and current values, keyed by the
// properties the caller tried to write.
func versionConflict(tx *gormsqlite.Tx, table string, ch domain.EntityChange) error {
	attempted := make(map[string]string, len(ch.Changes))
	for _, pc := range ch.Changes {
		if pc.New != nil {
			attempted[pc.Name] = *pc.New
		}
	}

	var current map[string]any
	err := tx.Table(table).Where("id = ?", ch.ID).Take(&current).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &domain.ConflictError{Kind: ch.Kind, ID: ch.ID, Attempted: attempted}
	}
	if err != nil {
		return fmt.Errorf("load conflicting %s %s: %w", ch.Kind, ch.ID, err)
	}

	held := make(map[string]string, len(attempted))
	for name := range attempted {
		if v, ok := current[name]; ok {
			held[name] = domain.FormatValue(v)
		}
	}
	return &domain.ConflictError{Kind: ch.Kind, ID: ch.ID, Attempted: attempted, Current: held}
}

func columnValues(row domain.PropertySet) map[string]any {
	out := make(map[string]any, len(row))
	for name, v := range row {
		out[name] = columnValue(v)
	}
	return out
}

// columnValue flattens pipeline property values into driver-friendly ones.
func columnValue(v any) any {
	switch t := v.(type) {
	case *time.Time:
		if t == nil {
			return nil
		}
		return t.UTC()
	case time.Time:
		return t.UTC()
	case json.RawMessage:
		if len(t) == 0 {
			return ""
		}
		return string(t)
	default:
		return v
	}
}
