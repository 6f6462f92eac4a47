package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/atvirokodosprendimai/labstore/internal/adapters/sqlite/gormsqlite"
	"github.com/atvirokodosprendimai/labstore/internal/core/domain"
	"gorm.io/gorm"
)

type auditRecordModel struct {
	Seq        int64     `gorm:"column:seq;primaryKey;autoIncrement"`
	ID         string    `gorm:"column:id;not null"`
	TenantID   string    `gorm:"column:tenant_id;not null"`
	EntityKind string    `gorm:"column:entity_kind;not null"`
	EntityID   string    `gorm:"column:entity_id;not null"`
	Action     string    `gorm:"column:action;not null"`
	Actor      string    `gorm:"column:actor;not null"`
	Origin     string    `gorm:"column:origin;not null"`
	BeforeJSON string    `gorm:"column:before_json"`
	AfterJSON  string    `gorm:"column:after_json;not null"`
	Truncated  bool      `gorm:"column:truncated;not null"`
	Archived   bool      `gorm:"column:archived;not null"`
	OccurredAt time.Time `gorm:"column:occurred_at;not null"`
}

func (auditRecordModel) TableName() string {
	return "audit_records"
}

// archivedAuditModel is structurally identical to the live table; archived
// copies live in their own partition so retention sweeps never slow down
// the hot write path.
type archivedAuditModel struct {
	auditRecordModel
}

func (archivedAuditModel) TableName() string {
	return "audit_records_archive"
}

type AuditTrailRepository struct {
	db *gormsqlite.DB
}

func NewAuditTrailRepository(db *gormsqlite.DB) *AuditTrailRepository {
	return &AuditTrailRepository{db: db}
}

func (r *AuditTrailRepository) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditRecord, error) {
	var models []auditRecordModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return applyAuditFilter(tx, &auditRecordModel{}, filter).Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list audit records: %w", err)
	}

	out := make([]domain.AuditRecord, 0, len(models))
	for _, m := range models {
		out = append(out, auditDomainFromModel(m))
	}
	return out, nil
}

func (r *AuditTrailRepository) ListArchived(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditRecord, error) {
	var models []archivedAuditModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return applyAuditFilter(tx, &archivedAuditModel{}, filter).Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list archived audit records: %w", err)
	}

	out := make([]domain.AuditRecord, 0, len(models))
	for _, m := range models {
		out = append(out, auditDomainFromModel(m.auditRecordModel))
	}
	return out, nil
}

// ArchiveBefore copies up to batch records older than cutoff into the
// archive partition with archived=1, then removes the live rows, all in one
// transaction. The records themselves are never mutated in place.
func (r *AuditTrailRepository) ArchiveBefore(ctx context.Context, cutoff time.Time, batch int) (int, error) {
	if batch <= 0 {
		batch = 500
	}
	moved := 0
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		var seqs []int64
		err := tx.Model(&auditRecordModel{}).
			Where("occurred_at < ?", cutoff.UTC()).
			Order("seq ASC").
			Limit(batch).
			Pluck("seq", &seqs).Error
		if err != nil {
			return fmt.Errorf("select archivable records: %w", err)
		}
		if len(seqs) == 0 {
			return nil
		}

		res := tx.Exec(`
			INSERT INTO audit_records_archive
				(seq, id, tenant_id, entity_kind, entity_id, action, actor, origin,
				 before_json, after_json, truncated, archived, occurred_at)
			SELECT seq, id, tenant_id, entity_kind, entity_id, action, actor, origin,
				 before_json, after_json, truncated, 1, occurred_at
			FROM audit_records WHERE seq IN ?`, seqs)
		if res.Error != nil {
			return fmt.Errorf("copy records to archive: %w", res.Error)
		}

		if err := tx.Exec("DELETE FROM audit_records WHERE seq IN ?", seqs).Error; err != nil {
			return fmt.Errorf("remove archived records: %w", err)
		}
		moved = len(seqs)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return moved, nil
}

func applyAuditFilter(tx *gormsqlite.Tx, model any, filter domain.AuditFilter) *gorm.DB {
	query := tx.Model(model).Where("tenant_id = ?", filter.TenantID)
	if filter.EntityKind != "" {
		query = query.Where("entity_kind = ?", string(filter.EntityKind))
	}
	if filter.EntityID != "" {
		query = query.Where("entity_id = ?", filter.EntityID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", string(filter.Action))
	}
	if filter.Actor != "" {
		query = query.Where("actor = ?", filter.Actor)
	}
	if filter.AfterSeq > 0 {
		query = query.Where("seq > ?", filter.AfterSeq)
	}
	return query.Order("seq ASC").Limit(filter.Limit)
}

func auditModelFromDomain(rec domain.AuditRecord) auditRecordModel {
	return auditRecordModel{
		ID:         rec.ID,
		TenantID:   rec.TenantID,
		EntityKind: string(rec.EntityKind),
		EntityID:   rec.EntityID,
		Action:     string(rec.Action),
		Actor:      rec.Actor,
		Origin:     rec.Origin,
		BeforeJSON: string(rec.Before),
		AfterJSON:  string(rec.After),
		Truncated:  rec.Truncated,
		Archived:   rec.Archived,
		OccurredAt: rec.OccurredAt,
	}
}

func auditDomainFromModel(m auditRecordModel) domain.AuditRecord {
	rec := domain.AuditRecord{
		Seq:        m.Seq,
		ID:         m.ID,
		TenantID:   m.TenantID,
		EntityKind: domain.EntityKind(m.EntityKind),
		EntityID:   m.EntityID,
		Action:     domain.AuditAction(m.Action),
		Actor:      m.Actor,
		Origin:     m.Origin,
		After:      json.RawMessage(m.AfterJSON),
		Truncated:  m.Truncated,
		Archived:   m.Archived,
		OccurredAt: m.OccurredAt,
	}
	if m.BeforeJSON != "" {
		rec.Before = json.RawMessage(m.BeforeJSON)
	}
	return rec
}
