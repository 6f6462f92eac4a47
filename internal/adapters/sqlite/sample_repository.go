package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/atvirokodosprendimai/labstore/internal/adapters/sqlite/gormsqlite"
	"github.com/atvirokodosprendimai/labstore/internal/core/domain"
	"gorm.io/gorm"
)

type sampleModel struct {
	ID          string     `gorm:"column:id;primaryKey"`
	TenantID    string     `gorm:"column:tenant_id;not null"`
	LabID       string     `gorm:"column:lab_id;not null"`
	Code        string     `gorm:"column:code;not null"`
	Material    string     `gorm:"column:material"`
	Notes       string     `gorm:"column:notes"`
	CollectedAt *time.Time `gorm:"column:collected_at"`
	Attributes  string     `gorm:"column:attributes"`
	Deleted     bool       `gorm:"column:deleted;not null"`
	DeletedAt   *time.Time `gorm:"column:deleted_at"`
	DeletedBy   string     `gorm:"column:deleted_by"`
	CreatedAt   time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;not null"`
	RowVersion  string     `gorm:"column:row_version;not null"`
}

func (sampleModel) TableName() string {
	return "samples"
}

type SampleRepository struct {
	db *gormsqlite.DB
}

func NewSampleRepository(db *gormsqlite.DB) *SampleRepository {
	return &SampleRepository{db: db}
}

func (r *SampleRepository) Get(ctx context.Context, tenantID, id string, includeDeleted bool) (domain.Sample, error) {
	var model sampleModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		query := tx.Where("id = ? AND tenant_id = ?", id, tenantID)
		if !includeDeleted {
			query = query.Where("deleted = ?", false)
		}
		return query.First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Sample{}, domain.ErrNotFound
		}
		return domain.Sample{}, fmt.Errorf("get sample: %w", err)
	}
	return sampleToDomain(model), nil
}

func (r *SampleRepository) List(ctx context.Context, tenantID string, filter domain.SampleFilter) ([]domain.Sample, error) {
	var models []sampleModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		query := tx.Model(&sampleModel{}).Where("tenant_id = ?", tenantID)
		if !filter.IncludeDeleted {
			query = query.Where("deleted = ?", false)
		}
		if filter.LabID != "" {
			query = query.Where("lab_id = ?", filter.LabID)
		}
		if filter.AfterID != "" {
			query = query.Where("id > ?", filter.AfterID)
		}
		return query.Order("id ASC").Limit(filter.Limit).Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list samples: %w", err)
	}

	out := make([]domain.Sample, 0, len(models))
	for _, m := range models {
		out = append(out, sampleToDomain(m))
	}
	return out, nil
}

func sampleToDomain(m sampleModel) domain.Sample {
	s := domain.Sample{
		ID:          m.ID,
		TenantID:    m.TenantID,
		LabID:       m.LabID,
		Code:        m.Code,
		Material:    m.Material,
		Notes:       m.Notes,
		CollectedAt: m.CollectedAt,
		Tombstone: domain.Tombstone{
			Deleted:   m.Deleted,
			DeletedAt: m.DeletedAt,
			DeletedBy: m.DeletedBy,
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
		Version:   m.RowVersion,
	}
	if m.Attributes != "" {
		s.Attributes = json.RawMessage(m.Attributes)
	}
	return s
}
