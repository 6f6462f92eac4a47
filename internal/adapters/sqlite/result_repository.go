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

type resultModel struct {
	ID          string     `gorm:"column:id;primaryKey"`
	TenantID    string     `gorm:"column:tenant_id;not null"`
	SampleID    string     `gorm:"column:sample_id;not null"`
	ParameterID string     `gorm:"column:parameter_id;not null"`
	Value       float64    `gorm:"column:value;not null"`
	Unit        string     `gorm:"column:unit"`
	Remarks     string     `gorm:"column:remarks"`
	MeasuredAt  time.Time  `gorm:"column:measured_at;not null"`
	Attributes  string     `gorm:"column:attributes"`
	Deleted     bool       `gorm:"column:deleted;not null"`
	DeletedAt   *time.Time `gorm:"column:deleted_at"`
	DeletedBy   string     `gorm:"column:deleted_by"`
	CreatedAt   time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;not null"`
	RowVersion  string     `gorm:"column:row_version;not null"`
}

func (resultModel) TableName() string {
	return "test_results"
}

type ResultRepository struct {
	db *gormsqlite.DB
}

func NewResultRepository(db *gormsqlite.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

func (r *ResultRepository) Get(ctx context.Context, tenantID, id string, includeDeleted bool) (domain.TestResult, error) {
	var model resultModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		query := tx.Where("id = ? AND tenant_id = ?", id, tenantID)
		if !includeDeleted {
			query = query.Where("deleted = ?", false)
		}
		return query.First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.TestResult{}, domain.ErrNotFound
		}
		return domain.TestResult{}, fmt.Errorf("get result: %w", err)
	}
	return resultToDomain(model), nil
}

func (r *ResultRepository) List(ctx context.Context, tenantID string, filter domain.ResultFilter) ([]domain.TestResult, error) {
	var models []resultModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		query := tx.Model(&resultModel{}).Where("tenant_id = ?", tenantID)
		if !filter.IncludeDeleted {
			query = query.Where("deleted = ?", false)
		}
		if filter.SampleID != "" {
			query = query.Where("sample_id = ?", filter.SampleID)
		}
		if filter.ParameterID != "" {
			query = query.Where("parameter_id = ?", filter.ParameterID)
		}
		if filter.AfterID != "" {
			query = query.Where("id > ?", filter.AfterID)
		}
		return query.Order("id ASC").Limit(filter.Limit).Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}

	out := make([]domain.TestResult, 0, len(models))
	for _, m := range models {
		out = append(out, resultToDomain(m))
	}
	return out, nil
}

func resultToDomain(m resultModel) domain.TestResult {
	r := domain.TestResult{
		ID:          m.ID,
		TenantID:    m.TenantID,
		SampleID:    m.SampleID,
		ParameterID: m.ParameterID,
		Value:       m.Value,
		Unit:        m.Unit,
		Remarks:     m.Remarks,
		MeasuredAt:  m.MeasuredAt,
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
		r.Attributes = json.RawMessage(m.Attributes)
	}
	return r
}
