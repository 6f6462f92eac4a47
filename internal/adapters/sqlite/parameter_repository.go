package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atvirokodosprendimai/labstore/internal/adapters/sqlite/gormsqlite"
	"github.com/atvirokodosprendimai/labstore/internal/core/domain"
	"gorm.io/gorm"
)

type parameterModel struct {
	ID         string     `gorm:"column:id;primaryKey"`
	TenantID   string     `gorm:"column:tenant_id;not null"`
	Name       string     `gorm:"column:name;not null"`
	Unit       string     `gorm:"column:unit"`
	Method     string     `gorm:"column:method"`
	MinValue   float64    `gorm:"column:min_value"`
	MaxValue   float64    `gorm:"column:max_value"`
	Deleted    bool       `gorm:"column:deleted;not null"`
	DeletedAt  *time.Time `gorm:"column:deleted_at"`
	DeletedBy  string     `gorm:"column:deleted_by"`
	CreatedAt  time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;not null"`
	RowVersion string     `gorm:"column:row_version;not null"`
}

func (parameterModel) TableName() string {
	return "parameters"
}

type ParameterRepository struct {
	db *gormsqlite.DB
}

func NewParameterRepository(db *gormsqlite.DB) *ParameterRepository {
	return &ParameterRepository{db: db}
}

func (r *ParameterRepository) Get(ctx context.Context, tenantID, id string, includeDeleted bool) (domain.Parameter, error) {
	var model parameterModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		query := tx.Where("id = ? AND tenant_id = ?", id, tenantID)
		if !includeDeleted {
			query = query.Where("deleted = ?", false)
		}
		return query.First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Parameter{}, domain.ErrNotFound
		}
		return domain.Parameter{}, fmt.Errorf("get parameter: %w", err)
	}
	return parameterToDomain(model), nil
}

func (r *ParameterRepository) List(ctx context.Context, tenantID string, filter domain.ListFilter) ([]domain.Parameter, error) {
	var models []parameterModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		query := tx.Model(&parameterModel{}).Where("tenant_id = ?", tenantID)
		if !filter.IncludeDeleted {
			query = query.Where("deleted = ?", false)
		}
		if filter.AfterID != "" {
			query = query.Where("id > ?", filter.AfterID)
		}
		return query.Order("id ASC").Limit(filter.Limit).Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list parameters: %w", err)
	}

	out := make([]domain.Parameter, 0, len(models))
	for _, m := range models {
		out = append(out, parameterToDomain(m))
	}
	return out, nil
}

func parameterToDomain(m parameterModel) domain.Parameter {
	return domain.Parameter{
		ID:       m.ID,
		TenantID: m.TenantID,
		Name:     m.Name,
		Unit:     m.Unit,
		Method:   m.Method,
		MinValue: m.MinValue,
		MaxValue: m.MaxValue,
		Tombstone: domain.Tombstone{
			Deleted:   m.Deleted,
			DeletedAt: m.DeletedAt,
			DeletedBy: m.DeletedBy,
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
		Version:   m.RowVersion,
	}
}
