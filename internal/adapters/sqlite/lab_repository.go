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

type labModel struct {
	ID           string     `gorm:"column:id;primaryKey"`
	TenantID     string     `gorm:"column:tenant_id;not null"`
	Name         string     `gorm:"column:name;not null"`
	Description  string     `gorm:"column:description"`
	Address      string     `gorm:"column:address"`
	ContactEmail string     `gorm:"column:contact_email"`
	Deleted      bool       `gorm:"column:deleted;not null"`
	DeletedAt    *time.Time `gorm:"column:deleted_at"`
	DeletedBy    string     `gorm:"column:deleted_by"`
	CreatedAt    time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;not null"`
	RowVersion   string     `gorm:"column:row_version;not null"`
}

func (labModel) TableName() string {
	return "labs"
}

type LabRepository struct {
	db *gormsqlite.DB
}

func NewLabRepository(db *gormsqlite.DB) *LabRepository {
	return &LabRepository{db: db}
}

func (r *LabRepository) Get(ctx context.Context, tenantID, id string, includeDeleted bool) (domain.Lab, error) {
	var model labModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		query := tx.Where("id = ? AND tenant_id = ?", id, tenantID)
		if !includeDeleted {
			query = query.Where("deleted = ?", false)
		}
		return query.First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Lab{}, domain.ErrNotFound
		}
		return domain.Lab{}, fmt.Errorf("get lab: %w", err)
	}
	return labToDomain(model), nil
}

func (r *LabRepository) List(ctx context.Context, tenantID string, filter domain.ListFilter) ([]domain.Lab, error) {
	var models []labModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		query := tx.Model(&labModel{}).Where("tenant_id = ?", tenantID)
		if !filter.IncludeDeleted {
			query = query.Where("deleted = ?", false)
		}
		if filter.AfterID != "" {
			query = query.Where("id > ?", filter.AfterID)
		}
		return query.Order("id ASC").Limit(filter.Limit).Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list labs: %w", err)
	}

	out := make([]domain.Lab, 0, len(models))
	for _, m := range models {
		out = append(out, labToDomain(m))
	}
	return out, nil
}

func labToDomain(m labModel) domain.Lab {
	return domain.Lab{
		ID:           m.ID,
		TenantID:     m.TenantID,
		Name:         m.Name,
		Description:  m.Description,
		Address:      m.Address,
		ContactEmail: m.ContactEmail,
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
