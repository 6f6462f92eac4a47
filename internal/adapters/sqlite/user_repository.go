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

type userModel struct {
	ID           string     `gorm:"column:id;primaryKey"`
	TenantID     string     `gorm:"column:tenant_id;not null"`
	Email        string     `gorm:"column:email;not null"`
	DisplayName  string     `gorm:"column:display_name"`
	PasswordHash string     `gorm:"column:password_hash"`
	Role         string     `gorm:"column:role"`
	Active       bool       `gorm:"column:active;not null"`
	Deleted      bool       `gorm:"column:deleted;not null"`
	DeletedAt    *time.Time `gorm:"column:deleted_at"`
	DeletedBy    string     `gorm:"column:deleted_by"`
	CreatedAt    time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;not null"`
	RowVersion   string     `gorm:"column:row_version;not null"`
}

func (userModel) TableName() string {
	return "users"
}

type UserRepository struct {
	db *gormsqlite.DB
}

func NewUserRepository(db *gormsqlite.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Get(ctx context.Context, tenantID, id string, includeDeleted bool) (domain.User, error) {
	var model userModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		query := tx.Where("id = ? AND tenant_id = ?", id, tenantID)
		if !includeDeleted {
			query = query.Where("deleted = ?", false)
		}
		return query.First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return userToDomain(model), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, tenantID, email string) (domain.User, error) {
	var model userModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("tenant_id = ? AND email = ? AND deleted = ?", tenantID, email, false).First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return userToDomain(model), nil
}

func (r *UserRepository) List(ctx context.Context, tenantID string, filter domain.ListFilter) ([]domain.User, error) {
	var models []userModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		query := tx.Model(&userModel{}).Where("tenant_id = ?", tenantID)
		if !filter.IncludeDeleted {
			query = query.Where("deleted = ?", false)
		}
		if filter.AfterID != "" {
			query = query.Where("id > ?", filter.AfterID)
		}
		return query.Order("id ASC").Limit(filter.Limit).Find(&models).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	out := make([]domain.User, 0, len(models))
	for _, m := range models {
		out = append(out, userToDomain(m))
	}
	return out, nil
}

func userToDomain(m userModel) domain.User {
	return domain.User{
		ID:           m.ID,
		TenantID:     m.TenantID,
		Email:        m.Email,
		DisplayName:  m.DisplayName,
		PasswordHash: m.PasswordHash,
		Role:         m.Role,
		Active:       m.Active,
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
