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
	"gorm.io/gorm/clause"
)

type attributeSchemaModel struct {
	TenantID   string    `gorm:"column:tenant_id;primaryKey"`
	EntityKind string    `gorm:"column:entity_kind;primaryKey"`
	SchemaJSON string    `gorm:"column:schema_json;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;not null"`
	UpdatedAt  time.Time `gorm:"column:updated_at;not null"`
}

func (attributeSchemaModel) TableName() string {
	return "attribute_schemas"
}

type SchemaRepository struct {
	db *gormsqlite.DB
}

func NewSchemaRepository(db *gormsqlite.DB) *SchemaRepository {
	return &SchemaRepository{db: db}
}

func (r *SchemaRepository) Upsert(ctx context.Context, schema domain.AttributeSchema) (domain.AttributeSchema, error) {
	now := time.Now().UTC()
	model := attributeSchemaModel{
		TenantID:   schema.TenantID,
		EntityKind: string(schema.EntityKind),
		SchemaJSON: string(schema.Schema),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	var out domain.AttributeSchema
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "entity_kind"}},
			DoUpdates: clause.AssignmentColumns([]string{"schema_json", "updated_at"}),
		}).Create(&model).Error
		if err != nil {
			return fmt.Errorf("upsert attribute schema: %w", err)
		}

		var saved attributeSchemaModel
		if err := tx.Where("tenant_id = ? AND entity_kind = ?", schema.TenantID, string(schema.EntityKind)).First(&saved).Error; err != nil {
			return fmt.Errorf("load upserted attribute schema: %w", err)
		}
		out = schemaToDomain(saved)
		return nil
	})
	if err != nil {
		return domain.AttributeSchema{}, err
	}
	return out, nil
}

func (r *SchemaRepository) Get(ctx context.Context, tenantID string, kind domain.EntityKind) (domain.AttributeSchema, error) {
	var model attributeSchemaModel
	err := r.db.ReadTX(ctx, func(tx *gormsqlite.Tx) error {
		return tx.Where("tenant_id = ? AND entity_kind = ?", tenantID, string(kind)).First(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.AttributeSchema{}, domain.ErrNotFound
		}
		return domain.AttributeSchema{}, fmt.Errorf("get attribute schema: %w", err)
	}
	return schemaToDomain(model), nil
}

func (r *SchemaRepository) Delete(ctx context.Context, tenantID string, kind domain.EntityKind) (bool, error) {
	deleted := false
	err := r.db.WriteTX(ctx, func(tx *gormsqlite.Tx) error {
		res := tx.Where("tenant_id = ? AND entity_kind = ?", tenantID, string(kind)).Delete(&attributeSchemaModel{})
		if res.Error != nil {
			return fmt.Errorf("delete attribute schema: %w", res.Error)
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func schemaToDomain(m attributeSchemaModel) domain.AttributeSchema {
	return domain.AttributeSchema{
		TenantID:   m.TenantID,
		EntityKind: domain.EntityKind(m.EntityKind),
		Schema:     json.RawMessage(m.SchemaJSON),
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
