package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	santhosh "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/atvirokodosprendimai/labstore/internal/core/domain"
	"github.com/atvirokodosprendimai/labstore/internal/core/ports"
)

// SchemaService manages per-tenant attribute schemas and validates the
// free-form attributes payload carried by samples and test results.
type SchemaService struct {
	repo  ports.AttributeSchemaRepository
	cache sync.Map // key: "tenantID/kind" → *santhosh.Schema
}

func NewSchemaService(repo ports.AttributeSchemaRepository) *SchemaService {
	return &SchemaService{repo: repo}
}

func (s *SchemaService) Upsert(ctx context.Context, tenantID string, kind domain.EntityKind, schemaJSON json.RawMessage) (domain.AttributeSchema, error) {
	if err := domain.ValidateTenant(tenantID); err != nil {
		return domain.AttributeSchema{}, err
	}
	if !kind.Valid() {
		return domain.AttributeSchema{}, domain.ErrInvalidKind
	}
	if !json.Valid(schemaJSON) {
		return domain.AttributeSchema{}, fmt.Errorf("%w: schema must be valid json", domain.ErrInvalidArgument)
	}
	if err := compilable(schemaJSON); err != nil {
		return domain.AttributeSchema{}, fmt.Errorf("%w: invalid json schema: %v", domain.ErrInvalidArgument, err)
	}
	s.cache.Delete(tenantID + "/" + string(kind))
	return s.repo.Upsert(ctx, domain.AttributeSchema{
		TenantID:   tenantID,
		EntityKind: kind,
		Schema:     schemaJSON,
	})
}

func (s *SchemaService) Get(ctx context.Context, tenantID string, kind domain.EntityKind) (domain.AttributeSchema, error) {
	if err := domain.ValidateTenant(tenantID); err != nil {
		return domain.AttributeSchema{}, err
	}
	if !kind.Valid() {
		return domain.AttributeSchema{}, domain.ErrInvalidKind
	}
	return s.repo.Get(ctx, tenantID, kind)
}

func (s *SchemaService) Delete(ctx context.Context, tenantID string, kind domain.EntityKind) (bool, error) {
	if err := domain.ValidateTenant(tenantID); err != nil {
		return false, err
	}
	if !kind.Valid() {
		return false, domain.ErrInvalidKind
	}
	s.cache.Delete(tenantID + "/" + string(kind))
	return s.repo.Delete(ctx, tenantID, kind)
}

// Validate checks an attributes payload against the tenant's schema for the
// kind. An empty payload and an unconfigured kind both pass. Returns
// *domain.ErrSchemaViolation on failure.
func (s *SchemaService) Validate(ctx context.Context, tenantID string, kind domain.EntityKind, attributes json.RawMessage) error {
	if len(attributes) == 0 {
		return nil
	}
	cacheKey := tenantID + "/" + string(kind)

	if cached, ok := s.cache.Load(cacheKey); ok {
		return runValidation(cached.(*santhosh.Schema), attributes)
	}

	cs, err := s.repo.Get(ctx, tenantID, kind)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load schema: %w", err)
	}

	compiled, err := compileSchema(cs.Schema)
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	s.cache.Store(cacheKey, compiled)
	return runValidation(compiled, attributes)
}

func compileSchema(schemaJSON json.RawMessage) (*santhosh.Schema, error) {
	compiler := santhosh.NewCompiler()
	compiler.Draft = santhosh.Draft7
	if err := compiler.AddResource("schema.json", bytes.NewReader(schemaJSON)); err != nil {
		return nil, err
	}
	return compiler.Compile("schema.json")
}

func runValidation(sch *santhosh.Schema, data json.RawMessage) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal attributes: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		var ve *santhosh.ValidationError
		if errors.As(err, &ve) {
			return &domain.ErrSchemaViolation{Errors: collectValidationErrors(ve)}
		}
		return &domain.ErrSchemaViolation{Errors: []string{err.Error()}}
	}
	return nil
}

func collectValidationErrors(ve *santhosh.ValidationError) []string {
	var msgs []string
	for _, cause := range ve.Causes {
		msgs = append(msgs, collectValidationErrors(cause)...)
	}
	if len(ve.Causes) == 0 {
		msgs = append(msgs, ve.Error())
	}
	return msgs
}

func compilable(schemaJSON json.RawMessage) error {
	_, err := compileSchema(schemaJSON)
	return err
}
