package usecase

import (
	"context"

	"github.com/atvirokodosprendimai/labstore/internal/core/domain"
	"github.com/atvirokodosprendimai/labstore/internal/core/ports"
)

// AuditService exposes read access to the audit trail. Writing audit
// records is exclusively the pipeline's job; this service never mutates
// them.
type AuditService struct {
	repo ports.AuditTrailRepository
}

func NewAuditService(repo ports.AuditTrailRepository) *AuditService {
	return &AuditService{repo: repo}
}

func (s *AuditService) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditRecord, error) {
	filter, err := normalizeAuditFilter(filter)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, filter)
}

// ListArchived reads the cold partition populated by the archiver.
func (s *AuditService) ListArchived(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditRecord, error) {
	filter, err := normalizeAuditFilter(filter)
	if err != nil {
		return nil, err
	}
	return s.repo.ListArchived(ctx, filter)
}

func normalizeAuditFilter(filter domain.AuditFilter) (domain.AuditFilter, error) {
	if err := domain.ValidateTenant(filter.TenantID); err != nil {
		return domain.AuditFilter{}, err
	}
	if filter.EntityKind != "" && !filter.EntityKind.Valid() {
		return domain.AuditFilter{}, domain.ErrInvalidKind
	}
	if filter.EntityID != "" {
		if err := domain.ValidateKey(filter.EntityID); err != nil {
			return domain.AuditFilter{}, err
		}
	}
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}
	return filter, nil
}
