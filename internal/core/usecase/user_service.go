package usecase

import (
	"context"
	"fmt"

	"github.com/atvirokodosprendimai/labstore/internal/core/domain"
	"github.com/atvirokodosprendimai/labstore/internal/core/ports"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserService manages accounts through the same integrity pipeline as every
// other kind. The user kind is not auditable, so password hashes never end
// up in audit payloads; soft deletion and version checking still apply.
type UserService struct {
	repo ports.UserRepository
	uow  *UnitOfWork
}

func NewUserService(repo ports.UserRepository, uow *UnitOfWork) *UserService {
	return &UserService{repo: repo, uow: uow}
}

func (s *UserService) Create(ctx context.Context, actor domain.Actor, user domain.User, password string) (domain.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if password == "" {
		return domain.User{}, fmt.Errorf("%w: password is required", domain.ErrInvalidArgument)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}
	user.PasswordHash = string(hash)
	if err := user.Validate(); err != nil {
		return domain.User{}, err
	}

	staged := domain.StagedChange{
		Kind:     domain.KindUser,
		ID:       user.ID,
		TenantID: user.TenantID,
		Intent:   domain.IntentInsert,
		Next:     user.Properties(),
	}
	if err := s.uow.Execute(ctx, actor, []domain.StagedChange{staged}); err != nil {
		return domain.User{}, err
	}
	return s.repo.Get(ctx, user.TenantID, user.ID, false)
}

// Update changes profile fields. An empty password keeps the current hash.
func (s *UserService) Update(ctx context.Context, actor domain.Actor, user domain.User, password string) (domain.User, error) {
	current, err := s.repo.Get(ctx, user.TenantID, user.ID, false)
	if err != nil {
		return domain.User{}, err
	}
	user.Tombstone = current.Tombstone
	user.PasswordHash = current.PasswordHash
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return domain.User{}, err
		}
		user.PasswordHash = string(hash)
	}
	if err := user.Validate(); err != nil {
		return domain.User{}, err
	}

	staged := domain.StagedChange{
		Kind:     domain.KindUser,
		ID:       user.ID,
		TenantID: user.TenantID,
		Intent:   domain.IntentModify,
		Base:     current.Properties(),
		Next:     user.Properties(),
		Version:  user.Version,
	}
	if err := s.uow.Execute(ctx, actor, []domain.StagedChange{staged}); err != nil {
		return domain.User{}, err
	}
	return s.repo.Get(ctx, user.TenantID, user.ID, false)
}

func (s *UserService) Delete(ctx context.Context, actor domain.Actor, tenantID, id, version string) error {
	if id == domain.SystemActorID {
		return fmt.Errorf("%w: the system actor cannot be deleted", domain.ErrInvalidArgument)
	}
	current, err := s.repo.Get(ctx, tenantID, id, true)
	if err != nil {
		return err
	}
	if version == "" {
		version = current.Version
	}

	staged := domain.StagedChange{
		Kind:     domain.KindUser,
		ID:       id,
		TenantID: tenantID,
		Intent:   domain.IntentRemove,
		Base:     current.Properties(),
		Version:  version,
	}
	return s.uow.Execute(ctx, actor, []domain.StagedChange{staged})
}

func (s *UserService) Get(ctx context.Context, tenantID, id string, includeDeleted bool) (domain.User, error) {
	if err := domain.ValidateTenant(tenantID); err != nil {
		return domain.User{}, err
	}
	if err := domain.ValidateKey(id); err != nil {
		return domain.User{}, err
	}
	return s.repo.Get(ctx, tenantID, id, includeDeleted)
}

func (s *UserService) List(ctx context.Context, tenantID string, filter domain.ListFilter) ([]domain.User, error) {
	if err := domain.ValidateTenant(tenantID); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, tenantID, filter.Normalize())
}
