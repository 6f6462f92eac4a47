package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/atvirokodosprendimai/labstore/internal/core/domain"
)

type stubAPIKeyRepo struct {
	findFn func(ctx context.Context, tokenHash string) (domain.APIKey, error)
}

func (s *stubAPIKeyRepo) FindByTokenHash(ctx context.Context, tokenHash string) (domain.APIKey, error) {
	if s.findFn != nil {
		return s.findFn(ctx, tokenHash)
	}
	return domain.APIKey{}, domain.ErrNotFound
}

func (s *stubAPIKeyRepo) Upsert(context.Context, domain.APIKey) error {
	return nil
}

func TestAuthServiceAuthenticate(t *testing.T) {
	key := domain.APIKey{
		TokenHash: HashToken("secret-token"),
		TenantID:  "acme",
		UserID:    "user-1",
		Active:    true,
	}
	svc := NewAuthService(&stubAPIKeyRepo{
		findFn: func(_ context.Context, tokenHash string) (domain.APIKey, error) {
			if tokenHash == key.TokenHash {
				return key, nil
			}
			return domain.APIKey{}, domain.ErrNotFound
		},
	})

	got, err := svc.Authenticate(context.Background(), "secret-token")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.TenantID != "acme" || got.UserID != "user-1" {
		t.Fatalf("unexpected key %+v", got)
	}

	if _, err := svc.Authenticate(context.Background(), "wrong"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized for unknown token, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), ""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized for empty token, got %v", err)
	}
}

func TestAuthServiceRejectsInactiveKey(t *testing.T) {
	svc := NewAuthService(&stubAPIKeyRepo{
		findFn: func(context.Context, string) (domain.APIKey, error) {
			return domain.APIKey{TokenHash: "h", TenantID: "acme", Active: false}, nil
		},
	})

	if _, err := svc.Authenticate(context.Background(), "anything"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized for inactive key, got %v", err)
	}
}
