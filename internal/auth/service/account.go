package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/wardenhq/warden/internal/auth/domain"
	"github.com/wardenhq/warden/internal/auth/store"
)

// AccountService serves read-only account queries for the protected
// endpoints. Sanitization of secret fields happens at the HTTP layer.
type AccountService struct {
	Store store.Store
}

// GetByID fetches an account by identity within a tenant.
func (s *AccountService) GetByID(
	ctx context.Context,
	tenant domain.Tenant,
	id string,
) (domain.Account, error) {
	account, err := s.Store.Accounts().GetByID(ctx, tenant, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrAccountNotFound
		}
		return domain.Account{}, fmt.Errorf("load account: %w", err)
	}
	return account, nil
}

// ListUsers returns every account in the user tenant. Only the admin
// surface exposes this.
func (s *AccountService) ListUsers(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.Store.Accounts().ListByTenant(ctx, domain.TenantUser)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return accounts, nil
}
