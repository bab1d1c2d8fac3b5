package market

import (
	"context"
	"log/slog"

	"github.com/erazemk/mintmarket/internal/apperr"
	"github.com/erazemk/mintmarket/internal/model"
	"github.com/erazemk/mintmarket/internal/store"
	"github.com/erazemk/mintmarket/internal/wallet"
)

// ResolveAccount returns the account for address, or nil if there is none.
// Malformed addresses fail with invalid_address.
func (s *Service) ResolveAccount(ctx context.Context, address string) (*model.Account, error) {
	normalized, err := wallet.Normalize(address)
	if err != nil {
		return nil, err
	}
	return store.GetAccountByAddress(ctx, s.db, normalized)
}

// SignUp returns the account for address, creating it on first use.
func (s *Service) SignUp(ctx context.Context, address string) (*model.Account, error) {
	normalized, err := wallet.Normalize(address)
	if err != nil {
		return nil, err
	}
	a, err := store.CreateAccount(ctx, s.db, normalized)
	if err != nil {
		return nil, err
	}
	slog.Info("account signed up", "account", a.ID, "address", a.Address)
	return a, nil
}

// associatedAccount resolves the acting account of a mutation.
func (s *Service) associatedAccount(ctx context.Context, address string) (*model.Account, error) {
	a, err := s.ResolveAccount(ctx, address)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apperr.Business(apperr.AddressNotAssociated)
	}
	return a, nil
}

// existingAccount resolves an account that must exist.
func (s *Service) existingAccount(ctx context.Context, address string) (*model.Account, error) {
	a, err := s.ResolveAccount(ctx, address)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apperr.NotFound("account", "address", address)
	}
	return a, nil
}
