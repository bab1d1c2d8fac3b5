package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/erazemk/mintmarket/internal/model"
)

// CreateAccount returns the account for address, creating it if needed.
// Uses INSERT OR IGNORE + re-SELECT so concurrent sign-ups of the same
// address converge on one row.
func CreateAccount(ctx context.Context, db *sql.DB, address string) (*model.Account, error) {
	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO accounts (id, address, created_at) VALUES (?, ?, ?)`,
		uuid.NewString(), address, now(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating account: %w", err)
	}

	a, err := GetAccountByAddress(ctx, db, address)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("account %s vanished after insert", address)
	}
	return a, nil
}

// GetAccountByAddress returns an account by its normalized wallet address.
func GetAccountByAddress(ctx context.Context, db *sql.DB, address string) (*model.Account, error) {
	a := &model.Account{}
	err := db.QueryRowContext(ctx,
		`SELECT id, address, created_at FROM accounts WHERE address = ?`, address,
	).Scan(&a.ID, &a.Address, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting account by address: %w", err)
	}
	return a, nil
}
