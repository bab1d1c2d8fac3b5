package model

import "time"

// Account is a wallet-identified actor.
type Account struct {
	ID        string    `json:"id"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

// Ref returns the projection of the account embedded in items.
func (a *Account) Ref() *AccountRef {
	return &AccountRef{ID: a.ID, Address: a.Address}
}

// AccountRef is the joined author/owner projection of an item.
type AccountRef struct {
	ID      string `json:"id"`
	Address string `json:"address,omitempty"`
}
