package model

import "time"

// TransactionType classifies a history entry.
type TransactionType string

// Transaction types.
const (
	TransactionCreated   TransactionType = "created"
	TransactionActivated TransactionType = "activated"
	TransactionListed    TransactionType = "listed"
	TransactionDelisted  TransactionType = "delisted"
	TransactionSold      TransactionType = "sold"
)

// History is an append-only ledger entry for a state change of an item.
type History struct {
	ID              int64           `json:"id"`
	ItemID          string          `json:"item_id"`
	AccountID       string          `json:"account_id,omitempty"`
	TransactionType TransactionType `json:"transaction_type"`
	ListID          *int64          `json:"list_id,omitempty"`
	Price           *string         `json:"price,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`

	// Joined fields (not always populated).
	AccountAddress string `json:"account_address,omitempty"`
}
