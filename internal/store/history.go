package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/mintmarket/internal/model"
)

// insertHistory appends h and fills in its ID and timestamp.
func insertHistory(ctx context.Context, q querier, h *model.History) error {
	h.CreatedAt = now()
	result, err := q.ExecContext(ctx,
		`INSERT INTO history (item_id, account_id, transaction_type, list_id, price, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		h.ItemID, nullString(h.AccountID), string(h.TransactionType), nullInt64Ptr(h.ListID), nullStringPtr(h.Price), h.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("recording %s history: %w", h.TransactionType, err)
	}
	h.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting history id: %w", err)
	}
	return nil
}

// ListItemHistory returns the history of an item in commit order.
func ListItemHistory(ctx context.Context, db *sql.DB, itemID string) ([]model.History, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT h.id, h.item_id, h.account_id, a.address, h.transaction_type, h.list_id, h.price, h.created_at
		 FROM history h
		 LEFT JOIN accounts a ON a.id = h.account_id
		 WHERE h.item_id = ?
		 ORDER BY h.id`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("getting item history: %w", err)
	}
	defer rows.Close()

	var entries []model.History
	for rows.Next() {
		var h model.History
		var accountID, address, price sql.NullString
		var listID sql.NullInt64
		if err := rows.Scan(&h.ID, &h.ItemID, &accountID, &address, &h.TransactionType, &listID, &price, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		h.AccountID = accountID.String
		h.AccountAddress = address.String
		h.ListID = int64Ptr(listID)
		h.Price = stringPtr(price)
		entries = append(entries, h)
	}
	return entries, rows.Err()
}
