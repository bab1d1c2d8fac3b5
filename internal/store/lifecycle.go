package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/erazemk/mintmarket/internal/apperr"
	"github.com/erazemk/mintmarket/internal/model"
)

// Every mutation below runs in one transaction: the item row is updated with
// a compare-and-set on (status, version) and the history entry is inserted
// before commit. A lost race rolls back with item_state_changed.

// CreateItem inserts a new item with its image, properties, voucher and a
// "created" history entry.
func CreateItem(ctx context.Context, db *sql.DB, item *model.Item) (*model.Item, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	id := uuid.NewString()
	ts := now()
	var authorID, ownerID string
	if item.Author != nil {
		authorID = item.Author.ID
	}
	if item.Owner != nil {
		ownerID = item.Owner.ID
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO items (id, token_id, list_id, collection_id, collection_address, name, description,
		                    price, royalty, status, author_id, owner_id, likes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		id, item.TokenID, nullInt64Ptr(item.ListID), item.CollectionID, item.CollectionAddress, item.Name, item.Description,
		nullStringPtr(item.Price), item.Royalty, string(item.Status), nullString(authorID), nullString(ownerID), ts, ts,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	if err := upsertImage(ctx, tx, id, item.Image); err != nil {
		return nil, err
	}

	for _, p := range item.Properties {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO item_properties (item_id, key, value) VALUES (?, ?, ?)
			 ON CONFLICT (item_id, key) DO UPDATE SET value = excluded.value`,
			id, p.Key, p.Value,
		)
		if err != nil {
			return nil, fmt.Errorf("creating item property: %w", err)
		}
	}

	if item.Voucher != nil {
		if err := upsertVoucher(ctx, tx, id, item.Voucher); err != nil {
			return nil, err
		}
	}

	if err := insertHistory(ctx, tx, &model.History{
		ItemID:          id,
		AccountID:       authorID,
		TransactionType: model.TransactionCreated,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing item: %w", err)
	}

	return GetItem(ctx, db, id)
}

// ActivateItem applies the activation fields to item, moves it to the
// collection, claims authorship and ownership for actorID when the item has
// none, and records an "activated" history entry.
func ActivateItem(ctx context.Context, db *sql.DB, item *model.Item, req *model.ActivateRequest, collection *model.Collection, actorID string) (*model.Item, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	err = compareAndSet(ctx, tx, item,
		`name = COALESCE(NULLIF(?, ''), name),
		 description = COALESCE(NULLIF(?, ''), description),
		 price = COALESCE(?, price),
		 collection_id = ?,
		 status = ?,
		 author_id = COALESCE(author_id, ?),
		 owner_id = COALESCE(owner_id, ?)`,
		req.Name, req.Description, nullStringPtr(req.Price),
		collection.ID, string(model.StatusNotListed), nullString(actorID), nullString(actorID),
	)
	if err != nil {
		return nil, fmt.Errorf("activating item: %w", err)
	}

	if req.Image != nil {
		if err := upsertImage(ctx, tx, item.ID, *req.Image); err != nil {
			return nil, err
		}
	}
	if req.Voucher != nil {
		if err := upsertVoucher(ctx, tx, item.ID, req.Voucher); err != nil {
			return nil, err
		}
	}

	if err := insertHistory(ctx, tx, &model.History{
		ItemID:          item.ID,
		AccountID:       actorID,
		TransactionType: model.TransactionActivated,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing activation: %w", err)
	}

	return GetItem(ctx, db, item.ID)
}

// ListItem puts item on sale under listID at price.
func ListItem(ctx context.Context, db *sql.DB, item *model.Item, listID int64, price, accountID string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	err = compareAndSet(ctx, tx, item, `status = ?, list_id = ?, price = ?`,
		string(model.StatusListed), listID, price)
	if err != nil {
		return fmt.Errorf("listing item: %w", err)
	}

	if err := insertHistory(ctx, tx, &model.History{
		ItemID:          item.ID,
		AccountID:       accountID,
		TransactionType: model.TransactionListed,
		ListID:          &listID,
		Price:           &price,
	}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing listing: %w", err)
	}
	return nil
}

// DelistItem takes item off sale. The history entry keeps the former list ID.
func DelistItem(ctx context.Context, db *sql.DB, item *model.Item, accountID string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := compareAndSet(ctx, tx, item, `status = ?`, string(model.StatusNotListed)); err != nil {
		return fmt.Errorf("delisting item: %w", err)
	}

	if err := insertHistory(ctx, tx, &model.History{
		ItemID:          item.ID,
		AccountID:       accountID,
		TransactionType: model.TransactionDelisted,
		ListID:          item.ListID,
	}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delisting: %w", err)
	}
	return nil
}

// BuyItem transfers item to buyerID and takes it off sale.
func BuyItem(ctx context.Context, db *sql.DB, item *model.Item, buyerID string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	err = compareAndSet(ctx, tx, item, `owner_id = ?, status = ?`,
		buyerID, string(model.StatusNotListed))
	if err != nil {
		return fmt.Errorf("buying item: %w", err)
	}

	if err := insertHistory(ctx, tx, &model.History{
		ItemID:          item.ID,
		AccountID:       buyerID,
		TransactionType: model.TransactionSold,
		ListID:          item.ListID,
		Price:           item.Price,
	}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing purchase: %w", err)
	}
	return nil
}

// LikeItem records that accountID likes itemID and bumps the like count.
// Returns ErrDuplicate (wrapped) if the account already liked the item.
func LikeItem(ctx context.Context, db *sql.DB, itemID, accountID string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO item_likes (item_id, account_id, created_at) VALUES (?, ?, ?)`,
		itemID, accountID, now(),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("liking item: %w", ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("liking item: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE items SET likes = likes + 1 WHERE id = ?`, itemID,
	); err != nil {
		return fmt.Errorf("counting like: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing like: %w", err)
	}
	return nil
}

// compareAndSet applies set to item's row only if the row still has the
// status and version item was read with.
func compareAndSet(ctx context.Context, tx *sql.Tx, item *model.Item, set string, args ...any) error {
	args = append(args, now(), item.ID, string(item.Status), item.Version)
	result, err := tx.ExecContext(ctx,
		`UPDATE items SET `+set+`, version = version + 1, updated_at = ?
		 WHERE id = ? AND status = ? AND version = ?`,
		args...,
	)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.Business(apperr.ItemStateChanged)
	}
	return nil
}

func upsertImage(ctx context.Context, tx *sql.Tx, itemID string, image model.Image) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO images (item_id, url, cid) VALUES (?, ?, ?)
		 ON CONFLICT (item_id) DO UPDATE SET url = excluded.url, cid = excluded.cid`,
		itemID, image.URL, image.CID,
	)
	if err != nil {
		return fmt.Errorf("saving item image: %w", err)
	}
	return nil
}

func upsertVoucher(ctx context.Context, tx *sql.Tx, itemID string, v *model.Voucher) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO vouchers (item_id, token_id, min_price, uri, signature) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (item_id) DO UPDATE SET token_id = excluded.token_id, min_price = excluded.min_price,
		     uri = excluded.uri, signature = excluded.signature`,
		itemID, v.TokenID, v.MinPrice, v.URI, v.Signature,
	)
	if err != nil {
		return fmt.Errorf("saving voucher: %w", err)
	}
	return nil
}
