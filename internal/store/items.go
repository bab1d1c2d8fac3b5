package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/mintmarket/internal/model"
	"github.com/erazemk/mintmarket/internal/query"
)

// itemSelect projects an item with its collection name, owner, author and
// image. History, properties and voucher are loaded separately.
const itemSelect = `SELECT i.id, i.token_id, i.list_id, i.collection_id, c.name, i.collection_address,
        i.name, i.description, i.price, i.royalty, i.status, i.likes,
        i.author_id, au.address, i.owner_id, ow.address,
        COALESCE(im.url, ''), COALESCE(im.cid, ''), i.version, i.created_at, i.updated_at
 FROM items i
 JOIN collections c ON c.id = i.collection_id
 LEFT JOIN accounts au ON au.id = i.author_id
 LEFT JOIN accounts ow ON ow.id = i.owner_id
 LEFT JOIN images im ON im.item_id = i.id`

// GetItem returns an item by ID regardless of its status.
func GetItem(ctx context.Context, db *sql.DB, id string) (*model.Item, error) {
	item, err := getItem(ctx, db, query.Eq{Col: "i.id", Val: id})
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// GetActiveItem returns an item by ID if it has been activated.
func GetActiveItem(ctx context.Context, db *sql.DB, id string) (*model.Item, error) {
	item, err := getItem(ctx, db, query.And(
		query.Eq{Col: "i.id", Val: id},
		query.Or(
			query.Eq{Col: "i.status", Val: string(model.StatusNotListed)},
			query.Eq{Col: "i.status", Val: string(model.StatusListed)},
		),
	))
	if err != nil {
		return nil, fmt.Errorf("getting active item: %w", err)
	}
	return item, nil
}

func getItem(ctx context.Context, q querier, cond query.Cond) (*model.Item, error) {
	where, args := query.Render(cond)
	item, err := scanItem(q.QueryRowContext(ctx, itemSelect+` WHERE `+where, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return item, err
}

// ListListedItems returns all listed items, newest first.
func ListListedItems(ctx context.Context, db *sql.DB) ([]model.Item, error) {
	items, err := listItems(ctx, db,
		query.Eq{Col: "i.status", Val: string(model.StatusListed)},
		query.OrderBy{Col: "i.created_at", Desc: true},
		query.OrderBy{Col: "i.token_id", Desc: true},
	)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return items, nil
}

// ListItemsByAccount returns items the account owns or authored, newest first.
func ListItemsByAccount(ctx context.Context, db *sql.DB, accountID string) ([]model.Item, error) {
	items, err := listItems(ctx, db,
		query.Or(
			query.Eq{Col: "i.owner_id", Val: accountID},
			query.Eq{Col: "i.author_id", Val: accountID},
		),
		query.OrderBy{Col: "i.created_at", Desc: true},
		query.OrderBy{Col: "i.token_id", Desc: true},
	)
	if err != nil {
		return nil, fmt.Errorf("listing items by account: %w", err)
	}
	return items, nil
}

func listItems(ctx context.Context, db *sql.DB, cond query.Cond, order ...query.OrderBy) ([]model.Item, error) {
	where, args := query.Render(cond)
	rows, err := db.QueryContext(ctx,
		itemSelect+` WHERE `+where+` ORDER BY `+query.RenderOrder(order...), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanItems(rows)
}

// PaginationCond builds the marketplace search predicate:
//
//	(status = listed AND [price BETWEEN from AND to] AND name contains search) OR
//	(status = listed AND [price BETWEEN from AND to] AND description contains search)
//
// Without a search term both branches are the same status+price condition.
func PaginationCond(f *model.ItemFilter) query.Cond {
	base := []query.Cond{query.Eq{Col: "i.status", Val: string(model.StatusListed)}}
	if f.HasPriceRange() {
		base = append(base, query.Between{Col: "i.price", Lo: *f.PriceFrom, Hi: *f.PriceTo, Numeric: true})
	}

	var byName, byDescription query.Cond
	if f.Search != "" {
		byName = query.Contains{Col: "i.name", Text: f.Search}
		byDescription = query.Contains{Col: "i.description", Text: f.Search}
	}

	return query.Or(
		query.And(append(base[:len(base):len(base)], byName)...),
		query.And(append(base[:len(base):len(base)], byDescription)...),
	)
}

// PaginationOrder is likes in the requested direction, then newest first,
// then highest token ID, so pages are stable across like-count ties.
func PaginationOrder(likesOrder string) []query.OrderBy {
	return []query.OrderBy{
		{Col: "i.likes", Desc: likesOrder != model.OrderAsc},
		{Col: "i.created_at", Desc: true},
		{Col: "i.token_id", Desc: true},
	}
}

// PaginateItems returns one page of listed items matching the filter. The
// filter must already be normalized.
func PaginateItems(ctx context.Context, db *sql.DB, f *model.ItemFilter) (*model.Page[model.Item], error) {
	where, args := query.Render(PaginationCond(f))

	var total int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items i WHERE `+where, args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("counting items: %w", err)
	}

	rows, err := db.QueryContext(ctx,
		itemSelect+` WHERE `+where+` ORDER BY `+query.RenderOrder(PaginationOrder(f.LikesOrder)...)+` LIMIT ? OFFSET ?`,
		append(args, f.Limit, f.Skip)...,
	)
	if err != nil {
		return nil, fmt.Errorf("paginating items: %w", err)
	}
	defer rows.Close()

	items, err := scanItems(rows)
	if err != nil {
		return nil, fmt.Errorf("paginating items: %w", err)
	}
	if items == nil {
		items = []model.Item{}
	}

	return &model.Page[model.Item]{
		TotalCount: total,
		Page:       f.Page,
		Limit:      f.Limit,
		Items:      items,
	}, nil
}

// GetPriceRange returns the cheapest and most expensive listed prices.
// Both are zero when nothing is listed.
func GetPriceRange(ctx context.Context, db *sql.DB) (*model.PriceRange, error) {
	var from, to sql.NullFloat64
	err := db.QueryRowContext(ctx,
		`SELECT MIN(CAST(price AS REAL)), MAX(CAST(price AS REAL))
		 FROM items WHERE status = ? AND price IS NOT NULL`, string(model.StatusListed),
	).Scan(&from, &to)
	if err != nil {
		return nil, fmt.Errorf("getting price range: %w", err)
	}
	return &model.PriceRange{From: from.Float64, To: to.Float64}, nil
}

// GetItemProperties returns the key/value properties of an item.
func GetItemProperties(ctx context.Context, db *sql.DB, itemID string) ([]model.Property, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT key, value FROM item_properties WHERE item_id = ? ORDER BY key`, itemID)
	if err != nil {
		return nil, fmt.Errorf("getting item properties: %w", err)
	}
	defer rows.Close()

	var props []model.Property
	for rows.Next() {
		var p model.Property
		if err := rows.Scan(&p.Key, &p.Value); err != nil {
			return nil, fmt.Errorf("scanning item property: %w", err)
		}
		props = append(props, p)
	}
	return props, rows.Err()
}

// GetItemVoucher returns the voucher attached to an item, if any.
func GetItemVoucher(ctx context.Context, db *sql.DB, itemID string) (*model.Voucher, error) {
	v := &model.Voucher{}
	err := db.QueryRowContext(ctx,
		`SELECT token_id, min_price, uri, signature FROM vouchers WHERE item_id = ?`, itemID,
	).Scan(&v.TokenID, &v.MinPrice, &v.URI, &v.Signature)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item voucher: %w", err)
	}
	return v, nil
}

func scanItem(row rowScanner) (*model.Item, error) {
	item := &model.Item{}
	var listID sql.NullInt64
	var price, authorID, authorAddr, ownerID, ownerAddr sql.NullString
	err := row.Scan(&item.ID, &item.TokenID, &listID, &item.CollectionID, &item.CollectionName, &item.CollectionAddress,
		&item.Name, &item.Description, &price, &item.Royalty, &item.Status, &item.Likes,
		&authorID, &authorAddr, &ownerID, &ownerAddr,
		&item.Image.URL, &item.Image.CID, &item.Version, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	item.ListID = int64Ptr(listID)
	item.Price = stringPtr(price)
	if authorID.Valid {
		item.Author = &model.AccountRef{ID: authorID.String, Address: authorAddr.String}
	}
	if ownerID.Valid {
		item.Owner = &model.AccountRef{ID: ownerID.String, Address: ownerAddr.String}
	}
	return item, nil
}

func scanItems(rows *sql.Rows) ([]model.Item, error) {
	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}
