package market

import (
	"context"

	"github.com/erazemk/mintmarket/internal/apperr"
	"github.com/erazemk/mintmarket/internal/model"
	"github.com/erazemk/mintmarket/internal/store"
)

// FindByID returns an item in any status with its history, properties and
// voucher.
func (s *Service) FindByID(ctx context.Context, id string) (*model.Item, error) {
	item, err := store.GetItem(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, itemNotFound(id)
	}

	if item.History, err = store.ListItemHistory(ctx, s.db, id); err != nil {
		return nil, err
	}
	if item.Properties, err = store.GetItemProperties(ctx, s.db, id); err != nil {
		return nil, err
	}
	if item.Voucher, err = store.GetItemVoucher(ctx, s.db, id); err != nil {
		return nil, err
	}
	return item, nil
}

// FindPagination returns one page of listed items matching f.
func (s *Service) FindPagination(ctx context.Context, f model.ItemFilter) (*model.Page[model.Item], error) {
	if err := f.Normalize(); err != nil {
		return nil, err
	}
	return store.PaginateItems(ctx, s.db, &f)
}

// FindPriceRange returns the lowest and highest listed price.
func (s *Service) FindPriceRange(ctx context.Context) (*model.PriceRange, error) {
	return store.GetPriceRange(ctx, s.db)
}

// FindAll returns every listed item, newest first.
func (s *Service) FindAll(ctx context.Context) ([]model.Item, error) {
	items, err := store.ListListedItems(ctx, s.db)
	if err != nil {
		return nil, err
	}
	return nonNil(items), nil
}

// FindByAccount returns the items the account at address owns or authored,
// newest first.
func (s *Service) FindByAccount(ctx context.Context, address string) ([]model.Item, error) {
	account, err := s.existingAccount(ctx, address)
	if err != nil {
		return nil, err
	}
	items, err := store.ListItemsByAccount(ctx, s.db, account.ID)
	if err != nil {
		return nil, err
	}
	return nonNil(items), nil
}

// History returns the history of an item in commit order.
func (s *Service) History(ctx context.Context, itemID string) ([]model.History, error) {
	item, err := store.GetItem(ctx, s.db, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, itemNotFound(itemID)
	}
	history, err := store.ListItemHistory(ctx, s.db, itemID)
	if err != nil {
		return nil, err
	}
	if history == nil {
		history = []model.History{}
	}
	return history, nil
}

func itemNotFound(id string) error {
	return apperr.NotFound("item", "id", id)
}

func nonNil(items []model.Item) []model.Item {
	if items == nil {
		return []model.Item{}
	}
	return items
}
