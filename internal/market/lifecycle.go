package market

import (
	"context"
	"errors"
	"log/slog"

	"github.com/erazemk/mintmarket/internal/apperr"
	"github.com/erazemk/mintmarket/internal/model"
	"github.com/erazemk/mintmarket/internal/store"
)

// Create stores a new activated item authored and owned by the account at
// req.Address.
func (s *Service) Create(ctx context.Context, req model.CreateItemRequest) (*model.Item, error) {
	account, err := s.associatedAccount(ctx, req.Address)
	if err != nil {
		return nil, err
	}
	if err := validateNew(&req); err != nil {
		return nil, err
	}

	collection, err := s.ResolveCollection(ctx, req.Collection, account)
	if err != nil {
		return nil, err
	}
	return s.insert(ctx, &req, collection, account, false)
}

// CreateDraft stores a new draft. Unlike Create it accepts an address with
// no account: such drafts have no author or owner, land in the default
// collection, and are claimed by whoever activates them.
func (s *Service) CreateDraft(ctx context.Context, req model.CreateItemRequest) (*model.Item, error) {
	account, err := s.ResolveAccount(ctx, req.Address)
	if err != nil {
		return nil, err
	}
	if err := validateNew(&req); err != nil {
		return nil, err
	}

	var collection *model.Collection
	if account == nil {
		collection, err = s.DefaultCollection()
	} else {
		collection, err = s.ResolveCollection(ctx, req.Collection, account)
	}
	if err != nil {
		return nil, err
	}
	return s.insert(ctx, &req, collection, account, true)
}

func validateNew(req *model.CreateItemRequest) error {
	if err := model.ValidateName(req.Name); err != nil {
		return err
	}
	if err := model.ValidateRoyalty(req.Royalty); err != nil {
		return err
	}
	if req.Price != nil {
		return model.ValidatePrice(*req.Price)
	}
	return nil
}

func (s *Service) insert(ctx context.Context, req *model.CreateItemRequest, collection *model.Collection, account *model.Account, draft bool) (*model.Item, error) {
	item := &model.Item{
		TokenID:           req.TokenID,
		CollectionID:      collection.ID,
		CollectionAddress: req.CollectionAddress,
		Name:              req.Name,
		Description:       req.Description,
		Price:             req.Price,
		Royalty:           req.Royalty,
		Status:            model.InitialStatus(draft),
		Image:             req.Image,
		Properties:        req.Properties,
		Voucher:           req.Voucher,
	}
	if account != nil {
		item.Author = account.Ref()
		item.Owner = account.Ref()
	}

	created, err := store.CreateItem(ctx, s.db, item)
	if err != nil {
		return nil, err
	}
	s.metrics.Transition("create")
	slog.Info("item created", "item", created.ID, "token", created.TokenID, "status", created.Status, "collection", collection.Name)
	return created, nil
}

// Activate applies req to a draft or unlisted item and moves it to
// not_listed. An ownerless draft is claimed by the acting account.
func (s *Service) Activate(ctx context.Context, itemID string, req model.ActivateRequest) (*model.Item, error) {
	account, err := s.associatedAccount(ctx, req.Address)
	if err != nil {
		return nil, err
	}

	item, err := store.GetItem(ctx, s.db, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, itemNotFound(itemID)
	}
	if _, err := model.Transition(item.Status, model.OpActivate); err != nil {
		return nil, err
	}
	if err := checkOwner(item, account); err != nil {
		return nil, err
	}
	if req.Name != "" {
		if err := model.ValidateName(req.Name); err != nil {
			return nil, err
		}
	}
	if req.Price != nil {
		if err := model.ValidatePrice(*req.Price); err != nil {
			return nil, err
		}
	}

	collection, err := s.ResolveCollection(ctx, req.Collection, account)
	if err != nil {
		return nil, err
	}

	activated, err := store.ActivateItem(ctx, s.db, item, &req, collection, account.ID)
	if err != nil {
		return nil, err
	}
	s.committed(model.OpActivate, activated, account)
	return activated, nil
}

// ListItem puts an item owned by req.Address on sale and returns it with
// its history.
func (s *Service) ListItem(ctx context.Context, req model.ListRequest) (*model.Item, error) {
	item, err := s.activeItem(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	account, err := s.associatedAccount(ctx, req.Address)
	if err != nil {
		return nil, err
	}
	if err := checkOwner(item, account); err != nil {
		return nil, err
	}
	if err := model.ValidatePrice(req.Price); err != nil {
		return nil, err
	}
	if _, err := model.Transition(item.Status, model.OpList); err != nil {
		return nil, err
	}

	if err := store.ListItem(ctx, s.db, item, req.ListID, req.Price, account.ID); err != nil {
		return nil, err
	}
	return s.reload(ctx, model.OpList, item.ID, account)
}

// DelistItem takes an item owned by req.Address off sale.
func (s *Service) DelistItem(ctx context.Context, req model.DelistRequest) (*model.Item, error) {
	item, err := s.activeItem(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	account, err := s.existingAccount(ctx, req.Address)
	if err != nil {
		return nil, err
	}
	if err := checkOwner(item, account); err != nil {
		return nil, err
	}
	if _, err := model.Transition(item.Status, model.OpDelist); err != nil {
		return nil, err
	}

	if err := store.DelistItem(ctx, s.db, item, account.ID); err != nil {
		return nil, err
	}
	return s.reload(ctx, model.OpDelist, item.ID, account)
}

// Buy transfers a listed item to the account at buyerAddress and takes it
// off sale.
func (s *Service) Buy(ctx context.Context, itemID, buyerAddress string) (*model.Item, error) {
	item, err := s.activeItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	buyer, err := s.existingAccount(ctx, buyerAddress)
	if err != nil {
		return nil, err
	}
	if item.OwnerID() == buyer.ID {
		return nil, apperr.Business(apperr.BuyerIsOwner)
	}
	if _, err := model.Transition(item.Status, model.OpBuy); err != nil {
		return nil, err
	}

	if err := store.BuyItem(ctx, s.db, item, buyer.ID); err != nil {
		return nil, err
	}
	return s.reload(ctx, model.OpBuy, item.ID, buyer)
}

// LikeItem records that the account at address likes an item. Each account
// can like an item once.
func (s *Service) LikeItem(ctx context.Context, itemID, address string) (*model.Item, error) {
	item, err := s.activeItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	account, err := s.associatedAccount(ctx, address)
	if err != nil {
		return nil, err
	}

	err = store.LikeItem(ctx, s.db, item.ID, account.ID)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, apperr.Business(apperr.ItemAlreadyLiked)
	}
	if err != nil {
		return nil, err
	}

	liked, err := store.GetItem(ctx, s.db, item.ID)
	if err != nil {
		return nil, err
	}
	if liked == nil {
		return nil, itemNotFound(item.ID)
	}
	return liked, nil
}

// activeItem returns an activated item; drafts are not visible to trading
// operations.
func (s *Service) activeItem(ctx context.Context, id string) (*model.Item, error) {
	item, err := store.GetActiveItem(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, itemNotFound(id)
	}
	return item, nil
}

// checkOwner rejects actors who do not own item. Ownerless drafts have no
// owner to check against.
func checkOwner(item *model.Item, account *model.Account) error {
	if item.Owner != nil && item.Owner.ID != account.ID {
		return apperr.Business(apperr.NotItemOwner)
	}
	return nil
}

// reload fetches the item after a committed operation, with its history.
func (s *Service) reload(ctx context.Context, op model.Operation, id string, actor *model.Account) (*model.Item, error) {
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
	s.committed(op, item, actor)
	return item, nil
}

func (s *Service) committed(op model.Operation, item *model.Item, actor *model.Account) {
	s.metrics.Transition(string(op))
	slog.Info("item "+string(op.TransactionType()), "item", item.ID, "account", actor.Address, "status", item.Status)
}
