package market

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/erazemk/mintmarket/internal/apperr"
	"github.com/erazemk/mintmarket/internal/model"
	"github.com/erazemk/mintmarket/internal/store"
)

// ResolveCollection returns the collection named by req, creating it with
// owner as its owner if it does not exist. An empty name selects the
// default collection.
func (s *Service) ResolveCollection(ctx context.Context, req model.CollectionRequest, owner *model.Account) (*model.Collection, error) {
	if req.Name == "" {
		return s.DefaultCollection()
	}

	c, err := store.GetCollectionByName(ctx, s.db, req.Name)
	if err != nil {
		return nil, err
	}
	if c != nil {
		return c, nil
	}

	var ownerID string
	if owner != nil {
		ownerID = owner.ID
	}
	c, err = store.CreateCollection(ctx, s.db, req.Name, req.Description, req.Image, ownerID)
	if errors.Is(err, store.ErrDuplicate) {
		// Created concurrently; use the row that won.
		c, err = store.GetCollectionByName(ctx, s.db, req.Name)
		if err == nil && c == nil {
			err = fmt.Errorf("collection %q vanished after conflict", req.Name)
		}
		return c, err
	}
	if err != nil {
		return nil, err
	}

	slog.Info("collection created", "id", c.ID, "name", c.Name)
	return c, nil
}

// FindCollectionByName returns a collection by name.
func (s *Service) FindCollectionByName(ctx context.Context, name string) (*model.Collection, error) {
	c, err := store.GetCollectionByName(ctx, s.db, name)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.NotFound("collection", "name", name)
	}
	return c, nil
}

// FindCollections returns one page of collections, newest first.
func (s *Service) FindCollections(ctx context.Context, req model.PageRequest) (*model.Page[model.Collection], error) {
	offset := req.Normalize()
	collections, total, err := store.ListCollections(ctx, s.db, req.Limit, offset)
	if err != nil {
		return nil, err
	}
	if collections == nil {
		collections = []model.Collection{}
	}
	return &model.Page[model.Collection]{
		TotalCount: total,
		Page:       req.Page,
		Limit:      req.Limit,
		Items:      collections,
	}, nil
}
