package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/erazemk/mintmarket/internal/model"
)

func seedAccount(t *testing.T, database *sql.DB, address string) *model.Account {
	t.Helper()
	a, err := CreateAccount(context.Background(), database, address)
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	return a
}

func seedCollection(t *testing.T, database *sql.DB) *model.Collection {
	t.Helper()
	c, err := EnsureDefaultCollection(context.Background(), database, "Mintmarket", "")
	if err != nil {
		t.Fatalf("EnsureDefaultCollection: %v", err)
	}
	return c
}

type itemSeed struct {
	tokenID     int64
	name        string
	description string
	price       string
	status      model.ItemStatus
	owner       *model.Account
}

func seedItem(t *testing.T, database *sql.DB, s itemSeed) *model.Item {
	t.Helper()
	c := seedCollection(t, database)

	item := &model.Item{
		TokenID:      s.tokenID,
		CollectionID: c.ID,
		Name:         s.name,
		Description:  s.description,
		Status:       s.status,
		Image:        model.Image{URL: "https://gateway.test/ipfs/img", CID: "img"},
	}
	if item.Status == "" {
		item.Status = model.StatusNotListed
	}
	if s.price != "" {
		price := s.price
		item.Price = &price
	}
	if item.Status == model.StatusListed {
		listID := s.tokenID
		item.ListID = &listID
	}
	if s.owner != nil {
		item.Author = s.owner.Ref()
		item.Owner = s.owner.Ref()
	}

	created, err := CreateItem(context.Background(), database, item)
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	return created
}

func setLikes(t *testing.T, database *sql.DB, itemID string, likes int) {
	t.Helper()
	if _, err := database.Exec(`UPDATE items SET likes = ? WHERE id = ?`, likes, itemID); err != nil {
		t.Fatalf("setting likes: %v", err)
	}
}
