package market

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/erazemk/mintmarket/internal/apperr"
	"github.com/erazemk/mintmarket/internal/db"
	"github.com/erazemk/mintmarket/internal/model"
)

func TestCreateReusesNamedCollection(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	signUp(t, s, alice)

	req := model.CreateItemRequest{Address: alice, TokenID: 1, Name: "A", Collection: model.CollectionRequest{Name: "Apes"}}
	first, err := s.Create(ctx, req)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	req.TokenID = 2
	second, err := s.Create(ctx, req)
	if err != nil {
		t.Fatalf("second Create: %v", err)
	}
	if first.CollectionID != second.CollectionID || first.CollectionName != "Apes" {
		t.Errorf("expected a shared Apes collection, got %s and %s", first.CollectionID, second.CollectionID)
	}

	page, err := s.FindCollections(ctx, model.PageRequest{})
	if err != nil {
		t.Fatalf("FindCollections: %v", err)
	}
	// The default collection plus Apes.
	if page.TotalCount != 2 {
		t.Errorf("expected 2 collections, got %d", page.TotalCount)
	}
}

func TestCreateWithoutCollectionUsesDefault(t *testing.T) {
	s := newService(t)
	signUp(t, s, alice)
	def, _ := s.DefaultCollection()

	a := createItem(t, s, alice, 1, "A")
	b := createItem(t, s, alice, 2, "B")
	if a.CollectionID != def.ID || b.CollectionID != def.ID {
		t.Errorf("expected default collection %s, got %s and %s", def.ID, a.CollectionID, b.CollectionID)
	}
}

func TestResolveCollectionOwner(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	owner := signUp(t, s, alice)

	c, err := s.ResolveCollection(ctx, model.CollectionRequest{
		Name:        "Birds",
		Description: "Flying",
		Image:       &model.Image{URL: "https://gateway.test/ipfs/birds", CID: "birds"},
	}, owner)
	if err != nil {
		t.Fatalf("ResolveCollection: %v", err)
	}
	if c.OwnerID != owner.ID || c.Description != "Flying" || c.Image == nil || c.Image.CID != "birds" {
		t.Errorf("unexpected collection %+v", c)
	}

	found, err := s.FindCollectionByName(ctx, "Birds")
	if err != nil {
		t.Fatalf("FindCollectionByName: %v", err)
	}
	if found.ID != c.ID {
		t.Errorf("expected %s, got %s", c.ID, found.ID)
	}
}

func TestFindCollectionByNameMissing(t *testing.T) {
	s := newService(t)

	_, err := s.FindCollectionByName(context.Background(), "Ghosts")
	if !apperr.IsNotFound(err) || err.Error() != "The collection with name Ghosts does not exist" {
		t.Errorf("unexpected error %v", err)
	}
}

func TestDefaultCollectionSurvivesRestart(t *testing.T) {
	s := newService(t)
	def, _ := s.DefaultCollection()

	restarted := New(s.db, nil, "Mintmarket", "")
	if err := restarted.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	again, _ := restarted.DefaultCollection()
	if again.ID != def.ID {
		t.Errorf("expected default %s after restart, got %s", def.ID, again.ID)
	}
}

// newFileService opens a service on a file database, so that concurrent
// callers get their own connections.
func newFileService(t *testing.T) *Service {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "market.sqlite3"))
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if err := db.Migrate(database); err != nil {
		t.Fatalf("migrating database: %v", err)
	}

	s := New(database, nil, "Mintmarket", "")
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return s
}

func TestResolveCollectionConcurrentCreate(t *testing.T) {
	s := newFileService(t)
	ctx := context.Background()

	const callers = 8
	ids := make([]string, callers)
	errs := make([]error, callers)

	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			c, err := s.ResolveCollection(ctx, model.CollectionRequest{Name: "Race"}, nil)
			errs[i] = err
			if c != nil {
				ids[i] = c.ID
			}
		}()
	}
	close(start)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("caller %d: %v", i, err)
		}
		if ids[i] != ids[0] {
			t.Errorf("caller %d got collection %s, caller 0 got %s", i, ids[i], ids[0])
		}
	}

	var rows int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM collections WHERE name = ?`, "Race").Scan(&rows); err != nil {
		t.Fatalf("counting collections: %v", err)
	}
	if rows != 1 {
		t.Errorf("expected one collection row, got %d", rows)
	}
}
