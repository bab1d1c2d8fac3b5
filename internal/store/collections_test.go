package store

import (
	"context"
	"strings"
	"testing"

	"github.com/erazemk/mintmarket/internal/db"
)

func TestCreateCollectionDuplicate(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateCollection(ctx, database, "Apes", "", nil, ""); err != nil {
		t.Fatalf("CreateCollection: %v", err)
	}
	_, err := CreateCollection(ctx, database, "Apes", "again", nil, "")
	if !isDuplicate(err) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestEnsureDefaultCollectionConflictWithoutWinner(t *testing.T) {
	database := db.NewTestDB(t)

	// Every insert into collections fails with a primary key violation on
	// another table, so the conflict leaves no row to re-fetch.
	for _, stmt := range []string{
		`CREATE TABLE clash (k TEXT PRIMARY KEY)`,
		`INSERT INTO clash VALUES ('x')`,
		`CREATE TRIGGER collections_clash BEFORE INSERT ON collections BEGIN INSERT INTO clash VALUES ('x'); END`,
	} {
		if _, err := database.Exec(stmt); err != nil {
			t.Fatalf("%s: %v", stmt, err)
		}
	}

	c, err := EnsureDefaultCollection(context.Background(), database, "Mintmarket", "")
	if err == nil || !strings.Contains(err.Error(), "vanished after conflict") {
		t.Fatalf("expected conflict error, got %+v %v", c, err)
	}
}

func TestEnsureDefaultCollectionIsStable(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first, err := EnsureDefaultCollection(ctx, database, "Mintmarket", "Default")
	if err != nil {
		t.Fatalf("EnsureDefaultCollection: %v", err)
	}
	second, err := EnsureDefaultCollection(ctx, database, "Mintmarket", "Default")
	if err != nil {
		t.Fatalf("second EnsureDefaultCollection: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("default collection changed: %s then %s", first.ID, second.ID)
	}

	// A renamed default in configuration keeps the pinned collection.
	renamed, err := EnsureDefaultCollection(ctx, database, "Renamed", "")
	if err != nil {
		t.Fatalf("EnsureDefaultCollection renamed: %v", err)
	}
	if renamed.ID != first.ID {
		t.Errorf("expected pinned default %s, got %s", first.ID, renamed.ID)
	}
}

func TestListCollections(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C"} {
		if _, err := CreateCollection(ctx, database, name, "", nil, ""); err != nil {
			t.Fatalf("CreateCollection %s: %v", name, err)
		}
	}

	page, total, err := ListCollections(ctx, database, 2, 0)
	if err != nil {
		t.Fatalf("ListCollections: %v", err)
	}
	if total != 3 {
		t.Errorf("expected total 3, got %d", total)
	}
	if len(page) != 2 {
		t.Errorf("expected 2 collections on the page, got %d", len(page))
	}

	rest, _, err := ListCollections(ctx, database, 2, 2)
	if err != nil {
		t.Fatalf("ListCollections offset: %v", err)
	}
	if len(rest) != 1 {
		t.Errorf("expected 1 collection on the last page, got %d", len(rest))
	}
}

func TestGetCollectionByNameMissing(t *testing.T) {
	database := db.NewTestDB(t)

	c, err := GetCollectionByName(context.Background(), database, "nope")
	if err != nil {
		t.Fatalf("GetCollectionByName: %v", err)
	}
	if c != nil {
		t.Errorf("expected nil, got %+v", c)
	}
}
