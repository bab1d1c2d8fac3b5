package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/erazemk/mintmarket/internal/model"
)

const collectionColumns = `id, name, description, image_url, image_cid, owner_id, created_at`

// CreateCollection inserts a collection. Returns ErrDuplicate (wrapped) when
// a collection with the same name already exists.
func CreateCollection(ctx context.Context, db *sql.DB, name, description string, image *model.Image, ownerID string) (*model.Collection, error) {
	var url, cid sql.NullString
	if image != nil {
		url, cid = nullString(image.URL), nullString(image.CID)
	}

	id := uuid.NewString()
	_, err := db.ExecContext(ctx,
		`INSERT INTO collections (id, name, description, image_url, image_cid, owner_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, name, description, url, cid, nullString(ownerID), now(),
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("creating collection %q: %w", name, ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("creating collection: %w", err)
	}

	return GetCollection(ctx, db, id)
}

// GetCollection returns a collection by ID.
func GetCollection(ctx context.Context, db *sql.DB, id string) (*model.Collection, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+collectionColumns+` FROM collections WHERE id = ?`, id)
	c, err := scanCollection(row)
	if err != nil {
		return nil, fmt.Errorf("getting collection: %w", err)
	}
	return c, nil
}

// GetCollectionByName returns a collection by its unique name.
func GetCollectionByName(ctx context.Context, db *sql.DB, name string) (*model.Collection, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+collectionColumns+` FROM collections WHERE name = ?`, name)
	c, err := scanCollection(row)
	if err != nil {
		return nil, fmt.Errorf("getting collection by name: %w", err)
	}
	return c, nil
}

// ListCollections returns one page of collections, newest first, and the
// total number of collections.
func ListCollections(ctx context.Context, db *sql.DB, limit, offset int) ([]model.Collection, int, error) {
	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM collections`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting collections: %w", err)
	}

	rows, err := db.QueryContext(ctx,
		`SELECT `+collectionColumns+` FROM collections
		 ORDER BY created_at DESC, name LIMIT ? OFFSET ?`, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listing collections: %w", err)
	}
	defer rows.Close()

	var collections []model.Collection
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning collection: %w", err)
		}
		collections = append(collections, *c)
	}
	return collections, total, rows.Err()
}

// EnsureDefaultCollection returns the process-wide default collection,
// creating it on first use. The chosen ID is pinned in settings so that a
// later rename of the configured default does not fork the default.
func EnsureDefaultCollection(ctx context.Context, db *sql.DB, name, description string) (*model.Collection, error) {
	existing, err := GetCollectionByName(ctx, db, name)
	if err != nil {
		return nil, err
	}
	candidate := existing
	if candidate == nil {
		candidate, err = CreateCollection(ctx, db, name, description, nil, "")
		if err != nil && !isDuplicate(err) {
			return nil, err
		}
		if candidate == nil {
			// Lost the race to another process; use the winner's row.
			if candidate, err = GetCollectionByName(ctx, db, name); err != nil {
				return nil, err
			}
			if candidate == nil {
				return nil, fmt.Errorf("default collection %q vanished after conflict", name)
			}
		}
	}

	id, err := ensureSetting(ctx, db, settingDefaultCollection, candidate.ID)
	if err != nil {
		return nil, err
	}
	if id == candidate.ID {
		return candidate, nil
	}

	c, err := GetCollection(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("default collection %s is missing", id)
	}
	return c, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCollection(row rowScanner) (*model.Collection, error) {
	c := &model.Collection{}
	var url, cid, ownerID sql.NullString
	err := row.Scan(&c.ID, &c.Name, &c.Description, &url, &cid, &ownerID, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if url.Valid || cid.Valid {
		c.Image = &model.Image{URL: url.String, CID: cid.String}
	}
	c.OwnerID = ownerID.String
	return c, nil
}
