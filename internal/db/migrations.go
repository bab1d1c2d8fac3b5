package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS accounts (
    id         TEXT PRIMARY KEY,
    address    TEXT NOT NULL UNIQUE,
    created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS collections (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    image_url   TEXT,
    image_cid   TEXT,
    owner_id    TEXT REFERENCES accounts(id) ON DELETE SET NULL,
    created_at  DATETIME NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_collections_name ON collections(name);

CREATE TABLE IF NOT EXISTS items (
    id                 TEXT PRIMARY KEY,
    token_id           INTEGER NOT NULL,
    list_id            INTEGER,
    collection_id      TEXT NOT NULL REFERENCES collections(id),
    collection_address TEXT NOT NULL DEFAULT '',
    name               TEXT NOT NULL CHECK (length(name) <= 100),
    description        TEXT NOT NULL DEFAULT '',
    price              TEXT,
    royalty            INTEGER NOT NULL DEFAULT 0 CHECK (royalty BETWEEN 0 AND 10),
    status             TEXT NOT NULL DEFAULT 'not_listed' CHECK (status IN ('draft', 'not_listed', 'listed')),
    author_id          TEXT REFERENCES accounts(id) ON DELETE CASCADE,
    owner_id           TEXT REFERENCES accounts(id) ON DELETE CASCADE,
    likes              INTEGER NOT NULL DEFAULT 0 CHECK (likes >= 0),
    version            INTEGER NOT NULL DEFAULT 1,
    created_at         DATETIME NOT NULL,
    updated_at         DATETIME NOT NULL,
    CHECK (status <> 'listed' OR (price IS NOT NULL AND list_id IS NOT NULL))
);

CREATE INDEX IF NOT EXISTS idx_items_status ON items(status);
CREATE INDEX IF NOT EXISTS idx_items_owner ON items(owner_id);
CREATE INDEX IF NOT EXISTS idx_items_author ON items(author_id);

CREATE TABLE IF NOT EXISTS images (
    item_id TEXT PRIMARY KEY REFERENCES items(id) ON DELETE CASCADE,
    url     TEXT NOT NULL DEFAULT '',
    cid     TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS history (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    item_id          TEXT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
    account_id       TEXT REFERENCES accounts(id) ON DELETE SET NULL,
    transaction_type TEXT NOT NULL CHECK (transaction_type IN ('created', 'activated', 'listed', 'delisted', 'sold')),
    list_id          INTEGER,
    price            TEXT,
    created_at       DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_history_item ON history(item_id, id);

CREATE TABLE IF NOT EXISTS item_properties (
    item_id TEXT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
    key     TEXT NOT NULL,
    value   TEXT NOT NULL,
    PRIMARY KEY (item_id, key)
);

CREATE TABLE IF NOT EXISTS vouchers (
    item_id   TEXT PRIMARY KEY REFERENCES items(id) ON DELETE CASCADE,
    token_id  INTEGER NOT NULL,
    min_price TEXT NOT NULL,
    uri       TEXT NOT NULL,
    signature TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS item_likes (
    item_id    TEXT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
    account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
    created_at DATETIME NOT NULL,
    PRIMARY KEY (item_id, account_id)
);

CREATE TABLE IF NOT EXISTS pins (
    id           TEXT PRIMARY KEY,
    filename     TEXT NOT NULL,
    status       TEXT NOT NULL CHECK (status IN ('pending', 'image_pinned', 'complete')),
    image_cid    TEXT,
    metadata     TEXT NOT NULL,
    metadata_cid TEXT,
    created_at   DATETIME NOT NULL,
    updated_at   DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS thumbnails (
    cid  TEXT PRIMARY KEY,
    data BLOB NOT NULL,
    mime TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: pagination orders by likes before the creation time.
	`CREATE INDEX IF NOT EXISTS idx_items_listing_order
	     ON items(status, likes, created_at, token_id)`,
}

// Migrate creates the schema and runs the migrations.
func Migrate(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
