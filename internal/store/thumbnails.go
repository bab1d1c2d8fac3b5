package store

import (
	"context"
	"database/sql"
	"fmt"
)

// SaveThumbnail stores a preview image for the pinned image with the given CID.
func SaveThumbnail(ctx context.Context, db *sql.DB, cid string, data []byte, mime string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO thumbnails (cid, data, mime) VALUES (?, ?, ?)
		 ON CONFLICT (cid) DO UPDATE SET data = excluded.data, mime = excluded.mime`,
		cid, data, mime,
	)
	if err != nil {
		return fmt.Errorf("saving thumbnail: %w", err)
	}
	return nil
}

// GetThumbnail returns the preview image data and MIME type for a CID.
func GetThumbnail(ctx context.Context, db *sql.DB, cid string) ([]byte, string, error) {
	var data []byte
	var mime string
	err := db.QueryRowContext(ctx,
		`SELECT data, mime FROM thumbnails WHERE cid = ?`, cid,
	).Scan(&data, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting thumbnail: %w", err)
	}
	return data, mime, nil
}
