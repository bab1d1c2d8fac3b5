package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/erazemk/mintmarket/internal/model"
)

// CreatePin records a pending pinning workflow. ID, Filename and Metadata
// must be set.
func CreatePin(ctx context.Context, db *sql.DB, pin *model.Pin) error {
	meta, err := json.Marshal(pin.Metadata)
	if err != nil {
		return fmt.Errorf("encoding pin metadata: %w", err)
	}

	ts := now()
	pin.Status = model.PinPending
	pin.CreatedAt, pin.UpdatedAt = ts, ts
	_, err = db.ExecContext(ctx,
		`INSERT INTO pins (id, filename, status, metadata, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		pin.ID, pin.Filename, string(pin.Status), string(meta), ts, ts,
	)
	if err != nil {
		return fmt.Errorf("creating pin: %w", err)
	}
	return nil
}

// MarkPinImagePinned stores the CID of the uploaded image.
func MarkPinImagePinned(ctx context.Context, db *sql.DB, id, imageCID string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE pins SET status = ?, image_cid = ?, updated_at = ? WHERE id = ?`,
		string(model.PinImagePinned), imageCID, now(), id,
	)
	if err != nil {
		return fmt.Errorf("marking pin image: %w", err)
	}
	return nil
}

// CompletePin stores the final metadata document and its CID.
func CompletePin(ctx context.Context, db *sql.DB, id, metadataCID string, metadata model.Metadata) error {
	meta, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("encoding pin metadata: %w", err)
	}
	_, err = db.ExecContext(ctx,
		`UPDATE pins SET status = ?, metadata = ?, metadata_cid = ?, updated_at = ? WHERE id = ?`,
		string(model.PinComplete), string(meta), metadataCID, now(), id,
	)
	if err != nil {
		return fmt.Errorf("completing pin: %w", err)
	}
	return nil
}

const pinColumns = `id, filename, status, image_cid, metadata, metadata_cid, created_at, updated_at`

// GetPin returns a pinning workflow marker by ID.
func GetPin(ctx context.Context, db *sql.DB, id string) (*model.Pin, error) {
	pin, err := scanPin(db.QueryRowContext(ctx, `SELECT `+pinColumns+` FROM pins WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting pin: %w", err)
	}
	return pin, nil
}

// ListUnfinishedPins returns markers that never reached "complete", oldest first.
func ListUnfinishedPins(ctx context.Context, db *sql.DB) ([]model.Pin, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+pinColumns+` FROM pins WHERE status <> ? ORDER BY created_at`,
		string(model.PinComplete),
	)
	if err != nil {
		return nil, fmt.Errorf("listing pins: %w", err)
	}
	defer rows.Close()

	var pins []model.Pin
	for rows.Next() {
		pin, err := scanPin(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning pin: %w", err)
		}
		pins = append(pins, *pin)
	}
	return pins, rows.Err()
}

func scanPin(row rowScanner) (*model.Pin, error) {
	pin := &model.Pin{}
	var imageCID, metadataCID sql.NullString
	var meta string
	if err := row.Scan(&pin.ID, &pin.Filename, &pin.Status, &imageCID, &meta, &metadataCID, &pin.CreatedAt, &pin.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(meta), &pin.Metadata); err != nil {
		return nil, fmt.Errorf("decoding pin metadata: %w", err)
	}
	pin.ImageCID = imageCID.String
	pin.MetadataCID = metadataCID.String
	return pin, nil
}
