package model

import "time"

// PinStatus tracks the two-step pinning saga.
type PinStatus string

// Pin statuses.
const (
	PinPending     PinStatus = "pending"
	PinImagePinned PinStatus = "image_pinned"
	PinComplete    PinStatus = "complete"
)

// Attribute is a single entry of the metadata attribute list.
type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     any    `json:"value"`
}

// Metadata is the JSON document pinned for an item.
type Metadata struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	ExternalURL string      `json:"external_url,omitempty"`
	Attributes  []Attribute `json:"attributes"`
	Image       string      `json:"image"`
}

// PinnedMetadata is the result of a completed pinning workflow.
type PinnedMetadata struct {
	PinID    string   `json:"pin_id"`
	CID      string   `json:"cid"`
	URL      string   `json:"url"`
	ImageCID string   `json:"image_cid"`
	Metadata Metadata `json:"metadata"`
}

// Pin is the persisted marker of a pinning workflow.
type Pin struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	Status      PinStatus `json:"status"`
	ImageCID    string    `json:"image_cid,omitempty"`
	Metadata    Metadata  `json:"metadata"`
	MetadataCID string    `json:"metadata_cid,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
