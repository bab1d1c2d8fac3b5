package model

import (
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/erazemk/mintmarket/internal/apperr"
)

// Limits on item attributes.
const (
	MaxNameLength = 100
	MaxRoyalty    = 10
)

// Item is a marketplace record for a unique digital asset.
type Item struct {
	ID                string      `json:"id"`
	TokenID           int64       `json:"token_id"`
	ListID            *int64      `json:"list_id,omitempty"`
	CollectionID      string      `json:"collection_id"`
	CollectionName    string      `json:"collection_name,omitempty"`
	CollectionAddress string      `json:"collection_address"`
	Name              string      `json:"name"`
	Description       string      `json:"description"`
	Price             *string     `json:"price,omitempty"`
	Royalty           int         `json:"royalty"`
	Status            ItemStatus  `json:"status"`
	Likes             int         `json:"likes"`
	Author            *AccountRef `json:"author,omitempty"`
	Owner             *AccountRef `json:"owner,omitempty"`
	Image             Image       `json:"image"`
	Version           int64       `json:"-"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`

	// Loaded on demand.
	History    []History  `json:"history,omitempty"`
	Properties []Property `json:"properties,omitempty"`
	Voucher    *Voucher   `json:"voucher,omitempty"`
}

// OwnerID returns the current owner's account id, or "" for ownerless drafts.
func (i *Item) OwnerID() string {
	if i.Owner == nil {
		return ""
	}
	return i.Owner.ID
}

// Image is the single image attached to an item.
type Image struct {
	URL string `json:"url"`
	CID string `json:"cid,omitempty"`
}

// Property is a key/value trait of an item.
type Property struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Voucher is an opaque signed artifact enabling deferred on-chain minting.
type Voucher struct {
	TokenID   int64  `json:"token_id"`
	MinPrice  string `json:"min_price"`
	URI       string `json:"uri"`
	Signature string `json:"signature"`
}

// PriceRange is the cheapest and most expensive listed price.
type PriceRange struct {
	From float64 `json:"from"`
	To   float64 `json:"to"`
}

var decimalRe = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// ValidatePrice checks that price is a non-negative decimal string.
func ValidatePrice(price string) error {
	if !decimalRe.MatchString(price) {
		return apperr.Business(apperr.InvalidPrice)
	}
	return nil
}

// ValidateName checks the item name length.
func ValidateName(name string) error {
	if utf8.RuneCountInString(name) > MaxNameLength {
		return apperr.Business(apperr.NameTooLong)
	}
	return nil
}

// ValidateRoyalty checks that royalty is within [0, MaxRoyalty].
func ValidateRoyalty(royalty int) error {
	if royalty < 0 || royalty > MaxRoyalty {
		return apperr.Business(apperr.InvalidRoyalty)
	}
	return nil
}
