package model

// CollectionRequest names the collection an item should belong to. An empty
// name selects the default collection.
type CollectionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       *Image `json:"image,omitempty"`
}

// CreateItemRequest carries the fields of a new item.
type CreateItemRequest struct {
	Address           string            `json:"address"`
	TokenID           int64             `json:"token_id"`
	CollectionAddress string            `json:"collection_address"`
	Collection        CollectionRequest `json:"collection"`
	Name              string            `json:"name"`
	Description       string            `json:"description"`
	Price             *string           `json:"price,omitempty"`
	Royalty           int               `json:"royalty"`
	Image             Image             `json:"image"`
	Properties        []Property        `json:"properties,omitempty"`
	Voucher           *Voucher          `json:"voucher,omitempty"`
}

// ActivateRequest carries the fields set when a draft is activated.
type ActivateRequest struct {
	Address     string            `json:"address"`
	Collection  CollectionRequest `json:"collection"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Price       *string           `json:"price,omitempty"`
	Image       *Image            `json:"image,omitempty"`
	Voucher     *Voucher          `json:"voucher,omitempty"`
}

// ListRequest puts an item on sale.
type ListRequest struct {
	ItemID  string `json:"item_id"`
	ListID  int64  `json:"list_id"`
	Price   string `json:"price"`
	Address string `json:"address"`
}

// DelistRequest takes an item off sale.
type DelistRequest struct {
	ItemID  string `json:"item_id"`
	Address string `json:"address"`
}
