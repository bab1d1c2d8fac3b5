package model

import "github.com/erazemk/mintmarket/internal/apperr"

// Pagination defaults.
const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Sort orders for the likes column.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Page is one page of a paginated result.
type Page[T any] struct {
	TotalCount int `json:"total_count"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Items      []T `json:"items"`
}

// ItemFilter selects listed items for the marketplace grid.
type ItemFilter struct {
	Page       int
	Limit      int
	Skip       int
	PriceFrom  *float64
	PriceTo    *float64
	Search     string
	LikesOrder string
}

// HasPriceRange reports whether price filtering applies. Both bounds are
// required; a single bound disables price filtering entirely.
func (f *ItemFilter) HasPriceRange() bool {
	return f.PriceFrom != nil && f.PriceTo != nil
}

// Normalize fills defaults and validates the filter.
func (f *ItemFilter) Normalize() error {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit > MaxPageLimit {
		f.Limit = MaxPageLimit
	}
	if f.Skip <= 0 {
		f.Skip = (f.Page - 1) * f.Limit
	}

	switch f.LikesOrder {
	case "":
		f.LikesOrder = OrderDesc
	case OrderAsc, OrderDesc:
	default:
		return apperr.Business(apperr.InvalidLikesOrder)
	}

	if f.HasPriceRange() && *f.PriceFrom > *f.PriceTo {
		return apperr.Business(apperr.InvalidPriceRange)
	}
	return nil
}

// PageRequest selects one page of a plain listing.
type PageRequest struct {
	Page  int
	Limit int
}

// Normalize fills defaults and returns the row offset.
func (p *PageRequest) Normalize() int {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return (p.Page - 1) * p.Limit
}
