package api

import (
	"net/http"

	"github.com/erazemk/mintmarket/internal/market"
	"github.com/erazemk/mintmarket/internal/model"
)

// ItemsHandler handles item queries and lifecycle operations. Mutations act
// as the account the bearer token was issued to.
type ItemsHandler struct {
	Market *market.Service
}

type listItemRequest struct {
	ListID int64  `json:"list_id"`
	Price  string `json:"price"`
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Market.FindAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// Paginate handles GET /api/items/paginate.
func (h *ItemsHandler) Paginate(w http.ResponseWriter, r *http.Request) {
	var f model.ItemFilter
	var err error
	if f.Page, err = queryInt(r, "page"); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if f.Limit, err = queryInt(r, "limit"); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if f.Skip, err = queryInt(r, "skip"); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if f.PriceFrom, err = queryFloat(r, "priceFrom"); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if f.PriceTo, err = queryFloat(r, "priceTo"); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	f.Search = r.URL.Query().Get("search")
	f.LikesOrder = r.URL.Query().Get("likesOrder")

	page, err := h.Market.FindPagination(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, page)
}

// PriceRange handles GET /api/items/price-range.
func (h *ItemsHandler) PriceRange(w http.ResponseWriter, r *http.Request) {
	pr, err := h.Market.FindPriceRange(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, pr)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.Market.FindByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// GetHistory handles GET /api/items/{id}/history.
func (h *ItemsHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.Market.History(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, history)
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Address = GetClaims(r.Context()).Address

	item, err := h.Market.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, item)
}

// CreateDraft handles POST /api/items/drafts. Drafts may be imported on
// behalf of addresses without an account, so the address comes from the
// body; an empty one defaults to the caller.
func (h *ItemsHandler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	var req model.CreateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Address == "" {
		req.Address = GetClaims(r.Context()).Address
	}

	item, err := h.Market.CreateDraft(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, item)
}

// Activate handles PUT /api/items/{id}/activate.
func (h *ItemsHandler) Activate(w http.ResponseWriter, r *http.Request) {
	var req model.ActivateRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Address = GetClaims(r.Context()).Address

	item, err := h.Market.Activate(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// ListItem handles POST /api/items/{id}/list.
func (h *ItemsHandler) ListItem(w http.ResponseWriter, r *http.Request) {
	var body listItemRequest
	if err := decodeJSON(r, &body); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Market.ListItem(r.Context(), model.ListRequest{
		ItemID:  r.PathValue("id"),
		ListID:  body.ListID,
		Price:   body.Price,
		Address: GetClaims(r.Context()).Address,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Delist handles POST /api/items/{id}/delist.
func (h *ItemsHandler) Delist(w http.ResponseWriter, r *http.Request) {
	item, err := h.Market.DelistItem(r.Context(), model.DelistRequest{
		ItemID:  r.PathValue("id"),
		Address: GetClaims(r.Context()).Address,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Buy handles POST /api/items/{id}/buy.
func (h *ItemsHandler) Buy(w http.ResponseWriter, r *http.Request) {
	item, err := h.Market.Buy(r.Context(), r.PathValue("id"), GetClaims(r.Context()).Address)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Like handles POST /api/items/{id}/like.
func (h *ItemsHandler) Like(w http.ResponseWriter, r *http.Request) {
	item, err := h.Market.LikeItem(r.Context(), r.PathValue("id"), GetClaims(r.Context()).Address)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}
