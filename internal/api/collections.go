package api

import (
	"net/http"

	"github.com/erazemk/mintmarket/internal/market"
	"github.com/erazemk/mintmarket/internal/model"
)

// CollectionsHandler handles collection endpoints.
type CollectionsHandler struct {
	Market *market.Service
}

// Paginate handles GET /api/collections/paginate.
func (h *CollectionsHandler) Paginate(w http.ResponseWriter, r *http.Request) {
	var req model.PageRequest
	var err error
	if req.Page, err = queryInt(r, "page"); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Limit, err = queryInt(r, "limit"); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.Market.FindCollections(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, page)
}

// Get handles GET /api/collections/{name}.
func (h *CollectionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.Market.FindCollectionByName(r.Context(), r.PathValue("name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, c)
}
