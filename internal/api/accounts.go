package api

import (
	"net/http"

	"github.com/erazemk/mintmarket/internal/market"
)

// AccountsHandler handles account endpoints.
type AccountsHandler struct {
	Market *market.Service
}

// Items handles GET /api/accounts/{address}/items.
func (h *AccountsHandler) Items(w http.ResponseWriter, r *http.Request) {
	items, err := h.Market.FindByAccount(r.Context(), r.PathValue("address"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, items)
}
