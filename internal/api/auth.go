package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/mintmarket/internal/auth"
	"github.com/erazemk/mintmarket/internal/market"
	"github.com/erazemk/mintmarket/internal/model"
	"github.com/erazemk/mintmarket/internal/store"
)

// AuthHandler handles sign-up and logout.
type AuthHandler struct {
	DB        *sql.DB
	Market    *market.Service
	JWTSecret string
}

type signUpRequest struct {
	Address string `json:"address"`
}

type signUpResponse struct {
	Token   string         `json:"token"`
	Account *model.Account `json:"account"`
}

// SignUp handles POST /api/auth/signup. Signing up an address that already
// has an account returns a fresh token for it.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Address == "" {
		jsonError(w, http.StatusBadRequest, "address required")
		return
	}

	account, err := h.Market.SignUp(r.Context(), req.Address)
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, account.ID, account.Address)
	if err != nil {
		writeError(w, r, err)
		return
	}

	jsonResponse(w, http.StatusOK, signUpResponse{Token: token, Account: account})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	if err := store.RevokeToken(r.Context(), h.DB, claims.ID, claims.ExpiresAt.Time); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("account logged out", "address", claims.Address)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}
