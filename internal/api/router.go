package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/mintmarket/internal/market"
	"github.com/erazemk/mintmarket/internal/metrics"
	"github.com/erazemk/mintmarket/internal/pinning"
)

// Deps are the services the API is built on.
type Deps struct {
	DB        *sql.DB
	Market    *market.Service
	Pinning   *pinning.Service
	Metrics   *metrics.Metrics
	JWTSecret string
}

// NewRouter creates the API router with all endpoints registered. The
// returned handler logs and measures every request.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: d.DB, Market: d.Market, JWTSecret: d.JWTSecret}
	itemsHandler := &ItemsHandler{Market: d.Market}
	accountsHandler := &AccountsHandler{Market: d.Market}
	collectionsHandler := &CollectionsHandler{Market: d.Market}
	pinsHandler := &PinsHandler{DB: d.DB, Pinning: d.Pinning}
	imagesHandler := &ImagesHandler{DB: d.DB}

	authMW := AuthMiddleware(d.JWTSecret, d.DB)

	// Auth.
	mux.HandleFunc("POST /api/auth/signup", authHandler.SignUp)
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Items: reads are public, mutations act as the token's account.
	mux.HandleFunc("GET /api/items", itemsHandler.List)
	mux.HandleFunc("GET /api/items/paginate", itemsHandler.Paginate)
	mux.HandleFunc("GET /api/items/price-range", itemsHandler.PriceRange)
	mux.HandleFunc("GET /api/items/{id}", itemsHandler.Get)
	mux.HandleFunc("GET /api/items/{id}/history", itemsHandler.GetHistory)
	mux.Handle("POST /api/items", authMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("POST /api/items/drafts", authMW(http.HandlerFunc(itemsHandler.CreateDraft)))
	mux.Handle("PUT /api/items/{id}/activate", authMW(http.HandlerFunc(itemsHandler.Activate)))
	mux.Handle("POST /api/items/{id}/list", authMW(http.HandlerFunc(itemsHandler.ListItem)))
	mux.Handle("POST /api/items/{id}/delist", authMW(http.HandlerFunc(itemsHandler.Delist)))
	mux.Handle("POST /api/items/{id}/buy", authMW(http.HandlerFunc(itemsHandler.Buy)))
	mux.Handle("POST /api/items/{id}/like", authMW(http.HandlerFunc(itemsHandler.Like)))

	// Accounts and collections.
	mux.HandleFunc("GET /api/accounts/{address}/items", accountsHandler.Items)
	mux.HandleFunc("GET /api/collections/paginate", collectionsHandler.Paginate)
	mux.HandleFunc("GET /api/collections/{name}", collectionsHandler.Get)

	// Pinning.
	mux.Handle("POST /api/pins", authMW(http.HandlerFunc(pinsHandler.Upload)))
	mux.Handle("GET /api/pins/pending", authMW(http.HandlerFunc(pinsHandler.Pending)))
	mux.Handle("POST /api/pins/{id}/reconcile", authMW(http.HandlerFunc(pinsHandler.Reconcile)))
	mux.HandleFunc("GET /api/images/{cid}/thumbnail", imagesHandler.Thumbnail)

	mux.Handle("GET /metrics", d.Metrics.Handler())

	return LoggingMiddleware(d.Metrics)(mux)
}
