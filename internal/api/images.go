package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/mintmarket/internal/store"
)

// ImagesHandler serves stored image thumbnails.
type ImagesHandler struct {
	DB *sql.DB
}

// Thumbnail handles GET /api/images/{cid}/thumbnail.
func (h *ImagesHandler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	cid := r.PathValue("cid")
	data, mime, err := store.GetThumbnail(r.Context(), h.DB, cid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no thumbnail")
		return
	}

	// Content under a CID never changes.
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Write(data)
}
