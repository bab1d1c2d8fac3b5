package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/erazemk/mintmarket/internal/apperr"
	"github.com/erazemk/mintmarket/internal/imaging"
	"github.com/erazemk/mintmarket/internal/pinning"
	"github.com/erazemk/mintmarket/internal/store"
)

// multipartOverhead is the room left for form fields and part headers on
// top of the image size limit.
const multipartOverhead = 1 << 20

// PinsHandler handles image and metadata pinning.
type PinsHandler struct {
	DB      *sql.DB
	Pinning *pinning.Service
}

// Upload handles POST /api/pins. The form carries the image in "image" and
// the metadata fields name, description, external_url and attributes (a
// JSON array). A thumbnail of the image is stored under its CID.
func (h *PinsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.Pinning.MaxImageSize+multipartOverhead)

	if err := r.ParseMultipartForm(h.Pinning.MaxImageSize + multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, apperr.Business(apperr.FileSizeExceeded))
			return
		}
		jsonError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "failed to read image")
		return
	}

	d := pinning.Descriptor{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		ExternalURL: r.FormValue("external_url"),
	}
	if attrs := r.FormValue("attributes"); attrs != "" {
		if err := json.Unmarshal([]byte(attrs), &d.Attributes); err != nil {
			jsonError(w, http.StatusBadRequest, "attributes must be a JSON array")
			return
		}
	}

	result, err := h.Pinning.Upload(r.Context(), pinning.Image{Filename: header.Filename, Data: data}, d)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.saveThumbnail(r, result.ImageCID, data)
	jsonResponse(w, http.StatusCreated, result)
}

// saveThumbnail stores a thumbnail for a pinned image. The image is already
// pinned, so a failure here only loses the thumbnail.
func (h *PinsHandler) saveThumbnail(r *http.Request, cid string, data []byte) {
	thumb, err := imaging.Thumbnail(data)
	if err != nil {
		slog.Warn("thumbnail not generated", "cid", cid, "error", err)
		return
	}
	if err := store.SaveThumbnail(r.Context(), h.DB, cid, thumb.Data, thumb.MIME); err != nil {
		slog.Error("saving thumbnail", "cid", cid, "error", err)
	}
}

// Pending handles GET /api/pins/pending.
func (h *PinsHandler) Pending(w http.ResponseWriter, r *http.Request) {
	pins, err := h.Pinning.PendingPins(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, pins)
}

// Reconcile handles POST /api/pins/{id}/reconcile.
func (h *PinsHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	result, err := h.Pinning.Reconcile(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, result)
}
