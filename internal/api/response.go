package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/mintmarket/internal/apperr"
	"github.com/erazemk/mintmarket/internal/pinata"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// writeError maps a service error to a response. Missing entities are 404
// with their message, broken domain rules are 422 with the reason code, and
// provider failures are 502. Anything else is logged and hidden behind a 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var nf *apperr.NotFoundError
	if errors.As(err, &nf) {
		jsonError(w, http.StatusNotFound, nf.Error())
		return
	}
	if reason, ok := apperr.ReasonOf(err); ok {
		jsonError(w, http.StatusUnprocessableEntity, string(reason))
		return
	}
	var he *pinata.HTTPError
	if errors.As(err, &he) {
		slog.Warn("pinning provider error", "path", r.URL.Path, "status", he.StatusCode)
		jsonError(w, http.StatusBadGateway, fmt.Sprintf("pinning provider returned %d", he.StatusCode))
		return
	}

	slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	jsonError(w, http.StatusInternalServerError, "internal error")
}

// queryInt parses an optional integer query parameter; absent means 0.
func queryInt(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return n, nil
}

// queryFloat parses an optional float query parameter; absent means nil.
func queryFloat(r *http.Request, name string) (*float64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s", name)
	}
	return &f, nil
}
