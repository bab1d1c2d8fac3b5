package pinata

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return newClient(srv.Client(), srv.URL+"/", "test-jwt", rate.NewLimiter(rate.Inf, 1))
}

func TestPinFile(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/pinning/pinFileToIPFS" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-jwt" {
			t.Errorf("unexpected Authorization %q", got)
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if header.Filename != "cat-123" || string(data) != "pixels" {
			t.Errorf("unexpected upload %q %q", header.Filename, data)
		}
		if ct := header.Header.Get("Content-Type"); ct != "image/png" {
			t.Errorf("unexpected part content type %q", ct)
		}

		w.Write([]byte(`{"IpfsHash":"bafyimage","PinSize":6,"Timestamp":"2026-01-01T00:00:00Z","isDuplicate":false}`))
	})

	resp, err := c.PinFile(context.Background(), "cat-123", "image/png", []byte("pixels"))
	if err != nil {
		t.Fatalf("PinFile: %v", err)
	}
	if resp.IpfsHash != "bafyimage" || resp.PinSize != 6 || resp.Timestamp == "" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestPinJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pinning/pinJSONToIPFS" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body struct {
			PinataOptions struct {
				CIDVersion int `json:"cidVersion"`
			} `json:"pinataOptions"`
			PinataContent map[string]any `json:"pinataContent"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding body: %v", err)
			return
		}
		if body.PinataOptions.CIDVersion != 1 {
			t.Errorf("expected cidVersion 1, got %d", body.PinataOptions.CIDVersion)
		}
		if body.PinataContent["name"] != "Cat" {
			t.Errorf("unexpected content %v", body.PinataContent)
		}
		w.Write([]byte(`{"IpfsHash":"bafymeta"}`))
	})

	resp, err := c.PinJSON(context.Background(), map[string]string{"name": "Cat"})
	if err != nil {
		t.Fatalf("PinJSON: %v", err)
	}
	if resp.IpfsHash != "bafymeta" {
		t.Errorf("unexpected hash %q", resp.IpfsHash)
	}
}

func TestPinHTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"Invalid authentication"}`, http.StatusUnauthorized)
	})

	_, err := c.PinJSON(context.Background(), map[string]string{})
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *HTTPError, got %v", err)
	}
	if httpErr.StatusCode != http.StatusUnauthorized || httpErr.Body != `{"error":"Invalid authentication"}` {
		t.Errorf("unexpected error %+v", httpErr)
	}
}

func TestPinMissingHash(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	if _, err := c.PinJSON(context.Background(), nil); err == nil {
		t.Error("expected error for a response without IpfsHash")
	}
}

func TestRateLimiterHonorsCancellation(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	t.Cleanup(srv.Close)

	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	limiter.Allow() // drain the only token
	c := newClient(srv.Client(), srv.URL, "jwt", limiter)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := c.PinJSON(ctx, nil); err == nil {
		t.Fatal("expected the limiter wait to fail")
	}
	if called {
		t.Error("request must not be sent while throttled")
	}
}
