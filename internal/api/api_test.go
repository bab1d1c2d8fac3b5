package api

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/erazemk/mintmarket/internal/db"
	"github.com/erazemk/mintmarket/internal/market"
	"github.com/erazemk/mintmarket/internal/metrics"
	"github.com/erazemk/mintmarket/internal/model"
	"github.com/erazemk/mintmarket/internal/pinata"
	"github.com/erazemk/mintmarket/internal/pinning"
)

const (
	testJWTSecret = "test-secret"

	alice = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	bob   = "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"
)

type fakeProvider struct {
	fileErr error
}

func (f *fakeProvider) PinFile(ctx context.Context, filename, contentType string, data []byte) (*pinata.PinResponse, error) {
	if f.fileErr != nil {
		return nil, f.fileErr
	}
	return &pinata.PinResponse{IpfsHash: "bafyimage", PinSize: int64(len(data))}, nil
}

func (f *fakeProvider) PinJSON(ctx context.Context, content any) (*pinata.PinResponse, error) {
	return &pinata.PinResponse{IpfsHash: "bafymeta"}, nil
}

func setupTestServer(t *testing.T, provider pinning.Provider) *httptest.Server {
	t.Helper()
	database := db.NewTestDB(t)
	m := metrics.New()

	svc := market.New(database, m, "Mintmarket", "Default items")
	if err := svc.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}

	pinner := &pinning.Service{
		DB:           database,
		Provider:     provider,
		GatewayURL:   "https://gateway.test/ipfs",
		MaxImageSize: 1 << 20,
		Metrics:      m,
	}

	router := NewRouter(Deps{
		DB:        database,
		Market:    svc,
		Pinning:   pinner,
		Metrics:   m,
		JWTSecret: testJWTSecret,
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func signUp(t *testing.T, server *httptest.Server, address string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"address": address})
	resp, err := http.Post(server.URL+"/api/auth/signup", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("signup request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("signup failed: %d", resp.StatusCode)
	}

	var out struct {
		Token string `json:"token"`
	}
	json.NewDecoder(resp.Body).Decode(&out)
	if out.Token == "" {
		t.Fatal("empty token from signup")
	}
	return out.Token
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader io.Reader = http.NoBody
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// do sends the request and decodes a JSON response into out, if given.
func do(t *testing.T, method, url, token string, body, out any) int {
	t.Helper()
	req, err := authRequest(method, url, token, body)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		json.NewDecoder(resp.Body).Decode(out)
	}
	return resp.StatusCode
}

func TestSignUpEndpoint(t *testing.T) {
	server := setupTestServer(t, &fakeProvider{})

	var errBody map[string]string
	status := do(t, "POST", server.URL+"/api/auth/signup", "", map[string]string{"address": "0x123"}, &errBody)
	if status != http.StatusUnprocessableEntity || errBody["error"] != "invalid_address" {
		t.Errorf("expected 422 invalid_address, got %d %v", status, errBody)
	}

	status = do(t, "POST", server.URL+"/api/auth/signup", "", map[string]string{}, nil)
	if status != http.StatusBadRequest {
		t.Errorf("expected 400 for missing address, got %d", status)
	}
}

func TestUnauthenticatedAccess(t *testing.T) {
	server := setupTestServer(t, &fakeProvider{})

	status := do(t, "POST", server.URL+"/api/items", "", map[string]string{"name": "A"}, nil)
	if status != http.StatusUnauthorized {
		t.Errorf("expected 401 for unauthenticated request, got %d", status)
	}

	status = do(t, "POST", server.URL+"/api/items", "not-a-token", map[string]string{"name": "A"}, nil)
	if status != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad token, got %d", status)
	}

	// Reads are public.
	status = do(t, "GET", server.URL+"/api/items", "", nil, nil)
	if status != http.StatusOK {
		t.Errorf("expected 200 for public read, got %d", status)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	server := setupTestServer(t, &fakeProvider{})
	token := signUp(t, server, alice)

	if status := do(t, "POST", server.URL+"/api/auth/logout", token, nil, nil); status != http.StatusOK {
		t.Fatalf("expected 200 from logout, got %d", status)
	}

	var errBody map[string]string
	status := do(t, "POST", server.URL+"/api/items", token, map[string]string{"name": "A"}, &errBody)
	if status != http.StatusUnauthorized || errBody["error"] != "token revoked" {
		t.Errorf("expected revoked token to be rejected, got %d %v", status, errBody)
	}
}

func TestItemsAPIFlow(t *testing.T) {
	server := setupTestServer(t, &fakeProvider{})
	aliceToken := signUp(t, server, alice)
	bobToken := signUp(t, server, bob)

	var item model.Item
	status := do(t, "POST", server.URL+"/api/items", aliceToken, map[string]any{
		"token_id": 1,
		"name":     "Sunrise",
		"royalty":  5,
		"image":    map[string]string{"url": "https://gateway.test/ipfs/img", "cid": "img"},
	}, &item)
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}
	if item.Owner == nil || item.Owner.Address != alice || item.CollectionName != "Mintmarket" {
		t.Errorf("unexpected created item %+v", item)
	}

	status = do(t, "POST", server.URL+"/api/items/"+item.ID+"/list", aliceToken,
		map[string]any{"list_id": 9, "price": "0.5"}, &item)
	if status != http.StatusOK || item.Status != model.StatusListed {
		t.Fatalf("expected listed item, got %d %+v", status, item)
	}

	var page model.Page[model.Item]
	status = do(t, "GET", server.URL+"/api/items/paginate?priceFrom=0.1&priceTo=1&search=sun", "", nil, &page)
	if status != http.StatusOK || page.TotalCount != 1 || len(page.Items) != 1 {
		t.Errorf("expected one matching item, got %d %+v", status, page)
	}

	status = do(t, "POST", server.URL+"/api/items/"+item.ID+"/buy", bobToken, nil, &item)
	if status != http.StatusOK || item.Owner.Address != bob || item.Status != model.StatusNotListed {
		t.Fatalf("expected bob to own the item, got %d %+v", status, item)
	}

	var errBody map[string]string
	status = do(t, "POST", server.URL+"/api/items/"+item.ID+"/list", aliceToken,
		map[string]any{"list_id": 10, "price": "1"}, &errBody)
	if status != http.StatusUnprocessableEntity || errBody["error"] != "not_item_owner" {
		t.Errorf("expected 422 not_item_owner, got %d %v", status, errBody)
	}

	var history []model.History
	status = do(t, "GET", server.URL+"/api/items/"+item.ID+"/history", "", nil, &history)
	if status != http.StatusOK || len(history) != 3 {
		t.Errorf("expected 3 history entries, got %d %d", status, len(history))
	}

	var owned []model.Item
	status = do(t, "GET", server.URL+"/api/accounts/"+strings.ToLower(bob)+"/items", "", nil, &owned)
	if status != http.StatusOK || len(owned) != 1 {
		t.Errorf("expected bob to own 1 item, got %d %d", status, len(owned))
	}
}

func TestListMissingItem(t *testing.T) {
	server := setupTestServer(t, &fakeProvider{})
	token := signUp(t, server, alice)

	var errBody map[string]string
	status := do(t, "POST", server.URL+"/api/items/123/list", token,
		map[string]any{"list_id": 1, "price": "1"}, &errBody)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
	if errBody["error"] != "The item with id 123 does not exist" {
		t.Errorf("unexpected message %q", errBody["error"])
	}
}

func TestPaginateRejectsBadParams(t *testing.T) {
	server := setupTestServer(t, &fakeProvider{})

	var errBody map[string]string
	status := do(t, "GET", server.URL+"/api/items/paginate?likesOrder=up", "", nil, &errBody)
	if status != http.StatusUnprocessableEntity || errBody["error"] != "invalid_likes_order" {
		t.Errorf("expected 422 invalid_likes_order, got %d %v", status, errBody)
	}

	status = do(t, "GET", server.URL+"/api/items/paginate?priceFrom=cheap", "", nil, nil)
	if status != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed price, got %d", status)
	}
}

func TestCollectionsEndpoints(t *testing.T) {
	server := setupTestServer(t, &fakeProvider{})

	var c model.Collection
	if status := do(t, "GET", server.URL+"/api/collections/Mintmarket", "", nil, &c); status != http.StatusOK || c.Name != "Mintmarket" {
		t.Errorf("expected default collection, got %d %+v", status, c)
	}

	if status := do(t, "GET", server.URL+"/api/collections/Nope", "", nil, nil); status != http.StatusNotFound {
		t.Errorf("expected 404, got %d", status)
	}

	var page model.Page[model.Collection]
	if status := do(t, "GET", server.URL+"/api/collections/paginate?limit=5", "", nil, &page); status != http.StatusOK || page.TotalCount != 1 || page.Limit != 5 {
		t.Errorf("unexpected collections page %d %+v", status, page)
	}
}

func uploadRequest(t *testing.T, url, token, filename string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, _ := mw.CreateFormFile("image", filename)
	part.Write(data)
	mw.WriteField("name", "Cat")
	mw.WriteField("attributes", `[{"trait_type":"eyes","value":"green"}]`)
	mw.Close()

	req, err := http.NewRequest("POST", url, &body)
	if err != nil {
		t.Fatalf("building upload: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func testPNG() []byte {
	var buf bytes.Buffer
	png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4)))
	return buf.Bytes()
}

func TestPinUploadStoresThumbnail(t *testing.T) {
	server := setupTestServer(t, &fakeProvider{})
	token := signUp(t, server, alice)

	resp, err := http.DefaultClient.Do(uploadRequest(t, server.URL+"/api/pins", token, "cat.png", testPNG()))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	var pinned model.PinnedMetadata
	json.NewDecoder(resp.Body).Decode(&pinned)
	resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if pinned.CID != "bafymeta" || pinned.Metadata.Image != "https://gateway.test/ipfs/bafyimage" {
		t.Errorf("unexpected pin result %+v", pinned)
	}
	if len(pinned.Metadata.Attributes) != 1 {
		t.Errorf("expected attributes to be forwarded, got %+v", pinned.Metadata.Attributes)
	}

	resp, err = http.Get(server.URL + "/api/images/bafyimage/thumbnail")
	if err != nil {
		t.Fatalf("thumbnail: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/jpeg" {
		t.Errorf("expected jpeg thumbnail, got %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}

	resp, _ = http.Get(server.URL + "/api/images/unknown/thumbnail")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown cid, got %d", resp.StatusCode)
	}
}

func TestPinUploadRejectsExtension(t *testing.T) {
	server := setupTestServer(t, &fakeProvider{})
	token := signUp(t, server, alice)

	resp, err := http.DefaultClient.Do(uploadRequest(t, server.URL+"/api/pins", token, "cat.bmp", testPNG()))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	var errBody map[string]string
	json.NewDecoder(resp.Body).Decode(&errBody)
	resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity || errBody["error"] != "file_extension_not_supported" {
		t.Errorf("expected 422 file_extension_not_supported, got %d %v", resp.StatusCode, errBody)
	}
}

func TestPinProviderFailure(t *testing.T) {
	server := setupTestServer(t, &fakeProvider{fileErr: &pinata.HTTPError{StatusCode: http.StatusUnauthorized, Body: "bad key"}})
	token := signUp(t, server, alice)

	resp, err := http.DefaultClient.Do(uploadRequest(t, server.URL+"/api/pins", token, "cat.png", testPNG()))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", resp.StatusCode)
	}

	var pending []model.Pin
	if status := do(t, "GET", server.URL+"/api/pins/pending", token, nil, &pending); status != http.StatusOK || len(pending) != 1 {
		t.Fatalf("expected one pending pin, got %d %d", status, len(pending))
	}

	var errBody map[string]string
	status := do(t, "POST", server.URL+"/api/pins/"+pending[0].ID+"/reconcile", token, nil, &errBody)
	if status != http.StatusUnprocessableEntity || errBody["error"] != "pin_not_recoverable" {
		t.Errorf("expected 422 pin_not_recoverable, got %d %v", status, errBody)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	server := setupTestServer(t, &fakeProvider{})
	do(t, "GET", server.URL+"/api/items", "", nil, nil)
	do(t, "GET", server.URL+"/api/items/nope", "", nil, nil)

	resp, err := http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	for _, want := range []string{
		`mintmarket_http_requests_total{method="GET",path="GET /api/items",status="200"} 1`,
		`mintmarket_http_requests_total{method="GET",path="GET /api/items/{id}",status="404"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %s", want)
		}
	}
}
