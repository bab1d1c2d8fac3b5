// Package pinata is a minimal client for the Pinata IPFS pinning API.
package pinata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// maxErrorBody caps how much of an error response is kept.
const maxErrorBody = 4 << 10

// PinResponse holds the fields consumed from a pin response. Anything else
// Pinata returns is ignored.
type PinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

// HTTPError is returned for any non-2xx response.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("pinata responded %d: %s", e.StatusCode, e.Body)
}

// Client pins files and JSON documents. Requests are throttled so bursts of
// uploads stay under the account's rate limit.
type Client struct {
	client  *http.Client
	baseURL string
	jwt     string
	limiter *rate.Limiter
}

// New returns a client for baseURL authenticating with jwt and issuing at
// most perSecond requests per second.
func New(baseURL, jwt string, perSecond float64) *Client {
	return newClient(
		&http.Client{Timeout: 60 * time.Second},
		baseURL, jwt,
		rate.NewLimiter(rate.Limit(perSecond), 1),
	)
}

func newClient(hc *http.Client, baseURL, jwt string, limiter *rate.Limiter) *Client {
	return &Client{
		client:  hc,
		baseURL: strings.TrimRight(baseURL, "/"),
		jwt:     jwt,
		limiter: limiter,
	}
}

// PinFile uploads data as a multipart "file" field named filename.
func (c *Client) PinFile(ctx context.Context, filename, contentType string, data []byte) (*PinResponse, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("creating file part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("writing file part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart body: %w", err)
	}

	return c.pin(ctx, "/pinning/pinFileToIPFS", mw.FormDataContentType(), &body)
}

type jsonPin struct {
	PinataOptions struct {
		CIDVersion int `json:"cidVersion"`
	} `json:"pinataOptions"`
	PinataContent any `json:"pinataContent"`
}

// PinJSON pins content as a JSON document with a CIDv1 address.
func (c *Client) PinJSON(ctx context.Context, content any) (*PinResponse, error) {
	var req jsonPin
	req.PinataOptions.CIDVersion = 1
	req.PinataContent = content

	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding json pin: %w", err)
	}
	return c.pin(ctx, "/pinning/pinJSONToIPFS", "application/json", bytes.NewReader(data))
}

func (c *Client) pin(ctx context.Context, path, contentType string, body io.Reader) (*PinResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+c.jwt)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	var out PinResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", path, err)
	}
	if out.IpfsHash == "" {
		return nil, fmt.Errorf("%s response has no IpfsHash", path)
	}
	return &out, nil
}
