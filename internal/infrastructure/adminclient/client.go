// Package adminclient is an HTTP client for the Tastegent API, used by admin
// tooling to drive the upload and image-association endpoints the web admin
// panel talks to.
package adminclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tastegent/tastegent/internal/domain"
)

// Phase-distinct sentinels: callers must be able to tell a failed upload
// (nothing stored) apart from a failed association (file stored but
// unreferenced).
var (
	ErrUploadFailed      = errors.New("upload failed")
	ErrAssociationFailed = errors.New("image association failed")
)

// Client is a Tastegent API client
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a new API client. token may be empty for public endpoints
// and can be set later via Authenticate.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Authenticate exchanges admin credentials for an access token via POST /token
// and keeps it for subsequent requests.
func (c *Client) Authenticate(ctx context.Context, username, password string) error {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("token request failed (status %d): %s", resp.StatusCode, string(body))
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return fmt.Errorf("token response contained no access token")
	}

	c.token = tokenResp.AccessToken
	return nil
}

// Upload posts a file to POST /upload as multipart form data. There is no
// automatic retry; the caller re-invokes explicitly after resetting its
// in-progress state.
func (c *Client) Upload(ctx context.Context, filename string, data []byte) (*domain.UploadResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/upload", &body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d: %s", ErrUploadFailed, resp.StatusCode, string(respBody))
	}

	var result domain.UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrUploadFailed, err)
	}
	return &result, nil
}

// AssociateImage binds an uploaded file's URL to a catalog entry via
// PUT /admin/menu/{id}/image. The endpoint mutates only the image field, so
// the call is idempotent per entry and safe to retry on its own.
func (c *Client) AssociateImage(ctx context.Context, itemID, imageURL string) error {
	payload, err := json.Marshal(map[string]string{"imageUrl": imageURL})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAssociationFailed, err)
	}

	endpoint := fmt.Sprintf("%s/admin/menu/%s/image", c.baseURL, itemID)
	req, err := http.NewRequestWithContext(ctx, "PUT", endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAssociationFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAssociationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status %d: %s", ErrAssociationFailed, resp.StatusCode, string(respBody))
	}
	return nil
}

// CreateMenuItem creates a catalog entry via POST /admin/menu
func (c *Client) CreateMenuItem(ctx context.Context, item *domain.MenuItem) (*domain.MenuItem, error) {
	payload, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal menu item: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/admin/menu", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("create failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	var created domain.MenuItem
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("failed to decode created item: %w", err)
	}
	return &created, nil
}

// ListMenu fetches the public catalog via GET /menu
func (c *Client) ListMenu(ctx context.Context) ([]*domain.MenuItem, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/menu", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("menu request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("menu request failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	var items []*domain.MenuItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode menu: %w", err)
	}
	return items, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
