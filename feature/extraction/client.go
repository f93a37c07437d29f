package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"listing-vault/feature/vault/models"

	"go.uber.org/zap"
)

// AuthError reports a missing or invalid credential. It is fatal for an
// extraction run: nothing is fetched when it occurs.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return "authentication failed: " + e.Reason
}

// RemoteListing is one raw listing item as returned by the marketplace API.
type RemoteListing struct {
	ID             json.Number   `json:"id"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	Price          models.Price  `json:"price"`
	Photos         models.Photos `json:"photos"`
	URL            string        `json:"url"`
	Size           string        `json:"size_title"`
	Brand          string        `json:"brand_title"`
	ViewCount      int           `json:"view_count"`
	FavouriteCount int           `json:"favourite_count"`
	// CreatedAtTS is the remote creation timestamp; the API sends seconds
	// on some endpoints and millis on others.
	CreatedAtTS int64 `json:"created_at_ts"`
}

// ExternalID returns the remote identifier as a string, empty if absent.
func (r *RemoteListing) ExternalID() string {
	return r.ID.String()
}

// Pagination is the paging metadata of a listings page.
type Pagination struct {
	TotalPages   int `json:"total_pages"`
	TotalEntries int `json:"total_entries"`
}

type pageResponse struct {
	Items      []RemoteListing `json:"items"`
	Pagination Pagination      `json:"pagination"`
}

type deleteResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
	Error   string `json:"error"`
}

// Client talks to the marketplace API over the account's session cookie.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new marketplace client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
		logger: logger,
	}
}

// CheckCredentials verifies that the client has everything it needs to make
// authenticated calls. It returns an *AuthError when something is missing.
func (c *Client) CheckCredentials() error {
	if c.cfg.SessionToken == "" {
		return &AuthError{Reason: "missing session token, log in to the marketplace first"}
	}
	if c.cfg.UserID == "" {
		return &AuthError{Reason: "missing user id"}
	}
	return nil
}

// FetchPage retrieves one page of the account's listings together with the
// pagination metadata observed on that page.
func (c *Client) FetchPage(ctx context.Context, page int) ([]RemoteListing, Pagination, error) {
	perPage := c.cfg.PerPage
	if perPage <= 0 {
		perPage = 20
	}

	url := fmt.Sprintf("%s/api/v2/users/%s/items?page=%d&per_page=%d&order=relevance",
		c.cfg.BaseURL, c.cfg.UserID, page, perPage)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("create page request: %w", err)
	}
	c.setSessionHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("fetch page %d: %w", page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, Pagination{}, fmt.Errorf("fetch page %d: unexpected status %d", page, resp.StatusCode)
	}

	var pr pageResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, Pagination{}, fmt.Errorf("decode page %d: %w", page, err)
	}

	return pr.Items, pr.Pagination, nil
}

// FetchImage downloads raw image bytes from a photo URL. The returned string
// is the Content-Type header, which may be empty.
func (c *Client) FetchImage(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create image request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("fetch image: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read image body: %w", err)
	}

	return data, resp.Header.Get("Content-Type"), nil
}

// DeleteRemoteListing asks the marketplace to delete a listing. The call is
// authenticated with the session cookie plus the CSRF and anonymous ids.
func (c *Client) DeleteRemoteListing(ctx context.Context, externalID string) error {
	url := fmt.Sprintf("%s/api/v2/items/%s/delete", c.cfg.BaseURL, externalID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return fmt.Errorf("create delete request: %w", err)
	}
	c.setSessionHeaders(req)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("X-Csrf-Token", c.cfg.CSRFToken)
	req.Header.Set("X-Anon-Id", c.cfg.AnonID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete listing %s: %w", externalID, err)
	}
	defer resp.Body.Close()

	var dr deleteResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil && resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return fmt.Errorf("decode delete response for %s: %w", externalID, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if dr.Error != "" {
			return fmt.Errorf("delete listing %s: status %d: %s", externalID, resp.StatusCode, dr.Error)
		}
		return fmt.Errorf("delete listing %s: unexpected status %d", externalID, resp.StatusCode)
	}

	if !dr.Success && dr.Status != "ok" {
		return fmt.Errorf("delete listing %s: remote refused the deletion", externalID)
	}

	return nil
}

func (c *Client) setSessionHeaders(req *http.Request) {
	req.Header.Set("Cookie", fmt.Sprintf("%s=%s", c.cfg.SessionCookie, c.cfg.SessionToken))
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
}
