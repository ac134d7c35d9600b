// internal/ads/client.go
package ads

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrNotFound reports that the data API has no ad with the requested id.
var ErrNotFound = errors.New("ad not found")

// Ad mirrors the data API's ad resource. The pipeline only mutates
// ThumbnailURL; everything else is round-tripped untouched.
type Ad struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title,omitempty"`
	Price        float64   `json:"price,omitempty"`
	CategoryID   int64     `json:"categoryId,omitempty"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	LastModified time.Time `json:"lastModified,omitempty"`
}

// Client talks to the ads data API with a bearer token obtained out-of-band.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient builds a client for baseURL. A nil httpClient falls back to a
// client with a 30s timeout.
func NewClient(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		http:    httpClient,
	}
}

// GetAd fetches a single ad by id.
func (c *Client) GetAd(ctx context.Context, id int64) (*Ad, error) {
	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("/api/ads/%d", id), nil)
	if err != nil {
		return nil, err
	}

	var ad Ad
	if err := c.do(req, &ad); err != nil {
		return nil, err
	}
	return &ad, nil
}

// UpdateAd replaces the ad with the given representation via PUT.
func (c *Client) UpdateAd(ctx context.Context, ad *Ad) error {
	body, err := json.Marshal(ad)
	if err != nil {
		return fmt.Errorf("marshal ad: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPut, fmt.Sprintf("/api/ads/%d", ad.ID), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, nil)
}

// ListAds returns every ad the API knows about. The reconciliation sweep
// filters the result client-side.
func (c *Client) ListAds(ctx context.Context) ([]Ad, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/ads", nil)
	if err != nil {
		return nil, err
	}

	var list []Ad
	if err := c.do(req, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s %s", ErrNotFound, req.Method, req.URL.Path)
	case resp.StatusCode >= 300:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", req.Method, req.URL.Path, err)
	}
	return nil
}
