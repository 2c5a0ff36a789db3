// Package storage uploads generated assets to an S3-compatible HTTP blob
// store and returns their public URLs.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client uploads assets with plain HTTP PUT.
type Client struct {
	baseURL   string
	publicURL string
	authToken string
	http      *http.Client
}

// NewClient creates an asset storage client. publicURL is the URL prefix
// assets are served from; empty means assets are served from baseURL.
func NewClient(baseURL, publicURL, authToken string) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	if publicURL == "" {
		publicURL = baseURL
	}
	return &Client{
		baseURL:   baseURL,
		publicURL: strings.TrimRight(publicURL, "/"),
		authToken: authToken,
		http:      &http.Client{Timeout: 60 * time.Second},
	}
}

// Upload writes one asset and returns the URL it is served from.
func (c *Client) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	endpoint := c.baseURL + "/" + strings.TrimLeft(key, "/")
	req, err := http.NewRequestWithContext(ctx, "PUT", endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = int64(len(data))
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("storage error (status %d): %s", resp.StatusCode, string(body))
	}
	return c.publicURL + "/" + strings.TrimLeft(key, "/"), nil
}
