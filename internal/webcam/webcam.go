// Package webcam fetches still snapshots of the panel from an HTTP camera.
package webcam

import (
	"context"
	"fmt"
	"image"
	"net/http"
	"time"

	// Snapshot formats served by common IP cameras.
	_ "image/jpeg"
	_ "image/png"
)

// Client fetches and decodes snapshot images from a camera URL.
type Client struct {
	url        string
	username   string
	password   string
	httpClient *http.Client
}

// New creates a snapshot client. Credentials are optional; when set they are
// sent as HTTP basic auth.
func New(url, username, password string) *Client {
	return &Client{
		url:        url,
		username:   username,
		password:   password,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Fetch retrieves one snapshot. Any failure means the image source is not
// ready and the sampling pass is skipped.
func (c *Client) Fetch(ctx context.Context) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot request: %w", err)
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("snapshot request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("snapshot returned status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	return img, nil
}
