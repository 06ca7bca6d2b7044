// Package images provides representative-photo lookup for catalogue items
// via an external image-search API.
package images

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go/v4"
)

// Searcher finds one representative image URL for a query.
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// ClientConfig holds configuration for the image-search client.
type ClientConfig struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries uint
	HTTPClient *http.Client // Optional (tests)
}

// Client implements Searcher against a Pexels-compatible search API.
type Client struct {
	apiKey     string
	baseURL    string
	maxRetries uint
	client     *http.Client
}

// NewClient creates a new image-search client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.pexels.com/v1"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 2
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		maxRetries: cfg.MaxRetries,
		client:     httpClient,
	}
}

type searchResponse struct {
	Photos []struct {
		Src struct {
			Medium string `json:"medium"`
		} `json:"src"`
	} `json:"photos"`
}

// Search returns the first matching photo URL for the query. Transient
// failures are retried with backoff; an empty result set is an error so the
// enrichment step can fall back to an empty image.
func (c *Client) Search(ctx context.Context, query string) (string, error) {
	endpoint := fmt.Sprintf("%s/search?query=%s&per_page=1", c.baseURL, url.QueryEscape(query))

	var result searchResponse
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Authorization", c.apiKey)

			resp, err := c.client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}

			if resp.StatusCode != http.StatusOK {
				err := fmt.Errorf("image search error (status %d): %s", resp.StatusCode, string(body))
				if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
					return err
				}
				return retry.Unrecoverable(err)
			}

			if err := json.Unmarshal(body, &result); err != nil {
				return retry.Unrecoverable(fmt.Errorf("failed to decode image search response: %w", err))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.maxRetries+1),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return "", err
	}

	if len(result.Photos) == 0 {
		return "", fmt.Errorf("no images found for %q", query)
	}
	return result.Photos[0].Src.Medium, nil
}

// Verify interface
var _ Searcher = (*Client)(nil)
