package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"nomen/internal/config"
	"nomen/internal/errors"

	"golang.org/x/time/rate"
)

// Client is the shared HTTP client for all collectors. Every request
// waits on a politeness rate limiter before hitting the network, so a
// single Client can safely back several collectors against public APIs.
type Client struct {
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
}

// NewClient builds a collector client from configuration.
func NewClient(cfg config.CollectorConfig) *Client {
	return &Client{
		http:      &http.Client{Timeout: cfg.Timeout},
		limiter:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		userAgent: cfg.UserAgent,
	}
}

// GetBytes fetches url and returns the response body. Non-2xx statuses
// are errors.
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.New(errors.CodeExternalService,
			fmt.Sprintf("unexpected status %d from %s", resp.StatusCode, url))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.IOError("failed to read response body", err)
	}
	return body, nil
}

// GetJSON fetches url and decodes the JSON response into v.
func (c *Client) GetJSON(ctx context.Context, url string, v interface{}) error {
	body, err := c.GetBytes(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.Wrap(err, "failed to decode JSON response")
	}
	return nil
}
