// Package http provides plain-HTTP fetching for pages that do not need
// JavaScript rendering, such as community article pages.
package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/mliang/docspider"
)

// DefaultTimeout is the default timeout for HTTP requests.
const DefaultTimeout = 10 * time.Second

// DefaultUserAgent is sent with every request unless overridden.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Client retrieves page bodies over HTTP. Response statuses are classified
// into the application error taxonomy here, once, at the boundary: 404 is
// ENOTFOUND, 5xx is EUNAVAILABLE (transient, retry-eligible), other non-2xx
// statuses are EINVALID. Server errors are deliberately not treated as
// missing content.
type Client struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout. Defaults to DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		userAgent: DefaultUserAgent,
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.client = &http.Client{
		Timeout: c.timeout,
	}

	return c
}

// Get retrieves the body at url.
func (c *Client) Get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", docspider.Errorf(docspider.EINVALID, "building request for %s: %v", url, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", docspider.Errorf(docspider.ETIMEOUT, "request to %s timed out", url)
		}
		return "", docspider.Errorf(docspider.EUNAVAILABLE, "request to %s failed: %v", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	case resp.StatusCode == http.StatusNotFound:
		return "", docspider.Errorf(docspider.ENOTFOUND, "HTTP 404 for %s", url)
	case resp.StatusCode >= 500:
		return "", docspider.Errorf(docspider.EUNAVAILABLE, "HTTP %d for %s", resp.StatusCode, url)
	default:
		return "", docspider.Errorf(docspider.EINVALID, "HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", docspider.Errorf(docspider.EUNAVAILABLE, "reading body from %s: %v", url, err)
	}

	return string(body), nil
}
