// Package rod provides a headless-Chrome implementation of docspider.Fetcher
// for pages that only render their content through JavaScript.
package rod

import (
	"context"
	"errors"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/mliang/docspider"
)

// DefaultFetchTimeout bounds a single navigation, including the wait for
// network idle.
const DefaultFetchTimeout = 60 * time.Second

// DefaultUserAgent is sent with every request unless overridden.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Compile-time interface verification.
var _ docspider.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML using Chrome browser automation.
// Each Fetch opens a fresh page and closes it on every exit path, so a
// worker slot never leaks a browser tab. Fetcher is safe for concurrent use.
type Fetcher struct {
	manager *BrowserManager
	headers []string // flattened key/value pairs
	timeout time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout sets the per-navigation timeout.
// Defaults to DefaultFetchTimeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithHeader adds an extra HTTP header sent with every request.
func WithHeader(name, value string) Option {
	return func(f *Fetcher) {
		f.headers = append(f.headers, name, value)
	}
}

// WithCookie sets the Cookie header carrying session credentials for sites
// that require login.
func WithCookie(cookie string) Option {
	return WithHeader("Cookie", cookie)
}

// NewFetcher creates a Fetcher backed by a managed headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		headers: []string{"User-Agent", DefaultUserAgent},
		timeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}

	manager, err := NewBrowserManager()
	if err != nil {
		return nil, err
	}
	f.manager = manager

	return f, nil
}

// Fetch navigates to the URL, waits for the page to become network idle,
// and returns the rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	page, err := f.manager.Browser().Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", docspider.Errorf(docspider.EUNAVAILABLE, "opening browser page for %s: %v", url, err)
	}
	defer page.Close()

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	page = page.Context(ctx)

	if _, err := page.SetExtraHeaders(f.headers); err != nil {
		return "", f.navError(url, err)
	}

	// JS-heavy pages keep loading after the load event; network idle is
	// the page-ready signal.
	wait := page.WaitNavigation(proto.PageLifecycleEventNameNetworkIdle)
	if err := page.Navigate(url); err != nil {
		return "", f.navError(url, err)
	}
	wait()
	if err := ctx.Err(); err != nil {
		return "", f.navError(url, err)
	}

	html, err := page.HTML()
	if err != nil {
		return "", f.navError(url, err)
	}

	f.manager.PageDone()
	return html, nil
}

// Close releases browser resources.
func (f *Fetcher) Close() error {
	return f.manager.Close()
}

// navError classifies a navigation failure: deadline expiry is a timeout,
// anything else an unavailable page.
func (f *Fetcher) navError(url string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return docspider.Errorf(docspider.ETIMEOUT, "navigation to %s timed out after %s", url, f.timeout)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return docspider.Errorf(docspider.EUNAVAILABLE, "navigation to %s failed: %v", url, err)
}
