package docspider

import "context"

// DomainLimiter throttles outbound requests per domain.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain,
	// or the context is canceled.
	Wait(ctx context.Context, domain string) error
}

// Fetcher retrieves rendered HTML from URLs.
// Implementations may use browser automation to handle JavaScript-rendered
// content. Each Fetch owns exactly one page resource for its duration and
// releases it on every exit path.
type Fetcher interface {
	// Fetch navigates to the URL, waits for the page to become network
	// idle, and returns the rendered HTML. The context controls timeout
	// and cancellation; a timed-out navigation yields ETIMEOUT and a
	// failed one EUNAVAILABLE.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases all browser resources.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}
