package docspider

import (
	"context"
	"time"
)

// Retry runs fn up to maxAttempts times, sleeping between attempts with
// exponential backoff starting at base (base, 2*base, 4*base, ...). It is an
// explicit bounded loop rather than recursive self-calls; the same helper
// serves fetch retries and index-write retries.
//
// The last error is returned after the final attempt. A canceled context
// ends the retry loop immediately.
func Retry(ctx context.Context, maxAttempts int, base time.Duration, fn func() error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	delay := base
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		if lastErr = fn(); lastErr == nil {
			return nil
		}
	}
	return lastErr
}
