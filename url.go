package docspider

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"time"
)

// URL lifecycle statuses. A record is created as StatusQueued when the URL is
// first discovered and moves to StatusCrawled or StatusError exactly once per
// crawl attempt.
const (
	StatusQueued  = "queued"
	StatusCrawled = "crawled"
	StatusError   = "error"
)

// URLID returns the stable identifier for a URL: the hex MD5 digest of the
// URL string. It is the sole join key between the frontier, the URL store,
// and the document index; raw URLs are never used as keys.
func URLID(url string) string {
	sum := md5.Sum([]byte(url))
	return hex.EncodeToString(sum[:])
}

// URLRecord tracks the crawl lifecycle of a single URL.
type URLRecord struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	Status       string    `json:"status"`
	CrawledAt    time.Time `json:"crawledAt,omitzero"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
}

// Validate returns an error if the record contains invalid fields.
func (r *URLRecord) Validate() error {
	if r.URL == "" {
		return Errorf(EINVALID, "URL record URL required")
	}
	switch r.Status {
	case StatusQueued, StatusCrawled, StatusError:
	default:
		return Errorf(EINVALID, "invalid URL record status %q", r.Status)
	}
	return nil
}

// URLStore persists URLRecords. It is the source of truth for deduplication
// and crash recovery; the in-memory frontier is always rebuilt from it.
//
// Implementations must make Upsert idempotent (last write wins, keyed by
// record ID) and must report connectivity failures with EUNAVAILABLE so the
// orchestrator can treat them as run-fatal.
type URLStore interface {
	// Exists reports whether a record for the URL exists, in any status.
	Exists(ctx context.Context, url string) (bool, error)

	// ExistsBatch reports existence for a batch of URLs in one query.
	// Implementations fall back to per-URL Exists calls if the batched
	// lookup fails, preserving correctness at a performance cost.
	ExistsBatch(ctx context.Context, urls []string) (map[string]bool, error)

	// Upsert writes a record, overwriting any previous record with the
	// same ID.
	Upsert(ctx context.Context, record *URLRecord) error

	// UpsertBatch writes a batch of records in one operation.
	UpsertBatch(ctx context.Context, records []*URLRecord) error

	// FindByStatus returns all records with the given status. Used to
	// rehydrate the frontier after a restart.
	FindByStatus(ctx context.Context, status string) ([]*URLRecord, error)
}

// Frontier manages the in-memory set of URLs awaiting a fetch attempt.
// The frontier is a subset of URLs whose persisted status is queued; it is
// never trusted to survive a crash in memory alone.
type Frontier interface {
	// Restore loads queued records from the URL store, drops any that are
	// blacklisted under the current configuration, and seeds the in-memory
	// set. Returns the number of URLs restored.
	Restore(ctx context.Context) (int, error)

	// Enqueue adds a URL if it is not already recorded. A blacklisted
	// URL is rejected with EINVALID, since a single enqueue is always
	// deliberate. Returns true if the URL was newly queued.
	Enqueue(ctx context.Context, url string) (bool, error)

	// EnqueueBatch adds candidate URLs using a single batched existence
	// check against the store. Returns the number newly queued.
	EnqueueBatch(ctx context.Context, urls []string) (int, error)

	// Take removes and returns one URL from the set.
	// The bool result is false if the frontier is empty.
	Take() (string, bool)

	// Len returns the number of URLs awaiting processing.
	Len() int
}
