package crawl

import (
	"context"
	"sync"

	"github.com/mliang/docspider"
	"github.com/mliang/docspider/bloom"
)

// Frontier sizing defaults.
const (
	// frontierExpectedURLs is the expected number of URLs for Bloom filter sizing.
	frontierExpectedURLs = 100000
	// frontierFalsePositiveRate is the acceptable false positive rate for
	// the discovery tally. The filter only feeds reporting, so a false
	// positive skews the estimate and nothing else.
	frontierFalsePositiveRate = 0.01
)

// Compile-time interface verification.
var _ docspider.Frontier = (*Frontier)(nil)

// Frontier is an in-memory FIFO of URLs awaiting a fetch attempt, backed by
// a URL store that is the source of truth for deduplication. New URLs are
// persisted as queued before they become visible to Take, so a crash never
// loses a discovered URL.
//
// Dedup happens in two exact tiers: an in-process set of URLs whose store
// state is already known, then a batched store lookup for the rest. The set
// is exact rather than probabilistic so a collision can never drop a URL
// the store has no record of. A Bloom filter rides along as a
// memory-bounded tally of distinct URLs offered, for reporting only.
// It is safe for concurrent use by multiple goroutines.
type Frontier struct {
	store     docspider.URLStore
	blacklist *docspider.Blacklist

	mu      sync.Mutex
	seen    map[string]struct{}
	offered *bloom.SeenSet
	queue   []string
}

// NewFrontier creates a Frontier backed by the given store. URLs rejected by
// the blacklist are never queued or persisted.
func NewFrontier(store docspider.URLStore, blacklist *docspider.Blacklist) *Frontier {
	return &Frontier{
		store:     store,
		blacklist: blacklist,
		seen:      make(map[string]struct{}),
		offered:   bloom.NewSeenSet(frontierExpectedURLs, frontierFalsePositiveRate),
	}
}

// Restore rebuilds the in-memory queue from records whose persisted status is
// queued. Records that are blacklisted under the current configuration are
// skipped, which lets blacklist changes take effect across restarts without
// rewriting the store. Returns the number of URLs restored.
func (f *Frontier) Restore(ctx context.Context) (int, error) {
	records, err := f.store.FindByStatus(ctx, docspider.StatusQueued)
	if err != nil {
		return 0, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	restored := 0
	for _, r := range records {
		if f.blacklist.Blocked(r.URL) {
			continue
		}
		f.seen[r.URL] = struct{}{}
		f.offered.Mark(r.URL)
		f.queue = append(f.queue, r.URL)
		restored++
	}
	return restored, nil
}

// Enqueue adds a single URL. Unlike batch enqueues of discovered links,
// a single enqueue is deliberate, so a blacklisted URL is rejected with
// EINVALID instead of being silently dropped. Returns true if the URL was
// newly queued.
func (f *Frontier) Enqueue(ctx context.Context, url string) (bool, error) {
	if f.blacklist.Blocked(url) {
		return false, docspider.Errorf(docspider.EINVALID, "URL %q is blacklisted", url)
	}
	n, err := f.EnqueueBatch(ctx, []string{url})
	return n == 1, err
}

// EnqueueBatch adds candidate URLs. Blacklisted URLs and URLs whose store
// state this process already knows are dropped up front; everything else
// goes to the store in a single batched existence check, is persisted as
// queued, and only then becomes visible to Take. A URL is remembered as
// seen only once the store has answered for it, so a failed lookup or write
// leaves it eligible for a retry.
func (f *Frontier) EnqueueBatch(ctx context.Context, urls []string) (int, error) {
	f.mu.Lock()
	var candidates []string
	batch := make(map[string]struct{})
	for _, url := range urls {
		if f.blacklist.Blocked(url) {
			continue
		}
		if _, ok := f.seen[url]; ok {
			continue
		}
		if _, ok := batch[url]; ok {
			continue
		}
		batch[url] = struct{}{}
		f.offered.Mark(url)
		candidates = append(candidates, url)
	}
	f.mu.Unlock()

	if len(candidates) == 0 {
		return 0, nil
	}

	exists, err := f.store.ExistsBatch(ctx, candidates)
	if err != nil {
		return 0, err
	}

	var fresh []string
	var records []*docspider.URLRecord
	for _, url := range candidates {
		if exists[url] {
			continue
		}
		fresh = append(fresh, url)
		records = append(records, &docspider.URLRecord{
			ID:     docspider.URLID(url),
			URL:    url,
			Status: docspider.StatusQueued,
		})
	}

	if len(records) > 0 {
		if err := f.store.UpsertBatch(ctx, records); err != nil {
			return 0, err
		}
	}

	f.mu.Lock()
	for _, url := range candidates {
		f.seen[url] = struct{}{}
	}
	f.queue = append(f.queue, fresh...)
	f.mu.Unlock()

	return len(fresh), nil
}

// Take removes and returns one URL from the queue.
// The bool result is false if the frontier is empty.
func (f *Frontier) Take() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return "", false
	}
	url := f.queue[0]
	f.queue = f.queue[1:]
	return url, true
}

// Len returns the number of URLs awaiting processing.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Discovered returns an approximate count of distinct non-blacklisted URLs
// offered to the frontier, including ones rejected as already recorded.
func (f *Frontier) Discovered() uint {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.offered.EstimatedCount()
}
