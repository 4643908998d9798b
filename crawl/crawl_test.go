package crawl_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mliang/docspider"
	"github.com/mliang/docspider/crawl"
	"github.com/mliang/docspider/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// site is a canned documentation site: raw HTML per URL plus the page the
// extractor produces for it.
type site map[string]*docspider.Page

func (s site) fetcher() *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(_ context.Context, url string) (string, error) {
			if _, ok := s[url]; !ok {
				return "", docspider.Errorf(docspider.EUNAVAILABLE, "no route to %s", url)
			}
			return "<html>" + url + "</html>", nil
		},
	}
}

func (s site) extractor() *mock.Extractor {
	return &mock.Extractor{
		ExtractFn: func(_ string, pageURL string) (*docspider.Page, error) {
			page, ok := s[pageURL]
			if !ok {
				return nil, docspider.Errorf(docspider.ENOTFOUND, "page not found")
			}
			return page, nil
		},
	}
}

// capturingDocs records every SaveDocuments call.
type capturingDocs struct {
	mu      sync.Mutex
	batches [][]*docspider.Document
	err     error
}

func (c *capturingDocs) service() *mock.DocumentService {
	return &mock.DocumentService{
		SaveDocumentsFn: func(_ context.Context, docs []*docspider.Document) error {
			c.mu.Lock()
			defer c.mu.Unlock()
			if c.err != nil {
				return c.err
			}
			batch := make([]*docspider.Document, len(docs))
			copy(batch, docs)
			c.batches = append(c.batches, batch)
			return nil
		},
	}
}

func (c *capturingDocs) all() []*docspider.Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*docspider.Document
	for _, b := range c.batches {
		out = append(out, b...)
	}
	return out
}

func TestCrawler_Run(t *testing.T) {
	t.Parallel()

	t.Run("crawls seed and discovered links, skipping blacklisted ones", func(t *testing.T) {
		t.Parallel()

		pages := site{
			"https://docs.example.com/": {
				Title: "Home",
				Links: []string{
					"https://docs.example.com/guide",
					"https://docs.example.com/workspace/settings",
				},
				ContentHTML: "<p>welcome</p>",
			},
			"https://docs.example.com/guide": {
				Title:       "Guide",
				Links:       []string{"https://docs.example.com/"},
				ContentHTML: "<p>guide</p>",
			},
		}
		store := newMemStore()
		docs := &capturingDocs{}
		c := &crawl.Crawler{
			Fetcher:   pages.fetcher(),
			Extractor: pages.extractor(),
			Frontier:  crawl.NewFrontier(store, testBlacklist()),
			URLs:      store,
			Documents: docs.service(),
		}

		stats, err := c.Run(context.Background(), "https://docs.example.com/")
		require.NoError(t, err)
		assert.Equal(t, 2, stats.Processed)
		assert.Equal(t, 2, stats.Succeeded)
		assert.Equal(t, 0, stats.Failed)

		assert.Equal(t, docspider.StatusCrawled, store.status("https://docs.example.com/"))
		assert.Equal(t, docspider.StatusCrawled, store.status("https://docs.example.com/guide"))
		assert.Equal(t, "", store.status("https://docs.example.com/workspace/settings"),
			"blacklisted URL should never reach the store")

		saved := docs.all()
		require.Len(t, saved, 2)
		for _, doc := range saved {
			assert.Equal(t, docspider.URLID(doc.URL), doc.ID)
			assert.NotEmpty(t, doc.ContentHash)
			assert.False(t, doc.CrawledAt.IsZero())
		}
	})

	t.Run("missing page is recorded as error without a document", func(t *testing.T) {
		t.Parallel()

		missing := "https://docs.example.com/gone"
		pages := site{
			"https://docs.example.com/": {
				Title:       "Home",
				Links:       []string{missing},
				ContentHTML: "<p>welcome</p>",
			},
		}
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				return "<html></html>", nil
			},
		}
		store := newMemStore()
		docs := &capturingDocs{}
		c := &crawl.Crawler{
			Fetcher:   fetcher,
			Extractor: pages.extractor(),
			Frontier:  crawl.NewFrontier(store, testBlacklist()),
			URLs:      store,
			Documents: docs.service(),
		}

		stats, err := c.Run(context.Background(), "https://docs.example.com/")
		require.NoError(t, err)
		assert.Equal(t, 2, stats.Processed)
		assert.Equal(t, 1, stats.Succeeded)
		assert.Equal(t, 1, stats.NotFound)
		assert.Equal(t, docspider.StatusError, store.status(missing))
		assert.Len(t, docs.all(), 1)
	})

	t.Run("transient fetch failure is recorded with its message", func(t *testing.T) {
		t.Parallel()

		flaky := "https://docs.example.com/flaky"
		pages := site{
			"https://docs.example.com/": {
				Title:       "Home",
				Links:       []string{flaky},
				ContentHTML: "<p>welcome</p>",
			},
		}
		store := newMemStore()
		docs := &capturingDocs{}
		c := &crawl.Crawler{
			Fetcher:   pages.fetcher(), // flaky is not in the site map
			Extractor: pages.extractor(),
			Frontier:  crawl.NewFrontier(store, testBlacklist()),
			URLs:      store,
			Documents: docs.service(),
		}

		stats, err := c.Run(context.Background(), "https://docs.example.com/")
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Failed)
		assert.Equal(t, docspider.StatusError, store.status(flaky))

		records, err := store.FindByStatus(context.Background(), docspider.StatusError)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Contains(t, records[0].ErrorMessage, "no route")
	})

	t.Run("never exceeds the concurrency bound", func(t *testing.T) {
		t.Parallel()

		const concurrency = 3
		const total = 20

		urls := make([]string, total)
		for i := range urls {
			urls[i] = fmt.Sprintf("https://docs.example.com/page-%d", i)
		}
		var mu sync.Mutex
		frontier := &mock.Frontier{
			RestoreFn: func(context.Context) (int, error) { return total, nil },
			EnqueueBatchFn: func(context.Context, []string) (int, error) {
				return 0, nil
			},
			TakeFn: func() (string, bool) {
				mu.Lock()
				defer mu.Unlock()
				if len(urls) == 0 {
					return "", false
				}
				url := urls[0]
				urls = urls[1:]
				return url, true
			},
			LenFn: func() int { return len(urls) },
		}

		var inFlight, peak atomic.Int32
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				n := inFlight.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				inFlight.Add(-1)
				return "<html></html>", nil
			},
		}
		extractor := &mock.Extractor{
			ExtractFn: func(_ string, pageURL string) (*docspider.Page, error) {
				return &docspider.Page{Title: pageURL}, nil
			},
		}
		store := newMemStore()
		docs := &capturingDocs{}
		c := &crawl.Crawler{
			Fetcher:     fetcher,
			Extractor:   extractor,
			Frontier:    frontier,
			URLs:        store,
			Documents:   docs.service(),
			Concurrency: concurrency,
		}

		stats, err := c.Run(context.Background(), "unused")
		require.NoError(t, err)
		assert.Equal(t, total, stats.Processed)
		assert.LessOrEqual(t, peak.Load(), int32(concurrency))
		assert.Equal(t, total, len(docs.all()))
	})

	t.Run("flushes documents in configured batch sizes", func(t *testing.T) {
		t.Parallel()

		pages := site{}
		var links []string
		for i := range 5 {
			url := fmt.Sprintf("https://docs.example.com/p%d", i)
			links = append(links, url)
			pages[url] = &docspider.Page{Title: url, ContentHTML: "<p>x</p>"}
		}
		pages["https://docs.example.com/"] = &docspider.Page{
			Title: "Home", Links: links, ContentHTML: "<p>home</p>",
		}

		store := newMemStore()
		docs := &capturingDocs{}
		c := &crawl.Crawler{
			Fetcher:     pages.fetcher(),
			Extractor:   pages.extractor(),
			Frontier:    crawl.NewFrontier(store, testBlacklist()),
			URLs:        store,
			Documents:   docs.service(),
			Concurrency: 1,
			BatchSize:   2,
		}

		stats, err := c.Run(context.Background(), "https://docs.example.com/")
		require.NoError(t, err)
		assert.Equal(t, 6, stats.Succeeded)
		assert.Len(t, docs.all(), 6)
		for _, batch := range docs.batches {
			assert.LessOrEqual(t, len(batch), 2)
		}
	})

	t.Run("aborts the run when an index write fails", func(t *testing.T) {
		t.Parallel()

		pages := site{
			"https://docs.example.com/": {Title: "Home", ContentHTML: "<p>x</p>"},
		}
		store := newMemStore()
		docs := &capturingDocs{err: docspider.Errorf(docspider.EUNAVAILABLE, "index down")}
		c := &crawl.Crawler{
			Fetcher:   pages.fetcher(),
			Extractor: pages.extractor(),
			Frontier:  crawl.NewFrontier(store, testBlacklist()),
			URLs:      store,
			Documents: docs.service(),
		}

		_, err := c.Run(context.Background(), "https://docs.example.com/")
		require.Error(t, err)
		assert.Equal(t, docspider.EUNAVAILABLE, docspider.ErrorCode(err))
	})

	t.Run("resumes pending work instead of the seed", func(t *testing.T) {
		t.Parallel()

		pending := "https://docs.example.com/pending"
		pages := site{
			pending: {Title: "Pending", ContentHTML: "<p>x</p>"},
		}
		store := newMemStore()
		ctx := context.Background()
		require.NoError(t, store.Upsert(ctx, &docspider.URLRecord{
			ID:     docspider.URLID(pending),
			URL:    pending,
			Status: docspider.StatusQueued,
		}))

		docs := &capturingDocs{}
		c := &crawl.Crawler{
			Fetcher:   pages.fetcher(),
			Extractor: pages.extractor(),
			Frontier:  crawl.NewFrontier(store, testBlacklist()),
			URLs:      store,
			Documents: docs.service(),
		}

		stats, err := c.Run(ctx, "https://docs.example.com/never-fetched")
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Processed)
		assert.Equal(t, docspider.StatusCrawled, store.status(pending))
		assert.Equal(t, "", store.status("https://docs.example.com/never-fetched"),
			"seed is skipped when pending work was restored")
	})

	t.Run("blacklisted seed fails the run", func(t *testing.T) {
		t.Parallel()

		store := newMemStore()
		docs := &capturingDocs{}
		c := &crawl.Crawler{
			Fetcher:   (site{}).fetcher(),
			Extractor: (site{}).extractor(),
			Frontier:  crawl.NewFrontier(store, testBlacklist()),
			URLs:      store,
			Documents: docs.service(),
		}

		_, err := c.Run(context.Background(), "https://docs.example.com/workspace/home")
		require.Error(t, err)
		assert.Equal(t, docspider.EINVALID, docspider.ErrorCode(err))
		assert.Contains(t, docspider.ErrorMessage(err), "blacklisted")
	})

	t.Run("already-crawled seed ends the run immediately", func(t *testing.T) {
		t.Parallel()

		seed := "https://docs.example.com/"
		store := newMemStore()
		ctx := context.Background()
		require.NoError(t, store.Upsert(ctx, &docspider.URLRecord{
			ID:     docspider.URLID(seed),
			URL:    seed,
			Status: docspider.StatusCrawled,
		}))

		docs := &capturingDocs{}
		c := &crawl.Crawler{
			Fetcher:   (site{}).fetcher(),
			Extractor: (site{}).extractor(),
			Frontier:  crawl.NewFrontier(store, testBlacklist()),
			URLs:      store,
			Documents: docs.service(),
		}

		stats, err := c.Run(ctx, seed)
		require.NoError(t, err)
		assert.Equal(t, 0, stats.Processed)
	})
}
