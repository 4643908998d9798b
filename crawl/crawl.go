// Package crawl provides documentation crawling orchestration.
// It coordinates the frontier, fetching, extraction, and batched indexing
// of documentation pages, plus the ID-enumerated article scans.
package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/mliang/docspider"
)

// Crawler defaults.
const (
	// DefaultConcurrency bounds the number of in-flight page fetches.
	DefaultConcurrency = 5
	// DefaultBatchSize is the number of documents buffered before an
	// index write.
	DefaultBatchSize = 50
)

// Crawler orchestrates the crawling of a documentation site. It drains the
// frontier with a bounded pool of fetch workers and funnels all state
// mutation through a single dispatch loop, so the frontier, the URL store
// writes, and the document buffer never race.
type Crawler struct {
	Fetcher   docspider.Fetcher
	Extractor docspider.Extractor
	Frontier  docspider.Frontier
	URLs      docspider.URLStore
	Documents docspider.DocumentService

	// Limiter, when set, throttles fetches per domain.
	Limiter docspider.DomainLimiter

	Concurrency int
	BatchSize   int
	Logger      *slog.Logger
}

// Stats holds the outcome of a crawl run.
type Stats struct {
	Processed int
	Succeeded int
	NotFound  int
	Failed    int
}

// pageResult holds the outcome of processing a single URL.
type pageResult struct {
	url  string
	page *docspider.Page
	err  error
}

// Run crawls from the seed URL until the frontier is empty. A frontier
// restored with pending work from a previous run takes precedence over the
// seed. Page-level failures are recorded and the run continues; a URL store
// outage or an exhausted index write aborts the run with the error.
func (c *Crawler) Run(ctx context.Context, seedURL string) (*Stats, error) {
	concurrency := c.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	batchSize := c.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	logger := c.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With(slog.String("run_id", uuid.NewString()))

	restored, err := c.Frontier.Restore(ctx)
	if err != nil {
		return nil, fmt.Errorf("restore frontier: %w", err)
	}
	if restored > 0 {
		logger.Info("resuming crawl", slog.Int("restored", restored))
	} else {
		queued, err := c.Frontier.Enqueue(ctx, seedURL)
		if err != nil {
			return nil, fmt.Errorf("enqueue seed: %w", err)
		}
		if !queued {
			logger.Info("seed already recorded, nothing to do", slog.String("url", seedURL))
			return &Stats{}, nil
		}
	}

	var stats Stats
	var buffer []*docspider.Document
	results := make(chan pageResult)
	active := 0

	for {
		for active < concurrency {
			url, ok := c.Frontier.Take()
			if !ok {
				break
			}
			active++
			go func() {
				page, err := c.processURL(ctx, url)
				results <- pageResult{url: url, page: page, err: err}
			}()
		}
		if active == 0 {
			break
		}

		res := <-results
		active--
		stats.Processed++

		if err := c.handleResult(ctx, logger, res, &stats, &buffer); err != nil {
			// Drain in-flight workers before surfacing the error so
			// none leak past the run.
			for active > 0 {
				<-results
				active--
			}
			return &stats, err
		}

		if len(buffer) >= batchSize {
			if err := c.flush(ctx, logger, &buffer); err != nil {
				for active > 0 {
					<-results
					active--
				}
				return &stats, err
			}
		}

		if ctx.Err() != nil {
			for active > 0 {
				<-results
				active--
			}
			return &stats, ctx.Err()
		}
	}

	if err := c.flush(ctx, logger, &buffer); err != nil {
		return &stats, err
	}

	logger.Info("crawl finished",
		slog.Int("processed", stats.Processed),
		slog.Int("succeeded", stats.Succeeded),
		slog.Int("not_found", stats.NotFound),
		slog.Int("failed", stats.Failed),
	)
	return &stats, nil
}

// processURL fetches and extracts a single page.
func (c *Crawler) processURL(ctx context.Context, pageURL string) (*docspider.Page, error) {
	if c.Limiter != nil {
		u, err := url.Parse(pageURL)
		if err != nil {
			return nil, docspider.Errorf(docspider.EINVALID, "invalid URL %q", pageURL)
		}
		if err := c.Limiter.Wait(ctx, u.Host); err != nil {
			return nil, err
		}
	}
	html, err := c.Fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return c.Extractor.Extract(html, pageURL)
}

// handleResult applies one completed fetch to the crawl state: it records
// the URL's terminal status, feeds discovered links back to the frontier,
// and buffers the document for the next index write. Store failures are
// run-fatal; everything else is per-page.
func (c *Crawler) handleResult(ctx context.Context, logger *slog.Logger, res pageResult, stats *Stats, buffer *[]*docspider.Document) error {
	now := time.Now().UTC()

	if res.err != nil {
		record := &docspider.URLRecord{
			ID:           docspider.URLID(res.url),
			URL:          res.url,
			Status:       docspider.StatusError,
			CrawledAt:    now,
			ErrorMessage: docspider.ErrorMessage(res.err),
		}
		switch docspider.ErrorCode(res.err) {
		case docspider.ENOTFOUND:
			stats.NotFound++
			logger.Info("page not found", slog.String("url", res.url))
		default:
			stats.Failed++
			logger.Warn("page failed",
				slog.String("url", res.url),
				slog.String("error", res.err.Error()),
			)
		}
		if err := c.URLs.Upsert(ctx, record); err != nil {
			return fmt.Errorf("record failure for %s: %w", res.url, err)
		}
		return nil
	}

	if err := c.URLs.Upsert(ctx, &docspider.URLRecord{
		ID:        docspider.URLID(res.url),
		URL:       res.url,
		Status:    docspider.StatusCrawled,
		CrawledAt: now,
	}); err != nil {
		return fmt.Errorf("record crawl of %s: %w", res.url, err)
	}

	queued, err := c.Frontier.EnqueueBatch(ctx, res.page.Links)
	if err != nil {
		return fmt.Errorf("enqueue links from %s: %w", res.url, err)
	}

	*buffer = append(*buffer, &docspider.Document{
		ID:          docspider.URLID(res.url),
		URL:         res.url,
		Title:       res.page.Title,
		Content:     res.page.ContentHTML,
		ContentHash: computeHash(res.page.ContentHTML),
		CrawledAt:   now,
	})

	stats.Succeeded++
	logger.Info("page crawled",
		slog.String("url", res.url),
		slog.String("title", res.page.Title),
		slog.Int("links_queued", queued),
	)
	return nil
}

// flush writes the buffered documents to the index and empties the buffer.
func (c *Crawler) flush(ctx context.Context, logger *slog.Logger, buffer *[]*docspider.Document) error {
	if len(*buffer) == 0 {
		return nil
	}
	if err := c.Documents.SaveDocuments(ctx, *buffer); err != nil {
		return fmt.Errorf("save %d documents: %w", len(*buffer), err)
	}
	logger.Info("documents indexed", slog.Int("count", len(*buffer)))
	*buffer = (*buffer)[:0]
	return nil
}

// computeHash computes a hash of the content using xxhash.
func computeHash(content string) string {
	h := xxhash.Sum64String(content)
	return fmt.Sprintf("%x", h)
}
