package crawl

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mliang/docspider"
	"golang.org/x/sync/errgroup"
)

// Article scan defaults.
const (
	// DefaultArticleConcurrency bounds in-flight article fetches.
	DefaultArticleConcurrency = 20
	// DefaultMissLimit is the number of consecutive missing IDs that ends
	// a discovery scan. Article IDs are dense but deleted articles leave
	// gaps, so a single miss never means the end of the ID space.
	DefaultMissLimit = 50
	// DefaultUpdateLimit caps how many existing articles one update pass
	// will re-fetch.
	DefaultUpdateLimit = 100000
)

// ArticleCrawler scans the ID-enumerated article space. DiscoverNew probes
// IDs above the highest one already indexed; UpdateAll re-fetches every
// article the index knows about.
type ArticleCrawler struct {
	Fetcher  docspider.ArticleFetcher
	Articles docspider.ArticleService

	// Limiter, when set, throttles fetches against Domain.
	Limiter docspider.DomainLimiter
	Domain  string

	Concurrency int
	MissLimit   int
	BatchSize   int
	UpdateLimit int
	Logger      *slog.Logger
}

// ArticleStats holds the outcome of an article scan.
type ArticleStats struct {
	Scanned  int
	Saved    int
	NotFound int
	Failed   int
}

// DiscoverNew probes article IDs upward from the highest indexed ID until it
// hits a run of consecutive missing IDs long enough to conclude the end of
// the published range. Found articles are indexed in batches as the scan
// proceeds. Transient fetch failures are counted but do not end the scan.
func (a *ArticleCrawler) DiscoverNew(ctx context.Context) (*ArticleStats, error) {
	missLimit := a.MissLimit
	if missLimit <= 0 {
		missLimit = DefaultMissLimit
	}
	logger := a.logger()

	maxID, err := a.Articles.MaxArticleID(ctx)
	if err != nil {
		return nil, fmt.Errorf("max article ID: %w", err)
	}
	logger.Info("discovering new articles", slog.Int("after_id", maxID))

	var stats ArticleStats
	misses := 0
	nextID := maxID + 1

	// Probe in windows sized to the miss limit so one fully-missing
	// window is enough to end the scan.
	for misses < missLimit {
		if ctx.Err() != nil {
			return &stats, ctx.Err()
		}

		window := a.fetchWindow(ctx, nextID, missLimit)
		nextID += missLimit

		var found []*docspider.Article
		for _, r := range window {
			if misses >= missLimit {
				break
			}
			stats.Scanned++
			switch {
			case r.err == nil:
				misses = 0
				found = append(found, r.article)
			case docspider.ErrorCode(r.err) == docspider.ENOTFOUND:
				misses++
				stats.NotFound++
			default:
				// A transient failure says nothing about whether
				// the ID exists, so the miss run is neither
				// extended nor reset.
				stats.Failed++
				logger.Warn("article fetch failed",
					slog.Int("id", r.id),
					slog.String("error", r.err.Error()),
				)
			}
		}

		if len(found) > 0 {
			if err := a.Articles.SaveArticles(ctx, found); err != nil {
				return &stats, fmt.Errorf("save articles: %w", err)
			}
			stats.Saved += len(found)
			logger.Info("articles indexed", slog.Int("count", len(found)))
		}
	}

	logger.Info("article discovery finished",
		slog.Int("scanned", stats.Scanned),
		slog.Int("saved", stats.Saved),
		slog.Int("not_found", stats.NotFound),
		slog.Int("failed", stats.Failed),
	)
	return &stats, nil
}

// UpdateAll re-fetches every indexed article to refresh titles, counters,
// and content. Articles that have since been deleted are reported as not
// found but keep their last indexed version.
func (a *ArticleCrawler) UpdateAll(ctx context.Context) (*ArticleStats, error) {
	updateLimit := a.UpdateLimit
	if updateLimit <= 0 {
		updateLimit = DefaultUpdateLimit
	}
	batchSize := a.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	logger := a.logger()

	ids, err := a.Articles.ArticleIDs(ctx, updateLimit)
	if err != nil {
		return nil, fmt.Errorf("list article IDs: %w", err)
	}
	logger.Info("updating articles", slog.Int("count", len(ids)))

	var stats ArticleStats
	var batch []*docspider.Article
	for start := 0; start < len(ids); start += batchSize {
		end := min(start+batchSize, len(ids))

		results := a.fetchIDs(ctx, ids[start:end])
		if ctx.Err() != nil {
			return &stats, ctx.Err()
		}

		batch = batch[:0]
		for _, r := range results {
			stats.Scanned++
			switch {
			case r.err == nil:
				batch = append(batch, r.article)
			case docspider.ErrorCode(r.err) == docspider.ENOTFOUND:
				stats.NotFound++
				logger.Info("article gone", slog.Int("id", r.id))
			default:
				stats.Failed++
				logger.Warn("article fetch failed",
					slog.Int("id", r.id),
					slog.String("error", r.err.Error()),
				)
			}
		}

		if len(batch) > 0 {
			if err := a.Articles.SaveArticles(ctx, batch); err != nil {
				return &stats, fmt.Errorf("save articles: %w", err)
			}
			stats.Saved += len(batch)
		}
	}

	logger.Info("article update finished",
		slog.Int("scanned", stats.Scanned),
		slog.Int("saved", stats.Saved),
		slog.Int("not_found", stats.NotFound),
		slog.Int("failed", stats.Failed),
	)
	return &stats, nil
}

// articleResult holds the outcome of fetching a single article ID.
type articleResult struct {
	id      int
	article *docspider.Article
	err     error
}

// fetchWindow fetches the IDs [start, start+size) concurrently and returns
// the results in ID order, which the miss counter depends on.
func (a *ArticleCrawler) fetchWindow(ctx context.Context, start, size int) []articleResult {
	ids := make([]int, size)
	for i := range ids {
		ids[i] = start + i
	}
	return a.fetchIDs(ctx, ids)
}

// fetchIDs fetches the given IDs with bounded concurrency, preserving order.
func (a *ArticleCrawler) fetchIDs(ctx context.Context, ids []int) []articleResult {
	concurrency := a.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultArticleConcurrency
	}

	// Each goroutine writes its own slot, so no lock is needed.
	results := make([]articleResult, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, id := range ids {
		g.Go(func() error {
			if a.Limiter != nil {
				if err := a.Limiter.Wait(gctx, a.Domain); err != nil {
					results[i] = articleResult{id: id, err: err}
					return nil
				}
			}
			article, err := a.Fetcher.FetchArticle(gctx, id)
			results[i] = articleResult{id: id, article: article, err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (a *ArticleCrawler) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.New(slog.DiscardHandler)
}
