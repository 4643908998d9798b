package main

import (
	"fmt"
	"net/url"

	"github.com/mliang/docspider"
	"github.com/mliang/docspider/crawl"
)

// Run executes the "articles new" command.
func (c *NewArticlesCmd) Run(deps *Dependencies) error {
	crawler, err := newArticleCrawler(deps, c.URL, c.Concurrency, c.RPS)
	if err != nil {
		return err
	}
	crawler.MissLimit = c.MissLimit

	stats, err := crawler.DiscoverNew(deps.Ctx)
	if stats != nil {
		fmt.Fprintf(deps.Stdout, "Scanned %d IDs: %d indexed, %d missing, %d failed\n",
			stats.Scanned, stats.Saved, stats.NotFound, stats.Failed)
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docspider.ErrorMessage(err))
		return err
	}
	return nil
}

// Run executes the "articles update" command.
func (c *UpdateArticlesCmd) Run(deps *Dependencies) error {
	crawler, err := newArticleCrawler(deps, c.URL, c.Concurrency, c.RPS)
	if err != nil {
		return err
	}
	crawler.UpdateLimit = c.Limit

	stats, err := crawler.UpdateAll(deps.Ctx)
	if stats != nil {
		fmt.Fprintf(deps.Stdout, "Re-fetched %d articles: %d updated, %d gone, %d failed\n",
			stats.Scanned, stats.Saved, stats.NotFound, stats.Failed)
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docspider.ErrorMessage(err))
		return err
	}
	return nil
}

func newArticleCrawler(deps *Dependencies, baseURL string, concurrency int, rps float64) (*crawl.ArticleCrawler, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Hostname() == "" {
		return nil, fmt.Errorf("invalid article base URL %q", baseURL)
	}

	var limiter docspider.DomainLimiter
	if rps > 0 {
		limiter = crawl.NewDomainLimiter(rps)
	}

	return &crawl.ArticleCrawler{
		Fetcher:     newArticleFetcher(baseURL, deps.Parser),
		Articles:    deps.Articles,
		Limiter:     limiter,
		Domain:      u.Host,
		Concurrency: concurrency,
		Logger:      deps.Logger,
	}, nil
}
