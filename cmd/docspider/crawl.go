package main

import (
	"fmt"
	"net/url"

	"github.com/mliang/docspider"
	"github.com/mliang/docspider/crawl"
)

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	seed, err := url.Parse(c.URL)
	if err != nil || seed.Hostname() == "" {
		return fmt.Errorf("invalid seed URL %q", c.URL)
	}

	blacklist := docspider.NewBlacklist(seed.Hostname(), c.Blacklist)

	var limiter docspider.DomainLimiter
	if c.RPS > 0 {
		limiter = crawl.NewDomainLimiter(c.RPS)
	}

	frontier := crawl.NewFrontier(deps.URLs, blacklist)
	crawler := &crawl.Crawler{
		Fetcher:     deps.Fetcher,
		Extractor:   deps.Extractor,
		Frontier:    frontier,
		URLs:        deps.URLs,
		Documents:   deps.Documents,
		Limiter:     limiter,
		Concurrency: c.Concurrency,
		BatchSize:   c.BatchSize,
		Logger:      deps.Logger,
	}

	stats, err := crawler.Run(deps.Ctx, c.URL)
	if stats != nil {
		fmt.Fprintf(deps.Stdout, "Crawled %d pages (~%d URLs discovered): %d indexed, %d missing, %d failed\n",
			stats.Processed, frontier.Discovered(), stats.Succeeded, stats.NotFound, stats.Failed)
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docspider.ErrorMessage(err))
		return err
	}
	return nil
}
