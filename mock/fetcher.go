package mock

import (
	"context"

	"github.com/mliang/docspider"
)

var _ docspider.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of docspider.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	if f.CloseFn == nil {
		return nil
	}
	return f.CloseFn()
}

var _ docspider.ArticleFetcher = (*ArticleFetcher)(nil)

// ArticleFetcher is a mock implementation of docspider.ArticleFetcher.
type ArticleFetcher struct {
	FetchArticleFn func(ctx context.Context, id int) (*docspider.Article, error)
}

func (f *ArticleFetcher) FetchArticle(ctx context.Context, id int) (*docspider.Article, error) {
	return f.FetchArticleFn(ctx, id)
}
