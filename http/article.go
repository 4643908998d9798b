package http

import (
	"context"
	"fmt"
	"time"

	"github.com/mliang/docspider"
)

// Article fetch retry defaults.
const (
	DefaultArticleRetries   = 3
	DefaultArticleRetryBase = time.Second
)

// Compile-time interface verification.
var _ docspider.ArticleFetcher = (*ArticleFetcher)(nil)

// ArticleFetcher retrieves community articles by numeric ID over plain HTTP
// and parses them into Articles. Transient failures (network errors, 5xx)
// are retried with exponential backoff; a 404 or an empty shell page is
// reported as ENOTFOUND without retrying.
type ArticleFetcher struct {
	client    *Client
	parser    docspider.ArticleParser
	baseURL   string
	retries   int
	retryBase time.Duration
}

// ArticleOption configures an ArticleFetcher.
type ArticleOption func(*ArticleFetcher)

// WithArticleRetries sets the attempt count for transient failures.
func WithArticleRetries(n int) ArticleOption {
	return func(f *ArticleFetcher) {
		f.retries = n
	}
}

// WithArticleRetryBase sets the initial backoff delay.
func WithArticleRetryBase(d time.Duration) ArticleOption {
	return func(f *ArticleFetcher) {
		f.retryBase = d
	}
}

// NewArticleFetcher creates an ArticleFetcher. Article URLs are formed as
// baseURL/<id>.
func NewArticleFetcher(client *Client, parser docspider.ArticleParser, baseURL string, opts ...ArticleOption) *ArticleFetcher {
	f := &ArticleFetcher{
		client:    client,
		parser:    parser,
		baseURL:   baseURL,
		retries:   DefaultArticleRetries,
		retryBase: DefaultArticleRetryBase,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchArticle retrieves and parses a single article.
func (f *ArticleFetcher) FetchArticle(ctx context.Context, id int) (*docspider.Article, error) {
	url := fmt.Sprintf("%s/%d", f.baseURL, id)

	var html string
	var terminal error
	err := docspider.Retry(ctx, f.retries, f.retryBase, func() error {
		h, err := f.client.Get(ctx, url)
		if err != nil {
			switch docspider.ErrorCode(err) {
			case docspider.ENOTFOUND, docspider.EINVALID:
				// Definitive answer from the server; retrying
				// cannot change it.
				terminal = err
				return nil
			}
			return err
		}
		html = h
		return nil
	})
	if err != nil {
		return nil, err
	}
	if terminal != nil {
		return nil, terminal
	}

	return f.parser.Parse(html, id, url)
}
