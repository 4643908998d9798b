package docspider

import "context"

// Article is a community article fetched by numeric ID. Unlike documentation
// pages, articles are keyed by their article ID rather than a URL hash.
type Article struct {
	ID               int    `json:"id"`
	URL              string `json:"url"`
	Title            string `json:"title"`
	Content          string `json:"content,omitempty"`
	PublishTimestamp int64  `json:"publishTimestamp,omitempty"`
	PublishDateStr   string `json:"publishDateStr"`
	Author           string `json:"author"`
	Views            int    `json:"views"`
	Likes            int    `json:"likes"`
}

// Validate returns an error if the article contains invalid fields.
func (a *Article) Validate() error {
	if a.ID <= 0 {
		return Errorf(EINVALID, "article ID must be positive")
	}
	if a.Title == "" {
		return Errorf(EINVALID, "article title required")
	}
	return nil
}

// ArticleFetcher retrieves a single article by ID.
//
// Error codes distinguish outcomes: ENOTFOUND for a missing article (HTTP
// 404, or a 200 page with no usable title), EUNAVAILABLE for server errors
// and network failures (transient, retry-eligible), EINVALID for other
// client errors.
type ArticleFetcher interface {
	FetchArticle(ctx context.Context, id int) (*Article, error)
}

// ArticleParser extracts an Article from a rendered article page.
// Returns ENOTFOUND for pages with no usable title (missing articles render
// an empty shell with HTTP 200).
type ArticleParser interface {
	Parse(html string, id int, url string) (*Article, error)
}

// ArticleResult holds a page of article search hits.
type ArticleResult struct {
	Hits          []*Article
	EstimatedHits int64
}

// ArticleService indexes and searches community articles.
type ArticleService interface {
	// SaveArticles upserts articles into the index in retried batches.
	SaveArticles(ctx context.Context, articles []*Article) error

	// MaxArticleID returns the highest article ID present in the index,
	// or 0 if the index is empty.
	MaxArticleID(ctx context.Context) (int, error)

	// ArticleIDs returns every article ID in the index, paging through
	// it up to the given limit.
	ArticleIDs(ctx context.Context, limit int) ([]int, error)

	// SearchArticles runs a full-text query against the index.
	SearchArticles(ctx context.Context, query string, opts SearchOptions) (*ArticleResult, error)
}
