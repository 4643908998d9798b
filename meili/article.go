package meili

import (
	"context"
	"log/slog"

	"github.com/meilisearch/meilisearch-go"
	"github.com/mliang/docspider"
)

// DefaultArticleIndex is the index holding community articles.
const DefaultArticleIndex = "articles"

// articleIDPageSize is how many IDs are fetched per page when enumerating
// the index.
const articleIDPageSize = 1000

var articleSettings = IndexSettings{
	PrimaryKey: "id",
	Filterable: []string{"id", "author"},
	Sortable:   []string{"id", "publishTimestamp"},
}

// Compile-time interface verification.
var _ docspider.ArticleService = (*ArticleService)(nil)

// ArticleService indexes and searches community articles keyed by their
// numeric article ID.
type ArticleService struct {
	client    *Client
	index     string
	batchSize int
	retries   int
	logger    *slog.Logger
}

// ArticleServiceOption configures an ArticleService.
type ArticleServiceOption func(*ArticleService)

// WithArticleBatchSize overrides the chunk size for batch writes.
func WithArticleBatchSize(n int) ArticleServiceOption {
	return func(s *ArticleService) {
		s.batchSize = n
	}
}

// WithArticleRetries overrides the per-chunk retry attempt count.
func WithArticleRetries(n int) ArticleServiceOption {
	return func(s *ArticleService) {
		s.retries = n
	}
}

// WithArticleLogger attaches a logger for batch progress.
func WithArticleLogger(logger *slog.Logger) ArticleServiceOption {
	return func(s *ArticleService) {
		s.logger = logger
	}
}

// NewArticleService creates an ArticleService writing to the given index.
func NewArticleService(client *Client, index string, opts ...ArticleServiceOption) *ArticleService {
	if index == "" {
		index = DefaultArticleIndex
	}
	s := &ArticleService{
		client:    client,
		index:     index,
		batchSize: DefaultBatchSize,
		retries:   DefaultRetryAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SaveArticles upserts articles into the index in retried batches.
// The index is created on first use.
func (s *ArticleService) SaveArticles(ctx context.Context, articles []*docspider.Article) error {
	if len(articles) == 0 {
		return nil
	}
	for _, a := range articles {
		if err := a.Validate(); err != nil {
			return err
		}
	}
	if err := s.client.EnsureIndex(ctx, s.index, articleSettings); err != nil {
		return err
	}
	return addInBatches(ctx, s.client, s.index, articles, s.batchSize, s.retries, s.logger)
}

// MaxArticleID returns the highest article ID present in the index, or 0 if
// the index is empty or missing.
func (s *ArticleService) MaxArticleID(ctx context.Context) (int, error) {
	resp, err := s.client.sm.Index(s.index).SearchWithContext(ctx, "", &meilisearch.SearchRequest{
		Limit: 1,
		Sort:  []string{"id:desc"},
	})
	if err != nil {
		mapped := mapError(err)
		if docspider.ErrorCode(mapped) == docspider.ENOTFOUND {
			return 0, nil
		}
		return 0, mapped
	}
	if len(resp.Hits) == 0 {
		return 0, nil
	}

	hits, err := decodeHits[docspider.Article](resp.Hits[:1])
	if err != nil {
		return 0, err
	}
	return hits[0].ID, nil
}

// ArticleIDs returns every article ID in the index, paging through it until
// exhausted or the limit is reached.
func (s *ArticleService) ArticleIDs(ctx context.Context, limit int) ([]int, error) {
	var ids []int
	index := s.client.sm.Index(s.index)

	for offset := int64(0); limit <= 0 || len(ids) < limit; offset += articleIDPageSize {
		var res meilisearch.DocumentsResult
		err := index.GetDocumentsWithContext(ctx, &meilisearch.DocumentsQuery{
			Fields: []string{"id"},
			Offset: offset,
			Limit:  articleIDPageSize,
		}, &res)
		if err != nil {
			mapped := mapError(err)
			if docspider.ErrorCode(mapped) == docspider.ENOTFOUND {
				return ids, nil
			}
			return nil, mapped
		}
		if len(res.Results) == 0 {
			break
		}
		for _, doc := range res.Results {
			if id, ok := doc["id"].(float64); ok {
				ids = append(ids, int(id))
			}
		}
	}

	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// SearchArticles runs a full-text query against the index.
func (s *ArticleService) SearchArticles(ctx context.Context, query string, opts docspider.SearchOptions) (*docspider.ArticleResult, error) {
	req := &meilisearch.SearchRequest{
		Offset: opts.Offset,
		Limit:  opts.Limit,
		Sort:   opts.Sort,
	}
	if opts.Filter != "" {
		req.Filter = opts.Filter
	}

	resp, err := s.client.sm.Index(s.index).SearchWithContext(ctx, query, req)
	if err != nil {
		return nil, mapError(err)
	}

	hits, err := decodeHits[docspider.Article](resp.Hits)
	if err != nil {
		return nil, err
	}
	return &docspider.ArticleResult{
		Hits:          hits,
		EstimatedHits: resp.EstimatedTotalHits,
	}, nil
}
