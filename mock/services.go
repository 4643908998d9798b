package mock

import (
	"context"

	"github.com/mliang/docspider"
)

var _ docspider.DocumentService = (*DocumentService)(nil)

// DocumentService is a mock implementation of docspider.DocumentService.
type DocumentService struct {
	SaveDocumentsFn    func(ctx context.Context, docs []*docspider.Document) error
	FindDocumentByIDFn func(ctx context.Context, id string) (*docspider.Document, error)
	SearchDocumentsFn  func(ctx context.Context, query string, opts docspider.SearchOptions) (*docspider.DocumentResult, error)
}

func (s *DocumentService) SaveDocuments(ctx context.Context, docs []*docspider.Document) error {
	return s.SaveDocumentsFn(ctx, docs)
}

func (s *DocumentService) FindDocumentByID(ctx context.Context, id string) (*docspider.Document, error) {
	return s.FindDocumentByIDFn(ctx, id)
}

func (s *DocumentService) SearchDocuments(ctx context.Context, query string, opts docspider.SearchOptions) (*docspider.DocumentResult, error) {
	return s.SearchDocumentsFn(ctx, query, opts)
}

var _ docspider.ArticleService = (*ArticleService)(nil)

// ArticleService is a mock implementation of docspider.ArticleService.
type ArticleService struct {
	SaveArticlesFn   func(ctx context.Context, articles []*docspider.Article) error
	MaxArticleIDFn   func(ctx context.Context) (int, error)
	ArticleIDsFn     func(ctx context.Context, limit int) ([]int, error)
	SearchArticlesFn func(ctx context.Context, query string, opts docspider.SearchOptions) (*docspider.ArticleResult, error)
}

func (s *ArticleService) SaveArticles(ctx context.Context, articles []*docspider.Article) error {
	return s.SaveArticlesFn(ctx, articles)
}

func (s *ArticleService) MaxArticleID(ctx context.Context) (int, error) {
	return s.MaxArticleIDFn(ctx)
}

func (s *ArticleService) ArticleIDs(ctx context.Context, limit int) ([]int, error) {
	return s.ArticleIDsFn(ctx, limit)
}

func (s *ArticleService) SearchArticles(ctx context.Context, query string, opts docspider.SearchOptions) (*docspider.ArticleResult, error) {
	return s.SearchArticlesFn(ctx, query, opts)
}
