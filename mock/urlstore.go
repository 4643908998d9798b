package mock

import (
	"context"

	"github.com/mliang/docspider"
)

var _ docspider.URLStore = (*URLStore)(nil)

// URLStore is a mock implementation of docspider.URLStore.
type URLStore struct {
	ExistsFn       func(ctx context.Context, url string) (bool, error)
	ExistsBatchFn  func(ctx context.Context, urls []string) (map[string]bool, error)
	UpsertFn       func(ctx context.Context, record *docspider.URLRecord) error
	UpsertBatchFn  func(ctx context.Context, records []*docspider.URLRecord) error
	FindByStatusFn func(ctx context.Context, status string) ([]*docspider.URLRecord, error)
}

func (s *URLStore) Exists(ctx context.Context, url string) (bool, error) {
	return s.ExistsFn(ctx, url)
}

func (s *URLStore) ExistsBatch(ctx context.Context, urls []string) (map[string]bool, error) {
	return s.ExistsBatchFn(ctx, urls)
}

func (s *URLStore) Upsert(ctx context.Context, record *docspider.URLRecord) error {
	return s.UpsertFn(ctx, record)
}

func (s *URLStore) UpsertBatch(ctx context.Context, records []*docspider.URLRecord) error {
	return s.UpsertBatchFn(ctx, records)
}

func (s *URLStore) FindByStatus(ctx context.Context, status string) ([]*docspider.URLRecord, error) {
	return s.FindByStatusFn(ctx, status)
}
