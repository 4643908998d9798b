package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/mliang/docspider"
)

// Ensure LoggingURLStore implements docspider.URLStore.
var _ docspider.URLStore = (*LoggingURLStore)(nil)

// LoggingURLStore wraps a URLStore with debug logging on the operations that
// dominate crawl latency. Single-record lookups and writes are left quiet to
// keep logs readable at crawl volume.
type LoggingURLStore struct {
	next   docspider.URLStore
	logger *slog.Logger
}

// NewLoggingURLStore creates a new LoggingURLStore.
func NewLoggingURLStore(next docspider.URLStore, logger *slog.Logger) *LoggingURLStore {
	return &LoggingURLStore{next: next, logger: logger}
}

// Exists delegates to the wrapped store.
func (s *LoggingURLStore) Exists(ctx context.Context, url string) (bool, error) {
	return s.next.Exists(ctx, url)
}

// ExistsBatch logs the batch size and delegates to the wrapped store.
func (s *LoggingURLStore) ExistsBatch(ctx context.Context, urls []string) (exists map[string]bool, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("url exists batch",
			"urls", len(urls),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.ExistsBatch(ctx, urls)
}

// Upsert delegates to the wrapped store.
func (s *LoggingURLStore) Upsert(ctx context.Context, record *docspider.URLRecord) error {
	return s.next.Upsert(ctx, record)
}

// UpsertBatch logs the batch size and delegates to the wrapped store.
func (s *LoggingURLStore) UpsertBatch(ctx context.Context, records []*docspider.URLRecord) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("url upsert batch",
			"records", len(records),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.UpsertBatch(ctx, records)
}

// FindByStatus logs the result size and delegates to the wrapped store.
func (s *LoggingURLStore) FindByStatus(ctx context.Context, status string) (records []*docspider.URLRecord, err error) {
	defer func(begin time.Time) {
		s.logger.Info("url find by status",
			"status", status,
			"records", len(records),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindByStatus(ctx, status)
}
