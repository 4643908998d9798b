package meili

import (
	"context"
	"log/slog"
	"time"

	"github.com/mliang/docspider"
)

// Batch writing defaults, shared by the document and article services.
const (
	DefaultBatchSize     = 1000
	DefaultRetryAttempts = 3
	DefaultRetryBase     = time.Second
)

// addInBatches upserts docs into the named index in fixed-size chunks.
// Each chunk is submitted as an async task and awaited; a failed chunk is
// retried with exponential backoff. Exhausting retries returns the last
// error, leaving later chunks unwritten. Chunks are all-or-nothing upserts
// keyed by the primary key, so a retried chunk never duplicates entries.
func addInBatches[T any](ctx context.Context, c *Client, indexName string, docs []T, batchSize, retryAttempts int, logger *slog.Logger) error {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if retryAttempts <= 0 {
		retryAttempts = DefaultRetryAttempts
	}

	index := c.sm.Index(indexName)
	for n, chunk := range chunks(docs, batchSize) {
		err := docspider.Retry(ctx, retryAttempts, DefaultRetryBase, func() error {
			info, err := index.AddDocumentsWithContext(ctx, &chunk)
			if err != nil {
				return mapError(err)
			}
			return c.waitForTask(ctx, info.TaskUID)
		})
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			return docspider.Errorf(docspider.ErrorCode(err), "batch %d/%d into %q failed after %d attempts: %s",
				n+1, (len(docs)+batchSize-1)/batchSize, indexName, retryAttempts, docspider.ErrorMessage(err))
		}
		if logger != nil {
			logger.Debug("batch indexed", "index", indexName, "batch", n+1, "size", len(chunk))
		}
	}
	return nil
}

// chunks splits items into consecutive slices of at most size elements.
func chunks[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	out := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end])
	}
	return out
}
