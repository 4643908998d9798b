// Package meili provides Meilisearch-backed implementations of the docspider
// storage and indexing services. Both the URL-tracking records and the
// extracted documents live in Meilisearch indexes, which gives the crawler
// durable dedup state and full-text search from a single collaborator.
package meili

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/meilisearch/meilisearch-go"
	"github.com/mliang/docspider"
)

// Defaults for task completion waits.
const (
	DefaultTaskTimeout  = 60 * time.Second
	DefaultPollInterval = 100 * time.Millisecond
)

// IndexSettings describe how an index is created and configured.
type IndexSettings struct {
	PrimaryKey string
	Filterable []string
	Sortable   []string
}

// Client wraps a Meilisearch service manager with task waiting and error
// translation. All errors leaving this package carry docspider error codes;
// callers never inspect Meilisearch error strings.
type Client struct {
	sm           meilisearch.ServiceManager
	taskTimeout  time.Duration
	pollInterval time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTaskTimeout sets the bounded wait for async task completion.
func WithTaskTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.taskTimeout = d
	}
}

// WithPollInterval sets the task polling interval.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		c.pollInterval = d
	}
}

// NewClient creates a Client for the Meilisearch instance at host.
// The API key may be empty for unprotected instances.
func NewClient(host, apiKey string, opts ...Option) *Client {
	c := &Client{
		taskTimeout:  DefaultTaskTimeout,
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}

	var mopts []meilisearch.Option
	if apiKey != "" {
		mopts = append(mopts, meilisearch.WithAPIKey(apiKey))
	}
	c.sm = meilisearch.New(host, mopts...)

	return c
}

// EnsureIndex creates the index if it does not exist and applies the
// filterable/sortable attribute configuration. Creation is guarded by an
// existence check, so concurrent or repeated calls are idempotent.
func (c *Client) EnsureIndex(ctx context.Context, name string, settings IndexSettings) error {
	_, err := c.sm.GetIndexWithContext(ctx, name)
	if err != nil {
		if mapped := mapError(err); docspider.ErrorCode(mapped) != docspider.ENOTFOUND {
			return mapped
		}

		info, err := c.sm.CreateIndexWithContext(ctx, &meilisearch.IndexConfig{
			Uid:        name,
			PrimaryKey: settings.PrimaryKey,
		})
		if err != nil {
			return mapError(err)
		}
		if err := c.waitForTask(ctx, info.TaskUID); err != nil {
			return err
		}
	}

	index := c.sm.Index(name)
	if len(settings.Filterable) > 0 {
		info, err := index.UpdateFilterableAttributesWithContext(ctx, &settings.Filterable)
		if err != nil {
			return mapError(err)
		}
		if err := c.waitForTask(ctx, info.TaskUID); err != nil {
			return err
		}
	}
	if len(settings.Sortable) > 0 {
		info, err := index.UpdateSortableAttributesWithContext(ctx, &settings.Sortable)
		if err != nil {
			return mapError(err)
		}
		if err := c.waitForTask(ctx, info.TaskUID); err != nil {
			return err
		}
	}

	return nil
}

// waitForTask blocks until the async task completes, fails, or the task
// timeout elapses.
func (c *Client) waitForTask(ctx context.Context, taskUID int64) error {
	ctx, cancel := context.WithTimeout(ctx, c.taskTimeout)
	defer cancel()

	task, err := c.sm.WaitForTaskWithContext(ctx, taskUID, c.pollInterval)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return docspider.Errorf(docspider.ETIMEOUT, "task %d did not complete within %s", taskUID, c.taskTimeout)
		}
		return mapError(err)
	}
	if task.Status != meilisearch.TaskStatusSucceeded {
		return docspider.Errorf(docspider.EINTERNAL, "task %d finished with status %s: %s", taskUID, task.Status, task.Error.Message)
	}
	return nil
}

// mapError translates a Meilisearch client error into a docspider error.
// This is the single place the collaborator's error shapes are interpreted.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var merr *meilisearch.Error
	if !errors.As(err, &merr) {
		if errors.Is(err, context.DeadlineExceeded) {
			return docspider.Errorf(docspider.ETIMEOUT, "search engine request timed out: %v", err)
		}
		return docspider.Errorf(docspider.EINTERNAL, "search engine: %v", err)
	}

	switch merr.ErrCode {
	case meilisearch.MeilisearchCommunicationError:
		return docspider.Errorf(docspider.EUNAVAILABLE, "search engine unreachable: %s", merr.Error())
	case meilisearch.MeilisearchTimeoutError:
		return docspider.Errorf(docspider.ETIMEOUT, "search engine request timed out: %s", merr.Error())
	}

	switch {
	case merr.StatusCode == 404:
		return docspider.Errorf(docspider.ENOTFOUND, "search engine: %s", merr.Error())
	case merr.StatusCode == 409:
		return docspider.Errorf(docspider.ECONFLICT, "search engine: %s", merr.Error())
	case merr.StatusCode >= 500:
		return docspider.Errorf(docspider.EUNAVAILABLE, "search engine: %s", merr.Error())
	}

	return docspider.Errorf(docspider.EINTERNAL, "search engine: %s", merr.Error())
}

// decodeHits converts raw search hits into typed values via JSON round-trip.
func decodeHits[T any](hits []interface{}) ([]*T, error) {
	out := make([]*T, 0, len(hits))
	for _, hit := range hits {
		raw, err := json.Marshal(hit)
		if err != nil {
			return nil, docspider.Errorf(docspider.EINVALID, "encoding search hit: %v", err)
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, docspider.Errorf(docspider.EINVALID, "decoding search hit: %v", err)
		}
		out = append(out, &v)
	}
	return out, nil
}
