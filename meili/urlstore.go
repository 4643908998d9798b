package meili

import (
	"context"
	"fmt"
	"strings"

	"github.com/meilisearch/meilisearch-go"
	"github.com/mliang/docspider"
)

// DefaultURLIndex is the index holding per-URL lifecycle records.
const DefaultURLIndex = "crawled_urls"

// restoreLimit bounds how many queued records are loaded on startup.
const restoreLimit = 10000

// Compile-time interface verification.
var _ docspider.URLStore = (*URLStore)(nil)

// URLStore persists URLRecords in a Meilisearch index. It is the durable
// side of the crawl frontier: existence checks drive dedup and queued
// records survive crashes for rehydration.
type URLStore struct {
	client *Client
	index  string
}

// NewURLStore creates a URLStore writing to the given index.
func NewURLStore(client *Client, index string) *URLStore {
	if index == "" {
		index = DefaultURLIndex
	}
	return &URLStore{client: client, index: index}
}

// Init creates and configures the index. Must be called once at startup,
// before any other method.
func (s *URLStore) Init(ctx context.Context) error {
	return s.client.EnsureIndex(ctx, s.index, IndexSettings{
		PrimaryKey: "id",
		Filterable: []string{"id", "status"},
	})
}

// Exists reports whether a record for the URL exists, in any status.
func (s *URLStore) Exists(ctx context.Context, url string) (bool, error) {
	var rec docspider.URLRecord
	err := s.client.sm.Index(s.index).GetDocumentWithContext(ctx, docspider.URLID(url), &meilisearch.DocumentQuery{
		Fields: []string{"id"},
	}, &rec)
	if err != nil {
		mapped := mapError(err)
		if docspider.ErrorCode(mapped) == docspider.ENOTFOUND {
			return false, nil
		}
		return false, mapped
	}
	return true, nil
}

// ExistsBatch reports existence for a batch of URLs with a single id-filter
// query. If the batched lookup fails it falls back to per-URL Exists calls,
// preserving correctness at a performance cost.
func (s *URLStore) ExistsBatch(ctx context.Context, urls []string) (map[string]bool, error) {
	recorded := make(map[string]bool, len(urls))
	if len(urls) == 0 {
		return recorded, nil
	}

	idToURL := make(map[string]string, len(urls))
	quoted := make([]string, 0, len(urls))
	for _, u := range urls {
		id := docspider.URLID(u)
		idToURL[id] = u
		quoted = append(quoted, fmt.Sprintf("%q", id))
	}

	var res meilisearch.DocumentsResult
	err := s.client.sm.Index(s.index).GetDocumentsWithContext(ctx, &meilisearch.DocumentsQuery{
		Filter: fmt.Sprintf("id IN [%s]", strings.Join(quoted, ", ")),
		Fields: []string{"id"},
		Limit:  int64(len(urls)),
	}, &res)
	if err != nil {
		return s.existsBatchFallback(ctx, urls)
	}

	for _, doc := range res.Results {
		id, _ := doc["id"].(string)
		if url, ok := idToURL[id]; ok {
			recorded[url] = true
		}
	}
	return recorded, nil
}

func (s *URLStore) existsBatchFallback(ctx context.Context, urls []string) (map[string]bool, error) {
	recorded := make(map[string]bool, len(urls))
	for _, u := range urls {
		ok, err := s.Exists(ctx, u)
		if err != nil {
			return nil, err
		}
		if ok {
			recorded[u] = true
		}
	}
	return recorded, nil
}

// Upsert writes a record, overwriting any previous record with the same ID.
// The write is fire-and-forget at the task level: per-URL status updates are
// idempotent, so a lost task costs at most one duplicate crawl on a later
// run.
func (s *URLStore) Upsert(ctx context.Context, record *docspider.URLRecord) error {
	return s.UpsertBatch(ctx, []*docspider.URLRecord{record})
}

// UpsertBatch writes a batch of records in one operation.
func (s *URLStore) UpsertBatch(ctx context.Context, records []*docspider.URLRecord) error {
	if len(records) == 0 {
		return nil
	}
	for _, r := range records {
		if r.ID == "" {
			r.ID = docspider.URLID(r.URL)
		}
		if err := r.Validate(); err != nil {
			return err
		}
	}

	if _, err := s.client.sm.Index(s.index).UpdateDocumentsWithContext(ctx, &records); err != nil {
		return mapError(err)
	}
	return nil
}

// FindByStatus returns all records with the given status, up to the restore
// limit. Used to rehydrate the frontier after a restart.
func (s *URLStore) FindByStatus(ctx context.Context, status string) ([]*docspider.URLRecord, error) {
	resp, err := s.client.sm.Index(s.index).SearchWithContext(ctx, "", &meilisearch.SearchRequest{
		Filter: fmt.Sprintf("status = %s", status),
		Limit:  restoreLimit,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return decodeHits[docspider.URLRecord](resp.Hits)
}
