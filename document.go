package docspider

import (
	"context"
	"time"
)

// Document is an indexed documentation page. Documents are immutable after
// creation except by full overwrite (upsert) on re-crawl.
type Document struct {
	ID          string    `json:"id"` // URLID of the source URL
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	ContentHash string    `json:"contentHash"`
	CrawledAt   time.Time `json:"crawledAt"`
}

// Validate returns an error if the document contains invalid fields.
func (d *Document) Validate() error {
	if d.ID == "" {
		return Errorf(EINVALID, "document ID required")
	}
	if d.URL == "" {
		return Errorf(EINVALID, "document source URL required")
	}
	return nil
}

// SearchOptions control pagination, ordering, and filtering of index queries.
type SearchOptions struct {
	Offset int64
	Limit  int64
	Sort   []string
	Filter string
}

// DocumentResult holds a page of document search hits.
type DocumentResult struct {
	Hits          []*Document
	EstimatedHits int64
}

// DocumentService indexes and searches crawled documentation pages.
type DocumentService interface {
	// SaveDocuments upserts documents into the index in retried batches.
	// Exhausting retries on any batch is a fatal error; batches are
	// all-or-nothing via upsert semantics, so partial retries never
	// produce duplicate entries.
	SaveDocuments(ctx context.Context, docs []*Document) error

	// FindDocumentByID retrieves a document by ID.
	// Returns ENOTFOUND if the document does not exist.
	FindDocumentByID(ctx context.Context, id string) (*Document, error)

	// SearchDocuments runs a full-text query against the index.
	SearchDocuments(ctx context.Context, query string, opts SearchOptions) (*DocumentResult, error)
}
