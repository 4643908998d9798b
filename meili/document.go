package meili

import (
	"context"
	"log/slog"

	"github.com/meilisearch/meilisearch-go"
	"github.com/mliang/docspider"
)

// DefaultDocumentIndex is the index holding extracted documentation pages.
const DefaultDocumentIndex = "docs"

var documentSettings = IndexSettings{
	PrimaryKey: "id",
	Filterable: []string{"id", "url", "title", "content", "crawledAt"},
	Sortable:   []string{"crawledAt"},
}

// Compile-time interface verification.
var _ docspider.DocumentService = (*DocumentService)(nil)

// DocumentService indexes and searches crawled documentation pages.
type DocumentService struct {
	client    *Client
	index     string
	batchSize int
	retries   int
	logger    *slog.Logger
}

// DocumentServiceOption configures a DocumentService.
type DocumentServiceOption func(*DocumentService)

// WithDocumentBatchSize overrides the chunk size for batch writes.
func WithDocumentBatchSize(n int) DocumentServiceOption {
	return func(s *DocumentService) {
		s.batchSize = n
	}
}

// WithDocumentRetries overrides the per-chunk retry attempt count.
func WithDocumentRetries(n int) DocumentServiceOption {
	return func(s *DocumentService) {
		s.retries = n
	}
}

// WithDocumentLogger attaches a logger for batch progress.
func WithDocumentLogger(logger *slog.Logger) DocumentServiceOption {
	return func(s *DocumentService) {
		s.logger = logger
	}
}

// NewDocumentService creates a DocumentService writing to the given index.
func NewDocumentService(client *Client, index string, opts ...DocumentServiceOption) *DocumentService {
	if index == "" {
		index = DefaultDocumentIndex
	}
	s := &DocumentService{
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

// SaveDocuments upserts documents into the index in retried batches.
// The index is created on first use.
func (s *DocumentService) SaveDocuments(ctx context.Context, docs []*docspider.Document) error {
	if len(docs) == 0 {
		return nil
	}
	for _, d := range docs {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	if err := s.client.EnsureIndex(ctx, s.index, documentSettings); err != nil {
		return err
	}
	return addInBatches(ctx, s.client, s.index, docs, s.batchSize, s.retries, s.logger)
}

// FindDocumentByID retrieves a document by ID.
// Returns ENOTFOUND if the document does not exist.
func (s *DocumentService) FindDocumentByID(ctx context.Context, id string) (*docspider.Document, error) {
	var doc docspider.Document
	if err := s.client.sm.Index(s.index).GetDocumentWithContext(ctx, id, nil, &doc); err != nil {
		return nil, mapError(err)
	}
	return &doc, nil
}

// SearchDocuments runs a full-text query against the index.
func (s *DocumentService) SearchDocuments(ctx context.Context, query string, opts docspider.SearchOptions) (*docspider.DocumentResult, error) {
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

	hits, err := decodeHits[docspider.Document](resp.Hits)
	if err != nil {
		return nil, err
	}
	return &docspider.DocumentResult{
		Hits:          hits,
		EstimatedHits: resp.EstimatedTotalHits,
	}, nil
}
