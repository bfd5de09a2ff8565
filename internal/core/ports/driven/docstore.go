package driven

import (
	"context"

	"github.com/custodia-labs/deskhand/internal/core/domain"
)

// DocumentFilter narrows tenant-scoped document listings.
type DocumentFilter struct {
	// Status restricts to a single processing status when non-empty.
	Status domain.DocumentStatus

	// Source restricts to a single source type when non-empty.
	Source domain.SourceType
}

// DocumentStore persists documents and their chunks.
// All listing queries are tenant-scoped.
type DocumentStore interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns a tenant's documents matching the filter.
	ListDocuments(ctx context.Context, tenantID string, filter DocumentFilter) ([]domain.Document, error)

	// DeleteDocument removes a document and all of its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// SaveChunks stores chunks for a document.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// GetChunks retrieves all chunks for a document, ordered by position.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// DeleteChunks removes all chunks for a document without touching
	// the document row. Used before re-ingesting a changed source.
	DeleteChunks(ctx context.Context, documentID string) error
}
