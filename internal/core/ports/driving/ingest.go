package driving

import (
	"context"

	"github.com/custodia-labs/deskhand/internal/core/domain"
)

// IngestRequest describes one piece of source material to ingest.
type IngestRequest struct {
	// TenantID is the owning tenant.
	TenantID string

	// Source is where the material comes from.
	Source domain.SourceType

	// SourceRef is the source-specific reference: a file path for
	// uploads, a URL, or a Google file ID.
	SourceRef string

	// Name is the original file or resource name.
	Name string

	// MIMEType is the declared content type.
	MIMEType string

	// Data is the raw material for upload sources. Nil for remote
	// sources, which are fetched by reference.
	Data []byte

	// TempPath is a temporary file holding the source material, if the
	// upload layer spooled it to disk. The pipeline removes it on every
	// exit path.
	TempPath string
}

// Ingestor runs the document ingestion pipeline.
type Ingestor interface {
	// Register records a pending document for the request and returns it
	// immediately. Processing happens in a later Process call.
	Register(ctx context.Context, req IngestRequest) (*domain.Document, error)

	// Process runs the full pipeline for a registered document:
	// extract, analyze, embed, chunk, persist. On failure the document
	// is marked failed with the error message as its summary; the error
	// is also returned for callers that want it.
	Process(ctx context.Context, documentID string, req IngestRequest) error

	// Resync re-ingests a resyncable source. When the newly extracted
	// content hashes identically to the stored content the call is a
	// no-op; otherwise old chunks are deleted and the pipeline reruns.
	Resync(ctx context.Context, documentID string) error

	// Delete removes a document and its chunks.
	Delete(ctx context.Context, documentID string) error
}
