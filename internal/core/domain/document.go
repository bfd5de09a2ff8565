package domain

import "time"

// DocumentStatus describes where a document is in its processing lifecycle.
type DocumentStatus string

const (
	// StatusPending means the document has been registered but not processed.
	StatusPending DocumentStatus = "pending"

	// StatusProcessed means the ingestion pipeline completed successfully.
	StatusProcessed DocumentStatus = "processed"

	// StatusFailed means the ingestion pipeline failed. The failure reason
	// is stored in the document's Summary field.
	StatusFailed DocumentStatus = "failed"
)

// SourceType identifies where a document's content came from.
type SourceType string

const (
	// SourceUpload is a file uploaded directly by the tenant.
	SourceUpload SourceType = "upload"

	// SourceURL is a document fetched from a web address.
	SourceURL SourceType = "url"

	// SourceGoogleDoc is a document imported from Google Docs.
	SourceGoogleDoc SourceType = "google_doc"

	// SourceGoogleSheet is a document imported from Google Sheets.
	SourceGoogleSheet SourceType = "google_sheet"
)

// Document represents a piece of tenant knowledge after ingestion.
// It carries both the raw upload metadata and the metadata derived by
// the analysis step of the ingestion pipeline.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// TenantID is the owning tenant. All queries are tenant-scoped.
	TenantID string

	// Source describes where the content came from.
	Source SourceType

	// SourceRef is the source-specific reference: a file path for
	// uploads, a URL, or a Google file ID.
	SourceRef string

	// Name is the original file or resource name.
	Name string

	// MIMEType is the declared content type of the source.
	MIMEType string

	// SizeBytes is the raw size of the source material.
	SizeBytes int64

	// Content is the full extracted text. Chunk offsets index into it.
	Content string

	// ContentHash is the sha256 of Content, used to skip re-ingestion
	// of resyncable sources whose content has not changed.
	ContentHash string

	// Title, Summary, Tags, Keywords, Topic are derived by LLM analysis.
	// When Status is StatusFailed, Summary holds the failure reason instead.
	Title    string
	Summary  string
	Tags     []string
	Keywords []string
	Topic    string

	// Sentiment is one of "positive", "negative" or "neutral".
	Sentiment string

	// SentimentScore is in [-1, 1].
	SentimentScore float64

	// Embedding is the whole-document vector built from a composite of
	// title, summary and keywords. Nil until the document is processed.
	Embedding []float64

	// Status is the processing state.
	Status DocumentStatus

	// ChunkCount is the number of chunks persisted for this document.
	ChunkCount int

	// CreatedAt is when the document was registered.
	CreatedAt time.Time

	// UpdatedAt is when the document was last modified.
	UpdatedAt time.Time
}

// Processed reports whether the document completed ingestion.
func (d *Document) Processed() bool {
	return d.Status == StatusProcessed
}

// Chunk is a bounded, overlapping substring of a document's extracted
// text, independently embedded for fine-grained retrieval. A chunk is
// owned by exactly one document; deleting the document deletes its chunks.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Position is the 0-based, contiguous ordinal within the document.
	Position int

	// StartIndex and EndIndex are character offsets into the parent's
	// extracted text. Spans are re-derivable from (chunkSize, overlap,
	// parent text) because chunking is deterministic.
	StartIndex int
	EndIndex   int

	// Content is the text covered by [StartIndex, EndIndex).
	Content string

	// Embedding is the chunk's vector. Nil if the embedding call failed;
	// such chunks are simply absent from retrieval, never retried.
	Embedding []float64
}
