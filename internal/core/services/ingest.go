package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/deskhand/internal/chunker"
	"github.com/custodia-labs/deskhand/internal/core/domain"
	"github.com/custodia-labs/deskhand/internal/core/ports/driven"
	"github.com/custodia-labs/deskhand/internal/core/ports/driving"
	"github.com/custodia-labs/deskhand/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.Ingestor = (*IngestService)(nil)

// minExtractedLength is the minimum text length worth indexing.
// Shorter extractions fail with ErrExtraction ("insufficient content").
const minExtractedLength = 10

// analysisPrefixCap bounds the text sent to the analysis model.
const analysisPrefixCap = 50_000

// chunkBatchSize bounds one chunk insert, keeping payloads small enough
// to avoid store timeouts on large imports.
const chunkBatchSize = 50

// IngestService runs the linear ingestion pipeline:
// extract -> analyze -> embed document -> chunk -> embed chunks -> persist.
//
// The pipeline is not resumable mid-stage. A failure marks the document
// failed with the error message stored as its summary, and re-ingestion
// starts from scratch.
type IngestService struct {
	docStore   driven.DocumentStore
	extractors driven.ExtractorRegistry
	fetcher    driven.SourceFetcher
	llm        driven.LLMService
	embedder   driven.EmbeddingService
	splitter   *chunker.Chunker
}

// NewIngestService creates a new ingestion service. The fetcher is only
// required when remote sources (URL, Google Docs/Sheets) are ingested.
func NewIngestService(
	docStore driven.DocumentStore,
	extractors driven.ExtractorRegistry,
	fetcher driven.SourceFetcher,
	llm driven.LLMService,
	embedder driven.EmbeddingService,
) *IngestService {
	return &IngestService{
		docStore:   docStore,
		extractors: extractors,
		fetcher:    fetcher,
		llm:        llm,
		embedder:   embedder,
		splitter:   chunker.New(),
	}
}

// Register records a pending document and returns it immediately.
func (s *IngestService) Register(ctx context.Context, req driving.IngestRequest) (*domain.Document, error) {
	if req.TenantID == "" {
		return nil, fmt.Errorf("%w: tenant id required", domain.ErrInvalidInput)
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:        uuid.New().String(),
		TenantID:  req.TenantID,
		Source:    req.Source,
		SourceRef: req.SourceRef,
		Name:      req.Name,
		MIMEType:  req.MIMEType,
		SizeBytes: int64(len(req.Data)),
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("register document: %w", err)
	}

	return doc, nil
}

// Process runs the pipeline for a registered document. Errors are
// recorded on the document and returned; they never panic the caller,
// so a detached background invocation cannot crash the host.
func (s *IngestService) Process(ctx context.Context, documentID string, req driving.IngestRequest) error {
	// Temporary source material is released on every exit path
	if req.TempPath != "" {
		defer os.Remove(req.TempPath)
	}

	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}

	logger.Section("Ingestion")
	logger.Info("Processing %s (%s, %s)", doc.ID, doc.Name, doc.MIMEType)

	if err := s.run(ctx, doc, req.Data); err != nil {
		s.markFailed(ctx, doc, err)
		return err
	}

	return nil
}

// run executes the pipeline stages against doc. The caller records any
// returned error on the document.
func (s *IngestService) run(ctx context.Context, doc *domain.Document, data []byte) error {
	// 1. Extract plain text
	text, err := s.extract(ctx, doc, data)
	if err != nil {
		return err
	}
	logger.Debug("Extracted %d characters", len(text))

	doc.Content = text
	doc.ContentHash = contentHash(text)

	// 2. Analyze: structured metadata from a bounded prefix
	analysis, err := s.analyze(ctx, doc, text)
	if err != nil {
		return err
	}
	logger.Debug("Analysis: title=%q topic=%q sentiment=%s", analysis.Title, analysis.Topic, analysis.Sentiment)

	doc.Title = analysis.Title
	doc.Summary = analysis.Summary
	doc.Tags = analysis.Tags
	doc.Keywords = analysis.Keywords
	doc.Topic = analysis.Topic
	doc.Sentiment = analysis.Sentiment
	doc.SentimentScore = analysis.SentimentScore

	// 3. Embed the whole document via a composite of its metadata
	composite := compositeText(analysis)
	embedding, err := s.embedder.Embed(ctx, composite)
	if err != nil {
		return fmt.Errorf("%w: document embedding: %w", domain.ErrEmbedding, err)
	}
	doc.Embedding = embedding

	// 4. Chunk and embed each chunk. A chunk whose embedding fails is
	// logged and omitted, never retried; partial chunk sets are fine.
	spans := s.splitter.Chunk(text)
	chunks := make([]domain.Chunk, 0, len(spans))
	for i, span := range spans {
		vec, err := s.embedder.Embed(ctx, span.Text)
		if err != nil {
			logger.Warn("Chunk %d of %s: embedding failed, skipping: %v", i, doc.ID, err)
			continue
		}
		chunks = append(chunks, domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			Position:   i,
			StartIndex: span.StartIndex,
			EndIndex:   span.EndIndex,
			Content:    span.Text,
			Embedding:  vec,
		})
	}
	logger.Debug("Chunked into %d spans, %d embedded", len(spans), len(chunks))

	// 5. Persist chunks in batches, then flip the document to processed
	for start := 0; start < len(chunks); start += chunkBatchSize {
		end := start + chunkBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		if err := s.docStore.SaveChunks(ctx, chunks[start:end]); err != nil {
			return fmt.Errorf("save chunks [%d:%d]: %w", start, end, err)
		}
	}

	doc.ChunkCount = len(chunks)
	doc.Status = domain.StatusProcessed
	doc.UpdatedAt = time.Now().UTC()

	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("save processed document: %w", err)
	}

	logger.Info("Processed %s: %d chunks", doc.ID, doc.ChunkCount)
	return nil
}

// extract resolves the source material to plain text.
func (s *IngestService) extract(ctx context.Context, doc *domain.Document, data []byte) (string, error) {
	mimeType := doc.MIMEType

	if data == nil && doc.Source != domain.SourceUpload {
		if s.fetcher == nil {
			return "", fmt.Errorf("%w: no fetcher for source %s", domain.ErrUnsupportedType, doc.Source)
		}
		fetched, fetchedMIME, err := s.fetcher.Fetch(ctx, doc.Source, doc.SourceRef)
		if err != nil {
			return "", fmt.Errorf("%w: fetch %s: %w", domain.ErrExtraction, doc.SourceRef, err)
		}
		data = fetched
		if fetchedMIME != "" {
			mimeType = fetchedMIME
		}
	}

	extractor, err := s.extractors.ForMIME(mimeType)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrExtraction, err)
	}

	text, err := extractor.Extract(ctx, data, doc.Name)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrExtraction, err)
	}

	if len(strings.TrimSpace(text)) < minExtractedLength {
		return "", fmt.Errorf("%w: insufficient content (%d characters)", domain.ErrExtraction, len(text))
	}

	return text, nil
}

// analyze requests structured metadata for a bounded prefix of text.
func (s *IngestService) analyze(ctx context.Context, doc *domain.Document, text string) (*domain.Analysis, error) {
	prefix := text
	if len(prefix) > analysisPrefixCap {
		prefix = prefix[:analysisPrefixCap]
	}

	analysis, err := s.llm.Analyze(ctx, driven.AnalysisRequest{
		Text:     prefix,
		FileName: doc.Name,
		MIMEType: doc.MIMEType,
	})
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}

	return analysis, nil
}

// Resync re-ingests a resyncable source, skipping entirely when the
// content hash is unchanged.
func (s *IngestService) Resync(ctx context.Context, documentID string) error {
	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}

	if doc.Source == domain.SourceUpload {
		return fmt.Errorf("%w: upload sources cannot be resynced", domain.ErrInvalidInput)
	}
	if s.fetcher == nil {
		return fmt.Errorf("%w: no fetcher configured", domain.ErrUnsupportedType)
	}

	data, mimeType, err := s.fetcher.Fetch(ctx, doc.Source, doc.SourceRef)
	if err != nil {
		return fmt.Errorf("fetch source: %w", err)
	}
	if mimeType == "" {
		mimeType = doc.MIMEType
	}

	extractor, err := s.extractors.ForMIME(mimeType)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrExtraction, err)
	}
	text, err := extractor.Extract(ctx, data, doc.Name)
	if err != nil {
		s.markFailed(ctx, doc, fmt.Errorf("%w: %w", domain.ErrExtraction, err))
		return fmt.Errorf("%w: %w", domain.ErrExtraction, err)
	}

	if contentHash(text) == doc.ContentHash && doc.ContentHash != "" {
		logger.Info("Resync %s: content unchanged, skipping", doc.ID)
		return nil
	}

	logger.Info("Resync %s: content changed, re-ingesting", doc.ID)
	if err := s.docStore.DeleteChunks(ctx, doc.ID); err != nil {
		return fmt.Errorf("delete stale chunks: %w", err)
	}

	if err := s.run(ctx, doc, data); err != nil {
		s.markFailed(ctx, doc, err)
		return err
	}
	return nil
}

// Delete removes a document and its chunks.
func (s *IngestService) Delete(ctx context.Context, documentID string) error {
	if err := s.docStore.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// markFailed records a pipeline failure on the document. The failure
// message replaces the summary so the document stays visible with a
// human-readable reason rather than silently disappearing.
func (s *IngestService) markFailed(ctx context.Context, doc *domain.Document, cause error) {
	doc.Status = domain.StatusFailed
	doc.Summary = cause.Error()
	doc.UpdatedAt = time.Now().UTC()

	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		logger.Warn("Recording failure for %s: %v", doc.ID, err)
	}
	logger.Warn("Ingestion of %s failed: %v", doc.ID, cause)
}

// compositeText builds the document-level embedding input.
func compositeText(a *domain.Analysis) string {
	parts := []string{a.Title, a.Summary}
	if len(a.Keywords) > 0 {
		parts = append(parts, strings.Join(a.Keywords, " "))
	}
	return strings.Join(parts, "\n")
}

// contentHash is the change-detection hash for resyncable sources.
func contentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
