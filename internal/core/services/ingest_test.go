package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deskhand/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/deskhand/internal/core/domain"
	"github.com/custodia-labs/deskhand/internal/core/ports/driving"
)

func newIngestFixture(text string) (*IngestService, *memory.DocumentStore, *stubFetcher) {
	store := memory.NewDocumentStore()
	fetcher := &stubFetcher{data: []byte(text), mime: "text/plain"}
	svc := NewIngestService(
		store,
		&stubRegistry{extractor: &stubExtractor{text: text}},
		fetcher,
		&stubLLM{analysis: &domain.Analysis{
			Title:          "Quarterly Report",
			Summary:        "Revenue grew.",
			Tags:           []string{"finance"},
			Keywords:       []string{"revenue"},
			Topic:          "finance",
			Sentiment:      "positive",
			SentimentScore: 0.8,
		}},
		&stubEmbedder{dims: 3},
	)
	return svc, store, fetcher
}

func TestRegister_CreatesPendingDocument(t *testing.T) {
	svc, store, _ := newIngestFixture("hello")
	ctx := context.Background()

	doc, err := svc.Register(ctx, driving.IngestRequest{
		TenantID: "tenant-1",
		Source:   domain.SourceUpload,
		Name:     "report.txt",
		MIMEType: "text/plain",
		Data:     []byte("hello"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, doc.ID)
	assert.Equal(t, domain.StatusPending, doc.Status)
	assert.Equal(t, int64(5), doc.SizeBytes)

	stored, err := store.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
}

func TestRegister_RequiresTenant(t *testing.T) {
	svc, _, _ := newIngestFixture("hello")

	_, err := svc.Register(context.Background(), driving.IngestRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProcess_FullPipeline(t *testing.T) {
	text := strings.Repeat("A meaningful sentence about revenue. ", 60)
	svc, store, _ := newIngestFixture(text)
	ctx := context.Background()

	req := driving.IngestRequest{
		TenantID: "tenant-1",
		Source:   domain.SourceUpload,
		Name:     "report.txt",
		MIMEType: "text/plain",
		Data:     []byte(text),
	}
	doc, err := svc.Register(ctx, req)
	require.NoError(t, err)

	require.NoError(t, svc.Process(ctx, doc.ID, req))

	processed, err := store.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessed, processed.Status)
	assert.Equal(t, "Quarterly Report", processed.Title)
	assert.Equal(t, "Revenue grew.", processed.Summary)
	assert.Equal(t, "finance", processed.Topic)
	assert.NotEmpty(t, processed.Embedding)
	assert.NotEmpty(t, processed.ContentHash)
	assert.Greater(t, processed.ChunkCount, 1)

	chunks, err := store.GetChunks(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, chunks, processed.ChunkCount)
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Position)
		assert.Equal(t, text[chunk.StartIndex:chunk.EndIndex], chunk.Content)
		assert.NotEmpty(t, chunk.Embedding)
	}
}

func TestProcess_ExtractionFailureMarksFailed(t *testing.T) {
	svc, store, _ := newIngestFixture("too short")
	svc.extractors = &stubRegistry{extractor: &stubExtractor{err: domain.ErrExtraction}}
	ctx := context.Background()

	req := driving.IngestRequest{
		TenantID: "tenant-1",
		Source:   domain.SourceUpload,
		MIMEType: "text/plain",
		Data:     []byte("x"),
	}
	doc, err := svc.Register(ctx, req)
	require.NoError(t, err)

	err = svc.Process(ctx, doc.ID, req)
	require.ErrorIs(t, err, domain.ErrExtraction)

	failed, err := store.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, failed.Status)
	assert.NotEmpty(t, failed.Summary, "failure reason should land in the summary")
}

func TestProcess_InsufficientContentFails(t *testing.T) {
	svc, store, _ := newIngestFixture("tiny")
	ctx := context.Background()

	req := driving.IngestRequest{
		TenantID: "tenant-1",
		Source:   domain.SourceUpload,
		MIMEType: "text/plain",
		Data:     []byte("tiny"),
	}
	doc, err := svc.Register(ctx, req)
	require.NoError(t, err)

	err = svc.Process(ctx, doc.ID, req)
	require.ErrorIs(t, err, domain.ErrExtraction)
	assert.Contains(t, err.Error(), "insufficient content")

	failed, _ := store.GetDocument(ctx, doc.ID)
	assert.Equal(t, domain.StatusFailed, failed.Status)
}

func TestProcess_AnalysisFailureMarksFailed(t *testing.T) {
	text := strings.Repeat("Long enough content for extraction. ", 5)
	svc, store, _ := newIngestFixture(text)
	svc.llm = &stubLLM{analyzeErr: domain.ErrAnalysis}
	ctx := context.Background()

	req := driving.IngestRequest{
		TenantID: "tenant-1",
		Source:   domain.SourceUpload,
		MIMEType: "text/plain",
		Data:     []byte(text),
	}
	doc, err := svc.Register(ctx, req)
	require.NoError(t, err)

	err = svc.Process(ctx, doc.ID, req)
	require.ErrorIs(t, err, domain.ErrAnalysis)

	failed, _ := store.GetDocument(ctx, doc.ID)
	assert.Equal(t, domain.StatusFailed, failed.Status)
}

func TestProcess_ChunkEmbeddingFailureSkipsChunk(t *testing.T) {
	text := strings.Repeat("A sentence that recurs throughout the body. ", 60)
	svc, store, _ := newIngestFixture(text)

	// First call embeds the document composite; every second chunk fails.
	calls := 0
	svc.embedder = &stubEmbedder{embedFn: func(string) ([]float64, error) {
		calls++
		if calls > 1 && calls%2 == 0 {
			return nil, errors.New("transient embed failure")
		}
		return []float64{1, 0, 0}, nil
	}}
	ctx := context.Background()

	req := driving.IngestRequest{
		TenantID: "tenant-1",
		Source:   domain.SourceUpload,
		MIMEType: "text/plain",
		Data:     []byte(text),
	}
	doc, err := svc.Register(ctx, req)
	require.NoError(t, err)

	require.NoError(t, svc.Process(ctx, doc.ID, req))

	processed, _ := store.GetDocument(ctx, doc.ID)
	assert.Equal(t, domain.StatusProcessed, processed.Status)

	chunks, _ := store.GetChunks(ctx, doc.ID)
	assert.NotEmpty(t, chunks)
	assert.Less(t, len(chunks), calls-1, "some chunks must have been dropped")
}

func TestResync_UnchangedContentIsNoop(t *testing.T) {
	text := strings.Repeat("Stable content that does not change. ", 10)
	svc, store, fetcher := newIngestFixture(text)
	ctx := context.Background()

	req := driving.IngestRequest{
		TenantID:  "tenant-1",
		Source:    domain.SourceURL,
		SourceRef: "https://example.com/doc",
		MIMEType:  "text/plain",
		Data:      []byte(text),
	}
	doc, err := svc.Register(ctx, req)
	require.NoError(t, err)
	require.NoError(t, svc.Process(ctx, doc.ID, req))

	before, _ := store.GetChunks(ctx, doc.ID)
	fetchesBefore := fetcher.calls

	require.NoError(t, svc.Resync(ctx, doc.ID))

	after, _ := store.GetChunks(ctx, doc.ID)
	assert.Equal(t, len(before), len(after), "unchanged content must keep its chunks")
	assert.Equal(t, fetchesBefore+1, fetcher.calls)
}

func TestResync_ChangedContentReingests(t *testing.T) {
	text := strings.Repeat("Original content before the update. ", 10)
	svc, store, fetcher := newIngestFixture(text)
	ctx := context.Background()

	req := driving.IngestRequest{
		TenantID:  "tenant-1",
		Source:    domain.SourceURL,
		SourceRef: "https://example.com/doc",
		MIMEType:  "text/plain",
		Data:      []byte(text),
	}
	doc, err := svc.Register(ctx, req)
	require.NoError(t, err)
	require.NoError(t, svc.Process(ctx, doc.ID, req))

	oldHash := mustGetDocument(t, store, doc.ID).ContentHash

	// The source changed since the last ingestion.
	updated := strings.Repeat("Updated content after the change. ", 12)
	fetcher.data = []byte(updated)
	svc.extractors = &stubRegistry{extractor: &stubExtractor{text: updated}}

	require.NoError(t, svc.Resync(ctx, doc.ID))

	resynced := mustGetDocument(t, store, doc.ID)
	assert.Equal(t, domain.StatusProcessed, resynced.Status)
	assert.NotEqual(t, oldHash, resynced.ContentHash)
	assert.Equal(t, updated, resynced.Content)
}

func TestResync_RejectsUploadSources(t *testing.T) {
	svc, _, _ := newIngestFixture("content")
	ctx := context.Background()

	doc, err := svc.Register(ctx, driving.IngestRequest{
		TenantID: "tenant-1",
		Source:   domain.SourceUpload,
		MIMEType: "text/plain",
	})
	require.NoError(t, err)

	err = svc.Resync(ctx, doc.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDelete_RemovesDocumentAndChunks(t *testing.T) {
	text := strings.Repeat("Disposable content for the delete test. ", 10)
	svc, store, _ := newIngestFixture(text)
	ctx := context.Background()

	req := driving.IngestRequest{
		TenantID: "tenant-1",
		Source:   domain.SourceUpload,
		MIMEType: "text/plain",
		Data:     []byte(text),
	}
	doc, err := svc.Register(ctx, req)
	require.NoError(t, err)
	require.NoError(t, svc.Process(ctx, doc.ID, req))

	require.NoError(t, svc.Delete(ctx, doc.ID))

	_, err = store.GetDocument(ctx, doc.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	chunks, err := store.GetChunks(ctx, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func mustGetDocument(t *testing.T, store *memory.DocumentStore, id string) *domain.Document {
	t.Helper()
	doc, err := store.GetDocument(context.Background(), id)
	require.NoError(t, err)
	return doc
}
