package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deskhand/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/deskhand/internal/core/domain"
)

func seedDocument(t *testing.T, store *memory.DocumentStore, id string, embedding []float64, chunkVecs ...[]float64) {
	t.Helper()
	ctx := context.Background()

	doc := &domain.Document{
		ID:        id,
		TenantID:  "tenant-1",
		Title:     "Doc " + id,
		Status:    domain.StatusProcessed,
		Embedding: embedding,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.SaveDocument(ctx, doc))

	chunks := make([]domain.Chunk, len(chunkVecs))
	for i, vec := range chunkVecs {
		chunks[i] = domain.Chunk{
			ID:         fmt.Sprintf("%s-c%d", id, i),
			DocumentID: id,
			Position:   i,
			Content:    fmt.Sprintf("chunk %d of %s", i, id),
			Embedding:  vec,
		}
	}
	require.NoError(t, store.SaveChunks(ctx, chunks))
}

func TestSearch_RanksDocumentsThenChunks(t *testing.T) {
	store := memory.NewDocumentStore()
	// Query vector is (1,0,0); near aligns, far is orthogonal.
	seedDocument(t, store, "near", []float64{1, 0, 0}, []float64{0.9, 0.1, 0}, []float64{0, 1, 0})
	seedDocument(t, store, "far", []float64{0, 1, 0}, []float64{0, 0.9, 0.1})

	svc := NewSearchService(store, &stubEmbedder{
		vectors: map[string][]float64{"question": {1, 0, 0}},
	})

	results, err := svc.Search(context.Background(), "tenant-1", "question", 0)
	require.NoError(t, err)

	require.Len(t, results.Documents, 2)
	assert.Equal(t, "near", results.Documents[0].Document.ID)
	assert.Greater(t, results.Documents[0].Score, results.Documents[1].Score)

	// Only the aligned chunk clears the relevance floor.
	require.Len(t, results.Chunks, 1)
	assert.Equal(t, "near-c0", results.Chunks[0].Chunk.ID)
	assert.Equal(t, "Doc near", results.Chunks[0].DocumentTitle)
	assert.Greater(t, results.Chunks[0].Score, domain.ChunkRelevanceFloor)
}

func TestSearch_DocumentLimitRestrictsChunkCandidates(t *testing.T) {
	store := memory.NewDocumentStore()
	seedDocument(t, store, "best", []float64{1, 0, 0}, []float64{1, 0, 0})
	seedDocument(t, store, "second", []float64{0.5, 0.5, 0}, []float64{0.9, 0.1, 0})

	svc := NewSearchService(store, &stubEmbedder{
		vectors: map[string][]float64{"q": {1, 0, 0}},
	})

	results, err := svc.Search(context.Background(), "tenant-1", "q", 1)
	require.NoError(t, err)

	require.Len(t, results.Documents, 1)
	assert.Equal(t, "best", results.Documents[0].Document.ID)
	// Chunks of the excluded document never appear.
	for _, rc := range results.Chunks {
		assert.Equal(t, "best", rc.Chunk.DocumentID)
	}
}

func TestSearch_RelevanceFloorFiltersWeakChunks(t *testing.T) {
	store := memory.NewDocumentStore()
	seedDocument(t, store, "doc", []float64{1, 0, 0},
		[]float64{0, 1, 0},  // orthogonal: score 0
		[]float64{-1, 0, 0}, // opposite: negative score
	)

	svc := NewSearchService(store, &stubEmbedder{
		vectors: map[string][]float64{"q": {1, 0, 0}},
	})

	results, err := svc.Search(context.Background(), "tenant-1", "q", 0)
	require.NoError(t, err)

	require.Len(t, results.Documents, 1)
	assert.Empty(t, results.Chunks, "sub-floor chunks must never surface")
}

func TestSearch_EmptyQueryReturnsEmptyResults(t *testing.T) {
	svc := NewSearchService(memory.NewDocumentStore(), &stubEmbedder{})

	results, err := svc.Search(context.Background(), "tenant-1", "   ", 0)
	require.NoError(t, err)
	assert.Empty(t, results.Documents)
	assert.Empty(t, results.Chunks)
}

func TestSearch_NoEmbedderFails(t *testing.T) {
	svc := NewSearchService(memory.NewDocumentStore(), nil)

	_, err := svc.Search(context.Background(), "tenant-1", "q", 0)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestSearch_IgnoresOtherTenants(t *testing.T) {
	store := memory.NewDocumentStore()
	ctx := context.Background()
	require.NoError(t, store.SaveDocument(ctx, &domain.Document{
		ID:        "other",
		TenantID:  "tenant-2",
		Status:    domain.StatusProcessed,
		Embedding: []float64{1, 0, 0},
	}))

	svc := NewSearchService(store, &stubEmbedder{
		vectors: map[string][]float64{"q": {1, 0, 0}},
	})

	results, err := svc.Search(ctx, "tenant-1", "q", 0)
	require.NoError(t, err)
	assert.Empty(t, results.Documents)
}

func TestSearch_SkipsUnprocessedDocuments(t *testing.T) {
	store := memory.NewDocumentStore()
	ctx := context.Background()
	require.NoError(t, store.SaveDocument(ctx, &domain.Document{
		ID:        "pending",
		TenantID:  "tenant-1",
		Status:    domain.StatusPending,
		Embedding: []float64{1, 0, 0},
	}))

	svc := NewSearchService(store, &stubEmbedder{
		vectors: map[string][]float64{"q": {1, 0, 0}},
	})

	results, err := svc.Search(ctx, "tenant-1", "q", 0)
	require.NoError(t, err)
	assert.Empty(t, results.Documents)
}
