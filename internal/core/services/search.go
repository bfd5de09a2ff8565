package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/deskhand/internal/core/domain"
	"github.com/custodia-labs/deskhand/internal/core/ports/driven"
	"github.com/custodia-labs/deskhand/internal/core/ports/driving"
	"github.com/custodia-labs/deskhand/internal/logger"
	"github.com/custodia-labs/deskhand/internal/similarity"
)

// Ensure SearchService implements the interface.
var _ driving.Searcher = (*SearchService)(nil)

// DefaultDocumentLimit is how many documents the coarse stage returns
// when the caller does not specify a limit.
const DefaultDocumentLimit = 5

// chunkLimit is how many chunks the fine stage returns at most.
const chunkLimit = 8

// SearchService performs two-stage coarse-to-fine semantic retrieval:
// rank documents by their document-level embedding, then rank only the
// chunks of the winning documents. This avoids scoring every chunk in
// the tenant's corpus when only a handful of documents are relevant.
type SearchService struct {
	docStore driven.DocumentStore
	embedder driven.EmbeddingService
}

// NewSearchService creates a new retrieval service.
func NewSearchService(docStore driven.DocumentStore, embedder driven.EmbeddingService) *SearchService {
	return &SearchService{
		docStore: docStore,
		embedder: embedder,
	}
}

// Search retrieves the documents and chunks most similar to query.
//
// The document stage applies no similarity floor: even weak matches are
// returned so the caller can show them as referenced context. The chunk
// stage applies the hard relevance floor; sub-floor chunks are noise and
// are never surfaced, even when fewer than the limit qualify.
func (s *SearchService) Search(
	ctx context.Context, tenantID, query string, limit int,
) (*domain.SearchResults, error) {
	logger.Section("Retrieval")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		return &domain.SearchResults{}, nil
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	if limit <= 0 {
		limit = DefaultDocumentLimit
	}

	// Embed the query once; both stages score against this vector
	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", domain.ErrEmbedding, err)
	}

	// Coarse stage: rank all processed documents of the tenant
	docs, err := s.docStore.ListDocuments(ctx, tenantID, driven.DocumentFilter{
		Status: domain.StatusProcessed,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list documents: %w", domain.ErrRetrieval, err)
	}
	logger.Debug("Scoring %d processed documents", len(docs))

	topDocs := similarity.TopK(docs, func(d domain.Document) float64 {
		return similarity.Cosine(queryVec, d.Embedding)
	}, limit)

	results := &domain.SearchResults{
		Documents: make([]domain.RankedDocument, len(topDocs)),
	}
	titles := make(map[string]string, len(topDocs))
	for i, sd := range topDocs {
		results.Documents[i] = domain.RankedDocument{Document: sd.Item, Score: sd.Score}
		titles[sd.Item.ID] = sd.Item.Title
	}

	// Fine stage: score only the chunks of the winning documents
	var candidates []domain.Chunk
	for _, rd := range results.Documents {
		chunks, err := s.docStore.GetChunks(ctx, rd.Document.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: get chunks for %s: %w", domain.ErrRetrieval, rd.Document.ID, err)
		}
		candidates = append(candidates, chunks...)
	}
	logger.Debug("Scoring %d candidate chunks", len(candidates))

	scored := similarity.TopK(candidates, func(c domain.Chunk) float64 {
		return similarity.Cosine(queryVec, c.Embedding)
	}, len(candidates))

	for _, sc := range scored {
		if sc.Score <= domain.ChunkRelevanceFloor {
			break // sorted descending; everything after is sub-floor
		}
		results.Chunks = append(results.Chunks, domain.RankedChunk{
			Chunk:         sc.Item,
			DocumentTitle: titles[sc.Item.DocumentID],
			Score:         sc.Score,
		})
		if len(results.Chunks) == chunkLimit {
			break
		}
	}

	logger.Info("Retrieval: %d documents, %d chunks", len(results.Documents), len(results.Chunks))
	return results, nil
}
