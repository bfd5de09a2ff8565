package driving

import (
	"context"

	"github.com/custodia-labs/deskhand/internal/core/domain"
)

// Searcher performs two-stage semantic retrieval over a tenant's
// processed documents.
type Searcher interface {
	// Search embeds the query once, ranks the tenant's processed
	// documents by similarity, takes the top limit (default 5), then
	// ranks the chunks of those documents and returns the top 8 above
	// the relevance floor.
	Search(ctx context.Context, tenantID, query string, limit int) (*domain.SearchResults, error)
}
