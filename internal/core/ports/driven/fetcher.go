package driven

import (
	"context"

	"github.com/custodia-labs/deskhand/internal/core/domain"
)

// SourceFetcher retrieves raw material for remote sources (URLs, Google
// Docs, Google Sheets). Upload sources carry their bytes directly and
// never hit the fetcher.
type SourceFetcher interface {
	// Fetch returns the raw bytes and effective MIME type for a source
	// reference. It returns an error wrapping domain.ErrUnsupportedType
	// for source types it cannot handle.
	Fetch(ctx context.Context, source domain.SourceType, ref string) ([]byte, string, error)
}
