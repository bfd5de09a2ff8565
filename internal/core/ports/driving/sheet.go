package driving

import (
	"context"

	"github.com/custodia-labs/deskhand/internal/core/domain"
)

// SheetService manages tenant spreadsheet connections.
type SheetService interface {
	// Connect binds a spreadsheet to a tenant and caches its tab
	// layout. Connecting an already connected spreadsheet refreshes it.
	Connect(ctx context.Context, tenantID, spreadsheetID string) (*domain.ConnectedSheet, error)

	// List returns a tenant's connected sheets.
	List(ctx context.Context, tenantID string) ([]domain.ConnectedSheet, error)

	// Sync refreshes the cached tab layout of a connected sheet.
	Sync(ctx context.Context, sheetID string) (*domain.ConnectedSheet, error)

	// Disconnect removes a sheet binding. Documents imported from the
	// sheet are unaffected.
	Disconnect(ctx context.Context, sheetID string) error
}
