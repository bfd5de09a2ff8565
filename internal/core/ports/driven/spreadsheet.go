package driven

import (
	"context"

	"github.com/custodia-labs/deskhand/internal/core/domain"
)

// SpreadsheetInfo describes a spreadsheet and its tab layout.
type SpreadsheetInfo struct {
	// Title is the spreadsheet title.
	Title string

	// Tabs are the spreadsheet's worksheets.
	Tabs []domain.TabInfo
}

// Spreadsheet provides read and write access to an external tabular
// resource. There is no transactional guarantee across calls: a column
// insertion followed by per-cell writes is not atomic, and callers must
// tolerate partially applied sequences.
//
// Implementations must return an error wrapping domain.ErrQuotaExceeded
// when the provider rejects a call for rate-limit reasons, so callers can
// apply their own backoff policy.
type Spreadsheet interface {
	// GetInfo returns the spreadsheet title and tab layout.
	GetInfo(ctx context.Context, spreadsheetID string) (*SpreadsheetInfo, error)

	// ReadRange returns the cell values of an A1-notation range. A bare
	// sheet name reads the whole sheet. Rows may be ragged; trailing
	// empty cells are omitted by the provider.
	ReadRange(ctx context.Context, spreadsheetID, a1Range string) ([][]string, error)

	// WriteRange overwrites the cells of an A1-notation range.
	WriteRange(ctx context.Context, spreadsheetID, a1Range string, values [][]string) (int, error)

	// AppendRows appends rows after the last data row of a sheet.
	AppendRows(ctx context.Context, spreadsheetID, sheetName string, values [][]string) (int, error)

	// UpdateCell writes a single cell, e.g. ("Sheet1", "B2", "x").
	UpdateCell(ctx context.Context, spreadsheetID, sheetName, cell, value string) error

	// ClearRange clears the cells of an A1-notation range.
	ClearRange(ctx context.Context, spreadsheetID, a1Range string) error

	// InsertColumn inserts count empty columns before the 0-based
	// column index on the given tab.
	InsertColumn(ctx context.Context, spreadsheetID string, tabID int64, index, count int) error

	// AddTab creates a new worksheet and returns its numeric ID.
	AddTab(ctx context.Context, spreadsheetID, name string) (int64, error)
}
