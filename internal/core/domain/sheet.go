package domain

import "time"

// ConnectedSheet is a tenant-scoped binding between a spreadsheet and a
// tenant, with a cached snapshot of the spreadsheet's tab layout.
// Unique per (TenantID, SpreadsheetID).
type ConnectedSheet struct {
	// ID is the unique identifier for the binding.
	ID string

	// TenantID is the owning tenant.
	TenantID string

	// SpreadsheetID is the provider-side spreadsheet identifier.
	SpreadsheetID string

	// Title is the spreadsheet's title at last sync.
	Title string

	// Tabs is the cached tab layout at last sync.
	Tabs []TabInfo

	// SyncedAt is when the tab layout was last refreshed.
	SyncedAt time.Time

	// CreatedAt is when the sheet was connected.
	CreatedAt time.Time
}

// TabInfo describes one tab (worksheet) of a connected spreadsheet.
type TabInfo struct {
	// ID is the provider-side numeric tab identifier.
	ID int64

	// Name is the tab title.
	Name string

	// RowCount and ColumnCount are the grid dimensions at last sync.
	RowCount    int
	ColumnCount int
}

// TabNames returns the names of all cached tabs.
func (s *ConnectedSheet) TabNames() []string {
	names := make([]string, len(s.Tabs))
	for i, t := range s.Tabs {
		names[i] = t.Name
	}
	return names
}
