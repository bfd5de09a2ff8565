package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/deskhand/internal/core/domain"
	"github.com/custodia-labs/deskhand/internal/core/ports/driven"
)

// sheetStore implements driven.SheetStore.
type sheetStore struct {
	store *Store
}

var _ driven.SheetStore = (*sheetStore)(nil)

// Save stores or updates a connected sheet.
func (s *sheetStore) Save(ctx context.Context, sheet *domain.ConnectedSheet) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO connected_sheets (id, tenant_id, spreadsheet_id, title, tabs, synced_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(tenant_id, spreadsheet_id) DO UPDATE SET
			title = excluded.title,
			tabs = excluded.tabs,
			synced_at = excluded.synced_at
	`, sheet.ID, sheet.TenantID, sheet.SpreadsheetID, sheet.Title,
		encodeJSON(sheet.Tabs), sheet.SyncedAt, sheet.CreatedAt)

	if err != nil {
		return fmt.Errorf("saving connected sheet: %w", err)
	}
	return nil
}

// Get retrieves a connected sheet by ID.
func (s *sheetStore) Get(ctx context.Context, id string) (*domain.ConnectedSheet, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, spreadsheet_id, title, tabs, synced_at, created_at
		FROM connected_sheets WHERE id = ?
	`, id)

	sheet, err := scanSheet(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning connected sheet: %w", err)
	}
	return sheet, nil
}

// ListByTenant returns all sheets connected by a tenant.
func (s *sheetStore) ListByTenant(ctx context.Context, tenantID string) ([]domain.ConnectedSheet, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, tenant_id, spreadsheet_id, title, tabs, synced_at, created_at
		FROM connected_sheets WHERE tenant_id = ? ORDER BY created_at, id
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("querying connected sheets: %w", err)
	}
	defer rows.Close()

	var sheets []domain.ConnectedSheet //nolint:prealloc // size unknown from query
	for rows.Next() {
		sheet, err := scanSheet(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning connected sheet: %w", err)
		}
		sheets = append(sheets, *sheet)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating connected sheets: %w", err)
	}
	return sheets, nil
}

// Delete removes a connected sheet binding.
func (s *sheetStore) Delete(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM connected_sheets WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting connected sheet: %w", err)
	}
	return nil
}

func scanSheet(row scanner) (*domain.ConnectedSheet, error) {
	var sheet domain.ConnectedSheet
	var tabs string

	err := row.Scan(&sheet.ID, &sheet.TenantID, &sheet.SpreadsheetID,
		&sheet.Title, &tabs, &sheet.SyncedAt, &sheet.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(tabs), &sheet.Tabs); err != nil {
		sheet.Tabs = nil
	}
	return &sheet, nil
}
