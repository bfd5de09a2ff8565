package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/deskhand/internal/core/domain"
	"github.com/custodia-labs/deskhand/internal/core/ports/driven"
	"github.com/custodia-labs/deskhand/internal/core/ports/driving"
	"github.com/custodia-labs/deskhand/internal/logger"
)

// Ensure SheetManager implements the interface.
var _ driving.SheetService = (*SheetManager)(nil)

// SheetManager manages tenant spreadsheet connections and keeps their
// cached tab layouts fresh.
type SheetManager struct {
	sheetStore driven.SheetStore
	provider   driven.Spreadsheet
}

// NewSheetManager creates a new sheet manager.
func NewSheetManager(sheetStore driven.SheetStore, provider driven.Spreadsheet) *SheetManager {
	return &SheetManager{
		sheetStore: sheetStore,
		provider:   provider,
	}
}

// Connect binds a spreadsheet to a tenant, caching its tab layout.
// Connecting a spreadsheet the tenant already connected refreshes the
// existing binding instead of creating a duplicate.
func (m *SheetManager) Connect(ctx context.Context, tenantID, spreadsheetID string) (*domain.ConnectedSheet, error) {
	if tenantID == "" || spreadsheetID == "" {
		return nil, fmt.Errorf("%w: tenant id and spreadsheet id required", domain.ErrInvalidInput)
	}

	info, err := m.provider.GetInfo(ctx, spreadsheetID)
	if err != nil {
		return nil, fmt.Errorf("get spreadsheet info: %w", err)
	}

	now := time.Now().UTC()
	sheet := &domain.ConnectedSheet{
		ID:            uuid.New().String(),
		TenantID:      tenantID,
		SpreadsheetID: spreadsheetID,
		Title:         info.Title,
		Tabs:          info.Tabs,
		SyncedAt:      now,
		CreatedAt:     now,
	}

	// Unique per (tenant, spreadsheet): reuse an existing binding
	existing, err := m.sheetStore.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list connected sheets: %w", err)
	}
	for _, e := range existing {
		if e.SpreadsheetID == spreadsheetID {
			sheet.ID = e.ID
			sheet.CreatedAt = e.CreatedAt
			break
		}
	}

	if err := m.sheetStore.Save(ctx, sheet); err != nil {
		return nil, fmt.Errorf("save connected sheet: %w", err)
	}

	logger.Info("Connected sheet %q (%d tabs) for tenant %s", info.Title, len(info.Tabs), tenantID)
	return sheet, nil
}

// List returns a tenant's connected sheets.
func (m *SheetManager) List(ctx context.Context, tenantID string) ([]domain.ConnectedSheet, error) {
	sheets, err := m.sheetStore.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list connected sheets: %w", err)
	}
	return sheets, nil
}

// Sync refreshes the cached tab layout of a connected sheet.
func (m *SheetManager) Sync(ctx context.Context, sheetID string) (*domain.ConnectedSheet, error) {
	sheet, err := m.sheetStore.Get(ctx, sheetID)
	if err != nil {
		return nil, fmt.Errorf("get connected sheet: %w", err)
	}

	info, err := m.provider.GetInfo(ctx, sheet.SpreadsheetID)
	if err != nil {
		return nil, fmt.Errorf("get spreadsheet info: %w", err)
	}

	sheet.Title = info.Title
	sheet.Tabs = info.Tabs
	sheet.SyncedAt = time.Now().UTC()

	if err := m.sheetStore.Save(ctx, sheet); err != nil {
		return nil, fmt.Errorf("save connected sheet: %w", err)
	}
	return sheet, nil
}

// Disconnect removes a sheet binding.
func (m *SheetManager) Disconnect(ctx context.Context, sheetID string) error {
	if err := m.sheetStore.Delete(ctx, sheetID); err != nil {
		return fmt.Errorf("delete connected sheet: %w", err)
	}
	return nil
}
