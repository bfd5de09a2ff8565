package sqlite

import (
	"context"
	"fmt"

	"github.com/custodia-labs/deskhand/internal/core/domain"
	"github.com/custodia-labs/deskhand/internal/core/ports/driven"
)

// auditStore implements driven.AuditStore.
type auditStore struct {
	store *Store
}

var _ driven.AuditStore = (*auditStore)(nil)

// Record stores an audit entry.
func (s *auditStore) Record(ctx context.Context, entry *domain.AuditEntry) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO audit_log (id, tenant_id, operation, spreadsheet_id, target, cells_affected, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.TenantID, entry.Operation, entry.SpreadsheetID,
		entry.Target, entry.CellsAffected, entry.Detail, entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("recording audit entry: %w", err)
	}
	return nil
}

// ListByTenant returns a tenant's audit entries, newest first.
func (s *auditStore) ListByTenant(
	ctx context.Context, tenantID string, limit int,
) ([]domain.AuditEntry, error) {
	query := `
		SELECT id, tenant_id, operation, spreadsheet_id, target, cells_affected, detail, created_at
		FROM audit_log WHERE tenant_id = ? ORDER BY created_at DESC, id DESC`
	args := []any{tenantID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit log: %w", err)
	}
	defer rows.Close()

	var entries []domain.AuditEntry //nolint:prealloc // size unknown from query
	for rows.Next() {
		var entry domain.AuditEntry
		if err := rows.Scan(&entry.ID, &entry.TenantID, &entry.Operation,
			&entry.SpreadsheetID, &entry.Target, &entry.CellsAffected,
			&entry.Detail, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit log: %w", err)
	}
	return entries, nil
}
