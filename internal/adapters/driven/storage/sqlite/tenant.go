package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/deskhand/internal/core/domain"
	"github.com/custodia-labs/deskhand/internal/core/ports/driven"
)

// tenantStore implements driven.TenantStore.
type tenantStore struct {
	store *Store
}

var _ driven.TenantStore = (*tenantStore)(nil)

// Get retrieves a tenant by ID.
func (s *tenantStore) Get(ctx context.Context, id string) (*domain.Tenant, error) {
	var tenant domain.Tenant
	err := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, description, created_at FROM tenants WHERE id = ?
	`, id).Scan(&tenant.ID, &tenant.Name, &tenant.Description, &tenant.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning tenant: %w", err)
	}
	return &tenant, nil
}

// Save stores or updates a tenant.
func (s *tenantStore) Save(ctx context.Context, tenant *domain.Tenant) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO tenants (id, name, description, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description
	`, tenant.ID, tenant.Name, tenant.Description, tenant.CreatedAt)

	if err != nil {
		return fmt.Errorf("saving tenant: %w", err)
	}
	return nil
}
