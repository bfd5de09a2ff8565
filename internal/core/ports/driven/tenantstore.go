package driven

import (
	"context"

	"github.com/custodia-labs/deskhand/internal/core/domain"
)

// TenantStore reads tenant records. Tenant administration is out of the
// core's scope; only lookups are needed here.
type TenantStore interface {
	// Get retrieves a tenant by ID.
	Get(ctx context.Context, id string) (*domain.Tenant, error)

	// Save stores or updates a tenant.
	Save(ctx context.Context, tenant *domain.Tenant) error
}
