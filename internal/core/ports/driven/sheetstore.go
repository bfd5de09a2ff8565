package driven

import (
	"context"

	"github.com/custodia-labs/deskhand/internal/core/domain"
)

// SheetStore persists tenant-to-spreadsheet bindings with their cached
// tab layouts.
type SheetStore interface {
	// Save stores or updates a connected sheet. Saving a binding that
	// already exists for (tenant, spreadsheet) updates it in place.
	Save(ctx context.Context, sheet *domain.ConnectedSheet) error

	// Get retrieves a connected sheet by ID.
	Get(ctx context.Context, id string) (*domain.ConnectedSheet, error)

	// ListByTenant returns all sheets connected by a tenant.
	ListByTenant(ctx context.Context, tenantID string) ([]domain.ConnectedSheet, error)

	// Delete removes a connected sheet binding.
	Delete(ctx context.Context, id string) error
}

// ConversationStore persists append-only conversation turns.
type ConversationStore interface {
	// Append records a turn. Turns are never mutated after creation.
	Append(ctx context.Context, turn *domain.ConversationTurn) error

	// History returns a tenant's turns in creation order, newest last,
	// optionally restricted to one conversation, capped at limit.
	History(ctx context.Context, tenantID, conversationID string, limit int) ([]domain.ConversationTurn, error)
}

// AuditStore persists records of external side effects.
type AuditStore interface {
	// Record stores an audit entry.
	Record(ctx context.Context, entry *domain.AuditEntry) error

	// ListByTenant returns a tenant's audit entries, newest first.
	ListByTenant(ctx context.Context, tenantID string, limit int) ([]domain.AuditEntry, error)
}
