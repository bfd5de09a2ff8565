package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/deskhand/internal/core/domain"
	"github.com/custodia-labs/deskhand/internal/core/ports/driven"
)

// Interface guards.
var (
	_ driven.SheetStore        = (*SheetStore)(nil)
	_ driven.ConversationStore = (*ConversationStore)(nil)
	_ driven.AuditStore        = (*AuditStore)(nil)
	_ driven.TenantStore       = (*TenantStore)(nil)
)

// SheetStore is an in-memory implementation of driven.SheetStore.
type SheetStore struct {
	mu     sync.RWMutex
	sheets map[string]domain.ConnectedSheet
}

// NewSheetStore creates a new in-memory sheet store.
func NewSheetStore() *SheetStore {
	return &SheetStore{sheets: make(map[string]domain.ConnectedSheet)}
}

// Save stores or updates a connected sheet.
func (s *SheetStore) Save(_ context.Context, sheet *domain.ConnectedSheet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sheets[sheet.ID] = *sheet
	return nil
}

// Get retrieves a connected sheet by ID.
func (s *SheetStore) Get(_ context.Context, id string) (*domain.ConnectedSheet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sheet, ok := s.sheets[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &sheet, nil
}

// ListByTenant returns all sheets connected by a tenant.
func (s *SheetStore) ListByTenant(_ context.Context, tenantID string) ([]domain.ConnectedSheet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sheets []domain.ConnectedSheet
	for _, sheet := range s.sheets {
		if sheet.TenantID == tenantID {
			sheets = append(sheets, sheet)
		}
	}
	sort.Slice(sheets, func(i, j int) bool { return sheets[i].ID < sheets[j].ID })
	return sheets, nil
}

// Delete removes a connected sheet binding.
func (s *SheetStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sheets, id)
	return nil
}

// ConversationStore is an in-memory implementation of
// driven.ConversationStore.
type ConversationStore struct {
	mu    sync.RWMutex
	turns []domain.ConversationTurn
}

// NewConversationStore creates a new in-memory conversation store.
func NewConversationStore() *ConversationStore {
	return &ConversationStore{}
}

// Append records a turn.
func (s *ConversationStore) Append(_ context.Context, turn *domain.ConversationTurn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, *turn)
	return nil
}

// History returns a tenant's turns in creation order, newest last.
func (s *ConversationStore) History(
	_ context.Context, tenantID, conversationID string, limit int,
) ([]domain.ConversationTurn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var turns []domain.ConversationTurn
	for _, turn := range s.turns {
		if turn.TenantID != tenantID {
			continue
		}
		if conversationID != "" && turn.ConversationID != conversationID {
			continue
		}
		turns = append(turns, turn)
	}

	sort.SliceStable(turns, func(i, j int) bool { return turns[i].CreatedAt.Before(turns[j].CreatedAt) })
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	return turns, nil
}

// AuditStore is an in-memory implementation of driven.AuditStore.
type AuditStore struct {
	mu      sync.RWMutex
	entries []domain.AuditEntry
}

// NewAuditStore creates a new in-memory audit store.
func NewAuditStore() *AuditStore {
	return &AuditStore{}
}

// Record stores an audit entry.
func (s *AuditStore) Record(_ context.Context, entry *domain.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, *entry)
	return nil
}

// ListByTenant returns a tenant's audit entries, newest first.
func (s *AuditStore) ListByTenant(_ context.Context, tenantID string, limit int) ([]domain.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []domain.AuditEntry
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].TenantID != tenantID {
			continue
		}
		entries = append(entries, s.entries[i])
		if limit > 0 && len(entries) == limit {
			break
		}
	}
	return entries, nil
}

// TenantStore is an in-memory implementation of driven.TenantStore.
type TenantStore struct {
	mu      sync.RWMutex
	tenants map[string]domain.Tenant
}

// NewTenantStore creates a new in-memory tenant store.
func NewTenantStore() *TenantStore {
	return &TenantStore{tenants: make(map[string]domain.Tenant)}
}

// Get retrieves a tenant by ID.
func (s *TenantStore) Get(_ context.Context, id string) (*domain.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tenant, ok := s.tenants[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &tenant, nil
}

// Save stores or updates a tenant.
func (s *TenantStore) Save(_ context.Context, tenant *domain.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenants[tenant.ID] = *tenant
	return nil
}
