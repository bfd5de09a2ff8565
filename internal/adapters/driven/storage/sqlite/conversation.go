package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/deskhand/internal/core/domain"
	"github.com/custodia-labs/deskhand/internal/core/ports/driven"
)

// conversationStore implements driven.ConversationStore.
type conversationStore struct {
	store *Store
}

var _ driven.ConversationStore = (*conversationStore)(nil)

// Append records a conversation turn.
func (s *conversationStore) Append(ctx context.Context, turn *domain.ConversationTurn) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO conversation_turns (id, tenant_id, conversation_id, role, content, document_ids, sources, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, turn.ID, turn.TenantID, turn.ConversationID, string(turn.Role), turn.Content,
		encodeJSON(turn.DocumentIDs), encodeJSON(turn.Sources), turn.CreatedAt)

	if err != nil {
		return fmt.Errorf("appending conversation turn: %w", err)
	}
	return nil
}

// History returns a tenant's turns in creation order, newest last.
// The query selects the newest rows, then reverses them so callers see
// chronological order.
func (s *conversationStore) History(
	ctx context.Context, tenantID, conversationID string, limit int,
) ([]domain.ConversationTurn, error) {
	query := `
		SELECT id, tenant_id, conversation_id, role, content, document_ids, sources, created_at
		FROM conversation_turns WHERE tenant_id = ?`
	args := []any{tenantID}

	if conversationID != "" {
		query += " AND conversation_id = ?"
		args = append(args, conversationID)
	}
	query += " ORDER BY created_at DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying conversation turns: %w", err)
	}
	defer rows.Close()

	var turns []domain.ConversationTurn //nolint:prealloc // size unknown from query
	for rows.Next() {
		var turn domain.ConversationTurn
		var role, documentIDs, sources string
		if err := rows.Scan(&turn.ID, &turn.TenantID, &turn.ConversationID,
			&role, &turn.Content, &documentIDs, &sources, &turn.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning conversation turn: %w", err)
		}
		turn.Role = domain.TurnRole(role)
		turn.DocumentIDs = decodeStrings(documentIDs)
		if err := json.Unmarshal([]byte(sources), &turn.Sources); err != nil {
			turn.Sources = nil
		}
		turns = append(turns, turn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating conversation turns: %w", err)
	}

	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}
