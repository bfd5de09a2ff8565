package domain

import "time"

// TurnRole identifies the author of a conversation turn.
type TurnRole string

const (
	// RoleUser is a message written by the tenant's user.
	RoleUser TurnRole = "user"

	// RoleAssistant is a message produced by the model.
	RoleAssistant TurnRole = "assistant"
)

// ConversationTurn is one message in a tenant's chat history.
// Turns are append-only and never mutated after creation; ordering by
// CreatedAt defines conversation order.
type ConversationTurn struct {
	// ID is the unique identifier for the turn.
	ID string

	// TenantID is the owning tenant.
	TenantID string

	// ConversationID groups turns into a single conversation. Optional.
	ConversationID string

	// Role is who authored the turn.
	Role TurnRole

	// Content is the message text.
	Content string

	// DocumentIDs are the documents referenced while answering. Optional.
	DocumentIDs []string

	// Sources are the retrieval citations shown alongside the answer.
	Sources []SourceRef

	// CreatedAt is when the turn was recorded.
	CreatedAt time.Time
}

// SourceRef is a citation attached to an assistant turn: which document
// contributed context and how similar it was to the query.
type SourceRef struct {
	// DocumentID identifies the cited document.
	DocumentID string

	// Title is the document title at citation time.
	Title string

	// Score is the cosine similarity against the query embedding.
	Score float64
}
