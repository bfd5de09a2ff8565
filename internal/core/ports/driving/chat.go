package driving

import (
	"context"

	"github.com/custodia-labs/deskhand/internal/core/domain"
)

// ImageAttachment is an image supplied with a chat message.
type ImageAttachment struct {
	// Data is the base64-encoded image content.
	Data string

	// MIMEType is the image content type, e.g. "image/png".
	MIMEType string
}

// ChatRequest is one user message with its attachments and options,
// validated once at the boundary so internal components never see raw
// untyped input.
type ChatRequest struct {
	// TenantID is the owning tenant.
	TenantID string

	// Message is the user's message text.
	Message string

	// ConversationID groups turns. Empty starts an ungrouped turn.
	ConversationID string

	// Images are attachments inlined into the model request. A message
	// with images never routes to the tool agent.
	Images []ImageAttachment

	// IncludeSourceImages inlines images stored as documents of the
	// tenant alongside the retrieved text context.
	IncludeSourceImages bool
}

// ChatResponse is the answer to one chat request.
type ChatResponse struct {
	// Text is the model's natural-language answer.
	Text string

	// Sources are the retrieval citations behind the answer.
	Sources []domain.SourceRef

	// Operations is the ordered audit trail of spreadsheet operations
	// executed during the turn. Empty for plain retrieval answers.
	Operations []domain.ToolOperation
}

// ChatService answers tenant questions over their knowledge base, with
// spreadsheet edits through tool calling when the message is sheet-related.
type ChatService interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}
