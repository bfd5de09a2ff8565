package driven

import (
	"context"
	"encoding/json"

	"github.com/custodia-labs/deskhand/internal/core/domain"
)

// LLMService provides language model operations: chat completion with
// optional tool calling and image input, plain text generation, and
// structured document analysis.
//
// Implementations may include:
//   - OpenAI (GPT-4o family)
//   - Ollama (local models)
type LLMService interface {
	// Complete runs one chat completion. When the request declares tools
	// the response may contain tool calls instead of (or alongside) text.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Generate produces text completion from a single prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// Analyze extracts structured metadata from document text.
	// The implementation owns parsing the model's structured output and
	// must return an error wrapping domain.ErrAnalysis when required
	// fields are absent; it never silently proceeds with partial data.
	Analyze(ctx context.Context, req AnalysisRequest) (*domain.Analysis, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ContentPart is one piece of a multi-part message: text or an image.
type ContentPart struct {
	// Text is the text content when this is a text part.
	Text string

	// ImageData is the base64-encoded image when this is an image part.
	ImageData string

	// ImageMIME is the image content type, e.g. "image/png".
	ImageMIME string
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", "assistant" or "tool".
	Role string

	// Content is the message text. For simple messages this is the whole
	// payload; when Parts is non-empty it is ignored.
	Content string

	// Parts holds multi-part content (text plus inlined images).
	Parts []ContentPart

	// ToolCalls echoes an assistant message's tool requests back to the
	// model on subsequent turns.
	ToolCalls []domain.ToolCall

	// ToolCallID links a role "tool" result message to the call it
	// answers.
	ToolCallID string
}

// ToolSpec declares one tool the model may invoke.
type ToolSpec struct {
	// Name is the tool identifier the model uses to invoke it.
	Name string

	// Description tells the model what the tool does.
	Description string

	// Parameters is the JSON Schema of the tool's arguments.
	Parameters json.RawMessage
}

// CompletionRequest configures one chat completion call.
type CompletionRequest struct {
	// System is the system prompt, prepended as a system message.
	System string

	// Messages is the conversation so far, oldest first.
	Messages []ChatMessage

	// Tools declares the tool surface. Empty means no tool calling.
	Tools []ToolSpec

	// MaxTokens caps the response length. Zero uses the provider default.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64
}

// CompletionResponse is the model's reply to one completion call.
type CompletionResponse struct {
	// Text is the natural-language content, possibly empty when the
	// model only requested tools.
	Text string

	// ToolCalls are the tool invocations the model requested, in order.
	ToolCalls []domain.ToolCall
}

// GenerateOptions configures plain text generation.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}

// AnalysisRequest asks for structured metadata about document text.
// Text is expected to be pre-truncated by the caller; implementations may
// truncate further to fit their context window.
type AnalysisRequest struct {
	// Text is a bounded prefix of the extracted document text.
	Text string

	// FileName is the original file or resource name.
	FileName string

	// MIMEType is the source content type.
	MIMEType string
}
