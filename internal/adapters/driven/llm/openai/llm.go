// Package openai provides an LLM service adapter using OpenAI API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/deskhand/internal/core/domain"
	"github.com/custodia-labs/deskhand/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)
var _ driven.PromptStoreAware = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultLLMModel   = "gpt-4o-mini"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig holds configuration for the OpenAI LLM service.
type LLMConfig struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Can be changed for Azure OpenAI or compatible APIs.
	BaseURL string

	// Model is the LLM model to use (default: gpt-4o-mini).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// LLMService provides LLM operations using OpenAI API.
type LLMService struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	model       string
	promptStore driven.PromptStore
}

// chatCompletionRequest is the OpenAI /chat/completions request format.
type chatCompletionRequest struct {
	Model       string              `json:"model"`
	Messages    []chatCompletionMsg `json:"messages"`
	Tools       []toolDecl          `json:"tools,omitempty"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Temperature float64             `json:"temperature,omitempty"`
}

// chatCompletionMsg is the OpenAI chat message format. Content is either
// a plain string or an array of content parts for multimodal messages.
type chatCompletionMsg struct {
	Role       string        `json:"role"`
	Content    any           `json:"content"`
	ToolCalls  []toolCallMsg `json:"tool_calls,omitempty"`
	ToolCallID string        `json:"tool_call_id,omitempty"`
}

// contentPart is one element of a multimodal content array.
type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

// toolDecl is the OpenAI tool declaration format.
type toolDecl struct {
	Type     string       `json:"type"`
	Function toolFunction `json:"function"`
}

type toolFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// toolCallMsg is the OpenAI tool_calls element, shared between assistant
// echo messages and response parsing.
type toolCallMsg struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

// chatCompletionResponse is the OpenAI /chat/completions response format.
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content   string        `json:"content"`
			ToolCalls []toolCallMsg `json:"tool_calls"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewLLMService creates a new OpenAI LLM service.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	return &LLMService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Complete runs one chat completion with optional tool declarations.
func (s *LLMService) Complete(ctx context.Context, req driven.CompletionRequest) (*driven.CompletionResponse, error) {
	messages := make([]chatCompletionMsg, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, chatCompletionMsg{Role: "system", Content: req.System})
	}
	for _, msg := range req.Messages {
		messages = append(messages, convertMessage(msg))
	}

	reqBody := chatCompletionRequest{
		Model:    s.model,
		Messages: messages,
	}
	if req.MaxTokens > 0 {
		reqBody.MaxTokens = req.MaxTokens
	}
	if req.Temperature > 0 {
		reqBody.Temperature = req.Temperature
	}
	for _, tool := range req.Tools {
		reqBody.Tools = append(reqBody.Tools, toolDecl{
			Type: "function",
			Function: toolFunction{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}

	chatResp, err := s.send(ctx, reqBody)
	if err != nil {
		return nil, err
	}

	choice := chatResp.Choices[0]
	resp := &driven.CompletionResponse{Text: choice.Message.Content}
	for _, call := range choice.Message.ToolCalls {
		resp.ToolCalls = append(resp.ToolCalls, domain.ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}
	return resp, nil
}

// Generate produces text completion from a prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	resp, err := s.Complete(ctx, driven.CompletionRequest{
		Messages:    []driven.ChatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// convertMessage maps a port message to the wire format. Messages with
// parts become multimodal content arrays; plain messages stay strings.
func convertMessage(msg driven.ChatMessage) chatCompletionMsg {
	out := chatCompletionMsg{
		Role:       msg.Role,
		Content:    msg.Content,
		ToolCallID: msg.ToolCallID,
	}

	if len(msg.Parts) > 0 {
		parts := make([]contentPart, 0, len(msg.Parts))
		for _, p := range msg.Parts {
			if p.ImageData != "" {
				parts = append(parts, contentPart{
					Type: "image_url",
					ImageURL: &imageURL{
						URL: fmt.Sprintf("data:%s;base64,%s", p.ImageMIME, p.ImageData),
					},
				})
				continue
			}
			parts = append(parts, contentPart{Type: "text", Text: p.Text})
		}
		out.Content = parts
	}

	for _, call := range msg.ToolCalls {
		tc := toolCallMsg{ID: call.ID, Type: "function"}
		tc.Function.Name = call.Name
		tc.Function.Arguments = call.Arguments
		out.ToolCalls = append(out.ToolCalls, tc)
	}
	return out
}

// send posts one chat completion request and validates the envelope.
func (s *LLMService) send(ctx context.Context, reqBody chatCompletionRequest) (*chatCompletionResponse, error) {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/chat/completions",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if chatResp.Error != nil {
		return nil, fmt.Errorf("openai error: %s", chatResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openai error (status %d): %s", resp.StatusCode, string(body))
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("openai: no response choices returned")
	}
	return &chatResp, nil
}

// defaultAnalysePrompt is the fallback prompt when no PromptStore is configured.
const defaultAnalysePrompt = `Analyse the following document and return ONLY a JSON object with these fields:
- "title": a short human-readable title
- "summary": a 2-4 sentence summary
- "tags": 5-10 short topical labels
- "keywords": 10-15 search keywords
- "topic": the single dominant topic
- "sentiment": one of "positive", "negative" or "neutral"
- "sentiment_score": a number between -1 and 1

File name: %s
Content type: %s

Document:
%s

JSON:`

// analysisPayload is the expected shape of the model's analysis output.
type analysisPayload struct {
	Title          string   `json:"title"`
	Summary        string   `json:"summary"`
	Tags           []string `json:"tags"`
	Keywords       []string `json:"keywords"`
	Topic          string   `json:"topic"`
	Sentiment      string   `json:"sentiment"`
	SentimentScore float64  `json:"sentiment_score"`
}

// Analyze extracts structured metadata from document text.
func (s *LLMService) Analyze(ctx context.Context, req driven.AnalysisRequest) (*domain.Analysis, error) {
	promptTemplate := s.loadPrompt(driven.PromptAnalyse, defaultAnalysePrompt)
	prompt := fmt.Sprintf(promptTemplate, req.FileName, req.MIMEType, req.Text)

	raw, err := s.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   1000,
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("analyse: %w", err)
	}

	var payload analysisPayload
	if err := json.Unmarshal([]byte(extractJSON(raw)), &payload); err != nil {
		return nil, fmt.Errorf("%w: parse analysis response: %v", domain.ErrAnalysis, err)
	}

	analysis := &domain.Analysis{
		Title:          strings.TrimSpace(payload.Title),
		Summary:        strings.TrimSpace(payload.Summary),
		Tags:           payload.Tags,
		Keywords:       payload.Keywords,
		Topic:          payload.Topic,
		Sentiment:      payload.Sentiment,
		SentimentScore: payload.SentimentScore,
	}
	if !analysis.Complete() {
		return nil, fmt.Errorf("%w: response missing title or summary", domain.ErrAnalysis)
	}
	analysis.Normalise()
	return analysis, nil
}

// extractJSON trims code fences and surrounding prose from a model reply,
// keeping the outermost JSON object.
func extractJSON(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return raw
	}
	return raw[start : end+1]
}

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func (s *LLMService) loadPrompt(name, fallback string) string {
	if s.promptStore == nil {
		return fallback
	}
	prompt, err := s.promptStore.Load(name)
	if err != nil {
		return fallback
	}
	return prompt
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the service uses hardcoded default prompts.
func (s *LLMService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// Ping validates the service is reachable by checking the /models endpoint.
// This is a lightweight check that validates the API key without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("openai: failed to create ping request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("openai: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("openai: API returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("openai: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
