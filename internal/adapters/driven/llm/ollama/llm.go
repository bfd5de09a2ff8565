// Package ollama provides an LLM service adapter using Ollama.
package ollama

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
	DefaultBaseURL    = "http://localhost:11434"
	DefaultLLMModel   = "llama3.2"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig holds configuration for the Ollama LLM service.
type LLMConfig struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the LLM model to use (default: llama3.2).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// LLMService provides LLM operations using Ollama.
type LLMService struct {
	client      *http.Client
	baseURL     string
	model       string
	promptStore driven.PromptStore
}

// chatRequest is the Ollama /api/chat request format.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Tools    []toolDecl    `json:"tools,omitempty"`
	Stream   bool          `json:"stream"`
	Options  *options      `json:"options,omitempty"`
}

// options holds generation parameters.
type options struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// chatMessage is the Ollama chat message format. Images are inlined as
// base64 strings per the Ollama multimodal convention.
type chatMessage struct {
	Role      string        `json:"role"`
	Content   string        `json:"content"`
	Images    []string      `json:"images,omitempty"`
	ToolCalls []toolCallMsg `json:"tool_calls,omitempty"`
}

// toolDecl is the Ollama tool declaration format, mirroring OpenAI.
type toolDecl struct {
	Type     string       `json:"type"`
	Function toolFunction `json:"function"`
}

type toolFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// toolCallMsg is the Ollama tool_calls element. Unlike OpenAI, Ollama
// returns arguments as a JSON object rather than an encoded string.
type toolCallMsg struct {
	Function struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	} `json:"function"`
}

// chatResponse is the Ollama /api/chat response format.
type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
}

// NewLLMService creates a new Ollama LLM service.
func NewLLMService(cfg LLMConfig) *LLMService {
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
		model:   cfg.Model,
	}
}

// Complete runs one chat completion with optional tool declarations.
func (s *LLMService) Complete(ctx context.Context, req driven.CompletionRequest) (*driven.CompletionResponse, error) {
	messages := make([]chatMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	for _, msg := range req.Messages {
		messages = append(messages, convertMessage(msg))
	}

	reqBody := chatRequest{
		Model:    s.model,
		Messages: messages,
		Stream:   false,
	}
	if req.MaxTokens > 0 || req.Temperature > 0 {
		reqBody.Options = &options{
			NumPredict:  req.MaxTokens,
			Temperature: req.Temperature,
		}
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

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/api/chat",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("ollama error (status %d): failed to read response", resp.StatusCode)
		}
		return nil, fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	out := &driven.CompletionResponse{Text: chatResp.Message.Content}
	for i, call := range chatResp.Message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, domain.ToolCall{
			// Ollama assigns no call IDs; synthesise stable ones.
			ID:        fmt.Sprintf("call_%d", i),
			Name:      call.Function.Name,
			Arguments: string(call.Function.Arguments),
		})
	}
	return out, nil
}

// convertMessage maps a port message to the Ollama wire format.
func convertMessage(msg driven.ChatMessage) chatMessage {
	out := chatMessage{
		Role:    msg.Role,
		Content: msg.Content,
	}

	if len(msg.Parts) > 0 {
		var texts []string
		for _, p := range msg.Parts {
			if p.ImageData != "" {
				out.Images = append(out.Images, p.ImageData)
				continue
			}
			texts = append(texts, p.Text)
		}
		out.Content = strings.Join(texts, "\n")
	}

	for _, call := range msg.ToolCalls {
		var tc toolCallMsg
		tc.Function.Name = call.Name
		tc.Function.Arguments = json.RawMessage(call.Arguments)
		out.ToolCalls = append(out.ToolCalls, tc)
	}
	return out
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

// Ping validates the service is reachable by checking the /api/tags endpoint.
func (s *LLMService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: failed to create ping request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("ollama: API returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("ollama: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
