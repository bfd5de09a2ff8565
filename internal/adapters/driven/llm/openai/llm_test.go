package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deskhand/internal/core/domain"
	"github.com/custodia-labs/deskhand/internal/core/ports/driven"
)

func TestNewLLMService_RequiresAPIKey(t *testing.T) {
	_, err := NewLLMService(LLMConfig{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestNewLLMService_Defaults(t *testing.T) {
	svc, err := NewLLMService(LLMConfig{APIKey: "sk-test"})
	require.NoError(t, err)
	assert.Equal(t, DefaultLLMModel, svc.ModelName())
}

func TestComplete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)

		_, _ = fmt.Fprint(w, `{"choices": [{"message": {"content": "Hello back."}, "finish_reason": "stop"}]}`)
	}))
	defer server.Close()

	svc, err := NewLLMService(LLMConfig{APIKey: "sk-test", BaseURL: server.URL})
	require.NoError(t, err)

	resp, err := svc.Complete(context.Background(), driven.CompletionRequest{
		System:   "You are helpful.",
		Messages: []driven.ChatMessage{{Role: "user", Content: "Hello."}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello back.", resp.Text)
	assert.Empty(t, resp.ToolCalls)
}

func TestComplete_ToolCalls(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Tools, 1)
		assert.Equal(t, "function", req.Tools[0].Type)
		assert.Equal(t, "update_cell", req.Tools[0].Function.Name)

		_, _ = fmt.Fprint(w, `{"choices": [{"message": {"content": "", "tool_calls": [
			{"id": "call_1", "type": "function", "function": {"name": "update_cell", "arguments": "{\"cell\":\"B2\"}"}}
		]}, "finish_reason": "tool_calls"}]}`)
	}))
	defer server.Close()

	svc, err := NewLLMService(LLMConfig{APIKey: "sk-test", BaseURL: server.URL})
	require.NoError(t, err)

	resp, err := svc.Complete(context.Background(), driven.CompletionRequest{
		Messages: []driven.ChatMessage{{Role: "user", Content: "update B2"}},
		Tools: []driven.ToolSpec{{
			Name:        "update_cell",
			Description: "Update one cell.",
			Parameters:  json.RawMessage(`{"type":"object"}`),
		}},
	})
	require.NoError(t, err)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "call_1", resp.ToolCalls[0].ID)
	assert.Equal(t, "update_cell", resp.ToolCalls[0].Name)
	assert.JSONEq(t, `{"cell":"B2"}`, resp.ToolCalls[0].Arguments)
}

func TestComplete_MultimodalMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))

		messages := raw["messages"].([]any)
		content := messages[0].(map[string]any)["content"].([]any)
		require.Len(t, content, 2)

		text := content[0].(map[string]any)
		assert.Equal(t, "text", text["type"])

		image := content[1].(map[string]any)
		assert.Equal(t, "image_url", image["type"])
		url := image["image_url"].(map[string]any)["url"].(string)
		assert.Equal(t, "data:image/png;base64,aGk=", url)

		_, _ = fmt.Fprint(w, `{"choices": [{"message": {"content": "I see it."}, "finish_reason": "stop"}]}`)
	}))
	defer server.Close()

	svc, err := NewLLMService(LLMConfig{APIKey: "sk-test", BaseURL: server.URL})
	require.NoError(t, err)

	resp, err := svc.Complete(context.Background(), driven.CompletionRequest{
		Messages: []driven.ChatMessage{{
			Role:    "user",
			Content: "what is this?",
			Parts: []driven.ContentPart{
				{Text: "what is this?"},
				{ImageData: "aGk=", ImageMIME: "image/png"},
			},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "I see it.", resp.Text)
}

func TestComplete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = fmt.Fprint(w, `{"error": {"message": "Rate limit reached", "type": "rate_limit_error"}}`)
	}))
	defer server.Close()

	svc, err := NewLLMService(LLMConfig{APIKey: "sk-test", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), driven.CompletionRequest{
		Messages: []driven.ChatMessage{{Role: "user", Content: "hi"}},
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Rate limit reached")
}

func TestComplete_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, `{"choices": []}`)
	}))
	defer server.Close()

	svc, err := NewLLMService(LLMConfig{APIKey: "sk-test", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), driven.CompletionRequest{
		Messages: []driven.ChatMessage{{Role: "user", Content: "hi"}},
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no response choices")
}

func TestAnalyze_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// Model wraps the JSON in prose and a code fence; the adapter
		// must still parse it.
		reply := "Here is the analysis:\n```json\n" + `{
			"title": "Quarterly Report",
			"summary": "Revenue grew in the third quarter.",
			"tags": ["finance"],
			"keywords": ["revenue", "q3"],
			"topic": "finance",
			"sentiment": "positive",
			"sentiment_score": 0.6
		}` + "\n```"

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": reply}, "finish_reason": "stop"},
			},
		})
	}))
	defer server.Close()

	svc, err := NewLLMService(LLMConfig{APIKey: "sk-test", BaseURL: server.URL})
	require.NoError(t, err)

	analysis, err := svc.Analyze(context.Background(), driven.AnalysisRequest{
		FileName: "report.pdf",
		MIMEType: "application/pdf",
		Text:     "Revenue grew...",
	})
	require.NoError(t, err)
	assert.Equal(t, "Quarterly Report", analysis.Title)
	assert.Equal(t, "positive", analysis.Sentiment)
	assert.InDelta(t, 0.6, analysis.SentimentScore, 1e-9)
}

func TestAnalyze_MissingTitle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, `{"choices": [{"message": {"content": "{\"summary\": \"No title here.\"}"}, "finish_reason": "stop"}]}`)
	}))
	defer server.Close()

	svc, err := NewLLMService(LLMConfig{APIKey: "sk-test", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = svc.Analyze(context.Background(), driven.AnalysisRequest{Text: "text"})
	assert.ErrorIs(t, err, domain.ErrAnalysis)
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`},
		{"code fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding prose", `Sure! {"a": 1} Hope that helps.`, `{"a": 1}`},
		{"no json at all", "no braces here", "no braces here"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, extractJSON(tc.input))
		})
	}
}
