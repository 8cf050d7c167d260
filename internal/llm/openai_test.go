package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
)

func TestOpenAIProvider_Generate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected path /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Expected Authorization header Bearer test-key, got %s", r.Header.Get("Authorization"))
		}

		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != openai.ChatMessageRoleSystem {
			t.Errorf("Expected system + user messages, got %+v", req.Messages)
		}
		if req.Messages[0].Content != DefaultSystemPrompt {
			t.Errorf("Unexpected system prompt: %s", req.Messages[0].Content)
		}
		if req.Messages[1].Content != "analyze this" {
			t.Errorf("Unexpected user prompt: %s", req.Messages[1].Content)
		}
		if req.MaxTokens != 1000 {
			t.Errorf("Expected max tokens 1000, got %d", req.MaxTokens)
		}

		resp := openai.ChatCompletionResponse{
			ID:      "chatcmpl-123",
			Object:  "chat.completion",
			Created: 1677652288,
			Model:   "gpt-4o-mini",
			Choices: []openai.ChatCompletionChoice{
				{
					Index: 0,
					Message: openai.ChatCompletionMessage{
						Role:    "assistant",
						Content: "  {\"occupation\": \"Software Developer\"}\n",
					},
					FinishReason: "stop",
				},
			},
			Usage: openai.Usage{
				TotalTokens: 100,
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	config := Config{
		APIKey:      "test-key",
		BaseURL:     server.URL,
		Model:       "gpt-4o-mini",
		Timeout:     5,
		MaxTokens:   1000,
		Temperature: 0.7,
	}
	provider, err := NewOpenAIProvider(config)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Generate(context.Background(), GenerateRequest{Prompt: "analyze this"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if resp.Text != `{"occupation": "Software Developer"}` {
		t.Errorf("Unexpected text: %q", resp.Text)
	}
	if resp.TokensUsed != 100 {
		t.Errorf("Expected 100 tokens, got %d", resp.TokensUsed)
	}
	if resp.Model != "gpt-4o-mini" {
		t.Errorf("Unexpected model: %s", resp.Model)
	}
}

func TestOpenAIProvider_MissingKey(t *testing.T) {
	if _, err := NewOpenAIProvider(Config{}); err == nil {
		t.Fatal("Expected error for missing API key")
	}
}

func TestOpenAIProvider_Generate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "Internal Server Error", "type": "server_error"}}`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if _, err := provider.Generate(context.Background(), GenerateRequest{Prompt: "x"}); err == nil {
		t.Fatal("Expected error, got nil")
	}
}

func TestOpenAIProvider_Generate_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{Model: "gpt-4o-mini"})
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if _, err := provider.Generate(context.Background(), GenerateRequest{Prompt: "x"}); err == nil {
		t.Fatal("Expected error for empty choices, got nil")
	}
}

func TestOpenAIProvider_Generate_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{malformed json`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if _, err := provider.Generate(context.Background(), GenerateRequest{Prompt: "x"}); err == nil {
		t.Fatal("Expected error for malformed JSON, got nil")
	}
}

func TestOpenAIProvider_Generate_ContextDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	// The caller's deadline wins over the provider timeout
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := provider.Generate(ctx, GenerateRequest{Prompt: "x"}); err == nil {
		t.Fatal("Expected timeout error, got nil")
	}
}
