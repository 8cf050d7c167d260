package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOllamaProvider_Generate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Expected path /api/generate, got %s", r.URL.Path)
		}

		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Stream {
			t.Error("Expected non-streaming request")
		}
		if req.Format != "json" {
			t.Errorf("Expected json format, got %q", req.Format)
		}
		if req.Options.NumPredict != 500 {
			t.Errorf("Expected num_predict 500, got %d", req.Options.NumPredict)
		}

		resp := ollamaResponse{
			Model:           "llama3.1",
			Response:        `{"occupation": "Teacher"}`,
			Done:            true,
			PromptEvalCount: 10,
			EvalCount:       20,
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "llama3.1", Timeout: 5, MaxTokens: 500})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Generate(context.Background(), GenerateRequest{Prompt: "analyze"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if resp.Text != `{"occupation": "Teacher"}` {
		t.Errorf("Unexpected text: %s", resp.Text)
	}
	if resp.TokensUsed != 30 {
		t.Errorf("Expected 30 tokens, got %d", resp.TokensUsed)
	}
}

func TestOllamaProvider_Generate_EstimatesTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaResponse{Model: "mistral", Response: "abcd", Done: true})
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "mistral", Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Generate(context.Background(), GenerateRequest{Prompt: "abcdefgh"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if resp.TokensUsed != 3 {
		t.Errorf("Expected estimated 3 tokens, got %d", resp.TokensUsed)
	}
}

func TestOllamaProvider_Generate_NoModel(t *testing.T) {
	provider, err := NewOllamaProvider(Config{BaseURL: "http://127.0.0.1:1"})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Generate(context.Background(), GenerateRequest{Prompt: "x"})
	if err == nil || !strings.Contains(err.Error(), "model must be specified") {
		t.Fatalf("Expected model error, got %v", err)
	}
}

func TestOllamaProvider_Generate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": "model 'nope' not found"}`))
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "nope", Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Generate(context.Background(), GenerateRequest{Prompt: "x"})
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("Expected not found error, got %v", err)
	}
}
