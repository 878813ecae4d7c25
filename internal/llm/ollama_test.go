package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOllamaProvider_Reply_Success(t *testing.T) {
	var gotReq ollamaRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Expected path /api/generate, got %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}

		resp := ollamaResponse{
			Model:           "llama3.1:8b",
			Response:        "The bundle costs $48.60 per month.",
			Done:            true,
			PromptEvalCount: 80,
			EvalCount:       20,
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	config := Config{
		BaseURL: server.URL,
		Model:   "llama3.1:8b",
		Timeout: 5,
	}
	provider, err := NewOllamaProvider(config)
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	req := ReplyRequest{
		System: "You are a coach.",
		History: []Turn{
			{Role: RoleUser, Text: "what plans exist?"},
		},
		Payload: "USER_MESSAGE:\nhow much for both?",
	}

	resp, err := provider.Reply(context.Background(), req)
	if err != nil {
		t.Fatalf("Reply failed: %v", err)
	}

	if resp.Text != "The bundle costs $48.60 per month." {
		t.Errorf("Unexpected reply: %s", resp.Text)
	}
	if resp.TokensUsed != 100 {
		t.Errorf("Expected 100 tokens, got %d", resp.TokensUsed)
	}

	// The generate API takes one prompt string, so the transcript must be
	// flattened into it ahead of the payload
	if !strings.HasPrefix(gotReq.Prompt, "CONVERSATION_SO_FAR:\n") {
		t.Errorf("Expected flattened history prefix, got:\n%s", gotReq.Prompt)
	}
	if !strings.Contains(gotReq.Prompt, "user: what plans exist?") {
		t.Error("Expected history turn in prompt")
	}
	if !strings.HasSuffix(gotReq.Prompt, "how much for both?") {
		t.Error("Expected payload at the end of the prompt")
	}
	if gotReq.System != "You are a coach." {
		t.Errorf("Expected system field set, got %q", gotReq.System)
	}
	if gotReq.Stream {
		t.Error("Expected streaming disabled")
	}
}

func TestOllamaProvider_Reply_NoHistory(t *testing.T) {
	var gotReq ollamaRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(ollamaResponse{Model: "mistral", Response: "Hi!", Done: true})
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "mistral", Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if _, err := provider.Reply(context.Background(), ReplyRequest{Payload: "hello"}); err != nil {
		t.Fatalf("Reply failed: %v", err)
	}

	if strings.Contains(gotReq.Prompt, "CONVERSATION_SO_FAR") {
		t.Error("Expected no history prefix on the first turn")
	}
}

func TestOllamaProvider_Reply_RequiresModel(t *testing.T) {
	provider, err := NewOllamaProvider(Config{BaseURL: "http://localhost:11434"})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Reply(context.Background(), ReplyRequest{Payload: "hello"})
	if err == nil {
		t.Fatal("Expected error without a model name")
	}
}

func TestOllamaProvider_Reply_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": "model 'missing' not found"}`))
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "missing", Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Reply(context.Background(), ReplyRequest{Payload: "hello"})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected API error message, got: %v", err)
	}
}

func TestOllamaProvider_Reply_TokenEstimate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Some models report no token counts
		_ = json.NewEncoder(w).Encode(ollamaResponse{Model: "mistral", Response: "Short reply", Done: true})
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "mistral", Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Reply(context.Background(), ReplyRequest{Payload: "a reasonably sized prompt"})
	if err != nil {
		t.Fatalf("Reply failed: %v", err)
	}
	if resp.TokensUsed == 0 {
		t.Error("Expected a fallback token estimate")
	}
}

func TestOllamaProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"models": []}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if !provider.IsAvailable(context.Background()) {
		t.Error("Expected available to be true")
	}
}
