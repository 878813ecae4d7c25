package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cetine/goodrx/internal/catalog"
	"github.com/cetine/goodrx/internal/llm"
	"github.com/shopspring/decimal"
)

func disabledCoach(t *testing.T) *llm.Coach {
	t.Helper()
	coach, err := llm.NewCoach(llm.Config{})
	if err != nil {
		t.Fatalf("failed to build disabled coach: %v", err)
	}
	return coach
}

// ollamaStub runs a fake generate endpoint and records every prompt it saw.
func ollamaStub(t *testing.T, reply string, status int) (*httptest.Server, *[]string) {
	t.Helper()
	var prompts []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prompt string `json:"prompt"`
			System string `json:"system"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		prompts = append(prompts, req.Prompt)

		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error": "model exploded"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"model":    "test-model",
			"response": reply,
			"done":     true,
		})
	}))
	t.Cleanup(server.Close)
	return server, &prompts
}

func remoteCoach(t *testing.T, baseURL string) *llm.Coach {
	t.Helper()
	coach, err := llm.NewCoach(llm.Config{
		Provider: "ollama",
		BaseURL:  baseURL,
		Model:    "test-model",
		Timeout:  5,
	})
	if err != nil {
		t.Fatalf("failed to build coach: %v", err)
	}
	return coach
}

func TestSession_OfflineTurn(t *testing.T) {
	s := New(catalog.Medical(), disabledCoach(t), Options{RequestsPerSecond: 100})

	result, err := s.Send(context.Background(), "how much is the diabetes plan?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.RemoteErr != nil {
		t.Errorf("expected no remote error offline, got %v", result.RemoteErr)
	}
	if len(result.Context.Selection) != 1 {
		t.Errorf("expected one selected offering, got %v", result.Context.Selection)
	}
	if !strings.Contains(result.Reply, "selected_plans") {
		t.Errorf("expected offline reply to render the quotes, got:\n%s", result.Reply)
	}

	transcript := s.Transcript()
	if len(transcript) != 2 {
		t.Fatalf("expected transcript to advance by one turn pair, got %d entries", len(transcript))
	}
	if transcript[0].Role != llm.RoleUser || transcript[1].Role != llm.RoleAssistant {
		t.Error("expected user then assistant roles")
	}
}

func TestSession_OfflineNoMatch(t *testing.T) {
	s := New(catalog.Medical(), disabledCoach(t), Options{RequestsPerSecond: 100})

	result, err := s.Send(context.Background(), "what's the weather?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(result.Reply, "No plan matched") {
		t.Errorf("expected no-match reply, got: %s", result.Reply)
	}
	if len(s.Transcript()) != 2 {
		t.Error("expected transcript to advance even without matches")
	}
}

func TestSession_RemoteTurn(t *testing.T) {
	server, prompts := ollamaStub(t, "The Diabetes Care plan is $29/month.", http.StatusOK)
	s := New(catalog.Medical(), remoteCoach(t, server.URL), Options{RequestsPerSecond: 100})

	result, err := s.Send(context.Background(), "tell me about the diabetes plan")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Reply != "The Diabetes Care plan is $29/month." {
		t.Errorf("unexpected reply: %s", result.Reply)
	}
	if result.RemoteErr != nil {
		t.Errorf("expected no remote error, got %v", result.RemoteErr)
	}

	if len(*prompts) != 1 {
		t.Fatalf("expected one remote call, got %d", len(*prompts))
	}
	payload := (*prompts)[0]
	for _, section := range []string{"CATALOG_JSON:", "CONTEXT_JSON:", "USER_MESSAGE:", "Diabetes Care"} {
		if !strings.Contains(payload, section) {
			t.Errorf("expected payload to contain %q", section)
		}
	}

	// The second turn must carry the transcript to the provider
	if _, err := s.Send(context.Background(), "and per year?"); err != nil {
		t.Fatalf("second turn failed: %v", err)
	}
	if len(*prompts) != 2 {
		t.Fatalf("expected two remote calls, got %d", len(*prompts))
	}
	if !strings.Contains((*prompts)[1], "CONVERSATION_SO_FAR:") {
		t.Error("expected second prompt to include the prior transcript")
	}
}

func TestSession_RemoteFailureAdvancesTranscript(t *testing.T) {
	server, _ := ollamaStub(t, "", http.StatusInternalServerError)
	s := New(catalog.Medical(), remoteCoach(t, server.URL), Options{RequestsPerSecond: 100})

	result, err := s.Send(context.Background(), "tell me about the diabetes plan")
	if err != nil {
		t.Fatalf("remote failure must not fail the turn, got: %v", err)
	}

	if result.RemoteErr == nil {
		t.Fatal("expected remote error in result")
	}
	if result.RemoteErr.Provider != "ollama" {
		t.Errorf("expected provider ollama, got %s", result.RemoteErr.Provider)
	}
	if !strings.HasPrefix(result.Reply, "Error calling ollama:") {
		t.Errorf("expected inline error notice, got: %s", result.Reply)
	}

	// The turn still lands in the transcript
	transcript := s.Transcript()
	if len(transcript) != 2 {
		t.Fatalf("expected transcript to advance, got %d entries", len(transcript))
	}
	if transcript[1].Text != result.Reply {
		t.Error("expected inline notice as the assistant turn")
	}
}

func TestSession_CanceledContextLeavesTranscript(t *testing.T) {
	server, prompts := ollamaStub(t, "unused", http.StatusOK)
	s := New(catalog.Medical(), remoteCoach(t, server.URL), Options{RequestsPerSecond: 100})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Send(ctx, "tell me about the diabetes plan")
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
	if len(s.Transcript()) != 0 {
		t.Error("aborted turn must leave the transcript unchanged")
	}
	if len(*prompts) != 0 {
		t.Error("aborted turn must not reach the provider")
	}
}

func TestSession_ResetAndPreload(t *testing.T) {
	s := New(catalog.Medical(), disabledCoach(t), Options{})

	script := DemoScript(catalog.VariantSavings)
	s.Preload(script)

	if len(s.Transcript()) != len(script) {
		t.Fatalf("expected %d preloaded turns, got %d", len(script), len(s.Transcript()))
	}
	if !strings.Contains(s.HistoryText(), "user: ") {
		t.Error("expected flattened history to carry roles")
	}

	s.Reset()
	if len(s.Transcript()) != 0 {
		t.Error("expected empty transcript after reset")
	}
}

func TestSession_PreloadedHistoryInformsInference(t *testing.T) {
	s := New(catalog.Medical(), disabledCoach(t), Options{RequestsPerSecond: 100})
	s.Preload([]llm.Turn{
		{Role: llm.RoleUser, Text: "I refill metformin every month"},
	})

	result, err := s.Send(context.Background(), "how much would a subscription cost?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Context.Selection) != 1 || result.Context.Selection[0] != "diabetes-care" {
		t.Errorf("expected history keyword to drive selection, got %v", result.Context.Selection)
	}
}

func TestSession_CatalogJSONTracksBaseline(t *testing.T) {
	cat := catalog.Productivity()
	s := New(cat, disabledCoach(t), Options{CacheEnabled: true})

	first, err := s.catalogJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(first, `"seats": 100`) {
		t.Errorf("expected initial seat count in catalog JSON:\n%s", first)
	}

	// Cached copy comes back while the generation is unchanged
	again, err := s.catalogJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again != first {
		t.Error("expected identical catalog JSON within one generation")
	}

	if err := cat.UpdateBaseline(250, decimal.NewFromInt(75), decimal.NewFromFloat(0.82)); err != nil {
		t.Fatalf("baseline update failed: %v", err)
	}

	updated, err := s.catalogJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(updated, `"seats": 250`) {
		t.Errorf("expected updated seat count after baseline change:\n%s", updated)
	}
}

func TestDemoScript_PerVariant(t *testing.T) {
	medical := DemoScript(catalog.VariantSavings)
	if len(medical) == 0 || !strings.Contains(medical[0].Text, "diabetes") {
		t.Error("expected medical script for savings variant")
	}

	productivity := DemoScript(catalog.VariantROI)
	if len(productivity) == 0 || !strings.Contains(productivity[0].Text, "sprint") {
		t.Error("expected productivity script for roi variant")
	}
}
