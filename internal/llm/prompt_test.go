package llm

import (
	"strings"
	"testing"

	"github.com/cetine/goodrx/internal/catalog"
)

func TestSystemPrompt_PerVariant(t *testing.T) {
	medical := SystemPrompt(catalog.VariantSavings)
	if !strings.Contains(medical, "not a clinician") {
		t.Error("Expected medical prompt to carry the clinical-advice guard")
	}

	productivity := SystemPrompt(catalog.VariantROI)
	if !strings.Contains(productivity, "payback_months") {
		t.Error("Expected productivity prompt to explain the missing-payback case")
	}
	if medical == productivity {
		t.Error("Expected distinct prompts per variant")
	}
}

func TestBuildPayload_SectionOrder(t *testing.T) {
	payload := BuildPayload(`{"plans":{}}`, `{"selected_plans":[]}`, "how much?")

	catIdx := strings.Index(payload, "CATALOG_JSON:")
	ctxIdx := strings.Index(payload, "CONTEXT_JSON:")
	msgIdx := strings.Index(payload, "USER_MESSAGE:")

	if catIdx < 0 || ctxIdx < 0 || msgIdx < 0 {
		t.Fatalf("Expected all three sections, got:\n%s", payload)
	}
	if !(catIdx < ctxIdx && ctxIdx < msgIdx) {
		t.Error("Expected catalog, then context, then user message")
	}
	if !strings.HasPrefix(payload, "Use ONLY the following JSON data for pricing:") {
		t.Errorf("Unexpected payload preamble:\n%s", payload)
	}
	if !strings.HasSuffix(payload, "how much?") {
		t.Error("Expected the raw user message to close the payload")
	}
}

func TestFlattenHistory(t *testing.T) {
	history := []Turn{
		{Role: RoleUser, Text: "tell me about diabetes plans"},
		{Role: RoleAssistant, Text: "The Diabetes Care plan is $29/month."},
	}

	flat := FlattenHistory(history)

	want := "user: tell me about diabetes plans\nassistant: The Diabetes Care plan is $29/month."
	if flat != want {
		t.Errorf("Unexpected flattened history:\n%s", flat)
	}
}

func TestFlattenHistory_Empty(t *testing.T) {
	if flat := FlattenHistory(nil); flat != "" {
		t.Errorf("Expected empty string for empty history, got %q", flat)
	}
}
