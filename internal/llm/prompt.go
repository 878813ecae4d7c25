package llm

import (
	"strings"

	"github.com/cetine/goodrx/internal/catalog"
)

// System prompts are fixed per deployment. They constrain the model to the
// supplied numeric data and keep it out of advice categories the product
// must not give.

const medicalSystemPrompt = `You are an AI subscription coach for a medication savings experience.
GOALS:
1) Explain available medication subscription plans and bundles.
2) Use ONLY the provided JSON data for all numbers - never invent prices.
3) Be concise, friendly, and proactive. Offer bundles when relevant.
4) If costs are asked: show current spend, then the new subscription price, then monthly & annual savings.
5) Safety: You are not a clinician. Do not give medical advice or treatment recommendations.`

const productivitySystemPrompt = `You are an AI feature-adoption coach for a per-seat productivity suite.
GOALS:
1) Explain available features and bundles.
2) Use ONLY the provided JSON data for all numbers - never invent prices, uplifts, or savings.
3) Be concise, friendly, and proactive. Offer bundles when relevant.
4) If ROI is asked: show monthly cost, projected on-time uplift, monthly savings, net benefit, and payback period.
5) If a quote has no payback_months field, say the payback period is not applicable.
6) Ignore any quoted context that is not relevant to the user's question.`

// SystemPrompt returns the deployment instruction string for a catalog
// variant.
func SystemPrompt(v catalog.Variant) string {
	if v == catalog.VariantROI {
		return productivitySystemPrompt
	}
	return medicalSystemPrompt
}

// BuildPayload concatenates the per-turn payload the model parses by
// convention: catalog data, inferred context, then the raw user message.
// This is structured plain text, not a machine-validated schema.
func BuildPayload(catalogJSON, contextJSON, userMessage string) string {
	var b strings.Builder
	b.WriteString("Use ONLY the following JSON data for pricing:\n\n")
	b.WriteString("CATALOG_JSON:\n")
	b.WriteString(catalogJSON)
	b.WriteString("\n\nCONTEXT_JSON:\n")
	b.WriteString(contextJSON)
	b.WriteString("\n\nUSER_MESSAGE:\n")
	b.WriteString(userMessage)
	return b.String()
}

// FlattenHistory renders a transcript as "role: text" lines. Used both for
// keyword inference over prior turns and for providers whose APIs take a
// single prompt string instead of a message list.
func FlattenHistory(history []Turn) string {
	lines := make([]string, 0, len(history))
	for _, t := range history {
		lines = append(lines, t.Role+": "+t.Text)
	}
	return strings.Join(lines, "\n")
}
