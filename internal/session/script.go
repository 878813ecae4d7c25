package session

import (
	"github.com/cetine/goodrx/internal/catalog"
	"github.com/cetine/goodrx/internal/llm"
)

// DemoScript returns the scripted conversation preloaded by the demo flag.
// The numbers in the medical script match the built-in catalog exactly.
func DemoScript(v catalog.Variant) []llm.Turn {
	if v == catalog.VariantROI {
		return productivityScript
	}
	return medicalScript
}

var medicalScript = []llm.Turn{
	{Role: llm.RoleUser, Text: "I need help managing my diabetes medications."},
	{Role: llm.RoleAssistant, Text: "I see you regularly refill Metformin. Many people in your situation save with our Diabetes Care Subscription; it includes Metformin refills, glucose monitor strips, and a telehealth check-in every 3 months."},
	{Role: llm.RoleUser, Text: "How much would that cost me?"},
	{Role: llm.RoleAssistant, Text: "You currently spend about $42/month. With the subscription, your cost drops to $29/month, and you get the telehealth consult included. Over a year, that's about $156 saved."},
	{Role: llm.RoleUser, Text: "Is there a similar plan for blood pressure?"},
	{Role: llm.RoleAssistant, Text: "Yes. Our Heart Health Plan covers ACE inhibitors, a digital BP monitor, and priority refills for $25/month. Would you like to see both bundled together at a discounted rate?"},
	{Role: llm.RoleUser, Text: "Yes, show me."},
	{Role: llm.RoleAssistant, Text: "Bundling Diabetes Care + Heart Health together saves an additional 10%, bringing your total monthly cost to $49. This bundle has been popular with people managing multiple conditions."},
}

var productivityScript = []llm.Turn{
	{Role: llm.RoleUser, Text: "Our sprints keep slipping past their deadlines."},
	{Role: llm.RoleAssistant, Text: "Predictive Scheduling flags slipping tasks before the deadline moves and rebalances assignments. Teams your size typically see about a 6 point lift in on-time delivery."},
	{Role: llm.RoleUser, Text: "What would that cost for 100 seats?"},
	{Role: llm.RoleAssistant, Text: "Predictive Scheduling is $3 per user per month, so $300/month for 100 seats. The projected time savings alone come to roughly $5,196/month at your blended rate, which pays the subscription back in well under a month."},
	{Role: llm.RoleUser, Text: "Can it also help with the weekly status grind?"},
	{Role: llm.RoleAssistant, Text: "Status Autopilot drafts the weekly reports and rollups automatically - that's the $2.50/user feature. Bundling two features takes 10% off, all three takes 15% off. Want the full-bundle numbers?"},
}
