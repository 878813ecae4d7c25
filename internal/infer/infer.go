package infer

import (
	"strings"

	"github.com/cetine/goodrx/internal/catalog"
	"github.com/cetine/goodrx/internal/pricing"
)

// Inferencer guesses which offerings a user is talking about from the raw
// text of the current turn plus the prior transcript. It is a blunt keyword
// heuristic by design, not an NLP model: the downstream model is instructed
// to ignore injected context that turns out to be irrelevant.
type Inferencer struct {
	calc *pricing.Calculator
}

// NewInferencer creates a new inferencer.
func NewInferencer() *Inferencer {
	return &Inferencer{calc: pricing.NewCalculator()}
}

// Context is the inferred per-turn context injected into the model payload.
// The JSON shape is the convention the remote model is prompted to parse.
type Context struct {
	Selection     []catalog.OfferingID `json:"-"`
	SelectedPlans []string             `json:"selected_plans"`
	Quotes        Quotes               `json:"quotes"`
}

// Quotes groups the zero or more ready-made quotes for a turn. The bundle
// quote is independent of, and additive to, the per-offering selection.
type Quotes struct {
	SelectedPlans pricing.Quote `json:"selected_plans_quote,omitempty"`
	Bundle        pricing.Quote `json:"bundle_quote,omitempty"`
	BundlePlans   []string      `json:"bundle_plans,omitempty"`
}

// Infer classifies the case-folded text against each offering's declared
// keyword table (any match selects, each offering at most once) and against
// the catalog's bundle keywords (which trigger a full-catalog quote
// regardless of individual matches). It is deterministic and total: text
// with no keywords yields an empty context. The only error path is a
// catalog whose keyword table desynced from its offering table, which
// construction-time validation rules out.
func (i *Inferencer) Infer(cat *catalog.Catalog, userText, historyText string) (*Context, error) {
	text := strings.ToLower(userText + " " + historyText)

	ctx := &Context{SelectedPlans: []string{}}
	for _, o := range cat.Offerings() {
		for _, kw := range o.Keywords {
			if strings.Contains(text, kw) {
				ctx.Selection = append(ctx.Selection, o.ID)
				ctx.SelectedPlans = append(ctx.SelectedPlans, o.Name)
				break // at most once per offering
			}
		}
	}

	if len(ctx.Selection) > 0 {
		q, err := i.calc.QuoteFor(cat, ctx.Selection)
		if err != nil {
			return nil, err
		}
		ctx.Quotes.SelectedPlans = q
	}

	for _, kw := range cat.BundleKeywords() {
		if strings.Contains(text, kw) {
			all := cat.IDs()
			q, err := i.calc.QuoteFor(cat, all)
			if err != nil {
				return nil, err
			}
			ctx.Quotes.Bundle = q
			for _, id := range all {
				o, err := cat.Offering(id)
				if err != nil {
					return nil, err
				}
				ctx.Quotes.BundlePlans = append(ctx.Quotes.BundlePlans, o.Name)
			}
			break
		}
	}

	return ctx, nil
}

// Empty reports whether inference found nothing to quote.
func (c *Context) Empty() bool {
	return len(c.Selection) == 0 && c.Quotes.Bundle == nil
}
