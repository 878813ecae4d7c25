package catalog

import (
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

// Variant selects which baseline shape a catalog carries and therefore
// which kind of quote the calculator produces for it.
type Variant string

const (
	// VariantSavings prices selections against a current-spend map
	// (medication subscription catalogs).
	VariantSavings Variant = "savings"

	// VariantROI prices selections against workforce KPIs
	// (per-seat productivity catalogs).
	VariantROI Variant = "roi"
)

// OfferingID identifies an offering within a catalog. IDs are declared
// per catalog; they are never inferred from display names.
type OfferingID string

// Offering is a single purchasable plan or feature.
type Offering struct {
	ID          OfferingID
	Name        string
	UnitPrice   decimal.Decimal // per month, or per user-month for ROI catalogs
	Includes    []string
	Description string

	// Keywords is the declared inference table: any match selects this
	// offering (logical OR, case-folded substring match).
	Keywords []string

	// SpendCategories maps this offering to baseline spend entries
	// (savings variant only).
	SpendCategories []string

	// Impact carries the KPI coefficients (ROI variant only).
	Impact *Impact
}

// Impact holds the additive contribution of one offering to the ROI
// projection. Contributions are summed across a selection, never compounded.
type Impact struct {
	OnTimeUpliftPct    decimal.Decimal // percentage points added to the on-time rate
	DelayReductionPct  decimal.Decimal // percent of average delay cost avoided
	MinutesPerUserWeek decimal.Decimal // seat-scaled time saved
	ManagerHoursPerWeek decimal.Decimal // flat time saved, not seat-scaled
}

// BundleRule grants a discount once a selection reaches MinSize offerings.
// The rule with the largest MinSize not exceeding the selection size wins,
// so a two-plan rule still covers a three-plan selection.
type BundleRule struct {
	MinSize     int
	DiscountPct decimal.Decimal
}

// Workforce is the ROI-variant baseline: the "before" KPIs that savings
// projections are measured against.
type Workforce struct {
	Seats                  int
	HourlyRate             decimal.Decimal
	OnTimeRate             decimal.Decimal // fraction in [0,1]
	StatusPrepHoursPerWeek decimal.Decimal
	AvgDelayCost           decimal.Decimal
	AtRiskTasksPerMonth    int // declared approximation, not derived data
}

// Catalog is the immutable reference table of offerings, bundle rules and
// baseline metrics. Offerings never change after construction; the only
// mutable state is the ROI workforce baseline, guarded by a write lock so
// concurrent sessions can share one catalog safely.
type Catalog struct {
	mu sync.RWMutex

	name           string
	variant        Variant
	offerings      []Offering
	byID           map[OfferingID]int
	bundleRules    []BundleRule // sorted by MinSize ascending
	bundleKeywords []string

	spend      map[string]decimal.Decimal // savings variant
	workforce  Workforce                  // roi variant
	generation uint64
}

// Name returns the catalog name.
func (c *Catalog) Name() string {
	return c.name
}

// Variant returns the catalog variant.
func (c *Catalog) Variant() Variant {
	return c.variant
}

// Offerings returns the offerings in declaration order.
func (c *Catalog) Offerings() []Offering {
	out := make([]Offering, len(c.offerings))
	copy(out, c.offerings)
	return out
}

// IDs returns every offering ID in declaration order.
func (c *Catalog) IDs() []OfferingID {
	ids := make([]OfferingID, len(c.offerings))
	for i, o := range c.offerings {
		ids[i] = o.ID
	}
	return ids
}

// Offering looks up an offering by ID. A missing ID is a hard error, not a
// zero-cost contribution.
func (c *Catalog) Offering(id OfferingID) (Offering, error) {
	idx, ok := c.byID[id]
	if !ok {
		return Offering{}, &UnknownOfferingError{Catalog: c.name, ID: id}
	}
	return c.offerings[idx], nil
}

// DiscountFor returns the bundle discount percentage for a selection of the
// given size. Sizes below every rule threshold get zero.
func (c *Catalog) DiscountFor(size int) decimal.Decimal {
	discount := decimal.Zero
	for _, r := range c.bundleRules {
		if size >= r.MinSize {
			discount = r.DiscountPct
		}
	}
	return discount
}

// BundleKeywords returns the keyword set that triggers a full-bundle quote
// independently of per-offering matches.
func (c *Catalog) BundleKeywords() []string {
	out := make([]string, len(c.bundleKeywords))
	copy(out, c.bundleKeywords)
	return out
}

// Spend returns a copy of the baseline spend map (savings variant).
func (c *Catalog) Spend() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(c.spend))
	for k, v := range c.spend {
		out[k] = v
	}
	return out
}

// Workforce returns a snapshot of the workforce baseline. The second return
// is false for savings-variant catalogs.
func (c *Catalog) Workforce() (Workforce, bool) {
	if c.variant != VariantROI {
		return Workforce{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.workforce, true
}

// Generation returns a counter bumped on every successful baseline update.
// Cached serializations of the catalog key on it for invalidation.
func (c *Catalog) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// UpdateBaseline replaces the three mutable workforce fields. Out-of-range
// values are rejected and the prior baseline is retained.
func (c *Catalog) UpdateBaseline(seats int, hourlyRate, onTimeRate decimal.Decimal) error {
	if c.variant != VariantROI {
		return fmt.Errorf("catalog %q has no workforce baseline", c.name)
	}
	if seats <= 0 {
		return &InvalidBaselineError{Field: "seats", Reason: "must be positive"}
	}
	if hourlyRate.Sign() <= 0 {
		return &InvalidBaselineError{Field: "hourly_rate", Reason: "must be positive"}
	}
	if onTimeRate.Sign() < 0 || onTimeRate.GreaterThan(decimal.NewFromInt(1)) {
		return &InvalidBaselineError{Field: "on_time_rate", Reason: "must be within [0,1]"}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.workforce.Seats = seats
	c.workforce.HourlyRate = hourlyRate
	c.workforce.OnTimeRate = onTimeRate
	c.generation++
	return nil
}

// Payload serializes the catalog into the nested map the remote model
// receives: offering name -> {monthly_price, includes, description}, plus
// bundle rules and the current baseline. Prices are emitted as plain numbers.
func (c *Catalog) Payload() map[string]interface{} {
	plans := make(map[string]interface{}, len(c.offerings))
	for _, o := range c.offerings {
		plans[o.Name] = map[string]interface{}{
			"monthly_price": o.UnitPrice.InexactFloat64(),
			"includes":      o.Includes,
			"description":   o.Description,
		}
	}

	rules := make(map[string]interface{}, len(c.bundleRules))
	for _, r := range c.bundleRules {
		key := fmt.Sprintf("discount_pct_at_%d_plus", r.MinSize)
		rules[key] = r.DiscountPct.InexactFloat64()
	}

	payload := map[string]interface{}{
		"plans":        plans,
		"bundle_rules": rules,
	}

	switch c.variant {
	case VariantSavings:
		spend := make(map[string]interface{}, len(c.spend))
		for k, v := range c.spend {
			spend[k] = v.InexactFloat64()
		}
		payload["demo_patient"] = map[string]interface{}{
			"current_spend": spend,
		}
	case VariantROI:
		wf, _ := c.Workforce()
		payload["baseline_metrics"] = map[string]interface{}{
			"seats":                      wf.Seats,
			"hourly_rate":                wf.HourlyRate.InexactFloat64(),
			"on_time_rate":               wf.OnTimeRate.InexactFloat64(),
			"status_prep_hours_per_week": wf.StatusPrepHoursPerWeek.InexactFloat64(),
			"avg_delay_cost":             wf.AvgDelayCost.InexactFloat64(),
			"at_risk_tasks_per_month":    wf.AtRiskTasksPerMonth,
		}
	}

	return payload
}

// validate checks internal consistency at construction time so that a
// catalog edit cannot silently desync the keyword, spend and offering tables.
func (c *Catalog) validate() error {
	if len(c.offerings) == 0 {
		return fmt.Errorf("catalog %q declares no offerings", c.name)
	}

	for _, o := range c.offerings {
		if o.ID == "" {
			return fmt.Errorf("catalog %q: offering %q has no ID", c.name, o.Name)
		}
		if o.UnitPrice.Sign() < 0 {
			return fmt.Errorf("catalog %q: offering %q has negative price", c.name, o.ID)
		}
		if len(o.Keywords) == 0 {
			return fmt.Errorf("catalog %q: offering %q declares no keywords", c.name, o.ID)
		}

		switch c.variant {
		case VariantSavings:
			for _, cat := range o.SpendCategories {
				if _, ok := c.spend[cat]; !ok {
					return fmt.Errorf("catalog %q: offering %q maps to unknown spend category %q", c.name, o.ID, cat)
				}
			}
		case VariantROI:
			if o.Impact == nil {
				return fmt.Errorf("catalog %q: offering %q has no impact coefficients", c.name, o.ID)
			}
		default:
			return fmt.Errorf("catalog %q: unknown variant %q", c.name, c.variant)
		}
	}

	if c.variant == VariantROI {
		wf := c.workforce
		if wf.Seats <= 0 {
			return &InvalidBaselineError{Field: "seats", Reason: "must be positive"}
		}
		if wf.HourlyRate.Sign() <= 0 {
			return &InvalidBaselineError{Field: "hourly_rate", Reason: "must be positive"}
		}
		if wf.OnTimeRate.Sign() < 0 || wf.OnTimeRate.GreaterThan(decimal.NewFromInt(1)) {
			return &InvalidBaselineError{Field: "on_time_rate", Reason: "must be within [0,1]"}
		}
	}

	// Discounts must not shrink as bundles grow.
	sort.Slice(c.bundleRules, func(i, j int) bool {
		return c.bundleRules[i].MinSize < c.bundleRules[j].MinSize
	})
	prev := decimal.Zero
	for _, r := range c.bundleRules {
		if r.MinSize < 2 {
			return fmt.Errorf("catalog %q: bundle rule below size 2", c.name)
		}
		if r.DiscountPct.Sign() < 0 || r.DiscountPct.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("catalog %q: bundle discount outside [0,100]", c.name)
		}
		if r.DiscountPct.LessThan(prev) {
			return fmt.Errorf("catalog %q: bundle discount decreases at size %d", c.name, r.MinSize)
		}
		prev = r.DiscountPct
	}

	return nil
}
