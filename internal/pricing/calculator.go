package pricing

import (
	"fmt"

	"github.com/cetine/goodrx/internal/catalog"
	"github.com/shopspring/decimal"
)

// Calculator prices selections against a catalog. It is stateless and
// deterministic: identical catalog and selection inputs always produce
// identical quotes. The catalog is passed into every call, never read from
// ambient state.
type Calculator struct{}

// NewCalculator creates a new calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)

	// weeksPerMonth converts weekly time savings to monthly dollars.
	// A declared approximation (52 weeks / 12 months).
	weeksPerMonth = decimal.NewFromFloat(4.33)

	// onTimeCap is the ceiling for the projected on-time rate. Additive
	// uplifts can exceed it on paper; the projection never does.
	onTimeCap = decimal.NewFromFloat(0.99)
)

// BundleUnitPrice sums the unit prices of the selection and applies the
// bundle discount for its size. Empty selections price at zero; single
// offerings get no discount. Rounded to 2 decimal places, half up.
func (c *Calculator) BundleUnitPrice(cat *catalog.Catalog, sel []catalog.OfferingID) (decimal.Decimal, error) {
	base := decimal.Zero
	for _, id := range sel {
		o, err := cat.Offering(id)
		if err != nil {
			return decimal.Zero, err
		}
		base = base.Add(o.UnitPrice)
	}

	discount := cat.DiscountFor(len(sel))
	factor := decimal.NewFromInt(1).Sub(discount.Div(hundred))
	return base.Mul(factor).Round(2), nil
}

// MonthlyCost is the bundle unit price scaled by seat count.
func (c *Calculator) MonthlyCost(cat *catalog.Catalog, sel []catalog.OfferingID, seats int) (decimal.Decimal, error) {
	unit, err := c.BundleUnitPrice(cat, sel)
	if err != nil {
		return decimal.Zero, err
	}
	return unit.Mul(decimal.NewFromInt(int64(seats))).Round(2), nil
}

// SavingsQuote compares the discounted bundle price against the baseline
// spend entries declared for each selected offering. Savings are floored at
// zero: a worse deal never displays as negative savings.
func (c *Calculator) SavingsQuote(cat *catalog.Catalog, sel []catalog.OfferingID) (*SavingsQuote, error) {
	if cat.Variant() != catalog.VariantSavings {
		return nil, fmt.Errorf("catalog %q has no spend baseline", cat.Name())
	}

	spend := cat.Spend()
	current := decimal.Zero
	names := make([]string, 0, len(sel))
	for _, id := range sel {
		o, err := cat.Offering(id)
		if err != nil {
			return nil, err
		}
		names = append(names, o.Name)
		for _, sc := range o.SpendCategories {
			current = current.Add(spend[sc])
		}
	}

	newMonthly, err := c.BundleUnitPrice(cat, sel)
	if err != nil {
		return nil, err
	}

	monthly := current.Sub(newMonthly)
	if monthly.Sign() < 0 {
		monthly = decimal.Zero
	}
	monthly = monthly.Round(2)

	return &SavingsQuote{
		Plans:          names,
		CurrentMonthly: current.Round(2),
		NewMonthly:     newMonthly,
		MonthlySavings: monthly,
		AnnualSavings:  monthly.Mul(twelve).Round(2),
	}, nil
}

// ROIQuote projects the combined effect of a selection on the workforce
// baseline. Contributions combine additively across offerings, never
// compounding; that is the numeric contract, not a shortcut.
func (c *Calculator) ROIQuote(cat *catalog.Catalog, sel []catalog.OfferingID) (*ROIQuote, error) {
	wf, ok := cat.Workforce()
	if !ok {
		return nil, fmt.Errorf("catalog %q has no workforce baseline", cat.Name())
	}

	seats := decimal.NewFromInt(int64(wf.Seats))
	sixty := decimal.NewFromInt(60)

	upliftPct := decimal.Zero
	delayPct := decimal.Zero
	weeklyHours := decimal.Zero
	names := make([]string, 0, len(sel))

	for _, id := range sel {
		o, err := cat.Offering(id)
		if err != nil {
			return nil, err
		}
		names = append(names, o.Name)

		imp := o.Impact
		upliftPct = upliftPct.Add(imp.OnTimeUpliftPct)
		delayPct = delayPct.Add(imp.DelayReductionPct)
		// Per-user minutes scale with seats; manager hours are flat.
		weeklyHours = weeklyHours.Add(seats.Mul(imp.MinutesPerUserWeek).Div(sixty))
		weeklyHours = weeklyHours.Add(imp.ManagerHoursPerWeek)
	}

	cost, err := c.MonthlyCost(cat, sel, wf.Seats)
	if err != nil {
		return nil, err
	}

	projected := wf.OnTimeRate.Add(upliftPct.Div(hundred))
	if projected.GreaterThan(onTimeCap) {
		projected = onTimeCap
	}

	timeSavings := weeklyHours.Mul(wf.HourlyRate).Mul(weeksPerMonth).Round(2)
	delaySavings := wf.AvgDelayCost.
		Mul(delayPct.Div(hundred)).
		Mul(decimal.NewFromInt(int64(wf.AtRiskTasksPerMonth))).
		Round(2)
	savings := timeSavings.Add(delaySavings).Round(2)

	net := savings.Sub(cost)
	if net.Sign() < 0 {
		net = decimal.Zero
	}
	net = net.Round(2)

	q := &ROIQuote{
		Plans:                     names,
		Seats:                     wf.Seats,
		MonthlyCost:               cost,
		TeamTimeSavedHoursPerWeek: weeklyHours.Round(2),
		ProjectedOnTimeRate:       projected,
		TimeSavings:               timeSavings,
		DelaySavings:              delaySavings,
		MonthlySavings:            savings,
		NetMonthlyBenefit:         net,
	}

	// Payback is defined only when both sides are strictly positive.
	if cost.Sign() > 0 && savings.Sign() > 0 {
		payback := cost.DivRound(savings, 2)
		q.PaybackMonths = &payback
	}

	return q, nil
}

// QuoteFor produces the quote kind matching the catalog variant.
func (c *Calculator) QuoteFor(cat *catalog.Catalog, sel []catalog.OfferingID) (Quote, error) {
	switch cat.Variant() {
	case catalog.VariantSavings:
		return c.SavingsQuote(cat, sel)
	case catalog.VariantROI:
		return c.ROIQuote(cat, sel)
	default:
		return nil, fmt.Errorf("catalog %q: unknown variant %q", cat.Name(), cat.Variant())
	}
}
