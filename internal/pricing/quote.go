package pricing

import "github.com/shopspring/decimal"

func init() {
	// Quote amounts are embedded in model payloads as plain JSON numbers,
	// not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Quote is the computed result of pricing a selection against the baseline.
// Quotes are transient: recomputed every turn from the current catalog,
// never cached.
type Quote interface {
	// Kind returns "savings" or "roi".
	Kind() string
}

// SavingsQuote compares a bundle price against current medication spend
// (savings-variant catalogs).
type SavingsQuote struct {
	Plans          []string        `json:"plans"`
	CurrentMonthly decimal.Decimal `json:"current_monthly"`
	NewMonthly     decimal.Decimal `json:"new_monthly"`
	MonthlySavings decimal.Decimal `json:"monthly_savings"`
	AnnualSavings  decimal.Decimal `json:"annual_savings"`
}

func (*SavingsQuote) Kind() string { return "savings" }

// ROIQuote projects cost, KPI uplift and payback for a per-seat selection
// (roi-variant catalogs). PaybackMonths is nil when cost or savings is not
// strictly positive; the field is absent from JSON in that case.
type ROIQuote struct {
	Plans                     []string         `json:"plans"`
	Seats                     int              `json:"seats"`
	MonthlyCost               decimal.Decimal  `json:"monthly_cost"`
	TeamTimeSavedHoursPerWeek decimal.Decimal  `json:"team_time_saved_hours_per_week"`
	ProjectedOnTimeRate       decimal.Decimal  `json:"projected_on_time_rate"`
	TimeSavings               decimal.Decimal  `json:"time_savings_monthly"`
	DelaySavings              decimal.Decimal  `json:"delay_savings_monthly"`
	MonthlySavings            decimal.Decimal  `json:"monthly_savings"`
	NetMonthlyBenefit         decimal.Decimal  `json:"net_monthly_benefit"`
	PaybackMonths             *decimal.Decimal `json:"payback_months,omitempty"`
}

func (*ROIQuote) Kind() string { return "roi" }
