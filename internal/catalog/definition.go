package catalog

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Definition is the serializable form of a catalog. Deployments can ship
// their own offering tables as YAML files; the built-in catalogs are
// declared as Definitions too, so both paths go through the same validation.
type Definition struct {
	Name           string          `yaml:"name" json:"name"`
	Variant        Variant         `yaml:"variant" json:"variant"`
	Offerings      []OfferingDef   `yaml:"offerings" json:"offerings"`
	BundleRules    []BundleRuleDef `yaml:"bundle_rules" json:"bundle_rules"`
	BundleKeywords []string        `yaml:"bundle_keywords" json:"bundle_keywords"`
	Baseline       BaselineDef     `yaml:"baseline" json:"baseline"`
}

// OfferingDef declares one offering.
type OfferingDef struct {
	ID              string     `yaml:"id" json:"id"`
	Name            string     `yaml:"name" json:"name"`
	MonthlyPrice    float64    `yaml:"monthly_price" json:"monthly_price"`
	Includes        []string   `yaml:"includes" json:"includes"`
	Description     string     `yaml:"description" json:"description"`
	Keywords        []string   `yaml:"keywords" json:"keywords"`
	SpendCategories []string   `yaml:"spend_categories,omitempty" json:"spend_categories,omitempty"`
	Impact          *ImpactDef `yaml:"impact,omitempty" json:"impact,omitempty"`
}

// ImpactDef declares the additive ROI coefficients of one offering.
type ImpactDef struct {
	OnTimeUpliftPct     float64 `yaml:"on_time_uplift_pct" json:"on_time_uplift_pct"`
	DelayReductionPct   float64 `yaml:"delay_reduction_pct" json:"delay_reduction_pct"`
	MinutesPerUserWeek  float64 `yaml:"minutes_per_user_week" json:"minutes_per_user_week"`
	ManagerHoursPerWeek float64 `yaml:"manager_hours_per_week" json:"manager_hours_per_week"`
}

// BundleRuleDef declares one size-threshold discount.
type BundleRuleDef struct {
	MinSize     int     `yaml:"min_size" json:"min_size"`
	DiscountPct float64 `yaml:"discount_pct" json:"discount_pct"`
}

// BaselineDef declares the variant-specific baseline.
type BaselineDef struct {
	Spend     map[string]float64 `yaml:"spend,omitempty" json:"spend,omitempty"`
	Workforce *WorkforceDef      `yaml:"workforce,omitempty" json:"workforce,omitempty"`
}

// WorkforceDef declares the ROI baseline KPIs.
type WorkforceDef struct {
	Seats                  int     `yaml:"seats" json:"seats"`
	HourlyRate             float64 `yaml:"hourly_rate" json:"hourly_rate"`
	OnTimeRate             float64 `yaml:"on_time_rate" json:"on_time_rate"`
	StatusPrepHoursPerWeek float64 `yaml:"status_prep_hours_per_week" json:"status_prep_hours_per_week"`
	AvgDelayCost           float64 `yaml:"avg_delay_cost" json:"avg_delay_cost"`
	AtRiskTasksPerMonth    int     `yaml:"at_risk_tasks_per_month" json:"at_risk_tasks_per_month"`
}

// New builds a validated catalog from a definition.
func New(def Definition) (*Catalog, error) {
	c := &Catalog{
		name:           def.Name,
		variant:        def.Variant,
		byID:           make(map[OfferingID]int, len(def.Offerings)),
		bundleKeywords: append([]string(nil), def.BundleKeywords...),
	}

	for i, od := range def.Offerings {
		id := OfferingID(od.ID)
		if _, dup := c.byID[id]; dup {
			return nil, fmt.Errorf("catalog %q: duplicate offering ID %q", def.Name, od.ID)
		}
		o := Offering{
			ID:              id,
			Name:            od.Name,
			UnitPrice:       decimal.NewFromFloat(od.MonthlyPrice),
			Includes:        append([]string(nil), od.Includes...),
			Description:     od.Description,
			Keywords:        append([]string(nil), od.Keywords...),
			SpendCategories: append([]string(nil), od.SpendCategories...),
		}
		if od.Impact != nil {
			o.Impact = &Impact{
				OnTimeUpliftPct:     decimal.NewFromFloat(od.Impact.OnTimeUpliftPct),
				DelayReductionPct:   decimal.NewFromFloat(od.Impact.DelayReductionPct),
				MinutesPerUserWeek:  decimal.NewFromFloat(od.Impact.MinutesPerUserWeek),
				ManagerHoursPerWeek: decimal.NewFromFloat(od.Impact.ManagerHoursPerWeek),
			}
		}
		c.offerings = append(c.offerings, o)
		c.byID[id] = i
	}

	for _, rd := range def.BundleRules {
		c.bundleRules = append(c.bundleRules, BundleRule{
			MinSize:     rd.MinSize,
			DiscountPct: decimal.NewFromFloat(rd.DiscountPct),
		})
	}

	switch def.Variant {
	case VariantSavings:
		c.spend = make(map[string]decimal.Decimal, len(def.Baseline.Spend))
		for k, v := range def.Baseline.Spend {
			c.spend[k] = decimal.NewFromFloat(v)
		}
	case VariantROI:
		wd := def.Baseline.Workforce
		if wd == nil {
			return nil, fmt.Errorf("catalog %q: roi variant requires a workforce baseline", def.Name)
		}
		c.workforce = Workforce{
			Seats:                  wd.Seats,
			HourlyRate:             decimal.NewFromFloat(wd.HourlyRate),
			OnTimeRate:             decimal.NewFromFloat(wd.OnTimeRate),
			StatusPrepHoursPerWeek: decimal.NewFromFloat(wd.StatusPrepHoursPerWeek),
			AvgDelayCost:           decimal.NewFromFloat(wd.AvgDelayCost),
			AtRiskTasksPerMonth:    wd.AtRiskTasksPerMonth,
		}
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadFile reads a catalog definition from a YAML file and validates it.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}

	cat, err := New(def)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return cat, nil
}

// Definition exports the catalog back into its serializable form, with the
// current (possibly updated) baseline. Used by "catalog show".
func (c *Catalog) Definition() Definition {
	def := Definition{
		Name:           c.name,
		Variant:        c.variant,
		BundleKeywords: c.BundleKeywords(),
	}

	for _, o := range c.offerings {
		od := OfferingDef{
			ID:              string(o.ID),
			Name:            o.Name,
			MonthlyPrice:    o.UnitPrice.InexactFloat64(),
			Includes:        append([]string(nil), o.Includes...),
			Description:     o.Description,
			Keywords:        append([]string(nil), o.Keywords...),
			SpendCategories: append([]string(nil), o.SpendCategories...),
		}
		if o.Impact != nil {
			od.Impact = &ImpactDef{
				OnTimeUpliftPct:     o.Impact.OnTimeUpliftPct.InexactFloat64(),
				DelayReductionPct:   o.Impact.DelayReductionPct.InexactFloat64(),
				MinutesPerUserWeek:  o.Impact.MinutesPerUserWeek.InexactFloat64(),
				ManagerHoursPerWeek: o.Impact.ManagerHoursPerWeek.InexactFloat64(),
			}
		}
		def.Offerings = append(def.Offerings, od)
	}

	for _, r := range c.bundleRules {
		def.BundleRules = append(def.BundleRules, BundleRuleDef{
			MinSize:     r.MinSize,
			DiscountPct: r.DiscountPct.InexactFloat64(),
		})
	}

	switch c.variant {
	case VariantSavings:
		def.Baseline.Spend = make(map[string]float64, len(c.spend))
		for k, v := range c.spend {
			def.Baseline.Spend[k] = v.InexactFloat64()
		}
	case VariantROI:
		wf, _ := c.Workforce()
		def.Baseline.Workforce = &WorkforceDef{
			Seats:                  wf.Seats,
			HourlyRate:             wf.HourlyRate.InexactFloat64(),
			OnTimeRate:             wf.OnTimeRate.InexactFloat64(),
			StatusPrepHoursPerWeek: wf.StatusPrepHoursPerWeek.InexactFloat64(),
			AvgDelayCost:           wf.AvgDelayCost.InexactFloat64(),
			AtRiskTasksPerMonth:    wf.AtRiskTasksPerMonth,
		}
	}

	return def
}
