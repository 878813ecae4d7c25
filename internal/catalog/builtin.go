package catalog

import "fmt"

// Built-in demo catalogs. Both are declared as Definitions so they pass the
// same validation as file-loaded catalogs.

// Medical returns the two-plan medication subscription catalog.
func Medical() *Catalog {
	cat, err := New(medicalDef())
	if err != nil {
		panic(fmt.Sprintf("built-in medical catalog invalid: %v", err))
	}
	return cat
}

// Productivity returns the three-feature per-seat productivity catalog.
func Productivity() *Catalog {
	cat, err := New(productivityDef())
	if err != nil {
		panic(fmt.Sprintf("built-in productivity catalog invalid: %v", err))
	}
	return cat
}

// Builtin resolves a built-in catalog by name.
func Builtin(name string) (*Catalog, error) {
	switch name {
	case "medical":
		return Medical(), nil
	case "productivity":
		return Productivity(), nil
	default:
		return nil, fmt.Errorf("unknown built-in catalog: %s (available: medical, productivity)", name)
	}
}

func medicalDef() Definition {
	return Definition{
		Name:    "medical",
		Variant: VariantSavings,
		Offerings: []OfferingDef{
			{
				ID:           "diabetes-care",
				Name:         "Diabetes Care",
				MonthlyPrice: 29.0,
				Includes: []string{
					"Metformin refills",
					"Glucose monitor strips",
					"Telehealth check-in every 3 months",
				},
				Description:     "Subscription for diabetes maintenance medications and supplies.",
				Keywords:        []string{"diabetes", "metformin", "glucose", "blood sugar"},
				SpendCategories: []string{"Metformin"},
			},
			{
				ID:           "heart-health",
				Name:         "Heart Health",
				MonthlyPrice: 25.0,
				Includes: []string{
					"ACE inhibitors (typical options)",
					"Digital BP monitor",
					"Priority refills",
				},
				Description:     "Subscription for blood pressure management.",
				Keywords:        []string{"blood pressure", "bp ", "ace", "heart", "hypertension"},
				SpendCategories: []string{"ACE_inhibitor"},
			},
		},
		BundleRules: []BundleRuleDef{
			{MinSize: 2, DiscountPct: 10.0},
		},
		BundleKeywords: []string{"bundle", "both", "together"},
		Baseline: BaselineDef{
			Spend: map[string]float64{
				"Metformin":     42.0,
				"ACE_inhibitor": 20.0,
			},
		},
	}
}

func productivityDef() Definition {
	return Definition{
		Name:    "productivity",
		Variant: VariantROI,
		Offerings: []OfferingDef{
			{
				ID:           "predictive-scheduling",
				Name:         "Predictive Scheduling",
				MonthlyPrice: 3.0,
				Includes: []string{
					"Deadline risk forecasts per task",
					"Auto-rebalanced sprint plans",
					"Calendar-aware workload smoothing",
				},
				Description: "Forecasts schedule slip and rebalances assignments before deadlines move.",
				Keywords:    []string{"schedule", "scheduling", "deadline", "sprint", "workload"},
				Impact: &ImpactDef{
					OnTimeUpliftPct:    6.0,
					MinutesPerUserWeek: 12.0,
				},
			},
			{
				ID:           "risk-radar",
				Name:         "Risk Radar",
				MonthlyPrice: 4.0,
				Includes: []string{
					"Blocker detection across tickets",
					"Delay-cost scoring per initiative",
					"Escalation digests for leads",
				},
				Description: "Scores delivery risk and surfaces blockers before they become delays.",
				Keywords:    []string{"risk", "blocker", "delay", "slip", "escalation"},
				Impact: &ImpactDef{
					OnTimeUpliftPct:   3.0,
					DelayReductionPct: 15.0,
				},
			},
			{
				ID:           "status-autopilot",
				Name:         "Status Autopilot",
				MonthlyPrice: 2.5,
				Includes: []string{
					"Auto-drafted weekly status reports",
					"Stakeholder-ready rollups",
					"Standup summaries from activity",
				},
				Description: "Writes status reports and rollups from project activity automatically.",
				Keywords:    []string{"status", "report", "standup", "update", "rollup"},
				Impact: &ImpactDef{
					ManagerHoursPerWeek: 5.0,
				},
			},
		},
		BundleRules: []BundleRuleDef{
			{MinSize: 2, DiscountPct: 10.0},
			{MinSize: 3, DiscountPct: 15.0},
		},
		BundleKeywords: []string{"bundle", "both", "together", "all three", "everything"},
		Baseline: BaselineDef{
			Workforce: &WorkforceDef{
				Seats:                  100,
				HourlyRate:             60.0,
				OnTimeRate:             0.78,
				StatusPrepHoursPerWeek: 6.0,
				AvgDelayCost:           1200.0,
				AtRiskTasksPerMonth:    15,
			},
		},
	}
}
