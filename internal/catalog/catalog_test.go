package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

func TestBuiltin_KnownCatalogs(t *testing.T) {
	tests := []struct {
		name      string
		variant   Variant
		offerings int
	}{
		{"medical", VariantSavings, 2},
		{"productivity", VariantROI, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, err := Builtin(tt.name)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cat.Variant() != tt.variant {
				t.Errorf("expected variant %s, got %s", tt.variant, cat.Variant())
			}
			if len(cat.Offerings()) != tt.offerings {
				t.Errorf("expected %d offerings, got %d", tt.offerings, len(cat.Offerings()))
			}
		})
	}
}

func TestBuiltin_UnknownName(t *testing.T) {
	_, err := Builtin("dental")
	if err == nil {
		t.Fatal("expected error for unknown catalog name")
	}
}

func TestCatalog_Offering_Unknown(t *testing.T) {
	cat := Medical()

	_, err := cat.Offering("vision-plan")
	if err == nil {
		t.Fatal("expected error for unknown offering")
	}

	var unknownErr *UnknownOfferingError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("expected UnknownOfferingError, got %T: %v", err, err)
	}
	if unknownErr.Catalog != "medical" || unknownErr.ID != "vision-plan" {
		t.Errorf("unexpected error fields: %+v", unknownErr)
	}
}

func TestCatalog_DiscountFor_ThresholdSemantics(t *testing.T) {
	cat := Productivity()

	tests := []struct {
		size int
		want float64
	}{
		{0, 0},
		{1, 0},
		{2, 10},
		{3, 15},
		{4, 15}, // largest threshold still applies above it
	}

	for _, tt := range tests {
		got := cat.DiscountFor(tt.size)
		if !got.Equal(decimal.NewFromFloat(tt.want)) {
			t.Errorf("DiscountFor(%d) = %s, want %v", tt.size, got, tt.want)
		}
	}
}

func TestCatalog_UpdateBaseline(t *testing.T) {
	cat := Productivity()
	gen := cat.Generation()

	err := cat.UpdateBaseline(250, decimal.NewFromInt(75), decimal.NewFromFloat(0.82))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wf, ok := cat.Workforce()
	if !ok {
		t.Fatal("expected workforce baseline")
	}
	if wf.Seats != 250 {
		t.Errorf("expected 250 seats, got %d", wf.Seats)
	}
	if !wf.HourlyRate.Equal(decimal.NewFromInt(75)) {
		t.Errorf("expected rate 75, got %s", wf.HourlyRate)
	}
	if cat.Generation() != gen+1 {
		t.Errorf("expected generation bump, got %d (was %d)", cat.Generation(), gen)
	}
}

func TestCatalog_UpdateBaseline_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		seats  int
		rate   float64
		onTime float64
		field  string
	}{
		{"zero seats", 0, 60, 0.78, "seats"},
		{"negative seats", -5, 60, 0.78, "seats"},
		{"zero rate", 100, 0, 0.78, "hourly_rate"},
		{"on-time above one", 100, 60, 1.5, "on_time_rate"},
		{"negative on-time", 100, 60, -0.1, "on_time_rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := Productivity()
			before, _ := cat.Workforce()
			gen := cat.Generation()

			err := cat.UpdateBaseline(tt.seats, decimal.NewFromFloat(tt.rate), decimal.NewFromFloat(tt.onTime))
			if err == nil {
				t.Fatal("expected validation error")
			}

			var invalidErr *InvalidBaselineError
			if !errors.As(err, &invalidErr) {
				t.Fatalf("expected InvalidBaselineError, got %T: %v", err, err)
			}
			if invalidErr.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, invalidErr.Field)
			}

			// The prior baseline must survive a rejected update
			after, _ := cat.Workforce()
			if after.Seats != before.Seats || !after.HourlyRate.Equal(before.HourlyRate) {
				t.Error("rejected update modified the baseline")
			}
			if cat.Generation() != gen {
				t.Error("rejected update bumped the generation")
			}
		})
	}
}

func TestCatalog_UpdateBaseline_SavingsVariant(t *testing.T) {
	cat := Medical()

	err := cat.UpdateBaseline(10, decimal.NewFromInt(50), decimal.NewFromFloat(0.8))
	if err == nil {
		t.Fatal("expected error for savings-variant catalog")
	}
}

func TestNew_RejectsInconsistentDefinitions(t *testing.T) {
	base := func() Definition {
		return Definition{
			Name:    "test",
			Variant: VariantSavings,
			Offerings: []OfferingDef{
				{
					ID:              "plan-a",
					Name:            "Plan A",
					MonthlyPrice:    10.0,
					Keywords:        []string{"alpha"},
					SpendCategories: []string{"cat-a"},
				},
			},
			Baseline: BaselineDef{Spend: map[string]float64{"cat-a": 20.0}},
		}
	}

	t.Run("valid baseline passes", func(t *testing.T) {
		if _, err := New(base()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("missing keywords", func(t *testing.T) {
		def := base()
		def.Offerings[0].Keywords = nil
		if _, err := New(def); err == nil {
			t.Error("expected error for offering without keywords")
		}
	})

	t.Run("unknown spend category", func(t *testing.T) {
		def := base()
		def.Offerings[0].SpendCategories = []string{"missing"}
		if _, err := New(def); err == nil {
			t.Error("expected error for unknown spend category")
		}
	})

	t.Run("duplicate offering ID", func(t *testing.T) {
		def := base()
		def.Offerings = append(def.Offerings, def.Offerings[0])
		if _, err := New(def); err == nil {
			t.Error("expected error for duplicate ID")
		}
	})

	t.Run("decreasing bundle discount", func(t *testing.T) {
		def := base()
		def.Offerings = append(def.Offerings, OfferingDef{
			ID: "plan-b", Name: "Plan B", MonthlyPrice: 5.0,
			Keywords: []string{"beta"},
		})
		def.BundleRules = []BundleRuleDef{
			{MinSize: 2, DiscountPct: 15.0},
			{MinSize: 3, DiscountPct: 10.0},
		}
		if _, err := New(def); err == nil {
			t.Error("expected error for decreasing discount")
		}
	})

	t.Run("bundle rule below size two", func(t *testing.T) {
		def := base()
		def.BundleRules = []BundleRuleDef{{MinSize: 1, DiscountPct: 5.0}}
		if _, err := New(def); err == nil {
			t.Error("expected error for rule below size 2")
		}
	})

	t.Run("roi variant without workforce", func(t *testing.T) {
		def := base()
		def.Variant = VariantROI
		def.Offerings[0].Impact = &ImpactDef{OnTimeUpliftPct: 1.0}
		if _, err := New(def); err == nil {
			t.Error("expected error for roi variant without workforce baseline")
		}
	})

	t.Run("roi offering without impact", func(t *testing.T) {
		def := base()
		def.Variant = VariantROI
		def.Baseline.Workforce = &WorkforceDef{Seats: 10, HourlyRate: 50.0, OnTimeRate: 0.8}
		if _, err := New(def); err == nil {
			t.Error("expected error for roi offering without impact")
		}
	})
}

func TestLoadFile_RoundTrip(t *testing.T) {
	def := Medical().Definition()
	data, err := yaml.Marshal(def)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	cat, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cat.Name() != "medical" {
		t.Errorf("expected name medical, got %s", cat.Name())
	}
	if len(cat.Offerings()) != 2 {
		t.Errorf("expected 2 offerings, got %d", len(cat.Offerings()))
	}

	o, err := cat.Offering("diabetes-care")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if !o.UnitPrice.Equal(decimal.NewFromInt(29)) {
		t.Errorf("expected price 29, got %s", o.UnitPrice)
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestCatalog_Payload_MedicalShape(t *testing.T) {
	payload := Medical().Payload()

	plans, ok := payload["plans"].(map[string]interface{})
	if !ok {
		t.Fatal("expected plans map in payload")
	}
	if _, ok := plans["Diabetes Care"]; !ok {
		t.Error("expected plans keyed by display name")
	}

	patient, ok := payload["demo_patient"].(map[string]interface{})
	if !ok {
		t.Fatal("expected demo_patient in savings payload")
	}
	if _, ok := patient["current_spend"]; !ok {
		t.Error("expected current_spend under demo_patient")
	}
	if _, ok := payload["baseline_metrics"]; ok {
		t.Error("savings payload must not carry baseline_metrics")
	}
}

func TestCatalog_Payload_TracksBaselineUpdate(t *testing.T) {
	cat := Productivity()
	if err := cat.UpdateBaseline(42, decimal.NewFromInt(80), decimal.NewFromFloat(0.9)); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	metrics, ok := cat.Payload()["baseline_metrics"].(map[string]interface{})
	if !ok {
		t.Fatal("expected baseline_metrics in roi payload")
	}
	if seats := metrics["seats"].(int); seats != 42 {
		t.Errorf("expected updated seats 42, got %v", seats)
	}
}
