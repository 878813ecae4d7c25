package cli

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	showCatalogName string
	showCatalogFile string

	setSeats  int
	setRate   float64
	setOnTime float64
)

// catalogCmd represents the catalog command
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the offering catalogs",
	Long: `Inspect the active catalog: offerings, bundle rules, keyword
tables and the baseline metrics quotes are measured against.`,
}

var catalogShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the catalog definition as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := resolveCatalog(showCatalogName, showCatalogFile)
		if err != nil {
			return err
		}

		data, err := yaml.Marshal(cat.Definition())
		if err != nil {
			return fmt.Errorf("marshal catalog: %w", err)
		}

		fmt.Println(string(data))
		return nil
	},
}

var catalogSetBaselineCmd = &cobra.Command{
	Use:   "set-baseline",
	Short: "Apply a workforce baseline update and show the resulting catalog",
	Long: `Set-baseline exercises the guarded baseline-mutation path: the
update is validated (positive seats and rate, on-time fraction in [0,1]),
applied under the write lock, and the updated definition is printed.
Out-of-range values are rejected and the prior baseline is retained.

Example:
  goodrx catalog set-baseline --catalog productivity --seats 250 --rate 75 --on-time 0.82`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := resolveCatalog(showCatalogName, showCatalogFile)
		if err != nil {
			return err
		}

		wf, ok := cat.Workforce()
		if !ok {
			return fmt.Errorf("catalog %q has no workforce baseline", cat.Name())
		}

		seats := wf.Seats
		rate := wf.HourlyRate
		onTime := wf.OnTimeRate
		if cmd.Flags().Changed("seats") {
			seats = setSeats
		}
		if cmd.Flags().Changed("rate") {
			rate = decimal.NewFromFloat(setRate)
		}
		if cmd.Flags().Changed("on-time") {
			onTime = decimal.NewFromFloat(setOnTime)
		}

		if err := cat.UpdateBaseline(seats, rate, onTime); err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "Baseline updated (generation %d)\n", cat.Generation())

		data, err := yaml.Marshal(cat.Definition())
		if err != nil {
			return fmt.Errorf("marshal catalog: %w", err)
		}
		fmt.Println(string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogSetBaselineCmd)

	catalogCmd.PersistentFlags().StringVar(&showCatalogName, "catalog", "medical", "built-in catalog (medical, productivity)")
	catalogCmd.PersistentFlags().StringVar(&showCatalogFile, "catalog-file", "", "YAML catalog definition (overrides --catalog)")

	catalogSetBaselineCmd.Flags().IntVar(&setSeats, "seats", 0, "baseline seat count")
	catalogSetBaselineCmd.Flags().Float64Var(&setRate, "rate", 0, "baseline hourly rate")
	catalogSetBaselineCmd.Flags().Float64Var(&setOnTime, "on-time", 0, "baseline on-time fraction")
}
