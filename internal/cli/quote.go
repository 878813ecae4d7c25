package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cetine/goodrx/internal/catalog"
	"github.com/cetine/goodrx/internal/pricing"
	"github.com/spf13/cobra"
)

var (
	quoteCatalogName string
	quoteCatalogFile string
	quoteSelect      string
	quoteAll         bool
)

// quoteCmd represents the quote command
var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Price a selection of offerings and print the quote as JSON",
	Long: `Quote runs the deterministic calculator directly, without a chat
session: pick offerings by ID, get the bundle price and the savings or ROI
projection against the catalog baseline.

Example:
  goodrx quote --select diabetes-care
  goodrx quote --select diabetes-care,heart-health
  goodrx quote --catalog productivity --all`,
	Args: cobra.NoArgs,
	RunE: runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)

	quoteCmd.Flags().StringVar(&quoteCatalogName, "catalog", "medical", "built-in catalog (medical, productivity)")
	quoteCmd.Flags().StringVar(&quoteCatalogFile, "catalog-file", "", "YAML catalog definition (overrides --catalog)")
	quoteCmd.Flags().StringVar(&quoteSelect, "select", "", "comma-separated offering IDs")
	quoteCmd.Flags().BoolVar(&quoteAll, "all", false, "quote the full catalog bundle")
}

func runQuote(cmd *cobra.Command, args []string) error {
	cat, err := resolveCatalog(quoteCatalogName, quoteCatalogFile)
	if err != nil {
		return err
	}

	var sel []catalog.OfferingID
	switch {
	case quoteAll:
		sel = cat.IDs()
	case quoteSelect != "":
		sel = parseSelection(quoteSelect)
	default:
		return fmt.Errorf("nothing selected: use --select or --all")
	}

	calc := pricing.NewCalculator()
	quote, err := calc.QuoteFor(cat, sel)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(quote, "", "  ")
	if err != nil {
		return fmt.Errorf("render quote: %w", err)
	}

	fmt.Println(string(out))
	return nil
}

// parseSelection splits a comma list into distinct IDs, preserving order.
func parseSelection(s string) []catalog.OfferingID {
	seen := make(map[catalog.OfferingID]bool)
	var sel []catalog.OfferingID
	for _, part := range strings.Split(s, ",") {
		id := catalog.OfferingID(strings.TrimSpace(part))
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		sel = append(sel, id)
	}
	return sel
}
