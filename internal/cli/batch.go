package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/cetine/goodrx/internal/worker"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	batchCatalogName string
	batchCatalogFile string
	concurrency      int
	batchOutput      string
	batchTimeout     time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Classify and price messages from a file in parallel",
	Long: `Batch evaluates many messages concurrently against one shared
catalog: each line of the input file is classified with the keyword tables
and priced, and the result is written as one JSON object per line. No
remote model is involved.

Example:
  goodrx batch messages.txt
  goodrx batch messages.txt --catalog productivity --concurrency 10
  goodrx batch messages.txt --output results.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&batchCatalogName, "catalog", "medical", "built-in catalog (medical, productivity)")
	batchCmd.Flags().StringVar(&batchCatalogFile, "catalog-file", "", "YAML catalog definition (overrides --catalog)")
	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&batchOutput, "output", "", "output file (default: stdout)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", time.Minute, "total timeout for batch processing")
	_ = viper.BindPFlag("concurrency.workers", batchCmd.Flags().Lookup("concurrency"))
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cat, err := resolveCatalog(batchCatalogName, batchCatalogFile)
	if err != nil {
		return err
	}

	out := os.Stdout
	if batchOutput != "" {
		f, err := os.Create(batchOutput)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	cfg := loadConfig()
	workers := cfg.Concurrency.Workers

	if verbose {
		fmt.Fprintf(os.Stderr, "Input file:  %s\n", file)
		fmt.Fprintf(os.Stderr, "Catalog:     %s\n", cat.Name())
		fmt.Fprintf(os.Stderr, "Workers:     %d\n", workers)
		fmt.Fprintln(os.Stderr)
	}

	processor := worker.NewBatchProcessor(cat, workers)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	enc := json.NewEncoder(out)
	successCount := 0
	failureCount := 0

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			line := map[string]string{"message": result.Message, "error": result.Error.Error()}
			if err := enc.Encode(line); err != nil {
				return fmt.Errorf("write result: %w", err)
			}
			continue
		}
		successCount++
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	}

	fmt.Fprintf(os.Stderr, "Processed %d messages (%d ok, %d failed)\n",
		len(results), successCount, failureCount)

	return nil
}
