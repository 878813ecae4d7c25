package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cetine/goodrx/internal/catalog"
	"github.com/cetine/goodrx/internal/llm"
	"github.com/cetine/goodrx/internal/session"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	catalogName string
	catalogFile string
	demo        bool
	turnTimeout time.Duration

	llmEnabled  bool
	llmProvider string
	llmModel    string
	llmTimeout  int
	llmTokens   int

	baselineSeats  int
	baselineRate   float64
	baselineOnTime float64
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive coaching session",
	Long: `Chat runs the coaching loop on stdin: each line is one turn.
The turn is classified against the catalog's keyword tables, quotes are
computed deterministically, and the numbers plus your message go to the
configured model for a conversational reply.

Without --llm the session runs offline and prints the computed quotes
directly.

Commands inside the session: /reset clears the transcript, /history prints
it, exit or quit ends the session.

Example:
  goodrx chat --demo
  goodrx chat --catalog productivity --seats 250 --rate 75
  goodrx chat --llm --llm-provider openai --llm-model gpt-4o-mini`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringVar(&catalogName, "catalog", "medical", "built-in catalog (medical, productivity)")
	chatCmd.Flags().StringVar(&catalogFile, "catalog-file", "", "YAML catalog definition (overrides --catalog)")
	chatCmd.Flags().BoolVar(&demo, "demo", false, "preload the scripted demo conversation")
	chatCmd.Flags().DurationVar(&turnTimeout, "timeout", 60*time.Second, "timeout per turn")

	// LLM flags, bound into the llm config section so a set flag wins over
	// the config file and an unset one falls back to it
	chatCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable the remote model (offline quotes otherwise)")
	chatCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	chatCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
	chatCmd.Flags().IntVar(&llmTimeout, "llm-timeout", 30, "LLM request timeout in seconds")
	chatCmd.Flags().IntVar(&llmTokens, "llm-max-tokens", 1000, "LLM response token limit")
	_ = viper.BindPFlag("llm.provider", chatCmd.Flags().Lookup("llm-provider"))
	_ = viper.BindPFlag("llm.model", chatCmd.Flags().Lookup("llm-model"))
	_ = viper.BindPFlag("llm.timeout", chatCmd.Flags().Lookup("llm-timeout"))
	_ = viper.BindPFlag("llm.max_tokens", chatCmd.Flags().Lookup("llm-max-tokens"))

	// Baseline overrides (roi catalogs only)
	chatCmd.Flags().IntVar(&baselineSeats, "seats", 0, "override baseline seat count")
	chatCmd.Flags().Float64Var(&baselineRate, "rate", 0, "override baseline hourly rate")
	chatCmd.Flags().Float64Var(&baselineOnTime, "on-time", 0, "override baseline on-time fraction")
}

func runChat(cmd *cobra.Command, args []string) error {
	cat, err := resolveCatalog(catalogName, catalogFile)
	if err != nil {
		return err
	}

	if err := applyBaselineOverrides(cat, cmd); err != nil {
		return err
	}

	cfg := loadConfig()
	coach, err := buildCoach(llmEnabled, cfg.LLM)
	if err != nil {
		return err
	}

	sess := session.New(cat, coach, session.Options{
		RequestsPerSecond: cfg.RateLimiting.RequestsPerSecond,
		BurstSize:         cfg.RateLimiting.BurstSize,
		CacheEnabled:      cfg.Cache.Enabled,
		CacheTTL:          cfg.Cache.TTL,
	})

	fmt.Fprintf(os.Stderr, "Session %s / catalog %q", sess.ID(), cat.Name())
	if coach.IsEnabled() {
		fmt.Fprintf(os.Stderr, " / model %s", coach.ProviderName())
	} else {
		fmt.Fprintf(os.Stderr, " / offline")
	}
	fmt.Fprintln(os.Stderr)

	if demo {
		sess.Preload(session.DemoScript(cat.Variant()))
		printTranscript(sess.Transcript())
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		case "/reset":
			sess.Reset()
			fmt.Fprintln(os.Stderr, "Transcript cleared.")
			continue
		case "/history":
			printTranscript(sess.Transcript())
			continue
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), turnTimeout)
		result, err := sess.Send(ctx, line)
		cancel()
		if err != nil {
			// Turn rejected before any remote call; the session continues.
			fmt.Fprintf(os.Stderr, "Turn failed: %v\n", err)
			continue
		}

		if verbose {
			ctxJSON, _ := json.Marshal(result.Context)
			fmt.Fprintf(os.Stderr, "context: %s\n", ctxJSON)
		}

		fmt.Printf("coach> %s\n", result.Reply)
	}

	return scanner.Err()
}

// applyBaselineOverrides funnels the CLI overrides through the catalog's
// guarded update path so they get the same validation as any other
// baseline mutation. Unset flags keep the current value.
func applyBaselineOverrides(cat *catalog.Catalog, cmd *cobra.Command) error {
	if !cmd.Flags().Changed("seats") && !cmd.Flags().Changed("rate") && !cmd.Flags().Changed("on-time") {
		return nil
	}

	wf, ok := cat.Workforce()
	if !ok {
		return fmt.Errorf("baseline overrides apply to roi catalogs only")
	}

	seats := wf.Seats
	rate := wf.HourlyRate
	onTime := wf.OnTimeRate
	if cmd.Flags().Changed("seats") {
		seats = baselineSeats
	}
	if cmd.Flags().Changed("rate") {
		rate = decimal.NewFromFloat(baselineRate)
	}
	if cmd.Flags().Changed("on-time") {
		onTime = decimal.NewFromFloat(baselineOnTime)
	}

	return cat.UpdateBaseline(seats, rate, onTime)
}

func printTranscript(turns []llm.Turn) {
	for _, t := range turns {
		fmt.Printf("%s> %s\n", t.Role, t.Text)
	}
}
