package cli

import (
	"fmt"
	"os"

	"github.com/cetine/goodrx/internal/catalog"
	"github.com/cetine/goodrx/internal/llm"
	"github.com/cetine/goodrx/internal/model"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "goodrx",
	Short: "goodrx - AI subscription coach over a deterministic pricing core",
	Long: `goodrx is a demo subscription coach: a deterministic pricing and ROI
calculator over a small offering catalog, fronted by a chat loop backed by
a hosted generative model.

All numbers come from the local calculator; the remote model only explains
them. It never invents prices, and it is not a source of medical advice.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for goodrx.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("goodrx v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.goodrx/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.goodrx")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match GOODRX_*
	viper.SetEnvPrefix("GOODRX")
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// resolveCatalog loads the active catalog: an explicit YAML file wins over
// a built-in name.
func resolveCatalog(name, file string) (*catalog.Catalog, error) {
	if file != "" {
		return catalog.LoadFile(file)
	}
	return catalog.Builtin(name)
}

// loadConfig merges the resolved viper state (config file, GOODRX_* env,
// bound flags) over the defaults. An unreadable section degrades to the
// defaults with a warning rather than aborting the command.
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: invalid configuration: %v\n", err)
	}
	return cfg
}

// buildCoach assembles the LLM coach from the resolved configuration. A
// disabled coach is valid: the session then renders quotes locally.
func buildCoach(enabled bool, mc model.LLMConfig) (*llm.Coach, error) {
	if !enabled {
		return llm.NewCoach(llm.Config{})
	}

	cfg := llm.ConfigFromModel(mc)
	if err := llm.ResolveAPIKey(&cfg); err != nil {
		return nil, err
	}
	return llm.NewCoach(cfg)
}
