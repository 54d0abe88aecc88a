package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/lppminer/internal/config"
	"github.com/dbsmedya/lppminer/internal/miner"
	"github.com/dbsmedya/lppminer/internal/report"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// CLI flags that override config file values
var (
	cfgFile    string
	logLevel   string
	logFormat  string
	minSupport int
	minPeriod  int
	maxDepth   int
	workers    int
	batchSize  int
	output     string
	noColor    bool
)

var rootCmd = &cobra.Command{
	Use:   "lppminer",
	Short: "Local periodic pattern miner for transaction logs",
	Long: `A batch CLI that mines periodic item patterns from timestamped
transaction logs stored in MySQL or exported as CSV.

Features:
  - Flat engine: single items that recur at least min_period days apart
  - Depth engine: bounded depth-first growth of multi-item patterns
  - Keyset-paged loading from MySQL with checkpointed progress
  - Run history and patterns persisted to a results database
  - Advisory locking so a job never runs twice concurrently`,
	Version: Version,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "lppminer.yaml",
		"Path to configuration file")

	// Logging overrides
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")

	// Mining overrides
	rootCmd.PersistentFlags().IntVar(&minSupport, "min-support", 0,
		"Override min_support (distinct days for an item to be frequent)")
	rootCmd.PersistentFlags().IntVar(&minPeriod, "min-period", 0,
		"Override min_period (smallest qualifying gap in day ordinals)")
	rootCmd.PersistentFlags().IntVar(&maxDepth, "max-depth", 0,
		"Override max_depth for the depth engine")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0,
		"Override number of seeds searched concurrently")
	rootCmd.PersistentFlags().IntVar(&batchSize, "batch-size", 0,
		"Override rows fetched per page from MySQL")

	// Output
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "text",
		"Result format (text, json)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false,
		"Disable colored output")
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// CLIOverrides contains flag values that override config file settings
type CLIOverrides struct {
	LogLevel   string
	LogFormat  string
	MinSupport int
	MinPeriod  int
	MaxDepth   int
	Workers    int
	BatchSize  int
	Output     string
	NoColor    bool
}

// GetCLIOverrides returns the CLI flag override values
func GetCLIOverrides() CLIOverrides {
	return CLIOverrides{
		LogLevel:   logLevel,
		LogFormat:  logFormat,
		MinSupport: minSupport,
		MinPeriod:  minPeriod,
		MaxDepth:   maxDepth,
		Workers:    workers,
		BatchSize:  batchSize,
		Output:     output,
		NoColor:    noColor,
	}
}

// loadConfig reads the config file and applies the global CLI overrides.
func loadConfig(o CLIOverrides) (*config.Config, error) {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ApplyOverrides(o.LogLevel, o.LogFormat, o.MinSupport, o.MinPeriod, o.MaxDepth, o.Workers, o.BatchSize)
	return cfg, nil
}

func checkOutputFormat(format string) error {
	switch format {
	case "", "text", "json":
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want text or json)", format)
	}
}

// renderResult writes a mining result in the requested format.
func renderResult(w io.Writer, res *miner.MiningResult, o CLIOverrides) error {
	if o.Output == "json" {
		return report.WriteJSON(w, res)
	}
	report.NewPrinter(w, !o.NoColor).Result(res)
	return nil
}
