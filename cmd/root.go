package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/listing-insights/internal/config"
	"github.com/KaramelBytes/listing-insights/internal/logging"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration and logger, set before any command runs
	cfg    *cfgpkg.Global
	logger = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "listing-insights [source...]",
	Short: "Analyze an Airbnb listings dataset and chart the results",
	Long: `listing-insights loads an Airbnb listings dataset from the first readable
source (CSV, XLSX or PostgreSQL), prints nine summary statistics and renders a
2x2 chart figure. When no source can be read it analyzes a reproducible
synthetic dataset instead.

Running without a subcommand is the same as "listing-insights analyze".`,
	Args:              cobra.ArbitraryArgs,
	PersistentPreRunE: setup,
	RunE:              runAnalyze,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute is the entry point called by main.main()
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.listing-insights/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	addAnalyzeFlags(rootCmd)
}

// setup loads configuration, applies flag overrides and builds the logger.
func setup(cmd *cobra.Command, _ []string) error {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = c
	if err := applyAnalyzeFlags(cmd, cfg); err != nil {
		return err
	}
	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	logger = logging.New(cmd.ErrOrStderr(), level, cfg.LogFormat)
	return nil
}
