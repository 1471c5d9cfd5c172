// Package main implements the dana CLI: a thin Cobra wrapper around the
// github.com/dana-lang/dana/dana embedding API. It runs a source file,
// reports the interpreter's exit status, and exits — there is no
// interactive mode.
//
// File Index:
//   - main.go    - entry point, rootCmd, global flags, init()
//   - run.go     - runCmd, runDana()
//   - version.go - versionCmd
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	configPath string
	danaPath   []string
	timeout    time.Duration

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "dana",
	Short: "dana - the Dana agent-native language runtime",
	Long: `dana runs agent-native Dana programs.

Dana programs reason about LLM calls, resources, and knowledge bases as
first-class language constructs rather than library calls; dana embeds an
interpreter for that language and runs a source file to completion.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug-level logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a dana config file (default: built-in defaults)")
	rootCmd.PersistentFlags().StringSliceVar(&danaPath, "danapath", nil, "Additional module search paths (augments $DANAPATH)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Abort the program after this long (0 disables)")

	rootCmd.AddCommand(runCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
