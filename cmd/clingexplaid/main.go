package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/krr-up/clingo-explaid/internal/config"
	"github.com/krr-up/clingo-explaid/internal/logging"
)

var (
	// Global flags
	verbose    bool
	logDir     string
	configPath string

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "clingexplaid [files...]",
	Short: "clingexplaid - explanation tools for unsatisfiable logic programs",
	Long: `clingexplaid explains why a logic program is unsatisfiable.

It computes minimal unsatisfiable cores over assumptions, reports the
integrity constraints responsible for unsatisfiability, and traces the
consequences of individual decisions.

Run a subcommand on one or more program files; the file "-" reads from
standard input.`,
	Version:      "1.0.0",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if logDir != "" {
			cfg.Logging.Dir = logDir
		}
		if verbose {
			cfg.Logging.Verbose = true
		}

		zapConfig := zap.NewProductionConfig()
		zapConfig.OutputPaths = []string{"stderr"}
		if cfg.Logging.Verbose {
			zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		} else {
			zapConfig.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		}
		logger, err = zapConfig.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		return logging.Initialize(cfg.Logging.Dir)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "directory for per-category log files")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "path to config file")

	rootCmd.AddCommand(mucCmd)
	rootCmd.AddCommand(unsatConstraintsCmd)
	rootCmd.AddCommand(showDecisionsCmd)
	rootCmd.AddCommand(groundCmd)
	rootCmd.AddCommand(tuiCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
