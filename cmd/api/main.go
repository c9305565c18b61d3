package main

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var version = "dev"

var (
	verbose bool
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "presale",
	Short: "Presale lead capture and booking funnel",
	Long: `presale runs the lead ingestion API for the presale site: it persists
every lead first, forwards it to the automation endpoint best-effort, and serves
the operator dashboard API and the scheduling widget integration.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config, err := loggerConfig(verbose)
		if err != nil {
			return err
		}
		logger, err = config.Build()
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

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

type logEnv struct {
	Level zapcore.Level `env:"LOG_LEVEL" envDefault:"info"`
}

// loggerConfig reads LOG_LEVEL (debug, info, warn, error); --verbose forces debug.
func loggerConfig(verbose bool) (zap.Config, error) {
	config := zap.NewProductionConfig()
	le, err := env.ParseAs[logEnv]()
	if err != nil {
		return config, fmt.Errorf("parse LOG_LEVEL: %w", err)
	}
	config.Level = zap.NewAtomicLevelAt(le.Level)
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(serveCmd, migrateCmd, funnelCmd, tokenCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
