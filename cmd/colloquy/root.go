package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/colloquy/internal/config"
	"github.com/aretw0/colloquy/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfg    config.Config
	logger = logging.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "colloquy",
	Short: "Colloquy plays and inspects branching dialogue projects",
	Long: `Colloquy loads dialogue projects (YAML or JSON), validates them, renders
their graph, plays them in the terminal and serves them over HTTP.

Settings are read from COLLOQUY_* environment variables; flags override them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded

		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
		}
		level, err := logging.ParseLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		logger = logging.New(level)
		logger.Debug("Configuration loaded", "backend", cfg.SnapshotBackend, "step_budget", cfg.StepBudget)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", slog.LevelInfo.String(), "Log level (debug, info, warn, error)")
}
