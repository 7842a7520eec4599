package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nvandessel/ox500/internal/config"
	"github.com/nvandessel/ox500/internal/logging"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ox500",
		Short: "OX-500 archive terminal - a diagnostics station that slowly comes apart",
		Long: `ox500 runs the OX-500 archive terminal: a diagnostics panel whose
phase model escalates from NOMINAL through UNSTABLE to INCIDENT as activity
builds up, scheduling visual anomalies against the display as it goes.

Sessions are deterministic for a given seed. Use 'ox500 simulate' to replay
one on a virtual clock.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.ox500/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Override logging.level (info, debug, trace)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newServeCmd(),
		newMCPServerCmd(),
		newSimulateCmd(),
		newRecipesCmd(),
		newJournalCmd(),
		newConfigCmd(),
	)
	return rootCmd
}

// loadConfig resolves the config for a command: --config or the default
// locations, then --log-level.
func loadConfig(cmd *cobra.Command) (*config.StationConfig, error) {
	var (
		cfg *config.StationConfig
		err error
	)
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfg, err = config.LoadFromFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the operational logger. Commands that own the terminal
// pass toFile so log output lands in <logging.dir>/ox500.log instead.
func newLogger(cfg *config.StationConfig, w io.Writer, toFile bool) (*slog.Logger, func(), error) {
	if !toFile {
		return logging.NewLoggerWithFormat(cfg.Logging.Level, cfg.Logging.Format, w), func() {}, nil
	}
	dir := config.ExpandPath(cfg.Logging.Dir)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "ox500.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return logging.NewLoggerWithFormat(cfg.Logging.Level, "text", f), func() { f.Close() }, nil
}
