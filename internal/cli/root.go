// Package cli wires the command-line surface: foreground sessions, the
// control server, and config template management.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/fennwick/pageturner/internal/config"
)

// runtime holds the environment-derived settings, populated before any
// subcommand runs.
var runtime *config.Runtime

// configPath overrides the config file location; empty uses the default.
var configPath string

var rootCmd = &cobra.Command{
	Use:   "pageturner",
	Short: "Capture a screen region, advance the content, wait, and repeat",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		runtime = config.LoadRuntime()
		setupLogging(runtime.LogLevel)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.config/pageturner/config.json)")
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
}

func repository() *config.Repository {
	return config.NewRepository(configPath)
}
