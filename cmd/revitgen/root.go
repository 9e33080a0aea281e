package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/revitgen/internal/cli"
	"github.com/aretw0/revitgen/internal/config"
	"github.com/spf13/cobra"
)

// Resolved in PersistentPreRunE, before any command runs.
var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "revitgen",
	Short: "revitgen turns natural-language requests into pyRevit scripts",
	Long: `revitgen asks a language model for a pyRevit (IronPython 2.7) script that does what
you describe, cleans and checks the reply, and serves it over HTTP, MCP or the terminal.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")

		var err error
		cfg, err = config.Load(path, cmd.Flags())
		if err != nil {
			return err
		}
		logger, err = cli.NewLogger(os.Stderr, cfg.Log)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
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
	// Persistent flags (available to all commands)
	f := rootCmd.PersistentFlags()
	f.String("config", "", "Config file (default: ./revitgen.yaml or ~/.config/revitgen/revitgen.yaml)")
	f.String("log-level", "info", "Log level: debug, info, warn, error")
	f.String("log-format", "text", "Log format: text or json")
	f.String("provider", "openai", "Model provider: openai, openrouter, anthropic, gemini, static")
	f.String("model", "", "Model name (provider default when empty)")
	f.Int("max-tokens", 3000, "Maximum tokens in a reply")
	f.String("variant", "extended", "System prompt variant: basic or extended")
	f.String("prompt-dir", "", "Directory overriding the embedded prompt files")
	f.String("ipy", "", "IronPython executable used for syntax checks (IPY_PATH)")
	f.Bool("telemetry", false, "Export OpenTelemetry traces to stderr")
}
