package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/revitgen/internal/cli"
	"github.com/aretw0/revitgen/pkg/runner"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Lint and syntax-check a script",
	Long:  `Runs the same checks generated scripts go through. Reads stdin when no file (or "-") is given.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			data []byte
			err  error
		)
		if len(args) == 0 || args[0] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to read script: %w", err)
		}

		app, err := cli.NewApp(cmd.Context(), cfg, logger, cli.WithoutModel())
		if err != nil {
			return err
		}
		defer app.Close(context.Background())

		report, err := app.Engine.Check(cmd.Context(), string(data))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprint(out, runner.FormatDiagnostics(*report))
		if !report.Valid() {
			return fmt.Errorf("script has errors")
		}
		fmt.Fprintln(out, "# ok")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
