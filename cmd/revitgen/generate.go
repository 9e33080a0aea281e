package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/revitgen/internal/cli"
	"github.com/aretw0/revitgen/internal/presentation/tui"
	"github.com/aretw0/revitgen/pkg/runner"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var generateCmd = &cobra.Command{
	Use:   "generate [query...]",
	Short: "Generate a pyRevit script",
	Long: `Generates a script for the query given as arguments, or read from stdin when no
arguments are given. The script goes to stdout and findings follow it as comments, so
the output can be saved straight to a script.py.`,
	Example: `  revitgen generate "select all walls on level 1"
  echo "count doors" | revitgen generate > script.py`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var in io.Reader
		if len(args) == 0 {
			if term.IsTerminal(int(os.Stdin.Fd())) {
				return fmt.Errorf("no query given: pass it as arguments or pipe it on stdin")
			}
			in = os.Stdin
		}
		query, err := cli.ReadQuery(args, in)
		if err != nil {
			return err
		}

		app, err := cli.NewApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer app.Close(context.Background())

		script, err := app.Engine.Generate(cmd.Context(), query)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(script)
		}

		code := script.Code()
		if term.IsTerminal(int(os.Stdout.Fd())) {
			if rendered, err := tui.NewRenderer()(tui.CodeBlock(code)); err == nil {
				code = rendered
			}
		}
		fmt.Fprintln(out, strings.TrimRight(code, "\n"))
		fmt.Fprint(out, runner.FormatDiagnostics(script.Report))

		if strict, _ := cmd.Flags().GetBool("strict"); strict && !script.Report.Valid() {
			return fmt.Errorf("generated script has errors")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().Bool("json", false, "Print the full result as JSON")
	generateCmd.Flags().Bool("strict", false, "Exit non-zero when the script has errors")
}
