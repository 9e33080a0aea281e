package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/revitgen/internal/cli"
	"github.com/aretw0/revitgen/internal/presentation/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print the system prompt sent to the model",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.NewApp(cmd.Context(), cfg, logger, cli.WithoutModel())
		if err != nil {
			return err
		}
		defer app.Close(context.Background())

		text, err := app.Engine.SystemPrompt(cmd.Context())
		if err != nil {
			return err
		}

		raw, _ := cmd.Flags().GetBool("raw")
		if !raw && term.IsTerminal(int(os.Stdout.Fd())) {
			if rendered, err := tui.NewRenderer()(text); err == nil {
				text = rendered
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(promptCmd)
	promptCmd.Flags().Bool("raw", false, "Print markdown without rendering")
}
