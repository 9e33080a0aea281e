package main

import (
	"context"
	"os"

	"github.com/aretw0/revitgen"
	"github.com/aretw0/revitgen/internal/cli"
	"github.com/aretw0/revitgen/internal/presentation/tui"
	"github.com/aretw0/revitgen/pkg/runner"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Generate scripts interactively",
	Long:  `Reads one query per line and prints each script. Type exit or quit (or send EOF) to leave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		app, err := cli.NewApp(sigCtx, cfg, logger)
		if err != nil {
			return err
		}
		defer app.Close(context.Background())

		out := cmd.OutOrStdout()
		opts := []runner.Option{
			runner.WithIO(cmd.InOrStdin(), out),
			runner.WithLogger(logger),
		}
		interactive := term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
		if interactive {
			tui.PrintBanner(out, revitgen.Version)
			opts = append(opts, runner.WithRenderer(tui.NewRenderer()))
		} else {
			opts = append(opts, runner.WithPrompt(""))
		}

		err = runner.New(app.Engine, opts...).Run(sigCtx)
		if interactive {
			cli.PrintSystemMessage(out, "Bye!")
		}
		return cli.HandleExecutionError(err)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
