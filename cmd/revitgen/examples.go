package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/aretw0/revitgen/internal/cli"
	"github.com/spf13/cobra"
)

var examplesCmd = &cobra.Command{
	Use:   "examples [name]",
	Short: "List the reference scripts, or print one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.NewApp(cmd.Context(), cfg, logger, cli.WithoutModel())
		if err != nil {
			return err
		}
		defer app.Close(context.Background())

		examples, err := app.Engine.Examples(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(args) == 1 {
			for _, ex := range examples {
				if ex.Name == args[0] {
					fmt.Fprintln(out, strings.TrimRight(ex.Code, "\n"))
					return nil
				}
			}
			return fmt.Errorf("example %q not found", args[0])
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tTITLE\tTAGS")
		for _, ex := range examples {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", ex.Name, ex.Title, strings.Join(ex.Tags, ","))
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(examplesCmd)
}
