package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/aretw0/revitgen/internal/cli"
	"github.com/spf13/cobra"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show recent queries from the query log, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		if limit < 0 {
			return fmt.Errorf("--limit must not be negative")
		}

		app, err := cli.NewApp(cmd.Context(), cfg, logger, cli.WithoutModel())
		if err != nil {
			return err
		}
		defer app.Close(context.Background())

		entries, err := app.Engine.Logs(cmd.Context(), limit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "    ")
			return enc.Encode(entries)
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TIME\tMODEL\tVALID\tQUERY")
		for _, e := range entries {
			valid := fmt.Sprint(e.Valid)
			if e.Error != "" {
				valid = "error"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Timestamp.Local().Format(time.DateTime), e.Model, valid, oneLine(e.Query, 60))
		}
		return tw.Flush()
	},
}

func oneLine(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s
}

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.Flags().IntP("limit", "n", 20, "Number of entries to show")
	logsCmd.Flags().Bool("json", false, "Print entries as JSON")
}
