package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/revitgen"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of revitgen",
	// No config is needed to print the version.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "revitgen version %s\n", strings.TrimSpace(revitgen.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
