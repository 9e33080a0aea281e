package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aretw0/revitgen/internal/cli"
	"github.com/aretw0/revitgen/internal/scan"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Report which projects in the archive have current Revit models",
	Long: `Walks <base-dir>/<year>/<project> for every year in [--from, --to] and lists the .rvt
files in each project's 01_CDS/01_CURRENT/01_REVIT folder. Projects without any get a
tree of their 01_CDS/02_ARCHIVE folder instead. The report is printed and saved.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sc := cfg.Scan
		if sc.BaseDir == "" {
			return fmt.Errorf("--base-dir (scan.base_dir) is required")
		}

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		var report bytes.Buffer
		out := cmd.OutOrStdout()
		totals, err := scan.Run(sigCtx, scan.Options{
			BaseDir:  sc.BaseDir,
			FromYear: sc.FromYear,
			ToYear:   sc.ToYear,
		}, io.MultiWriter(out, &report))
		if err != nil {
			return err
		}
		logger.Debug("Scan finished", "projects", totals.ProjectsChecked, "rvt_files", totals.RVTFiles)

		if err := os.WriteFile(sc.ReportFile, report.Bytes(), 0644); err != nil {
			return fmt.Errorf("failed to save report: %w", err)
		}
		abs, err := filepath.Abs(sc.ReportFile)
		if err != nil {
			abs = sc.ReportFile
		}
		fmt.Fprintf(out, "\nReport saved to %s\n", abs)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().String("base-dir", "", "Archive root containing one folder per year")
	scanCmd.Flags().Int("from", 2022, "First year to scan")
	scanCmd.Flags().Int("to", 2025, "Last year to scan")
	scanCmd.Flags().String("report", "revit_scan_report.txt", "File the report is saved to")
}
