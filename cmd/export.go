package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/ledgercast/internal/export"
)

var (
	flagExportFormat string
	flagExportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the report as JSON, CSV or PDF",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportFormat, "format", "f", "json", "Output format: json, csv or pdf")
	exportCmd.Flags().StringVarP(&flagExportOut, "out", "o", ".", "Output directory")
	rootCmd.AddCommand(exportCmd)
}

func runExport(_ *cobra.Command, _ []string) error {
	s, report, err := runReport()
	if err != nil {
		return err
	}
	if noData(s) {
		return nil
	}

	path, err := export.Write(flagExportFormat, report, flagExportOut)
	if err != nil {
		return err
	}
	fmt.Printf("  Wrote %s\n", path)
	return nil
}
