package cmd

import (
	"github.com/spf13/cobra"

	"github.com/theirongolddev/ledgercast/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE: func(_ *cobra.Command, _ []string) error {
		return tui.RunSetup()
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
