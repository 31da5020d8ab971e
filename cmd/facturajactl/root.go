package main

import (
	"github.com/spf13/cobra"
)

var version = "0.1.0"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "facturajactl",
		Short: "FacturaJá companion CLI",
		Long: `facturajactl talks to the FacturaJá BFF from the command line.

It previews invoice totals with the same rounding the BFF applies and
downloads any list screen as CSV using the filters the screen accepts.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newTotalsCmd(), newExportCmd())
	return root
}
