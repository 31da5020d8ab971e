package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/facturaja/facturaja-bff/internal/billing"
	"github.com/facturaja/facturaja-bff/internal/domain"

	"github.com/spf13/cobra"
)

func newTotalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "totals",
		Short: "Print subtotal, tax and total for an invoice JSON file",
		Example: `  # Any JSON with an "items" array works, including a saved invoice
  facturajactl totals --file invoice.json

  # Read from stdin
  cat invoice.json | facturajactl totals --file -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			asJSON, _ := cmd.Flags().GetBool("json")

			in := cmd.InOrStdin()
			if path != "-" {
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("open invoice: %w", err)
				}
				defer f.Close()
				in = f
			}
			return runTotals(in, cmd.OutOrStdout(), asJSON)
		},
	}
	cmd.Flags().StringP("file", "f", "-", "Invoice JSON file, - for stdin")
	cmd.Flags().Bool("json", false, "Print the totals as JSON")
	return cmd
}

func runTotals(in io.Reader, out io.Writer, asJSON bool) error {
	var req domain.TotalsRequest
	if err := json.NewDecoder(in).Decode(&req); err != nil {
		return fmt.Errorf("decode invoice: %w", err)
	}

	t := billing.Compute(billing.Coerce(req.Items))
	totals := domain.Totals{
		Subtotal: billing.Round2(t.Subtotal),
		Tax:      billing.Round2(t.Tax),
		Total:    billing.Round2(t.Total),
	}

	if asJSON {
		return json.NewEncoder(out).Encode(totals)
	}
	_, err := fmt.Fprintf(out, "Linhas:    %d\nSubtotal:  %.2f\nImposto:   %.2f\nTotal:     %.2f\n",
		len(req.Items), totals.Subtotal, totals.Tax, totals.Total)
	return err
}
