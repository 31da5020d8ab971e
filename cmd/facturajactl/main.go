// Command facturajactl is a small companion CLI for the FacturaJá BFF: it
// previews invoice totals offline and downloads list exports as CSV.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
