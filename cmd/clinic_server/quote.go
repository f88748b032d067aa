package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/optimumcare/clinic-site/internal/ivbuilder"
	"github.com/optimumcare/clinic-site/internal/observability"
	"github.com/spf13/cobra"
)

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Price an IV drip from a catalog file",
	Long: `Builds an IV drip selection offline from a catalog seed file, e.g. to
check prices before seeding:

  clinic_server quote --catalog data/iv_catalog.json --base myers-cocktail --addon b12 --addon zinc`,
	RunE: runQuote,
}

var (
	quoteCatalogFile string
	quoteBase        string
	quoteAddons      []string
	quoteJSON        bool
)

func init() {
	quoteCmd.Flags().StringVar(&quoteCatalogFile, "catalog", "data/iv_catalog.json", "Path to catalog JSON file")
	quoteCmd.Flags().StringVar(&quoteBase, "base", "", "Base treatment ID")
	quoteCmd.Flags().StringArrayVar(&quoteAddons, "addon", nil, "Add-on ID (repeatable)")
	quoteCmd.Flags().BoolVar(&quoteJSON, "json", false, "Print the selection as JSON")
	rootCmd.AddCommand(quoteCmd)
}

func buildQuote(catalogPath, baseID string, addonIDs []string) (ivbuilder.Selection, error) {
	cat, err := loadCatalogFile(catalogPath, "")
	if err != nil {
		return ivbuilder.Selection{}, err
	}
	return cat.Price(baseID, addonIDs)
}

func runQuote(_ *cobra.Command, _ []string) error {
	sel, err := buildQuote(quoteCatalogFile, quoteBase, quoteAddons)
	if err != nil {
		return err
	}

	if !quoteJSON {
		observability.NewPrinter(os.Stdout).PrintSelection(sel)
		return nil
	}

	jsonBytes, err := json.MarshalIndent(sel, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal selection: %w", err)
	}
	_, _ = fmt.Fprintln(os.Stdout, string(jsonBytes))
	return nil
}
