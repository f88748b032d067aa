package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/optimumcare/clinic-site/internal/db"
	"github.com/optimumcare/clinic-site/internal/observability"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var seedCatalogCmd = &cobra.Command{
	Use:   "seed-catalog",
	Short: "Load IV treatments and add-ons from a JSON file",
	Long:  "Validates an IV catalog seed file and upserts its treatments and add-ons by ID.",
	RunE:  runSeedCatalog,
}

var (
	seedInputFile   string
	seedDatabaseURL string
	seedDryRun      bool
	seedSchemaFile  string
)

func init() {
	seedCatalogCmd.Flags().StringVarP(&seedInputFile, "in", "i", "", "Path to catalog JSON file (required)")
	seedCatalogCmd.Flags().StringVar(&seedDatabaseURL, "database-url", "", "PostgreSQL connection URL (default $DATABASE_URL)")
	seedCatalogCmd.Flags().StringVar(&seedSchemaFile, "schema", "", "JSON Schema file to validate against instead of the built-in catalog schema")
	seedCatalogCmd.Flags().BoolVar(&seedDryRun, "dry-run", false, "Validate and print the catalog without writing it")

	if err := seedCatalogCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(seedCatalogCmd)
}

func runSeedCatalog(_ *cobra.Command, _ []string) error {
	cat, err := loadCatalogFile(seedInputFile, seedSchemaFile)
	if err != nil {
		return err
	}

	observability.NewPrinter(os.Stdout).PrintCatalog(cat)
	if seedDryRun {
		return nil
	}

	databaseURL, err := resolveDatabaseURL(seedDatabaseURL)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	if err := database.UpsertCatalog(ctx, cat.Treatments, cat.Addons); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	logger.Info("catalog seeded",
		zap.Int("treatments", len(cat.Treatments)),
		zap.Int("addons", len(cat.Addons)),
	)
	return nil
}
