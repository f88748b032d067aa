package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/optimumcare/clinic-site/internal/catalog"
	"github.com/optimumcare/clinic-site/internal/ivbuilder"
	"github.com/optimumcare/clinic-site/internal/schemas"
)

type catalogFile struct {
	Treatments []ivbuilder.Treatment `json:"treatments"`
	Addons     []ivbuilder.Addon     `json:"addons"`
}

// loadCatalogFile checks a seed file against the catalog schema and builds
// a validated catalog from it. A non-empty schemaPath replaces the embedded schema.
func loadCatalogFile(path, schemaPath string) (*catalog.Catalog, error) {
	validate := func() error { return schemas.ValidateCatalogFile(path) }
	if schemaPath != "" {
		validate = func() error { return schemas.ValidateJSON(schemaPath, path) }
	}
	if err := validate(); err != nil {
		return nil, fmt.Errorf("failed to validate catalog file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var f catalogFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	cat, err := catalog.New(f.Treatments, f.Addons)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return cat, nil
}
