// Package catalog loads IV treatments and add-ons, validates them at the
// boundary and resolves builder actions against them.
package catalog

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/optimumcare/clinic-site/internal/ivbuilder"
	"golang.org/x/sync/errgroup"
)

// Loader fetches raw catalog rows. Treatments are expected most expensive
// first and add-ons cheapest first.
type Loader interface {
	ListTreatments(ctx context.Context) ([]ivbuilder.Treatment, error)
	ListAddons(ctx context.Context) ([]ivbuilder.Addon, error)
}

// Catalog is a validated, immutable set of treatments and add-ons.
type Catalog struct {
	Treatments []ivbuilder.Treatment `json:"treatments"`
	Addons     []ivbuilder.Addon     `json:"addons"`

	treatmentsByID map[string]int
	addonsByID     map[string]int
}

// RecordError reports a catalog row that failed validation.
type RecordError struct {
	Kind  string // "treatment" or "addon"
	ID    string
	Field string
	Rule  string
}

func (e *RecordError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid %s %q: %s", e.Kind, e.ID, e.Rule)
	}
	return fmt.Sprintf("invalid %s %q: %s failed %s", e.Kind, e.ID, e.Field, e.Rule)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidationMapRules(map[string]string{
		"ID":          "required,max=64",
		"Name":        "required",
		"BasePrice":   "gte=0",
		"DurationMin": "gte=0",
		"Benefits":    "dive,required",
	}, ivbuilder.Treatment{})
	v.RegisterStructValidationMapRules(map[string]string{
		"ID":       "required,max=64",
		"Name":     "required",
		"Price":    "gte=0",
		"Category": "required",
	}, ivbuilder.Addon{})
	return v
}

// Load fetches treatments and add-ons concurrently and validates every row.
func Load(ctx context.Context, loader Loader) (*Catalog, error) {
	var treatments []ivbuilder.Treatment
	var addons []ivbuilder.Addon

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := loader.ListTreatments(gCtx)
		if err != nil {
			return fmt.Errorf("failed to load treatments: %w", err)
		}
		treatments = rows
		return nil
	})
	g.Go(func() error {
		rows, err := loader.ListAddons(gCtx)
		if err != nil {
			return fmt.Errorf("failed to load add-ons: %w", err)
		}
		addons = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return New(treatments, addons)
}

// New validates the given rows and builds a Catalog.
func New(treatments []ivbuilder.Treatment, addons []ivbuilder.Addon) (*Catalog, error) {
	c := &Catalog{
		Treatments:     make([]ivbuilder.Treatment, 0, len(treatments)),
		Addons:         make([]ivbuilder.Addon, 0, len(addons)),
		treatmentsByID: make(map[string]int, len(treatments)),
		addonsByID:     make(map[string]int, len(addons)),
	}

	for _, t := range treatments {
		if err := checkRecord("treatment", t.ID, t); err != nil {
			return nil, err
		}
		if _, dup := c.treatmentsByID[t.ID]; dup {
			return nil, &RecordError{Kind: "treatment", ID: t.ID, Rule: "duplicate id"}
		}
		if t.Benefits == nil {
			t.Benefits = []string{}
		}
		c.treatmentsByID[t.ID] = len(c.Treatments)
		c.Treatments = append(c.Treatments, t)
	}

	for _, a := range addons {
		if err := checkRecord("addon", a.ID, a); err != nil {
			return nil, err
		}
		if _, dup := c.addonsByID[a.ID]; dup {
			return nil, &RecordError{Kind: "addon", ID: a.ID, Rule: "duplicate id"}
		}
		c.addonsByID[a.ID] = len(c.Addons)
		c.Addons = append(c.Addons, a)
	}

	return c, nil
}

func checkRecord(kind, id string, record any) error {
	err := validate.Struct(record)
	if err == nil {
		return nil
	}
	if ves, ok := err.(validator.ValidationErrors); ok && len(ves) > 0 {
		return &RecordError{Kind: kind, ID: id, Field: ves[0].Field(), Rule: ves[0].Tag()}
	}
	return fmt.Errorf("failed to validate %s %q: %w", kind, id, err)
}

// Treatment looks up a treatment by ID.
func (c *Catalog) Treatment(id string) (ivbuilder.Treatment, bool) {
	i, ok := c.treatmentsByID[id]
	if !ok {
		return ivbuilder.Treatment{}, false
	}
	return c.Treatments[i], true
}

// Addon looks up an add-on by ID.
func (c *Catalog) Addon(id string) (ivbuilder.Addon, bool) {
	i, ok := c.addonsByID[id]
	if !ok {
		return ivbuilder.Addon{}, false
	}
	return c.Addons[i], true
}
