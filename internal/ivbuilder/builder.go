// Package ivbuilder holds the IV drip builder: one base treatment, any number of
// add-on boosters, and the price derived from them.
package ivbuilder

// Treatment is a base IV treatment from the catalog.
type Treatment struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	BasePrice   float64  `json:"base_price"`
	DurationMin int      `json:"duration_min"`
	Benefits    []string `json:"benefits"`
}

// Addon is an optional booster that can be combined with a treatment.
type Addon struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}

// Selection is the snapshot handed to the booking flow.
// Base is nil when no treatment has been chosen.
type Selection struct {
	Base   *Treatment `json:"base"`
	Addons []Addon    `json:"addons"`
	Total  float64    `json:"total"`
}

// Builder holds the current choice of a treatment and add-ons.
// The zero value is an empty builder. A Builder is not safe for concurrent use;
// each request or session owns its own.
type Builder struct {
	base   *Treatment
	addons []Addon
}

// New returns an empty builder.
func New() *Builder {
	return &Builder{}
}

// SelectBase replaces the selected treatment. Add-ons are kept.
func (b *Builder) SelectBase(t Treatment) {
	b.base = &t
}

// ToggleAddon removes the add-on if one with the same ID is selected,
// otherwise appends it.
func (b *Builder) ToggleAddon(a Addon) {
	if i := b.indexOf(a.ID); i >= 0 {
		next := make([]Addon, 0, len(b.addons)-1)
		next = append(next, b.addons[:i]...)
		b.addons = append(next, b.addons[i+1:]...)
		return
	}
	b.addons = append(b.addons, a)
}

// IsAddonSelected reports whether an add-on with the given ID is selected.
func (b *Builder) IsAddonSelected(id string) bool {
	return b.indexOf(id) >= 0
}

// Reset clears the treatment and all add-ons.
func (b *Builder) Reset() {
	*b = Builder{}
}

// Base returns the selected treatment, if any.
func (b *Builder) Base() (Treatment, bool) {
	if b.base == nil {
		return Treatment{}, false
	}
	return *b.base, true
}

// Addons returns the selected add-ons in the order they were added.
func (b *Builder) Addons() []Addon {
	out := make([]Addon, len(b.addons))
	copy(out, b.addons)
	return out
}

// TotalPrice is the base price (0 without a base) plus every selected add-on.
// It is recomputed from the current selection on each call.
func (b *Builder) TotalPrice() float64 {
	total := 0.0
	if b.base != nil {
		total = b.base.BasePrice
	}
	for _, a := range b.addons {
		total += a.Price
	}
	return total
}

// Snapshot copies the current selection together with its total.
func (b *Builder) Snapshot() Selection {
	sel := Selection{
		Addons: b.Addons(),
		Total:  b.TotalPrice(),
	}
	if t, ok := b.Base(); ok {
		sel.Base = &t
	}
	return sel
}

func (b *Builder) indexOf(id string) int {
	for i, a := range b.addons {
		if a.ID == id {
			return i
		}
	}
	return -1
}
