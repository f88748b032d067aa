package catalog

import (
	"fmt"

	"github.com/optimumcare/clinic-site/internal/ivbuilder"
)

// Builder operations accepted by Replay.
const (
	OpSelectBase  = "select_base"
	OpToggleAddon = "toggle_addon"
	OpReset       = "reset"
)

// Action is one user interaction with the builder, identified by catalog ID.
type Action struct {
	Op string `json:"op" validate:"required,oneof=select_base toggle_addon reset"`
	ID string `json:"id,omitempty" validate:"required_unless=Op reset"`
}

// UnknownItemError is returned when an action or selection names an ID that
// is not in the catalog.
type UnknownItemError struct {
	Kind string
	ID   string
}

func (e *UnknownItemError) Error() string {
	return fmt.Sprintf("unknown %s: %s", e.Kind, e.ID)
}

// Replay applies actions in order to a fresh builder. IDs are resolved
// against the catalog before they reach the builder.
func (c *Catalog) Replay(actions []Action) (*ivbuilder.Builder, error) {
	b := ivbuilder.New()
	for i, act := range actions {
		switch act.Op {
		case OpSelectBase:
			t, ok := c.Treatment(act.ID)
			if !ok {
				return nil, &UnknownItemError{Kind: "treatment", ID: act.ID}
			}
			b.SelectBase(t)
		case OpToggleAddon:
			a, ok := c.Addon(act.ID)
			if !ok {
				return nil, &UnknownItemError{Kind: "addon", ID: act.ID}
			}
			b.ToggleAddon(a)
		case OpReset:
			b.Reset()
		default:
			return nil, fmt.Errorf("action %d: unsupported op %q", i, act.Op)
		}
	}
	return b, nil
}

// Price builds the selection for a booking: one treatment plus distinct add-ons.
// baseID may be empty, in which case the selection has no base.
func (c *Catalog) Price(baseID string, addonIDs []string) (ivbuilder.Selection, error) {
	b := ivbuilder.New()
	if baseID != "" {
		t, ok := c.Treatment(baseID)
		if !ok {
			return ivbuilder.Selection{}, &UnknownItemError{Kind: "treatment", ID: baseID}
		}
		b.SelectBase(t)
	}
	for _, id := range addonIDs {
		a, ok := c.Addon(id)
		if !ok {
			return ivbuilder.Selection{}, &UnknownItemError{Kind: "addon", ID: id}
		}
		if b.IsAddonSelected(id) {
			return ivbuilder.Selection{}, fmt.Errorf("add-on listed twice: %s", id)
		}
		b.ToggleAddon(a)
	}
	return b.Snapshot(), nil
}
