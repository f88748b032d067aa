// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/optimumcare/clinic-site/internal/catalog"
	"github.com/optimumcare/clinic-site/internal/ivbuilder"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// PrintSelection outputs an IV drip quote: the base, each add-on and the total.
func (p *Printer) PrintSelection(sel ivbuilder.Selection) {
	var sb strings.Builder

	if sel.Base != nil {
		sb.WriteString(fmt.Sprintf("Base:   %-30s %10s\n", sel.Base.Name, money(sel.Base.BasePrice)))
		if sel.Base.DurationMin > 0 {
			sb.WriteString(fmt.Sprintf("        %d min\n", sel.Base.DurationMin))
		}
	} else {
		sb.WriteString("Base:   (none selected)\n")
	}

	if len(sel.Addons) > 0 {
		sb.WriteString("\nAdd-ons:\n")
		for _, a := range sel.Addons {
			sb.WriteString(fmt.Sprintf("  + %-34s %10s\n", a.Name, money(a.Price)))
		}
	}

	sb.WriteString(fmt.Sprintf("\nTotal:  %41s", money(sel.Total)))
	p.printBox("IV DRIP QUOTE", sb.String())
}

// PrintCatalog outputs a summary of the treatments and add-ons on offer.
func (p *Printer) PrintCatalog(cat *catalog.Catalog) {
	if cat == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Treatments: %d    Add-ons: %d\n", len(cat.Treatments), len(cat.Addons)))

	if len(cat.Treatments) > 0 {
		sb.WriteString("\nTreatments:\n")
		count := min(len(cat.Treatments), maxItemsToShow)
		for i := 0; i < count; i++ {
			t := cat.Treatments[i]
			sb.WriteString(fmt.Sprintf("  • %-24s %-8s %10s\n", t.Name, "["+t.ID+"]", money(t.BasePrice)))
		}
		if len(cat.Treatments) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(cat.Treatments)-maxItemsToShow))
		}
	}

	if len(cat.Addons) > 0 {
		sb.WriteString("\nAdd-ons:\n")
		count := min(len(cat.Addons), maxItemsToShow)
		for i := 0; i < count; i++ {
			a := cat.Addons[i]
			sb.WriteString(fmt.Sprintf("  • %-24s %-8s %10s\n", a.Name, "["+a.ID+"]", money(a.Price)))
		}
		if len(cat.Addons) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(cat.Addons)-maxItemsToShow))
		}
	}

	p.printBox("IV CATALOG", strings.TrimSuffix(sb.String(), "\n"))
}
