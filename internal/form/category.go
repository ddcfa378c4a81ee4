package form

import (
	"fmt"
	"strings"
)

// Category identifies one of the design types the calculation service accepts.
type Category string

const (
	Beam            Category = "beam"
	Slab            Category = "slab"
	Column          Category = "column"
	Footing         Category = "footing"
	CombinedFooting Category = "combined_footing"
)

// Categories returns every design category in menu order.
func Categories() []Category {
	return []Category{Beam, Slab, Column, Footing, CombinedFooting}
}

// ParseCategory accepts the service names plus a few spellings used on the
// command line ("combined-footing", "combined").
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "beam":
		return Beam, nil
	case "slab":
		return Slab, nil
	case "column":
		return Column, nil
	case "footing":
		return Footing, nil
	case "combined_footing", "combined-footing", "combined":
		return CombinedFooting, nil
	}
	return "", fmt.Errorf("unknown design category %q", s)
}

// Endpoint is the service path that designs this category.
func (c Category) Endpoint() string {
	return "/api/design/" + string(c)
}

// WritesReports reports whether the design request carries write_reports: true.
// Beam and column reports are always written by the service.
func (c Category) WritesReports() bool {
	switch c {
	case Slab, Footing, CombinedFooting:
		return true
	}
	return false
}

// DrawingKind is the kind name the drawing generator expects.
func (c Category) DrawingKind() string {
	if c == CombinedFooting {
		return "combined"
	}
	return string(c)
}

// Title is a human label for report headers.
func (c Category) Title() string {
	switch c {
	case Beam:
		return "BEAM"
	case Slab:
		return "ONE-WAY SLAB"
	case Column:
		return "SHORT COLUMN"
	case Footing:
		return "ISOLATED FOOTING"
	case CombinedFooting:
		return "COMBINED / STRAP FOOTING"
	}
	return strings.ToUpper(string(c))
}
