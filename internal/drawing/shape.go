// Package drawing derives the geometric parameters the drawing service needs
// from a design form, and renders quick local previews of them.
package drawing

import (
	"fmt"

	"github.com/alexiusacademia/civcalc/internal/form"
)

// Fallbacks used when a source field is blank. The drawing service needs
// concrete geometry, so a derived value is never missing.
const (
	DefaultBeamWidthMM     = 300.0
	DefaultBeamDepthMM     = 500.0
	DefaultSlabSpanM       = 3.0
	DefaultSlabThicknessMM = 150.0
	DefaultColumnWidthMM   = 300.0
	DefaultColumnDepthMM   = 300.0
	DefaultPadDepthMM      = 500.0
	DefaultStrapWidthMM    = 300.0
	DefaultStrapThickMM    = 400.0
	DefaultStrapLengthM    = 2.0
)

// Bar counts per category.
const (
	BeamBars    = 4
	SlabBars    = 6
	ColumnBars  = 8
	FootingBars = 8
)

// Shape is one variant of the per-category derivation rules.
type Shape interface {
	Category() form.Category
	derive(p form.Payload) Params
}

// PadMode selects between the two combined-footing layouts.
type PadMode int

const (
	// SinglePad is one pad sized for the combined load.
	SinglePad PadMode = iota
	// TwoPad is a pad per column, optionally tied by a strap.
	TwoPad
)

func (m PadMode) String() string {
	if m == TwoPad {
		return "two-pad"
	}
	return "single-pad"
}

type (
	// BeamShape draws the beam cross-section.
	BeamShape struct{}
	// SlabShape draws a one-metre strip across the span.
	SlabShape struct{}
	// ColumnShape draws the column cross-section.
	ColumnShape struct{}
	// FootingShape draws the pad under a single column.
	FootingShape struct{}
	// CombinedShape draws a combined footing in the given pad layout.
	CombinedShape struct{ Mode PadMode }
)

func (BeamShape) Category() form.Category     { return form.Beam }
func (SlabShape) Category() form.Category     { return form.Slab }
func (ColumnShape) Category() form.Category   { return form.Column }
func (FootingShape) Category() form.Category  { return form.Footing }
func (CombinedShape) Category() form.Category { return form.CombinedFooting }

func (BeamShape) derive(p form.Payload) Params {
	return Params{
		Base:    p,
		WidthMM: p.NumberOr("b_mm", DefaultBeamWidthMM),
		DepthMM: p.NumberOr("h_mm", DefaultBeamDepthMM),
		Bars:    BeamBars,
	}
}

func (SlabShape) derive(p form.Payload) Params {
	return Params{
		Base:    p,
		WidthMM: p.NumberOr("span_m", DefaultSlabSpanM) * 1000,
		DepthMM: p.NumberOr("thickness_mm", DefaultSlabThicknessMM),
		Bars:    SlabBars,
	}
}

func (ColumnShape) derive(p form.Payload) Params {
	return Params{
		Base:    p,
		WidthMM: p.NumberOr("b_mm", DefaultColumnWidthMM),
		DepthMM: p.NumberOr("d_mm", DefaultColumnDepthMM),
		Bars:    ColumnBars,
	}
}

func (FootingShape) derive(p form.Payload) Params {
	return Params{
		Base:    p,
		WidthMM: p.NumberOr("col_b_mm", DefaultColumnWidthMM),
		DepthMM: p.NumberOr("pad_depth_mm", DefaultPadDepthMM),
		Bars:    FootingBars,
	}
}

func (s CombinedShape) derive(p form.Payload) Params {
	out := Params{
		Base:    p,
		WidthMM: padSideMM(p),
		DepthMM: p.NumberOr("pad_depth_mm", DefaultPadDepthMM),
		Bars:    FootingBars,
		Strap:   strapFor(p),
	}
	if s.Mode == TwoPad {
		out.Extra = map[string]float64{
			"col2_b_mm": p.NumberOr("col2_b_mm", DefaultColumnWidthMM),
			"col2_d_mm": p.NumberOr("col2_d_mm", DefaultColumnDepthMM),
		}
	}
	return out
}

// padSideMM is the assumed pad side in millimetres, or the first column's width.
func padSideMM(p form.Payload) float64 {
	if side, ok := p.Number("assumed_side_m"); ok && side > 0 {
		return side * 1000
	}
	return p.NumberOr("col1_b_mm", DefaultColumnWidthMM)
}

func strapFor(p form.Payload) *Strap {
	if !p.Flag("include_strap") {
		return nil
	}
	length, ok := p.Number("strap_length_m")
	if !ok || length <= 0 {
		length = p.NumberOr("spacing_m", DefaultStrapLengthM)
	}
	return &Strap{
		WidthMM:     p.NumberOr("strap_width_mm", DefaultStrapWidthMM),
		ThicknessMM: p.NumberOr("strap_thickness_mm", DefaultStrapThickMM),
		LengthM:     length,
	}
}

// ShapeFor picks the derivation variant for a category. Combined footings
// read the single_mode flag to choose the pad layout.
func ShapeFor(c form.Category, p form.Payload) (Shape, error) {
	switch c {
	case form.Beam:
		return BeamShape{}, nil
	case form.Slab:
		return SlabShape{}, nil
	case form.Column:
		return ColumnShape{}, nil
	case form.Footing:
		return FootingShape{}, nil
	case form.CombinedFooting:
		if p.Flag("single_mode") {
			return CombinedShape{Mode: SinglePad}, nil
		}
		return CombinedShape{Mode: TwoPad}, nil
	}
	return nil, fmt.Errorf("no drawing rules for category %q", c)
}

// Derive builds drawing parameters for a normalized form.
func Derive(c form.Category, p form.Payload) (Params, error) {
	s, err := ShapeFor(c, p)
	if err != nil {
		return Params{}, err
	}
	return s.derive(p.Clone()), nil
}
