package drawing

import (
	"encoding/json"

	"github.com/alexiusacademia/civcalc/internal/form"
)

// Strap is the optional tie beam between combined-footing pads.
type Strap struct {
	WidthMM     float64 `json:"width_mm"`
	ThicknessMM float64 `json:"thickness_mm"`
	LengthM     float64 `json:"length_m"`
}

// Params are the drawing parameters for one design: the normalized form
// with the derived geometry layered on top.
type Params struct {
	Base    form.Payload
	WidthMM float64
	DepthMM float64
	Bars    int
	Strap   *Strap
	Extra   map[string]float64
}

// Payload flattens the parameters into the map sent to the service. Derived
// keys replace same-named form fields.
func (p Params) Payload() map[string]any {
	out := make(map[string]any, len(p.Base)+len(p.Extra)+4)
	for k, v := range p.Base {
		out[k] = v
	}
	for k, v := range p.Extra {
		out[k] = v
	}
	out["width_mm"] = p.WidthMM
	out["depth_mm"] = p.DepthMM
	out["n_bars"] = p.Bars
	if p.Strap != nil {
		out["strap"] = map[string]any{
			"width_mm":     p.Strap.WidthMM,
			"thickness_mm": p.Strap.ThicknessMM,
			"length_m":     p.Strap.LengthM,
		}
	}
	return out
}

// MarshalJSON encodes the flattened payload.
func (p Params) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Payload())
}

// Request is the body of a drawing-generation call.
type Request struct {
	Kind         string `json:"kind"`
	Params       Params `json:"params"`
	WriteReports bool   `json:"write_reports"`
}

// NewRequest wraps derived parameters for the active category.
func NewRequest(c form.Category, p Params) Request {
	return Request{Kind: c.DrawingKind(), Params: p, WriteReports: true}
}
