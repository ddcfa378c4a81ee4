package drawing

import (
	"encoding/json"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexiusacademia/civcalc/internal/form"
)

func derive(t *testing.T, c form.Category, s form.State) Params {
	t.Helper()
	p, err := Derive(c, form.Normalize(s))
	require.NoError(t, err)
	return p
}

func TestDerive_Beam(t *testing.T) {
	p := derive(t, form.Beam, form.State{"b_mm": "250", "h_mm": "450,5"})

	assert.Equal(t, 250.0, p.WidthMM)
	assert.Equal(t, 450.5, p.DepthMM)
	assert.Equal(t, 4, p.Bars)
	assert.Nil(t, p.Strap)

	blank := derive(t, form.Beam, form.State{"b_mm": "", "h_mm": "x"})
	assert.Equal(t, DefaultBeamWidthMM, blank.WidthMM)
	assert.Equal(t, DefaultBeamDepthMM, blank.DepthMM)
}

func TestDerive_SlabDefaulting(t *testing.T) {
	p := derive(t, form.Slab, form.State{"span_m": "3", "thickness_mm": ""})

	assert.Equal(t, 3000.0, p.WidthMM)
	assert.Equal(t, DefaultSlabThicknessMM, p.DepthMM)
	assert.Equal(t, 6, p.Bars)

	noSpan := derive(t, form.Slab, form.State{})
	assert.Equal(t, DefaultSlabSpanM*1000, noSpan.WidthMM)
}

func TestDerive_Column(t *testing.T) {
	p := derive(t, form.Column, form.State{"b_mm": "400", "d_mm": "600"})

	assert.Equal(t, 400.0, p.WidthMM)
	assert.Equal(t, 600.0, p.DepthMM)
	assert.Equal(t, 8, p.Bars)
}

func TestDerive_Footing(t *testing.T) {
	p := derive(t, form.Footing, form.State{"col_b_mm": "350", "pad_depth_mm": ""})

	assert.Equal(t, 350.0, p.WidthMM)
	assert.Equal(t, DefaultPadDepthMM, p.DepthMM)
	assert.Equal(t, 8, p.Bars)
}

func TestDerive_CombinedSinglePad(t *testing.T) {
	s := form.Defaults(form.CombinedFooting)
	s.Set("single_mode", true)
	s.Set("assumed_side_m", "2,4")
	s.Set("pad_depth_mm", "600")

	p := derive(t, form.CombinedFooting, s)
	assert.Equal(t, 2400.0, p.WidthMM)
	assert.Equal(t, 600.0, p.DepthMM)
	assert.Equal(t, 8, p.Bars)
	assert.Nil(t, p.Extra)

	s.Set("assumed_side_m", "")
	s.Set("col1_b_mm", "450")
	p = derive(t, form.CombinedFooting, s)
	assert.Equal(t, 450.0, p.WidthMM)
}

func TestDerive_CombinedTwoPad(t *testing.T) {
	s := form.Defaults(form.CombinedFooting)
	s.Set("single_mode", false)
	s.Set("col1_b_mm", "")
	s.Set("col2_b_mm", "500")

	shape, err := ShapeFor(form.CombinedFooting, form.Normalize(s))
	require.NoError(t, err)
	assert.Equal(t, CombinedShape{Mode: TwoPad}, shape)

	p := derive(t, form.CombinedFooting, s)
	assert.Equal(t, DefaultColumnWidthMM, p.WidthMM)
	assert.Equal(t, 500.0, p.Extra["col2_b_mm"])
	assert.Equal(t, 300.0, p.Extra["col2_d_mm"])
}

func TestDerive_StrapOmittedWhenNotIncluded(t *testing.T) {
	for _, single := range []bool{true, false} {
		s := form.Defaults(form.CombinedFooting)
		s.Set("single_mode", single)
		s.Set("include_strap", false)
		s.Set("strap_width_mm", "350")
		s.Set("strap_thickness_mm", "500")
		s.Set("strap_length_m", "4")

		p := derive(t, form.CombinedFooting, s)
		assert.Nil(t, p.Strap)
		_, has := p.Payload()["strap"]
		assert.False(t, has)
	}
}

func TestDerive_StrapFallbacks(t *testing.T) {
	s := form.Defaults(form.CombinedFooting)
	s.Set("include_strap", true)
	s.Set("strap_width_mm", "350")
	s.Set("strap_thickness_mm", "")
	s.Set("strap_length_m", "")
	s.Set("spacing_m", "3,5")

	p := derive(t, form.CombinedFooting, s)
	require.NotNil(t, p.Strap)
	assert.Equal(t, Strap{WidthMM: 350, ThicknessMM: DefaultStrapThickMM, LengthM: 3.5}, *p.Strap)

	s.Set("strap_length_m", "4.2")
	p = derive(t, form.CombinedFooting, s)
	assert.Equal(t, 4.2, p.Strap.LengthM)

	s.Set("strap_length_m", "")
	s.Set("spacing_m", "")
	p = derive(t, form.CombinedFooting, s)
	assert.Equal(t, DefaultStrapLengthM, p.Strap.LengthM)
}

func TestDerive_NeverEmitsNaN(t *testing.T) {
	garbage := form.State{}
	for _, c := range form.Categories() {
		for _, f := range form.Fields(c) {
			if !f.IsToggle() {
				garbage[f.Key] = "n/a"
			}
		}
	}
	garbage["include_strap"] = true

	for _, c := range form.Categories() {
		p := derive(t, c, garbage)
		for k, v := range p.Payload() {
			if f, ok := v.(float64); ok {
				assert.False(t, math.IsNaN(f) || math.IsInf(f, 0), "%s.%s", c, k)
			}
		}
		assert.Greater(t, p.WidthMM, 0.0)
		assert.Greater(t, p.DepthMM, 0.0)
	}
}

func TestDerive_UnknownCategory(t *testing.T) {
	_, err := Derive(form.Category("truss"), form.Payload{})
	assert.Error(t, err)
}

func TestDerive_DoesNotMutateBase(t *testing.T) {
	base := form.Payload{"b_mm": 300.0}
	p, err := Derive(form.Beam, base)
	require.NoError(t, err)

	p.Base["b_mm"] = 1.0
	assert.Equal(t, 300.0, base["b_mm"])
}

func TestParamsPayload_Beam(t *testing.T) {
	p := derive(t, form.Beam, form.State{"b_mm": "250", "h_mm": "450", "cover_mm": ""})

	want := map[string]any{
		"b_mm":     250.0,
		"h_mm":     450.0,
		"cover_mm": nil,
		"width_mm": 250.0,
		"depth_mm": 450.0,
		"n_bars":   4,
	}
	if diff := cmp.Diff(want, p.Payload()); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestRequestJSON(t *testing.T) {
	s := form.Defaults(form.CombinedFooting)
	s.Set("include_strap", true)
	p := derive(t, form.CombinedFooting, s)

	raw, err := json.Marshal(NewRequest(form.CombinedFooting, p))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "combined", decoded["kind"])
	assert.Equal(t, true, decoded["write_reports"])

	params := decoded["params"].(map[string]any)
	assert.Equal(t, 300.0, params["width_mm"])
	assert.Equal(t, 500.0, params["depth_mm"])
	assert.Equal(t, 8.0, params["n_bars"])
	assert.Equal(t, 800.0, params["Pu_kN"])
	assert.Nil(t, params["P1_kN"])
	strap := params["strap"].(map[string]any)
	assert.Equal(t, 3.0, strap["length_m"])
}

func TestBarPositions(t *testing.T) {
	pts := BarPositions(Params{WidthMM: 300, DepthMM: 500, Bars: 4})
	require.Len(t, pts, 4)
	assert.Equal(t, 40.0, pts[0].X)
	assert.InDelta(t, 260.0, pts[3].X, 1e-9)
	assert.Equal(t, 40.0, pts[0].Y)

	assert.Nil(t, BarPositions(Params{WidthMM: 300, Bars: 0}))
	one := BarPositions(Params{WidthMM: 300, DepthMM: 300, Bars: 1})
	assert.Equal(t, 150.0, one[0].X)
}

func TestDrawASCIIPreview(t *testing.T) {
	p := Params{WidthMM: 300, DepthMM: 500, Bars: 4, Strap: &Strap{WidthMM: 300, ThicknessMM: 400, LengthM: 3}}
	out := DrawASCIIPreview(p, "combined footing")

	assert.Contains(t, out, "COMBINED FOOTING")
	assert.Contains(t, out, "h = 500 mm")
	assert.Contains(t, out, "b = 300 mm")
	assert.Contains(t, out, "Reinforcement (4 bars)")
	assert.Contains(t, out, "Strap 300 x 400 mm, L = 3.00 m")
	assert.Equal(t, 4, strings.Count(out, "●")-3)
}

func TestDrawASCIIPreview_ZeroDepth(t *testing.T) {
	p := Params{WidthMM: 300, DepthMM: 0, Bars: 8, Strap: &Strap{WidthMM: 300, ThicknessMM: 400, LengthM: 2}}
	out := DrawASCIIPreview(p, "combined footing")

	assert.Contains(t, out, "h = 0 mm")
	assert.Contains(t, out, "Strap 300 x 400 mm")
}

func TestExportPreview(t *testing.T) {
	dir := t.TempDir()
	p := Params{WidthMM: 300, DepthMM: 500, Bars: 4}

	out := filepath.Join(dir, "nested", "beam.svg")
	require.NoError(t, ExportPreview(p, "Beam", out))
	assert.FileExists(t, out)

	require.NoError(t, ExportPreview(p, "Beam", filepath.Join(dir, "beam")))
	assert.FileExists(t, filepath.Join(dir, "beam.png"))

	assert.Error(t, ExportPreview(Params{}, "empty", filepath.Join(dir, "x.png")))
}
