package form

// Field describes one input of a design form.
type Field struct {
	Key     string
	Label   string
	Unit    string
	Default any // string for numeric fields, bool for toggles
}

// IsToggle reports whether the field is a boolean switch.
func (f Field) IsToggle() bool {
	_, ok := f.Default.(bool)
	return ok
}

// Fields mirror the request models of the calculation service.
var formFields = map[Category][]Field{
	Beam: {
		{Key: "span_m", Label: "Span", Unit: "m", Default: "4"},
		{Key: "b_mm", Label: "Width", Unit: "mm", Default: "300"},
		{Key: "h_mm", Label: "Total depth", Unit: "mm", Default: "500"},
		{Key: "cover_mm", Label: "Cover", Unit: "mm", Default: "40"},
		{Key: "dl_kN_per_m", Label: "Dead load", Unit: "kN/m", Default: "10"},
		{Key: "ll_kN_per_m", Label: "Live load", Unit: "kN/m", Default: "5"},
		{Key: "fc_MPa", Label: "f'c", Unit: "MPa", Default: "28"},
		{Key: "fy_MPa", Label: "fy", Unit: "MPa", Default: "420"},
	},
	Slab: {
		{Key: "span_m", Label: "Span", Unit: "m", Default: "3"},
		{Key: "thickness_mm", Label: "Thickness", Unit: "mm", Default: "150"},
		{Key: "dl_kN_per_m2", Label: "Dead load", Unit: "kN/m²", Default: "1.5"},
		{Key: "ll_kN_per_m2", Label: "Live load", Unit: "kN/m²", Default: "2"},
		{Key: "fc_MPa", Label: "f'c", Unit: "MPa", Default: "25"},
		{Key: "fy_MPa", Label: "fy", Unit: "MPa", Default: "420"},
		{Key: "cover_mm", Label: "Cover", Unit: "mm", Default: "20"},
		{Key: "bar_dia_mm", Label: "Bar diameter", Unit: "mm", Default: "10"},
	},
	Column: {
		{Key: "Pu_kN", Label: "Factored axial load", Unit: "kN", Default: "1000"},
		{Key: "b_mm", Label: "Width", Unit: "mm", Default: "300"},
		{Key: "d_mm", Label: "Depth", Unit: "mm", Default: "300"},
		{Key: "cover_mm", Label: "Cover", Unit: "mm", Default: "40"},
		{Key: "fc_MPa", Label: "f'c", Unit: "MPa", Default: "30"},
		{Key: "fy_MPa", Label: "fy", Unit: "MPa", Default: "420"},
		{Key: "unsupported_length_m", Label: "Unsupported length", Unit: "m", Default: "3"},
	},
	Footing: {
		{Key: "Pu_kN", Label: "Factored axial load", Unit: "kN", Default: "800"},
		{Key: "col_b_mm", Label: "Column width", Unit: "mm", Default: "300"},
		{Key: "col_d_mm", Label: "Column depth", Unit: "mm", Default: "300"},
		{Key: "soil_allow_kN_per_m2", Label: "Allowable soil pressure", Unit: "kN/m²", Default: "150"},
		{Key: "pad_depth_mm", Label: "Pad depth", Unit: "mm", Default: "500"},
		{Key: "fc_MPa", Label: "f'c", Unit: "MPa", Default: "25"},
		{Key: "fy_MPa", Label: "fy", Unit: "MPa", Default: "420"},
		{Key: "eccentricity_x_m", Label: "Eccentricity x", Unit: "m", Default: "0"},
		{Key: "eccentricity_y_m", Label: "Eccentricity y", Unit: "m", Default: "0"},
		{Key: "assumed_side_m", Label: "Assumed pad side", Unit: "m", Default: ""},
	},
	CombinedFooting: {
		{Key: "single_mode", Label: "Single pad mode", Default: true},
		{Key: "Pu_kN", Label: "Factored axial load (single pad)", Unit: "kN", Default: "800"},
		{Key: "P1_kN", Label: "Column 1 load", Unit: "kN", Default: ""},
		{Key: "P2_kN", Label: "Column 2 load", Unit: "kN", Default: ""},
		{Key: "col1_b_mm", Label: "Column 1 width", Unit: "mm", Default: "300"},
		{Key: "col1_d_mm", Label: "Column 1 depth", Unit: "mm", Default: "300"},
		{Key: "col2_b_mm", Label: "Column 2 width", Unit: "mm", Default: "300"},
		{Key: "col2_d_mm", Label: "Column 2 depth", Unit: "mm", Default: "300"},
		{Key: "spacing_m", Label: "Column spacing", Unit: "m", Default: "3"},
		{Key: "soil_allow_kN_per_m2", Label: "Allowable soil pressure", Unit: "kN/m²", Default: "150"},
		{Key: "pad_depth_mm", Label: "Pad depth", Unit: "mm", Default: "500"},
		{Key: "fc_MPa", Label: "f'c", Unit: "MPa", Default: "25"},
		{Key: "fy_MPa", Label: "fy", Unit: "MPa", Default: "420"},
		{Key: "eccentricity_x_m", Label: "Eccentricity x", Unit: "m", Default: "0"},
		{Key: "eccentricity_y_m", Label: "Eccentricity y", Unit: "m", Default: "0"},
		{Key: "include_strap", Label: "Include strap beam", Default: false},
		{Key: "strap_width_mm", Label: "Strap width", Unit: "mm", Default: ""},
		{Key: "strap_thickness_mm", Label: "Strap thickness", Unit: "mm", Default: ""},
		{Key: "strap_length_m", Label: "Strap length", Unit: "m", Default: ""},
		{Key: "assumed_side_m", Label: "Assumed pad side", Unit: "m", Default: ""},
	},
}

// Fields lists the inputs of a category in display order.
func Fields(c Category) []Field {
	return append([]Field(nil), formFields[c]...)
}

// Defaults returns a fresh form pre-filled with the category defaults.
func Defaults(c Category) State {
	s := make(State, len(formFields[c]))
	for _, f := range formFields[c] {
		s[f.Key] = f.Default
	}
	return s
}
