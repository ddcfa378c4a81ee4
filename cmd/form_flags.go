package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/civcalc/internal/form"
)

// addFormFlags registers one flag per form field, named after the field.
// Numeric fields are taken as raw text so "12,5" and blanks reach the
// normalizer unchanged.
func addFormFlags(cmd *cobra.Command, c form.Category) {
	for _, f := range form.Fields(c) {
		usage := f.Label
		if f.Unit != "" {
			usage = fmt.Sprintf("%s (%s)", f.Label, f.Unit)
		}
		if def, ok := f.Default.(bool); ok {
			cmd.Flags().Bool(f.Key, def, usage)
			continue
		}
		def, _ := f.Default.(string)
		cmd.Flags().String(f.Key, def, usage)
	}
}

// stateFromFlags reads the form fields of c back from the flags.
func stateFromFlags(cmd *cobra.Command, c form.Category) (form.State, error) {
	s := form.Defaults(c)
	for _, f := range form.Fields(c) {
		if f.IsToggle() {
			b, err := cmd.Flags().GetBool(f.Key)
			if err != nil {
				return nil, err
			}
			s.Set(f.Key, b)
			continue
		}
		v, err := cmd.Flags().GetString(f.Key)
		if err != nil {
			return nil, err
		}
		s.Set(f.Key, v)
	}
	return s, nil
}

// categoryAliases are the extra command names accepted for a category.
func categoryAliases(c form.Category) []string {
	if c == form.CombinedFooting {
		return []string{"combined", "combined-footing"}
	}
	return nil
}

var categoryExamples = map[form.Category]string{
	form.Beam:            "--span_m 6 --b_mm 300 --h_mm 550 --dl_kN_per_m 18 --ll_kN_per_m 12",
	form.Slab:            "--span_m 3,5 --thickness_mm 150 --ll_kN_per_m2 2,4",
	form.Column:          "--Pu_kN 1500 --b_mm 400 --d_mm 400 --unsupported_length_m 3",
	form.Footing:         "--Pu_kN 900 --soil_allow_kN_per_m2 150 --pad_depth_mm 500",
	form.CombinedFooting: "--single_mode=false --P1_kN 700 --P2_kN 900 --spacing_m 4 --include_strap",
}
