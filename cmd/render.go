package cmd

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/alexiusacademia/civcalc/internal/form"
	"github.com/alexiusacademia/civcalc/internal/service"
	"github.com/alexiusacademia/civcalc/internal/session"
	"github.com/alexiusacademia/civcalc/internal/tree"
)

const (
	doubleRule = "═══════════════════════════════════════════════════════════════"
	singleRule = "───────────────────────────────────────────────────────────────"
)

// resultLine shows one concept of a result tree, looked up through the
// result aliases.
type resultLine struct {
	label   string
	concept string
	unit    string
}

type resultBlock struct {
	title string
	lines []resultLine
}

var resultLayouts = map[form.Category][]resultBlock{
	form.Beam: {
		{"FLEXURE", []resultLine{
			{"Factored moment (Mu)", "moment", "kN-m"},
			{"Effective depth (d)", "effective_depth", "mm"},
			{"Required As", "as_required", "mm²"},
			{"Provided As", "as_provided", "mm²"},
			{"Number of bars", "bar_count", ""},
			{"Bar diameter", "bar_diameter", "mm"},
			{"Utilization", "utilization", "%"},
		}},
		{"SHEAR", []resultLine{
			{"Factored shear (Vu)", "shear_demand", "kN"},
			{"Concrete shear (Vc)", "shear_concrete", "kN"},
			{"Shear capacity (φVc)", "shear_capacity", "kN"},
			{"Stirrups required", "shear_reinforcement", ""},
			{"Stirrup spacing", "stirrup_spacing", "mm"},
		}},
	},
	form.Slab: {
		{"FLEXURE (PER METER STRIP)", []resultLine{
			{"Factored moment (Mu)", "moment", "kN-m/m"},
			{"Required As", "as_required", "mm²/m"},
			{"Bar diameter", "bar_diameter", "mm"},
			{"Bar spacing", "bar_spacing", "mm"},
		}},
	},
	form.Column: {
		{"AXIAL CAPACITY", []resultLine{
			{"Gross area (Ag)", "gross_area", "mm²"},
			{"Required As", "as_required", "mm²"},
			{"Provided As", "as_provided", "mm²"},
			{"Number of bars", "bar_count", ""},
			{"Bar diameter", "bar_diameter", "mm"},
			{"Axial capacity (φPn)", "axial_capacity", "kN"},
			{"Utilization", "utilization", "%"},
			{"Short column", "short_column", ""},
		}},
	},
	form.Footing: {
		{"FOOTING SIZE", []resultLine{
			{"Required area", "required_area", "m²"},
			{"Pad side", "pad_side", "m"},
		}},
		{"REINFORCEMENT", []resultLine{
			{"Required As", "as_required", "mm²"},
			{"Bar diameter", "bar_diameter", "mm"},
			{"Bar spacing", "bar_spacing", "mm"},
			{"Total bars", "bar_count", ""},
		}},
		{"PUNCHING SHEAR", []resultLine{
			{"Punching safe", "punching_safe", ""},
			{"Utilization", "utilization", "%"},
		}},
	},
	form.CombinedFooting: {
		{"COMBINED FOOTING", []resultLine{
			{"Mode", "mode", ""},
			{"Total load", "total_load", "kN"},
			{"Required area", "required_area", "m²"},
			{"Pad side", "pad_side", "m"},
			{"Total bars", "bar_count", ""},
		}},
	},
}

// resultConcepts lists the concepts shown for a category, in layout order.
func resultConcepts(c form.Category) []resultLine {
	var lines []resultLine
	for _, b := range resultLayouts[c] {
		lines = append(lines, b.lines...)
	}
	return lines
}

func printBanner(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, doubleRule)
	fmt.Fprintf(w, "     %s\n", title)
	fmt.Fprintln(w, doubleRule)
	fmt.Fprintln(w)
}

func printSection(w io.Writer, title string) {
	fmt.Fprintf(w, "%s:\n", title)
	fmt.Fprintln(w, singleRule)
}

// renderResult prints the known concepts of a result tree. Concepts the
// service did not return are left out.
func renderResult(w io.Writer, c form.Category, v tree.Value, aliases tree.Aliases) {
	printBanner(w, c.Title()+" DESIGN RESULT")

	shown := 0
	for _, b := range resultLayouts[c] {
		var rows [][2]string
		for _, l := range b.lines {
			found := aliases.Lookup(v, l.concept)
			if found.IsNull() {
				continue
			}
			rows = append(rows, [2]string{l.label, formatValue(found, l.unit)})
		}
		if len(rows) == 0 {
			continue
		}
		printSection(w, b.title)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, r := range rows {
			fmt.Fprintf(tw, "  %s:\t%s\n", r[0], r[1])
		}
		tw.Flush()
		fmt.Fprintln(w)
		shown += len(rows)
	}

	if shown == 0 {
		fmt.Fprintln(w, "  No recognised result fields. Use --json to see the raw response.")
		fmt.Fprintln(w)
	}
}

// renderReports lists report locations, resolved against origin when set.
func renderReports(w io.Writer, v tree.Value, origin string) {
	locs := tree.FindReportLocations(v)
	if !locs.IsObject() || locs.Len() == 0 {
		return
	}
	printSection(w, "REPORTS")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, m := range locs.Members() {
		path, ok := m.Value.AsString()
		if !ok || path == "" {
			continue
		}
		if origin != "" {
			if link, ok := service.ResolveLink(origin, path); ok {
				path = link
			}
		}
		fmt.Fprintf(tw, "  %s:\t%s\n", m.Key, path)
	}
	tw.Flush()
	fmt.Fprintln(w)
}

func renderDrawings(w io.Writer, files session.DrawingFiles) {
	printSection(w, "DRAWINGS")
	if len(files) == 0 {
		fmt.Fprintln(w, "  The service returned no drawing files.")
		fmt.Fprintln(w)
		return
	}
	kinds := make([]string, 0, len(files))
	for k := range files {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool {
		ri, rj := assetRank(kinds[i]), assetRank(kinds[j])
		if ri != rj {
			return ri < rj
		}
		return kinds[i] < kinds[j]
	})

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, k := range kinds {
		fmt.Fprintf(tw, "  %s:\t%s\n", k, files[k])
	}
	tw.Flush()
	fmt.Fprintln(w)
}

func assetRank(kind string) int {
	switch kind {
	case "plan":
		return 0
	case "elevation":
		return 1
	case "dxf":
		return 2
	case "pdf":
		return 3
	}
	return 4
}

func renderDownload(w io.Writer, dl session.Download) {
	printSection(w, "PDF REPORT")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  File:\t%s\n", dl.FileName)
	fmt.Fprintf(tw, "  Saved to:\t%s\n", dl.SavedTo)
	fmt.Fprintf(tw, "  Size:\t%d bytes\n", dl.Size)
	if dl.Link != "" {
		fmt.Fprintf(tw, "  Link:\t%s\n", dl.Link)
	}
	tw.Flush()
	fmt.Fprintln(w)
}

// formatValue renders a leaf for the tabwriter blocks.
func formatValue(v tree.Value, unit string) string {
	var s string
	switch v.Kind() {
	case tree.KindNumber:
		n, _ := v.AsNumber()
		s = formatNumber(n)
	case tree.KindBool:
		b, _ := v.AsBool()
		return yesNo(b)
	default:
		s = v.String()
	}
	if unit == "" {
		return s
	}
	return s + " " + unit
}

func formatNumber(n float64) string {
	if n == float64(int64(n)) {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'f', 2, 64)
}

func yesNo(b bool) string {
	if b {
		return "Yes ✓"
	}
	return "No"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
