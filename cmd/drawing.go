package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/civcalc/internal/drawing"
	"github.com/alexiusacademia/civcalc/internal/form"
)

var (
	drawingJSON     bool
	drawingASCII    bool
	drawingOutput   string
	drawingGenerate bool
)

var drawingCmd = &cobra.Command{
	Use:   "drawing",
	Short: "Derive drawing parameters from a design form",
	Long: `Derive the drawing parameters (outline, bar count, strap) that a design
form produces, without running the design.

The parameters can be sketched in the terminal (--ascii), plotted to a
PNG, SVG or PDF file (--output) or sent to the service to generate the
plan, elevation and DXF drawings (--generate).

Examples:
  civcalc drawing beam --b_mm 250 --h_mm 450 --ascii
  civcalc drawing combined --include_strap --strap_width_mm 300 -O strap.png
  civcalc drawing footing --pad_depth_mm 600 --generate`,
}

func init() {
	rootCmd.AddCommand(drawingCmd)

	drawingCmd.PersistentFlags().BoolVar(&drawingJSON, "json", false, "Print the drawing request as JSON")
	drawingCmd.PersistentFlags().BoolVar(&drawingASCII, "ascii", false, "Sketch the outline in the terminal")
	drawingCmd.PersistentFlags().StringVarP(&drawingOutput, "output", "O", "", "Plot the outline to a file (png, svg, pdf)")
	drawingCmd.PersistentFlags().BoolVar(&drawingGenerate, "generate", false, "Ask the service to generate drawing files")

	for _, c := range form.Categories() {
		drawingCmd.AddCommand(newDrawingCategoryCmd(c))
	}
}

func newDrawingCategoryCmd(c form.Category) *cobra.Command {
	cmd := &cobra.Command{
		Use:     string(c),
		Aliases: categoryAliases(c),
		Short:   fmt.Sprintf("Drawing parameters for a %s", displayName(c)),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDrawing(cmd, c)
		},
	}
	addFormFlags(cmd, c)
	return cmd
}

func runDrawing(cmd *cobra.Command, c form.Category) error {
	state, err := stateFromFlags(cmd, c)
	if err != nil {
		return err
	}
	payload := form.Normalize(state)
	shape, err := drawing.ShapeFor(c, payload)
	if err != nil {
		return err
	}
	params, err := drawing.Derive(c, payload)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if drawingJSON {
		raw, err := json.MarshalIndent(drawing.NewRequest(c, params), "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(raw))
	} else {
		printDrawingParams(cmd, c, shape, params)
	}

	if drawingASCII {
		fmt.Fprintln(out, drawing.DrawASCIIPreview(params, c.Title()))
	}
	if drawingOutput != "" {
		if err := drawing.ExportPreview(params, c.Title(), drawingOutput); err != nil {
			return fmt.Errorf("error exporting preview: %w", err)
		}
		fmt.Fprintf(out, "Preview exported to: %s\n", drawingOutput)
	}

	if !drawingGenerate {
		return nil
	}
	client, err := newClient()
	if err != nil {
		return err
	}
	files, err := newCoordinator(client, "").GenerateDrawings(cmd.Context(), c, state)
	if err != nil {
		return err
	}
	renderDrawings(out, files)
	return nil
}

func printDrawingParams(cmd *cobra.Command, c form.Category, shape drawing.Shape, p drawing.Params) {
	out := cmd.OutOrStdout()
	printBanner(out, c.Title()+" DRAWING PARAMETERS")

	printSection(out, "OUTLINE")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Kind:\t%s\n", c.DrawingKind())
	if cs, ok := shape.(drawing.CombinedShape); ok {
		fmt.Fprintf(w, "  Mode:\t%s\n", cs.Mode)
	}
	fmt.Fprintf(w, "  Width:\t%s mm\n", formatNumber(p.WidthMM))
	fmt.Fprintf(w, "  Depth:\t%s mm\n", formatNumber(p.DepthMM))
	fmt.Fprintf(w, "  Bars:\t%d\n", p.Bars)
	keys := make([]string, 0, len(p.Extra))
	for k := range p.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s:\t%s\n", k, formatNumber(p.Extra[k]))
	}
	w.Flush()
	fmt.Fprintln(out)

	if p.Strap != nil {
		printSection(out, "STRAP BEAM")
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "  Width:\t%s mm\n", formatNumber(p.Strap.WidthMM))
		fmt.Fprintf(w, "  Thickness:\t%s mm\n", formatNumber(p.Strap.ThicknessMM))
		fmt.Fprintf(w, "  Length:\t%s m\n", formatNumber(p.Strap.LengthM))
		w.Flush()
		fmt.Fprintln(out)
	}
}
