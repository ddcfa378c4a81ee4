package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/alexiusacademia/civcalc/internal/export"
	"github.com/alexiusacademia/civcalc/internal/form"
	"github.com/alexiusacademia/civcalc/internal/tree"
)

var (
	batchOutput string
	batchPlot   bool
	batchRate   float64
)

var batchCmd = &cobra.Command{
	Use:   "batch <category> <forms.xlsx>",
	Short: "Run one design per spreadsheet row",
	Long: `Read design forms from the first sheet of an xlsx workbook and submit
them one after another.

The header row names the form fields (the same names as the 'design'
flags). Columns that are left out keep their default values; toggle
columns accept yes/no, true/false or 1/0.

A failed row does not stop the batch. The summary lists the main result
of every row and can be written to a workbook with --out. --plot charts
the first result value across the successful rows. --rate spaces the
requests out for a shared service.

Examples:
  civcalc batch beam beams.xlsx
  civcalc batch footing footings.xlsx --out footing-results.xlsx
  civcalc batch column columns.xlsx --plot`,
	Args: cobra.ExactArgs(2),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().StringVar(&batchOutput, "out", "", "Write the summary to an xlsx workbook")
	batchCmd.Flags().BoolVar(&batchPlot, "plot", false, "Chart the first result value across rows")
	batchCmd.Flags().Float64Var(&batchRate, "rate", 0, "Maximum designs per second (0 for no limit)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	c, err := form.ParseCategory(args[0])
	if err != nil {
		return err
	}
	if batchRate < 0 {
		return fmt.Errorf("--rate must not be negative")
	}
	f, err := os.Open(args[1])
	if err != nil {
		return err
	}
	states, err := export.ReadForms(f, c)
	f.Close()
	if err != nil {
		return fmt.Errorf("%s: %w", args[1], err)
	}

	client, err := newClient()
	if err != nil {
		return err
	}
	coord := newCoordinator(client, "")
	aliases := resultAliases()
	concepts := resultConcepts(c)

	summary := export.Table{Sheet: "Batch", Header: []string{"Row", "Status"}}
	for _, l := range concepts {
		h := l.label
		if l.unit != "" {
			h += " (" + l.unit + ")"
		}
		summary.Header = append(summary.Header, h)
	}
	summary.Header = append(summary.Header, "Error")

	limiter := rate.NewLimiter(rate.Inf, 1)
	if batchRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(batchRate), 1)
	}

	failed := 0
	for i, s := range states {
		if err := limiter.Wait(cmd.Context()); err != nil {
			return err
		}
		row := []any{i + 1}
		result, err := coord.Submit(cmd.Context(), c, s)
		if err != nil {
			failed++
			logger().Warn("batch row failed", zap.Int("row", i+1), zap.Error(err))
			row = append(row, "FAILED")
			for range concepts {
				row = append(row, "")
			}
			row = append(row, err.Error())
			summary.Rows = append(summary.Rows, row)
			continue
		}
		row = append(row, "OK")
		for _, l := range concepts {
			row = append(row, summaryCell(aliases.Lookup(result, l.concept)))
		}
		row = append(row, "")
		summary.Rows = append(summary.Rows, row)
	}

	out := cmd.OutOrStdout()
	printBanner(out, fmt.Sprintf("%s BATCH (%d ROWS)", c.Title(), len(states)))
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  Row\tStatus\tDetail")
	for _, r := range summary.Rows {
		detail := r[len(r)-1]
		if r[1] == "OK" && len(concepts) > 0 {
			detail = fmt.Sprintf("%s = %s", concepts[0].label, orDash(fmt.Sprint(r[2])))
		}
		fmt.Fprintf(w, "  %d\t%s\t%v\n", r[0], r[1], detail)
	}
	w.Flush()
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %d of %d designs succeeded.\n", len(states)-failed, len(states))

	if batchPlot && len(concepts) > 0 {
		printBatchPlot(out, concepts[0], summary.Rows)
	}

	if batchOutput != "" {
		if err := export.SaveTables(batchOutput, summary); err != nil {
			return fmt.Errorf("export %s: %w", batchOutput, err)
		}
		fmt.Fprintf(out, "  Summary exported to: %s\n", batchOutput)
	}
	fmt.Fprintln(out)

	if failed == len(states) {
		return fmt.Errorf("all %d designs failed", failed)
	}
	return nil
}

// summaryCell keeps numbers and flags typed in the workbook.
func summaryCell(v tree.Value) any {
	switch v.Kind() {
	case tree.KindNull:
		return ""
	case tree.KindNumber:
		n, _ := v.AsNumber()
		return n
	case tree.KindBool:
		b, _ := v.AsBool()
		return b
	}
	return v.String()
}

// printBatchPlot charts the first concept column. Rows without a number are
// left out; fewer than two points are not worth a chart.
func printBatchPlot(w io.Writer, l resultLine, rows [][]any) {
	var data []float64
	for _, r := range rows {
		if n, ok := r[2].(float64); ok {
			data = append(data, n)
		}
	}
	if len(data) < 2 {
		fmt.Fprintf(w, "  Not enough %s values to plot.\n", strings.ToLower(l.label))
		return
	}
	caption := l.label
	if l.unit != "" {
		caption += " (" + l.unit + ")"
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, asciigraph.Plot(data, asciigraph.Height(8), asciigraph.Caption(caption+" by row")))
}
