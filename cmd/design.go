package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/alexiusacademia/civcalc/internal/export"
	"github.com/alexiusacademia/civcalc/internal/form"
	"github.com/alexiusacademia/civcalc/internal/service"
	"github.com/alexiusacademia/civcalc/internal/session"
	"github.com/alexiusacademia/civcalc/internal/tree"
)

var (
	// Follow-up operations
	designPDF      bool
	designDrawings bool

	// Output options
	designJSON   bool
	designSave   string
	designXLSX   string
	designOutDir string
)

var designCmd = &cobra.Command{
	Use:   "design",
	Short: "Submit a design form to the calculation service",
	Long: `Submit a design form for one category and print the result.

Every form field is a flag named after the field. Numeric fields accept a
decimal comma or point; a blank or unreadable value is sent as null and
the service applies its own default.

After the design succeeds the HTML report can be exported as PDF (--pdf)
and plan / elevation / DXF drawings requested (--drawings). Both run at
the same time and report their results independently.

Examples:
  # Beam with the default form values
  civcalc design beam

  # Slab with comma decimals, saving the raw result
  civcalc design slab --span_m 3,5 --thickness_mm 150 --save slab.json

  # Two-pad combined footing with a strap, PDF report and drawings
  civcalc design combined --single_mode=false --P1_kN 700 --P2_kN 900 \
      --include_strap --pdf --drawings`,
}

func init() {
	rootCmd.AddCommand(designCmd)

	designCmd.PersistentFlags().BoolVar(&designPDF, "pdf", false, "Export the HTML report as PDF and download it")
	designCmd.PersistentFlags().BoolVar(&designDrawings, "drawings", false, "Request plan, elevation and DXF drawings")
	designCmd.PersistentFlags().BoolVar(&designJSON, "json", false, "Print the raw result tree as JSON")
	designCmd.PersistentFlags().StringVar(&designSave, "save", "", "Save the result tree to a JSON file")
	designCmd.PersistentFlags().StringVar(&designXLSX, "xlsx", "", "Export the result tree to an xlsx workbook")
	designCmd.PersistentFlags().StringVarP(&designOutDir, "output-dir", "o", "", "Directory for downloaded files (overrides output.dir)")

	for _, c := range form.Categories() {
		designCmd.AddCommand(newDesignCategoryCmd(c))
	}
}

func newDesignCategoryCmd(c form.Category) *cobra.Command {
	cmd := &cobra.Command{
		Use:     string(c),
		Aliases: categoryAliases(c),
		Short:   fmt.Sprintf("Design a %s", displayName(c)),
		Long: fmt.Sprintf(`Submit the %s form to %s.

Example:
  civcalc design %s %s`, displayName(c), c.Endpoint(), c, categoryExamples[c]),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDesign(cmd, c)
		},
	}
	addFormFlags(cmd, c)
	return cmd
}

func runDesign(cmd *cobra.Command, c form.Category) error {
	state, err := stateFromFlags(cmd, c)
	if err != nil {
		return err
	}
	client, err := newClient()
	if err != nil {
		return err
	}
	coord := newCoordinator(client, designOutDir)
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	log := logger().With(zap.String("category", string(c)))

	start := time.Now()
	result, err := coord.Submit(ctx, c, state)
	if err != nil {
		return err
	}
	log.Info("design submitted", zap.Duration("elapsed", time.Since(start)))

	if designJSON {
		raw, err := tree.Indent(result)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(raw))
	} else {
		renderResult(out, c, result, resultAliases())
		renderReports(out, result, client.BaseURL())
	}

	if designSave != "" {
		if err := saveResult(designSave, result); err != nil {
			return err
		}
		fmt.Fprintf(out, "Result saved to: %s\n", designSave)
	}
	if designXLSX != "" {
		if err := export.SaveTables(designXLSX, export.ResultTables(result)...); err != nil {
			return fmt.Errorf("export %s: %w", designXLSX, err)
		}
		fmt.Fprintf(out, "Result exported to: %s\n", designXLSX)
	}

	if !designPDF && !designDrawings {
		return nil
	}
	return runFollowUps(ctx, out, client, coord, c, state)
}

// runFollowUps runs PDF export and drawing generation side by side. A failure
// in one does not stop the other.
func runFollowUps(ctx context.Context, out io.Writer, client *service.Client, coord *session.Coordinator, c form.Category, state form.State) error {
	var (
		g         errgroup.Group
		pdfErr    error
		drawErr   error
		pdfSkip   bool
		download  session.Download
		drawFiles session.DrawingFiles
	)

	if designPDF {
		g.Go(func() error {
			caps, err := client.Probe(ctx)
			if err == nil && !caps.PDF {
				pdfSkip = true
				return nil
			}
			download, pdfErr = coord.ExportPDF(ctx)
			return pdfErr
		})
	}
	if designDrawings {
		g.Go(func() error {
			drawFiles, drawErr = coord.GenerateDrawings(ctx, c, state)
			return drawErr
		})
	}
	if err := g.Wait(); err != nil {
		logger().Debug("follow-up operation failed", zap.Error(err))
	}

	var errs []error
	switch {
	case pdfSkip:
		logger().Warn("service cannot render PDF reports; skipping PDF export")
		fmt.Fprintln(out, "PDF export skipped: the service reports no PDF support.")
		fmt.Fprintln(out)
	case pdfErr != nil:
		errs = append(errs, fmt.Errorf("pdf export: %w", pdfErr))
	case designPDF:
		renderDownload(out, download)
	}
	if drawErr != nil {
		errs = append(errs, fmt.Errorf("drawings: %w", drawErr))
	} else if designDrawings {
		renderDrawings(out, drawFiles)
	}
	return errors.Join(errs...)
}

func saveResult(path string, v tree.Value) error {
	raw, err := tree.Indent(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(raw, '\n'), 0o644)
}

func displayName(c form.Category) string {
	return strings.ReplaceAll(string(c), "_", " ")
}
