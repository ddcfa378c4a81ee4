package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/civcalc/internal/export"
	"github.com/alexiusacademia/civcalc/internal/form"
	"github.com/alexiusacademia/civcalc/internal/tree"
)

var (
	resultConcept  bool
	resultRelative bool
)

var resultCmd = &cobra.Command{
	Use:   "result",
	Short: "Inspect a saved result tree",
	Long: `Work with a result tree saved by 'civcalc design --save'.

These commands do not contact the calculation service.`,
}

var resultFindCmd = &cobra.Command{
	Use:   "find <result.json> <field>...",
	Short: "Look up fields anywhere in a result tree",
	Long: `Look up fields by name. A field owned by the top level of the tree wins;
otherwise the first non-null match in a depth-first walk is shown.

With --concept the names are concepts from results.aliases (for example
shear_capacity) and every configured spelling is tried in turn.

Examples:
  civcalc result find beam.json provided_As_mm2 phiVc_kN
  civcalc result find beam.json --concept shear_capacity`,
	Args: cobra.MinimumNArgs(2),
	RunE: runResultFind,
}

var resultReportsCmd = &cobra.Command{
	Use:   "reports <result.json>",
	Short: "List the report files of a result tree",
	Args:  cobra.ExactArgs(1),
	RunE:  runResultReports,
}

var resultShowCmd = &cobra.Command{
	Use:   "show <category> <result.json>",
	Short: "Print a saved result the way 'design' does",
	Args:  cobra.ExactArgs(2),
	RunE:  runResultShow,
}

var resultExportCmd = &cobra.Command{
	Use:   "export <result.json> <out.xlsx>",
	Short: "Flatten a result tree into an xlsx workbook",
	Args:  cobra.ExactArgs(2),
	RunE:  runResultExport,
}

func init() {
	rootCmd.AddCommand(resultCmd)
	resultCmd.AddCommand(resultFindCmd, resultReportsCmd, resultShowCmd, resultExportCmd)

	resultFindCmd.Flags().BoolVar(&resultConcept, "concept", false, "Treat names as alias concepts")
	resultReportsCmd.Flags().BoolVar(&resultRelative, "relative", false, "Print paths as returned, without the service origin")
}

func loadResult(path string) (tree.Value, error) {
	f, err := os.Open(path)
	if err != nil {
		return tree.Value{}, err
	}
	defer f.Close()

	v, err := tree.DecodeReader(f)
	if err != nil {
		return tree.Value{}, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

func runResultFind(cmd *cobra.Command, args []string) error {
	v, err := loadResult(args[0])
	if err != nil {
		return err
	}
	aliases := resultAliases()

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	missing := 0
	for _, name := range args[1:] {
		var found tree.Value
		if resultConcept {
			found = aliases.Lookup(v, name)
		} else {
			found = tree.FindField(v, name)
		}
		if found.IsNull() {
			missing++
			fmt.Fprintf(w, "  %s:\t(not found)\n", name)
			continue
		}
		fmt.Fprintf(w, "  %s:\t%s\n", name, found.String())
	}
	w.Flush()

	if missing == len(args)-1 {
		return fmt.Errorf("none of the requested fields are in %s", args[0])
	}
	return nil
}

func runResultReports(cmd *cobra.Command, args []string) error {
	v, err := loadResult(args[0])
	if err != nil {
		return err
	}
	locs := tree.FindReportLocations(v)
	if !locs.IsObject() || locs.Len() == 0 {
		return fmt.Errorf("%s has no report locations", args[0])
	}
	origin := appConfig.Service.URL
	if resultRelative {
		origin = ""
	}
	renderReports(cmd.OutOrStdout(), v, origin)
	return nil
}

func runResultShow(cmd *cobra.Command, args []string) error {
	c, err := form.ParseCategory(args[0])
	if err != nil {
		return err
	}
	v, err := loadResult(args[1])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	renderResult(out, c, v, resultAliases())
	renderReports(out, v, appConfig.Service.URL)
	return nil
}

func runResultExport(cmd *cobra.Command, args []string) error {
	v, err := loadResult(args[0])
	if err != nil {
		return err
	}
	if err := export.SaveTables(args[1], export.ResultTables(v)...); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Result exported to: %s\n", args[1])
	return nil
}
