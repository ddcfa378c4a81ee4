package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check that the calculation service is reachable",
	Long: `Call the service root and report its status and whether it can
render PDF reports.

Examples:
  civcalc probe
  civcalc probe --service http://192.168.1.20:8000`,
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	caps, err := client.Probe(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintln(out, "CALCULATION SERVICE:")
	fmt.Fprintln(out, "───────────────────────────────────────────────────────────────")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  URL:\t%s\n", client.BaseURL())
	fmt.Fprintf(w, "  Service:\t%s\n", orDash(caps.Service))
	fmt.Fprintf(w, "  Status:\t%s\n", orDash(caps.Status))
	fmt.Fprintf(w, "  PDF export:\t%s\n", yesNo(caps.PDF))
	w.Flush()
	fmt.Fprintln(out)
	return nil
}
