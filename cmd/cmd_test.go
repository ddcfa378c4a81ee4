package cmd

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/goleak"

	"github.com/alexiusacademia/civcalc/internal/service"
	"github.com/alexiusacademia/civcalc/internal/service/servicetest"
	"github.com/alexiusacademia/civcalc/internal/tree"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

// resetFlags puts every flag back to its default so runs do not leak into
// each other through the package-level command tree.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// setup isolates the working directory from stray config files and starts
// a fake service.
func setup(t *testing.T) (*servicetest.Service, string) {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("HOME", dir)

	fake := servicetest.New()
	t.Cleanup(fake.Close)
	return fake, dir
}

func TestVersion(t *testing.T) {
	setup(t)
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "civcalc v")
}

func TestRootBanner(t *testing.T) {
	fake, _ := setup(t)
	out, err := execute(t, "--service", fake.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Structural Design Calculator Client")
	assert.Contains(t, out, fake.URL)
}

func TestInvalidServiceURL(t *testing.T) {
	setup(t)
	_, err := execute(t, "probe", "--service", "localhost:8000")
	assert.ErrorContains(t, err, "service.url")
}

func TestProbe(t *testing.T) {
	fake, _ := setup(t)
	fake.SetPDF(false)

	out, err := execute(t, "probe", "--service", fake.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Civil AI Backend")
	assert.Contains(t, out, "PDF export:  No")
}

func TestDesignBeam(t *testing.T) {
	fake, _ := setup(t)

	out, err := execute(t, "design", "beam", "--service", fake.URL, "--span_m", "4,5", "--b_mm", "")
	require.NoError(t, err)

	assert.Contains(t, out, "BEAM DESIGN RESULT")
	assert.Contains(t, out, "60.80 kN-m")
	assert.Contains(t, out, "804.20 mm²")
	assert.Contains(t, out, "Shear capacity (φVc):")
	assert.Contains(t, out, "61.80 kN")
	assert.Contains(t, out, "Stirrups required:")
	assert.Contains(t, out, fake.URL+"/reports/beam_report.html")

	reqs := fake.RequestsTo("/api/design/beam")
	require.Len(t, reqs, 1)
	assert.Equal(t, 4.5, reqs[0].Body["span_m"])
	assert.Nil(t, reqs[0].Body["b_mm"])
	assert.Equal(t, 500.0, reqs[0].Body["h_mm"])
	_, hasWriteReports := reqs[0].Body["write_reports"]
	assert.False(t, hasWriteReports)
}

func TestDesignJSONAndSave(t *testing.T) {
	fake, dir := setup(t)
	saved := filepath.Join(dir, "slab.json")
	book := filepath.Join(dir, "slab.xlsx")

	out, err := execute(t, "design", "slab", "--service", fake.URL, "--json", "--save", saved, "--xlsx", book)
	require.NoError(t, err)
	assert.Contains(t, out, `"report_paths": {`)
	assert.Contains(t, out, "Result saved to: "+saved)
	assert.FileExists(t, book)
	assert.Equal(t, true, fake.RequestsTo("/api/design/slab")[0].Body["write_reports"])

	raw, err := os.ReadFile(saved)
	require.NoError(t, err)
	v, err := tree.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"inputs", "results", "report_paths"}, v.Keys())
}

func TestDesignServiceError(t *testing.T) {
	fake, _ := setup(t)
	fake.Fail("/api/design/column", servicetest.Failure{
		Status: http.StatusUnprocessableEntity,
		Body:   `{"detail": [{"loc": ["body", "Pu_kN"], "msg": "field required"}]}`,
	})

	_, err := execute(t, "design", "column", "--service", fake.URL)
	require.Error(t, err)
	assert.Equal(t, "Pu_kN: field required", err.Error())
}

func TestDesignWithPDFAndDrawings(t *testing.T) {
	fake, dir := setup(t)
	outDir := filepath.Join(dir, "downloads")

	out, err := execute(t, "design", "footing", "--service", fake.URL, "--pdf", "--drawings", "-o", outDir)
	require.NoError(t, err)

	assert.Contains(t, out, "PDF REPORT:")
	assert.Contains(t, out, "footing_report.pdf")
	assert.FileExists(t, filepath.Join(outDir, "footing_report.pdf"))
	assert.Contains(t, out, "DRAWINGS:")
	assert.Contains(t, out, fake.URL+"/reports/drawings/footing_plan.svg")
	assert.Contains(t, out, fake.URL+"/reports/drawings/footing.dxf")

	reqs := fake.RequestsTo(service.PathDrawings)
	require.Len(t, reqs, 1)
	assert.Equal(t, "footing", reqs[0].Body["kind"])
}

func TestDesignPDFSkippedWithoutSupport(t *testing.T) {
	fake, _ := setup(t)
	fake.SetPDF(false)

	out, err := execute(t, "design", "footing", "--service", fake.URL, "--pdf")
	require.NoError(t, err)
	assert.Contains(t, out, "PDF export skipped")
	assert.Empty(t, fake.RequestsTo(service.PathGeneratePDF))
}

func TestDesignFollowUpFailureKeepsOther(t *testing.T) {
	fake, dir := setup(t)
	fake.Fail(service.PathDrawings, servicetest.Failure{Status: http.StatusInternalServerError, Body: "boom"})

	out, err := execute(t, "design", "combined", "--service", fake.URL, "--pdf", "--drawings", "-o", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "drawings: boom")
	assert.Contains(t, out, "combined_report.pdf")
}

func TestDesignPDFWithoutReport(t *testing.T) {
	fake, _ := setup(t)

	_, err := execute(t, "design", "column", "--service", fake.URL, "--pdf")
	require.Error(t, err)
	assert.Equal(t, "pdf export: no report available", err.Error())
	assert.Empty(t, fake.RequestsTo(service.PathGeneratePDF))
}

func TestResultCommands(t *testing.T) {
	fake, dir := setup(t)
	saved := filepath.Join(dir, "beam.json")
	_, err := execute(t, "design", "beam", "--service", fake.URL, "--save", saved)
	require.NoError(t, err)

	out, err := execute(t, "result", "find", saved, "n_bars", "missing_field")
	require.NoError(t, err)
	assert.Contains(t, out, "n_bars:")
	assert.Contains(t, out, "missing_field:  (not found)")

	out, err = execute(t, "result", "find", saved, "--concept", "shear_capacity")
	require.NoError(t, err)
	assert.Contains(t, out, "61.8")

	_, err = execute(t, "result", "find", saved, "nothing_here")
	assert.Error(t, err)

	out, err = execute(t, "result", "reports", saved, "--relative")
	require.NoError(t, err)
	assert.Contains(t, out, "/reports/beam_report.txt")
	assert.NotContains(t, out, "http://")

	out, err = execute(t, "result", "show", "beam", saved)
	require.NoError(t, err)
	assert.Contains(t, out, "804.20 mm²")

	book := filepath.Join(dir, "beam.xlsx")
	_, err = execute(t, "result", "export", saved, book)
	require.NoError(t, err)
	assert.FileExists(t, book)
}

func TestDrawingCommand(t *testing.T) {
	fake, dir := setup(t)

	out, err := execute(t, "drawing", "combined", "--single_mode=false", "--include_strap", "--col2_b_mm", "450")
	require.NoError(t, err)
	assert.Contains(t, out, "Mode:")
	assert.Contains(t, out, "two-pad")
	assert.Contains(t, out, "col2_b_mm:")
	assert.Contains(t, out, "STRAP BEAM:")

	out, err = execute(t, "drawing", "beam", "--json", "--ascii")
	require.NoError(t, err)
	assert.Contains(t, out, `"kind": "beam"`)
	assert.Contains(t, out, "Reinforcement (4 bars)")

	png := filepath.Join(dir, "slab.png")
	_, err = execute(t, "drawing", "slab", "-O", png)
	require.NoError(t, err)
	assert.FileExists(t, png)

	out, err = execute(t, "drawing", "column", "--generate", "--service", fake.URL)
	require.NoError(t, err)
	assert.Contains(t, out, fake.URL+"/reports/drawings/column_elev.svg")
}

func TestBatch(t *testing.T) {
	fake, dir := setup(t)

	f := excelize.NewFile()
	rows := [][]any{{"Pu_kN", "b_mm"}, {"1000", "300"}, {"1500", "400"}}
	for i, r := range rows {
		addr, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		row := r
		require.NoError(t, f.SetSheetRow("Sheet1", addr, &row))
	}
	input := filepath.Join(dir, "columns.xlsx")
	require.NoError(t, f.SaveAs(input))
	require.NoError(t, f.Close())

	summary := filepath.Join(dir, "summary.xlsx")
	out, err := execute(t, "batch", "column", input, "--service", fake.URL, "--out", summary, "--plot")
	require.NoError(t, err)
	assert.Contains(t, out, "2 of 2 designs succeeded.")
	assert.Contains(t, out, "Gross area (Ag) (mm²) by row")
	assert.FileExists(t, summary)
	assert.Len(t, fake.RequestsTo("/api/design/column"), 2)

	out, err = execute(t, "batch", "column", input, "--service", fake.URL, "--rate", "50")
	require.NoError(t, err)
	assert.Contains(t, out, "2 of 2 designs succeeded.")

	_, err = execute(t, "batch", "column", input, "--service", fake.URL, "--rate", "-1")
	assert.ErrorContains(t, err, "--rate")

	fake.Fail("/api/design/column", servicetest.Failure{Status: http.StatusBadGateway})
	_, err = execute(t, "batch", "column", input, "--service", fake.URL)
	assert.ErrorContains(t, err, "all 2 designs failed")
}
