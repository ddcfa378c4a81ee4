package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/alexiusacademia/civcalc/internal/tree"
)

// Table is one worksheet.
type Table struct {
	Sheet  string
	Header []string
	Rows   [][]any
	// Widths sets column widths, first column first. Zero keeps the default.
	Widths []float64
}

// ResultTables lays a result tree out as a "Result" sheet of field/value
// rows and, when the tree carries report locations, a "Reports" sheet.
func ResultTables(v tree.Value) []Table {
	result := Table{Sheet: "Result", Header: []string{"Field", "Value"}, Widths: []float64{48, 24}}
	for _, r := range Flatten(v) {
		result.Rows = append(result.Rows, []any{r.Path, cell(r.Value)})
	}
	tables := []Table{result}

	if locs := tree.FindReportLocations(v); locs.IsObject() && locs.Len() > 0 {
		reports := Table{Sheet: "Reports", Header: []string{"Format", "Path"}, Widths: []float64{12, 60}}
		for _, m := range locs.Members() {
			reports.Rows = append(reports.Rows, []any{m.Key, cell(m.Value)})
		}
		tables = append(tables, reports)
	}
	return tables
}

// WriteTables writes tables as a workbook to w.
func WriteTables(w io.Writer, tables ...Table) error {
	if len(tables) == 0 {
		return fmt.Errorf("no tables to write")
	}
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	for i, t := range tables {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), t.Sheet); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(t.Sheet); err != nil {
			return err
		}
		if err := writeTable(f, t, bold); err != nil {
			return fmt.Errorf("sheet %s: %w", t.Sheet, err)
		}
	}
	f.SetActiveSheet(0)

	return f.Write(w)
}

func writeTable(f *excelize.File, t Table, headerStyle int) error {
	header := make([]any, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(t.Sheet, "A1", &header); err != nil {
		return err
	}
	if len(header) > 0 {
		if err := f.SetRowStyle(t.Sheet, 1, 1, headerStyle); err != nil {
			return err
		}
	}

	for i, row := range t.Rows {
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(t.Sheet, addr, &r); err != nil {
			return err
		}
	}

	for i, width := range t.Widths {
		if width <= 0 {
			continue
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(t.Sheet, col, col, width); err != nil {
			return err
		}
	}
	return nil
}

// SaveTables writes tables to path, creating parent directories.
func SaveTables(path string, tables ...Table) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteTables(out, tables...); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
