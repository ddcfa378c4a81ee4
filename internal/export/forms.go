package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/alexiusacademia/civcalc/internal/form"
)

// ReadForms reads one form state per row from the first sheet of a workbook.
// The header row names the fields; cells override the category defaults,
// so columns may be omitted. Blank rows are skipped.
func ReadForms(r io.Reader, c form.Category) ([]form.State, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("invalid workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet %s has no data rows", sheet)
	}

	fields := make(map[string]form.Field)
	for _, fd := range form.Fields(c) {
		fields[fd.Key] = fd
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("column %q is not a %s field", h, c.Title())
		}
		header[i] = h
	}

	var states []form.State
	for n, row := range rows[1:] {
		if blank(row) {
			continue
		}
		s := form.Defaults(c)
		for i, raw := range row {
			if i >= len(header) || header[i] == "" {
				continue
			}
			key := header[i]
			if strings.TrimSpace(raw) == "" {
				continue
			}
			if fields[key].IsToggle() {
				b, err := parseToggle(raw)
				if err != nil {
					return nil, fmt.Errorf("row %d, %s: %w", n+2, key, err)
				}
				s.Set(key, b)
				continue
			}
			s.Set(key, raw)
		}
		states = append(states, s)
	}
	if len(states) == 0 {
		return nil, fmt.Errorf("sheet %s has no data rows", sheet)
	}
	return states, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseToggle(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "y", "on":
		return true, nil
	case "no", "n", "off":
		return false, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false, fmt.Errorf("expected a yes/no value, got %q", raw)
	}
	return b, nil
}
