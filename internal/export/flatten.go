// Package export moves design data between result trees and spreadsheets.
package export

import (
	"strconv"

	"github.com/alexiusacademia/civcalc/internal/tree"
)

// Row is one leaf of a flattened result tree.
type Row struct {
	Path  string
	Value tree.Value
}

// Flatten lists the scalar leaves of v in traversal order. Object members
// are joined with "." and array items with "[i]". Empty containers appear
// as leaves so nothing silently disappears.
func Flatten(v tree.Value) []Row {
	var rows []Row
	flatten(v, "", &rows)
	return rows
}

func flatten(v tree.Value, path string, rows *[]Row) {
	switch {
	case v.IsObject() && v.Len() > 0:
		for _, m := range v.Members() {
			p := m.Key
			if path != "" {
				p = path + "." + m.Key
			}
			flatten(m.Value, p, rows)
		}
	case v.IsArray() && v.Len() > 0:
		for i, it := range v.Items() {
			flatten(it, path+"["+strconv.Itoa(i)+"]", rows)
		}
	default:
		*rows = append(*rows, Row{Path: path, Value: v})
	}
}

// cell converts a leaf to a spreadsheet cell value.
func cell(v tree.Value) any {
	switch v.Kind() {
	case tree.KindNumber:
		n, _ := v.AsNumber()
		return n
	case tree.KindBool:
		b, _ := v.AsBool()
		return b
	case tree.KindString:
		s, _ := v.AsString()
		return s
	case tree.KindNull:
		return ""
	default:
		return v.String()
	}
}
