package drawing

import (
	"fmt"
	"strings"
)

// DrawASCIIPreview sketches the derived outline with its bars and strap for
// the terminal. Proportions are approximate.
func DrawASCIIPreview(p Params, title string) string {
	var sb strings.Builder

	widthChars := 30
	heightChars := 8
	if p.WidthMM > 0 && p.DepthMM > 0 {
		ratio := p.DepthMM / p.WidthMM
		heightChars = clamp(int(ratio*float64(widthChars)/2), 3, 14)
	}

	// Bars sit one row above the bottom edge
	barRow := heightChars - 1
	barCols := make(map[int]bool)
	for _, pt := range BarPositions(p) {
		col := int(pt.X / p.WidthMM * float64(widthChars-1))
		barCols[clamp(col, 0, widthChars-1)] = true
	}

	strapChars := 0
	strapRows := 0
	if p.Strap != nil {
		strapChars = 12
		strapRows = 1
		if p.DepthMM > 0 {
			strapRows = clamp(int(p.Strap.ThicknessMM/p.DepthMM*float64(heightChars)), 1, heightChars-1)
		}
	}

	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  %s\n", strings.ToUpper(title)))
	sb.WriteString(fmt.Sprintf("  %s\n", strings.Repeat("─", len([]rune(title)))))

	for i := 0; i <= heightChars; i++ {
		switch {
		case i == 0:
			sb.WriteString(fmt.Sprintf("  ┌%s┐", strings.Repeat("─", widthChars)))
		case i == heightChars:
			sb.WriteString(fmt.Sprintf("  └%s┘", strings.Repeat("─", widthChars)))
		default:
			row := []rune(strings.Repeat(" ", widthChars))
			if i == barRow {
				for c := range barCols {
					row[c] = '●'
				}
			}
			sb.WriteString(fmt.Sprintf("  │%s│", string(row)))
		}

		if strapChars > 0 && i > 0 && i <= strapRows {
			sb.WriteString(strings.Repeat("░", strapChars))
		}
		if i == heightChars/2 {
			pad := ""
			if strapChars > 0 && i > strapRows {
				pad = strings.Repeat(" ", strapChars)
			}
			sb.WriteString(fmt.Sprintf("%s  ◄─ h = %.0f mm", pad, p.DepthMM))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("   %s\n", centre(fmt.Sprintf("b = %.0f mm", p.WidthMM), widthChars)))
	sb.WriteString("\n")
	sb.WriteString("  Legend:\n")
	sb.WriteString(fmt.Sprintf("  ●●● = Reinforcement (%d bars)\n", p.Bars))
	if p.Strap != nil {
		sb.WriteString(fmt.Sprintf("  ░░░ = Strap %.0f x %.0f mm, L = %.2f m\n",
			p.Strap.WidthMM, p.Strap.ThicknessMM, p.Strap.LengthM))
	}

	return sb.String()
}

func centre(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	left := (width - n) / 2
	return strings.Repeat(" ", left) + s
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
