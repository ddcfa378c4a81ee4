package drawing

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// previewCoverMM is the cover used to place bars in the preview only.
const previewCoverMM = 40.0

// BarPositions spreads the bars evenly along the bottom of the outline,
// one cover in from each face.
func BarPositions(p Params) plotter.XYs {
	if p.Bars <= 0 || p.WidthMM <= 0 {
		return nil
	}
	cover := previewCoverMM
	if 2*cover >= p.WidthMM {
		cover = p.WidthMM / 4
	}
	y := cover
	if y > p.DepthMM/2 {
		y = p.DepthMM / 2
	}

	pts := make(plotter.XYs, p.Bars)
	if p.Bars == 1 {
		pts[0] = plotter.XY{X: p.WidthMM / 2, Y: y}
		return pts
	}
	step := (p.WidthMM - 2*cover) / float64(p.Bars-1)
	for i := range pts {
		pts[i] = plotter.XY{X: cover + float64(i)*step, Y: y}
	}
	return pts
}

// ExportPreview plots the derived outline, bars and strap. The format follows
// the file extension (png, svg, pdf); anything else gets ".png" appended.
func ExportPreview(p Params, title, filename string) error {
	if p.WidthMM <= 0 || p.DepthMM <= 0 {
		return fmt.Errorf("preview needs positive geometry, got %.0f x %.0f mm", p.WidthMM, p.DepthMM)
	}

	pl := plot.New()
	pl.Title.Text = title
	pl.X.Label.Text = "Width (mm)"
	pl.Y.Label.Text = "Depth (mm)"

	// Outline
	outline, err := plotter.NewLine(plotter.XYs{
		{X: 0, Y: 0},
		{X: p.WidthMM, Y: 0},
		{X: p.WidthMM, Y: p.DepthMM},
		{X: 0, Y: p.DepthMM},
		{X: 0, Y: 0},
	})
	if err != nil {
		return err
	}
	outline.LineStyle.Width = vg.Points(2)
	outline.LineStyle.Color = color.Black
	pl.Add(outline)

	// Bars
	if pts := BarPositions(p); len(pts) > 0 {
		bars, err := plotter.NewScatter(pts)
		if err != nil {
			return err
		}
		bars.GlyphStyle.Color = color.RGBA{R: 198, G: 40, B: 40, A: 255}
		bars.GlyphStyle.Radius = vg.Points(4)
		bars.GlyphStyle.Shape = draw.CircleGlyph{}
		pl.Add(bars)
	}

	// Strap, drawn as a band beside the pad at the same scale
	if p.Strap != nil {
		x0 := p.WidthMM
		x1 := x0 + p.Strap.LengthM*1000
		top := p.DepthMM
		bottom := top - p.Strap.ThicknessMM
		if bottom < 0 {
			bottom = 0
		}
		band, err := plotter.NewPolygon(plotter.XYs{
			{X: x0, Y: bottom},
			{X: x1, Y: bottom},
			{X: x1, Y: top},
			{X: x0, Y: top},
		})
		if err != nil {
			return err
		}
		band.Color = color.RGBA{R: 100, G: 149, B: 237, A: 150}
		band.LineStyle.Color = color.RGBA{R: 0, G: 0, B: 139, A: 255}
		pl.Add(band)
	}

	labels, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    []plotter.XY{{X: p.WidthMM / 2, Y: p.DepthMM + p.DepthMM*0.05}},
		Labels: []string{fmt.Sprintf("%.0f x %.0f mm, %d bars", p.WidthMM, p.DepthMM, p.Bars)},
	})
	if err != nil {
		return err
	}
	pl.Add(labels)

	dir := filepath.Dir(filename)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	width := 8 * vg.Inch
	height := 6 * vg.Inch
	switch filepath.Ext(filename) {
	case ".png", ".svg", ".pdf":
		return pl.Save(width, height, filename)
	default:
		return pl.Save(width, height, filename+".png")
	}
}
