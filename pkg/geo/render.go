package geo

import (
	"fmt"
	"image/color"
	"io"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/twpayne/go-geom"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// RenderPNG draws the layer as a flat lon/lat choropleth.
func RenderPNG(l *RegionLayer, w io.Writer, width, height vg.Length) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s (%s)", l.RiskFactor, l.Year)
	p.HideAxes()

	for _, r := range l.Regions {
		fill := fillColor(r.FillColor, r.FillOpacity)
		for _, rings := range polygons(r.Geometry) {
			poly, err := plotter.NewPolygon(rings...)
			if err != nil {
				return fmt.Errorf("region %q: %w", r.Name, err)
			}
			poly.Color = fill
			poly.LineStyle.Color = color.Black
			poly.LineStyle.Width = vg.Points(r.Weight * 0.5)
			p.Add(poly)
		}
	}

	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

func fillColor(hex string, opacity float64) color.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		c, _ = colorful.Hex(NoDataColor)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(opacity * 255))}
}

// polygons flattens a geometry into polygons, each a list of rings.
func polygons(g geom.T) [][]plotter.XYer {
	switch t := g.(type) {
	case *geom.Polygon:
		return [][]plotter.XYer{rings(t)}
	case *geom.MultiPolygon:
		out := make([][]plotter.XYer, 0, t.NumPolygons())
		for i := 0; i < t.NumPolygons(); i++ {
			out = append(out, rings(t.Polygon(i)))
		}
		return out
	}
	return nil
}

func rings(p *geom.Polygon) []plotter.XYer {
	out := make([]plotter.XYer, 0, p.NumLinearRings())
	for i := 0; i < p.NumLinearRings(); i++ {
		coords := p.LinearRing(i).Coords()
		xys := make(plotter.XYs, len(coords))
		for j, c := range coords {
			xys[j].X, xys[j].Y = c.X(), c.Y()
		}
		out = append(out, xys)
	}
	return out
}
