// Package chart renders a risk factor series as line and bar chart images.
package chart

import (
	"errors"
	"io"
	"math"
	"strings"

	"github.com/anrid/risk-dashboard/pkg/stats"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	Width  = 800
	Height = 400
)

// Axis and legend colors of the dark dashboard theme.
var (
	textColor = drawing.ColorFromHex("e0e0e0")
	gridColor = drawing.ColorFromHex("444444")
)

var ErrNothingToDraw = errors.New("series has no numeric values")

func seriesColor(s *stats.ChartSeries) drawing.Color {
	hex := strings.TrimPrefix(s.Color, "#")
	if hex == "" {
		hex = strings.TrimPrefix(stats.DefaultChartColor, "#")
	}
	return drawing.ColorFromHex(hex)
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// RenderLine draws the series as a line over the risk factor labels.
// Values that are not numbers leave a gap.
func RenderLine(s *stats.ChartSeries, w io.Writer) error {
	var xs, ys []float64
	ticks := make([]gochart.Tick, len(s.Labels))
	for i, label := range s.Labels {
		ticks[i] = gochart.Tick{Value: float64(i), Label: label}
		if i < len(s.Values) && finite(s.Values[i]) {
			xs = append(xs, float64(i))
			ys = append(ys, s.Values[i])
		}
	}
	if len(ys) == 0 {
		return ErrNothingToDraw
	}

	color := seriesColor(s)
	graph := gochart.Chart{
		Width:  Width,
		Height: Height,
		XAxis: gochart.XAxis{
			Ticks:          ticks,
			Style:          gochart.Style{FontColor: textColor, StrokeColor: gridColor},
			GridMajorStyle: gochart.Style{StrokeColor: gridColor, StrokeWidth: 1},
			Range:          xRange(len(s.Labels)),
		},
		YAxis: gochart.YAxis{
			Style:          gochart.Style{FontColor: textColor, StrokeColor: gridColor},
			GridMajorStyle: gochart.Style{StrokeColor: gridColor, StrokeWidth: 1},
			Range:          yRange(ys),
		},
		Series: []gochart.Series{
			gochart.ContinuousSeries{
				Name:    s.Country,
				XValues: xs,
				YValues: ys,
				Style: gochart.Style{
					StrokeColor: color,
					StrokeWidth: 2,
					DotColor:    color,
					DotWidth:    3,
				},
			},
		},
	}
	graph.Elements = []gochart.Renderable{gochart.LegendThin(&graph, gochart.Style{FontColor: textColor})}

	return graph.Render(gochart.PNG, w)
}

// RenderBar draws one bar per risk factor. Bars without a numeric value are
// drawn at zero.
func RenderBar(s *stats.ChartSeries, w io.Writer) error {
	color := seriesColor(s)
	bars := make([]gochart.Value, len(s.Labels))
	numeric := 0
	for i, label := range s.Labels {
		v := 0.0
		if i < len(s.Values) && finite(s.Values[i]) {
			v = s.Values[i]
			numeric++
		}
		bars[i] = gochart.Value{
			Label: label,
			Value: v,
			Style: gochart.Style{FillColor: color, StrokeColor: color},
		}
	}
	if numeric == 0 {
		return ErrNothingToDraw
	}

	var ys []float64
	for _, b := range bars {
		ys = append(ys, b.Value)
	}

	graph := gochart.BarChart{
		Title:      s.Country,
		TitleStyle: gochart.Style{FontColor: textColor},
		Width:      Width,
		Height:     Height,
		BarWidth:   40,
		XAxis:      gochart.Style{FontColor: textColor, StrokeColor: gridColor},
		YAxis: gochart.YAxis{
			Style: gochart.Style{FontColor: textColor, StrokeColor: gridColor},
			Range: yRange(ys),
		},
		Bars: bars,
	}
	return graph.Render(gochart.PNG, w)
}

// yRange always includes zero and never collapses to a single value.
func yRange(ys []float64) *gochart.ContinuousRange {
	min, max := 0.0, 0.0
	for _, y := range ys {
		min = math.Min(min, y)
		max = math.Max(max, y)
	}
	if min == max {
		max = min + 1
	}
	return &gochart.ContinuousRange{Min: min, Max: max}
}

func xRange(n int) *gochart.ContinuousRange {
	max := float64(n - 1)
	if max < 1 {
		max = 1
	}
	return &gochart.ContinuousRange{Min: 0, Max: max}
}
