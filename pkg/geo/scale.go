package geo

import (
	"errors"
	"fmt"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// DefaultPalette is pink, magenta, red.
var DefaultPalette = []string{"#ffc0cb", "#ff00ff", "#ff0000"}

// NoDataColor is used for values that are not numbers.
const NoDataColor = "#cccccc"

// Scale maps [0, Max] onto a gradient through its stops, interpolating in RGB.
type Scale struct {
	Max   float64
	stops []colorful.Color
}

func NewScale(palette []string, max float64) (*Scale, error) {
	if len(palette) < 2 {
		return nil, errors.New("a color scale needs at least two colors")
	}

	s := &Scale{Max: max}
	for _, hex := range palette {
		c, err := colorful.Hex(hex)
		if err != nil {
			return nil, fmt.Errorf("color %q: %w", hex, err)
		}
		s.stops = append(s.stops, c)
	}
	return s, nil
}

// Position is where v falls on the gradient, clamped into [0, 1].
// NaN values have no position. A zero maximum collapses the domain to a
// point and every number sits at the top of the gradient. A NaN maximum
// puts every number at 0.
func (s *Scale) Position(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return math.NaN()
	case math.IsNaN(s.Max):
		return 0
	case s.Max == 0:
		return 1
	}

	p := v / s.Max
	switch {
	case math.IsNaN(p):
		return math.NaN()
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// At returns the gradient color at position p.
func (s *Scale) At(p float64) colorful.Color {
	segments := len(s.stops) - 1
	x := p * float64(segments)
	i := int(math.Floor(x))
	if i >= segments {
		i = segments - 1
	}
	if i < 0 {
		i = 0
	}
	return s.stops[i].BlendRgb(s.stops[i+1], x-float64(i)).Clamped()
}

// Hex returns the color of value v as #rrggbb.
func (s *Scale) Hex(v float64) string {
	p := s.Position(v)
	if math.IsNaN(p) {
		return NoDataColor
	}
	return s.At(p).Hex()
}
