package geo

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"math"

	"github.com/anrid/risk-dashboard/pkg/stats"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/xy"
)

var ErrNoDataForYear = errors.New("no data for year")

const (
	FillOpacity  = 0.7
	OutlineColor = "#000"
	OutlineWidth = 1.0
)

// RegionStyle is how one boundary feature is drawn.
type RegionStyle struct {
	Name string
	// Value is 0 when no row matched the feature's name.
	Value       float64
	Matched     bool
	Position    float64
	FillColor   string
	FillOpacity float64
	Color       string
	Weight      float64
	Tooltip     string
	Anchor      geom.Coord
	Geometry    geom.T
}

// RegionLayer is the whole choropleth for one (year, risk factor).
type RegionLayer struct {
	Year       string
	RiskFactor string
	MaxValue   float64
	Regions    []RegionStyle
}

// MaxValue is the largest parsed value of field over rows. NaN values are
// skipped; if nothing parses the result is NaN.
func MaxValue(rows stats.Dataset, field string) float64 {
	max := math.NaN()
	for _, r := range rows {
		v := r.Float(field)
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(max) || v > max {
			max = v
		}
	}
	return max
}

// ProjectMap colors every boundary feature by the value of riskFactor for
// year. Features are joined to rows by exact name; a feature with no row is
// drawn and labelled as 0.
func ProjectMap(ds stats.Dataset, year, riskFactor string, features Boundaries, palette []string) (*RegionLayer, error) {
	rows := ds.ForYear(year)
	if len(rows) == 0 {
		return nil, fmt.Errorf("year %q: %w", year, ErrNoDataForYear)
	}

	max := MaxValue(rows, riskFactor)
	scale, err := NewScale(palette, max)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]stats.Record, len(rows))
	for _, r := range rows {
		if _, dup := byName[r.Entity()]; !dup {
			byName[r.Entity()] = r
		}
	}

	layer := &RegionLayer{
		Year:       year,
		RiskFactor: riskFactor,
		MaxValue:   max,
		Regions:    make([]RegionStyle, 0, len(features)),
	}
	for _, f := range features {
		var value float64
		row, ok := byName[f.Name]
		if ok && f.Name != "" {
			value = row.Float(riskFactor)
		} else {
			ok = false
		}

		region := RegionStyle{
			Name:        f.Name,
			Value:       value,
			Matched:     ok,
			Position:    scale.Position(value),
			FillColor:   scale.Hex(value),
			FillOpacity: FillOpacity,
			Color:       OutlineColor,
			Weight:      OutlineWidth,
			Tooltip:     Tooltip(f.Name, value),
			Geometry:    f.Geometry,
		}
		if c, err := xy.Centroid(f.Geometry); err == nil {
			region.Anchor = c
		}
		layer.Regions = append(layer.Regions, region)
	}
	return layer, nil
}

func Tooltip(name string, value float64) string {
	return fmt.Sprintf("<strong>%s</strong><br>%s deaths", html.EscapeString(name), stats.FormatFloat(value))
}

// MarshalJSON writes the layer as a GeoJSON FeatureCollection with the
// style in each feature's properties, ready for a map widget.
func (l *RegionLayer) MarshalJSON() ([]byte, error) {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(l.Regions))}
	for _, r := range l.Regions {
		props := map[string]interface{}{
			"name":        r.Name,
			"value":       jsonNumber(r.Value),
			"matched":     r.Matched,
			"position":    jsonNumber(r.Position),
			"fillColor":   r.FillColor,
			"fillOpacity": r.FillOpacity,
			"color":       r.Color,
			"weight":      r.Weight,
			"tooltip":     r.Tooltip,
		}
		if len(r.Anchor) >= 2 {
			props["anchor"] = []float64{r.Anchor[0], r.Anchor[1]}
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         r.Name,
			Geometry:   r.Geometry,
			Properties: props,
		})
	}

	body, err := json.Marshal(fc)
	if err != nil {
		return nil, err
	}

	// Layer metadata rides along as foreign members of the collection.
	var out map[string]json.RawMessage
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	for k, v := range map[string]interface{}{
		"year":       l.Year,
		"riskFactor": l.RiskFactor,
		"maxValue":   jsonNumber(l.MaxValue),
	} {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		out[k] = raw
	}
	return json.Marshal(out)
}

func jsonNumber(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
