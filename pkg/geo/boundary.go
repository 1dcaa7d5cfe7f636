// Package geo joins the risk factor table to country boundaries and turns
// the result into a styled choropleth layer.
package geo

import (
	"context"
	"errors"
	"fmt"

	"github.com/anrid/risk-dashboard/pkg/stats"
	"github.com/tidwall/gjson"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// Feature is one named country polygon.
type Feature struct {
	ID         string
	Name       string
	Geometry   geom.T
	Properties map[string]interface{}
}

// Boundaries is a decoded FeatureCollection, in document order.
type Boundaries []Feature

// DecodeBoundaries reads a GeoJSON FeatureCollection. The join key is
// properties.name. Features without a geometry are dropped since there is
// nothing to draw for them.
func DecodeBoundaries(data []byte) (Boundaries, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid JSON")
	}

	root := gjson.ParseBytes(data)
	if t := root.Get("type").String(); t != "FeatureCollection" {
		return nil, fmt.Errorf("expected a FeatureCollection, got %q", t)
	}

	out := Boundaries{}
	var err error
	root.Get("features").ForEach(func(_, f gjson.Result) bool {
		raw := f.Get("geometry")
		if !raw.Exists() || raw.Type == gjson.Null {
			return true
		}

		var g geom.T
		if e := geojson.Unmarshal([]byte(raw.Raw), &g); e != nil {
			err = fmt.Errorf("feature %q: %w", f.Get("properties.name").String(), e)
			return false
		}

		props, _ := f.Get("properties").Value().(map[string]interface{})
		out = append(out, Feature{
			ID:         f.Get("id").String(),
			Name:       f.Get("properties.name").String(),
			Geometry:   g,
			Properties: props,
		})
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LoadBoundaries fetches and decodes a boundary file.
func LoadBoundaries(ctx context.Context, f *stats.Fetcher, location string) (Boundaries, error) {
	data, err := f.Download(ctx, location)
	if err != nil {
		return nil, err
	}

	b, err := DecodeBoundaries(data)
	if err != nil {
		return nil, &stats.FetchError{Source: location, Err: err}
	}
	return b, nil
}

// Bounds returns the extent of every feature.
func (b Boundaries) Bounds() *geom.Bounds {
	bounds := geom.NewBounds(geom.XY)
	for _, f := range b {
		bounds.Extend(f.Geometry)
	}
	return bounds
}
