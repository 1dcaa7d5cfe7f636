// Package dashboard wires the risk factor table and the country boundaries
// to two charts and a choropleth map, driven by three selectors.
package dashboard

import (
	"errors"
	"fmt"
	"sync"

	"github.com/anrid/risk-dashboard/pkg/geo"
	"github.com/anrid/risk-dashboard/pkg/stats"
	"go.uber.org/zap"
)

// Selection is the value of the three selectors.
type Selection struct {
	Year       string `json:"year" form:"year"`
	Country    string `json:"country" form:"country"`
	RiskFactor string `json:"riskFactor" form:"riskFactor"`
}

// State is a snapshot of the selectors and what has been loaded.
type State struct {
	DataReady     bool      `json:"dataReady"`
	MapReady      bool      `json:"mapReady"`
	Years         []string  `json:"years"`
	Countries     []string  `json:"countries"`
	RiskFactors   []string  `json:"riskFactors"`
	Selection     Selection `json:"selection"`
	ChartError    string    `json:"chartError,omitempty"`
	MapError      string    `json:"mapError,omitempty"`
	BoundaryCount int       `json:"boundaryCount"`
}

// Controller owns the selection and re-projects the charts and the map
// when it changes:
//
//	year        -> charts and map
//	country     -> charts
//	risk factor -> map
//
// Data and boundaries arrive independently; the map is drawn once both are
// present. All methods are safe for concurrent use.
type Controller struct {
	charts  []ChartView
	maps    MapView
	palette []string
	color   string
	log     *zap.Logger
	metrics *Metrics

	mu         sync.Mutex
	data       stats.Dataset
	index      *stats.Index
	boundaries geo.Boundaries
	sel        Selection
	chartErr   error
	mapErr     error
}

type Option func(*Controller)

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.log = l }
}

func WithPalette(p []string) Option {
	return func(c *Controller) { c.palette = p }
}

func WithChartColor(color string) Option {
	return func(c *Controller) { c.color = color }
}

func WithMetrics(m *Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

func NewController(charts []ChartView, maps MapView, opts ...Option) *Controller {
	c := &Controller{
		charts:  charts,
		maps:    maps,
		palette: geo.DefaultPalette,
		log:     zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SetDataset indexes the table, selects the first option of every selector
// and draws the charts, plus the map if the boundaries are already here.
func (c *Controller) SetDataset(ds stats.Dataset) error {
	idx, err := stats.NewIndex(ds)
	if err != nil {
		return err
	}
	for _, d := range []struct {
		name    string
		options []string
	}{
		{"year", idx.Years},
		{"country", idx.Countries},
		{"risk factor", idx.RiskFactors},
	} {
		if len(d.options) == 0 {
			return fmt.Errorf("%s: %w", d.name, ErrEmptyDomain)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.data = ds
	c.index = idx
	c.sel = Selection{
		Year:       idx.Years[0],
		Country:    idx.Countries[0],
		RiskFactor: idx.RiskFactors[0],
	}
	c.log.Info("dataset loaded",
		zap.Int("rows", len(ds)),
		zap.Int("years", len(idx.Years)),
		zap.Int("countries", len(idx.Countries)),
		zap.Strings("risk_factors", idx.RiskFactors),
	)

	return c.redraw(true, c.boundaries != nil)
}

// SetBoundaries stores the country polygons and draws the map if the
// dataset is already here.
func (c *Controller) SetBoundaries(b geo.Boundaries) error {
	if b == nil {
		b = geo.Boundaries{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.boundaries = b
	c.log.Info("boundaries loaded", zap.Int("features", len(b)))

	if c.index == nil {
		return nil
	}
	return c.redraw(false, true)
}

func (c *Controller) SetYear(year string) error {
	return c.Select(func(s *Selection) { s.Year = year })
}

func (c *Controller) SetCountry(country string) error {
	return c.Select(func(s *Selection) { s.Country = country })
}

func (c *Controller) SetRiskFactor(riskFactor string) error {
	return c.Select(func(s *Selection) { s.RiskFactor = riskFactor })
}

// Apply sets all three selectors at once, redrawing only what depends on
// the fields that changed.
func (c *Controller) Apply(sel Selection) error {
	return c.Select(func(s *Selection) { *s = sel })
}

// Select edits a copy of the selection. Every value must belong to its
// selector's options. The new selection is kept even when a projection
// fails; the failing view keeps showing its previous content.
func (c *Controller) Select(edit func(*Selection)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.index == nil {
		return ErrNotInitialized
	}

	next := c.sel
	edit(&next)

	if !c.index.HasYear(next.Year) {
		return fmt.Errorf("year %q: %w", next.Year, ErrUnknownOption)
	}
	if !c.index.HasCountry(next.Country) {
		return fmt.Errorf("country %q: %w", next.Country, ErrUnknownOption)
	}
	if !c.index.HasRiskFactor(next.RiskFactor) {
		return fmt.Errorf("risk factor %q: %w", next.RiskFactor, ErrUnknownOption)
	}

	prev := c.sel
	c.sel = next

	yearChanged := prev.Year != next.Year
	charts := yearChanged || prev.Country != next.Country
	maps := (yearChanged || prev.RiskFactor != next.RiskFactor) && c.boundaries != nil

	c.log.Debug("selection changed",
		zap.String("year", next.Year),
		zap.String("country", next.Country),
		zap.String("risk_factor", next.RiskFactor),
		zap.Bool("charts", charts),
		zap.Bool("map", maps),
	)
	return c.redraw(charts, maps)
}

// redraw must be called with mu held.
func (c *Controller) redraw(charts, maps bool) error {
	var errs []error
	if charts {
		c.chartErr = c.updateCharts()
		errs = append(errs, c.chartErr)
	}
	if maps {
		c.mapErr = c.updateMap()
		errs = append(errs, c.mapErr)
	}
	return errors.Join(errs...)
}

func (c *Controller) updateCharts() error {
	series, err := stats.ProjectChart(c.data, c.index.RiskFactors, c.sel.Year, c.sel.Country)
	c.metrics.observeProjection("chart", err)
	if err != nil {
		c.log.Warn("chart projection failed", zap.Error(err))
		return err
	}
	if c.color != "" {
		series.Color = c.color
	}
	for _, v := range c.charts {
		v.Update(series)
	}
	return nil
}

func (c *Controller) updateMap() error {
	layer, err := geo.ProjectMap(c.data, c.sel.Year, c.sel.RiskFactor, c.boundaries, c.palette)
	c.metrics.observeProjection("map", err)
	if err != nil {
		c.log.Warn("map projection failed", zap.Error(err))
		return err
	}
	if c.maps != nil {
		c.maps.ReplaceLayer(layer)
	}
	return nil
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := State{
		DataReady:     c.index != nil,
		MapReady:      c.index != nil && c.boundaries != nil,
		Years:         []string{},
		Countries:     []string{},
		RiskFactors:   []string{},
		Selection:     c.sel,
		BoundaryCount: len(c.boundaries),
	}
	if c.index != nil {
		st.Years = append(st.Years, c.index.Years...)
		st.Countries = append(st.Countries, c.index.Countries...)
		st.RiskFactors = append(st.RiskFactors, c.index.RiskFactors...)
	}
	if c.chartErr != nil {
		st.ChartError = c.chartErr.Error()
	}
	if c.mapErr != nil {
		st.MapError = c.mapErr.Error()
	}
	return st
}
