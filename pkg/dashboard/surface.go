package dashboard

import (
	"sync"

	"github.com/anrid/risk-dashboard/pkg/geo"
	"github.com/anrid/risk-dashboard/pkg/stats"
)

// ChartView receives a new series whenever the chart selection changes.
type ChartView interface {
	Update(s *stats.ChartSeries)
}

// MapView receives a new region layer whenever the map selection changes.
// The new layer replaces the old one; there is never more than one.
type MapView interface {
	ReplaceLayer(l *geo.RegionLayer)
}

// ChartSurface keeps the latest series for one chart kind.
type ChartSurface struct {
	Kind string

	mu      sync.RWMutex
	series  *stats.ChartSeries
	version int
}

func NewChartSurface(kind string) *ChartSurface {
	return &ChartSurface{Kind: kind}
}

func (s *ChartSurface) Update(series *stats.ChartSeries) {
	s.mu.Lock()
	s.series = series
	s.version++
	s.mu.Unlock()
}

// Series returns the current series and how many updates it has seen.
// The series is nil until the first update.
func (s *ChartSurface) Series() (*stats.ChartSeries, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.series, s.version
}

// MapSurface holds the single region layer currently on the map.
type MapSurface struct {
	mu      sync.RWMutex
	layer   *geo.RegionLayer
	version int
}

func NewMapSurface() *MapSurface {
	return &MapSurface{}
}

func (m *MapSurface) ReplaceLayer(l *geo.RegionLayer) {
	m.mu.Lock()
	m.layer = l
	m.version++
	m.mu.Unlock()
}

func (m *MapSurface) Layer() (*geo.RegionLayer, int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.layer, m.version
}
