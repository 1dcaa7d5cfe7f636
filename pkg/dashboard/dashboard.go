package dashboard

import "go.uber.org/zap"

// Dashboard bundles the controller with the three surfaces it draws on.
type Dashboard struct {
	Controller *Controller
	Line       *ChartSurface
	Bar        *ChartSurface
	Map        *MapSurface

	log     *zap.Logger
	metrics *Metrics
}

type Options struct {
	Palette    []string
	ChartColor string
}

// New creates an empty dashboard. Until Load (or SetDataset) runs, the
// selectors have no options and nothing is drawn.
func New(log *zap.Logger, metrics *Metrics, o Options) *Dashboard {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Dashboard{
		Line:    NewChartSurface("line"),
		Bar:     NewChartSurface("bar"),
		Map:     NewMapSurface(),
		log:     log,
		metrics: metrics,
	}

	opts := []Option{WithLogger(log.Named("controller")), WithMetrics(metrics)}
	if len(o.Palette) > 0 {
		opts = append(opts, WithPalette(o.Palette))
	}
	if o.ChartColor != "" {
		opts = append(opts, WithChartColor(o.ChartColor))
	}
	d.Controller = NewController([]ChartView{d.Line, d.Bar}, d.Map, opts...)
	return d
}
