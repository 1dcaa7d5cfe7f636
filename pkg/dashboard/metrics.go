package dashboard

import (
	"errors"
	"strconv"
	"time"

	"github.com/anrid/risk-dashboard/pkg/geo"
	"github.com/anrid/risk-dashboard/pkg/stats"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "risk_dashboard"

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	projections *prometheus.CounterVec
	fetches     *prometheus.HistogramVec
	requests    *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		projections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "projections_total",
			Help:      "Chart and map projections by outcome.",
		}, []string{"view", "outcome"}),
		fetches: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Time spent fetching and decoding a source.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source", "outcome"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
	}
	reg.MustRegister(m.projections, m.fetches, m.requests)
	return m
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, stats.ErrNoMatchingRow):
		return "no_matching_row"
	case errors.Is(err, geo.ErrNoDataForYear):
		return "no_data_for_year"
	}
	var fe *stats.FetchError
	if errors.As(err, &fe) {
		return "fetch_error"
	}
	return "error"
}

func (m *Metrics) observeProjection(view string, err error) {
	if m == nil {
		return
	}
	m.projections.WithLabelValues(view, outcome(err)).Inc()
}

func (m *Metrics) observeFetch(source string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(source, outcome(err)).Observe(time.Since(start).Seconds())
}

func (m *Metrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if m == nil {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
