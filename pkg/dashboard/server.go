package dashboard

import (
	"bytes"
	"errors"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/anrid/risk-dashboard/pkg/chart"
	"github.com/anrid/risk-dashboard/pkg/geo"
	"github.com/anrid/risk-dashboard/pkg/stats"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gonum.org/v1/plot/vg"
)

const (
	mapWidth  = 10 * vg.Inch
	mapHeight = 5 * vg.Inch
)

// Server exposes the dashboard over HTTP: the selectors, the projections
// as JSON and PNG, and a plain HTML page tying them together.
type Server struct {
	d      *Dashboard
	log    *zap.Logger
	engine *gin.Engine
}

// NewServer builds the router. gatherer may be nil to leave out /metrics.
func NewServer(d *Dashboard, gatherer prometheus.Gatherer) *Server {
	s := &Server{
		d:      d,
		log:    d.log.Named("http"),
		engine: gin.New(),
	}

	r := s.engine
	r.Use(gin.Recovery(), s.logRequests(), d.metrics.middleware())
	r.SetHTMLTemplate(pageTemplate)

	r.GET("/", s.page)
	r.POST("/", s.submit)
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	api := r.Group("/api")
	api.GET("/state", s.state)
	api.PUT("/selection/:selector", s.selectOne)
	api.GET("/chart", s.chartJSON)
	api.GET("/map", s.mapJSON)

	r.GET("/chart/line.png", s.chartPNG(d.Line, chart.RenderLine))
	r.GET("/chart/bar.png", s.chartPNG(d.Bar, chart.RenderBar))
	r.GET("/map.png", s.mapPNG)

	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	return s
}

func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
		)
	}
}

// statusFor maps dashboard errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrUnknownOption):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotInitialized):
		return http.StatusServiceUnavailable
	case errors.Is(err, stats.ErrNoMatchingRow), errors.Is(err, geo.ErrNoDataForYear):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func abort(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusFor(err), gin.H{"error": err.Error()})
}

func (s *Server) state(c *gin.Context) {
	c.JSON(http.StatusOK, s.d.Controller.State())
}

type selectRequest struct {
	Value string `json:"value"`
}

func (s *Server) selectOne(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var err error
	switch c.Param("selector") {
	case "year":
		err = s.d.Controller.SetYear(req.Value)
	case "country":
		err = s.d.Controller.SetCountry(req.Value)
	case "risk-factor":
		err = s.d.Controller.SetRiskFactor(req.Value)
	default:
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unknown selector " + c.Param("selector")})
		return
	}
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, s.d.Controller.State())
}

func (s *Server) chartJSON(c *gin.Context) {
	series, _ := s.d.Line.Series()
	if series == nil {
		abort(c, ErrNotInitialized)
		return
	}
	c.JSON(http.StatusOK, series)
}

func (s *Server) mapJSON(c *gin.Context) {
	layer, _ := s.d.Map.Layer()
	if layer == nil {
		abort(c, ErrNotInitialized)
		return
	}
	c.JSON(http.StatusOK, layer)
}

func (s *Server) chartPNG(surface *ChartSurface, render func(*stats.ChartSeries, io.Writer) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		series, _ := surface.Series()
		if series == nil {
			abort(c, ErrNotInitialized)
			return
		}

		var buf bytes.Buffer
		if err := render(series, &buf); err != nil {
			s.log.Warn("render chart", zap.String("kind", surface.Kind), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.Header("Cache-Control", "no-store")
		c.Data(http.StatusOK, "image/png", buf.Bytes())
	}
}

func (s *Server) mapPNG(c *gin.Context) {
	layer, _ := s.d.Map.Layer()
	if layer == nil {
		abort(c, ErrNotInitialized)
		return
	}

	var buf bytes.Buffer
	if err := geo.RenderPNG(layer, &buf, mapWidth, mapHeight); err != nil {
		s.log.Warn("render map", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

type pageData struct {
	State        State
	ChartVersion int
	MapVersion   int
	Layer        *geo.RegionLayer
	Error        string
}

func (s *Server) render(c *gin.Context, status int, errMsg string) {
	_, cv := s.d.Line.Series()
	layer, mv := s.d.Map.Layer()
	c.HTML(status, "page", pageData{
		State:        s.d.Controller.State(),
		ChartVersion: cv,
		MapVersion:   mv,
		Layer:        layer,
		Error:        errMsg,
	})
}

func (s *Server) page(c *gin.Context) {
	s.render(c, http.StatusOK, "")
}

// submit applies the page's form. A rejected selection re-renders the page
// with the error; otherwise the browser is sent back to the page.
func (s *Server) submit(c *gin.Context) {
	var sel Selection
	if err := c.ShouldBind(&sel); err != nil {
		s.render(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.d.Controller.Apply(sel); err != nil {
		s.render(c, statusFor(err), err.Error())
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

var pageTemplate = template.Must(template.New("page").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>Risk factors</title>
<style>
body{background:#1e1e1e;color:#e0e0e0;font-family:sans-serif;margin:2em}
select{margin-right:1em}
.error{color:#ff6b6b}
img{max-width:100%;display:block;margin:1em 0}
</style>
</head>
<body>
<h1>Deaths by risk factor</h1>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
{{if not .State.DataReady}}
<p>Data is not loaded.</p>
{{else}}
<form method="post" action="/">
<label>Year <select id="yearSelect" name="year">
{{range .State.Years}}<option value="{{.}}"{{if eq . $.State.Selection.Year}} selected{{end}}>{{.}}</option>{{end}}
</select></label>
<label>Country <select id="countrySelect" name="country">
{{range .State.Countries}}<option value="{{.}}"{{if eq . $.State.Selection.Country}} selected{{end}}>{{.}}</option>{{end}}
</select></label>
<label>Risk factor <select id="riskFactorSelect" name="riskFactor">
{{range .State.RiskFactors}}<option value="{{.}}"{{if eq . $.State.Selection.RiskFactor}} selected{{end}}>{{.}}</option>{{end}}
</select></label>
<button type="submit">Show</button>
</form>
{{if .State.ChartError}}<p class="error">{{.State.ChartError}}</p>{{end}}
<img id="lineChart" alt="line chart" src="/chart/line.png?v={{.ChartVersion}}">
<img id="barChart" alt="bar chart" src="/chart/bar.png?v={{.ChartVersion}}">
{{if .State.MapError}}<p class="error">{{.State.MapError}}</p>{{end}}
{{if .Layer}}
<img id="mapContainer" alt="map" src="/map.png?v={{.MapVersion}}">
<table>
<tr><th></th><th>Country</th><th>{{.Layer.RiskFactor}}</th></tr>
{{range .Layer.Regions}}<tr><td style="background:{{.FillColor}}">&nbsp;</td><td>{{.Name}}</td><td>{{.Value}}</td></tr>
{{end}}
</table>
{{else}}
<p>Map is not loaded.</p>
{{end}}
{{end}}
</body>
</html>
`))
