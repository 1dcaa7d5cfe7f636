package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/anrid/risk-dashboard/pkg/stats"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// sourceServer serves the test dataset and boundary file.
func sourceServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api.php":
			http.ServeFile(w, r, "testdata/risk.json")
		case "/countries.geo.json":
			http.ServeFile(w, r, "testdata/countries.geo.json")
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func loaded(t *testing.T) (*Dashboard, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	d := New(nil, NewMetrics(reg), Options{})

	src := sourceServer(t)
	f := stats.NewFetcher(time.Second, nil)
	require.NoError(t, d.Load(context.Background(), f, src.URL+"/api.php", src.URL+"/countries.geo.json"))
	return d, reg
}

func do(h http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestLoad(t *testing.T) {
	d, _ := loaded(t)

	st := d.Controller.State()
	assert.True(t, st.DataReady)
	assert.True(t, st.MapReady)
	assert.Equal(t, 3, st.BoundaryCount)

	series, _ := d.Line.Series()
	require.NotNil(t, series)
	layer, _ := d.Map.Layer()
	require.NotNil(t, layer)
}

func TestLoadBoundaryFailureKeepsCharts(t *testing.T) {
	d := New(nil, nil, Options{})
	src := sourceServer(t)

	err := d.Load(context.Background(), stats.NewFetcher(time.Second, nil), src.URL+"/api.php", src.URL+"/missing.geo.json")
	var fe *stats.FetchError
	require.True(t, errors.As(err, &fe))

	st := d.Controller.State()
	assert.True(t, st.DataReady)
	assert.False(t, st.MapReady)
	layer, _ := d.Map.Layer()
	assert.Nil(t, layer)
}

func TestLoadDatasetFailureLeavesDashboardEmpty(t *testing.T) {
	d := New(nil, nil, Options{})
	src := sourceServer(t)

	err := d.Load(context.Background(), stats.NewFetcher(time.Second, nil), src.URL+"/nope.php", src.URL+"/countries.geo.json")
	require.Error(t, err)

	st := d.Controller.State()
	assert.False(t, st.DataReady)
	assert.Empty(t, st.Years)
	assert.Equal(t, 3, st.BoundaryCount)

	h := NewServer(d, nil).Handler()
	assert.Equal(t, http.StatusServiceUnavailable, do(h, http.MethodGet, "/api/chart", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(h, http.MethodPut, "/api/selection/year", []byte(`{"value":"2019"}`)).Code)

	page := do(h, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "Data is not loaded.")
}

func TestServerState(t *testing.T) {
	d, _ := loaded(t)
	h := NewServer(d, nil).Handler()

	w := do(h, http.MethodGet, "/api/state", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var st State
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.Equal(t, []string{"Smoking", "Alcohol"}, st.RiskFactors)
	assert.Equal(t, "A", st.Selection.Country)
}

func TestServerSelect(t *testing.T) {
	d, _ := loaded(t)
	h := NewServer(d, nil).Handler()

	w := do(h, http.MethodPut, "/api/selection/country", []byte(`{"value":"B"}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(h, http.MethodGet, "/api/chart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"year":"2019","label":"B","labels":["Smoking","Alcohol"],"values":[20,15],"color":"#ffe1ff"}`, w.Body.String())

	w = do(h, http.MethodPut, "/api/selection/risk-factor", []byte(`{"value":"Alcohol"}`))
	require.Equal(t, http.StatusOK, w.Code)

	w = do(h, http.MethodGet, "/api/map", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fc struct {
		RiskFactor string  `json:"riskFactor"`
		MaxValue   float64 `json:"maxValue"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fc))
	assert.Equal(t, "Alcohol", fc.RiskFactor)
	assert.Equal(t, 15.0, fc.MaxValue)
}

func TestServerSelectErrors(t *testing.T) {
	d, _ := loaded(t)
	h := NewServer(d, nil).Handler()

	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPut, "/api/selection/year", []byte(`{"value":"1990"}`)).Code)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodPut, "/api/selection/colour", []byte(`{"value":"red"}`)).Code)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPut, "/api/selection/year", []byte(`{`)).Code)

	do(h, http.MethodPut, "/api/selection/country", []byte(`{"value":"B"}`))
	w := do(h, http.MethodPut, "/api/selection/year", []byte(`{"value":"2020"}`))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "no row matches")
}

func TestServerImages(t *testing.T) {
	d, _ := loaded(t)
	h := NewServer(d, nil).Handler()

	for _, path := range []string{"/chart/line.png", "/chart/bar.png", "/map.png"} {
		w := do(h, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"), path)
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")), path)
	}
}

func TestServerPage(t *testing.T) {
	d, _ := loaded(t)
	h := NewServer(d, nil).Handler()

	w := do(h, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `id="yearSelect"`)
	assert.Contains(t, body, `<option value="Alcohol">Alcohol</option>`)
	assert.Contains(t, body, `id="mapContainer"`)

	form := url.Values{"year": {"2019"}, "country": {"B"}, "riskFactor": {"Alcohol"}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, Selection{Year: "2019", Country: "B", RiskFactor: "Alcohol"}, d.Controller.State().Selection)

	form.Set("country", "Atlantis")
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Atlantis")
}

func TestServerMetrics(t *testing.T) {
	d, reg := loaded(t)
	h := NewServer(d, reg).Handler()

	do(h, http.MethodGet, "/api/state", nil)
	w := do(h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `risk_dashboard_projections_total{outcome="ok",view="chart"} 1`)
	assert.Contains(t, body, `risk_dashboard_fetch_duration_seconds_count{outcome="ok",source="dataset"} 1`)
	assert.Contains(t, body, `risk_dashboard_http_requests_total{code="200",route="/api/state"} 1`)
}

func TestHealthz(t *testing.T) {
	d := New(nil, nil, Options{})
	w := do(NewServer(d, nil).Handler(), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoadFromDisk(t *testing.T) {
	d := New(nil, nil, Options{})
	require.NoError(t, d.Load(context.Background(), stats.NewFetcher(time.Second, nil), "testdata/risk.json", "testdata/countries.geo.json"))
	assert.True(t, d.Controller.State().MapReady)
}
