package stats

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	xlsx "github.com/360EntSecGroup-Skylar/excelize/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileFormat(t *testing.T) {
	for url, want := range map[string]Format{
		"http://host/api.php":               FormatJSON,
		"countries.geo.json":                FormatJSON,
		"https://host/export/risk.CSV?v=2":  FormatCSV,
		"/tmp/risk.xlsx":                    FormatXLSX,
		"https://host/yearbook/table-1.xls": FormatXLS,
	} {
		assert.Equal(t, want, (&File{URL: url}).Format(), url)
	}
}

func TestLoadDatasetFromServer(t *testing.T) {
	body, err := os.ReadFile("testdata/risk.json")
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	}))
	defer srv.Close()

	ds, err := LoadDataset(context.Background(), NewFetcher(time.Second, nil), srv.URL+"/api.php")
	require.NoError(t, err)
	require.Len(t, ds, 2)
	assert.Equal(t, []string{"Year", "Entity", "Smoking", "Alcohol"}, ds[0].Keys)
	assert.Equal(t, "2019", ds[1].Year())
	assert.Equal(t, 15.0, ds[1].Float("Alcohol"))
}

func TestLoadDatasetHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := LoadDataset(context.Background(), NewFetcher(time.Second, nil), srv.URL)
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, srv.URL, fe.Source)
	assert.Contains(t, err.Error(), "404")
}

func TestLoadDatasetBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>oops</html>`))
	}))
	defer srv.Close()

	_, err := LoadDataset(context.Background(), NewFetcher(time.Second, nil), srv.URL)
	var fe *FetchError
	assert.True(t, errors.As(err, &fe))
}

func TestLoadDatasetMissingFile(t *testing.T) {
	_, err := LoadDataset(context.Background(), NewFetcher(time.Second, nil), "testdata/nope.json")
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestDecodeJSONRejectsNonArray(t *testing.T) {
	_, err := DecodeJSON([]byte(`{"Year": 2019}`))
	assert.Error(t, err)

	_, err = DecodeJSON([]byte(`[{"Year": 2019}, 3]`))
	assert.Error(t, err)

	ds, err := DecodeJSON([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, ds)
}

func TestDecodeJSONValues(t *testing.T) {
	ds, err := DecodeJSON([]byte(`[{"Year": 2019, "Entity": "A", "N": 12.5, "S": "7", "Z": null, "B": true}]`))
	require.NoError(t, err)
	r := ds[0]
	assert.Equal(t, "2019", r.Year())
	assert.Equal(t, 12.5, r.Float("N"))
	assert.Equal(t, 7.0, r.Float("S"))
	assert.True(t, math.IsNaN(r.Float("Z")))
	assert.True(t, math.IsNaN(r.Float("B")))
	assert.True(t, math.IsNaN(r.Float("missing")))
}

func TestLoadDatasetCSV(t *testing.T) {
	ds, err := LoadDataset(context.Background(), NewFetcher(time.Second, nil), "testdata/risk.csv")
	require.NoError(t, err)
	require.Len(t, ds, 3)

	idx, err := NewIndex(ds)
	require.NoError(t, err)
	assert.Equal(t, []string{"Smoking", "Alcohol"}, idx.RiskFactors)
	assert.Equal(t, []string{"2019", "2020"}, idx.Years)
	assert.True(t, math.IsNaN(ds[2].Float("Alcohol")))
}

func TestDecodeXLSX(t *testing.T) {
	wb := xlsx.NewFile()
	sheet := "Sheet1"
	require.NoError(t, wb.SetSheetRow(sheet, "A1", &[]interface{}{"Year", "Entity", "Smoking", "Alcohol"}))
	require.NoError(t, wb.SetSheetRow(sheet, "A2", &[]interface{}{"2019", "A", "10", "5"}))
	require.NoError(t, wb.SetSheetRow(sheet, "A3", &[]interface{}{"2019", "B", "20", "15"}))

	buf, err := wb.WriteToBuffer()
	require.NoError(t, err)

	ds, err := (&File{URL: "risk.xlsx", Content: buf.Bytes()}).Dataset()
	require.NoError(t, err)
	require.Len(t, ds, 2)

	s, err := ProjectChart(ds, []string{"Smoking", "Alcohol"}, "2019", "B")
	require.NoError(t, err)
	assert.Equal(t, []float64{20, 15}, s.Values)
}

func TestDecodeXLSInvalid(t *testing.T) {
	_, err := (&File{URL: "risk.xls", Content: []byte("not a workbook")}).Dataset()
	var fe *FetchError
	assert.True(t, errors.As(err, &fe))
}
