package stats

import (
	"encoding/json"
	"fmt"
	"math"
)

// DefaultChartColor is shared by the line and the bar chart.
const DefaultChartColor = "#ffe1ff"

// ChartSeries is one country's risk factor values for one year.
type ChartSeries struct {
	Year    string
	Country string
	Labels  []string
	Values  []float64
	Color   string
}

// ProjectChart picks the first row for (year, country) and reads every risk
// factor from it, in risk factor order. Values that do not parse stay NaN.
func ProjectChart(ds Dataset, riskFactors []string, year, country string) (*ChartSeries, error) {
	row, ok := ds.Find(year, country)
	if !ok {
		return nil, fmt.Errorf("year %q, country %q: %w", year, country, ErrNoMatchingRow)
	}

	s := &ChartSeries{
		Year:    year,
		Country: country,
		Labels:  append([]string(nil), riskFactors...),
		Values:  make([]float64, len(riskFactors)),
		Color:   DefaultChartColor,
	}
	for i, f := range riskFactors {
		s.Values[i] = row.Float(f)
	}
	return s, nil
}

// MarshalJSON writes NaN and infinite values as null, since JSON has no
// representation for them.
func (s *ChartSeries) MarshalJSON() ([]byte, error) {
	values := make([]*float64, len(s.Values))
	for i := range s.Values {
		v := s.Values[i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		values[i] = &v
	}
	return json.Marshal(struct {
		Year   string     `json:"year"`
		Label  string     `json:"label"`
		Labels []string   `json:"labels"`
		Values []*float64 `json:"values"`
		Color  string     `json:"color"`
	}{s.Year, s.Country, s.Labels, values, s.Color})
}
