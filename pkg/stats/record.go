package stats

import "math"

const (
	YearKey   = "Year"
	EntityKey = "Entity"
)

// Record is one row of the risk factor table.
// Keys keep the order in which the source listed them, which is what the
// risk factor columns are derived from.
type Record struct {
	Keys   []string
	Values map[string]string
}

// NewRecord builds a record from parallel key/value slices.
// A repeated key keeps its first position and its last value.
func NewRecord(keys, values []string) Record {
	r := Record{Values: make(map[string]string, len(keys))}
	for i, k := range keys {
		var v string
		if i < len(values) {
			v = values[i]
		}
		r.Set(k, v)
	}
	return r
}

func (r *Record) Set(key, value string) {
	if r.Values == nil {
		r.Values = make(map[string]string)
	}
	if _, ok := r.Values[key]; !ok {
		r.Keys = append(r.Keys, key)
	}
	r.Values[key] = value
}

func (r Record) Year() string   { return r.Values[YearKey] }
func (r Record) Entity() string { return r.Values[EntityKey] }

// Float returns the numeric value of a field. Missing fields are NaN.
func (r Record) Float(key string) float64 {
	v, ok := r.Values[key]
	if !ok {
		return math.NaN()
	}
	return ParseFloat(v)
}

// Dataset is the full table as fetched. It is never modified after load.
type Dataset []Record

// ForYear returns the rows of a year, in dataset order.
func (ds Dataset) ForYear(year string) Dataset {
	var out Dataset
	for _, r := range ds {
		if r.Year() == year {
			out = append(out, r)
		}
	}
	return out
}

// Find returns the first row matching year and entity.
func (ds Dataset) Find(year, entity string) (Record, bool) {
	for _, r := range ds {
		if r.Year() == year && r.Entity() == entity {
			return r, true
		}
	}
	return Record{}, false
}
