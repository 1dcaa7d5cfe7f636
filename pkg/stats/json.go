package stats

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// DecodeJSON reads a JSON array of flat objects. gjson walks the objects in
// document order, which keeps the column order the risk factors come from.
func DecodeJSON(data []byte) (Dataset, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid JSON")
	}

	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, fmt.Errorf("expected a JSON array, got %s", root.Type)
	}

	ds := Dataset{}
	var err error
	i := 0
	root.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			err = fmt.Errorf("element %d is not an object", i)
			return false
		}

		var r Record
		item.ForEach(func(k, v gjson.Result) bool {
			r.Set(k.String(), jsonText(v))
			return true
		})
		ds = append(ds, r)
		i++
		return true
	})
	if err != nil {
		return nil, err
	}
	return ds, nil
}

// jsonText keeps numbers in their literal form so "2019" and 2019 select
// the same year.
func jsonText(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Null:
		return ""
	default:
		return v.Raw
	}
}
