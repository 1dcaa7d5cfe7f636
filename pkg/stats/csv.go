package stats

import (
	"bytes"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// DecodeCSV reads a CSV export with a header row. Every column is kept as
// text; numbers are parsed when a projection reads them.
func DecodeCSV(data []byte) (Dataset, error) {
	df := dataframe.ReadCSV(bytes.NewReader(data),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, df.Err
	}
	return rowsToDataset(df.Records()), nil
}
