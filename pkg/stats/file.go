package stats

import (
	"context"
	"net/url"
	"path"
	"strings"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
)

// File is a downloaded dataset document.
// This is typically a JSON array served by an API, but CSV and Excel
// exports of the same table are accepted as well.
type File struct {
	URL     string
	Content []byte
}

// Fetch downloads the document behind location.
func Fetch(ctx context.Context, f *Fetcher, location string) (*File, error) {
	data, err := f.Download(ctx, location)
	if err != nil {
		return nil, err
	}
	return &File{URL: location, Content: data}, nil
}

// Format guesses the document format from the file extension. Anything
// unknown, such as an API endpoint, is treated as JSON.
func (f *File) Format() Format {
	p := f.URL
	if u, err := url.Parse(f.URL); err == nil && u.Path != "" {
		p = u.Path
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".csv":
		return FormatCSV
	case ".xlsx":
		return FormatXLSX
	case ".xls":
		return FormatXLS
	}
	return FormatJSON
}

// Dataset decodes the file. Decode failures are reported as *FetchError.
func (f *File) Dataset() (Dataset, error) {
	var (
		ds  Dataset
		err error
	)
	switch f.Format() {
	case FormatCSV:
		ds, err = DecodeCSV(f.Content)
	case FormatXLSX:
		ds, err = DecodeXLSX(f.Content)
	case FormatXLS:
		ds, err = DecodeXLS(f.Content)
	default:
		ds, err = DecodeJSON(f.Content)
	}
	if err != nil {
		return nil, &FetchError{Source: f.URL, Err: err}
	}
	return ds, nil
}

// LoadDataset fetches and decodes a dataset in one step.
func LoadDataset(ctx context.Context, f *Fetcher, location string) (Dataset, error) {
	file, err := Fetch(ctx, f, location)
	if err != nil {
		return nil, err
	}
	return file.Dataset()
}

// rowsToDataset turns a header row plus data rows into records.
// Blank rows are skipped and short rows leave their trailing fields empty.
func rowsToDataset(rows [][]string) Dataset {
	if len(rows) == 0 {
		return Dataset{}
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}

	ds := make(Dataset, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		ds = append(ds, NewRecord(header, row))
	}
	return ds
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
