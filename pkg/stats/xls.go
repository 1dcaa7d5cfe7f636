package stats

import (
	"bytes"
	"errors"
	"fmt"

	xlsx "github.com/360EntSecGroup-Skylar/excelize/v2"
	"github.com/anrid/xls"
)

// DecodeXLS reads the first sheet of a legacy Excel workbook.
func DecodeXLS(data []byte) (Dataset, error) {
	rows, err := ExtractDataFromXLS(data)
	if err != nil {
		return nil, err
	}
	return rowsToDataset(rows), nil
}

// DecodeXLSX reads the first sheet of an Excel workbook.
func DecodeXLSX(data []byte) (Dataset, error) {
	rows, err := ExtractDataFromXLSX(data)
	if err != nil {
		return nil, err
	}
	return rowsToDataset(rows), nil
}

// ExtractDataFromXLS returns every row of the first sheet. The XLS reader
// panics on some malformed files, so a panic is reported as an error.
func ExtractDataFromXLS(data []byte) (rows [][]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("could not read XLS file: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("could not read XLS file: %w", err)
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, errors.New("XLS file has no sheets")
	}

	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		var cols []string
		for j := 0; j <= row.LastCol(); j++ {
			cols = append(cols, row.Col(j))
		}
		rows = append(rows, cols)
	}
	return rows, nil
}

func ExtractDataFromXLSX(data []byte) ([][]string, error) {
	wb, err := xlsx.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("could not read XLSX file: %w", err)
	}

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("XLSX file has no sheets")
	}

	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("could not get rows for sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}
