package stats

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyDataset  = errors.New("dataset is empty")
	ErrNoMatchingRow = errors.New("no row matches the selection")
)

// FetchError is returned when a source cannot be downloaded, read or decoded.
// A failed fetch is terminal for that source; nothing retries it.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
