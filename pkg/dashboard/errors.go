package dashboard

import "errors"

var (
	ErrEmptyDomain    = errors.New("selector has no options")
	ErrUnknownOption  = errors.New("value is not one of the selector's options")
	ErrNotInitialized = errors.New("dashboard has no data yet")
)
