package notes

import (
	"errors"
	"fmt"
)

// ErrUnknownFormat is returned when no extractor is registered for a format.
var ErrUnknownFormat = errors.New("unknown document format")

const parseErrorMessage = "invalid or malformed file"

// ParseError hides the parser diagnostic behind a generic message. The cause
// stays reachable through errors.Unwrap for logging.
type ParseError struct {
	Format Format
	Err    error
}

func (e *ParseError) Error() string { return parseErrorMessage }

func (e *ParseError) Unwrap() error { return e.Err }

// InputError reports a request the reconciler refuses, either up front or
// because the document's amounts cannot be represented in the result.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
