// Package simerr defines the error kinds returned by the simulation core.
package simerr

import "fmt"

// Code is a machine-readable error code.
type Code string

const (
	// CodeInvalidDistribution marks an item-count distribution the fill
	// engine cannot converge on (empty, zero counts, bad probabilities).
	CodeInvalidDistribution Code = "INVALID_DISTRIBUTION"

	// CodeInvalidParameters marks simulation or inventory parameters that
	// are out of range.
	CodeInvalidParameters Code = "INVALID_PARAMETERS"
)

// Error is a coded validation failure.
type Error struct {
	Code    Code
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Field, e.Message)
}

// Is matches any *Error carrying the same code, so callers can test
// against ErrInvalidDistribution and ErrInvalidParameters.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrInvalidDistribution = &Error{Code: CodeInvalidDistribution, Message: "invalid item distribution"}
	ErrInvalidParameters   = &Error{Code: CodeInvalidParameters, Message: "invalid parameters"}
)

// InvalidDistribution builds a distribution error.
func InvalidDistribution(format string, args ...any) error {
	return &Error{Code: CodeInvalidDistribution, Message: fmt.Sprintf(format, args...)}
}

// InvalidParameter builds a parameter error naming the offending field.
func InvalidParameter(field, format string, args ...any) error {
	return &Error{Code: CodeInvalidParameters, Field: field, Message: fmt.Sprintf(format, args...)}
}
