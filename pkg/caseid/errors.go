package caseid

import (
	"errors"
	"fmt"
)

// Sentinel errors reported by the parsers. Callers test for them with
// [errors.Is]; the concrete error is usually a [*ParseError].
var (
	ErrInvalidCaseType             = errors.New("caseid: unrecognized case type")
	ErrInvalidCaseNumber           = errors.New("caseid: invalid case number")
	ErrInvalidCaseYear             = errors.New("caseid: invalid case year")
	ErrMalformedCombinedIdentifier = errors.New("caseid: malformed combined identifier")
)

// Field names the identifier component a [ParseError] refers to.
type Field string

// Identifier fields.
const (
	FieldType     Field = "type"
	FieldNumber   Field = "number"
	FieldYear     Field = "year"
	FieldCombined Field = "combined"
)

// ParseError describes a rejected transcript.
type ParseError struct {
	Field  Field
	Input  string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%v: %q: %s", e.Err, e.Input, e.Reason)
	}
	return fmt.Sprintf("%v: %q", e.Err, e.Input)
}

func (e *ParseError) Unwrap() error { return e.Err }
