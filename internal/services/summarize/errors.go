// errors.go defines the user-visible validation error taxonomy.
//
// These are the only errors that surface as 4xx rejections: everything else
// in the pipeline (LLM transport failures, unparseable responses, cache store
// errors) degrades to the fallback summary instead of failing the request.
package summarize

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a validation failure.
type ErrorKind string

const (
	KindInvalidFormat ErrorKind = "invalid_format" // timestamp doesn't match MM:SS / HH:MM:SS / "end"
	KindRangeError    ErrorKind = "range_error"    // start >= end, or resolved range shorter than 60s
	KindOutOfBounds   ErrorKind = "out_of_bounds"  // start past the end of the transcript
	KindInvalidMode   ErrorKind = "invalid_mode"
	KindInvalidTone   ErrorKind = "invalid_tone"
)

// ValidationError is a rejected request. It is detected before any external
// call is made, so a rejected request never costs an LLM invocation.
type ValidationError struct {
	Kind    ErrorKind
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func validationErrorf(kind ErrorKind, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
