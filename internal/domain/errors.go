package domain

import "fmt"

// ValidationError reports a field-level invariant violation during
// construction of a domain value. Construction is the single enforcement
// point; nothing downstream re-validates.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %q: %s", e.Field, e.Reason)
}

func invalidField(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
