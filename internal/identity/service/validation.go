package service

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Field error messages surfaced to callers. Kept short and per-field so the
// boundary can render them next to the offending input.
const (
	msgBlank          = "can't be blank"
	msgInvalid        = "is invalid"
	msgTaken          = "has already been taken"
	msgMustAccept     = "must be accepted"
	msgEmailImmutable = "cannot be changed"
)

// emailPattern accepts an ASCII local part and a dot-separated domain ending
// in a 2+ letter TLD, case-insensitively. Validation runs against the value
// as the caller supplied it; lower-casing happens later, at write time.
var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@([A-Za-z0-9\-]+\.)+[A-Za-z]{2,}$`)

// ValidationError enumerates per-field causes of a rejected write. It is
// recovered at the boundary and surfaced per-field to the caller, never
// fatal.
type ValidationError struct {
	Fields map[string][]string
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

func (e *ValidationError) add(field, msg string) {
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *ValidationError) empty() bool { return len(e.Fields) == 0 }

// orNil returns the error when it holds any field failures, nil otherwise.
// Returning a typed nil through the error interface would read as non-nil.
func (e *ValidationError) orNil() error {
	if e.empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s %s", f, strings.Join(e.Fields[f], ", ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func validEmailFormat(email string) bool {
	return emailPattern.MatchString(email)
}
