package handler

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// ValidationError maps field names to messages.
type ValidationError url.Values

// NewValidationError creates an empty ValidationError.
func NewValidationError() ValidationError {
	return make(ValidationError)
}

func (e ValidationError) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if msgs := e[f]; len(msgs) > 0 {
			parts = append(parts, fmt.Sprintf("%s: %s", f, msgs[0]))
		}
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Add appends a message for field.
func (e ValidationError) Add(field, message string) {
	url.Values(e).Add(field, message)
}

// Has reports whether field has any message.
func (e ValidationError) Has(field string) bool {
	return len(e[field]) > 0
}

// IsEmpty reports whether no field failed.
func (e ValidationError) IsEmpty() bool {
	return len(e) == 0
}

// Err returns e as an error, or nil when empty.
func (e ValidationError) Err() error {
	if e.IsEmpty() {
		return nil
	}
	return e
}
