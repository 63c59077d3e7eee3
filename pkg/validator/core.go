package validator

import (
	"errors"
	"fmt"
	"strings"
)

type Numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// ValidationError is a single failed rule.
type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(ve))
	for _, e := range ve {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (ve ValidationErrors) Has(field string) bool {
	for _, e := range ve {
		if e.Field == field {
			return true
		}
	}
	return false
}

// Get returns the messages reported for field.
func (ve ValidationErrors) Get(field string) []string {
	var messages []string
	for _, e := range ve {
		if e.Field == field {
			messages = append(messages, e.Message)
		}
	}
	return messages
}

// Rule is a deferred check and the error reported when it fails.
type Rule struct {
	Check func() bool
	Error ValidationError
}

// Apply runs every rule and returns ValidationErrors, or nil when all pass.
func Apply(rules ...Rule) error {
	var errs ValidationErrors
	for _, rule := range rules {
		if !rule.Check() {
			errs = append(errs, rule.Error)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Extract returns the ValidationErrors inside err, if any.
func Extract(err error) (ValidationErrors, bool) {
	var errs ValidationErrors
	if errors.As(err, &errs) {
		return errs, true
	}
	return nil, false
}
