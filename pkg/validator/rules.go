package validator

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// RequiredString fails for empty or whitespace-only values.
func RequiredString(field, value string) Rule {
	return Rule{
		Check: func() bool { return strings.TrimSpace(value) != "" },
		Error: ValidationError{Field: field, Message: "is required"},
	}
}

func MinNum[T Numeric](field string, value, min T) Rule {
	return Rule{
		Check: func() bool { return value >= min },
		Error: ValidationError{Field: field, Message: fmt.Sprintf("must be at least %v", min)},
	}
}

func MaxNum[T Numeric](field string, value, max T) Rule {
	return Rule{
		Check: func() bool { return value <= max },
		Error: ValidationError{Field: field, Message: fmt.Sprintf("must be at most %v", max)},
	}
}

// ValidURLWithScheme requires an absolute URL with a host and one of schemes.
func ValidURLWithScheme(field, value string, schemes []string) Rule {
	return Rule{
		Check: func() bool {
			u, err := url.ParseRequestURI(strings.TrimSpace(value))
			if err != nil || u.Host == "" {
				return false
			}
			return slices.Contains(schemes, strings.ToLower(u.Scheme))
		},
		Error: ValidationError{
			Field:   field,
			Message: "must be a valid URL with scheme: " + strings.Join(schemes, ", "),
		},
	}
}

func InListCaseInsensitive(field, value string, allowed []string) Rule {
	return Rule{
		Check: func() bool {
			return slices.ContainsFunc(allowed, func(a string) bool { return strings.EqualFold(a, value) })
		},
		Error: ValidationError{
			Field:   field,
			Message: "must be one of: " + strings.Join(allowed, ", "),
		},
	}
}
