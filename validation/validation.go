package validation

import (
	"net/mail"
	"slices"
	"strings"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Error lets Violations travel as an error value.
func (v Violations) Error() string {
	fields := make([]string, 0, len(v))
	for f, code := range v {
		fields = append(fields, f+": "+code)
	}
	slices.Sort(fields)
	return "validation failed (" + strings.Join(fields, ", ") + ")"
}

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

// Email checks address syntax; empty values are left to Required.
func Email(field, value string, v Violations) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	if _, err := mail.ParseAddress(value); err != nil {
		v[field] = "invalid_email"
	}
}

func MinLength(field, value string, n int, v Violations) {
	if value != "" && len([]rune(value)) < n {
		v[field] = "too_short"
	}
}

// OneOf rejects values outside the allowed set.
func OneOf[T ~string](field string, value T, allowed []T, v Violations) {
	if !slices.Contains(allowed, value) {
		v[field] = "invalid_choice"
	}
}
