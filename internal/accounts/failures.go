package accounts

import (
	"fmt"
	"strings"
)

// Failures collects field-scoped validation failures in the order the
// rules were evaluated. A field can fail several rules at once; every
// message is kept so callers can surface the full set of corrections.
type Failures struct {
	fields  []string
	byField map[string][]string
}

// NewFailures returns an empty failure set.
func NewFailures() *Failures {
	return &Failures{byField: make(map[string][]string)}
}

// Add records a failure message against a field.
func (f *Failures) Add(field, message string) {
	if f.byField == nil {
		f.byField = make(map[string][]string)
	}
	if _, ok := f.byField[field]; !ok {
		f.fields = append(f.fields, field)
	}
	f.byField[field] = append(f.byField[field], message)
}

// Empty reports whether no rule was violated.
func (f *Failures) Empty() bool {
	return f == nil || len(f.fields) == 0
}

// Fields returns the failed field names in evaluation order.
func (f *Failures) Fields() []string {
	if f == nil {
		return nil
	}
	return f.fields
}

// On returns the messages recorded against a field, in order.
func (f *Failures) On(field string) []string {
	if f == nil {
		return nil
	}
	return f.byField[field]
}

// ValidationError reports a rejected candidate. It wraps the complete
// failure set so callers can distinguish invalid input from system
// faults with errors.As and display every violated rule at once.
type ValidationError struct {
	Failures *Failures
}

func (e *ValidationError) Error() string {
	var parts []string
	for _, field := range e.Failures.Fields() {
		for _, msg := range e.Failures.On(field) {
			parts = append(parts, fmt.Sprintf("%s %s", field, msg))
		}
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
