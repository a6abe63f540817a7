package config

import "fmt"

// ValidationError represents a single invalid assertion declaration.
type ValidationError struct {
	Assertion string // Assertion name, or its index when unnamed
	Reason    string // Human-readable reason for failure
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("assertion %q: %s", e.Assertion, e.Reason)
}

// AggregateError collects every validation failure in a suite, so a broken
// file reports all of its problems at once.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// ValidationErrors returns all validation errors if err is an AggregateError.
// Otherwise returns nil.
func ValidationErrors(err error) []error {
	if aggr, ok := err.(*AggregateError); ok {
		return aggr.Errors
	}
	return nil
}
