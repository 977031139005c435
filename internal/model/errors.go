package model

import "fmt"

// ValidationError reports a malformed numeric, date or enum field in an input record.
type ValidationError struct {
	Source string // record id or file:line
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s in %s: %s", e.Field, e.Source, e.Reason)
}
