package series

import "fmt"

// MissingFieldError is returned in strict mode when a record lacks a required field
// or holds a value of the wrong kind. Record is 1-based in input order.
type MissingFieldError struct {
	Field  string
	Record int
	Reason string
}

func (e *MissingFieldError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "missing"
	}
	return fmt.Sprintf("record %d: field %q %s", e.Record, e.Field, reason)
}

// UnmappedCategoryError is returned when a categorical value has no delta mapping
// and the mapping's policy is UnmappedError.
type UnmappedCategoryError struct {
	Field    string
	Category string
	Record   int
}

func (e *UnmappedCategoryError) Error() string {
	return fmt.Sprintf("record %d: field %q value %q has no delta mapping", e.Record, e.Field, e.Category)
}
