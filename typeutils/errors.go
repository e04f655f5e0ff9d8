package typeutils

import (
	"fmt"

	"github.com/datazip-inc/bqsink/types"
)

// UnknownTypeError is returned when a schema references a type tag with no
// registered converter.
type UnknownTypeError struct {
	Type types.DataType
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("no converter registered for type [%s]", e.Type)
}

// ConversionError means a value did not satisfy its declared column type.
// Path is the dotted/indexed location of the offending field, e.g.
// "addresses[1].zip".
type ConversionError struct {
	Path  string
	Value any
	Err   error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("failed to convert field [%s] (value %v): %s", e.Path, e.Value, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

func conversionError(path string, value any, err error) error {
	// keep the innermost path; recursion wraps outside-in
	if ce, ok := err.(*ConversionError); ok {
		return ce
	}
	return &ConversionError{Path: path, Value: value, Err: err}
}
