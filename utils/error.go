package utils

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// ErrExecSequential executes a list of functions sequentially, accumulating
// errors if any occur. Every function runs regardless of earlier failures;
// best-effort cleanup chains depend on that.
func ErrExecSequential(functions ...func() error) error {
	var multErr error
	for _, one := range functions {
		if err := one(); err != nil {
			multErr = multierror.Append(multErr, err)
		}
	}
	return multErr
}

// ErrExecFormat formats the error returned from a function according to the
// provided format string.
func ErrExecFormat(format string, function func() error) func() error {
	return func() error {
		if err := function(); err != nil {
			return fmt.Errorf(format, err)
		}
		return nil
	}
}
