package destination

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// UseAfterCloseError means Append was called on a finalized writer.
type UseAfterCloseError struct {
	Table string
}

func (e *UseAfterCloseError) Error() string {
	return fmt.Sprintf("append on finalized writer for table [%s]", e.Table)
}

// TransportError wraps a failure reported by the underlying write-API
// client. It is passed through as-is: retry policy belongs to the client,
// not to this layer.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure during %s: %s", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Code surfaces the gRPC status code of the wrapped error, codes.Unknown
// when there is none.
func (e *TransportError) Code() codes.Code {
	if s, ok := status.FromError(e.Err); ok {
		return s.Code()
	}
	return codes.Unknown
}

// IsTransport reports whether err originated in the underlying client.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
