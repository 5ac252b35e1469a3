package adapter

import (
	"errors"
	"fmt"

	"sharingd/internal/native"
	"sharingd/pkg/types"
)

// UnmappedValueError reports a native enum value this binding does not know.
// It signals version skew between the binding and the service and is not
// meant to be retried or recovered from.
type UnmappedValueError struct {
	Enum  string
	Value int32
}

func (e *UnmappedValueError) Error() string {
	return fmt.Sprintf("unmapped native %s value %d", e.Enum, e.Value)
}

// IsUnmappedValue reports whether err is (or wraps) an UnmappedValueError.
func IsUnmappedValue(err error) bool {
	var ue *UnmappedValueError
	return errors.As(err, &ue)
}

// ErrorSource resolves native status codes to messages.
type ErrorSource interface {
	ErrorCodeAndMessage(code int32) (int32, string)
}

// Translate converts a native status into a public error. A success status
// always yields nil.
func Translate(src ErrorSource, code int32) error {
	if code == native.Success {
		return nil
	}
	normalized, msg := src.ErrorCodeAndMessage(code)
	return types.NewBusinessError(normalized, msg)
}
