package types

import (
	"errors"
	"fmt"
)

// Public error codes surfaced to callers. Values follow the platform's
// network-management error catalogue.
const (
	CodeSuccess            int32 = 0
	CodePermissionDenied   int32 = 201
	CodeNonSystemApp       int32 = 202
	CodeParameterError     int32 = 401
	CodeInvalidParameter   int32 = 2200001
	CodeServiceUnavailable int32 = 2200002
	CodeInternalError      int32 = 2200003

	CodeUnknownIface      int32 = 2202003
	CodeUnavailableIface  int32 = 2202004
	CodeWifiSharingFailed int32 = 2202005
	CodeBtSharingFailed   int32 = 2202006
	CodeUSBSharingFailed  int32 = 2202007
	CodeSharingIfaceError int32 = 2202008
	CodeForwardingFailed  int32 = 2202009
	CodeIfaceConfigFailed int32 = 2202011

	// CodeDuplicateRegistration is raised by the binding itself when the same
	// callback is registered twice for one event.
	CodeDuplicateRegistration int32 = 2202100
)

// BusinessError is the structured error returned by every failing sharing
// operation.
type BusinessError struct {
	// example: 2202004
	Code int32 `json:"code" example:"2202004"`
	// example: Try to share an unavailable iface.
	Message string `json:"message" example:"Try to share an unavailable iface."`
}

func (e *BusinessError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("sharing error %d", e.Code)
	}
	return fmt.Sprintf("sharing error %d: %s", e.Code, e.Message)
}

// NewBusinessError constructs a BusinessError.
func NewBusinessError(code int32, msg string) *BusinessError {
	return &BusinessError{Code: code, Message: msg}
}

// AsBusinessError unwraps err into a BusinessError if it carries one.
func AsBusinessError(err error) (*BusinessError, bool) {
	var be *BusinessError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// IsDuplicateRegistration reports whether err rejects a repeated callback registration.
func IsDuplicateRegistration(err error) bool {
	be, ok := AsBusinessError(err)
	return ok && be.Code == CodeDuplicateRegistration
}
