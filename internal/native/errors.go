package native

// Status codes produced by the service. Codes below 2201000 and the 2202xxx
// block are public; the 2201xxx block is internal transport plumbing that
// ErrorCodeAndMessage folds onto a public code.
const (
	ErrPermissionDenied   int32 = 201
	ErrNonSystemCall      int32 = 202
	ErrParameter          int32 = 401
	ErrInvalidParameter   int32 = 2200001
	ErrServiceUnavailable int32 = 2200002
	ErrInternal           int32 = 2200003

	ErrLocalPtrNull    int32 = 2201001
	ErrWriteDescriptor int32 = 2201002
	ErrWriteData       int32 = 2201003
	ErrReadData        int32 = 2201004
	ErrIPCConnectStub  int32 = 2201005
	ErrOperationFailed int32 = 2201006

	ErrUnknownType      int32 = 2202002
	ErrUnknownIface     int32 = 2202003
	ErrUnavailableIface int32 = 2202004
	ErrWifiSharing      int32 = 2202005
	ErrBtSharing        int32 = 2202006
	ErrUSBSharing       int32 = 2202007
	ErrSharingIface     int32 = 2202008
	ErrEnableForwarding int32 = 2202009
	ErrIfaceConfig      int32 = 2202011
)

var normalizedCodes = map[int32]int32{
	ErrLocalPtrNull:    ErrInternal,
	ErrWriteDescriptor: ErrInternal,
	ErrWriteData:       ErrInternal,
	ErrReadData:        ErrInternal,
	ErrIPCConnectStub:  ErrServiceUnavailable,
	ErrOperationFailed: ErrInternal,
	ErrUnknownType:     ErrInvalidParameter,
}

var errorMessages = map[int32]string{
	ErrPermissionDenied:   "Permission denied.",
	ErrNonSystemCall:      "Non-system applications use system APIs.",
	ErrParameter:          "Parameter error.",
	ErrInvalidParameter:   "Invalid parameter value.",
	ErrServiceUnavailable: "Failed to connect to the service.",
	ErrInternal:           "System internal error.",
	ErrUnknownIface:       "Unknown network interface.",
	ErrUnavailableIface:   "Try to share an unavailable iface.",
	ErrWifiSharing:        "WiFi sharing failed.",
	ErrBtSharing:          "Bluetooth sharing failed.",
	ErrUSBSharing:         "USB sharing failed.",
	ErrSharingIface:       "Network card sharing failed.",
	ErrEnableForwarding:   "Failed to enable forwarding for network sharing.",
	ErrIfaceConfig:        "Failed to configure the network interface.",
}

const unknownErrorMessage = "Unknown error."

// ConvertErrorCode is the catalogue lookup behind ErrorCodeAndMessage.
// Unknown codes are returned unchanged with a generic message.
func ConvertErrorCode(code int32) (int32, string) {
	if n, ok := normalizedCodes[code]; ok {
		code = n
	}
	if msg, ok := errorMessages[code]; ok {
		return code, msg
	}
	return code, unknownErrorMessage
}
