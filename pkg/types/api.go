package types

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Sharing error code (not the HTTP status).
	// example: 2202004
	Code int32 `json:"code" example:"2202004"`
	// Error message.
	// example: Try to share an unavailable iface.
	Message string `json:"message" example:"Try to share an unavailable iface."`
}

// StatusResponse is returned by GET /sharing/status.
type StatusResponse struct {
	// Whether the device supports sharing at all.
	// example: true
	Supported bool `json:"supported" example:"true"`
	// Whether any link is currently shared.
	// example: false
	Sharing bool `json:"sharing" example:"false"`
	// Per-type interface state, keyed by type name.
	States map[string]SharingIfaceState `json:"states,omitempty"`
	// Number of registered observers per event.
	Observers map[string]int `json:"observers,omitempty"`
}

// StatsResponse is returned by GET /sharing/stats. Values are in KB as
// reported by the service.
type StatsResponse struct {
	// example: 1024
	RxBytes int32 `json:"rx_bytes" example:"1024"`
	// example: 512
	TxBytes int32 `json:"tx_bytes" example:"512"`
	// example: 1536
	TotalBytes int32 `json:"total_bytes" example:"1536"`
}

// IfacesResponse is returned by GET /sharing/ifaces.
type IfacesResponse struct {
	State  SharingIfaceState `json:"state"`
	Ifaces []string          `json:"ifaces"`
}

// RegexesResponse is returned by GET /sharing/{type}/regexes.
type RegexesResponse struct {
	Type    SharingIfaceType `json:"type"`
	Regexes []string         `json:"regexes"`
}

// StateResponse is returned by GET /sharing/{type}/state.
type StateResponse struct {
	Type  SharingIfaceType  `json:"type"`
	State SharingIfaceState `json:"state"`
}

// StartStopResponse is returned by POST /sharing/{type}/start|stop.
type StartStopResponse struct {
	Type SharingIfaceType `json:"type"`
	// example: 0
	Code int32 `json:"code" example:"0"`
}
