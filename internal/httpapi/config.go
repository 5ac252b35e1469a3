package httpapi

import "time"

// streamBuffer bounds the events queued for one /events client before
// further events are dropped for it.
var streamBuffer = 64

// SetStreamBuffer sets the per-connection event queue size. Non-positive
// values restore the default.
func SetStreamBuffer(n int) {
	if n <= 0 {
		streamBuffer = 64
		return
	}
	streamBuffer = n
}

// streamHeartbeat is how often an idle /events stream writes a keepalive
// line. Zero disables heartbeats.
var streamHeartbeat = 15 * time.Second

// SetStreamHeartbeat sets the keepalive interval (negative disables).
func SetStreamHeartbeat(d time.Duration) {
	if d < 0 {
		d = 0
	}
	streamHeartbeat = d
}

// CORS configuration (opt-in). If disabled, no CORS middleware is added.
var (
	corsEnabled        bool
	corsAllowedOrigins []string
	corsAllowedMethods []string
	corsAllowedHeaders []string
)

// SetCORSOptions configures CORS behavior for the HTTP server.
func SetCORSOptions(enabled bool, origins, methods, headers []string) {
	corsEnabled = enabled
	corsAllowedOrigins = append([]string(nil), origins...)
	corsAllowedMethods = append([]string(nil), methods...)
	corsAllowedHeaders = append([]string(nil), headers...)
}
