// Package native describes the platform network-sharing service the binding
// talks to. The service is an external collaborator: every query and command
// returns an int32 status (0 on success) plus out values, and notifications
// arrive through an EventCallback registered with RegisterSharingEvent.
//
// Simulator is the in-process implementation used by the daemon and tests.
package native

import "fmt"

// Success is the only status that does not denote a failure.
const Success int32 = 0

// IfaceType is the service's encoding of a sharing link type.
type IfaceType int32

const (
	SharingNone      IfaceType = -1
	SharingWifi      IfaceType = 0
	SharingUSB       IfaceType = 1
	SharingBluetooth IfaceType = 2
)

func (t IfaceType) String() string {
	switch t {
	case SharingNone:
		return "SHARING_NONE"
	case SharingWifi:
		return "SHARING_WIFI"
	case SharingUSB:
		return "SHARING_USB"
	case SharingBluetooth:
		return "SHARING_BLUETOOTH"
	default:
		return fmt.Sprintf("IfaceType(%d)", int32(t))
	}
}

// IfaceState is the service's encoding of an interface sharing state.
type IfaceState int32

const (
	NicServing   IfaceState = 1
	NicCanServer IfaceState = 2
	NicError     IfaceState = 3
)

func (s IfaceState) String() string {
	switch s {
	case NicServing:
		return "SHARING_NIC_SERVING"
	case NicCanServer:
		return "SHARING_NIC_CAN_SERVER"
	case NicError:
		return "SHARING_NIC_ERROR"
	default:
		return fmt.Sprintf("IfaceState(%d)", int32(s))
	}
}

// InterfaceSharingStateInfo is the raw interface state record.
type InterfaceSharingStateInfo struct {
	ShareType IfaceType
	Iface     string
	State     IfaceState
}

// NetHandle is the raw upstream network handle.
type NetHandle struct {
	NetID int32
}

// EventCallback receives notifications from the service. Implementations
// must be safe for calls from the service's own goroutines.
type EventCallback interface {
	OnSharingStateChanged(running bool)
	OnInterfaceSharingStateChanged(t IfaceType, iface string, state IfaceState)
	OnSharingUpstreamChanged(h NetHandle)
}

// Service is the native sharing service contract.
type Service interface {
	IsSharingSupported() (supported bool, status int32)
	IsSharing() (sharing bool, status int32)
	StartSharing(t IfaceType) int32
	StopSharing(t IfaceType) int32
	GetStatsRxBytes() (kb int32, status int32)
	GetStatsTxBytes() (kb int32, status int32)
	GetStatsTotalBytes() (kb int32, status int32)
	GetSharingIfaces(state IfaceState) (ifaces []string, status int32)
	GetSharingState(t IfaceType) (state IfaceState, status int32)
	GetSharableRegexes(t IfaceType) (regexes []string, status int32)

	// RegisterSharingEvent subscribes cb to every notification kind.
	// Registering the same callback twice is accepted by the service.
	RegisterSharingEvent(cb EventCallback) int32
	UnregisterSharingEvent(cb EventCallback) int32

	// ErrorCodeAndMessage normalizes code and returns its human-readable
	// message in one call.
	ErrorCodeAndMessage(code int32) (normalized int32, message string)
}
