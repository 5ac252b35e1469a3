package types

import (
	"fmt"
	"strings"
)

// SharingIfaceType identifies the link a device shares its connectivity over.
type SharingIfaceType int32

const (
	SharingWifi      SharingIfaceType = 0
	SharingUSB       SharingIfaceType = 1
	SharingBluetooth SharingIfaceType = 2
)

// AllSharingIfaceTypes lists every public sharing type in declaration order.
func AllSharingIfaceTypes() []SharingIfaceType {
	return []SharingIfaceType{SharingWifi, SharingUSB, SharingBluetooth}
}

func (t SharingIfaceType) String() string {
	switch t {
	case SharingWifi:
		return "wifi"
	case SharingUSB:
		return "usb"
	case SharingBluetooth:
		return "bluetooth"
	default:
		return fmt.Sprintf("SharingIfaceType(%d)", int32(t))
	}
}

// Valid reports whether t is one of the declared sharing types.
func (t SharingIfaceType) Valid() bool {
	return t >= SharingWifi && t <= SharingBluetooth
}

// ParseSharingIfaceType accepts the text names ("wifi", "usb", "bluetooth").
func ParseSharingIfaceType(s string) (SharingIfaceType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "wifi", "wlan":
		return SharingWifi, nil
	case "usb":
		return SharingUSB, nil
	case "bluetooth", "bt":
		return SharingBluetooth, nil
	}
	return 0, fmt.Errorf("unknown sharing type %q", s)
}

func (t SharingIfaceType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid sharing type %d", int32(t))
	}
	return []byte(t.String()), nil
}

func (t *SharingIfaceType) UnmarshalText(b []byte) error {
	v, err := ParseSharingIfaceType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// SharingIfaceState is the sharing state of a single network interface.
type SharingIfaceState int32

const (
	SharingNicServing   SharingIfaceState = 1
	SharingNicCanServer SharingIfaceState = 2
	SharingNicError     SharingIfaceState = 3
)

// AllSharingIfaceStates lists every public interface state in declaration order.
func AllSharingIfaceStates() []SharingIfaceState {
	return []SharingIfaceState{SharingNicServing, SharingNicCanServer, SharingNicError}
}

func (s SharingIfaceState) String() string {
	switch s {
	case SharingNicServing:
		return "serving"
	case SharingNicCanServer:
		return "can-serve"
	case SharingNicError:
		return "error"
	default:
		return fmt.Sprintf("SharingIfaceState(%d)", int32(s))
	}
}

// Valid reports whether s is one of the declared interface states.
func (s SharingIfaceState) Valid() bool {
	return s >= SharingNicServing && s <= SharingNicError
}

// ParseSharingIfaceState accepts the text names ("serving", "can-serve", "error").
func ParseSharingIfaceState(s string) (SharingIfaceState, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "serving":
		return SharingNicServing, nil
	case "can-serve", "can_serve", "canserve":
		return SharingNicCanServer, nil
	case "error":
		return SharingNicError, nil
	}
	return 0, fmt.Errorf("unknown sharing state %q", s)
}

func (s SharingIfaceState) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid sharing state %d", int32(s))
	}
	return []byte(s.String()), nil
}

func (s *SharingIfaceState) UnmarshalText(b []byte) error {
	v, err := ParseSharingIfaceState(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// EventKind is the category of a sharing notification.
type EventKind int

const (
	EventSharingStateChange EventKind = iota
	EventInterfaceSharingStateChange
	EventSharingUpstreamChange
)

// AllEventKinds lists every event kind.
func AllEventKinds() []EventKind {
	return []EventKind{EventSharingStateChange, EventInterfaceSharingStateChange, EventSharingUpstreamChange}
}

// String returns the wire name used by scripts and the event stream.
func (k EventKind) String() string {
	switch k {
	case EventSharingStateChange:
		return "sharingStateChange"
	case EventInterfaceSharingStateChange:
		return "interfaceSharingStateChange"
	case EventSharingUpstreamChange:
		return "sharingUpstreamChange"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// ParseEventKind maps a wire name back to its kind.
func ParseEventKind(s string) (EventKind, error) {
	for _, k := range AllEventKinds() {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown event %q", s)
}

func (k EventKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *EventKind) UnmarshalText(b []byte) error {
	v, err := ParseEventKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}
