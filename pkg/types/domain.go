package types

// InterfaceSharingStateInfo describes a state change of one shared interface.
type InterfaceSharingStateInfo struct {
	// Sharing link type of the interface.
	// example: wifi
	Type SharingIfaceType `json:"type" example:"wifi"`
	// Interface name.
	// example: wlan0
	Iface string `json:"iface" example:"wlan0"`
	// New state of the interface.
	// example: serving
	State SharingIfaceState `json:"state" example:"serving"`
}

// NetHandle identifies the upstream network being shared.
type NetHandle struct {
	// example: 100
	NetID int32 `json:"netId" example:"100"`
}

// SharingEvent is a converted notification. Exactly one payload field is set,
// matching Kind.
type SharingEvent struct {
	Kind      EventKind                  `json:"event"`
	Sharing   *bool                      `json:"sharing,omitempty"`
	Interface *InterfaceSharingStateInfo `json:"interface,omitempty"`
	Upstream  *NetHandle                 `json:"upstream,omitempty"`
}

// NewSharingStateEvent builds a sharingStateChange event.
func NewSharingStateEvent(running bool) SharingEvent {
	return SharingEvent{Kind: EventSharingStateChange, Sharing: &running}
}

// NewInterfaceStateEvent builds an interfaceSharingStateChange event.
func NewInterfaceStateEvent(info InterfaceSharingStateInfo) SharingEvent {
	return SharingEvent{Kind: EventInterfaceSharingStateChange, Interface: &info}
}

// NewUpstreamEvent builds a sharingUpstreamChange event.
func NewUpstreamEvent(h NetHandle) SharingEvent {
	return SharingEvent{Kind: EventSharingUpstreamChange, Upstream: &h}
}
