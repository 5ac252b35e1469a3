package adapter

import (
	"fmt"

	"sharingd/internal/native"
	"sharingd/pkg/types"
)

// IfaceTypeToNative maps a public sharing type to its native encoding.
// It panics on values outside the declared enum, which only arise from
// unchecked integer conversions in the caller.
func IfaceTypeToNative(t types.SharingIfaceType) native.IfaceType {
	switch t {
	case types.SharingWifi:
		return native.SharingWifi
	case types.SharingUSB:
		return native.SharingUSB
	case types.SharingBluetooth:
		return native.SharingBluetooth
	}
	panic(fmt.Sprintf("adapter: undeclared sharing type %d", int32(t)))
}

// IfaceTypeFromNative maps a native sharing type back. SharingNone and any
// value unknown to this binding yield an *UnmappedValueError.
func IfaceTypeFromNative(t native.IfaceType) (types.SharingIfaceType, error) {
	switch t {
	case native.SharingWifi:
		return types.SharingWifi, nil
	case native.SharingUSB:
		return types.SharingUSB, nil
	case native.SharingBluetooth:
		return types.SharingBluetooth, nil
	}
	return 0, &UnmappedValueError{Enum: "SharingIfaceType", Value: int32(t)}
}

// IfaceStateToNative maps a public interface state to its native encoding.
func IfaceStateToNative(s types.SharingIfaceState) native.IfaceState {
	switch s {
	case types.SharingNicServing:
		return native.NicServing
	case types.SharingNicCanServer:
		return native.NicCanServer
	case types.SharingNicError:
		return native.NicError
	}
	panic(fmt.Sprintf("adapter: undeclared sharing state %d", int32(s)))
}

// IfaceStateFromNative maps a native interface state back.
func IfaceStateFromNative(s native.IfaceState) (types.SharingIfaceState, error) {
	switch s {
	case native.NicServing:
		return types.SharingNicServing, nil
	case native.NicCanServer:
		return types.SharingNicCanServer, nil
	case native.NicError:
		return types.SharingNicError, nil
	}
	return 0, &UnmappedValueError{Enum: "SharingIfaceState", Value: int32(s)}
}

// InterfaceInfoFromNative transcribes an interface record field by field.
func InterfaceInfoFromNative(info native.InterfaceSharingStateInfo) (types.InterfaceSharingStateInfo, error) {
	t, err := IfaceTypeFromNative(info.ShareType)
	if err != nil {
		return types.InterfaceSharingStateInfo{}, err
	}
	s, err := IfaceStateFromNative(info.State)
	if err != nil {
		return types.InterfaceSharingStateInfo{}, err
	}
	return types.InterfaceSharingStateInfo{Type: t, Iface: info.Iface, State: s}, nil
}

// NetHandleFromNative transcribes an upstream handle.
func NetHandleFromNative(h native.NetHandle) types.NetHandle {
	return types.NetHandle{NetID: h.NetID}
}
