package adapter

import (
	"testing"

	"sharingd/internal/native"
	"sharingd/pkg/types"
)

func TestIfaceTypeRoundTrip(t *testing.T) {
	for _, v := range types.AllSharingIfaceTypes() {
		got, err := IfaceTypeFromNative(IfaceTypeToNative(v))
		if err != nil {
			t.Fatalf("%v: %v", v, err)
		}
		if got != v {
			t.Fatalf("round trip %v -> %v", v, got)
		}
	}
}

func TestIfaceStateRoundTrip(t *testing.T) {
	for _, v := range types.AllSharingIfaceStates() {
		got, err := IfaceStateFromNative(IfaceStateToNative(v))
		if err != nil {
			t.Fatalf("%v: %v", v, err)
		}
		if got != v {
			t.Fatalf("round trip %v -> %v", v, got)
		}
	}
}

func TestFromNative_UnmappedValues(t *testing.T) {
	if _, err := IfaceTypeFromNative(native.SharingNone); !IsUnmappedValue(err) {
		t.Fatalf("SHARING_NONE should be unmapped, got %v", err)
	}
	if _, err := IfaceTypeFromNative(native.IfaceType(7)); !IsUnmappedValue(err) {
		t.Fatalf("expected unmapped type, got %v", err)
	}
	_, err := IfaceStateFromNative(native.IfaceState(0))
	if !IsUnmappedValue(err) {
		t.Fatalf("expected unmapped state, got %v", err)
	}
	if err.Error() != "unmapped native SharingIfaceState value 0" {
		t.Fatalf("message=%q", err.Error())
	}
}

func TestToNative_PanicsOnUndeclaredValue(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	IfaceTypeToNative(types.SharingIfaceType(42))
}

func TestInterfaceInfoFromNative(t *testing.T) {
	got, err := InterfaceInfoFromNative(native.InterfaceSharingStateInfo{
		ShareType: native.SharingUSB, Iface: "usb0", State: native.NicError,
	})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	want := types.InterfaceSharingStateInfo{Type: types.SharingUSB, Iface: "usb0", State: types.SharingNicError}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
	if _, err := InterfaceInfoFromNative(native.InterfaceSharingStateInfo{ShareType: native.SharingWifi, State: 99}); !IsUnmappedValue(err) {
		t.Fatalf("nested state should be checked, got %v", err)
	}
	if h := NetHandleFromNative(native.NetHandle{NetID: 7}); h.NetID != 7 {
		t.Fatalf("net handle %+v", h)
	}
}

type fakeErrorSource struct {
	calls int
	code  int32
	msg   string
}

func (f *fakeErrorSource) ErrorCodeAndMessage(code int32) (int32, string) {
	f.calls++
	if f.code != 0 {
		return f.code, f.msg
	}
	return code, f.msg
}

func TestTranslate(t *testing.T) {
	src := &fakeErrorSource{msg: "busy"}
	if err := Translate(src, native.Success); err != nil {
		t.Fatalf("success must not produce an error: %v", err)
	}
	if src.calls != 0 {
		t.Fatalf("success must not consult the native layer")
	}
	err := Translate(src, -1)
	be, ok := types.AsBusinessError(err)
	if !ok {
		t.Fatalf("expected BusinessError, got %T", err)
	}
	if be.Code != -1 || be.Message != "busy" {
		t.Fatalf("unexpected %+v", be)
	}

	src = &fakeErrorSource{code: native.ErrInternal, msg: "System internal error."}
	be, _ = types.AsBusinessError(Translate(src, native.ErrWriteData))
	if be.Code != native.ErrInternal {
		t.Fatalf("expected normalized code, got %d", be.Code)
	}
}
