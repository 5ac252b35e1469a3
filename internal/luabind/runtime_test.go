package luabind

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	lua "github.com/yuin/gopher-lua"

	"sharingd/internal/native"
	"sharingd/internal/sharing"
	"sharingd/pkg/types"
)

func newTestRuntime(t *testing.T) (*Runtime, *native.Simulator, *sharing.Client) {
	t.Helper()
	sim := native.NewSimulator(native.DefaultSimConfig())
	c := sharing.New(sim)
	r := New(c, WithName(t.Name()))
	t.Cleanup(func() { _ = r.Close() })
	return r, sim, c
}

func global(r *Runtime, name string) lua.LValue { return r.L.GetGlobal(name) }

func TestQueriesFromLua(t *testing.T) {
	r, sim, _ := newTestRuntime(t)
	sim.AddTraffic(4, 6)
	err := r.DoString(`
		local T = sharing.SharingIfaceType
		local S = sharing.SharingIfaceState
		supported = sharing.isSharingSupported()
		sharing.startSharing(T.SHARING_USB)
		active = sharing.isSharing()
		total = sharing.getStatsTotalBytes()
		serving = sharing.getSharingIfaces(S.SHARING_NIC_SERVING)[1]
		state = sharing.getSharingState(T.SHARING_USB)
		regex = sharing.getSharableRegexes(T.SHARING_WIFI)[1]
	`)
	if err != nil {
		t.Fatalf("script: %v", err)
	}
	if global(r, "supported") != lua.LTrue || global(r, "active") != lua.LTrue {
		t.Fatalf("supported=%v active=%v", global(r, "supported"), global(r, "active"))
	}
	if global(r, "total") != lua.LNumber(10) {
		t.Fatalf("total=%v", global(r, "total"))
	}
	if global(r, "serving") != lua.LString("usb0") {
		t.Fatalf("serving=%v", global(r, "serving"))
	}
	if global(r, "state") != lua.LNumber(types.SharingNicServing) {
		t.Fatalf("state=%v", global(r, "state"))
	}
	if global(r, "regex") != lua.LString(`wlan\d`) {
		t.Fatalf("regex=%v", global(r, "regex"))
	}
}

func TestErrorsAreTables(t *testing.T) {
	r, sim, _ := newTestRuntime(t)
	sim.SetStatus(native.OpStartSharing, -1)
	sim.SetMessage(-1, "busy")
	err := r.DoString(`
		ok, e = pcall(sharing.startSharing, sharing.SharingIfaceType.SHARING_WIFI)
		code, message = e.code, e.message
		ok2, e2 = pcall(sharing.startSharing, "wifi")
		paramCode = e2.code
		ok3, e3 = pcall(sharing.getSharingState, 7)
		rangeCode = e3.code
	`)
	if err != nil {
		t.Fatalf("script: %v", err)
	}
	if global(r, "ok") != lua.LFalse || global(r, "code") != lua.LNumber(-1) || global(r, "message") != lua.LString("busy") {
		t.Fatalf("ok=%v code=%v message=%v", global(r, "ok"), global(r, "code"), global(r, "message"))
	}
	if global(r, "paramCode") != lua.LNumber(types.CodeParameterError) {
		t.Fatalf("paramCode=%v", global(r, "paramCode"))
	}
	if global(r, "rangeCode") != lua.LNumber(types.CodeParameterError) {
		t.Fatalf("rangeCode=%v", global(r, "rangeCode"))
	}
}

func TestOnOffByFunctionIdentity(t *testing.T) {
	r, sim, c := newTestRuntime(t)
	err := r.DoString(`
		hits, last = 0, nil
		function h(info) hits = hits + 1; last = info.netId end
		sharing.on("sharingUpstreamChange", h)
		ok, dup = pcall(sharing.on, "sharingUpstreamChange", h)
		dupCode = dup.code
	`)
	if err != nil {
		t.Fatalf("script: %v", err)
	}
	if global(r, "dupCode") != lua.LNumber(types.CodeDuplicateRegistration) {
		t.Fatalf("dupCode=%v", global(r, "dupCode"))
	}
	if c.Observers(types.EventSharingUpstreamChange) != 1 {
		t.Fatalf("observers=%d", c.Observers(types.EventSharingUpstreamChange))
	}

	sim.ForceUpstreamEvent(native.NetHandle{NetID: 7})
	if n := r.Pump(); n != 1 {
		t.Fatalf("pumped=%d", n)
	}
	if global(r, "hits") != lua.LNumber(1) || global(r, "last") != lua.LNumber(7) {
		t.Fatalf("hits=%v last=%v", global(r, "hits"), global(r, "last"))
	}

	if err := r.DoString(`sharing.off("sharingUpstreamChange", h)`); err != nil {
		t.Fatalf("off: %v", err)
	}
	sim.ForceUpstreamEvent(native.NetHandle{NetID: 8})
	r.Pump()
	if global(r, "hits") != lua.LNumber(1) {
		t.Fatalf("handler ran after off")
	}
	if sim.Callbacks() != 0 {
		t.Fatalf("native callback still installed")
	}
}

func TestQueuedDeliveryDroppedAfterOff(t *testing.T) {
	r, sim, _ := newTestRuntime(t)
	err := r.DoString(`
		hits = 0
		function h(running) hits = hits + 1 end
		sharing.on("sharingStateChange", h)
	`)
	if err != nil {
		t.Fatalf("script: %v", err)
	}
	sim.ForceSharingStateEvent(true)
	if err := r.DoString(`sharing.off("sharingStateChange")`); err != nil {
		t.Fatalf("off: %v", err)
	}
	if n := r.Pump(); n != 0 {
		t.Fatalf("stale delivery ran: %d", n)
	}
}

func TestOnRejectsBadArguments(t *testing.T) {
	r, _, _ := newTestRuntime(t)
	err := r.DoString(`
		_, a = pcall(sharing.on, "sharingStateChange", 5)
		_, b = pcall(sharing.on, "noSuchEvent", function() end)
		_, c = pcall(sharing.on, 1, function() end)
		codes = {a.code, b.code, c.code}
		sharing.off("noSuchEvent")
	`)
	if err != nil {
		t.Fatalf("script: %v", err)
	}
	codes := global(r, "codes").(*lua.LTable)
	for i := 1; i <= 3; i++ {
		if codes.RawGetInt(i) != lua.LNumber(types.CodeParameterError) {
			t.Fatalf("code %d=%v", i, codes.RawGetInt(i))
		}
	}
}

func TestHandlerErrorsAreContained(t *testing.T) {
	r, _, _ := newTestRuntime(t)
	err := r.DoString(`
		seen = {}
		sharing.on("interfaceSharingStateChange", function(info) error("boom") end)
		sharing.on("interfaceSharingStateChange", function(info) seen[#seen+1] = info.iface end)
	`)
	if err != nil {
		t.Fatalf("script: %v", err)
	}
	if err := r.DoString(`sharing.startSharing(sharing.SharingIfaceType.SHARING_BLUETOOTH)`); err != nil {
		t.Fatalf("start: %v", err)
	}
	if n := r.Pump(); n != 1 {
		t.Fatalf("pumped=%d, want 1 successful handler", n)
	}
	seen := global(r, "seen").(*lua.LTable)
	if seen.RawGetInt(1) != lua.LString("bt-pan") {
		t.Fatalf("seen=%v", seen.RawGetInt(1))
	}
}

func TestPollFromLua(t *testing.T) {
	r, sim, _ := newTestRuntime(t)
	err := r.DoString(`
		got = nil
		sharing.on("sharingStateChange", function(v) got = v end)
	`)
	if err != nil {
		t.Fatalf("script: %v", err)
	}
	go func() {
		time.Sleep(20 * time.Millisecond)
		sim.ForceSharingStateEvent(true)
	}()
	if err := r.DoString(`n = sharing.poll(2000)`); err != nil {
		t.Fatalf("poll: %v", err)
	}
	if global(r, "n") != lua.LNumber(1) || global(r, "got") != lua.LTrue {
		t.Fatalf("n=%v got=%v", global(r, "n"), global(r, "got"))
	}
}

func TestServeStopsOnContext(t *testing.T) {
	r, sim, _ := newTestRuntime(t)
	if err := r.DoString(`count = 0; sharing.on("sharingStateChange", function() count = count + 1 end)`); err != nil {
		t.Fatalf("script: %v", err)
	}
	sim.ForceSharingStateEvent(false)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := r.Serve(ctx); err != nil {
		t.Fatalf("serve: %v", err)
	}
	if global(r, "count") != lua.LNumber(1) {
		t.Fatalf("count=%v", global(r, "count"))
	}
}

func TestCloseUnregistersOnlyOwnHandlers(t *testing.T) {
	sim := native.NewSimulator(native.DefaultSimConfig())
	c := sharing.New(sim)
	a, b := New(c), New(c)
	defer b.Close()
	for _, r := range []*Runtime{a, b} {
		if err := r.DoString(`sharing.on("sharingStateChange", function() end)`); err != nil {
			t.Fatalf("script: %v", err)
		}
	}
	if c.Observers(types.EventSharingStateChange) != 2 {
		t.Fatalf("observers=%d", c.Observers(types.EventSharingStateChange))
	}
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if c.Observers(types.EventSharingStateChange) != 1 || b.Registered(types.EventSharingStateChange) != 1 {
		t.Fatalf("close removed foreign handlers")
	}
	if err := a.DoString(`x = 1`); err != ErrClosed {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestDoFileAndSandbox(t *testing.T) {
	r, _, _ := newTestRuntime(t)
	path := filepath.Join(t.TempDir(), "s.lua")
	if err := os.WriteFile(path, []byte(`sandboxed = (dofile == nil and load == nil and io == nil and os == nil)`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := r.DoFile(path); err != nil {
		t.Fatalf("dofile: %v", err)
	}
	if global(r, "sandboxed") != lua.LTrue {
		t.Fatalf("unsafe globals exposed")
	}
	if err := r.DoFile(filepath.Join(t.TempDir(), "missing.lua")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
