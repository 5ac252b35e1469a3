package luabind

import (
	"time"

	lua "github.com/yuin/gopher-lua"

	"sharingd/pkg/types"
)

type module struct {
	r *Runtime
}

func newModule(r *Runtime) *module { return &module{r: r} }

func (m *module) table(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetFuncs(mod, map[string]lua.LGFunction{
		"isSharingSupported": m.isSharingSupported,
		"isSharing":          m.isSharing,
		"startSharing":       m.startSharing,
		"stopSharing":        m.stopSharing,
		"getStatsRxBytes":    m.stats(m.r.client.GetStatsRxBytes),
		"getStatsTxBytes":    m.stats(m.r.client.GetStatsTxBytes),
		"getStatsTotalBytes": m.stats(m.r.client.GetStatsTotalBytes),
		"getSharingIfaces":   m.getSharingIfaces,
		"getSharingState":    m.getSharingState,
		"getSharableRegexes": m.getSharableRegexes,
		"on":                 m.on,
		"off":                m.off,
		"poll":               m.poll,
	})
	mod.RawSetString("SharingIfaceType", constTable(L, map[string]int32{
		"SHARING_WIFI":      int32(types.SharingWifi),
		"SHARING_USB":       int32(types.SharingUSB),
		"SHARING_BLUETOOTH": int32(types.SharingBluetooth),
	}))
	mod.RawSetString("SharingIfaceState", constTable(L, map[string]int32{
		"SHARING_NIC_SERVING":    int32(types.SharingNicServing),
		"SHARING_NIC_CAN_SERVER": int32(types.SharingNicCanServer),
		"SHARING_NIC_ERROR":      int32(types.SharingNicError),
	}))
	return mod
}

func checkNumber(L *lua.LState, n int, what string) (int32, bool) {
	v, ok := L.Get(n).(lua.LNumber)
	if !ok {
		raiseParam(L, what+" must be a number")
		return 0, false
	}
	return int32(v), true
}

func checkEvent(L *lua.LState, n int) (types.EventKind, bool) {
	s, ok := L.Get(n).(lua.LString)
	if !ok {
		raiseParam(L, "event must be a string")
		return 0, false
	}
	kind, err := types.ParseEventKind(string(s))
	if err != nil {
		raiseParam(L, err.Error())
		return 0, false
	}
	return kind, true
}

func (m *module) isSharingSupported(L *lua.LState) int {
	v, err := m.r.client.IsSharingSupported()
	if err != nil {
		return raise(L, err)
	}
	L.Push(lua.LBool(v))
	return 1
}

func (m *module) isSharing(L *lua.LState) int {
	v, err := m.r.client.IsSharing()
	if err != nil {
		return raise(L, err)
	}
	L.Push(lua.LBool(v))
	return 1
}

func (m *module) startSharing(L *lua.LState) int {
	t, ok := checkNumber(L, 1, "type")
	if !ok {
		return 0
	}
	if err := m.r.client.StartSharing(types.SharingIfaceType(t)); err != nil {
		return raise(L, err)
	}
	return 0
}

func (m *module) stopSharing(L *lua.LState) int {
	t, ok := checkNumber(L, 1, "type")
	if !ok {
		return 0
	}
	if err := m.r.client.StopSharing(types.SharingIfaceType(t)); err != nil {
		return raise(L, err)
	}
	return 0
}

func (m *module) stats(get func() (int32, error)) lua.LGFunction {
	return func(L *lua.LState) int {
		v, err := get()
		if err != nil {
			return raise(L, err)
		}
		L.Push(lua.LNumber(v))
		return 1
	}
}

func (m *module) getSharingIfaces(L *lua.LState) int {
	s, ok := checkNumber(L, 1, "state")
	if !ok {
		return 0
	}
	ifaces, err := m.r.client.GetSharingIfaces(types.SharingIfaceState(s))
	if err != nil {
		return raise(L, err)
	}
	L.Push(stringsToLua(L, ifaces))
	return 1
}

func (m *module) getSharingState(L *lua.LState) int {
	t, ok := checkNumber(L, 1, "type")
	if !ok {
		return 0
	}
	st, err := m.r.client.GetSharingState(types.SharingIfaceType(t))
	if err != nil {
		return raise(L, err)
	}
	L.Push(lua.LNumber(st))
	return 1
}

func (m *module) getSharableRegexes(L *lua.LState) int {
	t, ok := checkNumber(L, 1, "type")
	if !ok {
		return 0
	}
	re, err := m.r.client.GetSharableRegexes(types.SharingIfaceType(t))
	if err != nil {
		return raise(L, err)
	}
	L.Push(stringsToLua(L, re))
	return 1
}

// on(event, fn)
func (m *module) on(L *lua.LState) int {
	kind, ok := checkEvent(L, 1)
	if !ok {
		return 0
	}
	fn, isFn := L.Get(2).(*lua.LFunction)
	if !isFn {
		return raiseParam(L, "callback must be a function")
	}
	if err := m.r.on(kind, fn); err != nil {
		return raise(L, err)
	}
	return 0
}

// off(event[, fn]); an unknown event name is ignored.
func (m *module) off(L *lua.LState) int {
	s, isStr := L.Get(1).(lua.LString)
	if !isStr {
		return raiseParam(L, "event must be a string")
	}
	kind, err := types.ParseEventKind(string(s))
	if err != nil {
		return 0
	}
	switch arg := L.Get(2).(type) {
	case *lua.LNilType:
		err = m.r.offAll(kind)
	case *lua.LFunction:
		err = m.r.off(kind, arg)
	default:
		return raiseParam(L, "callback must be a function")
	}
	if err != nil {
		return raise(L, err)
	}
	return 0
}

// poll([ms]) waits up to ms for a delivery, runs everything queued and
// returns the number of handlers invoked.
func (m *module) poll(L *lua.LState) int {
	ms := L.OptInt(1, 0)
	n := 0
	if ms > 0 {
		timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
		select {
		case d := <-m.r.queue:
			if m.r.deliver(d) {
				n++
			}
		case <-timer.C:
		}
		timer.Stop()
	}
	n += m.r.Pump()
	L.Push(lua.LNumber(n))
	return 1
}
