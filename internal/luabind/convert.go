package luabind

import (
	lua "github.com/yuin/gopher-lua"

	"sharingd/internal/adapter"
	"sharingd/pkg/types"
)

func eventToLua(L *lua.LState, ev types.SharingEvent) lua.LValue {
	switch ev.Kind {
	case types.EventSharingStateChange:
		if ev.Sharing != nil {
			return lua.LBool(*ev.Sharing)
		}
	case types.EventInterfaceSharingStateChange:
		if ev.Interface != nil {
			t := L.NewTable()
			t.RawSetString("type", lua.LNumber(ev.Interface.Type))
			t.RawSetString("iface", lua.LString(ev.Interface.Iface))
			t.RawSetString("state", lua.LNumber(ev.Interface.State))
			return t
		}
	case types.EventSharingUpstreamChange:
		if ev.Upstream != nil {
			t := L.NewTable()
			t.RawSetString("netId", lua.LNumber(ev.Upstream.NetID))
			return t
		}
	}
	return lua.LNil
}

func stringsToLua(L *lua.LState, in []string) *lua.LTable {
	t := L.CreateTable(len(in), 0)
	for _, s := range in {
		t.Append(lua.LString(s))
	}
	return t
}

// errorValue renders err as the {code, message} table scripts see.
func errorValue(L *lua.LState, err error) *lua.LTable {
	code, msg := types.CodeInternalError, err.Error()
	if be, ok := types.AsBusinessError(err); ok {
		code, msg = be.Code, be.Message
	} else if !adapter.IsUnmappedValue(err) {
		msg = "System internal error."
	}
	t := L.NewTable()
	t.RawSetString("code", lua.LNumber(code))
	t.RawSetString("message", lua.LString(msg))
	return t
}

// raise aborts the current Lua call with err as a table error value.
func raise(L *lua.LState, err error) int {
	L.Error(errorValue(L, err), 1)
	return 0
}

func raiseParam(L *lua.LState, msg string) int {
	return raise(L, types.NewBusinessError(types.CodeParameterError, msg))
}

func constTable(L *lua.LState, fields map[string]int32) *lua.LTable {
	t := L.NewTable()
	for k, v := range fields {
		t.RawSetString(k, lua.LNumber(v))
	}
	return t
}
