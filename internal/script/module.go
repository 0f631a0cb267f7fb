package script

import (
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/keyscope/internal/input/keymap"
)

func (r *Runtime) installModule() {
	mod := r.L.NewTable()

	r.L.SetField(mod, "bind", r.L.NewFunction(r.bind))
	r.L.SetField(mod, "unbind", r.L.NewFunction(r.unbind))
	r.L.SetField(mod, "enable_scope", r.L.NewFunction(r.scopeFunc(r.engine.EnableScope)))
	r.L.SetField(mod, "disable_scope", r.L.NewFunction(r.scopeFunc(r.engine.DisableScope)))
	r.L.SetField(mod, "toggle_scope", r.L.NewFunction(r.scopeFunc(r.engine.ToggleScope)))
	r.L.SetField(mod, "is_scope_active", r.L.NewFunction(r.isScopeActive))
	r.L.SetField(mod, "active_scopes", r.L.NewFunction(r.activeScopes))
	r.L.SetField(mod, "pressed_keys", r.L.NewFunction(r.pressedKeys))
	r.L.SetField(mod, "log", r.L.NewFunction(r.logFunc))

	r.L.SetGlobal(GlobalName, mod)
}

// bind(spec, [scopes], fn, [desc]) -> id
// scopes may be omitted, a string or a list of strings.
func (r *Runtime) bind(L *lua.LState) int {
	spec := L.CheckString(1)

	var scopes []string
	fnArg := 2
	switch v := L.Get(2).(type) {
	case *lua.LFunction:
	case lua.LString:
		scopes = []string{string(v)}
		fnArg = 3
	case *lua.LTable:
		scopes = stringList(L, v, 2)
		fnArg = 3
	case *lua.LNilType:
		fnArg = 3
	default:
		L.ArgError(2, "scopes must be a string or a table of strings")
		return 0
	}
	fn := L.CheckFunction(fnArg)
	desc := L.OptString(fnArg+1, "")

	var opts []keymap.Option
	if desc != "" {
		opts = append(opts, keymap.WithDescription(desc))
	}

	h, err := r.engine.Register(spec, scopes, r.callback(spec, fn), opts...)
	if err != nil {
		L.RaiseError("bind: %v", err)
		return 0
	}
	id := h.ID().String()
	r.handles[id] = h

	L.Push(lua.LString(id))
	return 1
}

// callback wraps a Lua function as a binding callback. Lua errors are
// logged and do not propagate into the engine.
func (r *Runtime) callback(spec string, fn *lua.LFunction) keymap.Callback {
	return func() {
		if r.closed {
			return
		}
		if err := r.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}); err != nil {
			r.log.WithError(err).WithField("hotkey", spec).Warn("script callback failed")
		}
	}
}

// unbind(id) -> bool
func (r *Runtime) unbind(L *lua.LState) int {
	id := L.CheckString(1)
	h, ok := r.handles[id]
	if ok {
		delete(r.handles, id)
		ok = r.engine.Unregister(h)
	}
	L.Push(lua.LBool(ok))
	return 1
}

func (r *Runtime) scopeFunc(apply func(string)) lua.LGFunction {
	return func(L *lua.LState) int {
		name := L.CheckString(1)
		if name == "" {
			L.ArgError(1, "scope name cannot be empty")
			return 0
		}
		apply(name)
		return 0
	}
}

// is_scope_active(name) -> bool
func (r *Runtime) isScopeActive(L *lua.LState) int {
	L.Push(lua.LBool(r.engine.IsScopeActive(L.CheckString(1))))
	return 1
}

// active_scopes() -> {string}
func (r *Runtime) activeScopes(L *lua.LState) int {
	L.Push(stringTable(L, r.engine.ActiveScopes()))
	return 1
}

// pressed_keys() -> {string}
func (r *Runtime) pressedKeys(L *lua.LState) int {
	L.Push(stringTable(L, r.engine.PressedKeys()))
	return 1
}

// log(...) joins its arguments with spaces and logs them at info.
func (r *Runtime) logFunc(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	r.log.Info("%s", strings.Join(parts, " "))
	return 0
}

func stringTable(L *lua.LState, values []string) *lua.LTable {
	t := L.CreateTable(len(values), 0)
	for _, v := range values {
		t.Append(lua.LString(v))
	}
	return t
}

func stringList(L *lua.LState, t *lua.LTable, arg int) []string {
	var out []string
	t.ForEach(func(_, v lua.LValue) {
		s, ok := v.(lua.LString)
		if !ok {
			L.ArgError(arg, "scopes must be strings")
			return
		}
		out = append(out, string(s))
	})
	return out
}
