package script

import (
	"errors"
	"fmt"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/keyscope/internal/input/keymap"
	"github.com/dshills/keyscope/internal/logging"
)

// GlobalName is the name of the table exposed to scripts.
const GlobalName = "hotkeys"

// Errors returned by Runtime.
var (
	ErrRuntimeClosed    = errors.New("script runtime closed")
	ErrFunctionNotFound = errors.New("function not found")
)

// Engine is the part of the hotkey engine scripts can drive.
// *input.Context implements it.
type Engine interface {
	Register(spec string, scopes []string, callback keymap.Callback, opts ...keymap.Option) (keymap.Handle, error)
	Unregister(h keymap.Handle) bool
	EnableScope(name string)
	DisableScope(name string)
	ToggleScope(name string)
	IsScopeActive(name string) bool
	ActiveScopes() []string
	PressedKeys() []string
}

// Runtime is a sandboxed Lua state bound to an Engine.
type Runtime struct {
	L       *lua.LState
	engine  Engine
	log     *logging.Logger
	handles map[string]keymap.Handle
	loaded  []string
	closed  bool
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger used by hotkeys.log and for callback errors.
func WithLogger(log *logging.Logger) Option {
	return func(r *Runtime) {
		if log != nil {
			r.log = log
		}
	}
}

// NewRuntime creates a Runtime with the hotkeys table installed.
func NewRuntime(engine Engine, opts ...Option) *Runtime {
	r := &Runtime{
		engine:  engine,
		log:     logging.Nop(),
		handles: make(map[string]keymap.Handle),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.WithComponent("script")

	r.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(r.L)
	r.installModule()
	return r
}

// openSafeLibraries opens the base, table, string and math libraries and
// removes the loaders that read from disk.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// LoadFile runs a script file. Errors name the file.
func (r *Runtime) LoadFile(path string) error {
	if r.closed {
		return ErrRuntimeClosed
	}
	name := filepath.Base(path)
	if err := r.protect(func() error { return r.L.DoFile(path) }); err != nil {
		return fmt.Errorf("script %s: %w", name, err)
	}
	r.loaded = append(r.loaded, path)
	r.log.WithField("file", path).Debug("loaded script")
	return nil
}

// LoadString runs a chunk of Lua code. name is used in error messages.
func (r *Runtime) LoadString(name, code string) error {
	if r.closed {
		return ErrRuntimeClosed
	}
	if err := r.protect(func() error { return r.L.DoString(code) }); err != nil {
		return fmt.Errorf("script %s: %w", name, err)
	}
	return nil
}

// Loaded returns the files loaded so far.
func (r *Runtime) Loaded() []string {
	return append([]string(nil), r.loaded...)
}

// Call calls a global Lua function with string arguments.
func (r *Runtime) Call(fn string, args ...string) error {
	if r.closed {
		return ErrRuntimeClosed
	}

	v := r.L.GetGlobal(fn)
	if v == lua.LNil {
		return fmt.Errorf("%w: %q", ErrFunctionNotFound, fn)
	}
	if v.Type() != lua.LTFunction {
		return fmt.Errorf("%q is not a function (got %s)", fn, v.Type())
	}

	largs := make([]lua.LValue, len(args))
	for i, a := range args {
		largs[i] = lua.LString(a)
	}
	return r.protect(func() error {
		return r.L.CallByParam(lua.P{Fn: v, NRet: 0, Protect: true}, largs...)
	})
}

// Global returns a global variable of the Lua state.
func (r *Runtime) Global(name string) lua.LValue {
	if r.closed {
		return lua.LNil
	}
	return r.L.GetGlobal(name)
}

// Bindings returns the number of bindings created by scripts that are
// still registered.
func (r *Runtime) Bindings() int {
	return len(r.handles)
}

// Close unregisters every binding created by scripts and closes the Lua
// state. Close is idempotent.
func (r *Runtime) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	for id, h := range r.handles {
		r.engine.Unregister(h)
		delete(r.handles, id)
	}
	r.L.Close()
	return nil
}

func (r *Runtime) protect(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("lua panic: %v", p)
		}
	}()
	return fn()
}
