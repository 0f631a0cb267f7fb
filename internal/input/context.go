package input

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dshills/keyscope/internal/input/key"
	"github.com/dshills/keyscope/internal/input/keymap"
	"github.com/dshills/keyscope/internal/input/pressed"
	"github.com/dshills/keyscope/internal/input/scope"
	"github.com/dshills/keyscope/internal/logging"
)

// ErrClosed is returned when registering on a closed Context.
var ErrClosed = errors.New("hotkeys context closed")

// Config configures a Context.
type Config struct {
	// InitialScopes are active when the Context is created.
	// Empty means no scope-restricted binding fires until a scope is enabled.
	InitialScopes []string

	// AllowBlurReset clears the pressed keys on Blur (default: true).
	// When false, held keys persist across focus loss.
	AllowBlurReset bool

	// FireOnRepeat runs an evaluation pass for a key-down of a key that is
	// already held (default: false).
	FireOnRepeat bool

	// Logger receives engine logs. Defaults to a discarding logger.
	Logger *logging.Logger

	// Suppressor receives default-suppression instructions. Optional.
	Suppressor Suppressor

	// Hooks observe key events, scope changes and fires. Optional.
	Hooks *HookManager

	// Metrics collects counters and latencies. Optional.
	Metrics *Metrics
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		AllowBlurReset: true,
	}
}

// Context is the hotkey matching and scope engine state.
// It is not safe for concurrent use; see Loop.
type Context struct {
	config     Config
	log        *logging.Logger
	pressed    *pressed.Set
	scopes     *scope.Set
	registry   *keymap.Registry
	hooks      *HookManager
	metrics    *Metrics
	suppressor Suppressor
	closers    []func()
	closed     bool

	// depth counts evaluation passes in progress. fired holds the bindings
	// already fired by the outermost pass and the passes nested in it.
	depth int
	fired map[keymap.Handle]struct{}
}

// New creates a Context.
func New(config Config) *Context {
	log := config.Logger
	if log == nil {
		log = logging.Nop()
	}
	hooks := config.Hooks
	if hooks == nil {
		hooks = NewHookManager()
	}
	metrics := config.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}

	return &Context{
		config:     config,
		log:        log.WithComponent("hotkeys"),
		pressed:    pressed.New(),
		scopes:     scope.New(config.InitialScopes...),
		registry:   keymap.NewRegistry(),
		hooks:      hooks,
		metrics:    metrics,
		suppressor: config.Suppressor,
	}
}

// NewContext creates a Context with the given initial scopes and blur
// reset policy and default settings otherwise.
func NewContext(initialScopes []string, allowBlurReset bool) *Context {
	cfg := DefaultConfig()
	cfg.InitialScopes = initialScopes
	cfg.AllowBlurReset = allowBlurReset
	return New(cfg)
}

// Hooks returns the hook manager.
func (c *Context) Hooks() *HookManager {
	return c.hooks
}

// Metrics returns the metrics collector.
func (c *Context) Metrics() *Metrics {
	return c.metrics
}

// Config returns the configuration the Context was created with.
func (c *Context) Config() Config {
	return c.config
}

// Register parses spec and registers a binding for it.
// A malformed spec is rejected with a *key.ParseError and no binding is
// created.
func (c *Context) Register(spec string, scopes []string, callback keymap.Callback, opts ...keymap.Option) (keymap.Handle, error) {
	if c.closed {
		return keymap.Handle{}, ErrClosed
	}
	set, err := key.ParseSet(spec)
	if err != nil {
		return keymap.Handle{}, err
	}
	return c.RegisterSet(set, scopes, callback, opts...), nil
}

// RegisterSet registers a binding for already parsed hotkeys.
// It returns the zero Handle if the Context is closed. Registration does
// not run an evaluation pass.
func (c *Context) RegisterSet(hotkeys key.HotkeySet, scopes []string, callback keymap.Callback, opts ...keymap.Option) keymap.Handle {
	if c.closed {
		return keymap.Handle{}
	}
	h := c.registry.Register(hotkeys, scopes, callback, opts...)
	c.log.WithFields(map[string]any{
		"binding": h.ID().String(),
		"hotkeys": hotkeys.String(),
	}).Debug("registered binding")
	return h
}

// Unregister removes a binding. It takes effect immediately, including
// for the rest of an evaluation pass in progress. Unknown handles are a
// no-op; the result reports whether a binding was removed.
func (c *Context) Unregister(h keymap.Handle) bool {
	return c.registry.Unregister(h)
}

// Lookup finds the handle of a registered binding by its ID.
func (c *Context) Lookup(id uuid.UUID) (keymap.Handle, bool) {
	b := c.registry.FindByID(id)
	if b == nil {
		return keymap.Handle{}, false
	}
	return b.Handle(), true
}

// Binding returns the registered binding for a handle, or nil.
func (c *Context) Binding(h keymap.Handle) *keymap.Binding {
	return c.registry.Get(h)
}

// Bindings returns a snapshot of the registered bindings in registration order.
func (c *Context) Bindings() []*keymap.Binding {
	return c.registry.Bindings()
}

// KeyDown records a raw key-down event.
func (c *Context) KeyDown(ev key.RawEvent) Result {
	if c.closed {
		return Result{}
	}
	k := ev.Normalized()
	if k == "" {
		return Result{}
	}

	var res Result
	switch {
	case c.pressed.Press(ev):
		res = c.evaluate(TriggerPress)
		res.Changed = true
	case c.config.FireOnRepeat:
		res = c.evaluate(TriggerRepeat)
	}
	c.hooks.RunKeyEvent(KeyEvent{Kind: KeyEventDown, Key: k, Changed: res.Changed, Repeat: ev.Repeat})
	return res
}

// KeyUp records a raw key-up event. Releasing a key that is not held is a
// no-op.
func (c *Context) KeyUp(ev key.RawEvent) Result {
	if c.closed {
		return Result{}
	}
	k := ev.Normalized()
	if k == "" {
		return Result{}
	}

	var res Result
	if c.pressed.Release(k) {
		res = c.evaluate(TriggerRelease)
		res.Changed = true
	}
	c.hooks.RunKeyEvent(KeyEvent{Kind: KeyEventUp, Key: k, Changed: res.Changed})
	return res
}

// Blur handles loss of focus. Held keys are released unless the Context
// was configured without AllowBlurReset.
func (c *Context) Blur() Result {
	if c.closed {
		return Result{}
	}

	var res Result
	if c.config.AllowBlurReset && c.pressed.Reset() {
		res = c.evaluate(TriggerReset)
		res.Changed = true
	}
	c.hooks.RunKeyEvent(KeyEvent{Kind: KeyEventBlur, Changed: res.Changed})
	return res
}

// EnableScope activates a scope. Bindings restricted to it whose keys are
// already held fire immediately.
func (c *Context) EnableScope(name string) {
	c.scopeChanged(name, c.scopes.Enable(name))
}

// DisableScope deactivates a scope.
func (c *Context) DisableScope(name string) {
	c.scopeChanged(name, c.scopes.Disable(name))
}

// ToggleScope enables a scope if inactive and disables it otherwise.
func (c *Context) ToggleScope(name string) {
	c.scopes.Toggle(name)
	c.scopeChanged(name, true)
}

// EnableScopeResult is EnableScope returning the evaluation result.
func (c *Context) EnableScopeResult(name string) Result {
	return c.scopeChanged(name, c.scopes.Enable(name))
}

// DisableScopeResult is DisableScope returning the evaluation result.
func (c *Context) DisableScopeResult(name string) Result {
	return c.scopeChanged(name, c.scopes.Disable(name))
}

// ToggleScopeResult is ToggleScope returning the evaluation result.
func (c *Context) ToggleScopeResult(name string) Result {
	c.scopes.Toggle(name)
	return c.scopeChanged(name, true)
}

func (c *Context) scopeChanged(name string, changed bool) Result {
	if !changed || c.closed {
		return Result{}
	}
	active := c.scopes.IsActive(name)
	c.log.WithFields(map[string]any{"scope": name, "active": active}).Debug("scope changed")
	c.hooks.RunScopeChange(name, active)

	res := c.evaluate(TriggerScope)
	res.Changed = true
	return res
}

// IsScopeActive reports whether a scope is active.
func (c *Context) IsScopeActive(name string) bool {
	return c.scopes.IsActive(name)
}

// ActiveScopes returns the active scopes, sorted.
func (c *Context) ActiveScopes() []string {
	return c.scopes.Names()
}

// PressedKeys returns the held keys in press order.
func (c *Context) PressedKeys() []string {
	return c.pressed.Keys()
}

// IsPressed reports whether a key is held. The name is normalized.
func (c *Context) IsPressed(name string) bool {
	return c.pressed.Has(key.NormalizeKey(name))
}

// OnClose registers fn to run when the Context is closed. Sources use it
// to detach from their event stream.
func (c *Context) OnClose(fn func()) {
	if c.closed {
		fn()
		return
	}
	c.closers = append(c.closers, fn)
}

// Closed reports whether Close has been called.
func (c *Context) Closed() bool {
	return c.closed
}

// Close releases all bindings and clears the pressed keys and scopes.
// Subsequent events are ignored. Close is idempotent.
func (c *Context) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	n := c.registry.Clear()
	c.pressed.Reset()
	for _, name := range c.scopes.Names() {
		c.scopes.Disable(name)
	}

	closers := c.closers
	c.closers = nil
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}

	c.log.Debug("closed, released %d bindings", n)
	return nil
}

// String returns a short description for diagnostics.
func (c *Context) String() string {
	return fmt.Sprintf("hotkeys(bindings=%d pressed=%v scopes=%v)",
		c.registry.Len(), c.pressed.Keys(), c.scopes.Names())
}
