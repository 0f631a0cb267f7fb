// Package actions resolves the action names used in keymap files into
// binding callbacks.
//
// Built-in actions:
//
//	scope.enable <name>    activate a scope
//	scope.disable <name>   deactivate a scope
//	scope.toggle <name>    toggle a scope
//	log [message...]       log the message at info level
//	quit                   call the quit function
//	script:<fn> [args...]  call a function of the script runtime
package actions

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dshills/keyscope/internal/input/keymap"
	"github.com/dshills/keyscope/internal/logging"
)

// Resolver errors.
var (
	// ErrUnknownAction indicates no factory is registered for an action.
	ErrUnknownAction = errors.New("actions: unknown action")

	// ErrMissingArgument indicates an action was declared without a required argument.
	ErrMissingArgument = errors.New("actions: missing argument")

	// ErrNoScripts indicates a script action without a script runtime.
	ErrNoScripts = errors.New("actions: no script runtime")

	// ErrDuplicate indicates an action name is already registered.
	ErrDuplicate = errors.New("actions: action already registered")
)

// ScriptPrefix marks actions that call into the script runtime.
const ScriptPrefix = "script:"

// ScopeTarget is the scope API actions operate on. input.Context
// implements it.
type ScopeTarget interface {
	EnableScope(name string)
	DisableScope(name string)
	ToggleScope(name string)
}

// ScriptRunner calls a named script function.
type ScriptRunner interface {
	Call(fn string, args ...string) error
}

// Factory builds a callback from the arguments declared in a keymap.
type Factory func(args []string) (keymap.Callback, error)

// Resolver maps action names to factories.
type Resolver struct {
	mu        sync.RWMutex
	factories map[string]Factory

	target  ScopeTarget
	scripts ScriptRunner
	quit    func()
	log     *logging.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used by the log action and for script errors.
func WithLogger(log *logging.Logger) Option {
	return func(r *Resolver) {
		r.log = log
	}
}

// WithQuit sets the function called by the quit action.
func WithQuit(fn func()) Option {
	return func(r *Resolver) {
		r.quit = fn
	}
}

// WithScripts sets the runtime used by script: actions.
func WithScripts(s ScriptRunner) Option {
	return func(r *Resolver) {
		r.scripts = s
	}
}

// NewResolver creates a resolver with the built-in actions bound to target.
func NewResolver(target ScopeTarget, opts ...Option) *Resolver {
	r := &Resolver{
		factories: make(map[string]Factory),
		target:    target,
		log:       logging.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.WithComponent("actions")
	r.registerBuiltins()
	return r
}

func (r *Resolver) registerBuiltins() {
	r.factories["scope.enable"] = r.scopeFactory("scope.enable", r.target.EnableScope)
	r.factories["scope.disable"] = r.scopeFactory("scope.disable", r.target.DisableScope)
	r.factories["scope.toggle"] = r.scopeFactory("scope.toggle", r.target.ToggleScope)

	r.factories["log"] = func(args []string) (keymap.Callback, error) {
		msg := strings.Join(args, " ")
		return func() {
			r.log.Info("%s", msg)
		}, nil
	}

	r.factories["quit"] = func([]string) (keymap.Callback, error) {
		return func() {
			if r.quit != nil {
				r.quit()
			}
		}, nil
	}
}

func (r *Resolver) scopeFactory(name string, op func(string)) Factory {
	return func(args []string) (keymap.Callback, error) {
		if len(args) == 0 || args[0] == "" {
			return nil, fmt.Errorf("%w: %s needs a scope name", ErrMissingArgument, name)
		}
		scope := args[0]
		return func() { op(scope) }, nil
	}
}

// Register adds a custom action.
func (r *Resolver) Register(name string, f Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.factories[name]; ok || strings.HasPrefix(name, ScriptPrefix) {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	r.factories[name] = f
	return nil
}

// Has returns true if an action name can be resolved.
func (r *Resolver) Has(name string) bool {
	if strings.HasPrefix(name, ScriptPrefix) {
		return r.scripts != nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

// List returns the registered action names, sorted.
func (r *Resolver) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve implements keymap.ActionResolver.
func (r *Resolver) Resolve(action string, args []string) (keymap.Callback, error) {
	if fn, ok := strings.CutPrefix(action, ScriptPrefix); ok {
		return r.resolveScript(fn, args)
	}

	r.mu.RLock()
	f, ok := r.factories[action]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	return f(args)
}

func (r *Resolver) resolveScript(fn string, args []string) (keymap.Callback, error) {
	if r.scripts == nil {
		return nil, fmt.Errorf("%w: %s%s", ErrNoScripts, ScriptPrefix, fn)
	}
	if fn == "" {
		return nil, fmt.Errorf("%w: %s needs a function name", ErrMissingArgument, ScriptPrefix)
	}

	scripts := r.scripts
	return func() {
		if err := scripts.Call(fn, args...); err != nil {
			r.log.WithError(err).Warn("script action %s failed", fn)
		}
	}, nil
}
