package input

import (
	"sort"
	"sync"

	"github.com/dshills/keyscope/internal/logging"
)

// KeyEventKind identifies a raw input delivered to a Context.
type KeyEventKind uint8

const (
	// KeyEventDown is a raw key-down.
	KeyEventDown KeyEventKind = iota
	// KeyEventUp is a raw key-up.
	KeyEventUp
	// KeyEventBlur is a loss of focus.
	KeyEventBlur
)

// String returns a string representation of the kind.
func (k KeyEventKind) String() string {
	switch k {
	case KeyEventDown:
		return "keydown"
	case KeyEventUp:
		return "keyup"
	case KeyEventBlur:
		return "blur"
	default:
		return "unknown"
	}
}

// KeyEvent describes a raw input after the Context processed it.
type KeyEvent struct {
	Kind    KeyEventKind
	Key     string
	Changed bool
	Repeat  bool
}

// Hook observes a Context. Hooks cannot veto or alter firing.
type Hook interface {
	// OnKeyEvent is called after a key event has been processed,
	// including any fires it caused.
	OnKeyEvent(ev KeyEvent)

	// OnScopeChange is called when a scope is enabled or disabled,
	// before the evaluation pass it triggers.
	OnScopeChange(name string, active bool)

	// OnFire is called after a binding's callback returned.
	OnFire(f Fire)
}

// HookPriority defines the execution order for hooks.
// Lower values execute first.
type HookPriority int

const (
	// HookPriorityHighest runs before all other hooks.
	HookPriorityHighest HookPriority = -1000
	// HookPriorityHigh runs early in the hook chain.
	HookPriorityHigh HookPriority = -100
	// HookPriorityNormal is the default priority.
	HookPriorityNormal HookPriority = 0
	// HookPriorityLow runs late in the hook chain.
	HookPriorityLow HookPriority = 100
	// HookPriorityLowest runs after all other hooks.
	HookPriorityLowest HookPriority = 1000
)

// HookID uniquely identifies a registered hook.
type HookID uint64

// HookRegistration holds metadata about a registered hook.
type HookRegistration struct {
	ID       HookID
	Name     string
	Priority HookPriority
	Hook     Hook
}

// HookManager manages hooks with support for priorities and named
// registration. Registration is safe for concurrent use; hooks run on the
// goroutine driving the Context.
type HookManager struct {
	mu      sync.RWMutex
	hooks   []HookRegistration
	nextID  HookID
	sorted  bool
	enabled bool
}

// NewHookManager creates a new hook manager.
func NewHookManager() *HookManager {
	return &HookManager{
		hooks:   make([]HookRegistration, 0),
		sorted:  true,
		enabled: true,
	}
}

// Register adds a hook with default priority.
func (m *HookManager) Register(hook Hook) HookID {
	return m.RegisterWithOptions(hook, "", HookPriorityNormal)
}

// RegisterWithPriority adds a hook with specified priority.
func (m *HookManager) RegisterWithPriority(hook Hook, priority HookPriority) HookID {
	return m.RegisterWithOptions(hook, "", priority)
}

// RegisterNamed adds a hook with a name for later reference.
// A hook already registered under the name is replaced.
func (m *HookManager) RegisterNamed(hook Hook, name string) HookID {
	return m.RegisterWithOptions(hook, name, HookPriorityNormal)
}

// RegisterWithOptions adds a hook with all options specified.
func (m *HookManager) RegisterWithOptions(hook Hook, name string, priority HookPriority) HookID {
	m.mu.Lock()
	defer m.mu.Unlock()

	if name != "" {
		m.removeLocked(func(r HookRegistration) bool { return r.Name == name })
	}

	m.nextID++
	m.hooks = append(m.hooks, HookRegistration{
		ID:       m.nextID,
		Name:     name,
		Priority: priority,
		Hook:     hook,
	})
	m.sorted = false
	return m.nextID
}

// Unregister removes a hook by ID.
func (m *HookManager) Unregister(id HookID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.removeLocked(func(r HookRegistration) bool { return r.ID == id })
}

// UnregisterByName removes a hook by name.
func (m *HookManager) UnregisterByName(name string) bool {
	if name == "" {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.removeLocked(func(r HookRegistration) bool { return r.Name == name })
}

func (m *HookManager) removeLocked(match func(HookRegistration) bool) bool {
	for i := range m.hooks {
		if match(m.hooks[i]) {
			m.hooks = append(m.hooks[:i], m.hooks[i+1:]...)
			return true
		}
	}
	return false
}

// Get returns a hook registration by ID.
func (m *HookManager) Get(id HookID) (HookRegistration, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.hooks {
		if r.ID == id {
			return r, true
		}
	}
	return HookRegistration{}, false
}

// GetByName returns a hook registration by name.
func (m *HookManager) GetByName(name string) (HookRegistration, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.hooks {
		if name != "" && r.Name == name {
			return r, true
		}
	}
	return HookRegistration{}, false
}

// SetEnabled enables or disables all hooks.
func (m *HookManager) SetEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = enabled
}

// IsEnabled returns whether hooks are enabled.
func (m *HookManager) IsEnabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled
}

// Count returns the number of registered hooks.
func (m *HookManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.hooks)
}

// List returns all hook registrations in execution order.
func (m *HookManager) List() []HookRegistration {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureSorted()

	result := make([]HookRegistration, len(m.hooks))
	copy(result, m.hooks)
	return result
}

// Clear removes all hooks.
func (m *HookManager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = make([]HookRegistration, 0)
	m.sorted = true
}

// ensureSorted sorts hooks by priority if needed.
func (m *HookManager) ensureSorted() {
	if m.sorted {
		return
	}
	sort.SliceStable(m.hooks, func(i, j int) bool {
		return m.hooks[i].Priority < m.hooks[j].Priority
	})
	m.sorted = true
}

// snapshot returns the hooks to run, in priority order, or nil when
// disabled. Hooks run outside the lock so they may register others.
func (m *HookManager) snapshot() []Hook {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled || len(m.hooks) == 0 {
		return nil
	}
	m.ensureSorted()

	hooks := make([]Hook, len(m.hooks))
	for i := range m.hooks {
		hooks[i] = m.hooks[i].Hook
	}
	return hooks
}

// RunKeyEvent runs all OnKeyEvent hooks in priority order.
func (m *HookManager) RunKeyEvent(ev KeyEvent) {
	for _, hook := range m.snapshot() {
		hook.OnKeyEvent(ev)
	}
}

// RunScopeChange runs all OnScopeChange hooks in priority order.
func (m *HookManager) RunScopeChange(name string, active bool) {
	for _, hook := range m.snapshot() {
		hook.OnScopeChange(name, active)
	}
}

// RunFire runs all OnFire hooks in priority order.
func (m *HookManager) RunFire(f Fire) {
	for _, hook := range m.snapshot() {
		hook.OnFire(f)
	}
}

// BaseHook provides a no-op implementation of the Hook interface.
// Embed this in custom hooks to only implement the methods you need.
type BaseHook struct{}

// OnKeyEvent is a no-op.
func (BaseHook) OnKeyEvent(KeyEvent) {}

// OnScopeChange is a no-op.
func (BaseHook) OnScopeChange(string, bool) {}

// OnFire is a no-op.
func (BaseHook) OnFire(Fire) {}

// FuncHook wraps functions into a Hook interface implementation.
type FuncHook struct {
	KeyEventFunc    func(KeyEvent)
	ScopeChangeFunc func(name string, active bool)
	FireFunc        func(Fire)
}

// OnKeyEvent calls KeyEventFunc if set.
func (h FuncHook) OnKeyEvent(ev KeyEvent) {
	if h.KeyEventFunc != nil {
		h.KeyEventFunc(ev)
	}
}

// OnScopeChange calls ScopeChangeFunc if set.
func (h FuncHook) OnScopeChange(name string, active bool) {
	if h.ScopeChangeFunc != nil {
		h.ScopeChangeFunc(name, active)
	}
}

// OnFire calls FireFunc if set.
func (h FuncHook) OnFire(f Fire) {
	if h.FireFunc != nil {
		h.FireFunc(f)
	}
}

// LoggingHook traces key events, scope changes and fires at debug level.
// Useful for debugging and development.
type LoggingHook struct {
	Logger *logging.Logger
}

// NewLoggingHook creates a logging hook for the given logger.
func NewLoggingHook(log *logging.Logger) LoggingHook {
	return LoggingHook{Logger: log.WithComponent("trace")}
}

// OnKeyEvent logs the key event.
func (h LoggingHook) OnKeyEvent(ev KeyEvent) {
	if h.Logger == nil {
		return
	}
	h.Logger.Debug("%s %s (changed=%t)", ev.Kind, ev.Key, ev.Changed)
}

// OnScopeChange logs the scope change.
func (h LoggingHook) OnScopeChange(name string, active bool) {
	if h.Logger == nil {
		return
	}
	h.Logger.Debug("scope %s active=%t", name, active)
}

// OnFire logs the fired hotkey.
func (h LoggingHook) OnFire(f Fire) {
	if h.Logger == nil {
		return
	}
	h.Logger.Debug("firing hotkey: %s (%s)", f.Hotkey, f.Binding.Description())
}
