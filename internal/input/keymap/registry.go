package keymap

import (
	"slices"

	"github.com/google/uuid"

	"github.com/dshills/keyscope/internal/input/key"
)

// Registry owns the registered bindings.
//
// Bindings are kept in registration order. Registering never fails and
// never deduplicates: registering the same combination twice yields two
// independent bindings. The registry is not safe for concurrent use; it
// is owned by a single input.Context.
type Registry struct {
	bindings []*Binding
	byHandle map[Handle]*Binding
	nextSeq  uint64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		bindings: make([]*Binding, 0),
		byHandle: make(map[Handle]*Binding),
	}
}

// Register adds a binding and returns its handle.
// Scopes are copied; a nil or empty list registers a global binding.
func (r *Registry) Register(hotkeys key.HotkeySet, scopes []string, callback Callback, opts ...Option) Handle {
	r.nextSeq++
	b := &Binding{
		handle:   Handle{seq: r.nextSeq, id: uuid.New()},
		hotkeys:  hotkeys,
		scopes:   slices.Clone(scopes),
		callback: callback,
	}
	for _, opt := range opts {
		opt(b)
	}

	r.bindings = append(r.bindings, b)
	r.byHandle[b.handle] = b
	return b.handle
}

// Unregister removes a binding. Unregistering an unknown or already
// removed handle is a no-op and returns false.
func (r *Registry) Unregister(h Handle) bool {
	b, ok := r.byHandle[h]
	if !ok {
		return false
	}
	delete(r.byHandle, h)
	if i := slices.Index(r.bindings, b); i >= 0 {
		r.bindings = slices.Delete(r.bindings, i, i+1)
	}
	return true
}

// Contains reports whether a handle refers to a registered binding.
func (r *Registry) Contains(h Handle) bool {
	_, ok := r.byHandle[h]
	return ok
}

// Get returns the binding for a handle, or nil.
func (r *Registry) Get(h Handle) *Binding {
	return r.byHandle[h]
}

// FindByID returns the binding with the given ID, or nil.
func (r *Registry) FindByID(id uuid.UUID) *Binding {
	for _, b := range r.bindings {
		if b.handle.id == id {
			return b
		}
	}
	return nil
}

// Bindings returns a snapshot of the bindings in registration order.
// Later registrations and removals do not affect the returned slice.
func (r *Registry) Bindings() []*Binding {
	return slices.Clone(r.bindings)
}

// Len returns the number of registered bindings.
func (r *Registry) Len() int {
	return len(r.bindings)
}

// Clear removes every binding and returns how many were removed.
func (r *Registry) Clear() int {
	n := len(r.bindings)
	r.bindings = r.bindings[:0]
	clear(r.byHandle)
	return n
}
