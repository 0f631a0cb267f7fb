package keymap

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/dshills/keyscope/internal/input/key"
)

// Callback is the zero-argument action invoked when a binding fires.
type Callback func()

// Handle identifies one registered binding.
// The zero Handle never refers to a binding.
type Handle struct {
	seq uint64
	id  uuid.UUID
}

// Seq returns the registration sequence number (1-based).
func (h Handle) Seq() uint64 {
	return h.seq
}

// ID returns the globally unique identifier of the binding.
// IDs are used to refer to bindings from scripts and remote clients.
func (h Handle) ID() uuid.UUID {
	return h.id
}

// IsZero returns true for the zero Handle.
func (h Handle) IsZero() bool {
	return h.seq == 0
}

// String returns a short representation for logs.
func (h Handle) String() string {
	if h.IsZero() {
		return "binding(none)"
	}
	return fmt.Sprintf("binding(%d:%s)", h.seq, h.id)
}

// Binding is a registered association of hotkey alternatives, scopes and
// a callback. Bindings are immutable once registered.
type Binding struct {
	handle      Handle
	hotkeys     key.HotkeySet
	scopes      []string
	callback    Callback
	description string
}

// Handle returns the handle of the binding.
func (b *Binding) Handle() Handle {
	return b.handle
}

// Hotkeys returns the alternatives of the binding.
func (b *Binding) Hotkeys() key.HotkeySet {
	return b.hotkeys
}

// Scopes returns a copy of the scopes the binding is restricted to.
// An empty list means the binding is global.
func (b *Binding) Scopes() []string {
	return slices.Clone(b.scopes)
}

// IsGlobal returns true if the binding is not restricted to any scope.
func (b *Binding) IsGlobal() bool {
	return len(b.scopes) == 0
}

// Description returns the human-readable description, if any.
func (b *Binding) Description() string {
	return b.description
}

// Invoke runs the callback. A nil callback is a no-op.
func (b *Binding) Invoke() {
	if b.callback != nil {
		b.callback()
	}
}

// String returns a representation like "ctrl+k [editor]".
func (b *Binding) String() string {
	if b.IsGlobal() {
		return b.hotkeys.String()
	}
	return fmt.Sprintf("%s %v", b.hotkeys, b.scopes)
}

// Option configures a binding at registration time.
type Option func(*Binding)

// WithDescription sets the description of a binding.
func WithDescription(desc string) Option {
	return func(b *Binding) {
		b.description = desc
	}
}
