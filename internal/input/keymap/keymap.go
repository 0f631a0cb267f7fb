package keymap

import (
	"errors"
	"fmt"
	"slices"

	"github.com/dshills/keyscope/internal/input/key"
)

// Mapping declares one binding in a keymap file.
type Mapping struct {
	// Keys is the combination spec. Alternatives are separated by ",".
	// Examples: "ctrl+s", "g,h", "ctrl+k,meta+k"
	Keys string `json:"keys" toml:"keys" yaml:"keys"`

	// Scopes restricts the mapping. Empty means global.
	Scopes []string `json:"scopes,omitempty" toml:"scopes,omitempty" yaml:"scopes,omitempty"`

	// Action names the callback to run.
	// Examples: "scope.toggle", "log", "script:increment"
	Action string `json:"action" toml:"action" yaml:"action"`

	// Args are fixed arguments for the action.
	Args []string `json:"args,omitempty" toml:"args,omitempty" yaml:"args,omitempty"`

	// Description documents the mapping.
	Description string `json:"description,omitempty" toml:"description,omitempty" yaml:"description,omitempty"`
}

// Keymap is a named collection of mappings.
type Keymap struct {
	// Name is the keymap identifier.
	Name string `json:"name" toml:"name" yaml:"name"`

	// Description documents the keymap.
	Description string `json:"description,omitempty" toml:"description,omitempty" yaml:"description,omitempty"`

	// Scopes are activated when the keymap is applied.
	Scopes []string `json:"scopes,omitempty" toml:"scopes,omitempty" yaml:"scopes,omitempty"`

	// Mappings are the declared bindings.
	Mappings []Mapping `json:"bindings" toml:"bindings" yaml:"bindings"`

	// Source indicates where this keymap was loaded from.
	// Examples: "builtin:demo", "/home/me/.config/keyscope/keys.toml"
	Source string `json:"-" toml:"-" yaml:"-"`
}

// NewKeymap creates a new keymap with the given name.
func NewKeymap(name string) *Keymap {
	return &Keymap{
		Name:     name,
		Mappings: make([]Mapping, 0),
	}
}

// WithSource sets the source for this keymap.
func (k *Keymap) WithSource(source string) *Keymap {
	k.Source = source
	return k
}

// Add adds a mapping to this keymap.
func (k *Keymap) Add(keys, action string, args ...string) *Keymap {
	k.Mappings = append(k.Mappings, Mapping{
		Keys:   keys,
		Action: action,
		Args:   args,
	})
	return k
}

// AddMapping adds a fully configured mapping to this keymap.
func (k *Keymap) AddMapping(m Mapping) *Keymap {
	k.Mappings = append(k.Mappings, m)
	return k
}

// Validate checks that every mapping has an action and a parseable spec.
// All problems are reported, joined into one error.
func (k *Keymap) Validate() error {
	var errs []error
	for i, m := range k.Mappings {
		if m.Action == "" {
			errs = append(errs, fmt.Errorf("mapping %d (%s): empty action", i, m.Keys))
		}
		if _, err := key.ParseSet(m.Keys); err != nil {
			errs = append(errs, fmt.Errorf("mapping %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Clone creates a deep copy of the keymap.
func (k *Keymap) Clone() *Keymap {
	clone := &Keymap{
		Name:        k.Name,
		Description: k.Description,
		Scopes:      slices.Clone(k.Scopes),
		Source:      k.Source,
		Mappings:    make([]Mapping, len(k.Mappings)),
	}
	for i, m := range k.Mappings {
		clone.Mappings[i] = Mapping{
			Keys:        m.Keys,
			Scopes:      slices.Clone(m.Scopes),
			Action:      m.Action,
			Args:        slices.Clone(m.Args),
			Description: m.Description,
		}
	}
	return clone
}

// ReferencedScopes returns every scope named by the keymap, sorted.
func (k *Keymap) ReferencedScopes() []string {
	scopes := slices.Clone(k.Scopes)
	for _, m := range k.Mappings {
		for _, s := range m.Scopes {
			if !slices.Contains(scopes, s) {
				scopes = append(scopes, s)
			}
		}
	}
	slices.Sort(scopes)
	return slices.Compact(scopes)
}

// Registrar registers parsed bindings. input.Context implements it.
type Registrar interface {
	RegisterSet(hotkeys key.HotkeySet, scopes []string, callback Callback, opts ...Option) Handle
	Unregister(h Handle) bool
	EnableScope(name string)
}

// ActionResolver turns an action name and its arguments into a callback.
type ActionResolver interface {
	Resolve(action string, args []string) (Callback, error)
}

// ActionFunc adapts a function to the ActionResolver interface.
type ActionFunc func(action string, args []string) (Callback, error)

// Resolve implements ActionResolver.
func (f ActionFunc) Resolve(action string, args []string) (Callback, error) {
	return f(action, args)
}

// Apply registers every mapping of the keymap on r, resolving actions
// through actions, then enables the keymap's initial scopes. Either all
// mappings are registered or, on the first error, none are and no scope
// is enabled.
func (k *Keymap) Apply(r Registrar, actions ActionResolver) ([]Handle, error) {
	handles := make([]Handle, 0, len(k.Mappings))
	rollback := func() {
		for _, h := range handles {
			r.Unregister(h)
		}
	}

	for i, m := range k.Mappings {
		set, err := key.ParseSet(m.Keys)
		if err != nil {
			rollback()
			return nil, fmt.Errorf("keymap %q: mapping %d: %w", k.Name, i, err)
		}
		cb, err := actions.Resolve(m.Action, m.Args)
		if err != nil {
			rollback()
			return nil, fmt.Errorf("keymap %q: mapping %d (%s): %w", k.Name, i, m.Keys, err)
		}
		desc := m.Description
		if desc == "" {
			desc = m.Action
		}
		handles = append(handles, r.RegisterSet(set, m.Scopes, cb, WithDescription(desc)))
	}
	for _, s := range k.Scopes {
		r.EnableScope(s)
	}
	return handles, nil
}
