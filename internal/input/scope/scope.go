// Package scope maintains the set of active activation scopes.
//
// Bindings restricted to scopes only fire while at least one of their
// scopes is active. Any string is a valid scope name, including one that
// has never been enabled; scope operations never fail.
package scope

import (
	"slices"
	"sort"
)

// Set is the set of active scope names. It is not safe for concurrent use.
type Set struct {
	active map[string]struct{}
}

// New creates a set with the given scopes initially active.
// An empty initial set means no scope-restricted binding fires until a
// scope is enabled.
func New(initial ...string) *Set {
	s := &Set{active: make(map[string]struct{}, len(initial))}
	for _, name := range initial {
		s.active[name] = struct{}{}
	}
	return s
}

// Enable activates a scope. It returns false if the scope was already active.
func (s *Set) Enable(name string) bool {
	if _, ok := s.active[name]; ok {
		return false
	}
	s.active[name] = struct{}{}
	return true
}

// Disable deactivates a scope. It returns false if the scope was not active.
func (s *Set) Disable(name string) bool {
	if _, ok := s.active[name]; !ok {
		return false
	}
	delete(s.active, name)
	return true
}

// Toggle enables an inactive scope or disables an active one and returns
// whether the scope is active afterwards. Toggle always changes the set.
func (s *Set) Toggle(name string) bool {
	if s.Disable(name) {
		return false
	}
	s.active[name] = struct{}{}
	return true
}

// IsActive reports whether a scope is active.
func (s *Set) IsActive(name string) bool {
	_, ok := s.active[name]
	return ok
}

// Allows reports whether a binding restricted to scopes may fire.
// An empty scope list is global and is always allowed.
func (s *Set) Allows(scopes []string) bool {
	if len(scopes) == 0 {
		return true
	}
	return slices.ContainsFunc(scopes, s.IsActive)
}

// Len returns the number of active scopes.
func (s *Set) Len() int {
	return len(s.active)
}

// Names returns the active scopes in sorted order.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.active))
	for name := range s.active {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
