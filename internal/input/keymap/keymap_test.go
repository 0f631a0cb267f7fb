package keymap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/keyscope/internal/input/key"
)

// fakeRegistrar records registrations on a plain Registry.
type fakeRegistrar struct {
	reg    *Registry
	scopes []string
}

func newFakeRegistrar() *fakeRegistrar {
	return &fakeRegistrar{reg: NewRegistry()}
}

func (f *fakeRegistrar) RegisterSet(hotkeys key.HotkeySet, scopes []string, cb Callback, opts ...Option) Handle {
	return f.reg.Register(hotkeys, scopes, cb, opts...)
}

func (f *fakeRegistrar) Unregister(h Handle) bool {
	return f.reg.Unregister(h)
}

func (f *fakeRegistrar) EnableScope(name string) {
	f.scopes = append(f.scopes, name)
}

func noopActions() ActionResolver {
	return ActionFunc(func(action string, args []string) (Callback, error) {
		if action == "bogus" {
			return nil, errors.New("unknown action")
		}
		return func() {}, nil
	})
}

func TestKeymapBuilder(t *testing.T) {
	km := NewKeymap("test").WithSource("memory").
		Add("ctrl+k", "log", "hello").
		AddMapping(Mapping{Keys: "g,h", Scopes: []string{"nav"}, Action: "quit"})

	assert.Equal(t, "test", km.Name)
	assert.Equal(t, "memory", km.Source)
	require.Len(t, km.Mappings, 2)
	assert.Equal(t, []string{"hello"}, km.Mappings[0].Args)
	assert.Equal(t, []string{"nav"}, km.ReferencedScopes())
}

func TestKeymapValidate(t *testing.T) {
	km := NewKeymap("ok").Add("ctrl+k", "log")
	assert.NoError(t, km.Validate())

	bad := NewKeymap("bad").
		Add("ctrl+", "log").
		Add("k", "")
	err := bad.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, key.ErrEmptyToken))
	assert.Contains(t, err.Error(), "empty action")
}

func TestKeymapClone(t *testing.T) {
	km := DemoKeymap()
	clone := km.Clone()

	clone.Mappings[0].Args[0] = "changed"
	clone.Scopes[0] = "changed"

	assert.Equal(t, "toggle theme", km.Mappings[0].Args[0])
	assert.Equal(t, "scope_a", km.Scopes[0])
}

func TestKeymapApply(t *testing.T) {
	r := newFakeRegistrar()
	km := NewKeymap("test").
		Add("ctrl+k", "log").
		AddMapping(Mapping{Keys: "g,h", Scopes: []string{"nav"}, Action: "quit", Description: "leave"})
	km.Scopes = []string{"nav"}

	handles, err := km.Apply(r, noopActions())
	require.NoError(t, err)
	require.Len(t, handles, 2)
	assert.Equal(t, 2, r.reg.Len())
	assert.Equal(t, []string{"nav"}, r.scopes)

	assert.Equal(t, "log", r.reg.Get(handles[0]).Description())
	assert.Equal(t, "leave", r.reg.Get(handles[1]).Description())
	assert.Equal(t, 2, r.reg.Get(handles[1]).Hotkeys().Len())
}

func TestKeymapApplyRollsBack(t *testing.T) {
	tests := []struct {
		name string
		km   *Keymap
	}{
		{"bad spec", NewKeymap("x").Add("a", "log").Add("ctrl+", "log")},
		{"bad action", NewKeymap("x").Add("a", "log").Add("b", "bogus")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newFakeRegistrar()
			tt.km.Scopes = []string{"s"}

			handles, err := tt.km.Apply(r, noopActions())
			require.Error(t, err)
			assert.Nil(t, handles)
			assert.Equal(t, 0, r.reg.Len())
			assert.Empty(t, r.scopes)
		})
	}
}

func TestBuiltin(t *testing.T) {
	for _, name := range BuiltinNames() {
		km, ok := Builtin(name)
		require.True(t, ok, name)
		assert.NoError(t, km.Validate())
		assert.Empty(t, km.Lint())
	}

	_, ok := Builtin("nope")
	assert.False(t, ok)
}
