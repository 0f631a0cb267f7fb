package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/keyscope/internal/input/key"
)

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()

	h := r.Register(key.MustParseSet("ctrl+k"), []string{"editor"}, nil, WithDescription("kill line"))
	require.False(t, h.IsZero())
	assert.Equal(t, uint64(1), h.Seq())
	assert.Equal(t, 1, r.Len())
	assert.True(t, r.Contains(h))

	b := r.Get(h)
	require.NotNil(t, b)
	assert.Equal(t, h, b.Handle())
	assert.Equal(t, []string{"editor"}, b.Scopes())
	assert.False(t, b.IsGlobal())
	assert.Equal(t, "kill line", b.Description())
	assert.True(t, b.Hotkeys().Equal(key.MustParseSet("ctrl+k")))
}

func TestRegistryNoDeduplication(t *testing.T) {
	r := NewRegistry()
	set := key.MustParseSet("k")

	h1 := r.Register(set, nil, nil)
	h2 := r.Register(set, nil, nil)

	assert.NotEqual(t, h1, h2)
	assert.NotEqual(t, h1.ID(), h2.ID())
	assert.Equal(t, 2, r.Len())
}

func TestRegistryUnregisterIdempotent(t *testing.T) {
	r := NewRegistry()
	h := r.Register(key.MustParseSet("k"), nil, nil)

	assert.True(t, r.Unregister(h))
	assert.False(t, r.Unregister(h))
	assert.False(t, r.Unregister(Handle{}))
	assert.False(t, r.Contains(h))
	assert.Nil(t, r.Get(h))
	assert.Equal(t, 0, r.Len())
}

func TestRegistryOrderAndSnapshot(t *testing.T) {
	r := NewRegistry()
	h1 := r.Register(key.MustParseSet("a"), nil, nil)
	h2 := r.Register(key.MustParseSet("b"), nil, nil)
	h3 := r.Register(key.MustParseSet("c"), nil, nil)

	snap := r.Bindings()
	require.Len(t, snap, 3)

	r.Unregister(h2)
	r.Register(key.MustParseSet("d"), nil, nil)

	assert.Equal(t, []Handle{h1, h2, h3}, handlesOf(snap))

	current := handlesOf(r.Bindings())
	require.Len(t, current, 3)
	assert.Equal(t, h1, current[0])
	assert.Equal(t, h3, current[1])
}

func TestRegistryFindByID(t *testing.T) {
	r := NewRegistry()
	h := r.Register(key.MustParseSet("k"), nil, nil)

	b := r.FindByID(h.ID())
	require.NotNil(t, b)
	assert.Equal(t, h, b.Handle())

	r.Unregister(h)
	assert.Nil(t, r.FindByID(h.ID()))
}

func TestRegistryClear(t *testing.T) {
	r := NewRegistry()
	h := r.Register(key.MustParseSet("a"), nil, nil)
	r.Register(key.MustParseSet("b"), nil, nil)

	assert.Equal(t, 2, r.Clear())
	assert.Equal(t, 0, r.Len())
	assert.False(t, r.Contains(h))
}

func TestRegistryScopesCopied(t *testing.T) {
	r := NewRegistry()
	scopes := []string{"a"}
	h := r.Register(key.MustParseSet("k"), scopes, nil)

	scopes[0] = "changed"
	assert.Equal(t, []string{"a"}, r.Get(h).Scopes())
}

func TestBindingInvoke(t *testing.T) {
	r := NewRegistry()
	calls := 0
	h := r.Register(key.MustParseSet("k"), nil, func() { calls++ })
	nilCb := r.Register(key.MustParseSet("j"), nil, nil)

	r.Get(h).Invoke()
	assert.NotPanics(t, func() { r.Get(nilCb).Invoke() })
	assert.Equal(t, 1, calls)
}

func TestBindingString(t *testing.T) {
	r := NewRegistry()
	g := r.Register(key.MustParseSet("ctrl+k"), nil, nil)
	s := r.Register(key.MustParseSet("g,h"), []string{"nav"}, nil)

	assert.Equal(t, "ctrl+k", r.Get(g).String())
	assert.Equal(t, "g,h [nav]", r.Get(s).String())
	assert.Equal(t, "binding(none)", Handle{}.String())
}

func handlesOf(bs []*Binding) []Handle {
	out := make([]Handle, len(bs))
	for i, b := range bs {
		out[i] = b.Handle()
	}
	return out
}
