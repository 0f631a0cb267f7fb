package key

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func heldSet(keys ...string) func(string) bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return func(k string) bool { return m[k] }
}

func TestHotkeyEqualIgnoresKeyOrder(t *testing.T) {
	a := NewHotkey(ModCtrl, "a", "b")
	b := NewHotkey(ModCtrl, "B", "A")
	c := NewHotkey(ModShift, "a", "b")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.Equal(t, "ctrl+a+b", a.String())
	assert.Equal(t, "ctrl+b+a", b.String(), "String keeps written order")
}

func TestHotkeyKeysIsCopy(t *testing.T) {
	h := NewHotkey(ModNone, "k")
	keys := h.Keys()
	keys[0] = "x"
	assert.Equal(t, []string{"k"}, h.Keys())
}

func TestHotkeyStringRoundTrip(t *testing.T) {
	for _, spec := range []string{"ctrl+k", "ctrl+shift+alt+meta+x", "g", "arrowup", "a+b"} {
		h := MustParse(spec)
		again, err := Parse(h.String())
		require.NoError(t, err)
		assert.True(t, h.Equal(again), spec)
	}
}

func TestHotkeyMatches(t *testing.T) {
	tests := []struct {
		name string
		spec string
		held []string
		want bool
	}{
		{"plain key held", "k", []string{"k"}, true},
		{"plain key not held", "k", nil, false},
		{"modifier missing", "ctrl+k", []string{"k"}, false},
		{"modifier present", "ctrl+k", []string{"control", "k"}, true},
		{"extra modifier ignored", "ctrl+k", []string{"control", "shift", "k"}, true},
		{"extra key ignored", "k", []string{"k", "j"}, true},
		{"all modifiers", "ctrl+shift+alt+meta+k", []string{"control", "shift", "alt", "meta", "k"}, true},
		{"one of many keys missing", "a+b", []string{"a"}, false},
		{"modifier only", "shift", []string{"shift"}, true},
		{"modifier only not held", "shift", []string{"k"}, false},
		{"meta alias", "cmd+s", []string{"meta", "s"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MustParse(tt.spec).Matches(heldSet(tt.held...)))
		})
	}
}

func TestHotkeySetMatchAlternatives(t *testing.T) {
	set := MustParseSet("g,h")

	h, ok := set.Match(heldSet("g"))
	require.True(t, ok)
	assert.Equal(t, "g", h.String())

	h, ok = set.Match(heldSet("h"))
	require.True(t, ok)
	assert.Equal(t, "h", h.String())

	_, ok = set.Match(heldSet("j"))
	assert.False(t, ok)
}

func TestHotkeySetStableOrder(t *testing.T) {
	a := NewHotkeySet(MustParse("shift+j"), MustParse("ctrl+k"))
	b := NewHotkeySet(MustParse("ctrl+k"), MustParse("shift+j"))

	assert.Equal(t, a.String(), b.String())
	assert.True(t, a.Equal(b))

	// Both alternatives held: the first in iteration order wins.
	h, ok := a.Match(heldSet("control", "shift", "j", "k"))
	require.True(t, ok)
	assert.Equal(t, a.Hotkeys()[0].String(), h.String())
}

func TestHotkeySetUnion(t *testing.T) {
	u := MustParseSet("a,b").Union(MustParseSet("b,c"))
	assert.Equal(t, 3, u.Len())
	assert.Equal(t, "a,b,c", u.String())
}
