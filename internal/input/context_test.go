package input

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/keyscope/internal/input/key"
	"github.com/dshills/keyscope/internal/input/keymap"
)

func down(c *Context, k string) Result {
	return c.KeyDown(key.NewRawEvent(k))
}

func up(c *Context, k string) Result {
	return c.KeyUp(key.NewRawEvent(k))
}

func mustRegister(t *testing.T, c *Context, spec string, scopes []string, cb func()) keymap.Handle {
	t.Helper()
	h, err := c.Register(spec, scopes, cb)
	require.NoError(t, err)
	return h
}

func counter() (*int, func()) {
	n := 0
	return &n, func() { n++ }
}

func TestScopedArrowUpScenario(t *testing.T) {
	c := New(DefaultConfig())
	n, cb := counter()
	mustRegister(t, c, "arrowup", []string{"a"}, cb)

	c.EnableScope("a")
	res := down(c, "ArrowUp")
	assert.Equal(t, 1, *n)
	assert.True(t, res.Matched())

	up(c, "ArrowUp")
	assert.Equal(t, 1, *n)

	down(c, "ArrowUp")
	assert.Equal(t, 2, *n)
}

func TestTwoBindingsFireInRegistrationOrder(t *testing.T) {
	c := New(DefaultConfig())
	var order []string
	h1 := mustRegister(t, c, "k", nil, func() { order = append(order, "first") })
	h2 := mustRegister(t, c, "K", nil, func() { order = append(order, "second") })

	res := down(c, "k")
	assert.Equal(t, []string{"first", "second"}, order)
	assert.Equal(t, []keymap.Handle{h1, h2}, res.Fired)
	assert.Equal(t, []string{"k"}, res.SuppressedKeys())
}

func TestPressIsIdempotent(t *testing.T) {
	c := New(DefaultConfig())
	n, cb := counter()
	mustRegister(t, c, "k", nil, cb)

	first := down(c, "k")
	second := c.KeyDown(key.NewRawEvent("k").WithRepeat(true))

	assert.True(t, first.Changed)
	assert.True(t, first.Evaluated)
	assert.False(t, second.Changed)
	assert.False(t, second.Evaluated)
	assert.Equal(t, []string{"k"}, c.PressedKeys())
	assert.Equal(t, 1, *n)
	assert.Equal(t, uint64(1), c.Metrics().EvaluationsTotal())
}

func TestFireOnRepeat(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FireOnRepeat = true
	c := New(cfg)
	n, cb := counter()
	mustRegister(t, c, "k", nil, cb)

	down(c, "k")
	res := c.KeyDown(key.NewRawEvent("k").WithRepeat(true))

	assert.False(t, res.Changed)
	assert.True(t, res.Evaluated)
	assert.Equal(t, 2, *n)
	assert.Equal(t, []string{"k"}, c.PressedKeys())
}

func TestPressReleaseRoundTrip(t *testing.T) {
	c := New(DefaultConfig())
	down(c, "a")
	before := c.PressedKeys()

	down(c, "k")
	up(c, "K")

	assert.Equal(t, before, c.PressedKeys())

	res := up(c, "never-pressed")
	assert.False(t, res.Changed)
	assert.False(t, res.Evaluated)
}

func TestScopeGating(t *testing.T) {
	c := New(DefaultConfig())
	n, cb := counter()
	mustRegister(t, c, "k", []string{"a"}, cb)

	down(c, "k")
	assert.Equal(t, 0, *n, "scope inactive")

	res := c.EnableScopeResult("a")
	assert.Equal(t, 1, *n, "enabling the scope arms held keys")
	assert.True(t, res.Matched())
	assert.True(t, c.IsScopeActive("a"))

	res = c.EnableScopeResult("a")
	assert.False(t, res.Changed)
	assert.Equal(t, 1, *n, "re-enabling is not a change")

	c.DisableScope("a")
	up(c, "k")
	down(c, "k")
	assert.Equal(t, 1, *n)
}

func TestScopeListMatchesAnyActiveScope(t *testing.T) {
	c := New(Config{InitialScopes: []string{"b"}})
	n, cb := counter()
	mustRegister(t, c, "k", []string{"a", "b"}, cb)

	down(c, "k")
	assert.Equal(t, 1, *n)
}

func TestGlobalBindingIgnoresScopes(t *testing.T) {
	tests := []struct {
		name   string
		scopes []string
	}{
		{"no scopes", nil},
		{"unrelated scope", []string{"other"}},
		{"several scopes", []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(Config{InitialScopes: tt.scopes})
			n, cb := counter()
			mustRegister(t, c, "k", []string{}, cb)

			down(c, "k")
			assert.Equal(t, 1, *n)
		})
	}
}

func TestAlternatives(t *testing.T) {
	t.Run("first alternative", func(t *testing.T) {
		c := New(DefaultConfig())
		n, cb := counter()
		mustRegister(t, c, "g,h", nil, cb)
		down(c, "g")
		assert.Equal(t, 1, *n)
	})

	t.Run("second alternative", func(t *testing.T) {
		c := New(DefaultConfig())
		n, cb := counter()
		mustRegister(t, c, "g,h", nil, cb)
		res := down(c, "h")
		assert.Equal(t, 1, *n)
		assert.Equal(t, []string{"h"}, res.SuppressedKeys())
	})

	t.Run("neither", func(t *testing.T) {
		c := New(DefaultConfig())
		n, cb := counter()
		mustRegister(t, c, "g,h", nil, cb)
		down(c, "j")
		assert.Equal(t, 0, *n)
	})
}

func TestModifierStrictness(t *testing.T) {
	tests := []struct {
		name  string
		press []string
		fires bool
	}{
		{"key without modifier", []string{"k"}, false},
		{"modifier without key", []string{"Control"}, false},
		{"exact", []string{"Control", "k"}, true},
		{"ctrl alias", []string{"Ctrl", "k"}, true},
		{"extra modifier ignored", []string{"Control", "Shift", "k"}, true},
		{"wrong modifier", []string{"Alt", "k"}, false},
		{"key first then modifier", []string{"k", "Control"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(DefaultConfig())
			n, cb := counter()
			mustRegister(t, c, "ctrl+k", nil, cb)

			for _, k := range tt.press {
				down(c, k)
			}
			if tt.fires {
				assert.Positive(t, *n)
			} else {
				assert.Zero(t, *n)
			}
		})
	}
}

func TestMetaAliases(t *testing.T) {
	c := New(DefaultConfig())
	n, cb := counter()
	mustRegister(t, c, "cmd+s", nil, cb)

	down(c, "Meta")
	down(c, "s")
	assert.Equal(t, 1, *n)
}

func TestBlurReset(t *testing.T) {
	t.Run("default resets", func(t *testing.T) {
		c := New(DefaultConfig())
		down(c, "k")

		res := c.Blur()
		assert.True(t, res.Changed)
		assert.Empty(t, c.PressedKeys())

		res = c.Blur()
		assert.False(t, res.Changed, "empty set is not a change")
	})

	t.Run("opt out keeps keys", func(t *testing.T) {
		c := NewContext(nil, false)
		down(c, "k")

		res := c.Blur()
		assert.False(t, res.Changed)
		assert.Equal(t, []string{"k"}, c.PressedKeys())
	})
}

func TestEveryStateChangeReevaluates(t *testing.T) {
	c := New(DefaultConfig())
	n, cb := counter()
	mustRegister(t, c, "k", nil, cb)

	down(c, "k")
	down(c, "j")
	assert.Equal(t, 2, *n, "k stays satisfied across the press of j")

	up(c, "j")
	assert.Equal(t, 3, *n)

	up(c, "k")
	assert.Equal(t, 3, *n)
}

func TestToggleScope(t *testing.T) {
	c := New(DefaultConfig())
	n, cb := counter()
	mustRegister(t, c, "k", []string{"a"}, cb)
	down(c, "k")

	c.ToggleScope("a")
	assert.True(t, c.IsScopeActive("a"))
	assert.Equal(t, 1, *n)

	res := c.ToggleScopeResult("a")
	assert.False(t, c.IsScopeActive("a"))
	assert.True(t, res.Changed)
	assert.Equal(t, 1, *n)
}

func TestScopeOperationsNeverFail(t *testing.T) {
	c := New(DefaultConfig())
	c.DisableScope("never-seen")
	c.EnableScope("")
	c.ToggleScope("with spaces")

	assert.Equal(t, []string{"", "with spaces"}, c.ActiveScopes())
}

func TestRegisterRejectsMalformedSpec(t *testing.T) {
	c := New(DefaultConfig())

	for _, spec := range []string{"", "ctrl+", ",", "a,,b"} {
		_, err := c.Register(spec, nil, func() {})
		require.Error(t, err, spec)

		var perr *key.ParseError
		assert.ErrorAs(t, err, &perr, spec)
	}
	assert.Empty(t, c.Bindings())
}

func TestRegistrationDoesNotEvaluate(t *testing.T) {
	c := New(DefaultConfig())
	down(c, "k")

	n, cb := counter()
	mustRegister(t, c, "k", nil, cb)
	assert.Equal(t, 0, *n)
}

func TestUnregister(t *testing.T) {
	c := New(DefaultConfig())
	n, cb := counter()
	h := mustRegister(t, c, "k", nil, cb)

	assert.True(t, c.Unregister(h))
	assert.False(t, c.Unregister(h))

	down(c, "k")
	assert.Equal(t, 0, *n)
}

func TestUnregisterDuringPass(t *testing.T) {
	c := New(DefaultConfig())
	n, cb := counter()

	var second keymap.Handle
	mustRegister(t, c, "k", nil, func() { c.Unregister(second) })
	second = mustRegister(t, c, "k", nil, cb)

	res := down(c, "k")
	assert.Equal(t, 0, *n)
	assert.Len(t, res.Fired, 1)
}

func TestRegisterDuringPassWaitsForNextChange(t *testing.T) {
	c := New(DefaultConfig())
	n, cb := counter()
	mustRegister(t, c, "k", nil, func() {
		if *n == 0 {
			mustRegister(t, c, "k", nil, cb)
		}
	})

	down(c, "k")
	assert.Equal(t, 0, *n)

	down(c, "j")
	assert.Equal(t, 1, *n)
}

func TestCallbackScopeChangeRunsNestedPass(t *testing.T) {
	c := New(DefaultConfig())
	n, cb := counter()
	mustRegister(t, c, "k", []string{"inner"}, cb)
	mustRegister(t, c, "k", nil, func() { c.EnableScope("inner") })

	down(c, "k")
	assert.Equal(t, 1, *n)
}

func TestToggleFromCallbackFiresOncePerChange(t *testing.T) {
	c := NewContext([]string{"a"}, true)
	n := 0
	mustRegister(t, c, "1", nil, func() {
		n++
		c.ToggleScope("a")
	})

	down(c, "1")
	assert.Equal(t, 1, n)
	assert.False(t, c.IsScopeActive("a"))

	up(c, "1")
	down(c, "1")
	assert.Equal(t, 2, n)
	assert.True(t, c.IsScopeActive("a"))
}

func TestPanickingCallbackIsRecovered(t *testing.T) {
	c := New(DefaultConfig())
	n, cb := counter()
	mustRegister(t, c, "k", nil, func() { panic("boom") })
	mustRegister(t, c, "k", nil, cb)

	var res Result
	require.NotPanics(t, func() { res = down(c, "k") })
	assert.Equal(t, 1, *n)
	assert.Len(t, res.Fired, 2)
	assert.Equal(t, uint64(1), c.Metrics().RecoveredPanics())
}

func TestSuppressions(t *testing.T) {
	var delivered [][]Suppression
	cfg := DefaultConfig()
	cfg.Suppressor = SuppressorFunc(func(s []Suppression) {
		delivered = append(delivered, s)
	})
	c := New(cfg)
	mustRegister(t, c, "ctrl+k", nil, func() {})
	mustRegister(t, c, "k", []string{"a"}, func() {})

	ctrl := key.NewRawEvent("Control").WithNative("ctrl-event")
	kEv := key.NewRawEvent("K").WithNative("k-event")

	res := c.KeyDown(ctrl)
	assert.Empty(t, res.Suppressed)

	res = c.KeyDown(kEv)
	require.Len(t, res.Suppressed, 1)
	assert.Equal(t, "k", res.Suppressed[0].Key)
	assert.Equal(t, "k-event", res.Suppressed[0].Event.Native)
	assert.True(t, res.IsSuppressed("k"))
	assert.False(t, res.IsSuppressed("control"))

	res = c.EnableScopeResult("a")
	require.Len(t, res.Suppressed, 1, "duplicate keys collapse")
	assert.Len(t, res.Fired, 2)

	require.Len(t, delivered, 2)
	assert.Equal(t, "k-event", delivered[1][0].Event.Native)
}

func TestEmptyKeysAreIgnored(t *testing.T) {
	c := New(DefaultConfig())
	res := down(c, "")
	assert.False(t, res.Changed)
	assert.Empty(t, c.PressedKeys())

	down(c, " ")
	assert.True(t, c.IsPressed("space"))
}

func TestLookup(t *testing.T) {
	c := New(DefaultConfig())
	h := mustRegister(t, c, "k", nil, nil)

	got, ok := c.Lookup(h.ID())
	require.True(t, ok)
	assert.Equal(t, h, got)
	assert.NotNil(t, c.Binding(h))

	c.Unregister(h)
	_, ok = c.Lookup(h.ID())
	assert.False(t, ok)
}

func TestClose(t *testing.T) {
	c := New(Config{InitialScopes: []string{"a"}, AllowBlurReset: true})
	n, cb := counter()
	mustRegister(t, c, "k", nil, cb)
	down(c, "j")

	closed := 0
	c.OnClose(func() { closed++ })

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.True(t, c.Closed())
	assert.Equal(t, 1, closed)

	assert.Empty(t, c.Bindings())
	assert.Empty(t, c.PressedKeys())
	assert.Empty(t, c.ActiveScopes())

	down(c, "k")
	assert.Equal(t, 0, *n)

	_, err := c.Register("k", nil, cb)
	assert.True(t, errors.Is(err, ErrClosed))
	assert.True(t, c.RegisterSet(key.MustParseSet("k"), nil, cb).IsZero())

	c.OnClose(func() { closed++ })
	assert.Equal(t, 2, closed, "OnClose after Close runs immediately")
}

func TestContextsAreIsolated(t *testing.T) {
	a := New(DefaultConfig())
	b := New(DefaultConfig())
	na, cbA := counter()
	nb, cbB := counter()
	mustRegister(t, a, "k", nil, cbA)
	mustRegister(t, b, "k", nil, cbB)

	down(a, "k")
	b.EnableScope("x")

	assert.Equal(t, 1, *na)
	assert.Equal(t, 0, *nb)
	assert.Empty(t, b.PressedKeys())
	assert.Empty(t, a.ActiveScopes())
}

func TestKeymapApplyOnContext(t *testing.T) {
	c := New(DefaultConfig())
	var log []string
	actions := keymap.ActionFunc(func(action string, args []string) (keymap.Callback, error) {
		return func() { log = append(log, action) }, nil
	})

	handles, err := keymap.DemoKeymap().Apply(c, actions)
	require.NoError(t, err)
	assert.Len(t, handles, len(keymap.DemoKeymap().Mappings))
	assert.Equal(t, []string{"scope_a"}, c.ActiveScopes())

	down(c, "ArrowUp")
	assert.Equal(t, []string{"log"}, log)
}
