package actions

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/keyscope/internal/input"
	"github.com/dshills/keyscope/internal/input/key"
	"github.com/dshills/keyscope/internal/input/keymap"
	"github.com/dshills/keyscope/internal/logging"
)

type fakeScripts struct {
	calls []string
	err   error
}

func (f *fakeScripts) Call(fn string, args ...string) error {
	f.calls = append(f.calls, fn)
	return f.err
}

func TestScopeActions(t *testing.T) {
	c := input.New(input.DefaultConfig())
	r := NewResolver(c)

	enable, err := r.Resolve("scope.enable", []string{"a"})
	require.NoError(t, err)
	toggle, err := r.Resolve("scope.toggle", []string{"a"})
	require.NoError(t, err)
	disable, err := r.Resolve("scope.disable", []string{"b"})
	require.NoError(t, err)

	enable()
	assert.Equal(t, []string{"a"}, c.ActiveScopes())
	toggle()
	assert.Empty(t, c.ActiveScopes())
	c.EnableScope("b")
	disable()
	assert.Empty(t, c.ActiveScopes())
}

func TestScopeActionsNeedArgument(t *testing.T) {
	r := NewResolver(input.New(input.DefaultConfig()))
	for _, name := range []string{"scope.enable", "scope.disable", "scope.toggle"} {
		_, err := r.Resolve(name, nil)
		assert.True(t, errors.Is(err, ErrMissingArgument), name)
	}
}

func TestLogAction(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(logging.Config{Level: "info", Output: &buf})
	r := NewResolver(input.New(input.DefaultConfig()), WithLogger(log))

	cb, err := r.Resolve("log", []string{"counter", "up"})
	require.NoError(t, err)
	cb()

	assert.Contains(t, buf.String(), "counter up")
	assert.Contains(t, buf.String(), "component=actions")
}

func TestQuitAction(t *testing.T) {
	quit := 0
	r := NewResolver(input.New(input.DefaultConfig()), WithQuit(func() { quit++ }))

	cb, err := r.Resolve("quit", nil)
	require.NoError(t, err)
	cb()
	assert.Equal(t, 1, quit)

	noQuit := NewResolver(input.New(input.DefaultConfig()))
	cb, err = noQuit.Resolve("quit", nil)
	require.NoError(t, err)
	assert.NotPanics(t, assert.PanicTestFunc(cb))
}

func TestScriptActions(t *testing.T) {
	scripts := &fakeScripts{}
	r := NewResolver(input.New(input.DefaultConfig()), WithScripts(scripts))

	cb, err := r.Resolve("script:increment", []string{"1"})
	require.NoError(t, err)
	cb()
	assert.Equal(t, []string{"increment"}, scripts.calls)
	assert.True(t, r.Has("script:anything"))

	scripts.err = errors.New("lua error")
	assert.NotPanics(t, assert.PanicTestFunc(cb))

	_, err = r.Resolve("script:", nil)
	assert.True(t, errors.Is(err, ErrMissingArgument))

	plain := NewResolver(input.New(input.DefaultConfig()))
	_, err = plain.Resolve("script:increment", nil)
	assert.True(t, errors.Is(err, ErrNoScripts))
	assert.False(t, plain.Has("script:increment"))
}

func TestUnknownAction(t *testing.T) {
	r := NewResolver(input.New(input.DefaultConfig()))
	_, err := r.Resolve("editor.save", nil)
	assert.True(t, errors.Is(err, ErrUnknownAction))
}

func TestRegisterCustom(t *testing.T) {
	r := NewResolver(input.New(input.DefaultConfig()))
	called := false
	require.NoError(t, r.Register("beep", func([]string) (keymap.Callback, error) {
		return func() { called = true }, nil
	}))

	assert.True(t, errors.Is(r.Register("beep", nil), ErrDuplicate))
	assert.True(t, errors.Is(r.Register("log", nil), ErrDuplicate))
	assert.True(t, errors.Is(r.Register("script:x", nil), ErrDuplicate))

	cb, err := r.Resolve("beep", nil)
	require.NoError(t, err)
	cb()
	assert.True(t, called)

	assert.Equal(t, []string{"beep", "log", "quit", "scope.disable", "scope.enable", "scope.toggle"}, r.List())
}

func TestDemoKeymapResolves(t *testing.T) {
	c := input.New(input.DefaultConfig())
	quit := false
	r := NewResolver(c, WithQuit(func() { quit = true }))

	_, err := keymap.DemoKeymap().Apply(c, r)
	require.NoError(t, err)

	c.KeyDown(key.NewRawEvent("1"))
	assert.Empty(t, c.ActiveScopes(), "1 toggles scope_a off")

	c.KeyDown(key.NewRawEvent("Control"))
	c.KeyDown(key.NewRawEvent("q"))
	assert.True(t, quit)
}
