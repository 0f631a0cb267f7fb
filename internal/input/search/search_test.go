package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/keyscope/internal/input/key"
	"github.com/dshills/keyscope/internal/input/keymap"
)

func bindings(t *testing.T) []*keymap.Binding {
	t.Helper()
	r := keymap.NewRegistry()
	r.Register(key.MustParseSet("ctrl+s,meta+s"), []string{"editor"}, nil, keymap.WithDescription("save"))
	r.Register(key.MustParseSet("f1"), nil, nil, keymap.WithDescription("toggle list"))
	r.Register(key.MustParseSet("ctrl+q"), nil, nil, keymap.WithDescription("quit"))
	r.Register(key.MustParseSet("j"), []string{"list"}, nil)
	return r.Bindings()
}

func TestText(t *testing.T) {
	bs := bindings(t)

	assert.Equal(t, "save ctrl+s,meta+s editor", Text(bs[0]))
	assert.Equal(t, "toggle list f1", Text(bs[1]))
	assert.Equal(t, "j list", Text(bs[3]))
}

func TestEmptyQueryKeepsOrder(t *testing.T) {
	bs := bindings(t)

	results := Bindings("  ", bs, 0)
	require.Len(t, results, len(bs))
	for i, r := range results {
		assert.Same(t, bs[i], r.Binding)
		assert.Zero(t, r.Score)
	}
}

func TestMatchesDescription(t *testing.T) {
	results := Bindings("tog", bindings(t), 0)

	require.Len(t, results, 1)
	assert.Equal(t, "toggle list", results[0].Binding.Description())
	assert.Equal(t, []int{0, 1, 2}, results[0].Matches)
}

func TestMatchesHotkeysAndScopes(t *testing.T) {
	results := Bindings("ctrl+q", bindings(t), 0)
	require.NotEmpty(t, results)
	assert.Equal(t, "quit", results[0].Binding.Description())

	results = Bindings("editor", bindings(t), 0)
	require.Len(t, results, 1)
	assert.Equal(t, "save", results[0].Binding.Description())
}

func TestQueryIgnoresCaseAndSpaces(t *testing.T) {
	results := Bindings("TOGGLE LIST", bindings(t), 0)

	require.Len(t, results, 1)
	assert.Equal(t, "toggle list", results[0].Binding.Description())
}

func TestNoMatch(t *testing.T) {
	assert.Empty(t, Bindings("zzz", bindings(t), 0))
}

func TestPrefixRanksFirst(t *testing.T) {
	r := keymap.NewRegistry()
	r.Register(key.MustParseSet("a"), nil, nil, keymap.WithDescription("reload scripts"))
	r.Register(key.MustParseSet("b"), nil, nil, keymap.WithDescription("scroll"))

	results := Bindings("scr", r.Bindings(), 0)

	require.Len(t, results, 2)
	assert.Equal(t, "scroll", results[0].Binding.Description())
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestLimit(t *testing.T) {
	assert.Len(t, Bindings("", bindings(t), 2), 2)
	assert.Len(t, Bindings("s", bindings(t), 1), 1)
}
