package keymap

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tomlKeymap = `
name = "editor"
scopes = ["main"]

[[bindings]]
keys = "ctrl+s"
action = "log"
args = ["saved"]

[[bindings]]
keys = "g,h"
scopes = ["main"]
action = "scope.toggle"
args = ["nav"]
description = "Toggle navigation"
`

const yamlKeymap = `
name: editor
scopes: [main]
bindings:
  - keys: ctrl+s
    action: log
    args: [saved]
  - keys: g,h
    scopes: [main]
    action: scope.toggle
    args: [nav]
    description: Toggle navigation
`

const jsonKeymap = `{
  "name": "editor",
  "scopes": ["main"],
  "bindings": [
    {"keys": "ctrl+s", "action": "log", "args": ["saved"]},
    {"keys": "g,h", "scopes": ["main"], "action": "scope.toggle", "args": ["nav"], "description": "Toggle navigation"}
  ]
}`

func TestLoadReaderFormats(t *testing.T) {
	tests := []struct {
		format Format
		data   string
	}{
		{FormatTOML, tomlKeymap},
		{FormatYAML, yamlKeymap},
		{FormatJSON, jsonKeymap},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			km, err := NewLoader().LoadReader(strings.NewReader(tt.data), tt.format)
			require.NoError(t, err)

			assert.Equal(t, "editor", km.Name)
			assert.Equal(t, []string{"main"}, km.Scopes)
			require.Len(t, km.Mappings, 2)
			assert.Equal(t, Mapping{Keys: "ctrl+s", Action: "log", Args: []string{"saved"}}, km.Mappings[0])
			assert.Equal(t, "Toggle navigation", km.Mappings[1].Description)
			assert.Equal(t, []string{"main"}, km.Mappings[1].Scopes)
			assert.NoError(t, km.Validate())
		})
	}
}

func TestLoadReaderErrors(t *testing.T) {
	_, err := NewLoader().LoadReader(strings.NewReader("name = "), FormatTOML)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, FormatTOML, le.Format)

	_, err = NewLoader().LoadReader(strings.NewReader(`{"nmae": "x"}`), FormatJSON)
	assert.ErrorAs(t, err, &le)

	_, err = NewLoader().LoadReader(strings.NewReader(""), Format("ini"))
	assert.True(t, errors.Is(err, ErrUnknownFormat))
}

func TestFormatForPath(t *testing.T) {
	tests := map[string]Format{
		"a.toml":    FormatTOML,
		"a.yaml":    FormatYAML,
		"dir/a.YML": FormatYAML,
		"a.json":    FormatJSON,
	}
	for path, want := range tests {
		got, err := FormatForPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := FormatForPath("a.txt")
	assert.True(t, errors.Is(err, ErrUnknownFormat))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mykeys.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[bindings]]\nkeys = \"k\"\naction = \"quit\"\n"), 0o644))

	km, err := NewLoader().LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "mykeys", km.Name)
	assert.Equal(t, path, km.Source)
	require.Len(t, km.Mappings, 1)

	_, err = NewLoader().LoadFile(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}

func TestLoadFileErrorCarriesPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bindings: [\n"), 0o644))

	_, err := NewLoader().LoadFile(path)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, path, le.Path)
	assert.Contains(t, err.Error(), "broken.yaml")
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.toml"), []byte(tomlKeymap), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte(yamlKeymap), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.json"), []byte("{"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	l := NewLoader()
	l.AddSearchPath(dir)
	l.AddSearchPath(filepath.Join(dir, "does-not-exist"))
	assert.Len(t, l.SearchPaths(), 2)

	keymaps, err := l.LoadAll()
	assert.Error(t, err)
	assert.Len(t, keymaps, 2)
}

func TestEncodeRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatTOML, FormatYAML, FormatJSON} {
		t.Run(string(format), func(t *testing.T) {
			km := DemoKeymap()

			var buf bytes.Buffer
			require.NoError(t, km.Encode(&buf, format))

			got, err := NewLoader().LoadReader(&buf, format)
			require.NoError(t, err)
			assert.Equal(t, km.Name, got.Name)
			assert.Equal(t, km.Scopes, got.Scopes)
			assert.Equal(t, km.Mappings, got.Mappings)
		})
	}
}

func TestSaveFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.yaml")
	require.NoError(t, DemoKeymap().SaveFile(path))

	km, err := NewLoader().LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", km.Name)

	assert.True(t, errors.Is(DemoKeymap().SaveFile("demo.ini"), ErrUnknownFormat))
}
