// Package config loads keyscope configuration files.
//
// Configuration is read from TOML or YAML, selected by file extension.
// Fields missing from the file keep their defaults:
//
//	[engine]
//	initial_scopes = ["scope_a"]
//	allow_blur_reset = true
//	fire_on_repeat = false
//
//	[log]
//	level = "info"
//	format = "text"
//
//	[keymaps]
//	builtin = "demo"
//	files = ["keys.toml"]
//	dirs = ["keymaps"]
//	watch = true
//	debounce = "200ms"
//
//	[server]
//	address = "127.0.0.1:7777"
//
//	[scripts]
//	files = ["counter.lua"]
//
// Relative paths are resolved against the directory of the config file.
//
// A Watcher reports debounced changes to keymap and script files so the
// CLI can reload them without restarting.
package config
