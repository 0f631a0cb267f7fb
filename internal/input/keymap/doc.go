// Package keymap owns hotkey bindings and declarative keymap files.
//
// There are two layers:
//
//   - Registry: the runtime collection of bindings. A Binding associates a
//     set of alternative hotkeys with a list of scopes and a callback. The
//     registry keeps bindings in registration order, never deduplicates
//     them, and hands out a Handle that unregisters exactly one binding.
//
//   - Keymap: a named list of Mappings loaded from TOML, YAML or JSON.
//     A Mapping names an action instead of holding a callback; Apply
//     resolves the actions and registers every mapping on a Registrar.
//
// # Keymap Files
//
//	name = "editor"
//
//	[[mappings]]
//	keys = "ctrl+k,meta+k"
//	scopes = ["editor"]
//	action = "scope.toggle"
//	args = ["palette"]
//	description = "Toggle the palette scope"
//
// # Usage
//
//	registry := keymap.NewRegistry()
//	h := registry.Register(key.MustParseSet("ctrl+s"), nil, save)
//	defer registry.Unregister(h)
//
//	km, err := keymap.NewLoader().LoadFile("keys.toml")
//	if err != nil {
//	    return err
//	}
//	handles, err := km.Apply(ctx, actions)
package keymap
