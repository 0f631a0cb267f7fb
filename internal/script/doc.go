// Package script runs Lua scripts against a hotkey engine.
//
// A script sees a global hotkeys table:
//
//	local id = hotkeys.bind("ctrl+k", {"editor"}, function()
//	    hotkeys.log("ctrl+k pressed")
//	end)
//	hotkeys.toggle_scope("editor")
//	hotkeys.unbind(id)
//
// Global Lua functions defined by a script can also be called by name,
// which is how keymap actions of the form "script:<fn>" are dispatched.
//
// gopher-lua states are not goroutine-safe. A Runtime must be driven from
// the goroutine that drives its engine, for example from inside
// input.Loop.Do.
package script
