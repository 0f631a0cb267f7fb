// Package input is the hotkey matching and scope engine.
//
// A Context bundles the three pieces of live state the engine works on:
//
//   - the pressed-key set (package pressed), fed by raw key events
//   - the active scope set (package scope)
//   - the binding registry (package keymap)
//
// # Matching
//
// Every real state change runs one evaluation pass over the registered
// bindings in registration order. A state change is a key-down for a key
// that was not held, a key-up for a held key, a blur that clears a
// non-empty set, or a scope becoming active or inactive. A key-down for a
// key that is already held (auto-repeat) is not a state change unless
// Config.FireOnRepeat is set.
//
// A binding fires when its scope list is empty or names an active scope,
// and one of its hotkey alternatives is satisfied: every required modifier
// key and every required key is held. Modifiers the alternative does not
// name are ignored. All qualifying bindings fire; there is no priority.
//
// Callbacks run synchronously inside the call that triggered the pass.
// They may register, unregister and change scopes; changes apply
// immediately, and a scope change made by a callback runs its own nested
// pass.
//
// # Default suppression
//
// For every fired alternative the engine reports its keys, with the
// key-down event that pressed them, as Suppressions. They are returned in
// the Result and handed to Config.Suppressor. The event source decides
// how to prevent the platform default.
//
// # Concurrency
//
// A Context is not safe for concurrent use. Sources that deliver events
// from their own goroutines post them to a Loop, which applies them to
// the Context one at a time in arrival order.
//
// # Usage
//
//	ctx := input.New(input.DefaultConfig())
//	defer ctx.Close()
//
//	h, err := ctx.Register("ctrl+k", nil, func() { fmt.Println("fired") })
//	if err != nil {
//	    return err
//	}
//	defer ctx.Unregister(h)
//
//	ctx.KeyDown(key.NewRawEvent("Control"))
//	res := ctx.KeyDown(key.NewRawEvent("k"))
//	for _, s := range res.Suppressed {
//	    preventDefault(s.Event.Native)
//	}
package input
