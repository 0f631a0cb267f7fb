//go:build globalhotkeys

package global

import "golang.design/x/hotkey/mainthread"

// Available reports whether this build can grab hotkeys system-wide.
const Available = true

// RunMain runs fn while the main thread serves the macOS event loop,
// which hotkey registration requires.
func RunMain(fn func()) {
	mainthread.Init(fn)
}
