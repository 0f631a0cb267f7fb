//go:build globalhotkeys && (linux || windows)

package global

// Available reports whether this build can grab hotkeys system-wide.
const Available = true

// RunMain runs fn.
func RunMain(fn func()) {
	fn()
}
