//go:build !globalhotkeys || !(linux || darwin || windows)

package global

import (
	"context"

	"github.com/dshills/keyscope/internal/input/key"
)

// Available reports whether this build can grab hotkeys system-wide.
const Available = false

func grab(context.Context, key.Hotkey, handler) (func() error, error) {
	return nil, ErrUnavailable
}

// RunMain runs fn.
func RunMain(fn func()) {
	fn()
}
