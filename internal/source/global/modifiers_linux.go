//go:build globalhotkeys

package global

import (
	"golang.design/x/hotkey"

	"github.com/dshills/keyscope/internal/input/key"
)

// X11 reports Alt as Mod1 and Super as Mod4.
func platformModifier(m key.Modifier) hotkey.Modifier {
	switch m {
	case key.ModCtrl:
		return hotkey.ModCtrl
	case key.ModShift:
		return hotkey.ModShift
	case key.ModAlt:
		return hotkey.Mod1
	default:
		return hotkey.Mod4
	}
}
