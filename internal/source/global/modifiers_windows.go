//go:build globalhotkeys

package global

import (
	"golang.design/x/hotkey"

	"github.com/dshills/keyscope/internal/input/key"
)

func platformModifier(m key.Modifier) hotkey.Modifier {
	switch m {
	case key.ModCtrl:
		return hotkey.ModCtrl
	case key.ModShift:
		return hotkey.ModShift
	case key.ModAlt:
		return hotkey.ModAlt
	default:
		return hotkey.ModWin
	}
}
