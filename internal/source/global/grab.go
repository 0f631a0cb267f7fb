//go:build globalhotkeys && (linux || darwin || windows)

package global

import (
	"context"
	"fmt"

	"golang.design/x/hotkey"

	"github.com/dshills/keyscope/internal/input/key"
)

var keyCodes = map[string]hotkey.Key{
	"a": hotkey.KeyA, "b": hotkey.KeyB, "c": hotkey.KeyC, "d": hotkey.KeyD,
	"e": hotkey.KeyE, "f": hotkey.KeyF, "g": hotkey.KeyG, "h": hotkey.KeyH,
	"i": hotkey.KeyI, "j": hotkey.KeyJ, "k": hotkey.KeyK, "l": hotkey.KeyL,
	"m": hotkey.KeyM, "n": hotkey.KeyN, "o": hotkey.KeyO, "p": hotkey.KeyP,
	"q": hotkey.KeyQ, "r": hotkey.KeyR, "s": hotkey.KeyS, "t": hotkey.KeyT,
	"u": hotkey.KeyU, "v": hotkey.KeyV, "w": hotkey.KeyW, "x": hotkey.KeyX,
	"y": hotkey.KeyY, "z": hotkey.KeyZ,

	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3,
	"4": hotkey.Key4, "5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7,
	"8": hotkey.Key8, "9": hotkey.Key9,

	"f1": hotkey.KeyF1, "f2": hotkey.KeyF2, "f3": hotkey.KeyF3, "f4": hotkey.KeyF4,
	"f5": hotkey.KeyF5, "f6": hotkey.KeyF6, "f7": hotkey.KeyF7, "f8": hotkey.KeyF8,
	"f9": hotkey.KeyF9, "f10": hotkey.KeyF10, "f11": hotkey.KeyF11, "f12": hotkey.KeyF12,

	"space":      hotkey.KeySpace,
	"tab":        hotkey.KeyTab,
	"enter":      hotkey.KeyReturn,
	"escape":     hotkey.KeyEscape,
	"delete":     hotkey.KeyDelete,
	"arrowup":    hotkey.KeyUp,
	"arrowdown":  hotkey.KeyDown,
	"arrowleft":  hotkey.KeyLeft,
	"arrowright": hotkey.KeyRight,
}

func grab(ctx context.Context, hk key.Hotkey, h handler) (func() error, error) {
	code, ok := keyCodes[hk.Keys()[0]]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKey, hk.Keys()[0])
	}
	var mods []hotkey.Modifier
	hk.Modifiers().Each(func(m key.Modifier) {
		mods = append(mods, platformModifier(m))
	})

	g := hotkey.New(mods, code)
	if err := g.Register(); err != nil {
		return nil, err
	}

	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			case <-g.Keydown():
				h.down()
			case <-g.Keyup():
				h.up()
			}
		}
	}()

	return func() error {
		close(stop)
		return g.Unregister()
	}, nil
}
