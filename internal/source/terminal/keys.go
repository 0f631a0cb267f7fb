package terminal

import (
	"fmt"
	"slices"
	"unicode"

	"github.com/gdamore/tcell/v2"
)

// Chord is a terminal key press expressed as the modifier and key names a
// browser would report.
type Chord struct {
	Modifiers []string
	Key       string
}

// String returns the chord in hotkey notation.
func (c Chord) String() string {
	s := ""
	for _, m := range c.Modifiers {
		s += m + "+"
	}
	return s + c.Key
}

var namedKeys = map[tcell.Key]string{
	tcell.KeyEnter:      "Enter",
	tcell.KeyEscape:     "Escape",
	tcell.KeyTab:        "Tab",
	tcell.KeyBackspace:  "Backspace",
	tcell.KeyBackspace2: "Backspace",
	tcell.KeyDelete:     "Delete",
	tcell.KeyInsert:     "Insert",
	tcell.KeyHome:       "Home",
	tcell.KeyEnd:        "End",
	tcell.KeyPgUp:       "PageUp",
	tcell.KeyPgDn:       "PageDown",
	tcell.KeyUp:         "ArrowUp",
	tcell.KeyDown:       "ArrowDown",
	tcell.KeyLeft:       "ArrowLeft",
	tcell.KeyRight:      "ArrowRight",
	tcell.KeyPause:      "Pause",
	tcell.KeyPrint:      "PrintScreen",
}

// Translate converts a tcell key event into a chord.
// It reports false for keys that have no name.
func Translate(ev *tcell.EventKey) (Chord, bool) {
	var c Chord
	add := func(m string) {
		if !slices.Contains(c.Modifiers, m) {
			c.Modifiers = append(c.Modifiers, m)
		}
	}

	mod := ev.Modifiers()
	if mod&tcell.ModCtrl != 0 {
		add("Control")
	}
	if mod&tcell.ModShift != 0 {
		add("Shift")
	}
	if mod&tcell.ModAlt != 0 {
		add("Alt")
	}
	if mod&tcell.ModMeta != 0 {
		add("Meta")
	}

	k := ev.Key()
	switch {
	case k == tcell.KeyRune:
		r := ev.Rune()
		if unicode.IsUpper(r) {
			add("Shift")
		}
		c.Key = string(r)
	case k == tcell.KeyBacktab:
		add("Shift")
		c.Key = "Tab"
	case namedKeys[k] != "":
		c.Key = namedKeys[k]
	case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ:
		add("Control")
		c.Key = string(rune('a' + int(k-tcell.KeyCtrlA)))
	case k >= tcell.KeyF1 && k <= tcell.KeyF64:
		c.Key = fmt.Sprintf("F%d", int(k-tcell.KeyF1)+1)
	default:
		return Chord{}, false
	}
	return c, true
}
