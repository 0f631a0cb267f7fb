package app

import (
	"fmt"
	"strings"

	"github.com/dshills/keyscope/internal/input"
)

func (app *Application) recordFire(f input.Fire) {
	desc := f.Binding.Description()
	if desc == "" {
		desc = f.Binding.Hotkeys().String()
	}
	app.lastFired = fmt.Sprintf("%s (%s)", desc, f.Hotkey)
}

// StatusLines describes the primary engine. It must run on the loop
// goroutine or before Run.
func (app *Application) StatusLines() []string {
	orNone := func(s []string) string {
		if len(s) == 0 {
			return "none"
		}
		return strings.Join(s, ", ")
	}
	last := app.lastFired
	if last == "" {
		last = "none"
	}
	return []string{
		"scopes:  " + orNone(app.engine.ActiveScopes()),
		"pressed: " + orNone(app.engine.PressedKeys()),
		"last:    " + last,
		fmt.Sprintf("bindings: %d  fires: %d", len(app.engine.Bindings()), app.engine.Metrics().FiresTotal()),
	}
}

func (app *Application) publishStatus() {
	if app.status != nil {
		app.status(app.StatusLines())
	}
}
