package app

import (
	"github.com/dshills/keyscope/internal/actions"
	"github.com/dshills/keyscope/internal/input"
	"github.com/dshills/keyscope/internal/input/keymap"
	"github.com/dshills/keyscope/internal/script"
)

// session is the set of keymap bindings and the script runtime attached
// to one engine.
type session struct {
	engine  *input.Context
	runtime *script.Runtime
	handles []keymap.Handle
}

// attach loads the scripts into a runtime bound to engine and applies the
// keymaps. On error nothing stays registered.
func (app *Application) attach(engine *input.Context, quit func()) (*session, error) {
	s := &session{engine: engine}

	if files := app.config.Scripts.Files; len(files) > 0 {
		s.runtime = script.NewRuntime(engine, script.WithLogger(app.log))
		for _, f := range files {
			if err := s.runtime.LoadFile(f); err != nil {
				s.detach()
				return nil, &ComponentError{Component: "scripts", Action: "load", Err: err}
			}
		}
	}

	opts := []actions.Option{actions.WithLogger(app.log), actions.WithQuit(quit)}
	if s.runtime != nil {
		opts = append(opts, actions.WithScripts(s.runtime))
	}
	resolver := actions.NewResolver(engine, opts...)

	for _, km := range app.Keymaps() {
		handles, err := km.Apply(engine, resolver)
		if err != nil {
			s.detach()
			return nil, &ComponentError{Component: "keymaps", Action: "apply", Err: err}
		}
		s.handles = append(s.handles, handles...)
	}
	return s, nil
}

// detach unregisters the session's bindings and closes its runtime.
func (s *session) detach() {
	for _, h := range s.handles {
		s.engine.Unregister(h)
	}
	s.handles = nil
	if s.runtime != nil {
		_ = s.runtime.Close()
		s.runtime = nil
	}
}
