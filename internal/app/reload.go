package app

import (
	"context"

	"github.com/dshills/keyscope/internal/config"
	"github.com/dshills/keyscope/internal/input"
)

func (app *Application) startWatcher() (*config.Watcher, error) {
	w, err := config.NewWatcher(app.config.Keymaps.Debounce.Std(), app.log)
	if err != nil {
		return nil, &ComponentError{Component: "watcher", Action: "start", Err: err}
	}

	files, dirs := app.config.WatchPaths()
	for _, f := range files {
		if err := w.AddFile(f); err != nil {
			_ = w.Close()
			return nil, &ComponentError{Component: "watcher", Action: "watch " + f, Err: err}
		}
	}
	for _, d := range dirs {
		if err := w.AddDir(d); err != nil {
			_ = w.Close()
			return nil, &ComponentError{Component: "watcher", Action: "watch " + d, Err: err}
		}
	}
	return w, nil
}

func (app *Application) watch(ctx context.Context, w *config.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case paths, ok := <-w.Changes():
			if !ok {
				return
			}
			app.log.WithField("paths", paths).Info("keymap files changed, reloading")
			if err := app.Reload(ctx); err != nil {
				app.log.WithError(err).Warn("reload failed, keeping previous keymaps")
			}
		}
	}
}

// Reload reloads keymaps and scripts from disk and reapplies them to the
// primary engine. On failure the previous keymaps stay applied.
// Run must be in progress.
func (app *Application) Reload(ctx context.Context) error {
	keymaps, err := app.loadKeymaps()
	if err != nil {
		return err
	}

	var applyErr error
	doErr := app.loop.Do(ctx, func(*input.Context) {
		app.mu.Lock()
		previous := app.keymaps
		app.keymaps = keymaps
		app.mu.Unlock()

		app.main.detach()
		s, err := app.attach(app.engine, app.Quit)
		if err != nil {
			applyErr = err
			app.mu.Lock()
			app.keymaps = previous
			app.mu.Unlock()
			s, err = app.attach(app.engine, app.Quit)
			if err != nil {
				app.log.WithError(err).Error("restoring previous keymaps failed")
				s = &session{engine: app.engine}
			}
		}
		app.main = s
		app.publishStatus()
	})
	if doErr != nil {
		return doErr
	}
	if applyErr != nil {
		return applyErr
	}

	app.log.WithField("bindings", len(app.main.handles)).Info("keymaps reloaded")
	return nil
}
