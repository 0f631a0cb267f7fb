// Package app wires configuration, keymaps, scripts and the hotkey engine
// into a running application.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/dshills/keyscope/internal/config"
	"github.com/dshills/keyscope/internal/input"
	"github.com/dshills/keyscope/internal/input/keymap"
	"github.com/dshills/keyscope/internal/logging"
)

// Options configures the application.
type Options struct {
	// Config is the loaded configuration. Defaults to config.Default().
	Config *config.Config

	// Logger overrides the logger built from Config.
	Logger *logging.Logger

	// Trace logs every key event, scope change and fire.
	Trace bool
}

// Application owns the primary engine, its event loop and the keymaps
// applied to it.
type Application struct {
	config *config.Config
	log    *logging.Logger

	mu      sync.RWMutex
	keymaps []*keymap.Keymap

	engine *input.Context
	loop   *input.Loop

	// Touched only before Run or on the loop goroutine.
	main      *session
	lastFired string
	status    func(lines []string)

	running      atomic.Bool
	done         chan struct{}
	quitOnce     sync.Once
	shutdownOnce sync.Once
}

// New validates the configuration, loads keymaps and scripts and applies
// them to a new engine.
func New(opts Options) (*Application, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, &ComponentError{Component: "config", Action: "validate", Err: err}
	}

	log := opts.Logger
	if log == nil {
		log = logging.New(cfg.LoggingConfig(os.Stderr))
	}

	app := &Application{
		config: cfg,
		log:    log,
		done:   make(chan struct{}),
	}

	keymaps, err := app.loadKeymaps()
	if err != nil {
		return nil, err
	}
	app.keymaps = keymaps

	engineCfg := cfg.InputConfig()
	engineCfg.Logger = log
	engineCfg.Hooks = input.NewHookManager()
	if opts.Trace {
		engineCfg.Hooks.RegisterNamed(input.NewLoggingHook(log), "trace")
	}
	engineCfg.Hooks.RegisterNamed(input.FuncHook{FireFunc: app.recordFire}, "status")

	app.engine = input.New(engineCfg)
	app.loop = input.NewLoop(app.engine, input.DefaultLoopBuffer)
	app.loop.OnResult(func(input.KeyEventKind, input.Result) {
		app.publishStatus()
	})

	app.main, err = app.attach(app.engine, app.Quit)
	if err != nil {
		return nil, err
	}

	log.WithFields(map[string]any{
		"keymaps":  len(keymaps),
		"bindings": len(app.engine.Bindings()),
	}).Info("application ready")
	return app, nil
}

// loadKeymaps loads and validates the configured keymaps. Lint issues
// are logged.
func (app *Application) loadKeymaps() ([]*keymap.Keymap, error) {
	keymaps, err := app.config.LoadKeymaps()
	if err != nil {
		return nil, &ComponentError{Component: "keymaps", Action: "load", Err: err}
	}

	var errs []error
	for _, km := range keymaps {
		if err := km.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("keymap %q: %w", km.Name, err))
			continue
		}
		for _, issue := range km.Lint() {
			app.log.WithField("keymap", km.Name).Warn("%s", issue)
		}
	}
	if len(errs) > 0 {
		return nil, &ComponentError{Component: "keymaps", Action: "validate", Err: errors.Join(errs...)}
	}
	return keymaps, nil
}

// Keymaps returns the keymaps currently applied.
func (app *Application) Keymaps() []*keymap.Keymap {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return append([]*keymap.Keymap(nil), app.keymaps...)
}

// Config returns the configuration.
func (app *Application) Config() *config.Config {
	return app.config
}

// Logger returns the application logger.
func (app *Application) Logger() *logging.Logger {
	return app.log
}

// Loop returns the event loop of the primary engine. Input sources
// deliver their events to it.
func (app *Application) Loop() *input.Loop {
	return app.loop
}

// Metrics returns the primary engine's metrics.
func (app *Application) Metrics() *input.Metrics {
	return app.engine.Metrics()
}

// Bindings returns the primary engine's bindings. It must be called
// before Run or from Do.
func (app *Application) Bindings() []*keymap.Binding {
	return app.engine.Bindings()
}

// Do runs fn on the loop goroutine with the primary engine.
// Run must be in progress.
func (app *Application) Do(ctx context.Context, fn func(*input.Context)) error {
	return app.loop.Do(ctx, fn)
}

// SetupEngine applies the keymaps and scripts to another engine, such as
// one created per WebSocket connection. They are released when the engine
// is closed. Quit actions on that engine do nothing.
func (app *Application) SetupEngine(engine *input.Context) error {
	s, err := app.attach(engine, nil)
	if err != nil {
		return err
	}
	engine.OnClose(s.detach)
	return nil
}

// OnStatus sets a function called with status lines after every key
// event. It must be set before Run and runs on the loop goroutine.
func (app *Application) OnStatus(fn func(lines []string)) {
	app.status = fn
}

// Run processes events until ctx is done or a quit action fires, in which
// case it returns ErrQuit. Keymap and script files are watched when
// configured.
func (app *Application) Run(ctx context.Context) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if app.config.Keymaps.Watch {
		w, err := app.startWatcher()
		if err != nil {
			return err
		}
		defer w.Close()
		go app.watch(ctx, w)
	}

	app.publishStatus()

	errc := make(chan error, 1)
	go func() { errc <- app.loop.Run(ctx) }()

	select {
	case <-app.done:
		cancel()
		<-errc
		return ErrQuit
	case err := <-errc:
		return err
	}
}

// Quit ends Run with ErrQuit. It is bound to the quit action.
func (app *Application) Quit() {
	app.quitOnce.Do(func() {
		app.log.Info("quit requested")
		close(app.done)
	})
}

// Done returns a channel closed when a quit is requested.
func (app *Application) Done() <-chan struct{} {
	return app.done
}

// Shutdown releases the primary engine. Call it after Run returns.
// Shutdown is idempotent.
func (app *Application) Shutdown() {
	app.shutdownOnce.Do(func() {
		app.loop.Stop()
		if app.main != nil {
			app.main.detach()
		}
		_ = app.engine.Close()
		app.log.Debug("application shut down")
	})
}
