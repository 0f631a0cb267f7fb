package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/keyscope/internal/app"
	"github.com/dshills/keyscope/internal/config"
	"github.com/dshills/keyscope/internal/logging"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	keymaps    []string
	keymapDirs []string
	builtin    string
	scripts    []string
	logLevel   string
	logFormat  string
	logFile    string
	trace      bool
	watch      bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "keyscope",
		Short: "Hotkey matching and scope engine",
		Long: `keyscope matches held keys against declarative hotkey bindings that are
gated by named scopes.

Keymaps are TOML, YAML or JSON files. Key events come from the terminal,
from browser pages over WebSocket, or from system-wide grabs.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Path to configuration file (.toml or .yaml)")
	pf.StringSliceVarP(&flags.keymaps, "keymap", "k", nil, "Keymap file to load (repeatable)")
	pf.StringSliceVar(&flags.keymapDirs, "keymap-dir", nil, "Directory of keymap files to load (repeatable)")
	pf.StringVar(&flags.builtin, "builtin", "", "Built-in keymap to load (demo)")
	pf.StringSliceVarP(&flags.scripts, "script", "s", nil, "Lua script to load (repeatable)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&flags.logFormat, "log-format", "", "Log format (text, json)")
	pf.StringVar(&flags.logFile, "log-file", "", "Write logs to this file")
	pf.BoolVar(&flags.trace, "trace", false, "Log every key event, scope change and fire")
	pf.BoolVarP(&flags.watch, "watch", "w", false, "Reload keymaps and scripts when their files change")

	root.AddCommand(
		newParseCmd(),
		newCheckCmd(flags),
		newExportCmd(flags),
		newListCmd(flags),
		newRunCmd(flags),
		newServeCmd(flags),
		newGlobalCmd(flags),
	)
	return root
}

// loadConfig reads the configuration file, if any, and applies the flags
// over it.
func (f *globalFlags) loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	cfg.Keymaps.Files = append(cfg.Keymaps.Files, f.keymaps...)
	cfg.Keymaps.Dirs = append(cfg.Keymaps.Dirs, f.keymapDirs...)
	cfg.Scripts.Files = append(cfg.Scripts.Files, f.scripts...)
	if f.builtin != "" {
		cfg.Keymaps.Builtin = f.builtin
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.logFormat != "" {
		cfg.Log.Format = f.logFormat
	}
	if f.watch {
		cfg.Keymaps.Watch = true
	}
	return cfg, nil
}

// withDemoFallback loads the demo keymap when no keymap source is
// configured, so interactive commands always have something to show.
func withDemoFallback(cfg *config.Config) {
	k := cfg.Keymaps
	if k.Builtin == "" && len(k.Files) == 0 && len(k.Dirs) == 0 {
		cfg.Keymaps.Builtin = "demo"
	}
}

// newApplication builds the application for an interactive command.
// Logs go to --log-file, or to fallback when no file is given.
func (f *globalFlags) newApplication(fallback io.Writer) (*app.Application, func(), error) {
	cfg, err := f.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	withDemoFallback(cfg)

	out := fallback
	cleanup := func() {}
	if f.logFile != "" {
		file, err := os.OpenFile(f.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		out = file
		cleanup = func() { _ = file.Close() }
	}

	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		cleanup()
		return nil, nil, err
	}
	log := logging.New(cfg.LoggingConfig(out))

	application, err := app.New(app.Options{Config: cfg, Logger: log, Trace: f.trace})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return application, func() {
		application.Shutdown()
		cleanup()
	}, nil
}
