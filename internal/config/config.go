package config

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dshills/keyscope/internal/input"
	"github.com/dshills/keyscope/internal/input/keymap"
	"github.com/dshills/keyscope/internal/logging"
)

// DefaultServerAddress is where the browser bridge listens by default.
const DefaultServerAddress = "127.0.0.1:7777"

// Config is the complete keyscope configuration.
type Config struct {
	Engine  EngineConfig  `toml:"engine" yaml:"engine"`
	Log     LogConfig     `toml:"log" yaml:"log"`
	Keymaps KeymapsConfig `toml:"keymaps" yaml:"keymaps"`
	Server  ServerConfig  `toml:"server" yaml:"server"`
	Scripts ScriptsConfig `toml:"scripts" yaml:"scripts"`

	// Path is the file the configuration was loaded from, if any.
	Path string `toml:"-" yaml:"-"`
}

// EngineConfig configures the hotkeys context.
type EngineConfig struct {
	InitialScopes  []string `toml:"initial_scopes" yaml:"initial_scopes"`
	AllowBlurReset bool     `toml:"allow_blur_reset" yaml:"allow_blur_reset"`
	FireOnRepeat   bool     `toml:"fire_on_repeat" yaml:"fire_on_repeat"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// KeymapsConfig lists the keymaps to load.
type KeymapsConfig struct {
	// Builtin names a built-in keymap to load first. Empty loads none.
	Builtin string `toml:"builtin" yaml:"builtin"`
	// Files are keymap files loaded in order.
	Files []string `toml:"files" yaml:"files"`
	// Dirs are searched for keymap files.
	Dirs []string `toml:"dirs" yaml:"dirs"`
	// Watch reloads keymaps when files change.
	Watch bool `toml:"watch" yaml:"watch"`
	// Debounce coalesces rapid file changes.
	Debounce Duration `toml:"debounce" yaml:"debounce"`
}

// ServerConfig configures the browser bridge.
type ServerConfig struct {
	Address        string   `toml:"address" yaml:"address"`
	AllowedOrigins []string `toml:"allowed_origins" yaml:"allowed_origins"`
	MaxMessageSize int64    `toml:"max_message_size" yaml:"max_message_size"`
	PingInterval   Duration `toml:"ping_interval" yaml:"ping_interval"`
}

// ScriptsConfig lists Lua scripts run at startup.
type ScriptsConfig struct {
	Files []string `toml:"files" yaml:"files"`
}

// Duration is a time.Duration written as a string like "200ms".
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			AllowBlurReset: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: string(logging.FormatText),
		},
		Keymaps: KeymapsConfig{
			Debounce: Duration(200 * time.Millisecond),
		},
		Server: ServerConfig{
			Address:        DefaultServerAddress,
			MaxMessageSize: 4096,
			PingInterval:   Duration(30 * time.Second),
		},
	}
}

// Load reads a configuration file. The decoder is chosen by extension:
// .toml, .yaml or .yml. Relative paths in the file are resolved against
// the file's directory. The result is not validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg, err := parse(path, filepath.Ext(path), data)
	if err != nil {
		return nil, err
	}
	cfg.Path = path
	cfg.ResolvePaths(filepath.Dir(path))
	return cfg, nil
}

// LoadReader reads a configuration in the given format ("toml" or "yaml").
func LoadReader(r io.Reader, format string) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse("<reader>", "."+format, data)
}

// parse decodes data over the defaults.
func parse(source, ext string, data []byte) (*Config, error) {
	cfg := Default()

	switch strings.ToLower(ext) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			perr := &ParseError{Path: source, Message: err.Error(), Err: err}
			var derr *toml.DecodeError
			if errors.As(err, &derr) {
				perr.Line, perr.Column = derr.Position()
			}
			return nil, perr
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, &ParseError{Path: source, Message: err.Error(), Err: err}
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return cfg, nil
}

// ResolvePaths makes relative keymap and script paths relative to base.
func (c *Config) ResolvePaths(base string) {
	resolve := func(paths []string) {
		for i, p := range paths {
			if p != "" && !filepath.IsAbs(p) {
				paths[i] = filepath.Join(base, p)
			}
		}
	}
	resolve(c.Keymaps.Files)
	resolve(c.Keymaps.Dirs)
	resolve(c.Scripts.Files)
}

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	var errs []error
	add := func(path, msg string, value any) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: value})
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		add("log.level", "unknown level", c.Log.Level)
	}
	switch logging.Format(c.Log.Format) {
	case "", logging.FormatText, logging.FormatJSON:
	default:
		add("log.format", "must be text or json", c.Log.Format)
	}

	if c.Keymaps.Builtin != "" {
		if _, ok := keymap.Builtin(c.Keymaps.Builtin); !ok {
			add("keymaps.builtin", "unknown built-in keymap", c.Keymaps.Builtin)
		}
	}
	if c.Keymaps.Debounce < 0 {
		add("keymaps.debounce", "must not be negative", c.Keymaps.Debounce.Std())
	}
	for _, f := range c.Keymaps.Files {
		if _, err := keymap.FormatForPath(f); err != nil {
			add("keymaps.files", "unsupported keymap format", f)
		}
	}

	if _, _, err := net.SplitHostPort(c.Server.Address); err != nil {
		add("server.address", "must be host:port", c.Server.Address)
	}
	if c.Server.MaxMessageSize <= 0 {
		add("server.max_message_size", "must be positive", c.Server.MaxMessageSize)
	}
	if c.Server.PingInterval <= 0 {
		add("server.ping_interval", "must be positive", c.Server.PingInterval.Std())
	}

	for _, f := range c.Scripts.Files {
		if strings.ToLower(filepath.Ext(f)) != ".lua" {
			add("scripts.files", "scripts must be .lua files", f)
		}
	}

	return errors.Join(errs...)
}

// InputConfig returns the engine settings as an input.Config.
func (c *Config) InputConfig() input.Config {
	cfg := input.DefaultConfig()
	cfg.InitialScopes = append([]string(nil), c.Engine.InitialScopes...)
	cfg.AllowBlurReset = c.Engine.AllowBlurReset
	cfg.FireOnRepeat = c.Engine.FireOnRepeat
	return cfg
}

// LoggingConfig returns the log settings as a logging.Config.
func (c *Config) LoggingConfig(w io.Writer) logging.Config {
	return logging.Config{
		Level:  c.Log.Level,
		Format: logging.Format(c.Log.Format),
		Output: w,
	}
}

// LoadKeymaps loads the built-in keymap, the listed files and every
// keymap in the listed directories, in that order.
func (c *Config) LoadKeymaps() ([]*keymap.Keymap, error) {
	var keymaps []*keymap.Keymap
	if c.Keymaps.Builtin != "" {
		km, ok := keymap.Builtin(c.Keymaps.Builtin)
		if !ok {
			return nil, fmt.Errorf("unknown built-in keymap %q", c.Keymaps.Builtin)
		}
		keymaps = append(keymaps, km)
	}

	loader := keymap.NewLoader()
	for _, f := range c.Keymaps.Files {
		km, err := loader.LoadFile(f)
		if err != nil {
			return nil, err
		}
		keymaps = append(keymaps, km)
	}

	for _, d := range c.Keymaps.Dirs {
		loader.AddSearchPath(d)
	}
	found, err := loader.LoadAll()
	if err != nil {
		return nil, err
	}
	return append(keymaps, found...), nil
}

// WatchPaths returns the files and directories a Watcher should observe
// for keymap and script reloads.
func (c *Config) WatchPaths() (files, dirs []string) {
	files = append(files, c.Keymaps.Files...)
	files = append(files, c.Scripts.Files...)
	dirs = append(dirs, c.Keymaps.Dirs...)
	return files, dirs
}
