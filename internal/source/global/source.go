// Package global grabs hotkeys system-wide and feeds them into a hotkey
// engine.
//
// The operating system reports a grabbed hotkey only as a whole, so only
// alternatives made of modifiers and a single key can be grabbed. Every
// grabbed press is delivered as key-downs of its modifiers and key, and
// its release as key-ups in reverse order.
//
// Grabbing requires cgo and is compiled only with the globalhotkeys build
// tag on Linux (X11), macOS and Windows. Otherwise Grab reports
// ErrUnavailable.
package global

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/dshills/keyscope/internal/input/key"
	"github.com/dshills/keyscope/internal/logging"
)

// ErrUnavailable is returned when system-wide hotkeys are not supported by
// this build or platform.
var ErrUnavailable = errors.New("global hotkeys unavailable")

// ErrUnsupportedKey is returned for a key with no system key code.
var ErrUnsupportedKey = errors.New("unsupported key")

// Sink receives the events a Source produces. *input.Loop implements it.
type Sink interface {
	KeyDown(ctx context.Context, ev key.RawEvent) error
	KeyUp(ctx context.Context, ev key.RawEvent) error
	Blur(ctx context.Context) error
}

// Source holds the system-wide grabs of a set of hotkeys.
type Source struct {
	sink Sink
	log  *logging.Logger

	mu       sync.Mutex
	grabbed  []key.Hotkey
	releases []func() error
}

// Option configures a Source.
type Option func(*Source)

// WithLogger sets the logger.
func WithLogger(log *logging.Logger) Option {
	return func(s *Source) {
		if log != nil {
			s.log = log
		}
	}
}

// New creates a Source delivering to sink.
func New(sink Sink, opts ...Option) *Source {
	s := &Source{
		sink: sink,
		log:  logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithComponent("global")
	return s
}

// Chords splits a set into the alternatives that can be grabbed and those
// that cannot. Duplicates are dropped.
func Chords(set key.HotkeySet) (grabbable, skipped []key.Hotkey) {
	for _, hk := range set.Hotkeys() {
		if hk.KeyCount() != 1 {
			skipped = append(skipped, hk)
			continue
		}
		if slices.ContainsFunc(grabbable, hk.Equal) {
			continue
		}
		grabbable = append(grabbable, hk)
	}
	return grabbable, skipped
}

// Grab grabs every grabbable alternative of set. Alternatives already
// grabbed are skipped. Events are delivered until ctx is done or Close is
// called.
func (s *Source) Grab(ctx context.Context, set key.HotkeySet) error {
	chords, skipped := Chords(set)
	for _, hk := range skipped {
		s.log.WithField("hotkey", hk.String()).Warn("cannot grab multi-key hotkey system-wide")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, hk := range chords {
		if slices.ContainsFunc(s.grabbed, hk.Equal) {
			continue
		}
		release, err := grab(ctx, hk, s.handler(ctx, hk))
		if err != nil {
			errs = append(errs, fmt.Errorf("grab %s: %w", hk, err))
			continue
		}
		s.grabbed = append(s.grabbed, hk)
		s.releases = append(s.releases, release)
		s.log.WithField("hotkey", hk.String()).Debug("grabbed hotkey")
	}
	return errors.Join(errs...)
}

// Grabbed returns the grabbed hotkeys.
func (s *Source) Grabbed() []key.Hotkey {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.grabbed)
}

// Close releases every grab.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, release := range s.releases {
		errs = append(errs, release())
	}
	s.grabbed = nil
	s.releases = nil
	return errors.Join(errs...)
}

// handler turns grab notifications for hk into engine events.
type handler struct {
	down func()
	up   func()
}

func (s *Source) handler(ctx context.Context, hk key.Hotkey) handler {
	var mods []string
	hk.Modifiers().Each(func(m key.Modifier) {
		mods = append(mods, m.HeldKey())
	})
	name := hk.Keys()[0]

	deliver := func(send func(context.Context, key.RawEvent) error, k string) {
		if err := send(ctx, key.NewRawEvent(k).WithNative(hk)); err != nil {
			s.log.WithError(err).WithField("key", k).Debug("event not delivered")
		}
	}

	return handler{
		down: func() {
			for _, m := range mods {
				deliver(s.sink.KeyDown, m)
			}
			deliver(s.sink.KeyDown, name)
		},
		up: func() {
			deliver(s.sink.KeyUp, name)
			for _, m := range slices.Backward(mods) {
				deliver(s.sink.KeyUp, m)
			}
		},
	}
}
