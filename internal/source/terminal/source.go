// Package terminal feeds key presses from a terminal into a hotkey engine.
//
// Terminals report key presses but not releases, so every press is
// delivered as key-downs of its modifiers and key followed by key-ups in
// reverse order. Focus loss is delivered as a blur.
package terminal

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/keyscope/internal/input/key"
	"github.com/dshills/keyscope/internal/logging"
)

// Sink receives the events a Source produces. *input.Loop implements it.
type Sink interface {
	KeyDown(ctx context.Context, ev key.RawEvent) error
	KeyUp(ctx context.Context, ev key.RawEvent) error
	Blur(ctx context.Context) error
}

// Title is drawn on the first row of the screen.
const Title = "keyscope: press keys to trigger hotkeys"

type redraw struct{}

// Source reads key events from a tcell screen.
type Source struct {
	screen  tcell.Screen
	sink    Sink
	log     *logging.Logger
	exitKey tcell.Key

	mu    sync.Mutex
	lines []string
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

// WithExitKey makes Run return when k is pressed. The key is not
// delivered to the sink.
func WithExitKey(k tcell.Key) Option {
	return func(s *Source) {
		s.exitKey = k
	}
}

// NewScreen creates a screen for the controlling terminal.
func NewScreen() (tcell.Screen, error) {
	return tcell.NewScreen()
}

// New creates a Source. The screen must not be initialized yet.
func New(screen tcell.Screen, sink Sink, opts ...Option) *Source {
	s := &Source{
		screen:  screen,
		sink:    sink,
		log:     logging.Nop(),
		exitKey: -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithComponent("terminal")
	return s
}

// SetLines replaces the status lines drawn under the title.
// It is safe to call from any goroutine.
func (s *Source) SetLines(lines ...string) {
	s.mu.Lock()
	s.lines = slices.Clone(lines)
	s.mu.Unlock()
	_ = s.screen.PostEvent(tcell.NewEventInterrupt(redraw{}))
}

// Lines returns the current status lines.
func (s *Source) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.lines)
}

// Run initializes the screen and delivers its events to the sink until
// ctx is done, the exit key is pressed or the sink fails.
// The screen is finalized when Run returns.
func (s *Source) Run(ctx context.Context) error {
	if err := s.screen.Init(); err != nil {
		return err
	}
	defer s.screen.Fini()

	s.screen.EnableFocus()
	s.screen.HideCursor()
	s.draw()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = s.screen.PostEvent(tcell.NewEventInterrupt(nil))
		case <-stop:
		}
	}()

	for {
		ev := s.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		switch ev := ev.(type) {
		case *tcell.EventKey:
			if ev.Key() == s.exitKey {
				s.log.Debug("exit key pressed")
				return nil
			}
			if err := s.press(ctx, ev); err != nil {
				return err
			}
		case *tcell.EventFocus:
			if !ev.Focused {
				if err := s.sink.Blur(ctx); err != nil {
					return err
				}
			}
		case *tcell.EventResize:
			s.screen.Sync()
			s.draw()
		case *tcell.EventInterrupt:
			if _, ok := ev.Data().(redraw); ok {
				s.draw()
			}
		}
	}
}

func (s *Source) press(ctx context.Context, ev *tcell.EventKey) error {
	chord, ok := Translate(ev)
	if !ok {
		s.log.WithField("key", ev.Name()).Debug("ignoring unnamed key")
		return nil
	}

	for _, m := range chord.Modifiers {
		if err := s.sink.KeyDown(ctx, key.NewRawEvent(m).WithNative(ev)); err != nil {
			return err
		}
	}
	err := errors.Join(
		s.sink.KeyDown(ctx, key.NewRawEvent(chord.Key).WithNative(ev)),
		s.sink.KeyUp(ctx, key.NewRawEvent(chord.Key).WithNative(ev)),
	)
	for _, m := range slices.Backward(chord.Modifiers) {
		err = errors.Join(err, s.sink.KeyUp(ctx, key.NewRawEvent(m).WithNative(ev)))
	}
	return err
}

func (s *Source) draw() {
	s.screen.Clear()
	w, _ := s.screen.Size()
	title := tcell.StyleDefault.Bold(true)
	s.drawLine(0, w, Title, title)
	for i, line := range s.Lines() {
		s.drawLine(i+2, w, line, tcell.StyleDefault)
	}
	s.screen.Show()
}

func (s *Source) drawLine(y, width int, text string, style tcell.Style) {
	x := 0
	for _, r := range text {
		if x >= width {
			return
		}
		s.screen.SetContent(x, y, r, nil, style)
		x++
	}
}
