package input

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/dshills/keyscope/internal/input/key"
)

// Loop errors
var (
	ErrLoopStopped = errors.New("event loop stopped")
	ErrLoopRunning = errors.New("event loop already running")
)

// DefaultLoopBuffer is the event queue size used when NewLoop gets a
// non-positive buffer.
const DefaultLoopBuffer = 100

type loopEvent struct {
	kind KeyEventKind
	raw  key.RawEvent
	fn   func(*Context)
	done chan struct{}
}

// Loop serializes events from any number of goroutines onto the single
// goroutine running Run, which owns the Context. Events are applied in
// the order they were accepted, one at a time.
type Loop struct {
	ctx      *Context
	events   chan loopEvent
	done     chan struct{}
	stopOnce sync.Once
	running  atomic.Bool
	onResult func(KeyEventKind, Result)
}

// NewLoop creates a loop driving c.
func NewLoop(c *Context, buffer int) *Loop {
	if buffer <= 0 {
		buffer = DefaultLoopBuffer
	}
	return &Loop{
		ctx:    c,
		events: make(chan loopEvent, buffer),
		done:   make(chan struct{}),
	}
}

// OnResult sets a function called on the loop goroutine with the result
// of every key event. It must be set before Run.
func (l *Loop) OnResult(fn func(kind KeyEventKind, res Result)) {
	l.onResult = fn
}

// Run processes events until ctx is cancelled or Stop is called.
// It does not close the Context.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}
	defer l.running.Store(false)

	for {
		select {
		case <-ctx.Done():
			l.Stop()
			return ctx.Err()
		case <-l.done:
			return nil
		case ev := <-l.events:
			l.handle(ev)
		}
	}
}

func (l *Loop) handle(ev loopEvent) {
	if ev.fn != nil {
		defer close(ev.done)
		ev.fn(l.ctx)
		return
	}

	l.ctx.metrics.RecordKeyEvent()
	var res Result
	switch ev.kind {
	case KeyEventDown:
		res = l.ctx.KeyDown(ev.raw)
	case KeyEventUp:
		res = l.ctx.KeyUp(ev.raw)
	case KeyEventBlur:
		res = l.ctx.Blur()
	}
	if l.onResult != nil {
		l.onResult(ev.kind, res)
	}
}

// Stop ends Run. Pending events are discarded. Stop is idempotent.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		close(l.done)
	})
}

// Done returns a channel closed when the loop is stopped.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// KeyDown queues a key-down event. It blocks while the queue is full.
func (l *Loop) KeyDown(ctx context.Context, ev key.RawEvent) error {
	return l.post(ctx, loopEvent{kind: KeyEventDown, raw: ev})
}

// KeyUp queues a key-up event.
func (l *Loop) KeyUp(ctx context.Context, ev key.RawEvent) error {
	return l.post(ctx, loopEvent{kind: KeyEventUp, raw: ev})
}

// Blur queues a blur event.
func (l *Loop) Blur(ctx context.Context) error {
	return l.post(ctx, loopEvent{kind: KeyEventBlur})
}

// Do runs fn on the loop goroutine and waits for it to return.
// It must not be called from the loop goroutine itself, including from
// binding callbacks.
func (l *Loop) Do(ctx context.Context, fn func(*Context)) error {
	ev := loopEvent{fn: fn, done: make(chan struct{})}
	if err := l.post(ctx, ev); err != nil {
		return err
	}
	select {
	case <-ev.done:
		return nil
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loop) post(ctx context.Context, ev loopEvent) error {
	select {
	case <-l.done:
		l.ctx.metrics.RecordDroppedEvent()
		return ErrLoopStopped
	default:
	}

	select {
	case l.events <- ev:
		return nil
	case <-l.done:
		l.ctx.metrics.RecordDroppedEvent()
		return ErrLoopStopped
	case <-ctx.Done():
		l.ctx.metrics.RecordDroppedEvent()
		return ctx.Err()
	}
}
