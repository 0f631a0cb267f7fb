package input

import (
	"fmt"

	"github.com/dshills/keyscope/internal/input/key"
	"github.com/dshills/keyscope/internal/input/keymap"
)

// evaluate runs one pass over a snapshot of the registered bindings.
// A binding removed during the pass is skipped even if it was in the
// snapshot. A pass started from a callback does not fire a binding that
// already fired in the enclosing passes.
func (c *Context) evaluate(trigger Trigger) Result {
	timer := c.metrics.StartEvaluationTimer()
	defer timer.Stop()

	if c.depth == 0 {
		c.fired = make(map[keymap.Handle]struct{})
	}
	c.depth++
	defer func() { c.depth-- }()

	res := Result{Evaluated: true}
	for _, b := range c.registry.Bindings() {
		if c.closed {
			break
		}
		if !c.registry.Contains(b.Handle()) {
			continue
		}
		if _, done := c.fired[b.Handle()]; done {
			continue
		}
		if !c.scopes.Allows(b.Scopes()) {
			continue
		}
		hk, ok := b.Hotkeys().Match(c.pressed.Has)
		if !ok {
			continue
		}

		fire := Fire{
			Binding:    b,
			Hotkey:     hk,
			Trigger:    trigger,
			Suppressed: c.suppressionsFor(hk),
		}
		c.fired[b.Handle()] = struct{}{}
		c.fire(fire)

		res.Fired = append(res.Fired, b.Handle())
		for _, s := range fire.Suppressed {
			res.addSuppression(s)
		}
	}

	if len(res.Suppressed) > 0 {
		c.metrics.RecordSuppressions(len(res.Suppressed))
		if c.suppressor != nil {
			c.suppressor.Suppress(res.Suppressed)
		}
	}
	return res
}

// suppressionsFor returns the non-modifier keys of a matched alternative
// together with the events that pressed them.
func (c *Context) suppressionsFor(hk key.Hotkey) []Suppression {
	keys := hk.Keys()
	out := make([]Suppression, 0, len(keys))
	for _, k := range keys {
		ev, held := c.pressed.Event(k)
		if !held {
			continue
		}
		out = append(out, Suppression{Key: k, Event: ev})
	}
	return out
}

// fire invokes a binding's callback. A panic in the callback is recovered
// and logged so the remaining bindings of the pass still fire.
func (c *Context) fire(f Fire) {
	c.log.WithFields(map[string]any{
		"binding": f.Binding.Handle().ID().String(),
		"trigger": f.Trigger.String(),
	}).Debug("firing hotkey: %s", f.Hotkey)

	c.metrics.RecordFire()
	if err := invoke(f.Binding); err != nil {
		c.metrics.RecordRecoveredPanic()
		c.log.WithError(err).WithField("hotkey", f.Hotkey.String()).Warn("hotkey callback panicked")
	}
	c.hooks.RunFire(f)
}

func invoke(b *keymap.Binding) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("callback for %s: %v", b, r)
		}
	}()
	b.Invoke()
	return nil
}
