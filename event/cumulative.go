package event

import "sync"

// Cumulative is the latched/cumulative event variant from
// aether/events/cumulative_event.h (SPEC_FULL §C.4): like Event, but a
// subscriber that attaches after the event has already fired at least
// once is invoked immediately, with the most recent args, in addition
// to firing on every future Emit. Used for link-state style signals
// (streams.StreamInfo updates) where a late subscriber still wants to
// know the current settled state rather than waiting for the next
// change.
type Cumulative struct {
	inner Event

	mu      sync.Mutex
	fired   bool
	lastArg []interface{}
}

// Subscribe attaches handler. If the event has already fired, handler
// is invoked synchronously, once, with the last Emit's arguments,
// before Subscribe returns.
func (c *Cumulative) Subscribe(handler func(args ...interface{})) Subscription {
	c.mu.Lock()
	fired := c.fired
	last := c.lastArg
	c.mu.Unlock()

	sub := c.inner.Subscribe(handler)
	if fired {
		handler(last...)
	}
	return sub
}

// Emit fans out to every live subscriber and latches args as the value
// future subscribers see immediately.
func (c *Cumulative) Emit(args ...interface{}) {
	c.mu.Lock()
	c.fired = true
	c.lastArg = args
	c.mu.Unlock()
	c.inner.Emit(args...)
}

// HasFired reports whether Emit has ever been called.
func (c *Cumulative) HasFired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fired
}
