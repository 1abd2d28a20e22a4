// Package event implements the typed multicast primitive described in
// spec.md §4.B: a source that fans out Emit calls to every live
// subscriber, where subscribing/unsubscribing during an Emit never
// perturbs the set of handlers that Emit call sees.
//
// Grounded on aether/events/events.h and event_subscription.h
// (original_source/): a shared-ownership "alive" cell per subscription,
// so Subscription.Unsubscribe and a handler's liveness check are both
// independent of which side (caller or Event) still holds a reference.
package event

import "sync"

// entry is the shared cell backing one subscription. alive is flipped
// to false by Unsubscribe or by a .Once() handler firing successfully;
// Emit treats a dead entry as absent without needing to mutate the
// handler slice mid-iteration.
type entry struct {
	mu      sync.Mutex
	alive   bool
	once    bool
	handler func(args ...interface{})
}

// Event is a multicast source. The zero value is ready to use.
// Args are passed positionally to every handler as []interface{};
// handlers type-assert them back to concrete types.
type Event struct {
	mu      sync.Mutex
	entries []*entry
}

// Subscription is an RAII-style handle: while the caller holds it, the
// handler fires on every future Emit. Dropping concern for Go is
// handled explicitly via Unsubscribe rather than finalizers, matching
// the teacher's choice to disable stream finalizers
// (SagerNet-smux/session.go: AcceptStream) in favor of explicit
// teardown.
type Subscription struct {
	e *entry
}

// Unsubscribe detaches the handler. Safe to call multiple times, and
// safe to call from inside the handler itself.
func (s Subscription) Unsubscribe() {
	if s.e == nil {
		return
	}
	s.e.mu.Lock()
	s.e.alive = false
	s.e.mu.Unlock()
}

// Once marks the subscription so the handler self-detaches immediately
// after its first invocation, before any subsequent handler in the same
// Emit runs.
func (s Subscription) Once() Subscription {
	if s.e != nil {
		s.e.mu.Lock()
		s.e.once = true
		s.e.mu.Unlock()
	}
	return s
}

// Subscribe attaches handler. The returned Subscription fires for every
// Emit call made after Subscribe returns; it never fires for an Emit
// already in progress on another goroutine, and per the single-threaded
// scheduling model (spec.md §5) Emit is never actually concurrent with
// Subscribe from a different action.
func (e *Event) Subscribe(handler func(args ...interface{})) Subscription {
	en := &entry{alive: true, handler: handler}
	e.mu.Lock()
	e.entries = append(e.entries, en)
	e.mu.Unlock()
	return Subscription{e: en}
}

// Emit invokes every handler that was live at the moment Emit was
// called, in subscription order. Handlers subscribed by another handler
// during this Emit are not visited until a later Emit. Handlers that
// unsubscribe themselves or another handler during this Emit are
// skipped if not yet visited, and the now-dead entries are compacted
// out of the slice once iteration completes.
func (e *Event) Emit(args ...interface{}) {
	e.mu.Lock()
	snapshot := make([]*entry, len(e.entries))
	copy(snapshot, e.entries)
	e.mu.Unlock()

	for _, en := range snapshot {
		en.mu.Lock()
		if !en.alive {
			en.mu.Unlock()
			continue
		}
		once := en.once
		fn := en.handler
		en.mu.Unlock()

		fn(args...)

		if once {
			en.mu.Lock()
			en.alive = false
			en.mu.Unlock()
		}
	}

	e.compact()
}

// compact drops dead entries so a long-lived Event doesn't accumulate
// garbage subscriptions across many Emit/Unsubscribe cycles.
func (e *Event) compact() {
	e.mu.Lock()
	defer e.mu.Unlock()
	live := e.entries[:0]
	for _, en := range e.entries {
		en.mu.Lock()
		alive := en.alive
		en.mu.Unlock()
		if alive {
			live = append(live, en)
		}
	}
	e.entries = live
}

// Len reports the number of currently-live subscriptions. Intended for
// tests (spec.md §8 property 8/9), not hot-path use.
func (e *Event) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, en := range e.entries {
		en.mu.Lock()
		if en.alive {
			n++
		}
		en.mu.Unlock()
	}
	return n
}
