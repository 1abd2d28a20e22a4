package action

import (
	"time"

	"github.com/aethernetio/aether-go/event"
)

// generation distinguishes reused arena slots from one another so a
// stale Ptr can never observe a different action that happens to land
// in the same slot index. Mirrors the "generation counters or
// equivalent" guidance in spec.md §4.A for ActionPtr<T>.
type generation uint64

// slot is one arena entry. resultEvt/errorEvt/stopEvt each fire exactly
// once, on the tick the action transitions to that terminal status,
// satisfying the "exactly once" half of spec.md §5's cancellation
// guarantee.
type slot[T any] struct {
	gen      generation
	occupied bool
	action   T
	status   Status
	deadline time.Time
	dirty    bool

	resultEvt event.Event
	errorEvt  event.Event
	stopEvt   event.Event
}

// Ptr is a weak, generation-checked view into a List[T] slot. It never
// owns the slot: destroying a Ptr does not free anything, and the slot
// is only reclaimed once the action has reached a terminal Status.
// Safe to copy and to outlive the action it refers to; all access after
// the slot is recycled returns zero values and false.
type Ptr[T any] struct {
	list *List[T]
	idx  int
	gen  generation
}

// Valid reports whether the slot this Ptr names is still the same
// generation it was created against.
func (p Ptr[T]) Valid() bool {
	if p.list == nil || p.idx < 0 || p.idx >= len(p.list.slots) {
		return false
	}
	s := &p.list.slots[p.idx]
	return s.occupied && s.gen == p.gen
}

// Action returns the live action value, or the zero value and false if
// the Ptr has gone stale.
func (p Ptr[T]) Action() (T, bool) {
	var zero T
	if !p.Valid() {
		return zero, false
	}
	return p.list.slots[p.idx].action, true
}

// Status returns the action's last-observed Status.
func (p Ptr[T]) Status() (Status, bool) {
	if !p.Valid() {
		return Status{}, false
	}
	return p.list.slots[p.idx].status, true
}

// OnResult subscribes to the action's terminal Result event.
func (p Ptr[T]) OnResult(fn func(interface{})) event.Subscription {
	if !p.Valid() {
		return event.Subscription{}
	}
	return p.list.slots[p.idx].resultEvt.Subscribe(func(args ...interface{}) {
		fn(args[0])
	})
}

// OnError subscribes to the action's terminal Error event.
func (p Ptr[T]) OnError(fn func(error)) event.Subscription {
	if !p.Valid() {
		return event.Subscription{}
	}
	return p.list.slots[p.idx].errorEvt.Subscribe(func(args ...interface{}) {
		fn(args[0].(error))
	})
}

// OnStop subscribes to the action's terminal Stop event.
func (p Ptr[T]) OnStop(fn func()) event.Subscription {
	if !p.Valid() {
		return event.Subscription{}
	}
	return p.list.slots[p.idx].stopEvt.Subscribe(func(args ...interface{}) {
		fn()
	})
}

// Trigger marks the action dirty, so the owning Processor calls Update
// on it at the very next tick regardless of its current deadline.
func (p Ptr[T]) Trigger() {
	if !p.Valid() {
		return
	}
	p.list.trigger(p.idx, p.gen)
}

// Stop cancels the underlying action if it implements Canceler.
func (p Ptr[T]) Stop() {
	act, ok := p.Action()
	if !ok {
		return
	}
	if c, ok := any(act).(Canceler); ok {
		c.Stop()
	}
}
