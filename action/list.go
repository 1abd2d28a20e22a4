package action

import "time"

// List is a typed arena of actions of one concrete kind T, per the
// "typed sub-registries" design in SPEC_FULL §C.1 (grounded on
// aether/actions/action_list.h + action_registry.h): rather than one
// untyped list of interface values, the Processor holds one List[T] per
// action kind, each swept independently every tick.
type List[T Action] struct {
	slots []slot[T]
	free  []int
	nextG generation
}

// NewList creates an empty arena.
func NewList[T Action]() *List[T] {
	return &List[T]{}
}

// Insert adds a new action and returns a generation-checked Ptr to it.
func (l *List[T]) Insert(a T) Ptr[T] {
	l.nextG++
	g := l.nextG

	var idx int
	if n := len(l.free); n > 0 {
		idx = l.free[n-1]
		l.free = l.free[:n-1]
		l.slots[idx] = slot[T]{gen: g, occupied: true, action: a, dirty: true}
	} else {
		idx = len(l.slots)
		l.slots = append(l.slots, slot[T]{gen: g, occupied: true, action: a, dirty: true})
	}
	return Ptr[T]{list: l, idx: idx, gen: g}
}

// trigger marks slot idx dirty if gen still matches.
func (l *List[T]) trigger(idx int, g generation) {
	if idx < 0 || idx >= len(l.slots) {
		return
	}
	s := &l.slots[idx]
	if s.occupied && s.gen == g {
		s.dirty = true
	}
}

// Len reports the number of live (non-terminal) actions.
func (l *List[T]) Len() int {
	n := 0
	for i := range l.slots {
		if l.slots[i].occupied {
			n++
		}
	}
	return n
}

// sweep runs Update on every dirty or expired slot, fires terminal
// events, detaches terminal actions, and returns the earliest pending
// deadline among the slots that remain; immediate is true if any slot
// returned StatusContinue and so runs again on the very next tick.
func (l *List[T]) sweep(now time.Time) (nextWake time.Time, immediate bool) {
	for i := range l.slots {
		s := &l.slots[i]
		if !s.occupied {
			continue
		}
		due := s.dirty || (!s.deadline.IsZero() && !now.Before(s.deadline))
		if !due {
			if nextWake.IsZero() || s.deadline.Before(nextWake) {
				nextWake = s.deadline
			}
			continue
		}
		s.dirty = false

		status := s.action.Update(now)
		s.status = status

		switch status.Kind {
		case StatusContinue:
			s.deadline = time.Time{}
			s.dirty = true
			immediate = true
		case StatusDelay:
			s.deadline = status.Deadline
			if nextWake.IsZero() || status.Deadline.Before(nextWake) {
				nextWake = status.Deadline
			}
		case StatusResult:
			s.resultEvt.Emit(status.Result)
			l.free = append(l.free, i)
			s.occupied = false
		case StatusError:
			s.errorEvt.Emit(status.Err)
			l.free = append(l.free, i)
			s.occupied = false
		case StatusStop:
			s.stopEvt.Emit()
			l.free = append(l.free, i)
			s.occupied = false
		}
	}
	return nextWake, immediate
}
