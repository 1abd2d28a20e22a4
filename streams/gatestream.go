package streams

import (
	"errors"

	"github.com/aethernetio/aether-go/action"
	"github.com/aethernetio/aether-go/event"
)

// ErrNotLinked is returned by Write when no downstream is attached.
var ErrNotLinked = errors.New("streams: write with no downstream linked")

// GateStream composes a fixed sequence of gates in front of one
// downstream Stream, per spec.md §4.D: writes fold left-to-right
// through each WriteInGate, reads fold right-to-left through each
// WriteOutGate, and any EventSourceGate's own inbound data is
// republished alongside the downstream's.
type GateStream struct {
	gates      []Gate
	downstream Stream
	tracker    *WriteTracker

	outEvt    event.Event
	updateEvt event.Cumulative

	subs []event.Subscription
}

// NewGateStream composes gates (outermost first, matching the order
// Tie would list them) in front of downstream. proc is the session's
// single ActionProcessor: it drives the WriteActions this GateStream
// synthesizes itself (for failures that never reach downstream).
func NewGateStream(proc *action.Processor, downstream Stream, gates ...Gate) *GateStream {
	gs := &GateStream{gates: gates, tracker: NewWriteTracker(proc)}
	gs.LinkOut(downstream)
	return gs
}

// Write transforms data through every WriteInGate in order, then
// writes the result to the downstream.
func (gs *GateStream) Write(data []byte) WriteAction {
	out := data
	for _, g := range gs.gates {
		if wg, ok := g.(WriteInGate); ok {
			var err error
			out, err = wg.WriteIn(out)
			if err != nil {
				return gs.failedWrite(err)
			}
		}
	}
	if gs.downstream == nil {
		return gs.failedWrite(ErrNotLinked)
	}
	return gs.downstream.Write(out)
}

// failedWrite synthesizes an already-terminal WriteAction for a
// transform that failed before reaching the downstream, so callers
// always get an ActionPtr back regardless of where the failure
// occurred. It is driven by this GateStream's own tracker, so it
// resolves on the next regular tick exactly like any other action.
func (gs *GateStream) failedWrite(err error) WriteAction {
	ptr := gs.tracker.Begin()
	gs.tracker.Fail(ptr, err)
	return ptr
}

// OutDataEvent returns the event that fires once per received,
// gate-transformed TypeOut payload.
func (gs *GateStream) OutDataEvent() *event.Event { return &gs.outEvt }

// StreamUpdateEvent fires whenever Info() may have changed.
func (gs *GateStream) StreamUpdateEvent() *event.Cumulative { return &gs.updateEvt }

// Info reports downstream's capacity shrunk by every gate's overhead.
func (gs *GateStream) Info() StreamInfo {
	if gs.downstream == nil {
		return StreamInfo{}
	}
	info := gs.downstream.Info()
	overhead := 0
	for _, g := range gs.gates {
		if og, ok := g.(OverheadGate); ok {
			overhead += og.Overhead()
		}
	}
	if info.MaxElementSize > 0 {
		info.MaxElementSize -= overhead
		if info.MaxElementSize < 0 {
			info.MaxElementSize = 0
		}
	}
	return info
}

// LinkOut attaches downstream, subscribing to its inbound data and to
// every EventSourceGate's own event source.
func (gs *GateStream) LinkOut(downstream Stream) {
	gs.Unlink()
	gs.downstream = downstream
	if downstream == nil {
		return
	}
	gs.subs = append(gs.subs, downstream.OutDataEvent().Subscribe(func(args ...interface{}) {
		data, _ := args[0].([]byte)
		gs.handleInbound(data)
	}))
	gs.subs = append(gs.subs, downstream.StreamUpdateEvent().Subscribe(func(args ...interface{}) {
		gs.updateEvt.Emit()
	}))
	for _, g := range gs.gates {
		if es, ok := g.(EventSourceGate); ok {
			sub := es.GateOutDataEvent().Subscribe(func(args ...interface{}) {
				data, _ := args[0].([]byte)
				gs.outEvt.Emit(data)
			})
			gs.subs = append(gs.subs, sub)
		}
	}
}

// Unlink detaches the current downstream and drops its subscriptions.
func (gs *GateStream) Unlink() {
	for _, s := range gs.subs {
		s.Unsubscribe()
	}
	gs.subs = nil
	gs.downstream = nil
}

// handleInbound folds data right-to-left through every WriteOutGate
// and republishes the result.
func (gs *GateStream) handleInbound(data []byte) {
	out := data
	for i := len(gs.gates) - 1; i >= 0; i-- {
		if wg, ok := gs.gates[i].(WriteOutGate); ok {
			var err error
			out, err = wg.WriteOut(out)
			if err != nil {
				// A decrypt/parse failure is treated as packet loss, per
				// spec.md §4.F: drop silently so upper layers (Safe Stream)
				// resynchronise via their own retransmit timers.
				return
			}
		}
	}
	gs.outEvt.Emit(out)
}
