// Package streams implements the gate/stream pipeline of spec.md §4.D:
// narrow, composable data transforms (gates) folded into a stream, and
// streams tied together into pipelines, with a splitter demultiplexing
// one physical stream into many logical ones by StreamId.
package streams

import (
	"time"

	"github.com/aethernetio/aether-go/action"
	"github.com/aethernetio/aether-go/event"
)

// LinkState describes whether a stream's downstream is currently
// attached and accepting writes.
type LinkState int

const (
	LinkDown LinkState = iota
	LinkUp
)

// StreamInfo is the capacity/link snapshot spec.md §4.D calls
// stream_info(): whether delivery is reliable/in-order, the largest
// single element a Write may carry, and the element size the stream
// actually receives from its own downstream.
type StreamInfo struct {
	IsReliable     bool
	MaxElementSize int
	RecElementSize int
	Link           LinkState
}

// writeState is the Action backing the ActionPtr a Stream's Write
// returns: a terminal Result/Error/Stop is delivered by calling
// Resolve/Fail once, then Trigger()ing the owning List to pick it up
// on the next sweep. It never computes a deadline itself.
type writeState struct {
	status action.Status
}

func (w *writeState) Update(now time.Time) action.Status { return w.status }

// WriteAction is the handle returned by Stream.Write, grounded on
// spec.md §4.D's "Write(in_data) → ActionPtr<WriteAction>".
type WriteAction = action.Ptr[*writeState]

// WriteTracker lets a stream implementation create and resolve
// WriteActions against its own action.List, registered once with the
// session's action.Processor at construction.
type WriteTracker struct {
	list *action.List[*writeState]
}

// NewWriteTracker creates a tracker and registers its backing list
// with proc so pending writes get swept every tick.
func NewWriteTracker(proc *action.Processor) *WriteTracker {
	l := action.NewList[*writeState]()
	action.Register(proc, l)
	return &WriteTracker{list: l}
}

// Begin creates a new pending WriteAction.
func (t *WriteTracker) Begin() WriteAction {
	return t.list.Insert(&writeState{status: action.Continue()})
}

// Resolve marks ptr's write as durably committed.
func (t *WriteTracker) Resolve(ptr WriteAction, result interface{}) {
	if a, ok := ptr.Action(); ok {
		a.status = action.Result(result)
		ptr.Trigger()
	}
}

// Fail marks ptr's write as having failed unrecoverably.
func (t *WriteTracker) Fail(ptr WriteAction, err error) {
	if a, ok := ptr.Action(); ok {
		a.status = action.Error(err)
		ptr.Trigger()
	}
}

// Stream is the bidirectional conduit of spec.md §4.D. A byte stream
// has TypeIn = TypeOut = TypeInOut = TypeOutIn = []byte; this
// interface is specialized to that common case (every composed piece
// of this package moves byte slices) rather than parameterized over
// all four type roles, matching the redesign guidance against
// speculative generality.
type Stream interface {
	// Write submits in_data for transmission, returning a handle whose
	// terminal event reflects when it reached the next durable layer.
	Write(data []byte) WriteAction

	// OutDataEvent fires once per received TypeOut payload.
	OutDataEvent() *event.Event

	// StreamUpdateEvent fires whenever StreamInfo() may have changed.
	StreamUpdateEvent() *event.Cumulative

	// Info returns the current capacity/link snapshot.
	Info() StreamInfo

	// LinkOut attaches downstream as this stream's next layer.
	LinkOut(downstream Stream)

	// Unlink detaches the current downstream, if any.
	Unlink()
}
