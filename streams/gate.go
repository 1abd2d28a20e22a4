package streams

import "github.com/aethernetio/aether-go/event"

// WriteInGate transforms outbound data, per spec.md §4.D.
type WriteInGate interface {
	WriteIn(data []byte) ([]byte, error)
}

// WriteOutGate transforms inbound data.
type WriteOutGate interface {
	WriteOut(data []byte) ([]byte, error)
}

// OverheadGate reports how many bytes it adds per write, so upstream
// callers can shrink max_element_size accordingly.
type OverheadGate interface {
	Overhead() int
}

// EventSourceGate is a gate that can originate inbound data on its
// own (e.g. an out-of-band control message), independent of whatever
// its WriteOutGate sees on the main path. A gate-stream composing one
// of these subscribes to it and republishes to its own OutDataEvent.
type EventSourceGate interface {
	GateOutDataEvent() *event.Event
}

// Gate is the union other packages type-switch against: most gates in
// this codebase implement WriteInGate and/or WriteOutGate, optionally
// also OverheadGate and/or EventSourceGate.
type Gate interface{}
