package streams

import "github.com/aethernetio/aether-go/event"

// InjectGate is a pass-through gate that also lets a test harness
// splice synthetic inbound data into a chain without writing a full
// gate. WriteIn/WriteOut are identity transforms; Inject fires the
// gate's own event-source path as if the downstream had just delivered
// that payload.
type InjectGate struct {
	outEvt event.Event
}

// NewInjectGate creates a ready-to-use pass-through gate.
func NewInjectGate() *InjectGate { return &InjectGate{} }

// WriteIn passes data through unchanged.
func (g *InjectGate) WriteIn(data []byte) ([]byte, error) { return data, nil }

// WriteOut passes data through unchanged.
func (g *InjectGate) WriteOut(data []byte) ([]byte, error) { return data, nil }

// GateOutDataEvent exposes this gate as an EventSourceGate so a
// GateStream subscribes to Inject calls alongside its real downstream.
func (g *InjectGate) GateOutDataEvent() *event.Event { return &g.outEvt }

// Inject synthesizes an inbound delivery of data through this gate.
func (g *InjectGate) Inject(data []byte) { g.outEvt.Emit(data) }
