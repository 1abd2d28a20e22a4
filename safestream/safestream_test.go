package safestream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aethernetio/aether-go/action"
	"github.com/aethernetio/aether-go/event"
	"github.com/aethernetio/aether-go/streams"
)

// loopStream is a minimal in-memory transport double: every Write is
// delivered synchronously to a linked peer's OutDataEvent, with no
// loss or reordering, enough to exercise SafeStream's wiring end to
// end without a real network.
type loopStream struct {
	proc      *action.Processor
	tracker   *streams.WriteTracker
	peer      *loopStream
	outEvt    event.Event
	updateEvt event.Cumulative
}

func newLoopStream(proc *action.Processor) *loopStream {
	return &loopStream{proc: proc, tracker: streams.NewWriteTracker(proc)}
}

func linkLoopStreams(a, b *loopStream) { a.peer = b; b.peer = a }

func (l *loopStream) Write(data []byte) streams.WriteAction {
	ptr := l.tracker.Begin()
	if l.peer != nil {
		cp := append([]byte(nil), data...)
		l.peer.outEvt.Emit(cp)
	}
	l.tracker.Resolve(ptr, len(data))
	return ptr
}

func (l *loopStream) OutDataEvent() *event.Event                { return &l.outEvt }
func (l *loopStream) StreamUpdateEvent() *event.Cumulative      { return &l.updateEvt }
func (l *loopStream) Info() streams.StreamInfo {
	return streams.StreamInfo{IsReliable: false, MaxElementSize: 1 << 20, RecElementSize: 1 << 20, Link: streams.LinkUp}
}
func (l *loopStream) LinkOut(streams.Stream) {}
func (l *loopStream) Unlink()                {}

func TestSafeStreamDeliversDataEndToEnd(t *testing.T) {
	proc := action.NewProcessor()
	cfg := testConfig()
	// Give the sender's retransmit deadline plenty of room over the
	// receiver's ack cadence so the trace below isn't racing itself.
	cfg.WaitConfirmTimeout = 200 * time.Millisecond

	clientTransport := newLoopStream(proc)
	serverTransport := newLoopStream(proc)
	linkLoopStreams(clientTransport, serverTransport)

	client := NewSafeStream(proc, cfg, 0)
	server := NewSafeStream(proc, cfg, 0)
	client.LinkOut(clientTransport)
	server.LinkOut(serverTransport)

	var received []byte
	server.OutDataEvent().Subscribe(func(args ...interface{}) {
		received = append(received, args[0].([]byte)...)
	})

	wa := client.Write([]byte("hello safe stream"))

	var result interface{}
	wa.OnResult(func(v interface{}) { result = v })

	now := time.Unix(0, 0)
	for i := 0; i < 20 && result == nil; i++ {
		now = now.Add(cfg.WaitConfirmTimeout)
		proc.Tick(now)
	}

	require.Equal(t, "hello safe stream", string(received))
	require.Equal(t, len("hello safe stream"), result)
}

func TestSafeStreamReportsReliableInfo(t *testing.T) {
	proc := action.NewProcessor()
	ss := NewSafeStream(proc, testConfig(), 0)
	info := ss.Info()
	require.True(t, info.IsReliable)
	require.Equal(t, streams.LinkDown, info.Link) // nothing linked yet

	transport := newLoopStream(proc)
	ss.LinkOut(transport)
	info = ss.Info()
	require.Equal(t, streams.LinkUp, info.Link)
}
