// Package transport implements the downstream transport contract of
// spec.md §6 — a streams.Stream whose delivery is neither reliable nor
// ordered — over QUIC's unreliable DATAGRAM extension, grounded on
// other_examples' WebTransport client (client-transport.go.go): an
// EnableDatagrams-negotiated connection, SendDatagram on write, and a
// background goroutine pumping ReceiveDatagram into the session.
package transport

import (
	"context"
	"sync"
	"time"

	"github.com/aethernetio/aether-go/action"
	"github.com/aethernetio/aether-go/event"
	"github.com/aethernetio/aether-go/internal/workerutil"
	"github.com/aethernetio/aether-go/streams"
)

// datagramConn is the subset of quic.Connection this package drives.
// Narrowed to an interface so tests can substitute a fake without
// opening a real QUIC connection.
type datagramConn interface {
	SendMessage(data []byte) error
	ReceiveMessage(ctx context.Context) ([]byte, error)
	Context() context.Context
}

// maxDatagramPayload is a conservative budget for one QUIC DATAGRAM
// frame's payload, safely under the 1200-byte minimum-MTU path most
// networks honor once QUIC's own framing overhead is subtracted.
// quic-go does not expose a connection's negotiated datagram ceiling
// directly at this API surface, so this is a fixed, deliberately
// conservative number rather than a queried one.
const maxDatagramPayload = 1100

// QuicDatagramStream adapts one QUIC connection's DATAGRAM extension to
// streams.Stream. Writes are fire-and-forget at the QUIC layer: Resolve
// fires as soon as SendMessage hands the frame to quic-go, not when (or
// whether) it's ever acknowledged, matching the "unreliable, unordered"
// contract spec.md §6 asks the downstream transport to honor.
type QuicDatagramStream struct {
	workerutil.Worker

	conn    datagramConn
	tracker *streams.WriteTracker
	cancel  context.CancelFunc

	mu     sync.Mutex
	inbox  [][]byte
	closed bool

	outEvt    event.Event
	updateEvt event.Cumulative
}

// NewQuicDatagramStream wraps conn and starts its background receive
// pump. proc drives the WriteTracker and is woken (via WakeNow) every
// time a datagram arrives or the connection closes, so the embedder's
// Tick loop notices promptly instead of waiting out its current
// deadline.
func NewQuicDatagramStream(proc *action.Processor, conn datagramConn) *QuicDatagramStream {
	ctx, cancel := context.WithCancel(conn.Context())
	s := &QuicDatagramStream{
		conn:    conn,
		tracker: streams.NewWriteTracker(proc),
		cancel:  cancel,
	}
	s.Go(func() { s.receiveLoop(ctx, proc) })
	return s
}

func (s *QuicDatagramStream) receiveLoop(ctx context.Context, proc *action.Processor) {
	for {
		data, err := s.conn.ReceiveMessage(ctx)
		if err != nil {
			s.mu.Lock()
			s.closed = true
			s.mu.Unlock()
			proc.WakeNow()
			return
		}
		s.mu.Lock()
		s.inbox = append(s.inbox, data)
		s.mu.Unlock()
		proc.WakeNow()
	}
}

// DrainTask returns the per-tick action that moves datagrams the
// background receive goroutine has queued onto OutDataEvent from
// inside the cooperative Update(now) loop, per spec.md §5: nothing
// touches Event/Emit from outside that loop. The embedder registers
// this once (action.NewList + action.Register + list.Insert),
// mirroring how peer.Ping.Task() is registered.
func (s *QuicDatagramStream) DrainTask() *action.RepeatableTask {
	return action.NewRepeatableTask(0, 0, s.drain)
}

func (s *QuicDatagramStream) drain(time.Time) error {
	s.mu.Lock()
	pending := s.inbox
	s.inbox = nil
	closed := s.closed
	s.mu.Unlock()

	for _, data := range pending {
		s.outEvt.Emit(data)
	}
	if closed && !s.updateEvt.HasFired() {
		s.updateEvt.Emit()
	}
	return nil
}

// Write implements streams.Stream.
func (s *QuicDatagramStream) Write(data []byte) streams.WriteAction {
	ptr := s.tracker.Begin()
	if err := s.conn.SendMessage(data); err != nil {
		s.tracker.Fail(ptr, err)
	} else {
		s.tracker.Resolve(ptr, len(data))
	}
	return ptr
}

// OutDataEvent fires once per received datagram.
func (s *QuicDatagramStream) OutDataEvent() *event.Event { return &s.outEvt }

// StreamUpdateEvent fires once, when the connection closes.
func (s *QuicDatagramStream) StreamUpdateEvent() *event.Cumulative { return &s.updateEvt }

// Info reports unreliable, unordered delivery: the defining property a
// gate-stream or Safe Stream layered on top needs in order to apply
// its own retransmission and reordering logic.
func (s *QuicDatagramStream) Info() streams.StreamInfo {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	link := streams.LinkUp
	if closed {
		link = streams.LinkDown
	}
	return streams.StreamInfo{
		IsReliable:     false,
		MaxElementSize: maxDatagramPayload,
		RecElementSize: maxDatagramPayload,
		Link:           link,
	}
}

// Close stops the receive pump, releasing the connection context
// derived in NewQuicDatagramStream, and blocks until the pump goroutine
// has actually returned. It does not close conn itself — that's the
// embedder's call, since the same quic.Connection may carry other
// streams.
func (s *QuicDatagramStream) Close() {
	s.cancel()
	s.Wait()
}

// LinkOut/Unlink are no-ops: a datagram stream's only downstream is the
// QUIC connection it was constructed with.
func (s *QuicDatagramStream) LinkOut(streams.Stream) {}
func (s *QuicDatagramStream) Unlink()                {}
