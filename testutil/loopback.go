// Package testutil provides the in-memory transport and mock doubles
// every package's own tests build session-level scenarios on top of,
// so exercising spec.md §8's property scenarios (drop, reorder,
// duplicate) doesn't need a real network or a Docker harness — mirroring
// the teacher's docker-based integration shape in
// client2/client_docker_test.go with a pure-Go loopback standing in for
// the network.
package testutil

import (
	"math/rand"
	"sync"

	"github.com/aethernetio/aether-go/event"
	"github.com/aethernetio/aether-go/streams"
)

// LossyLoopback is a pair-linked streams.Stream that drops, reorders,
// and duplicates delivery according to fixed probabilities, rather
// than delivering every Write to its peer immediately and in order
// like the simpler loop doubles individual packages keep inline in
// their own _test.go files.
type LossyLoopback struct {
	peer *LossyLoopback
	rnd  *rand.Rand

	dropProb      float64
	reorderProb   float64
	duplicateProb float64

	mu      sync.Mutex
	held    []byte // one out-of-order frame waiting to be released
	hasHeld bool

	outEvt    event.Event
	updateEvt event.Cumulative
}

// LinkLossyLoopback links a and b as each other's peer.
func LinkLossyLoopback(a, b *LossyLoopback) { a.peer = b; b.peer = a }

// NewLossyLoopback builds one half of a linked pair. seed makes the
// loss/reorder/duplicate pattern reproducible across test runs; pass a
// different seed per test to cover a different delivery trace of the
// same scenario.
func NewLossyLoopback(seed int64, dropProb, reorderProb, duplicateProb float64) *LossyLoopback {
	return &LossyLoopback{
		rnd:           rand.New(rand.NewSource(seed)),
		dropProb:      dropProb,
		reorderProb:   reorderProb,
		duplicateProb: duplicateProb,
	}
}

// Write implements streams.Stream: a zero-value WriteAction is
// returned immediately since this double models transport-level
// unreliability, not the asynchronous commit tracking a real transport
// needs a streams.WriteTracker for.
func (l *LossyLoopback) Write(data []byte) streams.WriteAction {
	if l.peer == nil {
		var zero streams.WriteAction
		return zero
	}
	cp := append([]byte(nil), data...)
	l.peer.deliver(cp)
	var zero streams.WriteAction
	return zero
}

// deliver applies this loopback's own drop/reorder/duplicate
// probabilities to an inbound frame before emitting it, since each
// half of a pair models the lossiness of the link in the direction
// data is arriving, not departing.
func (l *LossyLoopback) deliver(data []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.rnd.Float64() < l.dropProb {
		return
	}

	if l.hasHeld {
		held := l.held
		l.hasHeld = false
		l.held = nil
		l.outEvt.Emit(held)
	}

	if l.rnd.Float64() < l.reorderProb {
		l.held = data
		l.hasHeld = true
	} else {
		l.outEvt.Emit(data)
	}

	if l.rnd.Float64() < l.duplicateProb {
		l.outEvt.Emit(append([]byte(nil), data...))
	}
}

func (l *LossyLoopback) OutDataEvent() *event.Event           { return &l.outEvt }
func (l *LossyLoopback) StreamUpdateEvent() *event.Cumulative { return &l.updateEvt }

// Info reports unreliable, unordered delivery, matching what this
// double actually does.
func (l *LossyLoopback) Info() streams.StreamInfo {
	return streams.StreamInfo{IsReliable: false, MaxElementSize: 1 << 16, RecElementSize: 1 << 16, Link: streams.LinkUp}
}

func (l *LossyLoopback) LinkOut(streams.Stream) {}
func (l *LossyLoopback) Unlink()                {}
