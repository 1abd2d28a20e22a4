package safestream

import (
	"time"

	"github.com/aethernetio/aether-go/event"
)

// chunkEntry is one contiguous, gap-free run of buffered bytes waiting
// to become part of the emitted prefix.
type chunkEntry struct {
	Range OffsetRange
	Data  []byte
}

// Receiver is the receiving half of a Safe Stream session, grounded on
// stream/stream.go's processAck/readFrame reassembly loop. Buffered
// chunks live in an ascending, non-overlapping slice, kept in that
// order by insertMerge, so the trim/merge/insert bookkeeping of
// spec.md §4.E.4 stays a plain splice and the contiguous-prefix scan
// in tryEmit is a forward walk of the slice itself.
type Receiver struct {
	cfg      Config
	transmit func([]byte)

	hasBegun          bool
	begin             RingIndex
	lastEmittedOffset RingIndex

	chunks []chunkEntry

	emittedSinceAck bool
	ackTimerStart   time.Time

	gapOffset     *RingIndex
	gapDetectedAt time.Time

	receiveEvt event.Event
}

// NewReceiver creates a receiver. transmit is called with each
// outgoing Confirm/InitAck/RequestRepeat frame's encoded bytes.
func NewReceiver(cfg Config, transmit func([]byte)) *Receiver {
	return &Receiver{cfg: cfg, transmit: transmit}
}

// ReceiveEvent fires with each newly-delivered contiguous run of bytes.
func (r *Receiver) ReceiveEvent() *event.Event { return &r.receiveEvt }

func (r *Receiver) sendConfirm(offset RingIndex) {
	r.transmit(Confirm{Offset: offset}.Encode())
}

// HandleInit processes an inbound Init, (re)establishing the session
// base at Params.Offset and replying with InitAck.
func (r *Receiver) HandleInit(init Init) {
	if !r.hasBegun || r.begin != init.Params.Offset {
		r.SetOffset(init.Params.Offset)
	}
	window, maxPkt := negotiate(r.cfg.WindowSize, init.Params.WindowSize, r.cfg.MaxPacketSize, init.Params.MaxPacketSize)
	r.transmit(InitAck{
		RequestId: init.RequestId,
		Params:    InitParams{Offset: r.begin, WindowSize: window, MaxPacketSize: maxPkt},
	}.Encode())
}

// PushData processes an inbound Send or Repeat payload, per
// spec.md §4.E.4.
func (r *Receiver) PushData(offset RingIndex, data []byte) {
	if len(data) == 0 {
		return
	}
	if !r.hasBegun {
		r.hasBegun = true
		r.begin = offset
		r.lastEmittedOffset = offset.Sub(1)
	}

	newRange := OffsetRange{Left: offset, Right: offset.Add(uint32(len(data)) - 1)}
	windowEnd := r.begin.Add(r.cfg.EffectiveWindow())
	if newRange.Left.Before(r.begin) || newRange.Left.After(windowEnd) {
		r.sendConfirm(r.begin.Sub(1))
		return
	}

	for _, c := range r.chunks {
		if !newRange.Left.Before(c.Range.Left) && !newRange.Right.After(c.Range.Right) {
			r.sendConfirm(r.lastEmittedOffset)
			return
		}
	}

	pieces := []OffsetRange{newRange}
	for _, c := range r.chunks {
		var next []OffsetRange
		for _, p := range pieces {
			next = append(next, subtractRange(p, c.Range)...)
		}
		pieces = next
	}
	for _, p := range pieces {
		skip := uint32(p.Left - offset)
		piece := data[skip : skip+p.Len()]
		r.insertMerge(chunkEntry{Range: p, Data: append([]byte(nil), piece...)})
	}

	r.tryEmit()
}

// subtractRange returns the parts of p that do not overlap c (0, 1 or
// 2 pieces).
func subtractRange(p, c OffsetRange) []OffsetRange {
	if !p.Overlaps(c) {
		return []OffsetRange{p}
	}
	var out []OffsetRange
	if p.Left.Before(c.Left) {
		out = append(out, OffsetRange{Left: p.Left, Right: c.Left.Sub(1)})
	}
	if p.Right.After(c.Right) {
		out = append(out, OffsetRange{Left: c.Right.Add(1), Right: p.Right})
	}
	return out
}

// insertMerge inserts e into r.chunks in order, merging with an
// adjacent left and/or right neighbor so the slice stays a minimal
// set of non-overlapping, non-adjacent runs.
func (r *Receiver) insertMerge(e chunkEntry) {
	idx := 0
	for idx < len(r.chunks) && r.chunks[idx].Range.Left.Before(e.Range.Left) {
		idx++
	}
	merged := e
	if idx > 0 && r.chunks[idx-1].Range.Adjacent(merged.Range) {
		left := r.chunks[idx-1]
		merged = chunkEntry{
			Range: OffsetRange{Left: left.Range.Left, Right: merged.Range.Right},
			Data:  append(append([]byte(nil), left.Data...), merged.Data...),
		}
		r.chunks = append(r.chunks[:idx-1], r.chunks[idx:]...)
		idx--
	}
	if idx < len(r.chunks) && merged.Range.Adjacent(r.chunks[idx].Range) {
		right := r.chunks[idx]
		merged = chunkEntry{
			Range: OffsetRange{Left: merged.Range.Left, Right: right.Range.Right},
			Data:  append(append([]byte(nil), merged.Data...), right.Data...),
		}
		r.chunks = append(r.chunks[:idx], r.chunks[idx+1:]...)
	}
	r.chunks = append(r.chunks, chunkEntry{})
	copy(r.chunks[idx+1:], r.chunks[idx:])
	r.chunks[idx] = merged
}

// tryEmit fires ReceiveEvent with the longest contiguous run of
// buffered bytes starting exactly at r.begin, walking r.chunks forward.
func (r *Receiver) tryEmit() {
	if len(r.chunks) == 0 || r.chunks[0].Range.Left != r.begin {
		return
	}

	var emitted []byte
	consumed := 0
	expect := r.begin
	for _, c := range r.chunks {
		if c.Range.Left != expect {
			break
		}
		emitted = append(emitted, c.Data...)
		expect = c.Range.Right.Add(1)
		consumed++
	}
	if consumed == 0 {
		return
	}

	r.chunks = r.chunks[consumed:]
	r.begin = expect
	r.lastEmittedOffset = expect.Sub(1)
	r.emittedSinceAck = true
	r.receiveEvt.Emit(emitted)
}

// Tick drives the ack and repeat-request timers.
func (r *Receiver) Tick(now time.Time) {
	if r.emittedSinceAck {
		if r.ackTimerStart.IsZero() {
			r.ackTimerStart = now
		} else if !now.Before(r.ackTimerStart.Add(r.cfg.SendConfirmTimeout)) {
			r.sendConfirm(r.lastEmittedOffset)
			r.emittedSinceAck = false
			r.ackTimerStart = time.Time{}
		}
	}

	if len(r.chunks) > 0 && r.chunks[0].Range.Left != r.begin {
		missing := r.begin
		if r.gapOffset == nil || *r.gapOffset != missing {
			g := missing
			r.gapOffset = &g
			r.gapDetectedAt = now
			return
		}
		if !now.Before(r.gapDetectedAt.Add(r.cfg.SendRepeatTimeout)) {
			r.transmit(RequestRepeat{Offset: missing}.Encode())
			r.gapDetectedAt = now
		}
	} else {
		r.gapOffset = nil
	}
}

// SetOffset performs the administrative reset of spec.md §4.E.4:
// forget every buffered chunk and resume the session at newBegin.
func (r *Receiver) SetOffset(newBegin RingIndex) {
	r.hasBegun = true
	r.begin = newBegin
	r.lastEmittedOffset = newBegin.Sub(1)
	r.chunks = nil
	r.emittedSinceAck = false
	r.ackTimerStart = time.Time{}
	r.gapOffset = nil
}
