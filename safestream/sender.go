package safestream

import (
	"time"

	"github.com/aethernetio/aether-go/action"
	"github.com/aethernetio/aether-go/wire"
)

// senderState is the Init → WaitInitAck → Initiated progression of
// spec.md §4.E.3. ReInit is folded back into WaitInitAck: an offset
// mismatch on InitAck simply resets begin/lastSent and re-requests an
// Init send, rather than being tracked as a fourth distinct state.
type senderState int

const (
	senderInit senderState = iota
	senderWaitInitAck
	senderInitiated
)

type sendAction struct{ status action.Status }

func (s *sendAction) Update(now time.Time) action.Status { return s.status }

// SendingDataAction is the handle SendData returns: Result fires when
// the whole payload is cumulatively acknowledged, Error when
// max_repeat_count is exceeded for any byte of it.
type SendingDataAction = action.Ptr[*sendAction]

type sendingData struct {
	offset  RingIndex
	payload []byte
	ptr     SendingDataAction
}

func (sd *sendingData) end() RingIndex { return sd.offset.Add(uint32(len(sd.payload)) - 1) }

type sendingChunk struct {
	Range       OffsetRange
	RepeatCount int
	SendTime    time.Time
}

// Sender is the sending half of a Safe Stream session, grounded on
// client2/arq.go's per-chunk retransmission bookkeeping generalized
// from SURB-ID keyed retries to this package's ring-offset keying, and
// on stream/stream.go's txEnqueue/retx timeout-driven retransmit loop.
type Sender struct {
	cfg      Config
	transmit func([]byte)

	state               senderState
	requestId           wire.RequestId
	initSent            bool
	initSentAt          time.Time
	initSentRepeatCount int

	begin     RingIndex
	lastAdded RingIndex
	lastSent  RingIndex

	negotiated bool
	peerWindow uint32
	peerMaxPkt uint32

	dataList []*sendingData
	chunks   []*sendingChunk

	ids     *wire.RequestIdAllocator
	tracker *action.List[*sendAction]
}

// NewSender creates a sender starting its session at initialOffset.
// transmit is called with each outgoing Safe Stream frame's encoded
// bytes (already Encode()d), destined for the downstream byte Stream.
func NewSender(proc *action.Processor, cfg Config, initialOffset RingIndex, transmit func([]byte)) *Sender {
	l := action.NewList[*sendAction]()
	action.Register(proc, l)
	return &Sender{
		cfg:       cfg,
		transmit:  transmit,
		begin:     initialOffset,
		lastAdded: initialOffset,
		lastSent:  initialOffset,
		ids:       wire.NewRequestIdAllocator(),
		tracker:   l,
	}
}

// SendData enqueues payload for transmission and returns a handle for
// its eventual cumulative-ack or failure.
func (s *Sender) SendData(payload []byte) SendingDataAction {
	ptr := s.tracker.Insert(&sendAction{status: action.Continue()})
	s.dataList = append(s.dataList, &sendingData{
		offset:  s.lastAdded,
		payload: payload,
		ptr:     ptr,
	})
	s.lastAdded = s.lastAdded.Add(uint32(len(payload)))
	return ptr
}

func (s *Sender) effectiveWindow() uint32 {
	window := s.cfg.WindowSize
	if s.negotiated && s.peerWindow < window {
		window = s.peerWindow
	}
	if s.cfg.BufferCapacity < window {
		window = s.cfg.BufferCapacity
	}
	return window
}

func (s *Sender) maxPacketSize() uint32 {
	if s.negotiated && s.peerMaxPkt < s.cfg.MaxPacketSize {
		return s.peerMaxPkt
	}
	return s.cfg.MaxPacketSize
}

func backoffDeadline(cfg Config, sentAt time.Time, repeatCount int) time.Time {
	d := time.Duration(float64(cfg.WaitConfirmTimeout) * cfg.Backoff(repeatCount))
	return sentAt.Add(d)
}

// Tick advances the sender one scheduling step, per spec.md §4.E.3.
func (s *Sender) Tick(now time.Time) {
	if s.state != senderInitiated {
		s.tickHandshake(now)
		return
	}
	s.fillWindow(now)
	s.retransmitOverdue(now)
}

func (s *Sender) tickHandshake(now time.Time) {
	if s.initSent && now.Before(backoffDeadline(s.cfg, s.initSentAt, s.initSentRepeatCount)) {
		return
	}
	rc := 0
	if s.initSent {
		rc = s.initSentRepeatCount + 1
	} else {
		s.requestId = s.ids.Alloc()
		s.state = senderWaitInitAck
	}
	msg := Init{
		RequestId:   s.requestId,
		RepeatCount: rc,
		Params: InitParams{
			Offset:        s.begin,
			WindowSize:    s.cfg.WindowSize,
			MaxPacketSize: s.cfg.MaxPacketSize,
		},
	}
	s.transmit(msg.Encode())
	s.initSentAt = now
	s.initSent = true
	s.initSentRepeatCount = rc
}

func (s *Sender) readRange(left RingIndex, n uint32) []byte {
	out := make([]byte, 0, n)
	remaining := n
	cur := left
	for _, sd := range s.dataList {
		if remaining == 0 {
			break
		}
		if sd.end().Before(cur) {
			continue
		}
		if sd.offset.After(cur) {
			break // gap: shouldn't happen for a contiguous send buffer
		}
		skip := uint32(cur.Distance(sd.offset) * -1)
		avail := uint32(len(sd.payload)) - skip
		take := avail
		if take > remaining {
			take = remaining
		}
		out = append(out, sd.payload[skip:skip+take]...)
		cur = cur.Add(take)
		remaining -= take
	}
	return out
}

func (s *Sender) fillWindow(now time.Time) {
	window := s.effectiveWindow()
	maxPkt := s.maxPacketSize()
	for uint32(s.begin.Distance(s.lastSent)) < window && s.lastSent.Before(s.lastAdded) {
		inflight := uint32(s.begin.Distance(s.lastSent))
		remaining := uint32(s.lastSent.Distance(s.lastAdded))
		sliceLen := maxPkt
		if sliceLen > remaining {
			sliceLen = remaining
		}
		if sliceLen > window-inflight {
			sliceLen = window - inflight
		}
		if sliceLen == 0 {
			break
		}
		data := s.readRange(s.lastSent, sliceLen)
		chunk := &sendingChunk{
			Range:    OffsetRange{Left: s.lastSent, Right: s.lastSent.Add(sliceLen - 1)},
			SendTime: now,
		}
		s.chunks = append(s.chunks, chunk)
		s.transmit(Send{Offset: s.lastSent, Data: data}.Encode())
		s.lastSent = s.lastSent.Add(sliceLen)
	}
}

func (s *Sender) retransmitOverdue(now time.Time) {
	kept := s.chunks[:0]
	for _, chunk := range s.chunks {
		if now.Before(backoffDeadline(s.cfg, chunk.SendTime, chunk.RepeatCount)) {
			kept = append(kept, chunk)
			continue
		}
		if chunk.RepeatCount >= s.cfg.MaxRepeatCount {
			s.failOverlapping(chunk.Range, ErrRepeatCountExceeded)
			continue
		}
		chunk.RepeatCount++
		chunk.SendTime = now
		data := s.readRange(chunk.Range.Left, chunk.Range.Len())
		s.transmit(Repeat{RepeatCount: chunk.RepeatCount, Offset: chunk.Range.Left, Data: data}.Encode())
		kept = append(kept, chunk)
	}
	s.chunks = kept
}

func (s *Sender) failOverlapping(r OffsetRange, err error) {
	for _, sd := range s.dataList {
		sdRange := OffsetRange{Left: sd.offset, Right: sd.end()}
		if sdRange.Overlaps(r) {
			if a, ok := sd.ptr.Action(); ok {
				a.status = action.Error(err)
				sd.ptr.Trigger()
			}
		}
	}
}

// HandleInitAck processes an InitAck from the receiver.
func (s *Sender) HandleInitAck(ack InitAck) {
	if ack.RequestId != s.requestId {
		return
	}
	window, maxPkt := negotiate(s.cfg.WindowSize, ack.Params.WindowSize, s.cfg.MaxPacketSize, ack.Params.MaxPacketSize)
	if ack.Params.Offset != s.begin {
		s.begin = ack.Params.Offset
		s.lastSent = ack.Params.Offset
		s.chunks = nil
		s.state = senderWaitInitAck
		s.initSent = false
		return
	}
	s.peerWindow = window
	s.peerMaxPkt = maxPkt
	s.negotiated = true
	s.state = senderInitiated
}

// HandleConfirm processes a cumulative Confirm from the receiver. A
// Confirm received before any InitAck serves as an implicit InitAck,
// per spec.md §6's handshake sequence diagram.
func (s *Sender) HandleConfirm(c Confirm) {
	if s.state != senderInitiated {
		if !s.negotiated {
			s.peerWindow = s.cfg.WindowSize
			s.peerMaxPkt = s.cfg.MaxPacketSize
			s.negotiated = true
		}
		s.state = senderInitiated
	}

	if c.Offset.Before(s.begin) {
		return // stale ack: see DESIGN.md Open Question decisions
	}

	newBegin := c.Offset.Add(1)
	for len(s.dataList) > 0 {
		sd := s.dataList[0]
		if sd.end().After(c.Offset) {
			break
		}
		if a, ok := sd.ptr.Action(); ok {
			a.status = action.Result(len(sd.payload))
			sd.ptr.Trigger()
		}
		s.dataList = s.dataList[1:]
	}
	if len(s.dataList) > 0 {
		sd := s.dataList[0]
		if sd.offset.Before(newBegin) {
			trim := uint32(sd.offset.Distance(newBegin))
			sd.payload = sd.payload[trim:]
			sd.offset = newBegin
		}
	}
	s.begin = newBegin

	kept := s.chunks[:0]
	for _, chunk := range s.chunks {
		if chunk.Range.Right.After(c.Offset) {
			kept = append(kept, chunk)
		}
	}
	s.chunks = kept
}

// HandleRequestRepeat forces the chunk covering offset to be
// retransmitted on the next Tick.
func (s *Sender) HandleRequestRepeat(rr RequestRepeat) {
	for _, chunk := range s.chunks {
		if chunk.Range.InRange(rr.Offset) {
			chunk.SendTime = time.Time{}
			return
		}
	}
}
