package safestream

import (
	"time"

	"github.com/aethernetio/aether-go/action"
	"github.com/aethernetio/aether-go/event"
	"github.com/aethernetio/aether-go/streams"
)

// maxElementSize is the sentinel SafeStream reports for
// StreamInfo.MaxElementSize: a Safe Stream session has no intrinsic
// per-Write size limit of its own (Sender.SendData slices payloads to
// the negotiated max_packet_size internally), so a fixed large value
// is reported; SendData does not check payloads against BufferCapacity.
const maxElementSize = 1 << 30

type driverAction struct{ ss *SafeStream }

func (d *driverAction) Update(now time.Time) action.Status {
	d.ss.sender.Tick(now)
	d.ss.receiver.Tick(now)
	return action.Continue()
}

// SafeStream composes a Sender and a Receiver into the reliable,
// in-order Stream of spec.md §4.E: every Safe Stream protocol message
// is itself framed and carried as a single Write on a downstream byte
// Stream (typically a Splitter's logical stream).
type SafeStream struct {
	proc       *action.Processor
	cfg        Config
	downstream streams.Stream
	sub        event.Subscription
	updSub     event.Subscription

	sender   *Sender
	receiver *Receiver

	tracker   *streams.WriteTracker
	updateEvt event.Cumulative
}

// NewSafeStream creates a SafeStream whose session begins at
// initialOffset, grounded on stream/stream.go's composition of a
// txEnqueue/retx sender with a processAck/readFrame receiver over one
// underlying connection.
func NewSafeStream(proc *action.Processor, cfg Config, initialOffset RingIndex) *SafeStream {
	ss := &SafeStream{
		proc:    proc,
		cfg:     cfg,
		tracker: streams.NewWriteTracker(proc),
	}
	ss.sender = NewSender(proc, cfg, initialOffset, ss.sendFrame)
	ss.receiver = NewReceiver(cfg, ss.sendFrame)

	drivers := action.NewList[*driverAction]()
	action.Register(proc, drivers)
	drivers.Insert(&driverAction{ss: ss})

	return ss
}

func (ss *SafeStream) sendFrame(frame []byte) {
	if ss.downstream == nil {
		return
	}
	ss.downstream.Write(frame)
}

// Write enqueues data with the Sender; the returned WriteAction
// resolves once every byte is cumulatively confirmed, or fails with
// ErrRepeatCountExceeded if retransmission gives up first.
func (ss *SafeStream) Write(data []byte) streams.WriteAction {
	out := ss.tracker.Begin()
	sent := ss.sender.SendData(data)
	sent.OnResult(func(v interface{}) { ss.tracker.Resolve(out, v) })
	sent.OnError(func(err error) { ss.tracker.Fail(out, err) })
	return out
}

// OutDataEvent fires with each contiguous run of newly-delivered bytes.
func (ss *SafeStream) OutDataEvent() *event.Event { return ss.receiver.ReceiveEvent() }

// StreamUpdateEvent fires whenever Info() may have changed, i.e.
// whenever the downstream's own link state changes.
func (ss *SafeStream) StreamUpdateEvent() *event.Cumulative { return &ss.updateEvt }

// Info reports this session as reliable and in-order, with no
// meaningful element-size ceiling of its own.
func (ss *SafeStream) Info() streams.StreamInfo {
	info := streams.StreamInfo{IsReliable: true, MaxElementSize: maxElementSize, Link: streams.LinkDown}
	if ss.downstream != nil {
		down := ss.downstream.Info()
		info.Link = down.Link
		info.RecElementSize = down.RecElementSize
	}
	return info
}

// LinkOut attaches downstream as the byte-carrying transport this
// session's frames travel over.
func (ss *SafeStream) LinkOut(downstream streams.Stream) {
	ss.Unlink()
	ss.downstream = downstream
	if downstream == nil {
		return
	}
	ss.sub = downstream.OutDataEvent().Subscribe(func(args ...interface{}) {
		ss.handleInbound(args[0].([]byte))
	})
	ss.updSub = downstream.StreamUpdateEvent().Subscribe(func(args ...interface{}) {
		ss.updateEvt.Emit()
	})
}

// Unlink detaches the current downstream, if any.
func (ss *SafeStream) Unlink() {
	ss.sub.Unsubscribe()
	ss.updSub.Unsubscribe()
	ss.downstream = nil
}

func (ss *SafeStream) handleInbound(frame []byte) {
	msg, err := DecodeMessage(frame)
	if err != nil {
		return // malformed frame: treated as packet loss, per streams.GateStream's decode-failure rule
	}
	switch m := msg.(type) {
	case Init:
		ss.receiver.HandleInit(m)
	case InitAck:
		ss.sender.HandleInitAck(m)
	case Send:
		ss.receiver.PushData(m.Offset, m.Data)
	case Repeat:
		ss.receiver.PushData(m.Offset, m.Data)
	case Confirm:
		ss.sender.HandleConfirm(m)
	case RequestRepeat:
		ss.sender.HandleRequestRepeat(m)
	}
}
