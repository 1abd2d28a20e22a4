package streams

import (
	"errors"

	"github.com/aethernetio/aether-go/action"
	"github.com/aethernetio/aether-go/event"
	"github.com/aethernetio/aether-go/wire"
)

// ErrStreamClosed is the failure a logicalStream's Write resolves with
// once its id has been unregistered, either by CloseStream or by a
// fresh registration taking over the same id.
var ErrStreamClosed = errors.New("streams: write to closed logical stream")

// StreamId identifies one logical stream multiplexed over a single
// underlying byte Stream, per spec.md §4.D. Client-issued ids are odd
// starting at 1; server-issued ids are even starting at 2 — grounded
// on SagerNet-smux/session.go's `nextStreamID += 2` odd/even id-space
// split between the two session roles, which avoids collisions
// between independently-initiated streams without coordination.
type StreamId uint8

const (
	firstClientStreamId StreamId = 1
	firstServerStreamId StreamId = 2

	streamIdStep StreamId = 2
)

func encodeStreamFrame(id StreamId, payload []byte) []byte {
	w := wire.NewWriter()
	w.WriteU8(uint8(id))
	w.WriteBytes(payload)
	return w.Bytes()
}

func decodeStreamFrame(buf []byte) (StreamId, []byte, error) {
	r := wire.NewReader(buf)
	id, err := r.ReadU8()
	if err != nil {
		return 0, nil, err
	}
	payload, err := r.ReadBytes()
	if err != nil {
		return 0, nil, err
	}
	return StreamId(id), payload, nil
}

// Splitter multiplexes N logical streams, each identified by a
// StreamId, over one underlying byte Stream.
type Splitter struct {
	downstream Stream
	nextId     StreamId
	streams    map[StreamId]*logicalStream
	newStream  event.Event
	sub        event.Subscription
	tracker    *WriteTracker
}

// NewSplitter wraps downstream. isClient selects which half of the
// StreamId space this side allocates from when OpenStream is called.
// proc backs the WriteTracker that resolves writes rejected because
// their id is no longer registered.
func NewSplitter(proc *action.Processor, downstream Stream, isClient bool) *Splitter {
	sp := &Splitter{
		downstream: downstream,
		streams:    make(map[StreamId]*logicalStream),
		tracker:    NewWriteTracker(proc),
	}
	if isClient {
		sp.nextId = firstClientStreamId
	} else {
		sp.nextId = firstServerStreamId
	}
	sp.sub = downstream.OutDataEvent().Subscribe(sp.handleInbound)
	return sp
}

// NewStreamEvent fires (id StreamId, s Stream) when the peer sends
// data for an id this side had not yet registered; the splitter
// auto-registers it before firing.
func (sp *Splitter) NewStreamEvent() *event.Event { return &sp.newStream }

// OpenStream allocates the next id in this side's half of the id
// space and registers it.
func (sp *Splitter) OpenStream() Stream {
	id := sp.nextId
	sp.nextId += streamIdStep
	return sp.RegisterStream(id)
}

// RegisterStream returns the logical stream for id, creating it if
// this is the first reference to it.
func (sp *Splitter) RegisterStream(id StreamId) Stream {
	if ls, ok := sp.streams[id]; ok {
		return ls
	}
	ls := &logicalStream{id: id, splitter: sp}
	sp.streams[id] = ls
	return ls
}

// CloseStream unregisters id: subsequent writes with that id are
// rejected, and the next inbound message for it fires NewStreamEvent
// again instead of being routed to the old handle.
func (sp *Splitter) CloseStream(id StreamId) {
	delete(sp.streams, id)
}

// Close tears down the subscription to the underlying stream.
func (sp *Splitter) Close() {
	sp.sub.Unsubscribe()
}

func (sp *Splitter) handleInbound(args ...interface{}) {
	data, _ := args[0].([]byte)
	id, payload, err := decodeStreamFrame(data)
	if err != nil {
		return
	}
	ls, ok := sp.streams[id]
	if !ok {
		ls = &logicalStream{id: id, splitter: sp}
		sp.streams[id] = ls
		sp.newStream.Emit(id, Stream(ls))
	}
	ls.outEvt.Emit(payload)
}

// logicalStream is one multiplexed stream's view onto the splitter's
// shared downstream: writes are framed with its id and handed to the
// splitter's downstream directly; reads come from the splitter's
// demultiplexing.
type logicalStream struct {
	id        StreamId
	splitter  *Splitter
	outEvt    event.Event
	updateEvt event.Cumulative
}

// Write rejects the write with ErrStreamClosed once CloseStream (or a
// fresh registration replacing this handle) has dropped s from the
// splitter's table, per spec.md §4.D: "subsequent writes with that id
// are rejected."
func (s *logicalStream) Write(data []byte) WriteAction {
	if s.splitter.streams[s.id] != s {
		ptr := s.splitter.tracker.Begin()
		s.splitter.tracker.Fail(ptr, ErrStreamClosed)
		return ptr
	}
	return s.splitter.downstream.Write(encodeStreamFrame(s.id, data))
}

func (s *logicalStream) OutDataEvent() *event.Event { return &s.outEvt }

func (s *logicalStream) StreamUpdateEvent() *event.Cumulative { return &s.updateEvt }

func (s *logicalStream) Info() StreamInfo {
	info := s.splitter.downstream.Info()
	framingOverhead := 1 + wire.PackedSizeLen(uint32(info.MaxElementSize))
	info.MaxElementSize -= framingOverhead
	if info.MaxElementSize < 0 {
		info.MaxElementSize = 0
	}
	return info
}

// LinkOut/Unlink are no-ops: a logical stream's only downstream is the
// splitter's shared one, fixed at registration.
func (s *logicalStream) LinkOut(Stream) {}
func (s *logicalStream) Unlink()        {}
