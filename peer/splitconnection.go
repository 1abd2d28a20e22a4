package peer

import (
	"github.com/aethernetio/aether-go/action"
	"github.com/aethernetio/aether-go/event"
	"github.com/aethernetio/aether-go/streams"
)

// SplitStreamConnection is the P2P split-stream layer of spec.md §4.G:
// for each peer uid it owns a streams.Splitter layered over that uid's
// MessageStream, so several independent logical streams can be opened
// toward the same peer over the one underlying connection.
//
// Grounded on client_connections/split_stream_client_connection.cpp/.h.
type SplitStreamConnection struct {
	proc       *action.Processor
	dispatcher *MessageStreamDispatcher
	splitters  map[Uid]*streams.Splitter

	newStreamEvt event.Event
}

// NewSplitStreamConnection builds a connection over dispatcher's
// per-uid message streams. proc backs each uid's Splitter.
func NewSplitStreamConnection(proc *action.Processor, dispatcher *MessageStreamDispatcher) *SplitStreamConnection {
	c := &SplitStreamConnection{
		proc:       proc,
		dispatcher: dispatcher,
		splitters:  make(map[Uid]*streams.Splitter),
	}
	dispatcher.NewStreamEvent().Subscribe(func(args ...interface{}) {
		uid, _ := args[0].(Uid)
		c.splitterFor(uid)
	})
	return c
}

func (c *SplitStreamConnection) splitterFor(uid Uid) *streams.Splitter {
	if sp, ok := c.splitters[uid]; ok {
		return sp
	}
	sp := streams.NewSplitter(c.proc, c.dispatcher.StreamFor(uid), true)
	sp.NewStreamEvent().Subscribe(func(args ...interface{}) {
		id, _ := args[0].(streams.StreamId)
		s, _ := args[1].(streams.Stream)
		c.newStreamEvt.Emit(uid, StreamId(id), s)
	})
	c.splitters[uid] = sp
	return sp
}

// CreateStream registers id as a logical stream toward uid, creating
// that uid's splitter (and underlying message stream) if this is the
// first stream opened with it.
func (c *SplitStreamConnection) CreateStream(uid Uid, id StreamId) streams.Stream {
	return c.splitterFor(uid).RegisterStream(streams.StreamId(id))
}

// NewStreamEvent fires (uid Uid, id StreamId, s streams.Stream) when a
// peer opens a stream this side had not yet registered.
func (c *SplitStreamConnection) NewStreamEvent() *event.Event { return &c.newStreamEvt }
