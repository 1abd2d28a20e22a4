package peer

import (
	"github.com/aethernetio/aether-go/action"
	"github.com/aethernetio/aether-go/event"
	"github.com/aethernetio/aether-go/streams"
	"github.com/aethernetio/aether-go/wire"
)

// MessageStreamDispatcher holds the uid → MessageStream table of
// spec.md §4.G: outbound writes look up or create a stream and send
// via AuthorizedApi.send_message; inbound ClientSafeApi traffic is
// routed by uid, creating a stream and firing NewStreamEvent the
// first time a uid is seen.
//
// Grounded on client_messages/message_stream_dispatcher.cpp/.h.
type MessageStreamDispatcher struct {
	api     *AuthorizedApi
	tracker *streams.WriteTracker

	byUid        map[Uid]*MessageStream
	newStreamEvt event.Event
}

// NewMessageStreamDispatcher creates a dispatcher and registers its
// inbound handlers on inboundClass. Call Bind once the
// ClientToServerStream's AuthorizedApi exists — constructing the
// ApiClass has to precede the AuthorizedApi, which has to precede the
// dispatcher's ability to issue outbound sends, so the two steps are
// split to break that ordering cycle.
func NewMessageStreamDispatcher(proc *action.Processor, inboundClass *wire.ApiClass) *MessageStreamDispatcher {
	d := &MessageStreamDispatcher{
		tracker: streams.NewWriteTracker(proc),
		byUid:   make(map[Uid]*MessageStream),
	}
	inboundClass.On(msgInboundSendMessage, d.handleSendMessage)
	inboundClass.On(msgStreamToClient, d.handleStreamToClient)
	return d
}

// Bind attaches the AuthorizedApi outbound MessageStreams call
// through.
func (d *MessageStreamDispatcher) Bind(api *AuthorizedApi) { d.api = api }

// StreamFor returns uid's message stream, creating it if this is the
// first reference.
func (d *MessageStreamDispatcher) StreamFor(uid Uid) *MessageStream {
	if ms, ok := d.byUid[uid]; ok {
		return ms
	}
	ms := newMessageStream(uid, d.api, d.tracker)
	d.byUid[uid] = ms
	return ms
}

// NewStreamEvent fires (uid Uid, s *MessageStream) the first time
// inbound traffic arrives for a uid this side had not yet referenced.
func (d *MessageStreamDispatcher) NewStreamEvent() *event.Event { return &d.newStreamEvt }

func (d *MessageStreamDispatcher) routeInbound(uid Uid, payload []byte) {
	ms, existed := d.byUid[uid]
	if !existed {
		ms = newMessageStream(uid, d.api, d.tracker)
		d.byUid[uid] = ms
		d.newStreamEvt.Emit(uid, ms)
	}
	ms.outEvt.Emit(payload)
}

func (d *MessageStreamDispatcher) handleSendMessage(_ wire.RequestId, r *wire.Reader) error {
	uidRaw, err := r.ReadU32()
	if err != nil {
		return err
	}
	data, err := r.ReadBytes()
	if err != nil {
		return err
	}
	d.routeInbound(Uid(uidRaw), append([]byte(nil), data...))
	return nil
}

// handleStreamToClient re-frames (stream_id, payload) in the same
// id-prefixed shape streams.Splitter's wire format uses
// (streams/splitter.go: encodeStreamFrame), so a SplitStreamConnection
// layering its own Splitter over this uid's MessageStream can
// decode it without this package needing to export that framing.
func (d *MessageStreamDispatcher) handleStreamToClient(_ wire.RequestId, r *wire.Reader) error {
	uidRaw, err := r.ReadU32()
	if err != nil {
		return err
	}
	streamId, err := r.ReadU8()
	if err != nil {
		return err
	}
	payload, err := r.ReadBytes()
	if err != nil {
		return err
	}
	framed := wire.NewWriter()
	framed.WriteU8(streamId)
	framed.WriteBytes(payload)
	d.routeInbound(Uid(uidRaw), framed.Bytes())
	return nil
}
