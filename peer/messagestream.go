package peer

import (
	"errors"

	"github.com/aethernetio/aether-go/event"
	"github.com/aethernetio/aether-go/streams"
)

// ErrSendMessageFailed is returned by a MessageStream write's terminal
// Error event when the server's send_message response is SendError.
var ErrSendMessageFailed = errors.New("peer: send_message failed")

// MessageStream is one peer uid's view of the client→server
// connection: Write wraps the payload in AuthorizedApi.send_message,
// and OutDataEvent fires with whatever the dispatcher routes to this
// uid. Grounded on client_messages/message_stream.cpp/.h.
type MessageStream struct {
	uid     Uid
	api     *AuthorizedApi
	tracker *streams.WriteTracker

	outEvt    event.Event
	updateEvt event.Cumulative
}

func newMessageStream(uid Uid, api *AuthorizedApi, tracker *streams.WriteTracker) *MessageStream {
	return &MessageStream{uid: uid, api: api, tracker: tracker}
}

// Write implements streams.Stream.
func (m *MessageStream) Write(data []byte) streams.WriteAction {
	ptr := m.tracker.Begin()
	m.api.SendMessage(m.uid, data, func(ok bool, _ []byte) {
		if ok {
			m.tracker.Resolve(ptr, len(data))
		} else {
			m.tracker.Fail(ptr, ErrSendMessageFailed)
		}
	})
	return ptr
}

// OutDataEvent fires once per inbound payload the dispatcher routes
// to this uid.
func (m *MessageStream) OutDataEvent() *event.Event { return &m.outEvt }

// StreamUpdateEvent fires whenever Info() may have changed. A message
// stream's capacity tracks its underlying connection, which this type
// doesn't observe directly, so it never fires on its own.
func (m *MessageStream) StreamUpdateEvent() *event.Cumulative { return &m.updateEvt }

// Info reports a reliable, always-up logical channel: delivery and
// ordering are guaranteed by the Safe Stream session underneath the
// client→server connection, not by this type.
func (m *MessageStream) Info() streams.StreamInfo {
	return streams.StreamInfo{IsReliable: true, Link: streams.LinkUp}
}

// LinkOut/Unlink are no-ops: a message stream's only downstream is the
// shared client→server connection, fixed at construction.
func (m *MessageStream) LinkOut(streams.Stream) {}
func (m *MessageStream) Unlink()                {}
