package peer

import (
	"github.com/aethernetio/aether-go/action"
	"github.com/aethernetio/aether-go/event"
	"github.com/aethernetio/aether-go/streams"
	"github.com/aethernetio/aether-go/wire"
)

// AuthorizedApi is the request/response surface a logged-in client
// calls on its server, per spec.md §4.G.
type AuthorizedApi struct {
	stream streams.Stream
	pc     *wire.ProtocolContext
	parser *wire.ApiParser
	sub    event.Subscription
}

// NewAuthorizedApi wraps stream (already carrying login + crypto
// gates) with a ProtocolContext, dispatching inbound packets against
// inboundClass — the ClientSafeApi handler table a
// MessageStreamDispatcher installs.
func NewAuthorizedApi(stream streams.Stream, inboundClass *wire.ApiClass) *AuthorizedApi {
	pc := wire.NewProtocolContext()
	a := &AuthorizedApi{stream: stream, pc: pc, parser: wire.NewApiParser(pc, inboundClass)}
	a.sub = stream.OutDataEvent().Subscribe(func(args ...interface{}) {
		data, _ := args[0].([]byte)
		_ = a.parser.ParsePacket(data)
	})
	return a
}

func (a *AuthorizedApi) flush() {
	a.stream.Write(a.pc.Flush())
}

// Ping issues the authorized ping request; resolve(ok) reports whether
// a pong arrived.
func (a *AuthorizedApi) Ping(resolve func(ok bool)) {
	a.pc.BeginRequest(msgPing, nil, func(ok bool, _ []byte) { resolve(ok) })
	a.flush()
}

// SendMessage asks the server to route data to uid.
func (a *AuthorizedApi) SendMessage(uid Uid, data []byte, resolve func(ok bool, body []byte)) {
	a.pc.BeginRequest(msgSendMessage, func(w *wire.Writer) {
		w.WriteU32(uint32(uid))
		w.WriteBytes(data)
	}, resolve)
	a.flush()
}

// Resolvers asks the server to resolve each of uids (DNS-like lookup
// for peer presence/routing); see spec.md §4.G.
func (a *AuthorizedApi) Resolvers(uids []Uid, resolve func(ok bool, body []byte)) {
	a.pc.BeginRequest(msgResolvers, func(w *wire.Writer) {
		w.WriteVarint(uint32(len(uids)))
		for _, u := range uids {
			w.WriteU32(uint32(u))
		}
	}, resolve)
	a.flush()
}

// CheckAccessForSendMessage asks the server whether this client may
// message uid before attempting SendMessage.
func (a *AuthorizedApi) CheckAccessForSendMessage(uid Uid, resolve func(allowed bool, err error)) {
	a.pc.BeginRequest(msgCheckAccessForSendMessage, func(w *wire.Writer) {
		w.WriteU32(uint32(uid))
	}, func(ok bool, body []byte) {
		if !ok {
			resolve(false, ErrAccessDenied)
			return
		}
		r := wire.NewReader(body)
		allowed, err := r.ReadU8()
		if err != nil {
			resolve(false, err)
			return
		}
		resolve(allowed != 0, nil)
	})
	a.flush()
}

// ClientToServerStream composes the full client→server pipeline of
// spec.md §4.G — `Tie(login_framer, crypto_gate,
// datagram_splitter_gate, datagram_transport)` — and exposes the
// AuthorizedApi built on top of it. Grounded on
// client_connections/client_to_server_stream.cpp/.h.
//
// The datagram_splitter_gate named in spec.md fragments traffic
// exceeding the transport's negotiated max_element_size across
// several datagrams; this port's transport (quicdatagram, §4.G's
// companion) reports a fixed 1100-byte maximum datagram payload and no
// such gate is wired here, so writes are never fragmented. A
// future WriteInGate/OverheadGate implementing that fragmentation
// could be inserted into the Tie below without touching anything
// else.
type ClientToServerStream struct {
	transport streams.Stream
	gate      streams.Stream
	Api       *AuthorizedApi
}

// NewClientToServerStream builds the pipeline over transport,
// authenticating via login and encrypting via crypto, and dispatching
// inbound ClientSafeApi traffic against inboundClass.
func NewClientToServerStream(proc *action.Processor, transport streams.Stream, login *LoginFramer, crypto streams.Gate, inboundClass *wire.ApiClass) *ClientToServerStream {
	gate := streams.NewGateStream(proc, transport, login, crypto)
	return &ClientToServerStream{
		transport: transport,
		gate:      gate,
		Api:       NewAuthorizedApi(gate, inboundClass),
	}
}
