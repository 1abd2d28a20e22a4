package peer

import (
	"github.com/aethernetio/aether-go/event"
	"github.com/aethernetio/aether-go/streams"
	"github.com/aethernetio/aether-go/wire"
)

// loopStream is a minimal synchronous in-memory transport double,
// matching the one in safestream_test.go: every Write is delivered
// immediately to a linked peer's OutDataEvent.
type loopStream struct {
	peer      *loopStream
	outEvt    event.Event
	updateEvt event.Cumulative
}

func linkLoops(a, b *loopStream) { a.peer = b; b.peer = a }

func (l *loopStream) Write(data []byte) streams.WriteAction {
	if l.peer != nil {
		cp := append([]byte(nil), data...)
		l.peer.outEvt.Emit(cp)
	}
	var zero streams.WriteAction
	return zero
}

func (l *loopStream) OutDataEvent() *event.Event           { return &l.outEvt }
func (l *loopStream) StreamUpdateEvent() *event.Cumulative { return &l.updateEvt }
func (l *loopStream) Info() streams.StreamInfo {
	return streams.StreamInfo{IsReliable: true, MaxElementSize: 1 << 20, RecElementSize: 1 << 20, Link: streams.LinkUp}
}
func (l *loopStream) LinkOut(streams.Stream) {}
func (l *loopStream) Unlink()                {}

// fakeServer stands in for the work server side of a client→server
// connection: it expects a LoginByUid/LoginByAlias-wrapped first
// packet (which it ignores beyond unwrapping), then parses every
// subsequent AuthorizedApi packet against class, replying with its
// own responses wrapped in a ClientRootApi SendSafeApiData envelope so
// the client's LoginFramer can unwrap them.
type fakeServer struct {
	transport *loopStream
	pc        *wire.ProtocolContext
	parser    *wire.ApiParser
	class     *wire.ApiClass
	uid       Uid
	loggedIn  bool
}

func newFakeServer(transport *loopStream, uid Uid) *fakeServer {
	class := wire.NewApiClass("fakeAuthorizedApi")
	pc := wire.NewProtocolContext()
	s := &fakeServer{transport: transport, pc: pc, parser: wire.NewApiParser(pc, class), class: class, uid: uid}
	transport.OutDataEvent().Subscribe(func(args ...interface{}) {
		data, _ := args[0].([]byte)
		s.handleInbound(data)
	})
	return s
}

func (s *fakeServer) on(id wire.MessageId, h wire.HandlerFunc) { s.class.On(id, h) }

func (s *fakeServer) handleInbound(data []byte) {
	if !s.loggedIn {
		s.loggedIn = true
		envs, err := wire.DecodePacket(data)
		if err != nil || len(envs) == 0 {
			return
		}
		body := wire.NewReader(envs[0].Body)
		if envs[0].Id == msgLoginByUid {
			if _, err := body.ReadU32(); err != nil {
				return
			}
		} else {
			if _, err := body.ReadString(); err != nil {
				return
			}
		}
		payload, err := body.ReadBytes()
		if err != nil {
			return
		}
		if len(payload) > 0 {
			_ = s.parser.ParsePacket(payload)
		}
		s.flush()
		return
	}
	_ = s.parser.ParsePacket(data)
	s.flush()
}

// flush wraps whatever the ProtocolContext built this round in a
// ClientRootApi SendSafeApiData envelope and writes it downstream, if
// there's anything to send.
func (s *fakeServer) flush() {
	pkt := s.pc.Flush()
	if len(pkt) == 0 {
		return
	}
	w := wire.NewWriter()
	encodeSendSafeApiData(s.uid, pkt).Encode(w)
	s.transport.Write(w.Bytes())
}
