package wire

import "errors"

// ErrUnknownRequestId is returned when a SendResult/SendError response
// arrives for a RequestId no pending call is waiting on (already
// resolved, or never issued on this context).
var ErrUnknownRequestId = errors.New("wire: response for unknown request id")

// Resolver is invoked once, when the response for the RequestId it was
// registered against arrives: ok selects SendResult vs SendError, and
// body is that message's raw payload (undecoded — the caller knows the
// expected shape).
type Resolver func(ok bool, body []byte)

// ProtocolContext is the per-connection object described in spec.md
// §4.C: it owns request-id allocation and the pending-response table,
// a stack of packet builders so nested sub-API calls append to the
// right outer packet, and the built-in ReturnResultApi plumbing.
//
// Grounded on client2/connection.go's single-owner, single-goroutine
// request/response bookkeeping, generalized from its PKI-specific
// shape to the generic codec described by the spec.
type ProtocolContext struct {
	ids     *RequestIdAllocator
	pending map[RequestId]Resolver

	builders []*Writer
	frames   []openFrame
}

type openFrame struct {
	id       MessageId
	argsBody []byte
}

// NewProtocolContext creates a context with an empty outgoing packet.
func NewProtocolContext() *ProtocolContext {
	pc := &ProtocolContext{
		ids:     NewRequestIdAllocator(),
		pending: make(map[RequestId]Resolver),
	}
	pc.builders = []*Writer{NewWriter()}
	return pc
}

// currentWriter is the packet builder calls append to: the innermost
// open sub-API frame's nested packet, or the outgoing packet itself.
func (pc *ProtocolContext) currentWriter() *Writer {
	return pc.builders[len(pc.builders)-1]
}

// WriteOneWay appends a fire-and-forget message: id, no request id,
// and a body built by fn, each framed as one Envelope.
func (pc *ProtocolContext) WriteOneWay(id MessageId, fn func(*Writer)) {
	body := NewWriter()
	if fn != nil {
		fn(body)
	}
	Envelope{Id: id, RequestId: NoRequestId, Body: body.Bytes()}.Encode(pc.currentWriter())
}

// BeginRequest allocates a RequestId, writes id/request-id/args as one
// Envelope, and registers resolve to be invoked when the matching
// SendResult or SendError arrives.
func (pc *ProtocolContext) BeginRequest(id MessageId, fn func(*Writer), resolve Resolver) RequestId {
	rid := pc.ids.Alloc()
	body := NewWriter()
	if fn != nil {
		fn(body)
	}
	Envelope{Id: id, RequestId: rid, Body: body.Bytes()}.Encode(pc.currentWriter())
	pc.pending[rid] = resolve
	return rid
}

// BeginSubApi buffers id's leading args (written by fn) and opens a
// fresh frame: subsequent writes, until EndSubApi, land in the
// sub-API's own nested packet instead of the parent's.
func (pc *ProtocolContext) BeginSubApi(id MessageId, fn func(*Writer)) {
	args := NewWriter()
	if fn != nil {
		fn(args)
	}
	pc.frames = append(pc.frames, openFrame{id: id, argsBody: args.Bytes()})
	pc.builders = append(pc.builders, NewWriter())
}

// EndSubApi closes the most recently opened sub-API frame and emits it
// into its parent as message_id ∥ args ∥ nested_packet, per spec.md
// §4.C's sub-API wire shape.
func (pc *ProtocolContext) EndSubApi() {
	n := len(pc.frames)
	if n == 0 {
		panic("wire: EndSubApi with no open sub-API")
	}
	frame := pc.frames[n-1]
	pc.frames = pc.frames[:n-1]

	nested := pc.builders[len(pc.builders)-1]
	pc.builders = pc.builders[:len(pc.builders)-1]

	body := NewWriter()
	body.WriteRaw(frame.argsBody)
	body.WriteBytes(nested.Bytes())
	Envelope{Id: frame.id, RequestId: NoRequestId, Body: body.Bytes()}.Encode(pc.currentWriter())
}

// Flush returns the accumulated outgoing packet bytes and resets the
// builder stack to a single empty frame. Panics if a sub-API frame was
// left open.
func (pc *ProtocolContext) Flush() []byte {
	if len(pc.builders) != 1 {
		panic("wire: Flush with open sub-API frame")
	}
	out := pc.builders[0].Bytes()
	pc.builders[0] = NewWriter()
	return out
}

// Resolve delivers a SendResult/SendError body to the pending resolver
// for id, if any, then forgets id. Returns ErrUnknownRequestId if no
// call is waiting on it (duplicate or stale response).
func (pc *ProtocolContext) Resolve(id RequestId, ok bool, body []byte) error {
	r, found := pc.pending[id]
	if !found {
		return ErrUnknownRequestId
	}
	delete(pc.pending, id)
	pc.ids.Release(id)
	r(ok, body)
	return nil
}

// PendingCount reports how many requests are awaiting a response.
func (pc *ProtocolContext) PendingCount() int { return len(pc.pending) }

// SendResult writes the built-in ReturnResultApi SendResult message
// (code 0) for requestId, carrying body as its payload.
func (pc *ProtocolContext) SendResult(requestId RequestId, body []byte) {
	pc.WriteOneWay(MessageIdSendResult, func(w *Writer) {
		w.WriteU16(uint16(requestId))
		w.WriteBytes(body)
	})
}

// ErrorKind classifies a SendError response.
type ErrorKind uint8

// SendError writes the built-in ReturnResultApi SendError message
// (code 1) for requestId.
func (pc *ProtocolContext) SendError(requestId RequestId, kind ErrorKind, code uint32) {
	pc.WriteOneWay(MessageIdSendError, func(w *Writer) {
		w.WriteU16(uint16(requestId))
		w.WriteU8(uint8(kind))
		w.WriteU32(code)
	})
}
