package safestream

import (
	"github.com/aethernetio/aether-go/wire"
)

// msgCode identifies one of the six Safe Stream wire messages of
// spec.md §4.E.2. This is a dedicated sub-API's own id space, separate
// from wire.MessageId's ReturnResultApi reservations — Safe Stream
// frames travel pre-parsed, directly over the downstream byte Stream,
// not through a shared ProtocolContext's packet.
type msgCode uint8

const (
	codeInit msgCode = iota
	codeInitAck
	codeSend
	codeRepeat
	codeConfirm
	codeRequestRepeat
)

// InitParams is the {offset, window_size, max_packet_size} triple
// carried by Init and InitAck.
type InitParams struct {
	Offset        RingIndex
	WindowSize    uint32
	MaxPacketSize uint32
}

// Init announces a new session starting at Params.Offset.
type Init struct {
	RequestId   wire.RequestId
	RepeatCount int
	Params      InitParams
}

// InitAck acknowledges a session, possibly renegotiating params down.
type InitAck struct {
	RequestId wire.RequestId
	Params    InitParams
}

// Send carries fresh data starting at Offset.
type Send struct {
	Offset RingIndex
	Data   []byte
}

// Repeat carries a retransmission of data starting at Offset.
type Repeat struct {
	RepeatCount int
	Offset      RingIndex
	Data        []byte
}

// Confirm is a cumulative ack: all bytes <= Offset were delivered.
type Confirm struct {
	Offset RingIndex
}

// RequestRepeat asks the sender to retransmit starting at the
// earliest missing offset.
type RequestRepeat struct {
	Offset RingIndex
}

func encodeInitParams(w *wire.Writer, p InitParams) {
	w.WriteU32(uint32(p.Offset))
	w.WriteU32(p.WindowSize)
	w.WriteU32(p.MaxPacketSize)
}

func decodeInitParams(r *wire.Reader) (InitParams, error) {
	var p InitParams
	off, err := r.ReadU32()
	if err != nil {
		return p, err
	}
	win, err := r.ReadU32()
	if err != nil {
		return p, err
	}
	maxPkt, err := r.ReadU32()
	if err != nil {
		return p, err
	}
	return InitParams{Offset: RingIndex(off), WindowSize: win, MaxPacketSize: maxPkt}, nil
}

// Encode appends m's wire form to a fresh buffer.
func (m Init) Encode() []byte {
	w := wire.NewWriter()
	w.WriteU8(uint8(codeInit))
	w.WriteU16(uint16(m.RequestId))
	w.WriteU32(uint32(m.RepeatCount))
	encodeInitParams(w, m.Params)
	return w.Bytes()
}

func (m InitAck) Encode() []byte {
	w := wire.NewWriter()
	w.WriteU8(uint8(codeInitAck))
	w.WriteU16(uint16(m.RequestId))
	encodeInitParams(w, m.Params)
	return w.Bytes()
}

func (m Send) Encode() []byte {
	w := wire.NewWriter()
	w.WriteU8(uint8(codeSend))
	w.WriteU32(uint32(m.Offset))
	w.WriteBytes(m.Data)
	return w.Bytes()
}

func (m Repeat) Encode() []byte {
	w := wire.NewWriter()
	w.WriteU8(uint8(codeRepeat))
	w.WriteU32(uint32(m.RepeatCount))
	w.WriteU32(uint32(m.Offset))
	w.WriteBytes(m.Data)
	return w.Bytes()
}

func (m Confirm) Encode() []byte {
	w := wire.NewWriter()
	w.WriteU8(uint8(codeConfirm))
	w.WriteU32(uint32(m.Offset))
	return w.Bytes()
}

func (m RequestRepeat) Encode() []byte {
	w := wire.NewWriter()
	w.WriteU8(uint8(codeRequestRepeat))
	w.WriteU32(uint32(m.Offset))
	return w.Bytes()
}

// DecodeMessage decodes one Safe Stream frame, returning one of
// Init, InitAck, Send, Repeat, Confirm or RequestRepeat as interface{}.
func DecodeMessage(buf []byte) (interface{}, error) {
	r := wire.NewReader(buf)
	code, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	switch msgCode(code) {
	case codeInit:
		rid, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		rc, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		params, err := decodeInitParams(r)
		if err != nil {
			return nil, err
		}
		return Init{RequestId: wire.RequestId(rid), RepeatCount: int(rc), Params: params}, nil

	case codeInitAck:
		rid, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		params, err := decodeInitParams(r)
		if err != nil {
			return nil, err
		}
		return InitAck{RequestId: wire.RequestId(rid), Params: params}, nil

	case codeSend:
		off, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		data, err := r.ReadBytes()
		if err != nil {
			return nil, err
		}
		return Send{Offset: RingIndex(off), Data: append([]byte(nil), data...)}, nil

	case codeRepeat:
		rc, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		off, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		data, err := r.ReadBytes()
		if err != nil {
			return nil, err
		}
		return Repeat{RepeatCount: int(rc), Offset: RingIndex(off), Data: append([]byte(nil), data...)}, nil

	case codeConfirm:
		off, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		return Confirm{Offset: RingIndex(off)}, nil

	case codeRequestRepeat:
		off, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		return RequestRepeat{Offset: RingIndex(off)}, nil

	default:
		return nil, wire.ErrParseUnknownID
	}
}
