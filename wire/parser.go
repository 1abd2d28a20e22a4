package wire

import (
	"errors"
	"fmt"
)

// ErrParseUnknownID is returned when a message arrives whose id
// matches no handler in the declared class or any of its ExtApi
// extensions.
//
// The original implementation asserts (aborts the process) on this
// condition; spec.md §9 leaves the Go behavior as an open question.
// Resolved here (see DESIGN.md) as a returned error: a malformed or
// version-skewed peer should desync that one packet's parse, not take
// down the session.
var ErrParseUnknownID = errors.New("wire: unknown message id")

// ParseError wraps ErrParseUnknownID (or a handler's own error) with
// the offending id and class name for diagnostics.
type ParseError struct {
	Class string
	Id    MessageId
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("wire: parsing %s message %d: %v", e.Class, e.Id, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ApiParser consumes packets against a declared ApiClass, routing the
// built-in SendResult/SendError messages to the owning ProtocolContext
// before falling through to the class's own handlers.
type ApiParser struct {
	pc    *ProtocolContext
	class *ApiClass
}

// NewApiParser creates a parser bound to pc's pending-response table
// and class's handler set.
func NewApiParser(pc *ProtocolContext, class *ApiClass) *ApiParser {
	return &ApiParser{pc: pc, class: class}
}

// ParsePacket splits buf into messages and dispatches each in order,
// stopping at the first error.
func (p *ApiParser) ParsePacket(buf []byte) error {
	envs, err := DecodePacket(buf)
	if err != nil {
		return err
	}
	for _, e := range envs {
		if err := p.dispatch(e); err != nil {
			return err
		}
	}
	return nil
}

func (p *ApiParser) dispatch(e Envelope) error {
	switch e.Id {
	case MessageIdSendResult:
		r := NewReader(e.Body)
		rid, err := r.ReadU16()
		if err != nil {
			return &ParseError{Class: "ReturnResultApi", Id: e.Id, Err: err}
		}
		body, err := r.ReadBytes()
		if err != nil {
			return &ParseError{Class: "ReturnResultApi", Id: e.Id, Err: err}
		}
		if err := p.pc.Resolve(RequestId(rid), true, body); err != nil {
			return &ParseError{Class: "ReturnResultApi", Id: e.Id, Err: err}
		}
		return nil

	case MessageIdSendError:
		r := NewReader(e.Body)
		rid, err := r.ReadU16()
		if err != nil {
			return &ParseError{Class: "ReturnResultApi", Id: e.Id, Err: err}
		}
		rest := append([]byte(nil), r.RemainingBytes()...)
		if err := p.pc.Resolve(RequestId(rid), false, rest); err != nil {
			return &ParseError{Class: "ReturnResultApi", Id: e.Id, Err: err}
		}
		return nil

	default:
		r := NewReader(e.Body)
		matched, err := p.class.dispatch(e.Id, e.RequestId, r)
		if err != nil {
			return &ParseError{Class: p.class.name, Id: e.Id, Err: err}
		}
		if !matched {
			return &ParseError{Class: p.class.name, Id: e.Id, Err: ErrParseUnknownID}
		}
		return nil
	}
}
