// Package wire implements the API codec described in spec.md §4.C/§6:
// a packet is a concatenation of messages, each message_id: u8 followed
// by a body whose variable-length fields are prefixed by a packed-size
// varint. All multi-byte integers are little-endian.
//
// Grounded on aether/api_protocol/api_method.h and api_class_impl.h
// (reflection-driven member packing in the original), reimplemented per
// the redesign guidance in spec.md §9 as explicit Encode/Decode methods
// per message type instead of runtime reflection.
package wire

import "errors"

// ErrTruncated is returned when a Reader runs out of bytes mid-field.
var ErrTruncated = errors.New("wire: truncated message")

// ErrVarintTooLarge is returned when a PackedSize varint doesn't fit
// the 1/2/4-byte encoding (length > 0x3fffffff).
var ErrVarintTooLarge = errors.New("wire: packed size too large")

// PutPackedSize appends n's PackedSize varint encoding to buf:
//   - 1 byte for 0..127            (top bit clear)
//   - 2 bytes for 128..16383       (top two bits 10)
//   - 4 bytes for 16384..0x3fffffff (top two bits 11)
//
// This is the "implementation-defined but consistent" varint spec.md §6
// calls PackedSize; one byte layout is picked here and used everywhere.
func PutPackedSize(buf []byte, n uint32) []byte {
	switch {
	case n <= 0x7f:
		return append(buf, byte(n))
	case n <= 0x3fff:
		return append(buf,
			byte(0x80|(n&0x3f)),
			byte(n>>6),
		)
	case n <= 0x3fffffff:
		return append(buf,
			byte(0xc0|(n&0x3f)),
			byte(n>>6),
			byte(n>>14),
			byte(n>>22),
		)
	default:
		panic(ErrVarintTooLarge)
	}
}

// PackedSizeLen reports how many bytes PutPackedSize(nil, n) would
// produce, without allocating.
func PackedSizeLen(n uint32) int {
	switch {
	case n <= 0x7f:
		return 1
	case n <= 0x3fff:
		return 2
	case n <= 0x3fffffff:
		return 4
	default:
		panic(ErrVarintTooLarge)
	}
}

// GetPackedSize decodes a PackedSize varint from the front of buf,
// returning the value and the number of bytes consumed.
func GetPackedSize(buf []byte) (uint32, int, error) {
	if len(buf) == 0 {
		return 0, 0, ErrTruncated
	}
	b0 := buf[0]
	switch b0 >> 6 {
	case 0, 1: // top bit clear: 1 byte, 0..127
		return uint32(b0 & 0x7f), 1, nil
	case 2: // top bits 10: 2 bytes
		if len(buf) < 2 {
			return 0, 0, ErrTruncated
		}
		return uint32(b0&0x3f) | uint32(buf[1])<<6, 2, nil
	default: // top bits 11: 4 bytes
		if len(buf) < 4 {
			return 0, 0, ErrTruncated
		}
		v := uint32(b0&0x3f) | uint32(buf[1])<<6 | uint32(buf[2])<<14 | uint32(buf[3])<<22
		return v, 4, nil
	}
}
