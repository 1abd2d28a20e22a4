package wire

import (
	"encoding/binary"
)

// Writer accumulates one message body (or a whole packet) as bytes,
// little-endian per spec.md §6.
type Writer struct {
	buf []byte
}

// NewWriter creates an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte { return w.buf }

// Len reports the current buffer length.
func (w *Writer) Len() int { return len(w.buf) }

// WriteU8 appends a single byte.
func (w *Writer) WriteU8(v uint8) { w.buf = append(w.buf, v) }

// WriteRaw appends b verbatim, with no length prefix. Used to splice
// an already-framed buffer (e.g. another Writer's Bytes()) in place.
func (w *Writer) WriteRaw(b []byte) { w.buf = append(w.buf, b...) }

// WriteU16 appends a little-endian uint16.
func (w *Writer) WriteU16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteU32 appends a little-endian uint32.
func (w *Writer) WriteU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteU64 appends a little-endian uint64.
func (w *Writer) WriteU64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteVarint appends a PackedSize varint.
func (w *Writer) WriteVarint(v uint32) {
	w.buf = PutPackedSize(w.buf, v)
}

// WriteBytes appends a varint-prefixed byte slice.
func (w *Writer) WriteBytes(b []byte) {
	w.WriteVarint(uint32(len(b)))
	w.buf = append(w.buf, b...)
}

// WriteString appends a varint-prefixed UTF-8 string.
func (w *Writer) WriteString(s string) {
	w.WriteBytes([]byte(s))
}

// WriteNested runs fn against a fresh sub-Writer and appends the
// result with its varint length prefix, implementing spec.md §6's `nested := length: varint
// packet` rule for sub-API packets.
func (w *Writer) WriteNested(fn func(*Writer)) {
	sub := NewWriter()
	fn(sub)
	w.WriteBytes(sub.Bytes())
}

// Reader consumes a byte buffer field by field, in the same order a
// Writer produced them.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps buf for reading.
func NewReader(buf []byte) *Reader { return &Reader{buf: buf} }

// Remaining reports how many bytes are left unread.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

// RemainingBytes returns a view of the unread tail, without advancing.
func (r *Reader) RemainingBytes() []byte { return r.buf[r.pos:] }

// Skip advances past n unread bytes without interpreting them.
func (r *Reader) Skip(n int) error {
	if r.Remaining() < n {
		return ErrTruncated
	}
	r.pos += n
	return nil
}

// ReadU8 reads one byte.
func (r *Reader) ReadU8() (uint8, error) {
	if r.Remaining() < 1 {
		return 0, ErrTruncated
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

// ReadU16 reads a little-endian uint16.
func (r *Reader) ReadU16() (uint16, error) {
	if r.Remaining() < 2 {
		return 0, ErrTruncated
	}
	v := binary.LittleEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

// ReadU32 reads a little-endian uint32.
func (r *Reader) ReadU32() (uint32, error) {
	if r.Remaining() < 4 {
		return 0, ErrTruncated
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

// ReadU64 reads a little-endian uint64.
func (r *Reader) ReadU64() (uint64, error) {
	if r.Remaining() < 8 {
		return 0, ErrTruncated
	}
	v := binary.LittleEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v, nil
}

// ReadVarint reads a PackedSize varint.
func (r *Reader) ReadVarint() (uint32, error) {
	v, n, err := GetPackedSize(r.buf[r.pos:])
	if err != nil {
		return 0, err
	}
	r.pos += n
	return v, nil
}

// ReadBytes reads a varint-prefixed byte slice. The returned slice
// aliases the Reader's backing array; callers that retain it beyond
// the current parse must copy.
func (r *Reader) ReadBytes() ([]byte, error) {
	n, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	if r.Remaining() < int(n) {
		return nil, ErrTruncated
	}
	b := r.buf[r.pos : r.pos+int(n)]
	r.pos += int(n)
	return b, nil
}

// ReadString reads a varint-prefixed UTF-8 string.
func (r *Reader) ReadString() (string, error) {
	b, err := r.ReadBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadNested reads a varint-prefixed nested packet and returns a Reader
// scoped to exactly that sub-range.
func (r *Reader) ReadNested() (*Reader, error) {
	b, err := r.ReadBytes()
	if err != nil {
		return nil, err
	}
	return NewReader(b), nil
}
