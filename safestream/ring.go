// Package safestream implements the reliable, in-order byte stream
// described in spec.md §4.E: a sliding-window, selective-repeat ARQ
// layered over an unreliable, possibly-reordering datagram Stream.
package safestream

// RingIndex is a byte offset on a 2^32 ring, per spec.md §3. Ordinary
// arithmetic wraps; comparisons use the signed-difference trick so
// "before"/"after" stay correct across a wraparound.
type RingIndex uint32

// Add returns idx advanced by n bytes (mod 2^32).
func (idx RingIndex) Add(n uint32) RingIndex { return idx + RingIndex(n) }

// Sub returns idx moved back by n bytes (mod 2^32).
func (idx RingIndex) Sub(n uint32) RingIndex { return idx - RingIndex(n) }

// Before reports whether idx precedes other on the ring, treating the
// ring as having at most 2^31 bytes in flight at once (the usual
// sequence-number convention).
func (idx RingIndex) Before(other RingIndex) bool {
	return int32(idx-other) < 0
}

// After reports whether idx follows other on the ring.
func (idx RingIndex) After(other RingIndex) bool {
	return int32(idx-other) > 0
}

// Distance returns the signed number of bytes from idx to other
// (positive if other is ahead of idx).
func (idx RingIndex) Distance(other RingIndex) int32 {
	return int32(other - idx)
}

// OffsetRange is an inclusive byte range [Left, Right] on the ring.
type OffsetRange struct {
	Left  RingIndex
	Right RingIndex
}

// Len returns the number of bytes the range covers.
func (r OffsetRange) Len() uint32 {
	return uint32(r.Right-r.Left) + 1
}

// InRange reports whether x falls within [Left, Right] inclusive.
func (r OffsetRange) InRange(x RingIndex) bool {
	return !x.Before(r.Left) && !x.After(r.Right)
}

// Overlaps reports whether r and other share at least one byte.
func (r OffsetRange) Overlaps(other OffsetRange) bool {
	return !r.Right.Before(other.Left) && !other.Right.Before(r.Left)
}

// Adjacent reports whether other begins exactly one byte after r ends,
// i.e. the two ranges could be merged into one contiguous range.
func (r OffsetRange) Adjacent(other OffsetRange) bool {
	return other.Left == r.Right.Add(1)
}
