package wire

// RequestId correlates a request message with its eventual response,
// per spec.md §4.C. Zero is reserved for one-way messages that expect
// no reply.
type RequestId uint16

// NoRequestId marks a message that does not want a response.
const NoRequestId RequestId = 0

// RequestIdAllocator hands out RequestIds that cycle through the
// 16-bit space, skipping NoRequestId, and tracks which ones are
// currently outstanding so a reused id can't collide with one still
// awaiting a response.
type RequestIdAllocator struct {
	next     RequestId
	inflight map[RequestId]struct{}
}

// NewRequestIdAllocator creates an allocator starting at id 1.
func NewRequestIdAllocator() *RequestIdAllocator {
	return &RequestIdAllocator{
		next:     1,
		inflight: make(map[RequestId]struct{}),
	}
}

// Alloc returns a fresh RequestId not currently in flight.
func (a *RequestIdAllocator) Alloc() RequestId {
	for {
		id := a.next
		a.next++
		if a.next == NoRequestId {
			a.next++
		}
		if _, busy := a.inflight[id]; !busy {
			a.inflight[id] = struct{}{}
			return id
		}
	}
}

// Release marks id as no longer awaiting a response.
func (a *RequestIdAllocator) Release(id RequestId) {
	delete(a.inflight, id)
}

// InFlight reports how many RequestIds are currently outstanding.
func (a *RequestIdAllocator) InFlight() int { return len(a.inflight) }
