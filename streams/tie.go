package streams

// Tie chains stages left to right, per spec.md §4.D: LinkOut each
// stage onto the next, and return the head. A caller writes to the
// head; each stage's own gate transforms run in turn on the way to
// the tail, and inbound events bubble back the same chain via each
// stage's LinkOut subscription (see GateStream.LinkOut).
//
// Grounded on the composition shown in spec.md §4.G,
// `Tie(login_framer, crypto_gate, datagram_splitter_gate,
// datagram_transport)`: each argument is itself a Stream (typically a
// GateStream wrapping one or more gates), not a bare gate, so Tie's
// own job is purely sequencing the LinkOut calls.
func Tie(stages ...Stream) Stream {
	if len(stages) == 0 {
		return nil
	}
	for i := 0; i < len(stages)-1; i++ {
		stages[i].LinkOut(stages[i+1])
	}
	return stages[0]
}
