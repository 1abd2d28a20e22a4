package peer

// Uid identifies a registered peer (client or server) on the network,
// per spec.md §4.G's `uid`-keyed routing tables.
type Uid uint32

// Alias is a human-chosen name a client may log in with instead of a
// Uid, resolved server-side to one.
type Alias string

// StreamId names one multiplexed logical stream within a peer's
// split-stream connection. CreateStream hands it to the per-peer
// Splitter as a streams.StreamId, which is 8 bits wide, so only its
// low 8 bits select the logical stream.
type StreamId uint32
