package safestream

import "time"

// Config holds the tunables of spec.md §4.E.1, loadable from a TOML
// document via github.com/BurntSushi/toml (the teacher's config
// format — see cmd/ configs in the pack).
type Config struct {
	BufferCapacity     uint32        `toml:"buffer_capacity"`
	WindowSize         uint32        `toml:"window_size"`
	MaxPacketSize      uint32        `toml:"max_packet_size"`
	MaxRepeatCount     int           `toml:"max_repeat_count"`
	WaitConfirmTimeout time.Duration `toml:"wait_confirm_timeout"`
	SendConfirmTimeout time.Duration `toml:"send_confirm_timeout"`
	SendRepeatTimeout  time.Duration `toml:"send_repeat_timeout"`

	// RTOGrowFactor is the implementation-defined backoff multiplier
	// spec.md §4.E.3 leaves open ("typically 2"); resolved here per
	// DESIGN.md's Open Question decisions.
	RTOGrowFactor float64 `toml:"rto_grow_factor"`
}

// DefaultConfig returns the spec.md §6 "Safe Stream protocol constants
// (defaults)" values.
func DefaultConfig() Config {
	return Config{
		BufferCapacity:     1 << 20,
		WindowSize:         4096,
		MaxPacketSize:      200,
		MaxRepeatCount:     5,
		WaitConfirmTimeout: 30 * time.Millisecond,
		SendConfirmTimeout: 20 * time.Millisecond,
		SendRepeatTimeout:  40 * time.Millisecond,
		RTOGrowFactor:      2.0,
	}
}

// EffectiveWindow returns min(WindowSize, BufferCapacity), the
// ceiling spec.md §4.E.3 calls effective_window.
func (c Config) EffectiveWindow() uint32 {
	if c.WindowSize < c.BufferCapacity {
		return c.WindowSize
	}
	return c.BufferCapacity
}

// Backoff implements spec.md §4.E.3's backoff(rc): 1.0 at rc==0,
// RTOGrowFactor*rc otherwise.
func (c Config) Backoff(repeatCount int) float64 {
	if repeatCount == 0 {
		return 1.0
	}
	return c.RTOGrowFactor * float64(repeatCount)
}

// negotiate applies the InitAck negotiation rule of spec.md §4.E.2:
// the receiver's window/max-packet can only shrink the sender's
// proposal, never grow it.
func negotiate(localWindow, peerWindow, localMaxPkt, peerMaxPkt uint32) (window, maxPkt uint32) {
	window = localWindow
	if peerWindow < window {
		window = peerWindow
	}
	maxPkt = localMaxPkt
	if peerMaxPkt < maxPkt {
		maxPkt = peerMaxPkt
	}
	return
}
