package peer

import "github.com/fxamacker/cbor/v2"

// ResumeState is the small blob a client persists across reconnects so
// it can pick a Safe Stream session back up at the right ring offset
// instead of renegotiating from zero, mirroring stream/stream.go's
// `cbor.Marshal(frame)` use for its own wire frames.
type ResumeState struct {
	Uid           Uid
	SendOffset    uint32
	ReceiveOffset uint32
	WindowSize    uint32
	MaxPacketSize uint32
}

// Marshal encodes s for storage.
func (s ResumeState) Marshal() ([]byte, error) {
	return cbor.Marshal(s)
}

// UnmarshalResumeState decodes a blob previously produced by Marshal.
func UnmarshalResumeState(data []byte) (ResumeState, error) {
	var s ResumeState
	err := cbor.Unmarshal(data, &s)
	return s, err
}
