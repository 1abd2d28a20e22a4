package cryptogate

import "errors"

// ErrDecryptFailure is returned by WriteOut on a MAC mismatch or
// truncated ciphertext. Per spec.md §4.F, a GateStream treats this as
// packet loss: it drops the payload silently rather than propagating
// the error, so Safe Stream's retransmission can recover.
var ErrDecryptFailure = errors.New("cryptogate: decrypt failure")

// ErrReplayDetected is returned by the async gate's decryptor when a
// message id has already been seen for this session.
var ErrReplayDetected = errors.New("cryptogate: replayed message id")
