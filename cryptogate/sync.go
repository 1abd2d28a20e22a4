// Package cryptogate implements the two Safe Stream crypto gates of
// spec.md §4.F: a synchronous shared-secret gate and an asynchronous
// public-key gate, both grounded on stream/stream.go's secretbox/hkdf
// framing and ratchet.go's memguard/curve25519 key handling.
package cryptogate

import (
	"golang.org/x/crypto/nacl/secretbox"
)

// SyncKeyProvider supplies the key material a SyncGate needs on every
// call, mirroring spec.md §6's sync key provider contract
// (GetKey()/Nonce()). EncryptKey and DecryptKey may be the same key or,
// as with SymmetricKeyVault, distinct per-direction keys derived from
// one shared secret.
type SyncKeyProvider interface {
	EncryptKey() (*[32]byte, error)
	DecryptKey() (*[32]byte, error)
	Nonce() (*[nonceSize]byte, error)
}

// SyncGate is the synchronous shared-secret gate of spec.md §4.F,
// grounded on stream/stream.go's txFrame/readFrame: secretbox.Seal
// over the plaintext, with the nonce that sealed it carried alongside
// the ciphertext so WriteOut can recover it without separate framing.
type SyncGate struct {
	keys SyncKeyProvider
}

// NewSyncGate builds a gate over keys.
func NewSyncGate(keys SyncKeyProvider) *SyncGate {
	return &SyncGate{keys: keys}
}

// WriteIn encrypts data for the wire.
func (g *SyncGate) WriteIn(data []byte) ([]byte, error) {
	key, err := g.keys.EncryptKey()
	if err != nil {
		return nil, err
	}
	nonce, err := g.keys.Nonce()
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, nonceSize+len(data)+secretbox.Overhead)
	out = append(out, nonce[:]...)
	out = secretbox.Seal(out, data, nonce, key)
	return out, nil
}

// WriteOut decrypts and authenticates an inbound frame. A failure
// returns ErrDecryptFailure, which the surrounding GateStream treats
// as packet loss per spec.md §4.F/§7.
func (g *SyncGate) WriteOut(data []byte) ([]byte, error) {
	if len(data) < nonceSize+secretbox.Overhead {
		return nil, ErrDecryptFailure
	}
	var nonce [nonceSize]byte
	copy(nonce[:], data[:nonceSize])
	key, err := g.keys.DecryptKey()
	if err != nil {
		return nil, ErrDecryptFailure
	}
	plain, ok := secretbox.Open(nil, data[nonceSize:], &nonce, key)
	if !ok {
		return nil, ErrDecryptFailure
	}
	return plain, nil
}

// Overhead is the number of extra bytes WriteIn adds to a payload.
func (g *SyncGate) Overhead() int { return nonceSize + secretbox.Overhead }
