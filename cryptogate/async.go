package cryptogate

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"io"
	"sync"

	"github.com/awnumar/memguard"
	"github.com/yawning/bloom"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"
)

const (
	msgIDSize = 8
	// expectedMessages/falsePositiveRate size the default replay
	// filter; a long-lived session can override via NewAsyncGateWithFilter.
	expectedMessages  = 1 << 16
	falsePositiveRate = 1e-6
)

// AsyncKeyProvider supplies the two roles an AsyncGate needs: the
// peer's public key to encrypt toward, and this side's long-term
// secret to decrypt with, per spec.md §6's async key provider
// contract (PublicKey()/SecretKey()) split across local and remote
// identities.
type AsyncKeyProvider interface {
	PeerPublicKey() *[32]byte
	SecretKey() *memguard.LockedBuffer
}

// AsyncGate is the asynchronous public-key gate of spec.md §4.F: every
// message carries a fresh ephemeral X25519 public key, so each message
// is sealed under a key used exactly once and a fixed (zero) AEAD
// nonce is safe. Grounded on ratchet.go's ScalarBaseMult/ScalarMult
// idiom for the X25519 step and spec.md §4.F's description of the
// wire shape (ephemeral key + message id + sealed payload).
type AsyncGate struct {
	keys AsyncKeyProvider

	mu      sync.Mutex
	counter uint64
	seen    *bloom.BloomFilter
}

// NewAsyncGate builds a gate with a default-sized replay filter.
func NewAsyncGate(keys AsyncKeyProvider) *AsyncGate {
	return NewAsyncGateWithFilter(keys, expectedMessages, falsePositiveRate)
}

// NewAsyncGateWithFilter builds a gate with a replay filter sized for
// n expected messages at false-positive rate fp.
func NewAsyncGateWithFilter(keys AsyncKeyProvider, n uint, fp float64) *AsyncGate {
	return &AsyncGate{keys: keys, seen: bloom.NewWithEstimates(n, fp)}
}

func deriveSessionKey(shared []byte) (*[32]byte, error) {
	material := hkdf.New(sha256.New, shared, []byte("aethernetio/cryptogate/async-session"), nil)
	var key [32]byte
	if _, err := io.ReadFull(material, key[:]); err != nil {
		return nil, err
	}
	return &key, nil
}

// WriteIn seals data under a fresh ephemeral key shared with the
// peer's public key.
func (g *AsyncGate) WriteIn(data []byte) ([]byte, error) {
	ephSecret := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, ephSecret); err != nil {
		return nil, err
	}
	var ephPriv, ephPub [32]byte
	copy(ephPriv[:], ephSecret)
	curve25519.ScalarBaseMult(&ephPub, &ephPriv)

	peerPublic := g.keys.PeerPublicKey()
	var shared [32]byte
	curve25519.ScalarMult(&shared, &ephPriv, peerPublic)

	sessionKey, err := deriveSessionKey(shared[:])
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(sessionKey[:])
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	g.counter++
	id := g.counter
	g.mu.Unlock()

	var idBytes [msgIDSize]byte
	binary.BigEndian.PutUint64(idBytes[:], id)

	nonce := make([]byte, aead.NonceSize())
	sealed := aead.Seal(nil, nonce, data, nil)

	out := make([]byte, 0, 32+msgIDSize+len(sealed))
	out = append(out, ephPub[:]...)
	out = append(out, idBytes[:]...)
	out = append(out, sealed...)
	return out, nil
}

// WriteOut recovers the ephemeral shared secret with this side's
// long-term key, authenticates, and rejects a previously-seen message
// id as a replay.
func (g *AsyncGate) WriteOut(data []byte) ([]byte, error) {
	if len(data) < 32+msgIDSize+chacha20poly1305.Overhead {
		return nil, ErrDecryptFailure
	}
	var ephPub [32]byte
	copy(ephPub[:], data[:32])
	idBytes := data[32 : 32+msgIDSize]
	sealed := data[32+msgIDSize:]

	secret := g.keys.SecretKey()
	var shared [32]byte
	curve25519.ScalarMult(&shared, secret.ByteArray32(), &ephPub)

	sessionKey, err := deriveSessionKey(shared[:])
	if err != nil {
		return nil, ErrDecryptFailure
	}
	aead, err := chacha20poly1305.New(sessionKey[:])
	if err != nil {
		return nil, ErrDecryptFailure
	}
	nonce := make([]byte, aead.NonceSize())
	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrDecryptFailure
	}

	g.mu.Lock()
	replayed := g.seen.TestAndAdd(idBytes)
	g.mu.Unlock()
	if replayed {
		return nil, ErrReplayDetected
	}
	return plain, nil
}

// Overhead is the number of extra bytes WriteIn adds to a payload.
func (g *AsyncGate) Overhead() int {
	return 32 + msgIDSize + chacha20poly1305.Overhead
}
