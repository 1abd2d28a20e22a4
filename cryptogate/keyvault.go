package cryptogate

import (
	"crypto/sha256"
	"encoding/binary"
	"io"
	"sync"

	"github.com/awnumar/memguard"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"
)

const nonceSize = 24

// SymmetricKeyVault derives a per-direction secretbox key pair from a
// shared secret, grounded on stream/stream.go's exchange(): separate
// writer/reader keys from two HKDF streams rather than a single
// encrypt/decrypt key, so a captured outbound key never helps decode
// the inbound direction.
type SymmetricKeyVault struct {
	mu      sync.Mutex
	writeKey *memguard.LockedBuffer
	readKey  *memguard.LockedBuffer
	base     [16]byte
	counter  uint64
}

// NewSymmetricKeyVault derives this side's write key from mySecret and
// its read key from otherSecret. The two peers of a session must call this with their
// mysecret/othersecret swapped, exactly as exchange() does, so side
// A's writeKey equals side B's readKey and vice versa.
func NewSymmetricKeyVault(mySecret, otherSecret, salt []byte) (*SymmetricKeyVault, error) {
	v := &SymmetricKeyVault{
		writeKey: memguard.NewBuffer(32),
		readKey:  memguard.NewBuffer(32),
	}
	writerMaterial := hkdf.New(sha256.New, mySecret, salt, nil)
	if _, err := io.ReadFull(writerMaterial, v.writeKey.Bytes()); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(writerMaterial, v.base[:]); err != nil {
		return nil, err
	}
	readerMaterial := hkdf.New(sha256.New, otherSecret, salt, nil)
	if _, err := io.ReadFull(readerMaterial, v.readKey.Bytes()); err != nil {
		return nil, err
	}
	v.writeKey.Freeze()
	v.readKey.Freeze()
	return v, nil
}

// EncryptKey returns the key WriteIn should seal with.
func (v *SymmetricKeyVault) EncryptKey() (*[32]byte, error) {
	var out [32]byte
	copy(out[:], v.writeKey.Bytes())
	return &out, nil
}

// DecryptKey returns the key WriteOut should open with.
func (v *SymmetricKeyVault) DecryptKey() (*[32]byte, error) {
	var out [32]byte
	copy(out[:], v.readKey.Bytes())
	return &out, nil
}

// Nonce returns the next outbound nonce: a fixed per-session salt
// concatenated with a monotonically increasing counter, satisfying
// spec.md §6's "caller mutates nonce counter between calls" by
// advancing it internally on every call instead.
func (v *SymmetricKeyVault) Nonce() (*[nonceSize]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.counter++
	var n [nonceSize]byte
	copy(n[:16], v.base[:])
	binary.BigEndian.PutUint64(n[16:], v.counter)
	return &n, nil
}

// Destroy wipes both keys from memory.
func (v *SymmetricKeyVault) Destroy() {
	v.writeKey.Destroy()
	v.readKey.Destroy()
}

// AsymmetricKeyVault is a long-term X25519 identity, grounded on
// ratchet.go's InitRatchet (memguard-backed private scalar,
// ScalarBaseMult for the public key).
type AsymmetricKeyVault struct {
	secret *memguard.LockedBuffer
	public [32]byte
}

// NewAsymmetricKeyVault generates a fresh identity from rand (use
// crypto/rand.Reader outside tests).
func NewAsymmetricKeyVault(rand io.Reader) (*AsymmetricKeyVault, error) {
	secret, err := memguard.NewBufferFromReader(rand, 32)
	if err != nil {
		return nil, err
	}
	var public [32]byte
	curve25519.ScalarBaseMult(&public, secret.ByteArray32())
	secret.Freeze()
	return &AsymmetricKeyVault{secret: secret, public: public}, nil
}

// PublicKey returns the identity's public half.
func (v *AsymmetricKeyVault) PublicKey() *[32]byte { return &v.public }

// SecretKey returns the locked private scalar. The caller never
// retains a plaintext copy beyond the scope of a single Decrypt call,
// per spec.md §5.
func (v *AsymmetricKeyVault) SecretKey() *memguard.LockedBuffer { return v.secret }

// Destroy wipes the private scalar from memory.
func (v *AsymmetricKeyVault) Destroy() { v.secret.Destroy() }
