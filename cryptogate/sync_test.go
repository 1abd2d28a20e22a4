package cryptogate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func pairedVaults(t *testing.T) (a, b *SymmetricKeyVault) {
	t.Helper()
	secretA := []byte("side-a-shared-secret-material...")
	secretB := []byte("side-b-shared-secret-material...")
	salt := []byte("test-salt")

	a, err := NewSymmetricKeyVault(secretA, secretB, salt)
	require.NoError(t, err)
	b, err = NewSymmetricKeyVault(secretB, secretA, salt)
	require.NoError(t, err)
	return a, b
}

func TestSyncGateRoundTrips(t *testing.T) {
	clientKeys, serverKeys := pairedVaults(t)
	client := NewSyncGate(clientKeys)
	server := NewSyncGate(serverKeys)

	sealed, err := client.WriteIn([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, client.Overhead(), len(sealed)-len("hello"))

	plain, err := server.WriteOut(sealed)
	require.NoError(t, err)
	require.Equal(t, "hello", string(plain))
}

func TestSyncGateRejectsTamperedFrame(t *testing.T) {
	clientKeys, serverKeys := pairedVaults(t)
	client := NewSyncGate(clientKeys)
	server := NewSyncGate(serverKeys)

	sealed, err := client.WriteIn([]byte("hello"))
	require.NoError(t, err)
	sealed[len(sealed)-1] ^= 0xFF

	_, err = server.WriteOut(sealed)
	require.ErrorIs(t, err, ErrDecryptFailure)
}

func TestSyncGateRejectsTruncatedFrame(t *testing.T) {
	_, serverKeys := pairedVaults(t)
	server := NewSyncGate(serverKeys)

	_, err := server.WriteOut([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrDecryptFailure)
}

func TestSyncGateDirectionsAreIndependent(t *testing.T) {
	clientKeys, serverKeys := pairedVaults(t)
	client := NewSyncGate(clientKeys)
	server := NewSyncGate(serverKeys)

	toServer, err := client.WriteIn([]byte("to-server"))
	require.NoError(t, err)
	toClient, err := server.WriteIn([]byte("to-client"))
	require.NoError(t, err)

	_, err = client.WriteOut(toServer)
	require.Error(t, err, "client should not be able to open its own outbound frame as inbound")

	plain, err := client.WriteOut(toClient)
	require.NoError(t, err)
	require.Equal(t, "to-client", string(plain))
}
