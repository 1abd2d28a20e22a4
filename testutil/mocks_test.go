package testutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aethernetio/aether-go/peer"
	"github.com/aethernetio/aether-go/streams"
)

func TestMockCloudResolverReturnsConfiguredServers(t *testing.T) {
	m := &MockCloudResolver{}
	m.On("Resolve", peer.Uid(7)).Return([]peer.ServerAddr{"10.0.0.1:4433"}, nil)

	addrs, err := m.Resolve(7)
	require.NoError(t, err)
	require.Equal(t, []peer.ServerAddr{"10.0.0.1:4433"}, addrs)
	m.AssertExpectations(t)
}

func TestMockCloudResolverPropagatesError(t *testing.T) {
	m := &MockCloudResolver{}
	boom := errors.New("no cloud")
	m.On("Resolve", peer.Uid(9)).Return([]peer.ServerAddr(nil), boom)

	_, err := m.Resolve(9)
	require.Equal(t, boom, err)
}

func TestMockStreamRecordsWritesAndDelivers(t *testing.T) {
	m := &MockStream{}
	var zero streams.WriteAction
	m.On("Write", []byte("hello")).Return(zero)

	m.Write([]byte("hello"))
	m.AssertCalled(t, "Write", []byte("hello"))

	var got []byte
	m.OutDataEvent().Subscribe(func(args ...interface{}) {
		data, _ := args[0].([]byte)
		got = data
	})
	m.Deliver([]byte("inbound"))
	require.Equal(t, "inbound", string(got))
}
