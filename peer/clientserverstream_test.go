package peer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aethernetio/aether-go/action"
	"github.com/aethernetio/aether-go/wire"
)

// passthroughGate is a no-op crypto gate stand-in so these tests
// exercise the login/AuthorizedApi wiring without pulling cryptogate
// into this package's test dependencies.
type passthroughGate struct{}

func (passthroughGate) WriteIn(data []byte) ([]byte, error)  { return data, nil }
func (passthroughGate) WriteOut(data []byte) ([]byte, error) { return data, nil }

func newTestClientServer(t *testing.T, class *wire.ApiClass) (*ClientToServerStream, *fakeServer) {
	t.Helper()
	proc := action.NewProcessor()
	clientTransport := &loopStream{}
	serverTransport := &loopStream{}
	linkLoops(clientTransport, serverTransport)

	server := newFakeServer(serverTransport, 99)
	client := NewClientToServerStream(proc, clientTransport, NewLoginFramerByUid(99), passthroughGate{}, class)
	return client, server
}

func TestAuthorizedApiPingRoundTrip(t *testing.T) {
	class := wire.NewApiClass("clientSafeApi")
	client, server := newTestClientServer(t, class)
	server.on(msgPing, func(requestId wire.RequestId, _ *wire.Reader) error {
		server.pc.SendResult(requestId, nil)
		return nil
	})

	var got *bool
	client.Api.Ping(func(ok bool) { got = &ok })

	require.NotNil(t, got)
	require.True(t, *got)
}

func TestAuthorizedApiSendMessageRoundTrip(t *testing.T) {
	class := wire.NewApiClass("clientSafeApi")
	client, server := newTestClientServer(t, class)

	var sawUid Uid
	var sawPayload []byte
	server.on(msgSendMessage, func(requestId wire.RequestId, r *wire.Reader) error {
		uid, err := r.ReadU32()
		require.NoError(t, err)
		payload, err := r.ReadBytes()
		require.NoError(t, err)
		sawUid = Uid(uid)
		sawPayload = payload
		server.pc.SendResult(requestId, nil)
		return nil
	})

	var ok bool
	client.Api.SendMessage(55, []byte("hi there"), func(result bool, _ []byte) { ok = result })

	require.True(t, ok)
	require.Equal(t, Uid(55), sawUid)
	require.Equal(t, "hi there", string(sawPayload))
}

func TestAuthorizedApiCheckAccessForSendMessage(t *testing.T) {
	class := wire.NewApiClass("clientSafeApi")
	client, server := newTestClientServer(t, class)
	server.on(msgCheckAccessForSendMessage, func(requestId wire.RequestId, r *wire.Reader) error {
		_, err := r.ReadU32()
		require.NoError(t, err)
		w := wire.NewWriter()
		w.WriteU8(1)
		server.pc.SendResult(requestId, w.Bytes())
		return nil
	})

	var allowed bool
	var callErr error
	client.Api.CheckAccessForSendMessage(12, func(a bool, err error) { allowed, callErr = a, err })

	require.NoError(t, callErr)
	require.True(t, allowed)
}

func TestAuthorizedApiCheckAccessDeniedOnServerError(t *testing.T) {
	class := wire.NewApiClass("clientSafeApi")
	client, server := newTestClientServer(t, class)
	server.on(msgCheckAccessForSendMessage, func(requestId wire.RequestId, _ *wire.Reader) error {
		server.pc.SendError(requestId, 0, 0)
		return nil
	})

	var allowed bool
	var callErr error
	client.Api.CheckAccessForSendMessage(12, func(a bool, err error) { allowed, callErr = a, err })

	require.Error(t, callErr)
	require.False(t, allowed)
}
