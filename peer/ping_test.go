package peer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aethernetio/aether-go/wire"
)

func TestPingPongResetsStats(t *testing.T) {
	class := wire.NewApiClass("clientSafeApi")
	client, server := newTestClientServer(t, class)
	server.on(msgPing, func(requestId wire.RequestId, _ *wire.Reader) error {
		server.pc.SendResult(requestId, nil)
		return nil
	})

	p := NewPing(client.Api, time.Second, 3)
	var pongs int
	p.PongEvent().Subscribe(func(...interface{}) { pongs++ })

	require.NoError(t, p.tick(time.Time{}))
	require.NoError(t, p.tick(time.Time{}))

	require.Equal(t, 2, pongs)
	require.Equal(t, PingStats{ConsecutiveTimeouts: 0, TotalPongs: 2}, p.Stats())
}

func TestPingTimeoutsAccumulateAndFireDead(t *testing.T) {
	class := wire.NewApiClass("clientSafeApi")
	client, _ := newTestClientServer(t, class)
	// No handler registered for msgPing on the server side: every ping
	// goes unanswered, modelling a dropped/unresponsive peer.

	p := NewPing(client.Api, time.Second, 2)
	var dead int
	p.DeadEvent().Subscribe(func(...interface{}) { dead++ })

	require.NoError(t, p.tick(time.Time{})) // sends ping 1, nothing pending yet to time out
	require.Equal(t, 0, p.Stats().ConsecutiveTimeouts)
	require.Equal(t, 0, dead)

	require.NoError(t, p.tick(time.Time{})) // ping 1 timed out, sends ping 2
	require.Equal(t, 1, p.Stats().ConsecutiveTimeouts)
	require.Equal(t, 0, dead)

	require.NoError(t, p.tick(time.Time{})) // ping 2 timed out: threshold reached
	require.Equal(t, 2, p.Stats().ConsecutiveTimeouts)
	require.Equal(t, 1, dead)
}

func TestPingPongAfterTimeoutsResetsConsecutiveCount(t *testing.T) {
	class := wire.NewApiClass("clientSafeApi")
	client, server := newTestClientServer(t, class)

	answer := false
	server.on(msgPing, func(requestId wire.RequestId, _ *wire.Reader) error {
		if answer {
			server.pc.SendResult(requestId, nil)
		}
		return nil
	})

	p := NewPing(client.Api, time.Second, 5)

	require.NoError(t, p.tick(time.Time{}))
	require.NoError(t, p.tick(time.Time{}))
	require.Equal(t, 1, p.Stats().ConsecutiveTimeouts)

	answer = true
	require.NoError(t, p.tick(time.Time{}))
	require.Equal(t, 0, p.Stats().ConsecutiveTimeouts)
	require.Equal(t, 1, p.Stats().TotalPongs)
}
