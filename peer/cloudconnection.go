package peer

import (
	"github.com/aethernetio/aether-go/action"
	"github.com/aethernetio/aether-go/streams"
	"github.com/aethernetio/aether-go/wire"
)

// Dialer opens a transport Stream to addr. Supplied by the embedder;
// this package knows nothing about QUIC or any other concrete
// transport.
type Dialer func(addr ServerAddr) (streams.Stream, error)

// CloudConnection keeps one ClientToServerStream live against the
// first reachable server in a peer's resolved cloud, and fails over
// to the next one on demand. Grounded on
// client_connections/client_cloud_connection.h: "a peer's cloud is
// more than one server", this port's narrow rendering of that idea —
// one active connection plus an ordered failover list, rather than
// fanning out to every server in the cloud simultaneously.
type CloudConnection struct {
	proc         *action.Processor
	dial         Dialer
	newLogin     func() *LoginFramer
	newCrypto    func() streams.Gate
	inboundClass *wire.ApiClass

	servers []ServerAddr
	next    int
	current *ClientToServerStream
}

// NewCloudConnection resolves uid's cloud via resolver and connects to
// the first reachable server in it. newLogin/newCrypto are factories
// rather than shared values because a LoginFramer is single-use (its
// login message fires exactly once) and a crypto gate is normally
// keyed per-connection.
func NewCloudConnection(proc *action.Processor, dial Dialer, resolver CloudResolver, uid Uid, newLogin func() *LoginFramer, newCrypto func() streams.Gate, inboundClass *wire.ApiClass) (*CloudConnection, error) {
	servers, err := resolver.Resolve(uid)
	if err != nil {
		return nil, err
	}
	c := &CloudConnection{
		proc:         proc,
		dial:         dial,
		newLogin:     newLogin,
		newCrypto:    newCrypto,
		inboundClass: inboundClass,
		servers:      servers,
	}
	if err := c.connectNext(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *CloudConnection) connectNext() error {
	for c.next < len(c.servers) {
		addr := c.servers[c.next]
		c.next++
		transport, err := c.dial(addr)
		if err != nil {
			continue
		}
		c.current = NewClientToServerStream(c.proc, transport, c.newLogin(), c.newCrypto(), c.inboundClass)
		return nil
	}
	return ErrCloudExhausted
}

// FailOver abandons the current connection and connects to the next
// server in the resolved cloud, returning ErrCloudExhausted once every
// server has been tried.
func (c *CloudConnection) FailOver() error { return c.connectNext() }

// Current returns the presently active client→server connection.
func (c *CloudConnection) Current() *ClientToServerStream { return c.current }
