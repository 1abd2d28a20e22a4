package peer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aethernetio/aether-go/wire"
)

func TestLoginFramerWrapsOnlyFirstWrite(t *testing.T) {
	g := NewLoginFramerByUid(42)

	first, err := g.WriteIn([]byte("hello"))
	require.NoError(t, err)

	envs, err := wire.DecodePacket(first)
	require.NoError(t, err)
	require.Len(t, envs, 1)
	require.Equal(t, msgLoginByUid, envs[0].Id)

	r := wire.NewReader(envs[0].Body)
	uid, err := r.ReadU32()
	require.NoError(t, err)
	require.Equal(t, uint32(42), uid)
	payload, err := r.ReadBytes()
	require.NoError(t, err)
	require.Equal(t, "hello", string(payload))

	second, err := g.WriteIn([]byte("world"))
	require.NoError(t, err)
	require.Equal(t, "world", string(second))
}

func TestLoginFramerByAlias(t *testing.T) {
	g := NewLoginFramerByAlias("nickname")

	out, err := g.WriteIn([]byte("payload"))
	require.NoError(t, err)

	envs, err := wire.DecodePacket(out)
	require.NoError(t, err)
	require.Equal(t, msgLoginByAlias, envs[0].Id)

	r := wire.NewReader(envs[0].Body)
	alias, err := r.ReadString()
	require.NoError(t, err)
	require.Equal(t, "nickname", alias)
	payload, err := r.ReadBytes()
	require.NoError(t, err)
	require.Equal(t, "payload", string(payload))
}

func encodeSendSafeApiData(uid Uid, payload []byte) wire.Envelope {
	body := wire.NewWriter()
	body.WriteU32(uint32(uid))
	body.WriteBytes(payload)
	return wire.Envelope{Id: msgSendSafeApiData, RequestId: wire.NoRequestId, Body: body.Bytes()}
}

func TestLoginFramerWriteOutUnwrapsSendSafeApiData(t *testing.T) {
	g := NewLoginFramerByUid(7)

	inner := []byte("inner authorized packet")
	w := wire.NewWriter()
	encodeSendSafeApiData(7, inner).Encode(w)

	out, err := g.WriteOut(w.Bytes())
	require.NoError(t, err)
	require.Equal(t, inner, out)
}

func TestLoginFramerWriteOutConcatenatesMultipleEnvelopes(t *testing.T) {
	g := NewLoginFramerByUid(7)

	w := wire.NewWriter()
	encodeSendSafeApiData(7, []byte("aa")).Encode(w)
	encodeSendSafeApiData(7, []byte("bb")).Encode(w)

	out, err := g.WriteOut(w.Bytes())
	require.NoError(t, err)
	require.Equal(t, "aabb", string(out))
}
