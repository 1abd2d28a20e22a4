package peer

import "github.com/aethernetio/aether-go/wire"

// LoginFramer is the outermost gate of a client→server stream, per
// spec.md §4.G: it wraps exactly the first outbound write in a
// LoginByUid or LoginByAlias envelope so the server learns which
// identity is authorizing the rest of the session, and on the inbound
// path strips the server's ClientRootApi envelope down to the
// authorized-layer bytes above it.
//
// Grounded on methods/client_api/client_root_api.h (SendSafeApiData
// unwrap) and methods/work_server_api/login_api.h (LoginByUid/
// LoginByAlias framing).
type LoginFramer struct {
	sent  bool
	uid   Uid
	alias Alias
	byUid bool
}

// NewLoginFramerByUid logs in as an already-registered uid.
func NewLoginFramerByUid(uid Uid) *LoginFramer {
	return &LoginFramer{uid: uid, byUid: true}
}

// NewLoginFramerByAlias logs in by a human-chosen alias the server
// resolves to a uid.
func NewLoginFramerByAlias(alias Alias) *LoginFramer {
	return &LoginFramer{alias: alias, byUid: false}
}

// WriteIn wraps data in a login envelope exactly once; every
// subsequent call passes data through unchanged.
func (g *LoginFramer) WriteIn(data []byte) ([]byte, error) {
	if g.sent {
		return data, nil
	}
	g.sent = true

	body := wire.NewWriter()
	if g.byUid {
		body.WriteU32(uint32(g.uid))
	} else {
		body.WriteString(string(g.alias))
	}
	body.WriteBytes(data)

	id := msgLoginByAlias
	if g.byUid {
		id = msgLoginByUid
	}
	w := wire.NewWriter()
	wire.Envelope{Id: id, RequestId: wire.NoRequestId, Body: body.Bytes()}.Encode(w)
	return w.Bytes(), nil
}

// WriteOut strips the server's ClientRootApi envelope, forwarding only
// the SendSafeApiData payloads it carries — the bytes the
// AuthorizedApi's ApiParser expects to see.
func (g *LoginFramer) WriteOut(data []byte) ([]byte, error) {
	envs, err := wire.DecodePacket(data)
	if err != nil {
		return nil, err
	}
	out := wire.NewWriter()
	for _, e := range envs {
		if e.Id != msgSendSafeApiData {
			continue
		}
		r := wire.NewReader(e.Body)
		if _, err := r.ReadU32(); err != nil { // uid, not needed above this layer
			return nil, err
		}
		payload, err := r.ReadBytes()
		if err != nil {
			return nil, err
		}
		out.WriteRaw(payload)
	}
	return out.Bytes(), nil
}
