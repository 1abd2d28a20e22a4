package peer

import "github.com/aethernetio/aether-go/wire"

// Message ids below 2 are reserved globally by wire.ApiParser for the
// built-in SendResult/SendError pair; every class here starts at 2.

// loginApi is the client-to-server one-way login handshake, grounded
// on methods/work_server_api/login_api.h.
const (
	msgLoginByUid   wire.MessageId = 2
	msgLoginByAlias wire.MessageId = 3
)

// clientRootApi is the outermost server-to-client envelope the login
// framer strips, grounded on methods/client_api/client_root_api.h.
const (
	msgSendSafeApiData wire.MessageId = 2
)

// authorizedApi is the request/response surface a logged-in client
// calls on its server, grounded on spec.md §4.G's AuthorizedApi.
const (
	msgPing                      wire.MessageId = 2
	msgSendMessage               wire.MessageId = 3
	msgResolvers                 wire.MessageId = 4
	msgCheckAccessForSendMessage wire.MessageId = 5
)

// clientSafeApi is the inbound push surface a server uses to deliver
// peer traffic to a logged-in client, grounded on
// client_messages/message_stream_dispatcher.cpp/.h.
const (
	msgStreamToClient     wire.MessageId = 2
	msgInboundSendMessage wire.MessageId = 3
)
