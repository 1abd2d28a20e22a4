// Package peer implements the peer-session plumbing of spec.md §4.G:
// the client→server login/authorization handshake, per-uid message
// streams multiplexed over one authorized connection, a P2P
// split-stream layer on top of those, and the ambient cloud/resume
// bookkeeping a real client keeps around a session.
package peer

import "errors"

// ErrNotLoggedIn names an authorized call made before the login framer
// has sent its one-time LoginByUid/LoginByAlias message. No
// AuthorizedApi method returns it: the framer wraps the first outbound
// packet in the login message instead.
var ErrNotLoggedIn = errors.New("peer: authorized call before login")

// ErrAccessDenied is returned when CheckAccessForSendMessage reports
// the local side is not permitted to message the given uid.
var ErrAccessDenied = errors.New("peer: access denied for send_message")

// ErrUnknownCloud is returned by CloudResolver.Resolve for a uid with
// no known assigned servers.
var ErrUnknownCloud = errors.New("peer: uid has no resolved cloud")

// ErrCloudExhausted is returned by CloudConnection when every server
// in the resolved cloud has failed over.
var ErrCloudExhausted = errors.New("peer: every server in cloud failed over")
