package peer

// ServerAddr identifies one server a peer's cloud may be reached
// through. Kept as an opaque string (host:port, or a quicdatagram dial
// target) rather than a concrete transport type, so CloudResolver
// doesn't depend on any one transport package.
type ServerAddr string

// CloudResolver resolves the set of servers currently assigned to a
// peer uid. Grounded on ae_actions/get_client_cloud.cpp's "resolve the
// set of servers assigned to a peer" shape; real registration and
// resolver-network logic are out of scope (Non-goal), so this port
// only preserves the seam.
type CloudResolver interface {
	Resolve(uid Uid) ([]ServerAddr, error)
}

// StaticCloudResolver is a CloudResolver backed by a fixed table,
// useful for tests and for deployments that configure clouds out of
// band instead of querying a resolver network.
type StaticCloudResolver struct {
	byUid map[Uid][]ServerAddr
}

// NewStaticCloudResolver wraps byUid.
func NewStaticCloudResolver(byUid map[Uid][]ServerAddr) *StaticCloudResolver {
	return &StaticCloudResolver{byUid: byUid}
}

// Resolve implements CloudResolver.
func (r *StaticCloudResolver) Resolve(uid Uid) ([]ServerAddr, error) {
	addrs, ok := r.byUid[uid]
	if !ok || len(addrs) == 0 {
		return nil, ErrUnknownCloud
	}
	return addrs, nil
}
