package wire

// HandlerFunc decodes and acts on one message. r is scoped to exactly
// that message's body bytes; requestId is NoRequestId for one-way
// messages and the sender's allocated id for request/response calls
// (handlers that reply do so via ProtocolContext.SendResult/SendError
// with this id).
type HandlerFunc func(requestId RequestId, r *Reader) error

// ApiClass is a static message_id → handler dispatch table, per
// spec.md §4.C's "dispatch is compile-time" design. Handlers are
// registered once at startup (mirroring the original's generated
// `{message_id → method_ptr}` list) rather than looked up via
// reflection.
//
// An ApiClass may extend another one (ExtApi): when no handler in this
// class matches an incoming id, the parser recurses into the extension
// class before giving up.
type ApiClass struct {
	name     string
	handlers map[MessageId]HandlerFunc
	ext      *ApiClass
}

// NewApiClass creates an empty class. name is used only for
// diagnostics (logging, parse-error messages).
func NewApiClass(name string) *ApiClass {
	return &ApiClass{name: name, handlers: make(map[MessageId]HandlerFunc)}
}

// Name returns the class's diagnostic name.
func (c *ApiClass) Name() string { return c.name }

// On registers h as the handler for id. Registering the same id twice
// replaces the previous handler.
func (c *ApiClass) On(id MessageId, h HandlerFunc) {
	c.handlers[id] = h
}

// ExtendWith installs ext as this class's ExtApi fallback.
func (c *ApiClass) ExtendWith(ext *ApiClass) {
	c.ext = ext
}

// dispatch finds and invokes the handler for id, recursing into ext on
// a miss. The bool return reports whether any handler (direct or via
// an extension chain) matched.
func (c *ApiClass) dispatch(id MessageId, requestId RequestId, r *Reader) (bool, error) {
	if h, ok := c.handlers[id]; ok {
		return true, h(requestId, r)
	}
	if c.ext != nil {
		return c.ext.dispatch(id, requestId, r)
	}
	return false, nil
}
