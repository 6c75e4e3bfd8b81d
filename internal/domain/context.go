package domain

// AuthContext is the per-connection state the controller drives. It
// owns its own string buffers and its list vector; nothing here is
// shared across connections.
type AuthContext struct {
	// User, Style and Service are fixed by the first UserAuthRequest
	// and are never allowed to change afterward.
	User    string
	Style   string
	Service string

	// Method names the request currently being processed; the
	// controller refreshes it on every request.
	Method string

	// Valid is true iff the account oracle accepted User for Service
	// on the first request.
	Valid bool

	// Record is the bound account record, or a deterministic fake for
	// an unknown or inadmissible user, so method handlers can't tell
	// the two apart by timing.
	Record *Record

	// Attempt counts every UserAuthRequest processed, including the
	// none probe. Failures counts only the ones that should be
	// charged against the configured ceiling.
	Attempt  int
	Failures int

	// Success is monotone false->true. Once true the controller
	// installs an ignore handler in place of the request handler.
	Success bool

	// Postponed and ServerCausedFailure are transient: cleared at the
	// start of every fresh request, set by the method handler that
	// just ran.
	Postponed           bool
	ServerCausedFailure bool

	// AuthMethodLists holds the remaining multi-method policy lists,
	// each an ordered slice of method names. Empty means no
	// multi-method policy is in force.
	AuthMethodLists [][]string

	// BannerSent guards the at-most-once banner emission.
	BannerSent bool

	// bound is set once the first request has fixed User/Service.
	bound bool

	// activeMethodName/activeMethodState track per-method
	// continuation state across a multi-message exchange. They are
	// reset (Stop called) whenever a request names a different
	// method than the one currently in progress.
	activeMethodName  string
	activeMethodState MethodState
}

// New returns an empty context ready for the first ServiceRequest.
func New() *AuthContext {
	return &AuthContext{}
}

// Bound reports whether the user/service have been fixed by a first
// request.
func (c *AuthContext) Bound() bool {
	return c.bound
}

// Bind fixes the user/service/style on the first UserAuthRequest.
// Calling it a second time is a caller bug — the controller must
// check Bound() first and treat a mismatch as a protocol violation
// instead.
func (c *AuthContext) Bind(user, service, style string, valid bool, record *Record) {
	c.User = user
	c.Service = service
	c.Style = style
	c.Valid = valid
	c.Record = record
	c.bound = true
}

// State returns the continuation state installed for the method
// currently in progress, or nil if none is installed or the caller
// has already moved on to a different method.
func (c *AuthContext) State(method string) MethodState {
	if c.activeMethodName != method {
		return nil
	}
	return c.activeMethodState
}

// SetState installs continuation state for method, replacing and
// stopping whatever was installed before for that same method.
func (c *AuthContext) SetState(method string, state MethodState) {
	if c.activeMethodState != nil && c.activeMethodName == method {
		c.activeMethodState.Stop()
	}
	c.activeMethodName = method
	c.activeMethodState = state
}

// ResetForRequest clears the transient per-request flags and tears
// down any continuation state belonging to a different method than
// the one about to run. The controller calls this once per
// UserAuthRequest, before dispatching to a handler.
func (c *AuthContext) ResetForRequest(method string) {
	c.Postponed = false
	c.ServerCausedFailure = false
	if c.activeMethodState != nil && c.activeMethodName != method {
		c.activeMethodState.Stop()
		c.activeMethodState = nil
		c.activeMethodName = ""
	}
}

// Zero wipes sensitive fields on teardown. It does not zero Record,
// which the account oracle owns.
func (c *AuthContext) Zero() {
	if c.activeMethodState != nil {
		c.activeMethodState.Stop()
	}
	c.activeMethodState = nil
	c.activeMethodName = ""
	c.User = ""
	c.Style = ""
	c.Record = nil
}
