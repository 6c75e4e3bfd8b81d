// Package transport defines the adapter contract the controller is
// driven through. The real packet framing, encryption and key
// exchange live outside this repository; this package specifies only
// the interface the controller needs and ships an in-memory
// FakeTransport for tests and for cmd/sshauthd's demo loop.
package transport

import "context"

// MessageType identifies one of the service and user-authentication
// messages this core exchanges. Disconnect is not a message type; it
// goes through Adapter.Disconnect.
type MessageType int

const (
	MsgServiceRequest MessageType = iota
	MsgServiceAccept
	MsgUserAuthBanner
	MsgUserAuthRequest
	MsgUserAuthSuccess
	MsgUserAuthFailure
)

func (t MessageType) String() string {
	switch t {
	case MsgServiceRequest:
		return "SSH_MSG_SERVICE_REQUEST"
	case MsgServiceAccept:
		return "SSH_MSG_SERVICE_ACCEPT"
	case MsgUserAuthBanner:
		return "SSH_MSG_USERAUTH_BANNER"
	case MsgUserAuthRequest:
		return "SSH_MSG_USERAUTH_REQUEST"
	case MsgUserAuthSuccess:
		return "SSH_MSG_USERAUTH_SUCCESS"
	case MsgUserAuthFailure:
		return "SSH_MSG_USERAUTH_FAILURE"
	default:
		return "UNKNOWN"
	}
}

// Handler is installed against a message type with Set; it is given
// the adapter so it can both read the incoming fields with
// GetCString/GetEnd and, later, compose a reply with
// Start/PutCString/PutU8/Send.
type Handler func(Adapter) error

// Adapter is the external collaborator the controller drives:
// compose an outbound message, read an inbound one, and a dispatch
// table mapping message type to handler.
type Adapter interface {
	// Start begins composing an outbound message of type t.
	Start(t MessageType) error
	PutCString(s string) error
	PutU8(b byte) error
	// Send flushes the message composed since Start.
	Send() error
	// GetCString reads the next string field of the message currently
	// being dispatched.
	GetCString() (string, error)
	// GetEnd asserts there are no unconsumed fields left.
	GetEnd() error
	// WriteWait blocks until the last Send has left the process,
	// the way the real transport would wait on a socket write.
	WriteWait() error
	// Disconnect sends a human-readable reason and tears the
	// connection down; callers treat it as terminal.
	Disconnect(reason string) error

	// Set installs handler for message type t, replacing whatever was
	// there (e.g. the controller installs an ignore sink over
	// UserAuthRequest once Success is true).
	Set(t MessageType, h Handler)
	// InitDispatch installs the default handler invoked for any
	// message type with nothing registered via Set — normally "reply
	// with a protocol error and disconnect".
	InitDispatch(def Handler)
	// Run drives the dispatch loop. If until is non-nil, Run returns
	// once *until becomes true; otherwise it runs until the peer
	// disconnects or a handler returns a non-nil error.
	Run(blocking bool, until *bool) error
}

// dataReaderKey is the context key a method handler's data-of callback
// (e.g. Password.PasswordOf) uses to read the method-specific fields
// that follow method-name in the current UserAuthRequest. The
// controller is the only thing that owns the adapter, so it hands the
// method a narrow read-only closure instead of the adapter itself.
type dataReaderKey struct{}

// WithDataReader attaches a field reader to ctx, the way the
// controller does once per dispatched UserAuthRequest.
func WithDataReader(ctx context.Context, read func() (string, error)) context.Context {
	return context.WithValue(ctx, dataReaderKey{}, read)
}

// DataReader retrieves the reader WithDataReader attached, if any.
func DataReader(ctx context.Context) (func() (string, error), bool) {
	read, ok := ctx.Value(dataReaderKey{}).(func() (string, error))
	return read, ok
}
